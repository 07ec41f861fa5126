package debug

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/debugmate-ai/debugmate/internal/assistant"
	"github.com/debugmate-ai/debugmate/internal/observability"
	"github.com/debugmate-ai/debugmate/internal/report"
	"github.com/debugmate-ai/debugmate/internal/rpc"
	"github.com/debugmate-ai/debugmate/internal/samples"
	"github.com/debugmate-ai/debugmate/internal/session"
)

// SessionHeader carries the session ID on the REST transport.
const SessionHeader = "X-Session-Id"

type sessionKey struct{}

// Handler serves the REST API for the debugging assistant.
type Handler struct {
	assistant *assistant.Assistant
	sessions  *session.Manager
	metrics   *observability.Metrics
	logger    *zap.Logger
}

// NewHandler constructs a handler. Logger and metrics may be nil.
func NewHandler(a *assistant.Assistant, sessions *session.Manager, metrics *observability.Metrics, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{assistant: a, sessions: sessions, metrics: metrics, logger: logger}
}

// Routes mounts the API onto a fresh chi router.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/login", h.login)
	r.Get("/samples", h.listSamples)

	r.Group(func(r chi.Router) {
		r.Use(h.requireSession)
		r.Post("/session", h.updateSession)
		r.Post("/analyze", h.analyze)
		r.Get("/history", h.history)
		r.Get("/report", h.downloadReport)
	})

	return r
}

// requireSession resolves the X-Session-Id header and stores the session in
// the request context.
func (h *Handler) requireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, err := h.sessions.Get(r.Header.Get(SessionHeader))
		if err != nil {
			h.metrics.RecordTransportError("rest", "unknown_session")
			writeError(w, http.StatusUnauthorized, "valid "+SessionHeader+" header required")
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), sessionKey{}, sess)))
	})
}

func sessionFrom(r *http.Request) *session.Session {
	return r.Context().Value(sessionKey{}).(*session.Session)
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req rpc.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.metrics.RecordTransportError("rest", "decode")
		writeError(w, http.StatusBadRequest, "invalid request: "+err.Error())
		return
	}

	sess, err := h.sessions.Login(req.Password)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "incorrect password")
		return
	}

	h.metrics.SetActiveSessions(h.sessions.Count())
	h.logger.Info("session created", zap.String("session_id", sess.ID))
	writeJSON(w, http.StatusOK, rpc.LoginResponse{SessionID: sess.ID})
}

func (h *Handler) updateSession(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)

	var req rpc.SessionUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.metrics.RecordTransportError("rest", "decode")
		writeError(w, http.StatusBadRequest, "invalid request: "+err.Error())
		return
	}

	if req.APIKey != nil {
		sess.SetAPIKey(*req.APIKey)
	}
	if req.Theme != nil {
		if err := sess.SetTheme(*req.Theme); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	writeJSON(w, http.StatusOK, rpc.SessionUpdateResponse{
		Theme:     sess.Theme(),
		APIKeySet: sess.APIKey() != "",
	})
}

func (h *Handler) analyze(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)

	var req rpc.AnalyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.metrics.RecordTransportError("rest", "decode")
		writeError(w, http.StatusBadRequest, "invalid request: "+err.Error())
		return
	}

	resp, err := h.runAnalysis(r.Context(), sess, req)
	if err != nil {
		if errors.Is(err, assistant.ErrEmptySnippet) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// runAnalysis executes the pipeline and records the run in the session
// history. Shared by the REST and Connect transports.
func (h *Handler) runAnalysis(ctx context.Context, sess *session.Session, req rpc.AnalyzeRequest) (rpc.AnalyzeResponse, error) {
	res, err := h.assistant.Analyze(ctx, assistant.Request{
		SessionID:    sess.ID,
		Model:        req.Model,
		Snippet:      req.Snippet,
		ErrorMessage: req.ErrorMessage,
		APIKey:       sess.APIKey(),
	})
	if err != nil {
		return rpc.AnalyzeResponse{}, err
	}

	sess.Record(session.Entry{
		Timestamp:    res.GeneratedAt,
		Summary:      h.sessions.Summarize(res.Debug.Explanation),
		Snippet:      req.Snippet,
		ErrorMessage: req.ErrorMessage,
		Issues:       res.Issues,
		Debug:        res.Debug,
	}, res.Report)

	return rpc.AnalyzeResponse{
		SessionID:    sess.ID,
		Issues:       res.Issues,
		Explanation:  res.Debug.Explanation,
		SuggestedFix: res.Debug.SuggestedFix,
		Tips:         res.Debug.Tips,
		Error:        res.Debug.Err,
		Report:       res.Report,
		ReportURI:    res.ReportURI,
		ReportName:   report.Filename,
		GeneratedAt:  res.GeneratedAt.Format("2006-01-02 15:04:05"),
	}, nil
}

func (h *Handler) history(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)

	entries := sess.History()
	out := rpc.HistoryResponse{Entries: make([]rpc.HistoryEntry, 0, len(entries))}
	for _, e := range entries {
		out.Entries = append(out.Entries, rpc.HistoryEntry{
			Timestamp:    e.Timestamp.Format("15:04:05"),
			Summary:      e.Summary,
			Snippet:      e.Snippet,
			ErrorMessage: e.ErrorMessage,
			Issues:       e.Issues,
			Explanation:  e.Debug.Explanation,
			SuggestedFix: e.Debug.SuggestedFix,
			Tips:         e.Debug.Tips,
			Error:        e.Debug.Err,
		})
	}

	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) downloadReport(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)

	md, ok := sess.LastReport()
	if !ok {
		writeError(w, http.StatusNotFound, "no report generated yet")
		return
	}

	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+report.Filename+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(md))
}

func (h *Handler) listSamples(w http.ResponseWriter, r *http.Request) {
	all := samples.Catalog()
	out := rpc.SamplesResponse{Samples: make([]rpc.SampleInfo, 0, len(all))}
	for _, s := range all {
		out.Samples = append(out.Samples, rpc.SampleInfo{Name: s.Name, Code: s.Code})
	}
	writeJSON(w, http.StatusOK, out)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, rpc.ErrorResponse{Error: msg})
}
