package debug

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/debugmate-ai/debugmate/internal/analysis"
	"github.com/debugmate-ai/debugmate/internal/assistant"
	"github.com/debugmate-ai/debugmate/internal/config"
	"github.com/debugmate-ai/debugmate/internal/llm"
	llmmock "github.com/debugmate-ai/debugmate/internal/llm/mock"
	"github.com/debugmate-ai/debugmate/internal/rpc"
	"github.com/debugmate-ai/debugmate/internal/session"
)

const testPassword = "hailetmein"

const canonicalResponse = "### Explanation\n" +
	"Dividing by zero raises ZeroDivisionError.\n" +
	"\n" +
	"### Suggested Fix\n" +
	"```python\n" +
	"x = 1\n" +
	"y = 2\n" +
	"print(x / y)\n" +
	"```\n" +
	"\n" +
	"### Tips\n" +
	"Check divisors before dividing.\n"

func newTestHandler(t *testing.T, p *llmmock.Provider) *Handler {
	t.Helper()

	reg := llm.NewRegistry()
	reg.RegisterProvider("mock", p)
	reg.RegisterModel("default", llm.ModelRoute{
		Provider:    "mock",
		Model:       "gpt-3.5-turbo",
		Temperature: 0.3,
		MaxTokens:   1000,
	}, true)

	cfg := config.AssistantConfig{
		MaxTokens:     1000,
		Temperature:   0.3,
		HistoryLimit:  50,
		SummaryLength: 60,
	}
	a := assistant.New(reg, analysis.NewChecker(), cfg, nil, nil)
	sessions := session.NewManager(testPassword, cfg.HistoryLimit, cfg.SummaryLength)
	return NewHandler(a, sessions, nil, nil)
}

func doJSON(t *testing.T, router http.Handler, method, path, sessionID string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if sessionID != "" {
		req.Header.Set(SessionHeader, sessionID)
	}
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

func loginSession(t *testing.T, router http.Handler) string {
	t.Helper()

	rr := doJSON(t, router, http.MethodPost, "/login", "", rpc.LoginRequest{Password: testPassword})
	require.Equal(t, http.StatusOK, rr.Code)

	var resp rpc.LoginResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.SessionID)
	return resp.SessionID
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	t.Parallel()

	router := newTestHandler(t, &llmmock.Provider{HasKey: true}).Routes()

	rr := doJSON(t, router, http.MethodPost, "/login", "", rpc.LoginRequest{Password: "guess"})
	require.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestAnalyzeRequiresSession(t *testing.T) {
	t.Parallel()

	router := newTestHandler(t, &llmmock.Provider{HasKey: true}).Routes()

	rr := doJSON(t, router, http.MethodPost, "/analyze", "", rpc.AnalyzeRequest{Snippet: "x = 1"})
	require.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestAnalyzeEndToEnd(t *testing.T) {
	t.Parallel()

	p := &llmmock.Provider{
		HasKey: true,
		ChatFn: func(ctx context.Context, req llm.ChatRequest) (llm.ChatResponse, error) {
			return llm.ChatResponse{
				Message: llm.ChatMessage{Role: llm.RoleAssistant, Content: canonicalResponse},
			}, nil
		},
	}
	router := newTestHandler(t, p).Routes()
	sessionID := loginSession(t, router)

	rr := doJSON(t, router, http.MethodPost, "/analyze", sessionID, rpc.AnalyzeRequest{
		Snippet: "x = 1\ny = 0\nprint(x / y)",
	})
	require.Equal(t, http.StatusOK, rr.Code)

	var resp rpc.AnalyzeResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.Equal(t, sessionID, resp.SessionID)
	require.Equal(t, []string{"No obvious issues found via static analysis"}, resp.Issues)
	require.NotEmpty(t, resp.Explanation)
	require.Contains(t, resp.SuggestedFix, "print(x / y)")
	require.Empty(t, resp.Error)
	require.Equal(t, "debug_report.md", resp.ReportName)
	require.True(t, strings.HasPrefix(resp.ReportURI, "data:text/markdown;base64,"))

	// the run is recorded in history, newest first
	rr = doJSON(t, router, http.MethodGet, "/history", sessionID, nil)
	require.Equal(t, http.StatusOK, rr.Code)

	var hist rpc.HistoryResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &hist))
	require.Len(t, hist.Entries, 1)
	require.Equal(t, "x = 1\ny = 0\nprint(x / y)", hist.Entries[0].Snippet)
	require.NotEmpty(t, hist.Entries[0].Summary)

	// and the report is downloadable
	rr = doJSON(t, router, http.MethodGet, "/report", sessionID, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	require.Contains(t, rr.Header().Get("Content-Disposition"), "debug_report.md")
	require.Contains(t, rr.Body.String(), "# AI Code Debugging Report")
}

func TestAnalyzeEmptySnippetIsBadRequest(t *testing.T) {
	t.Parallel()

	router := newTestHandler(t, &llmmock.Provider{HasKey: true}).Routes()
	sessionID := loginSession(t, router)

	rr := doJSON(t, router, http.MethodPost, "/analyze", sessionID, rpc.AnalyzeRequest{Snippet: "  "})
	require.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestAnalyzeWithoutKeyDegrades(t *testing.T) {
	t.Parallel()

	router := newTestHandler(t, &llmmock.Provider{HasKey: false}).Routes()
	sessionID := loginSession(t, router)

	rr := doJSON(t, router, http.MethodPost, "/analyze", sessionID, rpc.AnalyzeRequest{Snippet: "x = 1"})
	require.Equal(t, http.StatusOK, rr.Code)

	var resp rpc.AnalyzeResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.True(t, strings.HasPrefix(resp.Error, "No OpenAI API key provided."))
	require.NotEmpty(t, resp.Issues)
	require.NotEmpty(t, resp.Report)
	require.Empty(t, resp.Explanation)
}

func TestSessionUpdateStoresKeyAndTheme(t *testing.T) {
	t.Parallel()

	called := false
	p := &llmmock.Provider{
		HasKey: false,
		ChatFn: func(ctx context.Context, req llm.ChatRequest) (llm.ChatResponse, error) {
			called = true
			require.Equal(t, "sk-session", req.APIKey)
			return llm.ChatResponse{
				Message: llm.ChatMessage{Role: llm.RoleAssistant, Content: canonicalResponse},
			}, nil
		},
	}
	router := newTestHandler(t, p).Routes()
	sessionID := loginSession(t, router)

	key := "sk-session"
	theme := "dark"
	rr := doJSON(t, router, http.MethodPost, "/session", sessionID, rpc.SessionUpdateRequest{APIKey: &key, Theme: &theme})
	require.Equal(t, http.StatusOK, rr.Code)

	var upd rpc.SessionUpdateResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &upd))
	require.True(t, upd.APIKeySet)
	require.Equal(t, "dark", upd.Theme)

	rr = doJSON(t, router, http.MethodPost, "/analyze", sessionID, rpc.AnalyzeRequest{Snippet: "x = 1"})
	require.Equal(t, http.StatusOK, rr.Code)
	require.True(t, called)
}

func TestReportNotFoundBeforeFirstRun(t *testing.T) {
	t.Parallel()

	router := newTestHandler(t, &llmmock.Provider{HasKey: true}).Routes()
	sessionID := loginSession(t, router)

	rr := doJSON(t, router, http.MethodGet, "/report", sessionID, nil)
	require.Equal(t, http.StatusNotFound, rr.Code)
}

func TestListSamples(t *testing.T) {
	t.Parallel()

	router := newTestHandler(t, &llmmock.Provider{HasKey: true}).Routes()

	rr := doJSON(t, router, http.MethodGet, "/samples", "", nil)
	require.Equal(t, http.StatusOK, rr.Code)

	var resp rpc.SamplesResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.Len(t, resp.Samples, 4)
	require.Equal(t, "Simple Syntax Error", resp.Samples[0].Name)
}
