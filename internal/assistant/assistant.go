package assistant

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/debugmate-ai/debugmate/internal/analysis"
	"github.com/debugmate-ai/debugmate/internal/config"
	"github.com/debugmate-ai/debugmate/internal/llm"
	"github.com/debugmate-ai/debugmate/internal/observability"
	"github.com/debugmate-ai/debugmate/internal/report"
)

// ErrEmptySnippet is returned when a run is requested without code.
var ErrEmptySnippet = errors.New("snippet is required")

// missingKeyMessage is surfaced in the result panel when neither the session
// nor the server configuration carries an API key. The run still completes
// the static-analysis half.
const missingKeyMessage = "No OpenAI API key provided. Please set an API key for your session."

// Assistant orchestrates the analysis pipeline: static check, one LLM call,
// response parsing and report rendering.
type Assistant struct {
	registry *llm.Registry
	checker  *analysis.Checker
	cfg      config.AssistantConfig
	logger   *zap.Logger
	metrics  *observability.Metrics
	now      func() time.Time
}

// New creates an Assistant. Logger and metrics may be nil.
func New(registry *llm.Registry, checker *analysis.Checker, cfg config.AssistantConfig, logger *zap.Logger, metrics *observability.Metrics) *Assistant {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Assistant{
		registry: registry,
		checker:  checker,
		cfg:      cfg,
		logger:   logger,
		metrics:  metrics,
		now:      time.Now,
	}
}

// Analyze runs the full pipeline for one snippet. LLM failures degrade into
// DebugResult.Err rather than an error return: the report is always built.
func (a *Assistant) Analyze(ctx context.Context, req Request) (Result, error) {
	if strings.TrimSpace(req.Snippet) == "" {
		return Result{}, ErrEmptySnippet
	}
	if a.cfg.MaxSnippetBytes > 0 && len(req.Snippet) > a.cfg.MaxSnippetBytes {
		return Result{}, fmt.Errorf("snippet exceeds %d bytes", a.cfg.MaxSnippetBytes)
	}

	started := time.Now()
	issues := a.checker.Check(ctx, req.Snippet)
	debug, outcome := a.queryModel(ctx, req)

	generatedAt := a.now()
	md := report.Render(report.Input{
		Snippet:      req.Snippet,
		ErrorMessage: req.ErrorMessage,
		Issues:       issues,
		Explanation:  debug.Explanation,
		SuggestedFix: debug.SuggestedFix,
		Tips:         debug.Tips,
		GeneratedAt:  generatedAt,
	})

	a.metrics.RecordAnalyze(outcome, time.Since(started))

	return Result{
		Issues:      issues,
		Debug:       debug,
		Report:      md,
		ReportURI:   report.DataURI(md),
		GeneratedAt: generatedAt,
	}, nil
}

// queryModel issues the single completion call and parses its output. The
// second return value is the outcome label for metrics.
func (a *Assistant) queryModel(ctx context.Context, req Request) (DebugResult, string) {
	provider, route, err := a.registry.Resolve(req.Model)
	if err != nil {
		return DebugResult{Err: "Failed to query LLM: " + err.Error()}, "resolve_error"
	}

	if req.APIKey == "" && !provider.HasCredential() {
		return DebugResult{Err: missingKeyMessage}, "missing_key"
	}

	chatReq := llm.ChatRequest{
		Model: route.Model,
		Messages: []llm.ChatMessage{
			{Role: llm.RoleUser, Content: buildDebugPrompt(req.Snippet, req.ErrorMessage)},
		},
		MaxTokens:   pickMaxTokens(a.cfg.MaxTokens, route.MaxTokens),
		Temperature: pickTemperature(a.cfg.Temperature, route.Temperature),
		APIKey:      req.APIKey,
	}

	resp, err := provider.Chat(ctx, chatReq)
	if err != nil {
		a.metrics.RecordLLMFailure(provider.Name())
		a.logger.Warn("llm call failed",
			zap.String("provider", provider.Name()),
			zap.String("model", route.Model),
			zap.Error(err))
		return DebugResult{Err: "Failed to query LLM: " + err.Error()}, "llm_error"
	}

	parsed := ParseResponse(resp.Message.Content)
	if missing := parsed.missingSections(); len(missing) > 0 {
		for _, section := range missing {
			a.metrics.RecordEmptySection(section)
		}
		a.logger.Warn("model response missing sections",
			zap.String("model", route.Model),
			zap.Strings("sections", missing))
	}

	return parsed, "ok"
}

// pickMaxTokens prefers the per-route limit over the assistant default.
func pickMaxTokens(cfgValue, routeValue int) int {
	if routeValue > 0 {
		return routeValue
	}
	return cfgValue
}

// pickTemperature prefers the per-route temperature over the assistant default.
func pickTemperature(cfgValue, routeValue float64) float64 {
	if routeValue > 0 {
		return routeValue
	}
	return cfgValue
}
