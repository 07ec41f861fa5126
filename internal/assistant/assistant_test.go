package assistant_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/debugmate-ai/debugmate/internal/analysis"
	"github.com/debugmate-ai/debugmate/internal/assistant"
	"github.com/debugmate-ai/debugmate/internal/config"
	"github.com/debugmate-ai/debugmate/internal/llm"
	llmmock "github.com/debugmate-ai/debugmate/internal/llm/mock"
)

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

func newAssistant(t *testing.T, p *llmmock.Provider) *assistant.Assistant {
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
	return assistant.New(reg, analysis.NewChecker(), cfg, nil, nil)
}

func TestAnalyzeFullRun(t *testing.T) {
	t.Parallel()

	snippet := "x = 1\ny = 0\nprint(x / y)"
	var gotReq llm.ChatRequest
	p := &llmmock.Provider{
		HasKey: true,
		ChatFn: func(ctx context.Context, req llm.ChatRequest) (llm.ChatResponse, error) {
			gotReq = req
			return llm.ChatResponse{
				Message: llm.ChatMessage{Role: llm.RoleAssistant, Content: canonicalResponse},
			}, nil
		},
	}

	a := newAssistant(t, p)
	res, err := a.Analyze(context.Background(), assistant.Request{Snippet: snippet})
	require.NoError(t, err)

	// prompt carries the snippet verbatim in a single user message
	require.Len(t, gotReq.Messages, 1)
	require.Equal(t, llm.RoleUser, gotReq.Messages[0].Role)
	require.Contains(t, gotReq.Messages[0].Content, snippet)
	require.Contains(t, gotReq.Messages[0].Content, "### Suggested Fix")
	require.Equal(t, 1000, gotReq.MaxTokens)
	require.InDelta(t, 0.3, gotReq.Temperature, 1e-9)

	require.Equal(t, []string{"No obvious issues found via static analysis"}, res.Issues)
	require.False(t, res.Debug.Failed())
	require.NotEmpty(t, res.Debug.Explanation)
	require.Contains(t, res.Debug.SuggestedFix, "print(x / y)")
	require.NotEmpty(t, res.Debug.Tips)

	// report embeds both code blocks and no N/A for the populated fields
	require.Equal(t, 2, strings.Count(res.Report, "```python"))
	require.Contains(t, res.Report, snippet)
	require.NotContains(t, res.Report, "## AI Explanation\nN/A")
	require.NotContains(t, res.Report, "## Suggested Fix\nN/A")
	require.NotContains(t, res.Report, "## Additional Tips\nN/A")
	require.NotEmpty(t, res.ReportURI)
}

func TestAnalyzeWithoutAPIKeySkipsNetwork(t *testing.T) {
	t.Parallel()

	called := false
	p := &llmmock.Provider{
		HasKey: false,
		ChatFn: func(ctx context.Context, req llm.ChatRequest) (llm.ChatResponse, error) {
			called = true
			return llm.ChatResponse{}, nil
		},
	}

	a := newAssistant(t, p)
	res, err := a.Analyze(context.Background(), assistant.Request{Snippet: "x = 1\n"})
	require.NoError(t, err)

	require.False(t, called)
	require.True(t, res.Debug.Failed())
	require.True(t, strings.HasPrefix(res.Debug.Err, "No OpenAI API key provided."))

	// static half still completes and the report renders N/A for the model fields
	require.Equal(t, []string{"No obvious issues found via static analysis"}, res.Issues)
	require.Contains(t, res.Report, "## AI Explanation\nN/A")
	require.Contains(t, res.Report, "## Suggested Fix\nN/A")
	require.Contains(t, res.Report, "## Additional Tips\nN/A")
}

func TestAnalyzeSessionKeyAllowsCallWithoutServerKey(t *testing.T) {
	t.Parallel()

	p := &llmmock.Provider{
		HasKey: false,
		ChatFn: func(ctx context.Context, req llm.ChatRequest) (llm.ChatResponse, error) {
			require.Equal(t, "sk-session", req.APIKey)
			return llm.ChatResponse{
				Message: llm.ChatMessage{Role: llm.RoleAssistant, Content: canonicalResponse},
			}, nil
		},
	}

	a := newAssistant(t, p)
	res, err := a.Analyze(context.Background(), assistant.Request{Snippet: "x = 1\n", APIKey: "sk-session"})
	require.NoError(t, err)
	require.False(t, res.Debug.Failed())
}

func TestAnalyzeTransportErrorDegrades(t *testing.T) {
	t.Parallel()

	p := &llmmock.Provider{
		HasKey: true,
		ChatFn: func(ctx context.Context, req llm.ChatRequest) (llm.ChatResponse, error) {
			return llm.ChatResponse{}, errors.New("connection refused")
		},
	}

	a := newAssistant(t, p)
	res, err := a.Analyze(context.Background(), assistant.Request{Snippet: "x = 1\n"})
	require.NoError(t, err)

	require.True(t, res.Debug.Failed())
	require.True(t, strings.HasPrefix(res.Debug.Err, "Failed to query LLM:"))
	require.NotEmpty(t, res.Issues)
	require.NotEmpty(t, res.Report)
}

func TestAnalyzeRejectsEmptySnippet(t *testing.T) {
	t.Parallel()

	a := newAssistant(t, &llmmock.Provider{HasKey: true})
	_, err := a.Analyze(context.Background(), assistant.Request{Snippet: "   \n"})
	require.ErrorIs(t, err, assistant.ErrEmptySnippet)
}

func TestAnalyzeSyntaxErrorStillQueriesModel(t *testing.T) {
	t.Parallel()

	p := &llmmock.Provider{
		HasKey: true,
		ChatFn: func(ctx context.Context, req llm.ChatRequest) (llm.ChatResponse, error) {
			return llm.ChatResponse{
				Message: llm.ChatMessage{Role: llm.RoleAssistant, Content: canonicalResponse},
			}, nil
		},
	}

	a := newAssistant(t, p)
	res, err := a.Analyze(context.Background(), assistant.Request{Snippet: "def foo()\n    print('Hello')"})
	require.NoError(t, err)

	require.Len(t, res.Issues, 1)
	require.True(t, strings.HasPrefix(res.Issues[0], "Syntax error found:"))
	require.False(t, res.Debug.Failed())
}
