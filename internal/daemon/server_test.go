package daemon

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/debugmate-ai/debugmate/internal/config"
)

func testConfig() *config.Config {
	return &config.Config{
		Version: "1",
		Auth:    config.AuthConfig{Password: "hailetmein"},
		Providers: map[string]config.ProviderConfig{
			"openai": {Type: "openai", APIKey: "sk-test"},
		},
		Models: map[string]config.ModelConfig{
			"gpt-3.5-turbo": {Provider: "openai", Model: "gpt-3.5-turbo", Default: true},
		},
		Assistant: config.AssistantConfig{MaxTokens: 1000, Temperature: 0.3, HistoryLimit: 50, SummaryLength: 60},
		Server:    config.ServerConfig{Addr: ":0", MetricsEnabled: true, Transport: "connect"},
	}
}

func TestNewServerWiresPipeline(t *testing.T) {
	t.Parallel()

	srv, err := NewServer(testConfig(), zap.NewNop())
	require.NoError(t, err)
	require.NotNil(t, srv.handler)
}

func TestHealthEndpoint(t *testing.T) {
	t.Parallel()

	srv, err := NewServer(testConfig(), zap.NewNop())
	require.NoError(t, err)

	rr := httptest.NewRecorder()
	srv.buildHandler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	require.JSONEq(t, `{"status":"ok"}`, rr.Body.String())
}

func TestMetricsDisabledReturnsNotFound(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	cfg.Server.MetricsEnabled = false
	srv, err := NewServer(cfg, zap.NewNop())
	require.NoError(t, err)

	rr := httptest.NewRecorder()
	srv.buildHandler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusNotFound, rr.Code)
}

func TestMetricsEnabledServesRegistry(t *testing.T) {
	t.Parallel()

	srv, err := NewServer(testConfig(), zap.NewNop())
	require.NoError(t, err)

	rr := httptest.NewRecorder()
	srv.buildHandler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rr.Code)
}

func TestRestTransportSkipsConnectRoute(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	cfg.Server.Transport = "rest"
	srv, err := NewServer(cfg, zap.NewNop())
	require.NoError(t, err)

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/debugmate.v1.DebugService/Analyze", nil)
	srv.buildHandler().ServeHTTP(rr, req)
	require.Equal(t, http.StatusNotFound, rr.Code)
}
