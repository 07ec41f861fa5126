package cli

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/bufbuild/connect-go"
	"golang.org/x/net/http2"

	"github.com/debugmate-ai/debugmate/internal/rpc"
	"github.com/debugmate-ai/debugmate/internal/rpc/connectjson"
	"github.com/debugmate-ai/debugmate/internal/rpc/debug"
)

// daemonClient talks to a running debugmated instance. Login and session
// updates always go over REST; Analyze follows the configured transport.
type daemonClient struct {
	baseURL   string
	transport string
	http      *http.Client
}

func newDaemonClient(addr, transport string) *daemonClient {
	return &daemonClient{
		baseURL:   daemonURL(addr),
		transport: strings.ToLower(strings.TrimSpace(transport)),
		http:      &http.Client{Timeout: 120 * time.Second},
	}
}

func daemonURL(addr string) string {
	if strings.HasPrefix(addr, "http://") || strings.HasPrefix(addr, "https://") {
		return addr
	}
	if strings.HasPrefix(addr, ":") {
		return "http://localhost" + addr
	}
	return "http://" + addr
}

func (c *daemonClient) Login(ctx context.Context, password string) (string, error) {
	var resp rpc.LoginResponse
	if err := c.postJSON(ctx, "/api/v1/login", "", rpc.LoginRequest{Password: password}, &resp); err != nil {
		return "", err
	}
	return resp.SessionID, nil
}

func (c *daemonClient) SetAPIKey(ctx context.Context, sessionID, key string) error {
	var resp rpc.SessionUpdateResponse
	return c.postJSON(ctx, "/api/v1/session", sessionID, rpc.SessionUpdateRequest{APIKey: &key}, &resp)
}

func (c *daemonClient) Analyze(ctx context.Context, sessionID string, req rpc.AnalyzeRequest) (rpc.AnalyzeResponse, error) {
	if c.transport == "rest" {
		var resp rpc.AnalyzeResponse
		err := c.postJSON(ctx, "/api/v1/analyze", sessionID, req, &resp)
		return resp, err
	}

	req.SessionID = sessionID
	client := connect.NewClient[rpc.AnalyzeRequest, rpc.AnalyzeResponse](
		buildH2CClient(),
		c.baseURL+debug.ConnectAnalyzeProcedure,
		connect.WithCodec(connectjson.Codec{}),
	)
	resp, err := client.CallUnary(ctx, connect.NewRequest(&req))
	if err != nil {
		return rpc.AnalyzeResponse{}, err
	}
	return *resp.Msg, nil
}

func (c *daemonClient) postJSON(ctx context.Context, path, sessionID string, body, out any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if sessionID != "" {
		req.Header.Set(debug.SessionHeader, sessionID)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		var errResp rpc.ErrorResponse
		if decodeErr := json.NewDecoder(resp.Body).Decode(&errResp); decodeErr == nil && errResp.Error != "" {
			return fmt.Errorf("daemon returned status %d: %s", resp.StatusCode, errResp.Error)
		}
		return fmt.Errorf("daemon returned status %d", resp.StatusCode)
	}

	return json.NewDecoder(resp.Body).Decode(out)
}

func buildH2CClient() *http.Client {
	return &http.Client{
		Transport: &http2.Transport{
			AllowHTTP: true,
			DialTLSContext: func(ctx context.Context, network, addr string, _ *tls.Config) (net.Conn, error) {
				var d net.Dialer
				return d.DialContext(ctx, network, addr)
			},
		},
	}
}
