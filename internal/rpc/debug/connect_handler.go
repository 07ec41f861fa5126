package debug

import (
	"context"
	"errors"
	"net/http"

	"github.com/bufbuild/connect-go"

	"github.com/debugmate-ai/debugmate/internal/assistant"
	"github.com/debugmate-ai/debugmate/internal/rpc"
	"github.com/debugmate-ai/debugmate/internal/rpc/connectjson"
)

// ConnectAnalyzeProcedure is the unary Connect route for one analysis run.
const ConnectAnalyzeProcedure = "/debugmate.v1.DebugService/Analyze"

// NewConnectHandler builds the Connect unary handler for Analyze. Callers
// authenticate by passing a session ID obtained from the REST login.
func NewConnectHandler(h *Handler) (string, http.Handler) {
	return ConnectAnalyzeProcedure, connect.NewUnaryHandler(
		ConnectAnalyzeProcedure,
		h.analyzeConnect,
		connect.WithCodec(connectjson.Codec{}),
	)
}

func (h *Handler) analyzeConnect(ctx context.Context, req *connect.Request[rpc.AnalyzeRequest]) (*connect.Response[rpc.AnalyzeResponse], error) {
	sess, err := h.sessions.Get(req.Msg.SessionID)
	if err != nil {
		h.metrics.RecordTransportError("connect", "unknown_session")
		return nil, connect.NewError(connect.CodeUnauthenticated, err)
	}

	resp, err := h.runAnalysis(ctx, sess, *req.Msg)
	if err != nil {
		if errors.Is(err, assistant.ErrEmptySnippet) {
			h.metrics.RecordTransportError("connect", "empty_snippet")
			return nil, connect.NewError(connect.CodeInvalidArgument, err)
		}
		h.metrics.RecordTransportError("connect", "pipeline_error")
		return nil, connect.NewError(connect.CodeInternal, err)
	}

	return connect.NewResponse(&resp), nil
}
