package rpc

// LoginRequest carries the shared password for the session gate.
type LoginRequest struct {
	Password string `json:"password"`
}

// LoginResponse returns the ID of a freshly created session.
type LoginResponse struct {
	SessionID string `json:"session_id"`
}

// SessionUpdateRequest mutates session-scoped settings. Nil fields are left
// untouched.
type SessionUpdateRequest struct {
	APIKey *string `json:"api_key,omitempty"`
	Theme  *string `json:"theme,omitempty"`
}

// SessionUpdateResponse echoes the applied settings (the key itself is
// never echoed back).
type SessionUpdateResponse struct {
	Theme     string `json:"theme"`
	APIKeySet bool   `json:"api_key_set"`
}

// AnalyzeRequest is the top-level request for one analysis run.
// SessionID is carried in the body for the Connect transport; the REST
// transport reads it from the X-Session-Id header instead.
type AnalyzeRequest struct {
	SessionID    string `json:"session_id,omitempty"`
	Model        string `json:"model,omitempty"`
	Snippet      string `json:"snippet"`
	ErrorMessage string `json:"error_message,omitempty"`
}

// AnalyzeResponse is the combined outcome of one run. Error is populated
// instead of the three section fields when the LLM half failed; the static
// analysis results and the report are present either way.
type AnalyzeResponse struct {
	SessionID    string   `json:"session_id"`
	Issues       []string `json:"issues"`
	Explanation  string   `json:"explanation,omitempty"`
	SuggestedFix string   `json:"suggested_fix,omitempty"`
	Tips         string   `json:"tips,omitempty"`
	Error        string   `json:"error,omitempty"`
	Report       string   `json:"report"`
	ReportURI    string   `json:"report_uri"`
	ReportName   string   `json:"report_name"`
	GeneratedAt  string   `json:"generated_at"`
}

// HistoryEntry is one recorded run, newest first in HistoryResponse.
type HistoryEntry struct {
	Timestamp    string   `json:"timestamp"`
	Summary      string   `json:"summary"`
	Snippet      string   `json:"snippet"`
	ErrorMessage string   `json:"error_message,omitempty"`
	Issues       []string `json:"issues"`
	Explanation  string   `json:"explanation,omitempty"`
	SuggestedFix string   `json:"suggested_fix,omitempty"`
	Tips         string   `json:"tips,omitempty"`
	Error        string   `json:"error,omitempty"`
}

// HistoryResponse lists the session history.
type HistoryResponse struct {
	Entries []HistoryEntry `json:"entries"`
}

// SampleInfo is one entry of the sample snippet catalog.
type SampleInfo struct {
	Name string `json:"name"`
	Code string `json:"code"`
}

// SamplesResponse lists the sample catalog.
type SamplesResponse struct {
	Samples []SampleInfo `json:"samples"`
}

// ErrorResponse is the JSON error envelope for the REST transport.
type ErrorResponse struct {
	Error string `json:"error"`
}
