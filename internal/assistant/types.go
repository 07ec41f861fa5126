package assistant

import "time"

// Request is a single analysis invocation.
type Request struct {
	SessionID    string
	Model        string
	Snippet      string
	ErrorMessage string
	// APIKey is the session-scoped credential forwarded to the provider.
	APIKey string
}

// DebugResult holds the parsed model response. Either the three section
// fields or Err is populated, never both.
type DebugResult struct {
	Explanation  string
	SuggestedFix string
	Tips         string
	Err          string
}

// Failed reports whether the LLM half of the run produced an error instead
// of parsed sections.
func (r DebugResult) Failed() bool {
	return r.Err != ""
}

// Result is the outcome of one full pipeline run.
type Result struct {
	Issues      []string
	Debug       DebugResult
	Report      string
	ReportURI   string
	GeneratedAt time.Time
}
