package report

import (
	"encoding/base64"
	"fmt"
	"strings"
	"time"
)

// Filename is the suggested name for a downloaded report.
const Filename = "debug_report.md"

const timeLayout = "2006-01-02 15:04:05"

// Input carries everything a report is built from. All fields are treated
// as data; the renderer never re-validates or rewrites them.
type Input struct {
	Snippet      string
	ErrorMessage string
	Issues       []string
	Explanation  string
	SuggestedFix string
	Tips         string
	GeneratedAt  time.Time
}

// Render produces the markdown report. Deterministic for a fixed Input:
// the snippet is embedded byte-for-byte inside a fenced block, and every
// empty optional field renders as the literal N/A.
func Render(in Input) string {
	var b strings.Builder

	b.WriteString("# AI Code Debugging Report\n\n")
	fmt.Fprintf(&b, "**Date:** %s\n\n---\n\n", in.GeneratedAt.Format(timeLayout))

	b.WriteString("## Submitted Code\n")
	fmt.Fprintf(&b, "```python\n%s\n```\n\n", in.Snippet)

	b.WriteString("## Error Message\n")
	b.WriteString(orNA(in.ErrorMessage))
	b.WriteString("\n\n---\n\n## Static Analysis\n")
	for _, issue := range in.Issues {
		fmt.Fprintf(&b, "- %s\n", issue)
	}

	b.WriteString("\n---\n\n## AI Explanation\n")
	b.WriteString(orNA(in.Explanation))

	b.WriteString("\n\n## Suggested Fix\n")
	if in.SuggestedFix != "" {
		fmt.Fprintf(&b, "```python\n%s\n```\n", in.SuggestedFix)
	} else {
		b.WriteString("N/A\n")
	}

	b.WriteString("\n## Additional Tips\n")
	b.WriteString(orNA(in.Tips))
	b.WriteString("\n")

	return b.String()
}

// DataURI encodes the report for in-browser download.
func DataURI(md string) string {
	return "data:text/markdown;base64," + base64.StdEncoding.EncodeToString([]byte(md))
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}
