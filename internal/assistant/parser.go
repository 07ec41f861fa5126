package assistant

import "strings"

const (
	sectionDelimiter = "### "
	fenceOpen        = "```python"
	fenceClose       = "```"
)

// ParseResponse splits the raw model output on the "### " heading convention
// and extracts the three expected sections. Sections the model did not emit
// stay empty; no schema validation is performed. A response that ignores the
// convention entirely yields an all-empty result, not an error.
func ParseResponse(raw string) DebugResult {
	var res DebugResult

	for _, section := range strings.Split(raw, sectionDelimiter) {
		if body, ok := sectionBody(section, "Explanation"); ok {
			res.Explanation = body
		} else if body, ok := sectionBody(section, "Suggested Fix"); ok {
			res.SuggestedFix = extractFencedCode(body)
		} else if body, ok := sectionBody(section, "Tips"); ok {
			res.Tips = body
		}
	}

	return res
}

// sectionBody matches a chunk against a heading and returns its trimmed
// body. The heading only matches when the token ends the heading line, so
// "Explanations ahead" is not an Explanation section.
func sectionBody(section, heading string) (string, bool) {
	rest, ok := strings.CutPrefix(section, heading)
	if !ok {
		return "", false
	}
	if rest != "" && rest[0] != '\n' && rest[0] != '\r' {
		return "", false
	}
	return strings.TrimSpace(rest), true
}

// extractFencedCode returns the content of the first ```python block in the
// chunk. Without an opening marker the rest of the chunk is discarded.
func extractFencedCode(section string) string {
	start := strings.Index(section, fenceOpen)
	if start < 0 {
		return ""
	}
	rest := section[start+len(fenceOpen):]
	if end := strings.Index(rest, fenceClose); end >= 0 {
		rest = rest[:end]
	}
	return strings.TrimSpace(rest)
}

// missingSections names the sections left empty by the parser, for
// observability of models drifting off the heading convention.
func (r DebugResult) missingSections() []string {
	var out []string
	if r.Explanation == "" {
		out = append(out, "explanation")
	}
	if r.SuggestedFix == "" {
		out = append(out, "suggested_fix")
	}
	if r.Tips == "" {
		out = append(out, "tips")
	}
	return out
}
