package assistant

import "fmt"

// debugPromptTemplate instructs the model to answer with the fixed section
// headings the parser splits on. The snippet and error message are embedded
// verbatim.
const debugPromptTemplate = "You are an expert Python debugging assistant. Analyze this code and any error messages.\n" +
	"Provide:\n" +
	"1. Clear explanation of issues (in markdown)\n" +
	"2. Suggested fixes (as Python code blocks)\n" +
	"3. Any relevant tips\n" +
	"\n" +
	"Code:\n" +
	"%s\n" +
	"\n" +
	"Error message:\n" +
	"%s\n" +
	"\n" +
	"Format your response with clear sections:\n" +
	"### Explanation\n" +
	"[your explanation here]\n" +
	"\n" +
	"### Suggested Fix\n" +
	"```python\n" +
	"[fixed code here]\n" +
	"```\n" +
	"\n" +
	"### Tips\n" +
	"[any additional tips]"

// buildDebugPrompt renders the single user-role prompt for a run.
func buildDebugPrompt(snippet, errorMessage string) string {
	return fmt.Sprintf(debugPromptTemplate, snippet, errorMessage)
}
