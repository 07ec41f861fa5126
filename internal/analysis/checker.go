package analysis

import (
	"context"
	"fmt"
	"sync"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"
)

const noIssuesMessage = "No obvious issues found via static analysis"

// Checker performs shallow static analysis of Python snippets using Tree-sitter.
type Checker struct {
	mu     sync.Mutex
	parser *sitter.Parser
}

// NewChecker creates a checker with a Python grammar attached.
func NewChecker() *Checker {
	parser := sitter.NewParser()
	parser.SetLanguage(python.GetLanguage())
	return &Checker{parser: parser}
}

// Check parses the snippet and returns human-readable findings in discovery
// order. The result is never empty: a parse failure yields a single syntax
// error entry, a clean walk yields a single "no issues" entry.
func (c *Checker) Check(ctx context.Context, snippet string) (issues []string) {
	defer func() {
		if r := recover(); r != nil {
			issues = []string{fmt.Sprintf("Error during static analysis: %v", r)}
		}
	}()

	content := []byte(snippet)

	// sitter.Parser is not safe for concurrent use.
	c.mu.Lock()
	tree, err := c.parser.ParseCtx(ctx, nil, content)
	c.mu.Unlock()
	if err != nil {
		return []string{fmt.Sprintf("Error during static analysis: %v", err)}
	}
	defer tree.Close()

	root := tree.RootNode()
	if root.HasError() {
		msg, line := firstSyntaxError(root)
		return []string{fmt.Sprintf("Syntax error found: %s at line %d", msg, line)}
	}

	walk(root, content, &issues)
	if len(issues) == 0 {
		return []string{noIssuesMessage}
	}
	return issues
}

// walk visits every node in document order and records findings.
func walk(n *sitter.Node, content []byte, issues *[]string) {
	switch n.Type() {
	case "identifier":
		if n.Content(content) == "print" && isLoadContext(n) && !isCallee(n) {
			*issues = append(*issues, fmt.Sprintf("Potential debug print statement found at line %d", line(n)))
		}
	case "for_statement":
		if target := n.ChildByFieldName("left"); target != nil && target.Type() != "identifier" {
			*issues = append(*issues, fmt.Sprintf("Unusual for-loop target at line %d", line(n)))
		}
	}

	for i := 0; i < int(n.ChildCount()); i++ {
		walk(n.Child(i), content, issues)
	}
}

// isCallee reports whether the identifier is the function part of a call
// expression, i.e. a regular print(...) invocation.
func isCallee(n *sitter.Node) bool {
	parent := n.Parent()
	if parent == nil || parent.Type() != "call" {
		return false
	}
	fn := parent.ChildByFieldName("function")
	return fn != nil && sameNode(fn, n)
}

// isLoadContext filters out store positions: assignment targets, loop
// targets and parameter lists.
func isLoadContext(n *sitter.Node) bool {
	parent := n.Parent()
	if parent == nil {
		return true
	}
	switch parent.Type() {
	case "assignment", "augmented_assignment", "for_statement":
		if left := parent.ChildByFieldName("left"); left != nil && sameNode(left, n) {
			return false
		}
	case "parameters", "lambda_parameters":
		return false
	}
	return true
}

// firstSyntaxError locates the earliest ERROR or MISSING node and renders a
// short diagnostic for it.
func firstSyntaxError(root *sitter.Node) (string, int) {
	var found *sitter.Node
	var visit func(n *sitter.Node)
	visit = func(n *sitter.Node) {
		if found != nil {
			return
		}
		if n.IsMissing() || n.Type() == "ERROR" {
			found = n
			return
		}
		for i := 0; i < int(n.ChildCount()); i++ {
			visit(n.Child(i))
		}
	}
	visit(root)

	if found == nil {
		// HasError was set but no concrete node surfaced; report the root.
		return "invalid syntax", line(root)
	}
	if found.IsMissing() {
		return fmt.Sprintf("missing %q", found.Type()), line(found)
	}
	return "invalid syntax", line(found)
}

func sameNode(a, b *sitter.Node) bool {
	return a.StartByte() == b.StartByte() && a.EndByte() == b.EndByte()
}

func line(n *sitter.Node) int {
	return int(n.StartPoint().Row) + 1
}
