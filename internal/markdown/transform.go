package markdown

import (
	"fmt"
	"strings"

	"github.com/yuin/goldmark/ast"
)

// InvalidTitleError is returned when a replacement title is empty or does not
// fit on a single line.
type InvalidTitleError struct {
	Reason string
}

func (e *InvalidTitleError) Error() string {
	return "invalid title: " + e.Reason
}

// NoTitleHeadingError is returned when title replacement finds no level-1
// heading among the document's direct children. After NormalizeHeadings this
// indicates a malformed document or a skipped normalization pass, not a
// recoverable input condition.
type NoTitleHeadingError struct{}

func (e *NoTitleHeadingError) Error() string {
	return "document has no main heading"
}

// AmbiguousTitleError is returned when more than one level-1 heading exists
// among the document's direct children.
type AmbiguousTitleError struct {
	Count int
}

func (e *AmbiguousTitleError) Error() string {
	return fmt.Sprintf("expected exactly 1 main heading, got %d", e.Count)
}

// NormalizeHeadings rewrites heading levels so the shallowest heading in the
// document becomes level 1, preserving relative nesting. A document without
// headings is left untouched. Idempotent.
func NormalizeHeadings(doc *ast.Document) {
	lowest := 0
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if h, ok := n.(*ast.Heading); ok && entering {
			if lowest == 0 || h.Level < lowest {
				lowest = h.Level
			}
		}
		return ast.WalkContinue, nil
	})

	if lowest == 0 {
		lowest = 1
	}
	offset := lowest - 1
	if offset == 0 {
		return
	}

	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if h, ok := n.(*ast.Heading); ok && entering {
			h.Level -= offset
		}
		return ast.WalkContinue, nil
	})
}

// ReplaceTitle replaces the content of the document's single level-1 heading
// with title, verbatim. The title is kept as a literal text node; it is not
// re-parsed for embedded markup.
//
// Only direct children of the document are considered, so a level-1 heading
// nested in a blockquote does not count as a title.
func ReplaceTitle(doc *ast.Document, title string) error {
	if title == "" {
		return &InvalidTitleError{Reason: "empty title"}
	}
	if strings.ContainsAny(title, "\n\r") {
		return &InvalidTitleError{Reason: "title must fit on one line"}
	}

	var headings []*ast.Heading
	for child := doc.FirstChild(); child != nil; child = child.NextSibling() {
		if h, ok := child.(*ast.Heading); ok && h.Level == 1 {
			headings = append(headings, h)
		}
	}

	switch {
	case len(headings) == 0:
		return &NoTitleHeadingError{}
	case len(headings) > 1:
		return &AmbiguousTitleError{Count: len(headings)}
	}

	h := headings[0]
	h.RemoveChildren(h)
	h.AppendChild(h, ast.NewString([]byte(title)))
	return nil
}

// CollapseSoftBreaks replaces every soft line break in the tree with a single
// space. Hard breaks are left alone. Useful for targets like GitHub release
// notes that render soft breaks as real line breaks. Idempotent: the first
// pass leaves no soft breaks behind.
func CollapseSoftBreaks(doc *ast.Document) {
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		t, ok := n.(*ast.Text)
		if !ok || !t.SoftLineBreak() || t.HardLineBreak() {
			return ast.WalkContinue, nil
		}
		t.SetSoftLineBreak(false)
		t.Parent().InsertAfter(t.Parent(), t, ast.NewString([]byte(" ")))
		return ast.WalkContinue, nil
	})
}

// AppendParagraph appends a paragraph holding text verbatim as the last child
// of the document.
func AppendParagraph(doc *ast.Document, text string) {
	p := ast.NewParagraph()
	p.AppendChild(p, ast.NewString([]byte(text)))
	doc.AppendChild(doc, p)
}
