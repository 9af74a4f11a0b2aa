package markdown

import (
	"fmt"
	"strings"

	"github.com/yuin/goldmark/ast"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
)

// Render serializes a document tree back to markdown text. source must be the
// slice the tree was parsed from, since text nodes reference segments of it.
//
// The output is normalized rather than byte-identical to the input: headings
// come out in ATX form, hard breaks as a trailing backslash, and top-level
// blocks separated by a single blank line. Inline text is re-emitted verbatim
// from the source, so escapes and entities survive untouched.
func Render(doc ast.Node, source []byte) string {
	r := &renderer{source: source}
	lines := r.blocks(doc, true)
	return strings.Join(lines, "\n") + "\n"
}

type renderer struct {
	source []byte
}

// blocks renders every child block of parent. When separate is true a blank
// line is placed between consecutive blocks (loose rendering).
func (r *renderer) blocks(parent ast.Node, separate bool) []string {
	var out []string
	for c := parent.FirstChild(); c != nil; c = c.NextSibling() {
		if len(out) > 0 && separate {
			out = append(out, "")
		}
		out = append(out, r.block(c)...)
	}
	return out
}

func (r *renderer) block(n ast.Node) []string {
	switch n := n.(type) {
	case *ast.Heading:
		content := strings.ReplaceAll(r.inline(n), "\n", " ")
		return []string{strings.Repeat("#", n.Level) + " " + content}
	case *ast.Paragraph:
		return strings.Split(r.inline(n), "\n")
	case *ast.TextBlock:
		return strings.Split(r.inline(n), "\n")
	case *ast.Blockquote:
		return prefixLines(r.blocks(n, true), "> ", ">")
	case *ast.List:
		return r.list(n)
	case *ast.FencedCodeBlock:
		return r.fencedCode(n)
	case *ast.CodeBlock:
		return prefixLines(r.rawLines(n.Lines()), "    ", "")
	case *ast.ThematicBreak:
		return []string{"---"}
	case *ast.HTMLBlock:
		lines := r.rawLines(n.Lines())
		if n.HasClosure() {
			lines = append(lines, strings.TrimRight(string(n.ClosureLine.Value(r.source)), "\n"))
		}
		return lines
	case *east.Table:
		return r.table(n)
	default:
		if n.HasChildren() {
			return r.blocks(n, true)
		}
		return nil
	}
}

func (r *renderer) list(l *ast.List) []string {
	number := l.Start
	if number == 0 {
		number = 1
	}

	var out []string
	for item := l.FirstChild(); item != nil; item = item.NextSibling() {
		var marker string
		if l.IsOrdered() {
			marker = fmt.Sprintf("%d%c ", number, l.Marker)
			number++
		} else {
			marker = string(l.Marker) + " "
		}
		indent := strings.Repeat(" ", len(marker))

		itemLines := r.blocks(item, !l.IsTight)
		if len(itemLines) == 0 {
			itemLines = []string{""}
		}
		for i, line := range itemLines {
			switch {
			case i == 0:
				out = append(out, strings.TrimRight(marker+line, " "))
			case line == "":
				out = append(out, "")
			default:
				out = append(out, indent+line)
			}
		}

		if !l.IsTight && item.NextSibling() != nil {
			out = append(out, "")
		}
	}
	return out
}

func (r *renderer) fencedCode(n *ast.FencedCodeBlock) []string {
	body := r.rawLines(n.Lines())

	fence := "```"
	for _, line := range body {
		if run := longestRun(line, '`'); run >= len(fence) {
			fence = strings.Repeat("`", run+1)
		}
	}

	out := make([]string, 0, len(body)+2)
	out = append(out, fence+string(n.Language(r.source)))
	out = append(out, body...)
	out = append(out, fence)
	return out
}

func (r *renderer) table(t *east.Table) []string {
	var out []string
	for row := t.FirstChild(); row != nil; row = row.NextSibling() {
		cells := make([]string, 0, row.ChildCount())
		for cell := row.FirstChild(); cell != nil; cell = cell.NextSibling() {
			cells = append(cells, strings.ReplaceAll(r.inline(cell), "\n", " "))
		}
		out = append(out, "| "+strings.Join(cells, " | ")+" |")

		if _, ok := row.(*east.TableHeader); ok {
			out = append(out, delimiterRow(t.Alignments))
		}
	}
	return out
}

func delimiterRow(alignments []east.Alignment) string {
	cols := make([]string, len(alignments))
	for i, a := range alignments {
		switch a {
		case east.AlignLeft:
			cols[i] = ":---"
		case east.AlignRight:
			cols[i] = "---:"
		case east.AlignCenter:
			cols[i] = ":---:"
		default:
			cols[i] = "---"
		}
	}
	return "| " + strings.Join(cols, " | ") + " |"
}

// inline renders the inline children of parent to a string. Soft breaks
// become newlines, hard breaks a backslash followed by a newline; callers
// embedding the result in single-line contexts flatten the newlines.
func (r *renderer) inline(parent ast.Node) string {
	var b strings.Builder
	for c := parent.FirstChild(); c != nil; c = c.NextSibling() {
		r.inlineNode(&b, c)
	}
	return b.String()
}

func (r *renderer) inlineNode(b *strings.Builder, n ast.Node) {
	switch n := n.(type) {
	case *ast.Text:
		b.Write(n.Segment.Value(r.source))
		switch {
		case n.HardLineBreak():
			b.WriteString("\\\n")
		case n.SoftLineBreak():
			b.WriteString("\n")
		}
	case *ast.String:
		b.Write(n.Value)
	case *ast.CodeSpan:
		r.codeSpan(b, n)
	case *ast.Emphasis:
		delim := strings.Repeat("*", n.Level)
		b.WriteString(delim)
		b.WriteString(r.inline(n))
		b.WriteString(delim)
	case *east.Strikethrough:
		b.WriteString("~~")
		b.WriteString(r.inline(n))
		b.WriteString("~~")
	case *ast.Link:
		b.WriteString("[")
		b.WriteString(r.inline(n))
		b.WriteString("](")
		b.Write(n.Destination)
		if len(n.Title) > 0 {
			fmt.Fprintf(b, " %q", n.Title)
		}
		b.WriteString(")")
	case *ast.Image:
		b.WriteString("![")
		b.WriteString(r.inline(n))
		b.WriteString("](")
		b.Write(n.Destination)
		if len(n.Title) > 0 {
			fmt.Fprintf(b, " %q", n.Title)
		}
		b.WriteString(")")
	case *ast.AutoLink:
		b.WriteString("<")
		b.Write(n.URL(r.source))
		b.WriteString(">")
	case *ast.RawHTML:
		for i := 0; i < n.Segments.Len(); i++ {
			seg := n.Segments.At(i)
			b.Write(seg.Value(r.source))
		}
	default:
		for c := n.FirstChild(); c != nil; c = c.NextSibling() {
			r.inlineNode(b, c)
		}
	}
}

func (r *renderer) codeSpan(b *strings.Builder, n *ast.CodeSpan) {
	var raw strings.Builder
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		if t, ok := c.(*ast.Text); ok {
			raw.Write(t.Segment.Value(r.source))
		}
	}
	// Code spans cannot hold line breaks in the output form we emit.
	content := strings.ReplaceAll(raw.String(), "\n", " ")

	delim := "`"
	if run := longestRun(content, '`'); run > 0 {
		delim = strings.Repeat("`", run+1)
	}
	if delim != "`" || strings.HasPrefix(content, "`") || strings.HasSuffix(content, "`") {
		content = " " + content + " "
	}
	b.WriteString(delim)
	b.WriteString(content)
	b.WriteString(delim)
}

// rawLines copies block content lines out of the source, without trailing
// newlines.
func (r *renderer) rawLines(segments *text.Segments) []string {
	lines := make([]string, 0, segments.Len())
	for i := 0; i < segments.Len(); i++ {
		seg := segments.At(i)
		lines = append(lines, strings.TrimRight(string(seg.Value(r.source)), "\n"))
	}
	return lines
}

func prefixLines(lines []string, prefix, emptyPrefix string) []string {
	out := make([]string, len(lines))
	for i, line := range lines {
		if line == "" {
			out[i] = emptyPrefix
		} else {
			out[i] = prefix + line
		}
	}
	return out
}

func longestRun(s string, c byte) int {
	longest, run := 0, 0
	for i := 0; i < len(s); i++ {
		if s[i] == c {
			run++
			if run > longest {
				longest = run
			}
		} else {
			run = 0
		}
	}
	return longest
}
