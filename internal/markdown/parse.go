// Package markdown parses release notes into a goldmark document tree,
// applies normalization passes (heading levels, title replacement, soft-break
// collapsing), and serializes the tree back to markdown text.
package markdown

import (
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/text"
)

// md is the shared parser instance. GFM tables and strikethrough are enabled
// because changelogs routinely carry both.
var md = goldmark.New(
	goldmark.WithExtensions(
		extension.Table,
		extension.Strikethrough,
	),
)

// Parse builds a document tree from markdown source. The returned tree keeps
// references into source; pass the same slice to Render.
func Parse(source []byte) *ast.Document {
	return md.Parser().Parse(text.NewReader(source)).(*ast.Document)
}
