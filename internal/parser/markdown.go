package parser

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// MarkdownParser treats every list item in a Markdown document as a pattern,
// so runbooks can keep their pattern lists next to prose. Inline code is taken
// literally without its backticks. Nested lists contribute their own items.
type MarkdownParser struct {
	markdown goldmark.Markdown
}

// NewMarkdownParser creates a new Markdown parser
func NewMarkdownParser() *MarkdownParser {
	return &MarkdownParser{
		markdown: goldmark.New(),
	}
}

// Parse implements Parser.
func (p *MarkdownParser) Parse(r io.Reader) (*PatternFile, error) {
	source, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read patterns: %w", err)
	}

	doc := p.markdown.Parser().Parse(text.NewReader(source))

	pf := &PatternFile{}
	err = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if item, ok := n.(*ast.ListItem); ok {
			if pattern := strings.TrimSpace(extractText(item, source)); pattern != "" {
				pf.Patterns = append(pf.Patterns, pattern)
			}
		}
		return ast.WalkContinue, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk markdown: %w", err)
	}
	return pf, nil
}

// extractText concatenates the text under n, skipping nested lists.
func extractText(n ast.Node, source []byte) string {
	var buf bytes.Buffer
	var collect func(ast.Node)
	collect = func(node ast.Node) {
		for c := node.FirstChild(); c != nil; c = c.NextSibling() {
			switch v := c.(type) {
			case *ast.List:
				continue
			case *ast.Text:
				buf.Write(v.Segment.Value(source))
				if v.SoftLineBreak() || v.HardLineBreak() {
					buf.WriteByte(' ')
				}
			case *ast.String:
				buf.Write(v.Value)
			default:
				collect(c)
			}
		}
	}
	collect(n)
	return buf.String()
}
