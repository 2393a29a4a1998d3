package formatter

import (
	"fmt"
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
)

type blockKind int

const (
	blockHeading blockKind = iota
	blockParagraph
	blockListItem
	blockCode
	blockRule
)

// block is a flattened piece of the report for the paged exports
type block struct {
	kind  blockKind
	level int
	text  string
}

var (
	blockParser = goldmark.New(goldmark.WithExtensions(extension.GFM)).Parser()
	tagStripper = bluemonday.StrictPolicy()
)

// parseBlocks flattens markdown into headings, paragraphs, list items and code.
// Inline markup is dropped; raw HTML keeps only its text.
func parseBlocks(markdown string) []block {
	src := []byte(markdown)
	doc := blockParser.Parse(text.NewReader(src))

	var out []block
	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		out = appendBlocks(out, n, src)
	}
	return out
}

func appendBlocks(out []block, n ast.Node, src []byte) []block {
	switch node := n.(type) {
	case *ast.Heading:
		return append(out, block{kind: blockHeading, level: node.Level, text: inlineText(node, src)})
	case *ast.Paragraph, *ast.TextBlock:
		if t := inlineText(node, src); t != "" {
			return append(out, block{kind: blockParagraph, text: t})
		}
	case *ast.List:
		i := node.Start
		for item := node.FirstChild(); item != nil; item = item.NextSibling() {
			marker := "• "
			if node.IsOrdered() {
				marker = fmt.Sprintf("%d. ", i)
				i++
			}
			out = append(out, block{kind: blockListItem, text: marker + itemText(item, src)})
		}
	case *ast.FencedCodeBlock, *ast.CodeBlock:
		return append(out, block{kind: blockCode, text: rawLines(node, src)})
	case *ast.HTMLBlock:
		if t := stripTags(rawLines(node, src)); t != "" {
			return append(out, block{kind: blockParagraph, text: t})
		}
	case *ast.ThematicBreak:
		return append(out, block{kind: blockRule})
	case *ast.Blockquote:
		for c := node.FirstChild(); c != nil; c = c.NextSibling() {
			out = appendBlocks(out, c, src)
		}
	case *east.Table:
		for row := node.FirstChild(); row != nil; row = row.NextSibling() {
			var cells []string
			for cell := row.FirstChild(); cell != nil; cell = cell.NextSibling() {
				cells = append(cells, inlineText(cell, src))
			}
			out = append(out, block{kind: blockParagraph, text: strings.Join(cells, " | ")})
		}
	}
	return out
}

// itemText joins the blocks of a list item, nested lists included
func itemText(item ast.Node, src []byte) string {
	var parts []string
	for c := item.FirstChild(); c != nil; c = c.NextSibling() {
		for _, b := range appendBlocks(nil, c, src) {
			parts = append(parts, b.text)
		}
	}
	return strings.Join(parts, " ")
}

func inlineText(n ast.Node, src []byte) string {
	var sb strings.Builder
	_ = ast.Walk(n, func(c ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch t := c.(type) {
		case *ast.Text:
			sb.Write(t.Segment.Value(src))
			if t.SoftLineBreak() || t.HardLineBreak() {
				sb.WriteByte(' ')
			}
		case *ast.String:
			sb.Write(t.Value)
		case *ast.RawHTML:
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})
	return strings.TrimSpace(sb.String())
}

func rawLines(n ast.Node, src []byte) string {
	lines := n.Lines()
	var sb strings.Builder
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		sb.Write(seg.Value(src))
	}
	return strings.TrimRight(sb.String(), "\n")
}

func stripTags(s string) string {
	stripped := html.UnescapeString(tagStripper.Sanitize(s))
	var lines []string
	for _, line := range strings.Split(stripped, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, " ")
}
