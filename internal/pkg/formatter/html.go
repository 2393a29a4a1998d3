package formatter

import (
	"bytes"
	"fmt"
	"html"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	gmhtml "github.com/yuin/goldmark/renderer/html"
)

const (
	htmlContentType   = "text/html; charset=utf-8"
	htmlFileExtension = ".html"
)

const htmlPage = `<!DOCTYPE html>
<html lang="zh-CN">
<head>
<meta charset="utf-8">
<title>%s</title>
<style>
body { max-width: 860px; margin: 2em auto; padding: 0 1em; font-family: "PingFang SC", "Microsoft YaHei", sans-serif; line-height: 1.6; }
table { border-collapse: collapse; }
th, td { border: 1px solid #ccc; padding: 4px 8px; }
details { margin: 0.5em 0; }
</style>
</head>
<body>
%s
</body>
</html>
`

// HTMLFormatter renders the report to a standalone page. Raw HTML in the report
// (the collapsible transcript) is kept but sanitized.
type HTMLFormatter struct {
	md     goldmark.Markdown
	policy *bluemonday.Policy
}

func NewHTMLFormatter() *HTMLFormatter {
	policy := bluemonday.UGCPolicy()
	policy.AllowElements("details", "summary")

	return &HTMLFormatter{
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithRendererOptions(gmhtml.WithUnsafe()),
		),
		policy: policy,
	}
}

func (hf *HTMLFormatter) Format(title, markdown string) ([]byte, error) {
	var body bytes.Buffer
	if err := hf.md.Convert([]byte(markdown), &body); err != nil {
		return nil, fmt.Errorf("render markdown: %w", err)
	}

	safe := hf.policy.SanitizeBytes(body.Bytes())

	var buf bytes.Buffer
	fmt.Fprintf(&buf, htmlPage, html.EscapeString(title), safe)
	return buf.Bytes(), nil
}

func (hf *HTMLFormatter) ContentType() string {
	return htmlContentType
}

func (hf *HTMLFormatter) FileExtension() string {
	return htmlFileExtension
}
