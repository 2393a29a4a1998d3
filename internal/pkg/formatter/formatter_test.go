package formatter

import (
	"bytes"
	"strings"
	"testing"

	"github.com/futig/interview-backend/internal/entity"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleReport = "# 内部审批系统 访谈报告\n\n" +
	"**访谈日期**: 2026-01-02\n\n" +
	"## 需求摘要\n\n" +
	"- **移动审批** - 最想解决的问题？\n" +
	"- 三层审批\n\n" +
	"1. 第一步\n" +
	"2. 第二步\n\n" +
	"| 维度 | 得分 |\n|:---|:---:|\n| 专业技能 | 4.0 |\n\n" +
	"---\n\n" +
	"<details>\n<summary>Q1: 审批几层？</summary>\n\n" +
	"**回答**: 三层\n\n" +
	"</details>\n"

func TestParseBlocks(t *testing.T) {
	got := parseBlocks(sampleReport)

	want := []block{
		{kind: blockHeading, level: 1, text: "内部审批系统 访谈报告"},
		{kind: blockParagraph, text: "访谈日期: 2026-01-02"},
		{kind: blockHeading, level: 2, text: "需求摘要"},
		{kind: blockListItem, text: "• 移动审批 - 最想解决的问题？"},
		{kind: blockListItem, text: "• 三层审批"},
		{kind: blockListItem, text: "1. 第一步"},
		{kind: blockListItem, text: "2. 第二步"},
		{kind: blockParagraph, text: "维度 | 得分"},
		{kind: blockParagraph, text: "专业技能 | 4.0"},
		{kind: blockRule},
		{kind: blockParagraph, text: "Q1: 审批几层？"},
		{kind: blockParagraph, text: "回答: 三层"},
	}
	if diff := cmp.Diff(want, got, cmp.AllowUnexported(block{})); diff != "" {
		t.Errorf("parseBlocks mismatch (-want +got):\n%s", diff)
	}
}

func TestFactory(t *testing.T) {
	f := NewFactory("")

	tests := []struct {
		format entity.ResultFormat
		ext    string
	}{
		{entity.FormatMarkdown, ".md"},
		{entity.FormatDOCX, ".docx"},
		{entity.FormatPDF, ".pdf"},
		{entity.FormatHTML, ".html"},
	}
	for _, tt := range tests {
		t.Run(string(tt.format), func(t *testing.T) {
			fmtr, err := f.Create(tt.format)
			require.NoError(t, err)
			assert.Equal(t, tt.ext, fmtr.FileExtension())
			assert.NotEmpty(t, fmtr.ContentType())
		})
	}

	_, err := f.Create("json")
	assert.Error(t, err)
}

func TestMarkdownFormatter(t *testing.T) {
	out, err := NewMarkdownFormatter().Format("ignored", sampleReport)
	require.NoError(t, err)
	assert.Equal(t, sampleReport, string(out))
}

func TestHTMLFormatter(t *testing.T) {
	report := sampleReport + "\n<script>alert(1)</script>\n"

	out, err := NewHTMLFormatter().Format("报告 <1>", report)
	require.NoError(t, err)
	page := string(out)

	assert.Contains(t, page, "<title>报告 &lt;1&gt;</title>")
	assert.Contains(t, page, "<h1>内部审批系统 访谈报告</h1>")
	assert.Contains(t, page, "<strong>移动审批</strong>")
	assert.Contains(t, page, "<table>")
	assert.Contains(t, page, "<details>")
	assert.Contains(t, page, "<summary>Q1: 审批几层？</summary>")
	assert.NotContains(t, page, "<script>")
}

func TestPDFFormatter(t *testing.T) {
	report := "# Interview report\n\n## Summary\n\n- mobile approval\n- three levels\n\n---\n\nplain text"

	out, err := NewPDFFormatter("/nonexistent/font.ttf").Format("Interview report", report)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF-")))
	assert.True(t, strings.Contains(string(out), "%%EOF"))
}
