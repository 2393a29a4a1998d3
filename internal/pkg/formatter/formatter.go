package formatter

import (
	"fmt"

	"github.com/futig/interview-backend/internal/entity"
)

// Formatter renders a markdown report into a downloadable document
type Formatter interface {
	Format(title, markdown string) ([]byte, error)
	ContentType() string
	FileExtension() string
}

type Factory struct {
	fontPath string
}

// NewFactory creates a factory. fontPath points to a TTF with CJK glyphs for the PDF export;
// an unreadable path falls back to the core PDF font.
func NewFactory(fontPath string) *Factory {
	return &Factory{fontPath: fontPath}
}

func (f *Factory) Create(format entity.ResultFormat) (Formatter, error) {
	switch format {
	case entity.FormatMarkdown:
		return NewMarkdownFormatter(), nil
	case entity.FormatDOCX:
		return NewDOCXFormatter(), nil
	case entity.FormatPDF:
		return NewPDFFormatter(f.fontPath), nil
	case entity.FormatHTML:
		return NewHTMLFormatter(), nil
	default:
		return nil, fmt.Errorf("unsupported format: %s", format)
	}
}
