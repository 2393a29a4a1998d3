package formatter

import (
	"bytes"
	"os"

	"github.com/jung-kurt/gofpdf"
)

const (
	pdfContentType   = "application/pdf"
	pdfFileExtension = ".pdf"

	// pdfFontName is the internal name used by gofpdf for the UTF-8 capable font
	pdfFontName = "ReportSans"
	pdfCoreFont = "Arial"
)

var headingSizes = map[int]float64{1: 20, 2: 16, 3: 14}

type PDFFormatter struct {
	fontPath string
}

func NewPDFFormatter(fontPath string) *PDFFormatter {
	return &PDFFormatter{fontPath: fontPath}
}

func (pf *PDFFormatter) Format(title, markdown string) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(title, true)
	pdf.AddPage()

	fontName := pdfCoreFont
	if _, err := os.Stat(pf.fontPath); pf.fontPath != "" && err == nil {
		// regular and bold share one file
		pdf.AddUTF8Font(pdfFontName, "", pf.fontPath)
		pdf.AddUTF8Font(pdfFontName, "B", pf.fontPath)
		fontName = pdfFontName
	}

	for _, b := range parseBlocks(markdown) {
		switch b.kind {
		case blockHeading:
			size, ok := headingSizes[b.level]
			if !ok {
				size = 12
			}
			pdf.SetFont(fontName, "B", size)
			_, h := pdf.GetFontSize()
			pdf.MultiCell(0, h*1.4, b.text, "", "", false)
			pdf.Ln(2)
		case blockRule:
			y := pdf.GetY() + 2
			pdf.Line(10, y, 200, y)
			pdf.Ln(4)
		case blockListItem:
			pdf.SetFont(fontName, "", 11)
			_, h := pdf.GetFontSize()
			pdf.SetX(15)
			pdf.MultiCell(0, h*1.5, b.text, "", "", false)
		default:
			pdf.SetFont(fontName, "", 11)
			_, h := pdf.GetFontSize()
			pdf.MultiCell(0, h*1.5, b.text, "", "", false)
			pdf.Ln(1)
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (pf *PDFFormatter) ContentType() string {
	return pdfContentType
}

func (pf *PDFFormatter) FileExtension() string {
	return pdfFileExtension
}
