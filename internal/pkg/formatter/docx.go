package formatter

import (
	"bytes"
	"fmt"

	"github.com/unidoc/unioffice/document"
)

const (
	docxContentType   = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	docxFileExtension = ".docx"
)

type DOCXFormatter struct{}

func NewDOCXFormatter() *DOCXFormatter {
	return &DOCXFormatter{}
}

func (df *DOCXFormatter) Format(title, markdown string) ([]byte, error) {
	doc := document.New()
	defer doc.Close()

	doc.CoreProperties.SetTitle(title)

	for _, b := range parseBlocks(markdown) {
		switch b.kind {
		case blockHeading:
			p := doc.AddParagraph()
			p.SetStyle(fmt.Sprintf("Heading%d", min(b.level, 4)))
			p.AddRun().AddText(b.text)
		case blockListItem:
			p := doc.AddParagraph()
			p.SetStyle("ListParagraph")
			p.AddRun().AddText(b.text)
		case blockCode:
			p := doc.AddParagraph()
			run := p.AddRun()
			run.Properties().SetFontFamily("Consolas")
			run.AddText(b.text)
		case blockRule:
			doc.AddParagraph()
		default:
			doc.AddParagraph().AddRun().AddText(b.text)
		}
	}

	var buf bytes.Buffer
	if err := doc.Save(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (df *DOCXFormatter) ContentType() string {
	return docxContentType
}

func (df *DOCXFormatter) FileExtension() string {
	return docxFileExtension
}
