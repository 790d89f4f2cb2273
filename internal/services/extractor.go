package services

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/nguyenthenguyen/docx"

	"alfredoptarigan/resume-shortlister/internal/models"
)

// SupportedExtensions lists the upload types the extractor understands.
var SupportedExtensions = []string{".docx", ".pdf", ".txt"}

type TextExtractor interface {
	Extract(upload models.ResumeUpload) (models.ResumeDocument, error)
}

type textExtractor struct{}

func NewTextExtractor() TextExtractor {
	return &textExtractor{}
}

// IsSupportedDocument reports whether the file name has an extension Extract accepts.
func IsSupportedDocument(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, s := range SupportedExtensions {
		if ext == s {
			return true
		}
	}
	return false
}

func (e *textExtractor) Extract(upload models.ResumeUpload) (models.ResumeDocument, error) {
	var (
		text string
		err  error
	)

	switch ext := strings.ToLower(filepath.Ext(upload.Name)); ext {
	case ".docx":
		text, err = extractDocxText(upload.Data)
	case ".pdf":
		text, err = extractPDFText(upload.Data)
	case ".txt":
		text = CleanText(string(upload.Data))
	default:
		return models.ResumeDocument{}, fmt.Errorf("%w: %q", ErrUnsupportedDocument, ext)
	}
	if err != nil {
		return models.ResumeDocument{}, err
	}

	if strings.TrimSpace(text) == "" {
		return models.ResumeDocument{}, fmt.Errorf("%s: %w", upload.Name, ErrEmptyDocument)
	}

	return models.ResumeDocument{Name: upload.Name, Text: text}, nil
}

func extractDocxText(data []byte) (string, error) {
	doc, err := docx.ReadDocxFromMemory(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to parse docx: %w", err)
	}
	defer doc.Close()

	paragraphs, err := docxParagraphs(doc.Editable().GetContent())
	if err != nil {
		return "", fmt.Errorf("failed to read docx paragraphs: %w", err)
	}

	return strings.Join(paragraphs, "\n"), nil
}

// docxParagraphs walks word/document.xml and returns the text of every
// non-blank w:p in document order.
func docxParagraphs(documentXML string) ([]string, error) {
	decoder := xml.NewDecoder(strings.NewReader(documentXML))

	var (
		paragraphs []string
		stack      []*strings.Builder
		inText     bool
	)

	for {
		tok, err := decoder.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "p":
				stack = append(stack, &strings.Builder{})
			case "t":
				inText = true
			case "tab":
				if len(stack) > 0 {
					stack[len(stack)-1].WriteString("\t")
				}
			case "br", "cr":
				if len(stack) > 0 {
					stack[len(stack)-1].WriteString("\n")
				}
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "p":
				if len(stack) == 0 {
					continue
				}
				text := stack[len(stack)-1].String()
				stack = stack[:len(stack)-1]
				if strings.TrimSpace(text) != "" {
					paragraphs = append(paragraphs, text)
				}
			case "t":
				inText = false
			}
		case xml.CharData:
			if inText && len(stack) > 0 {
				stack[len(stack)-1].Write(t)
			}
		}
	}

	return paragraphs, nil
}

func extractPDFText(data []byte) (string, error) {
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to open PDF: %w", err)
	}

	var textBuilder strings.Builder
	totalPage := r.NumPage()

	for pageIndex := 1; pageIndex <= totalPage; pageIndex++ {
		page := r.Page(pageIndex)
		if page.V.IsNull() {
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			// Log error but continue with other pages
			continue
		}

		textBuilder.WriteString(text)
		textBuilder.WriteString("\n")
	}

	return CleanText(textBuilder.String()), nil
}

// CleanText trims every line and drops the blank ones.
func CleanText(text string) string {
	text = strings.TrimSpace(text)

	lines := strings.Split(text, "\n")
	var cleanedLines []string

	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line != "" {
			cleanedLines = append(cleanedLines, line)
		}
	}

	return strings.Join(cleanedLines, "\n")
}
