package services

import (
	"archive/zip"
	"bytes"
	"testing"

	"nihith303/interview-ace/internal/interview"
)

func buildDOCX(t *testing.T, body string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("word/document.xml")
	if err != nil {
		t.Fatalf("create entry: %v", err)
	}
	doc := `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>` + body + `</w:body></w:document>`
	if _, err := w.Write([]byte(doc)); err != nil {
		t.Fatalf("write entry: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}
	return buf.Bytes()
}

func TestExtractTextFromDOCX(t *testing.T) {
	data := buildDOCX(t,
		`<w:p><w:r><w:t>Jane Doe</w:t></w:r></w:p>`+
			`<w:p><w:r><w:t>Senior</w:t></w:r><w:r><w:tab/><w:t>Engineer</w:t></w:r></w:p>`+
			`<w:p></w:p>`)

	text, err := NewResumeTextExtractor().ExtractText(dataURI(interview.MediaTypeDOCX, data))
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if text != "Jane Doe\nSenior Engineer" {
		t.Fatalf("text = %q", text)
	}
}

func TestExtractTextErrors(t *testing.T) {
	tests := []struct {
		name    string
		content interview.ResumeContent
	}{
		{"broken pdf", dataURI(interview.MediaTypePDF, []byte("not a pdf"))},
		{"broken docx", dataURI(interview.MediaTypeDOCX, []byte("not a zip"))},
		{"empty docx", dataURI(interview.MediaTypeDOCX, buildDOCX(t, `<w:p></w:p>`))},
		{"unsupported", dataURI("text/plain", []byte("hello"))},
		{"not a data uri", interview.ResumeContent("hello")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewResumeTextExtractor().ExtractText(tt.content); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}

func TestCleanText(t *testing.T) {
	if got := CleanText("  a \n\n\n  b  \n"); got != "a\nb" {
		t.Fatalf("got %q", got)
	}
}
