package interview

import (
	"encoding/base64"
	"fmt"
	"mime"
	"strings"
)

// MaxResumeSize is the largest accepted résumé upload in bytes.
const MaxResumeSize int64 = 5 * 1024 * 1024

const (
	MediaTypePDF  = "application/pdf"
	MediaTypeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
)

var acceptedResumeTypes = map[string]bool{
	MediaTypePDF:  true,
	MediaTypeDOCX: true,
}

// ResumeFile is an uploaded résumé as received from the presentation layer.
type ResumeFile struct {
	Name         string
	DeclaredType string
	Size         int64
	Data         []byte
}

// ResumeContent is a self-describing data URI carrying the résumé bytes and
// their media type.
type ResumeContent string

// Ingest validates an uploaded résumé and encodes it as a data URI.
func Ingest(file ResumeFile) (ResumeContent, error) {
	if file.Data == nil || file.Size <= 0 || len(file.Data) == 0 {
		return "", invalid("resume", "Resume file is required.")
	}
	if file.Size > MaxResumeSize || int64(len(file.Data)) > MaxResumeSize {
		return "", invalid("resume", "Max file size is %d MB.", MaxResumeSize/(1024*1024))
	}
	if file.Size != int64(len(file.Data)) {
		return "", invalid("resume", "Resume upload is incomplete.")
	}

	mediaType := normalizeMediaType(file.DeclaredType)
	if !acceptedResumeTypes[mediaType] {
		return "", invalid("resume", ".pdf and .docx files are accepted.")
	}

	return ResumeContent(fmt.Sprintf("data:%s;base64,%s", mediaType, base64.StdEncoding.EncodeToString(file.Data))), nil
}

func normalizeMediaType(declared string) string {
	declared = strings.TrimSpace(declared)
	if declared == "" {
		return ""
	}
	mediaType, _, err := mime.ParseMediaType(declared)
	if err != nil {
		return strings.ToLower(declared)
	}
	return mediaType
}

// MediaType returns the media type embedded in the data URI.
func (c ResumeContent) MediaType() string {
	header, _, ok := c.split()
	if !ok {
		return ""
	}
	return strings.TrimSuffix(header, ";base64")
}

// Bytes decodes the original document bytes.
func (c ResumeContent) Bytes() ([]byte, error) {
	header, payload, ok := c.split()
	if !ok || !strings.HasSuffix(header, ";base64") {
		return nil, fmt.Errorf("resume content is not a base64 data URI")
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to decode resume content: %w", err)
	}
	return data, nil
}

// Valid reports whether the content is a decodable data URI of an accepted type.
func (c ResumeContent) Valid() bool {
	if !acceptedResumeTypes[c.MediaType()] {
		return false
	}
	data, err := c.Bytes()
	return err == nil && len(data) > 0
}

func (c ResumeContent) split() (string, string, bool) {
	rest, ok := strings.CutPrefix(string(c), "data:")
	if !ok {
		return "", "", false
	}
	header, payload, ok := strings.Cut(rest, ",")
	return header, payload, ok
}
