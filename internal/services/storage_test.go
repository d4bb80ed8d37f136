package services

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"nihith303/interview-ace/internal/interview"
)

func TestArchiveKey(t *testing.T) {
	tests := []struct {
		name string
		user string
		file interview.ResumeFile
		want string
	}{
		{"extension from name", "user-1", interview.ResumeFile{Name: "CV.PDF"}, "user-1/s1.pdf"},
		{"extension from type", "user-1", interview.ResumeFile{DeclaredType: interview.MediaTypeDOCX}, "user-1/s1.docx"},
		{"path characters", "../evil/user", interview.ResumeFile{Name: "cv.pdf"}, "___evil_user/s1.pdf"},
		{"empty user", "", interview.ResumeFile{Name: "cv.pdf"}, "_/s1.pdf"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ArchiveKey(tt.user, "s1", tt.file); got != tt.want {
				t.Fatalf("key = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestLocalArchiveSaveAndDelete(t *testing.T) {
	dir := t.TempDir()
	archive, err := NewLocalArchive(dir)
	if err != nil {
		t.Fatalf("new archive: %v", err)
	}

	file := testResumeFile()
	key, err := archive.Save(context.Background(), "user-1", "s1", file)
	if err != nil {
		t.Fatalf("save: %v", err)
	}

	path := filepath.Join(dir, filepath.FromSlash(key))
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read archived file: %v", err)
	}
	if string(data) != string(file.Data) {
		t.Fatalf("archived bytes differ")
	}

	if err := archive.Delete(context.Background(), key); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("file should be gone, stat err = %v", err)
	}
	if err := archive.Delete(context.Background(), key); err == nil {
		t.Fatalf("deleting a missing key should fail")
	}
}
