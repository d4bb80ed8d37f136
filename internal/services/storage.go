package services

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"nihith303/interview-ace/internal/interview"
)

// ResumeArchive keeps a copy of each original résumé upload.
type ResumeArchive interface {
	Save(ctx context.Context, userID, sessionID string, file interview.ResumeFile) (string, error)
	Delete(ctx context.Context, key string) error
}

// ArchiveKey is the storage key for a résumé: <user>/<session><ext>.
func ArchiveKey(userID, sessionID string, file interview.ResumeFile) string {
	ext := strings.ToLower(filepath.Ext(file.Name))
	if ext == "" {
		switch strings.ToLower(strings.TrimSpace(strings.SplitN(file.DeclaredType, ";", 2)[0])) {
		case interview.MediaTypePDF:
			ext = ".pdf"
		case interview.MediaTypeDOCX:
			ext = ".docx"
		}
	}
	return sanitizeKeyPart(userID) + "/" + sanitizeKeyPart(sessionID) + ext
}

func sanitizeKeyPart(s string) string {
	s = strings.Map(func(r rune) rune {
		if r == '/' || r == '\\' || r == '.' {
			return '_'
		}
		return r
	}, s)
	if s == "" {
		return "_"
	}
	return s
}

type localArchive struct {
	uploadPath string
}

func NewLocalArchive(uploadPath string) (ResumeArchive, error) {
	if err := os.MkdirAll(uploadPath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}
	return &localArchive{uploadPath: uploadPath}, nil
}

func (s *localArchive) Save(_ context.Context, userID, sessionID string, file interview.ResumeFile) (string, error) {
	key := ArchiveKey(userID, sessionID, file)
	filePath := filepath.Join(s.uploadPath, filepath.FromSlash(key))

	if err := os.MkdirAll(filepath.Dir(filePath), 0755); err != nil {
		return "", fmt.Errorf("failed to create archive directory: %w", err)
	}
	if err := os.WriteFile(filePath, file.Data, 0644); err != nil {
		return "", fmt.Errorf("failed to save file: %w", err)
	}
	return key, nil
}

func (s *localArchive) Delete(_ context.Context, key string) error {
	if err := os.Remove(filepath.Join(s.uploadPath, filepath.FromSlash(key))); err != nil {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

type minioArchive struct {
	client *minio.Client
	bucket string
}

// NewMinioArchive connects to MinIO and ensures the bucket exists.
func NewMinioArchive(endpoint, accessKey, secretKey, bucket string, useSSL bool) (ResumeArchive, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to init minio client: %w", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	exists, err := client.BucketExists(ctx, bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("failed to create bucket: %w", err)
		}
	}
	return &minioArchive{client: client, bucket: bucket}, nil
}

func (m *minioArchive) Save(ctx context.Context, userID, sessionID string, file interview.ResumeFile) (string, error) {
	key := ArchiveKey(userID, sessionID, file)
	_, err := m.client.PutObject(ctx, m.bucket, key, bytes.NewReader(file.Data), int64(len(file.Data)),
		minio.PutObjectOptions{ContentType: file.DeclaredType})
	if err != nil {
		return "", fmt.Errorf("failed to put object: %w", err)
	}
	return key, nil
}

func (m *minioArchive) Delete(ctx context.Context, key string) error {
	if err := m.client.RemoveObject(ctx, m.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("failed to delete object: %w", err)
	}
	return nil
}
