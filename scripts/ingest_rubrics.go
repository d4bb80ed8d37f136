package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"nihith303/interview-ace/internal/config"
	"nihith303/interview-ace/internal/interview"
	"nihith303/interview-ace/internal/services"
)

// Seeds the Qdrant collection with interview rubric documents (.md, .txt or
// .pdf) from RUBRIC_DIR.
func main() {
	cfg := config.Load()
	log := config.InitLogger(cfg.Server.LogLevel, cfg.Server.Env)

	dir := os.Getenv("RUBRIC_DIR")
	if dir == "" {
		dir = "./reference_docs/rubrics"
	}
	log.Info("starting rubric ingestion", "dir", dir)

	gemini, err := services.NewGeminiService(services.GeminiOptions{
		APIKey:     cfg.Gemini.APIKey,
		Model:      cfg.Gemini.Model,
		EmbedModel: cfg.Gemini.EmbedModel,
	}, log)
	if err != nil {
		log.Error("failed to initialize Gemini", "error", err)
		os.Exit(1)
	}

	if cfg.Qdrant.URL == "" {
		log.Error("QDRANT_URL is required")
		os.Exit(1)
	}
	qdrantService, err := services.NewQdrantService(cfg.Qdrant.URL, cfg.Qdrant.APIKey, cfg.Qdrant.Collection, log)
	if err != nil {
		log.Error("failed to initialize Qdrant", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()
	if err := qdrantService.InitCollection(ctx); err != nil {
		log.Error("failed to initialize collection", "error", err)
		os.Exit(1)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		log.Error("failed to read rubric directory", "dir", dir, "error", err)
		os.Exit(1)
	}

	extractor := services.NewResumeTextExtractor()
	chunker := services.NewTextChunker()

	successCount, failCount := 0, 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		docLog := log.With("file", entry.Name())

		text, err := readRubric(path, extractor)
		if err != nil {
			docLog.Warn("skipping document", "error", err)
			failCount++
			continue
		}

		chunks := chunker.ChunkText(text, 1000, 200)
		docName := strings.TrimSuffix(entry.Name(), filepath.Ext(entry.Name()))
		docLog.Info("document chunked", "chars", len(text), "chunks", len(chunks))

		stored, err := ingestDocument(ctx, gemini, qdrantService, docName, chunks)
		if err != nil {
			docLog.Error("failed to ingest document", "stored", stored, "chunks", len(chunks), "error", err)
			failCount++
			continue
		}

		docLog.Info("document ingested", "chunks", stored)
		successCount++
	}

	log.Info("ingestion summary", "successful", successCount, "failed", failCount)
	if failCount > 0 {
		os.Exit(1)
	}
}

// rubricStore is the part of services.QdrantService ingestion needs.
type rubricStore interface {
	DeleteDocument(ctx context.Context, docID string) error
	UpsertDocument(ctx context.Context, docID string, chunk int, docType string, text string, embedding []float32) error
}

// ingestDocument replaces every stored chunk of docName with chunks and
// returns how many were stored.
func ingestDocument(ctx context.Context, embedder services.Embedder, store rubricStore, docName string, chunks []string) (int64, error) {
	// A shorter revision must not leave stale trailing chunks behind
	if err := store.DeleteDocument(ctx, docName); err != nil {
		return 0, fmt.Errorf("clear previous chunks: %w", err)
	}

	var stored atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for i, chunk := range chunks {
		g.Go(func() error {
			embedding, err := embedder.GenerateEmbedding(gctx, chunk)
			if err != nil {
				return fmt.Errorf("embed chunk %d: %w", i+1, err)
			}
			if err := store.UpsertDocument(gctx, docName, i, services.RubricDocType, chunk, embedding); err != nil {
				return fmt.Errorf("store chunk %d: %w", i+1, err)
			}
			stored.Add(1)
			return nil
		})
	}
	err := g.Wait()
	return stored.Load(), err
}

func readRubric(path string, extractor services.ResumeTextExtractor) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".md", ".txt":
		return strings.TrimSpace(string(data)), nil
	case ".pdf":
		content, err := interview.Ingest(interview.ResumeFile{
			Name:         filepath.Base(path),
			DeclaredType: interview.MediaTypePDF,
			Size:         int64(len(data)),
			Data:         data,
		})
		if err != nil {
			return "", err
		}
		return extractor.ExtractText(content)
	}
	return "", fmt.Errorf("unsupported file type")
}
