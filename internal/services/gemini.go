package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"unicode/utf8"

	"google.golang.org/genai"

	"nihith303/interview-ace/internal/interview"
)

// GeminiService generates questions, scores and rubric embeddings through the
// Gemini API.
type GeminiService interface {
	Generator
	Embedder
}

type GeminiOptions struct {
	APIKey     string
	Model      string
	EmbedModel string
}

type geminiService struct {
	client     *genai.Client
	modelName  string
	embedModel string
	extractor  ResumeTextExtractor
	logger     *slog.Logger
}

func NewGeminiService(opts GeminiOptions, logger *slog.Logger) (GeminiService, error) {
	ctx := context.Background()

	if opts.APIKey == "" {
		return nil, fmt.Errorf("gemini api key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  opts.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	if opts.Model == "" {
		opts.Model = "gemini-2.5-flash"
	}
	if opts.EmbedModel == "" {
		opts.EmbedModel = "text-embedding-004"
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &geminiService{
		client:     client,
		modelName:  opts.Model,
		embedModel: opts.EmbedModel,
		extractor:  NewResumeTextExtractor(),
		logger:     logger,
	}, nil
}

const maxEmbedBytes = 40000

// truncateUTF8 cuts s to at most max bytes without splitting a rune.
func truncateUTF8(s string, max int) string {
	if len(s) <= max {
		return s
	}
	for max > 0 && !utf8.RuneStart(s[max]) {
		max--
	}
	return s[:max]
}

// GenerateEmbedding implements Embedder.
func (g *geminiService) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	// Truncate text if too long (max ~10000 tokens for embedding)
	text = truncateUTF8(text, maxEmbedBytes)

	result, err := g.client.Models.EmbedContent(ctx, g.embedModel, genai.Text(text), nil)
	if err != nil {
		return nil, classifyGeminiError(fmt.Errorf("failed to generate embedding: %w", err))
	}

	if result == nil || len(result.Embeddings) == 0 {
		return nil, fmt.Errorf("empty embedding result")
	}

	return result.Embeddings[0].Values, nil
}

// GenerateText implements Generator. PDF résumés are sent inline so the model
// reads the original layout; DOCX is not accepted inline and goes as text.
func (g *geminiService) GenerateText(ctx context.Context, prompt Prompt) (string, error) {
	parts := []*genai.Part{genai.NewPartFromText(prompt.User)}
	if prompt.Attachment != "" {
		part, err := g.attachmentPart(prompt.Attachment)
		if err != nil {
			return "", err
		}
		parts = append(parts, part)
	}

	temperature := prompt.Temperature
	config := &genai.GenerateContentConfig{
		Temperature:     &temperature,
		MaxOutputTokens: 4096,
	}
	if prompt.System != "" {
		config.SystemInstruction = genai.NewContentFromText(prompt.System, genai.RoleUser)
	}
	if prompt.JSON {
		config.ResponseMIMEType = "application/json"
	}

	contents := []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}
	resp, err := g.client.Models.GenerateContent(ctx, g.modelName, contents, config)
	if err != nil {
		g.logger.Warn("gemini generate failed", "model", g.modelName, "error", err)
		return "", classifyGeminiError(fmt.Errorf("failed to generate text: %w", err))
	}

	if resp == nil {
		return "", fmt.Errorf("no response generated (nil response)")
	}

	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("no text content in response")
	}

	g.logger.Debug("gemini response received", "model", g.modelName, "chars", len(text))
	return text, nil
}

func (g *geminiService) attachmentPart(content interview.ResumeContent) (*genai.Part, error) {
	if content.MediaType() == interview.MediaTypePDF {
		data, err := content.Bytes()
		if err != nil {
			return nil, fmt.Errorf("failed to decode resume: %w", err)
		}
		return genai.NewPartFromBytes(data, interview.MediaTypePDF), nil
	}

	text, err := g.extractor.ExtractText(content)
	if err != nil {
		return nil, fmt.Errorf("failed to read resume: %w", err)
	}
	return genai.NewPartFromText("CANDIDATE RESUME:\n" + text), nil
}

func classifyGeminiError(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		if transientStatus(apiErr.Code) {
			return markTransient(err)
		}
		return err
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) && transientStatus(apiErrPtr.Code) {
		return markTransient(err)
	}
	return err
}
