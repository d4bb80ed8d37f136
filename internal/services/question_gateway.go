package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"nihith303/interview-ace/internal/interview"
)

// MaxQuestions caps how many questions a single generation may return.
const MaxQuestions = 50

// QuestionGateway turns a session config into an ordered question list using
// the external generation service.
type QuestionGateway interface {
	GenerateQuestions(ctx context.Context, cfg interview.SessionConfig) ([]interview.Question, error)
}

type questionGateway struct {
	generator Generator
	prompts   *PromptBuilder
	count     int
	timeout   time.Duration
	newID     func() string
	logger    *slog.Logger
}

func NewQuestionGateway(generator Generator, prompts *PromptBuilder, count int, timeout time.Duration, logger *slog.Logger) QuestionGateway {
	if count <= 0 {
		count = 5
	}
	if count > MaxQuestions {
		count = MaxQuestions
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &questionGateway{
		generator: generator,
		prompts:   prompts,
		count:     count,
		timeout:   timeout,
		newID:     uuid.NewString,
		logger:    logger,
	}
}

// GenerateQuestions implements QuestionGateway. It makes exactly one call to
// the generator; retries are the caller's decision.
func (g *questionGateway) GenerateQuestions(ctx context.Context, cfg interview.SessionConfig) ([]interview.Question, error) {
	cfg = cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	start := time.Now()
	text, err := g.generator.GenerateText(ctx, g.prompts.BuildQuestionPrompt(cfg, g.count))
	if err != nil {
		g.logger.Warn("question generation call failed", "role", cfg.Role, "elapsed", time.Since(start), "error", err)
		return nil, generationCallError(ctx, err)
	}

	texts, err := parseQuestionTexts(text)
	if err != nil {
		g.logger.Warn("question generation returned unusable output", "role", cfg.Role, "error", err)
		return nil, &interview.GenerationError{Reason: "the generation service returned an unusable response", Err: err}
	}

	questions := make([]interview.Question, len(texts))
	for i, t := range texts {
		questions[i] = interview.Question{ID: g.newID(), Text: t}
	}

	g.logger.Info("questions generated", "role", cfg.Role, "company", cfg.Company, "count", len(questions), "elapsed", time.Since(start))
	return questions, nil
}

func generationCallError(ctx context.Context, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return &interview.GenerationError{Reason: "the generation service timed out", Retryable: true, Err: err}
	}
	if errors.Is(err, context.Canceled) {
		return &interview.GenerationError{Reason: "the generation request was cancelled", Retryable: true, Err: err}
	}
	if IsTransient(err) {
		return &interview.GenerationError{Reason: "the generation service is unavailable", Retryable: true, Err: err}
	}
	return &interview.GenerationError{Reason: "the generation service rejected the request", Err: err}
}

type questionItem struct {
	Question string `json:"question"`
	Text     string `json:"text"`
}

// parseQuestionTexts accepts {"questions": [...]} or a bare array whose
// entries are strings or objects with a question/text field.
func parseQuestionTexts(raw string) ([]string, error) {
	body := extractJSON(raw)

	var items []json.RawMessage
	if strings.HasPrefix(body, "[") {
		if err := json.Unmarshal([]byte(body), &items); err != nil {
			return nil, fmt.Errorf("failed to parse question list: %w", err)
		}
	} else {
		var wrapper struct {
			Questions []json.RawMessage `json:"questions"`
		}
		if err := json.Unmarshal([]byte(body), &wrapper); err != nil {
			return nil, fmt.Errorf("failed to parse question list: %w", err)
		}
		items = wrapper.Questions
	}

	if len(items) == 0 {
		return nil, fmt.Errorf("no questions in response")
	}
	if len(items) > MaxQuestions {
		return nil, fmt.Errorf("%d questions exceeds the limit of %d", len(items), MaxQuestions)
	}

	texts := make([]string, 0, len(items))
	for i, item := range items {
		var text string
		if err := json.Unmarshal(item, &text); err != nil {
			var obj questionItem
			if err := json.Unmarshal(item, &obj); err != nil {
				return nil, fmt.Errorf("question %d is neither a string nor an object", i+1)
			}
			text = obj.Question
			if text == "" {
				text = obj.Text
			}
		}
		text = strings.TrimSpace(text)
		if text == "" {
			return nil, fmt.Errorf("question %d is blank", i+1)
		}
		texts = append(texts, text)
	}
	return texts, nil
}
