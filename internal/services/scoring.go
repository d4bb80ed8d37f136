package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"nihith303/interview-ace/internal/interview"
)

type ScoringRequest struct {
	Role       string
	Company    string
	Transcript interview.Transcript
}

// ScoringEngine evaluates a finished transcript on the four score dimensions.
type ScoringEngine interface {
	Score(ctx context.Context, req ScoringRequest) (interview.ScoreSet, error)
}

// RubricRetriever supplies optional evaluation criteria for the scoring prompt.
type RubricRetriever interface {
	RetrieveRubric(ctx context.Context, role, company string) (string, error)
}

type scoringEngine struct {
	generator Generator
	prompts   *PromptBuilder
	rubrics   RubricRetriever
	timeout   time.Duration
	logger    *slog.Logger
}

// NewScoringEngine builds a ScoringEngine. rubrics may be nil.
func NewScoringEngine(generator Generator, prompts *PromptBuilder, rubrics RubricRetriever, timeout time.Duration, logger *slog.Logger) ScoringEngine {
	if logger == nil {
		logger = slog.Default()
	}
	return &scoringEngine{
		generator: generator,
		prompts:   prompts,
		rubrics:   rubrics,
		timeout:   timeout,
		logger:    logger,
	}
}

// Score implements ScoringEngine.
func (e *scoringEngine) Score(ctx context.Context, req ScoringRequest) (interview.ScoreSet, error) {
	if len(req.Transcript) == 0 {
		return interview.ScoreSet{}, &interview.ValidationError{Field: "transcript", Reason: "There is nothing to score."}
	}

	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	rubric := ""
	if e.rubrics != nil {
		var err error
		rubric, err = e.rubrics.RetrieveRubric(ctx, req.Role, req.Company)
		if err != nil {
			// Scoring still works without rubric context
			e.logger.Warn("rubric retrieval failed", "role", req.Role, "error", err)
			rubric = ""
		}
	}

	start := time.Now()
	text, err := e.generator.GenerateText(ctx, e.prompts.BuildScoringPrompt(req, rubric))
	if err != nil {
		e.logger.Warn("scoring call failed", "role", req.Role, "elapsed", time.Since(start), "error", err)
		return interview.ScoreSet{}, scoringCallError(ctx, err)
	}

	scores, err := parseScores(text)
	if err != nil {
		e.logger.Warn("scoring returned unusable output", "role", req.Role, "error", err)
		return interview.ScoreSet{}, err
	}

	e.logger.Info("transcript scored",
		"role", req.Role,
		"answered", req.Transcript.AnsweredCount(),
		"questions", len(req.Transcript),
		"elapsed", time.Since(start))
	return scores, nil
}

func scoringCallError(ctx context.Context, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return &interview.ScoringError{Reason: "the scoring service timed out", Retryable: true, Err: err}
	}
	if errors.Is(err, context.Canceled) {
		return &interview.ScoringError{Reason: "the scoring request was cancelled", Retryable: true, Err: err}
	}
	if IsTransient(err) {
		return &interview.ScoringError{Reason: "the scoring service is unavailable", Retryable: true, Err: err}
	}
	return &interview.ScoringError{Reason: "the scoring service rejected the request", Err: err}
}

var scoreDimensions = []struct {
	field string
	keys  []string
	set   func(*interview.ScoreSet, int)
}{
	{"confidence", []string{"confidence"}, func(s *interview.ScoreSet, v int) { s.Confidence = v }},
	{"correctness", []string{"correctness"}, func(s *interview.ScoreSet, v int) { s.Correctness = v }},
	{"depthOfKnowledge", []string{"depth_of_knowledge", "depthOfKnowledge"}, func(s *interview.ScoreSet, v int) { s.DepthOfKnowledge = v }},
	{"roleFit", []string{"role_fit", "roleFit"}, func(s *interview.ScoreSet, v int) { s.RoleFit = v }},
}

// parseScores never clamps: a value out of range or not a whole number is a
// validation failure.
func parseScores(raw string) (interview.ScoreSet, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(extractJSON(raw)), &fields); err != nil {
		return interview.ScoreSet{}, &interview.ScoringError{
			Reason: "the scoring service returned an unusable response",
			Err:    fmt.Errorf("failed to parse scores: %w", err),
		}
	}

	var scores interview.ScoreSet
	for _, dim := range scoreDimensions {
		value, ok := lookupScore(fields, dim.keys)
		if !ok {
			return interview.ScoreSet{}, &interview.ValidationError{
				Field:  dim.field,
				Reason: fmt.Sprintf("Score %s is missing from the evaluation.", dim.field),
			}
		}

		var f float64
		if err := json.Unmarshal(value, &f); err != nil || math.Trunc(f) != f {
			return interview.ScoreSet{}, &interview.ValidationError{
				Field:  dim.field,
				Reason: fmt.Sprintf("Score %s must be a whole number.", dim.field),
			}
		}
		if f < interview.ScoreMin || f > interview.ScoreMax {
			return interview.ScoreSet{}, &interview.ValidationError{
				Field:  dim.field,
				Reason: fmt.Sprintf("Score %s must be between %d and %d, got %v.", dim.field, interview.ScoreMin, interview.ScoreMax, f),
			}
		}
		dim.set(&scores, int(f))
	}

	if err := scores.Validate(); err != nil {
		return interview.ScoreSet{}, err
	}
	return scores, nil
}

func lookupScore(fields map[string]json.RawMessage, keys []string) (json.RawMessage, bool) {
	for _, k := range keys {
		if v, ok := fields[k]; ok && string(v) != "null" {
			return v, true
		}
	}
	return nil, false
}
