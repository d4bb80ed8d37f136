package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"nihith303/interview-ace/internal/interview"
)

func testTranscript() interview.Transcript {
	return interview.Transcript{
		{Question: interview.Question{ID: "q1", Text: "Tell me about yourself."}, Answer: &interview.Answer{QuestionID: "q1", Text: "I build APIs."}},
		{Question: interview.Question{ID: "q2", Text: "Why Acme?"}},
	}
}

func testRequest() ScoringRequest {
	return ScoringRequest{Role: "Backend Engineer", Company: "Acme", Transcript: testTranscript()}
}

type stubRubrics struct {
	text string
	err  error
}

func (s stubRubrics) RetrieveRubric(context.Context, string, string) (string, error) {
	return s.text, s.err
}

func TestScoreParsesAllDimensions(t *testing.T) {
	gen := &fakeGenerator{scores: []fakeReply{{text: `{"confidence": 70, "correctness": 65, "depthOfKnowledge": 50, "role_fit": 80}`}}}
	engine := NewScoringEngine(gen, testPrompts(t), stubRubrics{text: "Look for ownership."}, time.Second, nil)

	scores, err := engine.Score(context.Background(), testRequest())
	if err != nil {
		t.Fatalf("score: %v", err)
	}
	want := interview.ScoreSet{Confidence: 70, Correctness: 65, DepthOfKnowledge: 50, RoleFit: 80}
	if scores != want {
		t.Fatalf("scores = %+v, want %+v", scores, want)
	}

	prompt := gen.lastPrompt().User
	if !strings.Contains(prompt, interview.UnansweredMarker) {
		t.Fatalf("unanswered questions must be marked in the prompt")
	}
	if !strings.Contains(prompt, "Look for ownership.") {
		t.Fatalf("rubric context missing from prompt")
	}
	if gen.lastPrompt().Attachment != "" {
		t.Fatalf("scoring prompt should not attach the resume")
	}
}

func TestScoreRubricFailureIsNotFatal(t *testing.T) {
	gen := &fakeGenerator{scores: []fakeReply{{text: `{"confidence": 1, "correctness": 2, "depth_of_knowledge": 3, "role_fit": 4}`}}}
	engine := NewScoringEngine(gen, testPrompts(t), stubRubrics{err: errors.New("qdrant down")}, time.Second, nil)

	if _, err := engine.Score(context.Background(), testRequest()); err != nil {
		t.Fatalf("score should succeed without rubric: %v", err)
	}
}

func TestScoreRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name  string
		raw   string
		field string
	}{
		{"missing dimension", `{"confidence": 70, "correctness": 65, "role_fit": 80}`, "depthOfKnowledge"},
		{"above max", `{"confidence": 101, "correctness": 65, "depth_of_knowledge": 50, "role_fit": 80}`, "confidence"},
		{"below min", `{"confidence": 70, "correctness": -1, "depth_of_knowledge": 50, "role_fit": 80}`, "correctness"},
		{"fractional", `{"confidence": 70, "correctness": 65, "depth_of_knowledge": 50.5, "role_fit": 80}`, "depthOfKnowledge"},
		{"string value", `{"confidence": 70, "correctness": 65, "depth_of_knowledge": 50, "role_fit": "high"}`, "roleFit"},
		{"null value", `{"confidence": null, "correctness": 65, "depth_of_knowledge": 50, "role_fit": 80}`, "confidence"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen := &fakeGenerator{scores: []fakeReply{{text: tt.raw}}}
			engine := NewScoringEngine(gen, testPrompts(t), nil, time.Second, nil)

			_, err := engine.Score(context.Background(), testRequest())
			var validationErr *interview.ValidationError
			if !errors.As(err, &validationErr) {
				t.Fatalf("expected validation error, got %v", err)
			}
			if validationErr.Field != tt.field {
				t.Fatalf("field = %q, want %q", validationErr.Field, tt.field)
			}
		})
	}
}

func TestScoreUnparseableIsNotRetryable(t *testing.T) {
	gen := &fakeGenerator{scores: []fakeReply{{text: "The candidate did great!"}}}
	engine := NewScoringEngine(gen, testPrompts(t), nil, time.Second, nil)

	_, err := engine.Score(context.Background(), testRequest())
	var scoreErr *interview.ScoringError
	if !errors.As(err, &scoreErr) {
		t.Fatalf("expected scoring error, got %v", err)
	}
	if scoreErr.Retryable {
		t.Fatalf("unparseable output must not be retryable")
	}
}

func TestScoreTimeoutIsRetryable(t *testing.T) {
	gen := &fakeGenerator{scores: []fakeReply{{block: make(chan struct{})}}}
	engine := NewScoringEngine(gen, testPrompts(t), nil, 20*time.Millisecond, nil)

	_, err := engine.Score(context.Background(), testRequest())
	var scoreErr *interview.ScoringError
	if !errors.As(err, &scoreErr) || !scoreErr.Retryable {
		t.Fatalf("expected retryable scoring error, got %v", err)
	}
}

func TestScoreRequiresTranscript(t *testing.T) {
	engine := NewScoringEngine(&fakeGenerator{}, testPrompts(t), nil, time.Second, nil)
	_, err := engine.Score(context.Background(), ScoringRequest{Role: "Backend Engineer", Company: "Acme"})
	var validationErr *interview.ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("expected validation error, got %v", err)
	}
}
