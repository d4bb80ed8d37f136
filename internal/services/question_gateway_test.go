package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"nihith303/interview-ace/internal/interview"
)

func TestGenerateQuestionsAssignsUniqueIDsInOrder(t *testing.T) {
	gen := &fakeGenerator{questions: []fakeReply{{text: "```json\n{\"questions\": [\"Tell me about yourself.\", \"Why Acme?\"]}\n```"}}}
	gateway := NewQuestionGateway(gen, testPrompts(t), 2, time.Second, nil)

	questions, err := gateway.GenerateQuestions(context.Background(), testConfig(t))
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if len(questions) != 2 {
		t.Fatalf("got %d questions", len(questions))
	}
	if questions[0].Text != "Tell me about yourself." || questions[1].Text != "Why Acme?" {
		t.Fatalf("questions out of order: %+v", questions)
	}
	if questions[0].ID == "" || questions[0].ID == questions[1].ID {
		t.Fatalf("question ids must be unique: %+v", questions)
	}

	prompt := gen.lastPrompt()
	if prompt.Attachment == "" || !prompt.JSON {
		t.Fatalf("prompt should carry the resume and request JSON: %+v", prompt)
	}
	if !strings.Contains(prompt.User, "Backend Engineer") || !strings.Contains(prompt.User, "Acme") {
		t.Fatalf("prompt should mention role and company")
	}
}

func TestParseQuestionTextsShapes(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []string
	}{
		{"wrapped strings", `{"questions": ["a?", "b?"]}`, []string{"a?", "b?"}},
		{"bare array", `["a?", " b? "]`, []string{"a?", "b?"}},
		{"objects", `{"questions": [{"question": "a?"}, {"text": "b?"}]}`, []string{"a?", "b?"}},
		{"prose around", "Here you go:\n[\"a?\"]\nGood luck", []string{"a?"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseQuestionTexts(tt.raw)
			if err != nil {
				t.Fatalf("parse: %v", err)
			}
			if strings.Join(got, "|") != strings.Join(tt.want, "|") {
				t.Fatalf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestGenerateQuestionsRejectsUnusableOutput(t *testing.T) {
	many := make([]string, MaxQuestions+1)
	for i := range many {
		many[i] = fmt.Sprintf("%q", fmt.Sprintf("question %d?", i))
	}

	tests := []struct {
		name string
		raw  string
	}{
		{"empty list", `{"questions": []}`},
		{"not json", "I cannot help with that."},
		{"blank entry", `["a?", "   "]`},
		{"too many", "[" + strings.Join(many, ",") + "]"},
		{"wrong entry type", `[1, 2]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen := &fakeGenerator{questions: []fakeReply{{text: tt.raw}}}
			gateway := NewQuestionGateway(gen, testPrompts(t), 5, time.Second, nil)
			_, err := gateway.GenerateQuestions(context.Background(), testConfig(t))

			var genErr *interview.GenerationError
			if !errors.As(err, &genErr) {
				t.Fatalf("expected generation error, got %v", err)
			}
			if genErr.Retryable {
				t.Fatalf("unusable output must not be retryable")
			}
		})
	}
}

func TestGenerateQuestionsTimeoutIsRetryable(t *testing.T) {
	gen := &fakeGenerator{questions: []fakeReply{{block: make(chan struct{})}}}
	gateway := NewQuestionGateway(gen, testPrompts(t), 5, 20*time.Millisecond, nil)

	_, err := gateway.GenerateQuestions(context.Background(), testConfig(t))
	var genErr *interview.GenerationError
	if !errors.As(err, &genErr) || !genErr.Retryable {
		t.Fatalf("expected retryable generation error, got %v", err)
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("cause should be reachable, got %v", err)
	}
}

func TestGenerateQuestionsClassifiesBackendErrors(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		retryable bool
	}{
		{"transient", markTransient(errors.New("503 service unavailable")), true},
		{"permanent", errors.New("400 invalid argument"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen := &fakeGenerator{questions: []fakeReply{{err: tt.err}}}
			gateway := NewQuestionGateway(gen, testPrompts(t), 5, time.Second, nil)
			_, err := gateway.GenerateQuestions(context.Background(), testConfig(t))

			var genErr *interview.GenerationError
			if !errors.As(err, &genErr) {
				t.Fatalf("expected generation error, got %v", err)
			}
			if genErr.Retryable != tt.retryable {
				t.Fatalf("retryable = %v, want %v", genErr.Retryable, tt.retryable)
			}
		})
	}
}

func TestGenerateQuestionsValidatesConfig(t *testing.T) {
	gen := &fakeGenerator{}
	gateway := NewQuestionGateway(gen, testPrompts(t), 5, time.Second, nil)

	cfg := testConfig(t)
	cfg.Company = " x "
	_, err := gateway.GenerateQuestions(context.Background(), cfg)
	var validationErr *interview.ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if gen.calls() != 0 {
		t.Fatalf("generator must not be called for an invalid config")
	}
}

func TestExtractJSONPrefersFirstContainer(t *testing.T) {
	if got := extractJSON(`["a", {"b": 1}]`); got != `["a", {"b": 1}]` {
		t.Fatalf("got %s", got)
	}
	if got := extractJSON("```json\n{\"questions\": [\"a\"]}\n```"); got != `{"questions": ["a"]}` {
		t.Fatalf("got %s", got)
	}
}
