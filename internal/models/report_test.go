package models

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"nihith303/interview-ace/internal/interview"
)

func sampleReport() interview.Report {
	answeredAt := time.Date(2026, 3, 1, 10, 5, 0, 0, time.UTC)
	return interview.Report{
		ID:        "5f0c8a52-4a8e-4c2b-9d55-0a3b8f1e2c11",
		UserID:    "user-1",
		SessionID: "sess-1",
		Role:      "Backend Engineer",
		Company:   "Acme",
		Scores: interview.ScoreSet{
			Confidence:       7,
			Correctness:      6,
			DepthOfKnowledge: 5,
			RoleFit:          8,
		},
		QuestionCount: 2,
		AnsweredCount: 1,
		Transcript: interview.Transcript{
			{
				Question: interview.Question{ID: "q1", Text: "Tell me about Go channels."},
				Answer:   &interview.Answer{QuestionID: "q1", Text: "They pass values between goroutines.", AnsweredAt: answeredAt},
			},
			{Question: interview.Question{ID: "q2", Text: "How do you shard Postgres?"}},
		},
		CreatedAt: time.Date(2026, 3, 1, 10, 30, 0, 0, time.UTC),
	}
}

func TestReportRoundTrip(t *testing.T) {
	in := sampleReport()

	row, err := NewReport(in)
	if err != nil {
		t.Fatalf("NewReport: %v", err)
	}
	if row.ID.String() != in.ID {
		t.Fatalf("row id = %s, want %s", row.ID, in.ID)
	}

	out, err := row.ToDomain()
	if err != nil {
		t.Fatalf("ToDomain: %v", err)
	}

	if out.ID != in.ID || out.UserID != in.UserID || out.SessionID != in.SessionID {
		t.Fatalf("identity = %s/%s/%s", out.ID, out.UserID, out.SessionID)
	}
	if out.Role != in.Role || out.Company != in.Company {
		t.Fatalf("role/company = %q/%q", out.Role, out.Company)
	}
	if out.Scores != in.Scores {
		t.Fatalf("scores = %+v, want %+v", out.Scores, in.Scores)
	}
	if out.QuestionCount != 2 || out.AnsweredCount != 1 {
		t.Fatalf("counts = %d/%d", out.QuestionCount, out.AnsweredCount)
	}
	if !out.CreatedAt.Equal(in.CreatedAt) {
		t.Fatalf("created_at = %v, want %v", out.CreatedAt, in.CreatedAt)
	}

	if len(out.Transcript) != 2 {
		t.Fatalf("transcript len = %d", len(out.Transcript))
	}
	first := out.Transcript[0]
	if first.Question != in.Transcript[0].Question || first.Answer == nil {
		t.Fatalf("first entry = %+v", first)
	}
	if first.Answer.Text != in.Transcript[0].Answer.Text || !first.Answer.AnsweredAt.Equal(in.Transcript[0].Answer.AnsweredAt) {
		t.Fatalf("first answer = %+v", first.Answer)
	}
	second := out.Transcript[1]
	if second.Question.ID != "q2" || second.Answer != nil {
		t.Fatalf("second entry = %+v", second)
	}
	if out.Transcript.AnsweredCount() != 1 {
		t.Fatalf("answered = %d", out.Transcript.AnsweredCount())
	}
}

func TestNewReportGeneratesMissingID(t *testing.T) {
	in := sampleReport()
	in.ID = ""

	row, err := NewReport(in)
	if err != nil {
		t.Fatalf("NewReport: %v", err)
	}
	if row.ID == uuid.Nil {
		t.Fatalf("expected generated id")
	}
}

func TestNewReportRejectsInvalidID(t *testing.T) {
	in := sampleReport()
	in.ID = "not-a-uuid"

	if _, err := NewReport(in); err == nil {
		t.Fatalf("expected error")
	}
}

func TestToDomainWithoutTranscript(t *testing.T) {
	row := &Report{ID: uuid.New(), SessionID: "sess-2"}

	out, err := row.ToDomain()
	if err != nil {
		t.Fatalf("ToDomain: %v", err)
	}
	if out.Transcript != nil {
		t.Fatalf("transcript = %+v", out.Transcript)
	}
}
