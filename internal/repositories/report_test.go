package repositories

import (
	"context"
	"errors"
	"testing"
	"time"

	"nihith303/interview-ace/internal/interview"
)

func testReport(userID, sessionID string, createdAt time.Time) interview.Report {
	answer := &interview.Answer{QuestionID: "q1", Text: "I build APIs."}
	return interview.Report{
		UserID:        userID,
		SessionID:     sessionID,
		Role:          "Backend Engineer",
		Company:       "Acme",
		Scores:        interview.ScoreSet{Confidence: 70, Correctness: 65, DepthOfKnowledge: 50, RoleFit: 80},
		QuestionCount: 1,
		AnsweredCount: 1,
		Transcript:    interview.Transcript{{Question: interview.Question{ID: "q1", Text: "Tell me about yourself."}, Answer: answer}},
		CreatedAt:     createdAt,
	}
}

func TestMemoryReportRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryReportRepository()
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	older, err := repo.Save(ctx, testReport("user-1", "s1", base))
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if older.ID == "" {
		t.Fatalf("save should assign an id")
	}
	newer, err := repo.Save(ctx, testReport("user-1", "s2", base.Add(time.Hour)))
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if _, err := repo.Save(ctx, testReport("user-2", "s3", base)); err != nil {
		t.Fatalf("save: %v", err)
	}

	if _, err := repo.Save(ctx, testReport("user-1", "s1", base)); !errors.Is(err, ErrReportExists) {
		t.Fatalf("expected ErrReportExists, got %v", err)
	}

	list, err := repo.ListByUser(ctx, "user-1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 2 || list[0].ID != newer.ID || list[1].ID != older.ID {
		t.Fatalf("expected newest first, got %+v", list)
	}

	found, err := repo.FindBySession(ctx, "s1")
	if err != nil || found.ID != older.ID {
		t.Fatalf("find by session: %+v, %v", found, err)
	}
	if _, err := repo.FindByID(ctx, "missing"); !errors.Is(err, ErrReportNotFound) {
		t.Fatalf("expected ErrReportNotFound, got %v", err)
	}
}

func TestMemoryReportRepositoryReturnsCopies(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryReportRepository()

	saved, err := repo.Save(ctx, testReport("user-1", "s1", time.Now()))
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	saved.Transcript[0].Answer.Text = "changed"

	got, err := repo.FindByID(ctx, saved.ID)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if got.Transcript[0].Answer.Text != "I build APIs." {
		t.Fatalf("stored report was mutated through a returned copy")
	}
}
