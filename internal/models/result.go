package models

import (
	"time"

	"nihith303/interview-ace/internal/interview"
)

type AnswerRequest struct {
	Text string `json:"text"`
}

type QuestionResponse struct {
	ID         string     `json:"id"`
	Text       string     `json:"text"`
	Answer     *string    `json:"answer,omitempty"`
	AnsweredAt *time.Time `json:"answered_at,omitempty"`
}

type FailureResponse struct {
	Kind      string `json:"kind"`
	Stage     string `json:"stage"`
	Field     string `json:"field,omitempty"`
	Message   string `json:"message"`
	Retryable bool   `json:"retryable"`
}

// SessionResponse is the read-only view of a session. The résumé payload is
// never included.
type SessionResponse struct {
	ID            string              `json:"id"`
	State         string              `json:"state"`
	Attempt       int                 `json:"attempt"`
	Role          string              `json:"role"`
	Company       string              `json:"company"`
	ResumeType    string              `json:"resume_type,omitempty"`
	Questions     []QuestionResponse  `json:"questions"`
	AnsweredCount int                 `json:"answered_count"`
	Scores        *interview.ScoreSet `json:"scores,omitempty"`
	Failure       *FailureResponse    `json:"failure,omitempty"`
	ReportID      string              `json:"report_id,omitempty"`
	CreatedAt     time.Time           `json:"created_at"`
	UpdatedAt     time.Time           `json:"updated_at"`
}

func NewSessionResponse(snap interview.Snapshot, report *interview.Report) SessionResponse {
	answers := make(map[string]interview.Answer, len(snap.Answers))
	for _, a := range snap.Answers {
		answers[a.QuestionID] = a
	}

	resp := SessionResponse{
		ID:            snap.ID,
		State:         string(snap.State),
		Attempt:       snap.Attempt,
		Role:          snap.Config.Role,
		Company:       snap.Config.Company,
		ResumeType:    snap.Config.Resume.MediaType(),
		Questions:     make([]QuestionResponse, 0, len(snap.Questions)),
		AnsweredCount: len(snap.Answers),
		Scores:        snap.Scores,
		CreatedAt:     snap.CreatedAt,
		UpdatedAt:     snap.UpdatedAt,
	}
	for _, q := range snap.Questions {
		qr := QuestionResponse{ID: q.ID, Text: q.Text}
		if a, ok := answers[q.ID]; ok {
			text, at := a.Text, a.AnsweredAt
			qr.Answer = &text
			qr.AnsweredAt = &at
		}
		resp.Questions = append(resp.Questions, qr)
	}
	if f := snap.Failure; f != nil {
		resp.Failure = &FailureResponse{
			Kind:      string(f.Kind),
			Stage:     string(f.Stage),
			Field:     f.Field,
			Message:   f.Message,
			Retryable: f.Retryable,
		}
	}
	if report != nil {
		resp.ReportID = report.ID
	}
	return resp
}

type ReportSummary struct {
	ID            string             `json:"id"`
	SessionID     string             `json:"session_id"`
	Role          string             `json:"role"`
	Company       string             `json:"company"`
	Scores        interview.ScoreSet `json:"scores"`
	QuestionCount int                `json:"question_count"`
	AnsweredCount int                `json:"answered_count"`
	CreatedAt     time.Time          `json:"created_at"`
}

type ReportResponse struct {
	ReportSummary
	Transcript []TranscriptItem `json:"transcript"`
}

type TranscriptItem struct {
	QuestionID string `json:"question_id"`
	Question   string `json:"question"`
	Answer     string `json:"answer"`
	Answered   bool   `json:"answered"`
}

func NewReportSummary(r interview.Report) ReportSummary {
	return ReportSummary{
		ID:            r.ID,
		SessionID:     r.SessionID,
		Role:          r.Role,
		Company:       r.Company,
		Scores:        r.Scores,
		QuestionCount: r.QuestionCount,
		AnsweredCount: r.AnsweredCount,
		CreatedAt:     r.CreatedAt,
	}
}

func NewReportResponse(r interview.Report) ReportResponse {
	resp := ReportResponse{
		ReportSummary: NewReportSummary(r),
		Transcript:    make([]TranscriptItem, 0, len(r.Transcript)),
	}
	for _, e := range r.Transcript {
		resp.Transcript = append(resp.Transcript, TranscriptItem{
			QuestionID: e.Question.ID,
			Question:   e.Question.Text,
			Answer:     e.AnswerText(),
			Answered:   e.Answered(),
		})
	}
	return resp
}
