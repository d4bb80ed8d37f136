package models

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"nihith303/interview-ace/internal/interview"
)

// Report is the stored form of interview.Report. Rows are never updated.
type Report struct {
	ID               uuid.UUID      `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	UserID           string         `gorm:"type:text;not null;index:idx_reports_user_created,priority:1" json:"user_id"`
	SessionID        string         `gorm:"type:text;not null;uniqueIndex" json:"session_id"`
	Role             string         `gorm:"type:text;not null" json:"role"`
	Company          string         `gorm:"type:text;not null" json:"company"`
	Confidence       int            `gorm:"not null" json:"confidence"`
	Correctness      int            `gorm:"not null" json:"correctness"`
	DepthOfKnowledge int            `gorm:"not null" json:"depth_of_knowledge"`
	RoleFit          int            `gorm:"not null" json:"role_fit"`
	QuestionCount    int            `gorm:"not null" json:"question_count"`
	AnsweredCount    int            `gorm:"not null" json:"answered_count"`
	Transcript       datatypes.JSON `gorm:"type:jsonb" json:"transcript"`
	CreatedAt        time.Time      `gorm:"not null;index:idx_reports_user_created,priority:2,sort:desc" json:"created_at"`
}

func (Report) TableName() string {
	return "reports"
}

// NewReport converts a domain report into a row. A missing id is generated.
func NewReport(r interview.Report) (*Report, error) {
	transcript, err := json.Marshal(r.Transcript)
	if err != nil {
		return nil, fmt.Errorf("failed to encode transcript: %w", err)
	}

	id := uuid.New()
	if r.ID != "" {
		id, err = uuid.Parse(r.ID)
		if err != nil {
			return nil, fmt.Errorf("invalid report id: %w", err)
		}
	}

	return &Report{
		ID:               id,
		UserID:           r.UserID,
		SessionID:        r.SessionID,
		Role:             r.Role,
		Company:          r.Company,
		Confidence:       r.Scores.Confidence,
		Correctness:      r.Scores.Correctness,
		DepthOfKnowledge: r.Scores.DepthOfKnowledge,
		RoleFit:          r.Scores.RoleFit,
		QuestionCount:    r.QuestionCount,
		AnsweredCount:    r.AnsweredCount,
		Transcript:       datatypes.JSON(transcript),
		CreatedAt:        r.CreatedAt,
	}, nil
}

// ToDomain converts the row back into an interview.Report.
func (m *Report) ToDomain() (interview.Report, error) {
	var transcript interview.Transcript
	if len(m.Transcript) > 0 {
		if err := json.Unmarshal(m.Transcript, &transcript); err != nil {
			return interview.Report{}, fmt.Errorf("failed to decode transcript: %w", err)
		}
	}

	return interview.Report{
		ID:        m.ID.String(),
		UserID:    m.UserID,
		SessionID: m.SessionID,
		Role:      m.Role,
		Company:   m.Company,
		Scores: interview.ScoreSet{
			Confidence:       m.Confidence,
			Correctness:      m.Correctness,
			DepthOfKnowledge: m.DepthOfKnowledge,
			RoleFit:          m.RoleFit,
		},
		QuestionCount: m.QuestionCount,
		AnsweredCount: m.AnsweredCount,
		Transcript:    transcript,
		CreatedAt:     m.CreatedAt,
	}, nil
}
