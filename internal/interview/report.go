package interview

import "time"

// Report is the immutable record of a completed session. ID is assigned by
// the store when the report is saved.
type Report struct {
	ID            string     `json:"id"`
	UserID        string     `json:"user_id"`
	SessionID     string     `json:"session_id"`
	Role          string     `json:"role"`
	Company       string     `json:"company"`
	Scores        ScoreSet   `json:"scores"`
	QuestionCount int        `json:"question_count"`
	AnsweredCount int        `json:"answered_count"`
	Transcript    Transcript `json:"transcript,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

// Clock supplies the assembly timestamp.
type Clock interface {
	Now() time.Time
}

type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now().UTC()
}

// Assembler turns completed sessions into reports.
type Assembler struct {
	clock Clock
}

func NewAssembler(clock Clock) *Assembler {
	if clock == nil {
		clock = SystemClock{}
	}
	return &Assembler{clock: clock}
}

// Assemble builds a report for userID from a completed session. It does not
// persist anything.
func (a *Assembler) Assemble(s *Session, userID string) (Report, error) {
	if s == nil {
		return Report{}, precondition("assemble a report", "")
	}
	scores, ok := s.Scores()
	if s.State() != StateCompleted || !ok {
		return Report{}, precondition("assemble a report", s.State())
	}
	transcript := s.Transcript()
	cfg := s.Config()
	return Report{
		UserID:        userID,
		SessionID:     s.ID(),
		Role:          cfg.Role,
		Company:       cfg.Company,
		Scores:        scores,
		QuestionCount: len(transcript),
		AnsweredCount: transcript.AnsweredCount(),
		Transcript:    transcript,
		CreatedAt:     a.clock.Now(),
	}, nil
}

// Clone returns a deep copy so callers can never share transcript memory.
func (r Report) Clone() Report {
	r.Transcript = r.Transcript.clone()
	return r
}
