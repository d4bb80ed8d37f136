package interview

import (
	"fmt"
	"time"
)

// Snapshot is a detached copy of a session. Mutating it never affects the
// session it was taken from.
type Snapshot struct {
	ID         string        `json:"id"`
	UserID     string        `json:"user_id"`
	Attempt    int           `json:"attempt"`
	State      State         `json:"state"`
	Config     SessionConfig `json:"config"`
	Questions  []Question    `json:"questions"`
	Answers    []Answer      `json:"answers"`
	Scores     *ScoreSet     `json:"scores,omitempty"`
	Failure    *Failure      `json:"failure,omitempty"`
	Generation uint64        `json:"generation"`
	CreatedAt  time.Time     `json:"created_at"`
	UpdatedAt  time.Time     `json:"updated_at"`
}

// Snapshot copies the session. Answers follow question order.
func (s *Session) Snapshot() Snapshot {
	snap := Snapshot{
		ID:         s.id,
		UserID:     s.userID,
		Attempt:    s.attempt,
		State:      s.state,
		Config:     s.config,
		Questions:  s.Questions(),
		Answers:    make([]Answer, 0, len(s.answers)),
		Generation: s.generation,
		CreatedAt:  s.createdAt,
		UpdatedAt:  s.updatedAt,
	}
	for _, q := range s.questions {
		if a, ok := s.answers[q.ID]; ok {
			snap.Answers = append(snap.Answers, a)
		}
	}
	if s.scores != nil {
		scores := *s.scores
		snap.Scores = &scores
	}
	if s.failure != nil {
		failure := *s.failure
		snap.Failure = &failure
	}
	return snap
}

// RestoreSession rebuilds a session from a snapshot, rejecting snapshots
// that break the session invariants.
func RestoreSession(snap Snapshot) (*Session, error) {
	if snap.ID == "" {
		return nil, fmt.Errorf("snapshot has no session id")
	}
	if !snap.State.valid() {
		return nil, fmt.Errorf("snapshot has unknown state %q", snap.State)
	}
	if (snap.State == StateCompleted) != (snap.Scores != nil) {
		return nil, fmt.Errorf("snapshot scores do not match state %s", snap.State)
	}
	if (snap.State == StateFailed) != (snap.Failure != nil) {
		return nil, fmt.Errorf("snapshot failure does not match state %s", snap.State)
	}

	s := &Session{
		id:         snap.ID,
		userID:     snap.UserID,
		attempt:    snap.Attempt,
		state:      snap.State,
		config:     snap.Config,
		questions:  make([]Question, len(snap.Questions)),
		answers:    make(map[string]Answer, len(snap.Answers)),
		generation: snap.Generation,
		createdAt:  snap.CreatedAt,
		updatedAt:  snap.UpdatedAt,
	}
	if s.attempt <= 0 {
		s.attempt = 1
	}
	copy(s.questions, snap.Questions)
	for _, a := range snap.Answers {
		if !s.hasQuestion(a.QuestionID) {
			return nil, fmt.Errorf("snapshot answer references unknown question %q", a.QuestionID)
		}
		s.answers[a.QuestionID] = a
	}
	if snap.Scores != nil {
		scores := *snap.Scores
		s.scores = &scores
	}
	if snap.Failure != nil {
		failure := *snap.Failure
		s.failure = &failure
	}
	return s, nil
}
