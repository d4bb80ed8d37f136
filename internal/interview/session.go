package interview

import (
	"errors"
	"time"
	"unicode/utf8"
)

type State string

const (
	StateConfiguring       State = "configuring"
	StateAwaitingQuestions State = "awaiting_questions"
	StateInProgress        State = "in_progress"
	StateAwaitingScoring   State = "awaiting_scoring"
	StateCompleted         State = "completed"
	StateFailed            State = "failed"
)

// Terminal reports whether no further transitions are possible.
func (s State) Terminal() bool {
	return s == StateCompleted || s == StateFailed
}

func (s State) valid() bool {
	switch s {
	case StateConfiguring, StateAwaitingQuestions, StateInProgress,
		StateAwaitingScoring, StateCompleted, StateFailed:
		return true
	}
	return false
}

// Stage names the external call a ticket belongs to.
type Stage string

const (
	StageGeneration Stage = "generation"
	StageScoring    Stage = "scoring"
)

// Ticket identifies one in-flight external call. Results carrying a ticket
// that is no longer current are discarded.
type Ticket struct {
	SessionID  string `json:"session_id"`
	Generation uint64 `json:"generation"`
	Stage      Stage  `json:"stage"`
}

// RetryPolicy bounds caller-initiated retries of a failed session.
type RetryPolicy struct {
	MaxAttempts     int
	RetainQuestions bool
}

// Session is one interview rehearsal attempt. All mutation goes through its
// methods; each method either applies a full transition or leaves the
// session untouched.
type Session struct {
	id         string
	userID     string
	attempt    int
	state      State
	config     SessionConfig
	questions  []Question
	answers    map[string]Answer
	scores     *ScoreSet
	failure    *Failure
	err        error
	generation uint64
	createdAt  time.Time
	updatedAt  time.Time
}

// NewSession starts a session in the configuring state.
func NewSession(id, userID string, now time.Time) *Session {
	return &Session{
		id:        id,
		userID:    userID,
		attempt:   1,
		state:     StateConfiguring,
		answers:   make(map[string]Answer),
		createdAt: now,
		updatedAt: now,
	}
}

func (s *Session) ID() string { return s.id }
func (s *Session) UserID() string { return s.userID }
func (s *Session) Attempt() int { return s.attempt }
func (s *Session) State() State { return s.state }
func (s *Session) Config() SessionConfig { return s.config }
func (s *Session) CreatedAt() time.Time { return s.createdAt }
func (s *Session) UpdatedAt() time.Time { return s.updatedAt }

// Questions returns a copy of the question set in presentation order.
func (s *Session) Questions() []Question {
	out := make([]Question, len(s.questions))
	copy(out, s.questions)
	return out
}

func (s *Session) Answer(questionID string) (Answer, bool) {
	a, ok := s.answers[questionID]
	return a, ok
}

func (s *Session) Scores() (ScoreSet, bool) {
	if s.scores == nil {
		return ScoreSet{}, false
	}
	return *s.scores, true
}

func (s *Session) Failure() (Failure, bool) {
	if s.failure == nil {
		return Failure{}, false
	}
	return *s.failure, true
}

// Err returns the error that terminated a failed session.
func (s *Session) Err() error {
	if s.err != nil {
		return s.err
	}
	if s.failure != nil {
		return s.failure.Err()
	}
	return nil
}

// PendingTicket returns the ticket of the external call the session is waiting on.
func (s *Session) PendingTicket() (Ticket, bool) {
	switch s.state {
	case StateAwaitingQuestions:
		return s.ticket(StageGeneration), true
	case StateAwaitingScoring:
		return s.ticket(StageScoring), true
	}
	return Ticket{}, false
}

// Configure replaces the draft configuration. Partial drafts are allowed.
func (s *Session) Configure(cfg SessionConfig, now time.Time) error {
	if s.state != StateConfiguring {
		return precondition("configure", s.state)
	}
	s.config = cfg.Normalize()
	s.touch(now)
	return nil
}

// BeginGeneration validates the configuration and moves to awaiting_questions.
func (s *Session) BeginGeneration(now time.Time) (Ticket, error) {
	if s.state != StateConfiguring {
		return Ticket{}, precondition("request questions", s.state)
	}
	if err := s.config.Validate(); err != nil {
		return Ticket{}, err
	}
	s.state = StateAwaitingQuestions
	s.generation++
	s.touch(now)
	return s.ticket(StageGeneration), nil
}

// ApplyQuestions delivers the generated question set. An empty or malformed
// set fails the session instead of starting the interview.
func (s *Session) ApplyQuestions(t Ticket, questions []Question, now time.Time) error {
	if err := s.checkTicket(t, StageGeneration, StateAwaitingQuestions); err != nil {
		return err
	}
	if err := validateQuestions(questions); err != nil {
		s.fail(StageGeneration, err, now)
		return nil
	}
	s.questions = make([]Question, len(questions))
	copy(s.questions, questions)
	s.answers = make(map[string]Answer, len(questions))
	s.state = StateInProgress
	s.touch(now)
	return nil
}

// FailGeneration records a failed generation call.
func (s *Session) FailGeneration(t Ticket, cause error, now time.Time) error {
	if err := s.checkTicket(t, StageGeneration, StateAwaitingQuestions); err != nil {
		return err
	}
	s.fail(StageGeneration, cause, now)
	return nil
}

// SubmitAnswer records or replaces the answer to one question. Blank text
// clears a previous answer.
func (s *Session) SubmitAnswer(questionID, text string, now time.Time) error {
	if s.state != StateInProgress {
		return invalid("state", "Answers can only be submitted while the interview is in progress.")
	}
	if !s.hasQuestion(questionID) {
		return invalid("question_id", "Question %q does not belong to this session.", questionID)
	}
	text = normalizeAnswer(text)
	if utf8.RuneCountInString(text) > MaxAnswerLength {
		return invalid("text", "Answer must be at most %d characters.", MaxAnswerLength)
	}
	if text == "" {
		delete(s.answers, questionID)
	} else {
		s.answers[questionID] = Answer{QuestionID: questionID, Text: text, AnsweredAt: now}
	}
	s.touch(now)
	return nil
}

// Finish ends answer collection and requests scoring.
func (s *Session) Finish(now time.Time) (Ticket, error) {
	if s.state != StateInProgress {
		return Ticket{}, precondition("finish the interview", s.state)
	}
	s.state = StateAwaitingScoring
	s.generation++
	s.touch(now)
	return s.ticket(StageScoring), nil
}

// Transcript pairs every question with its answer or nil when unanswered.
func (s *Session) Transcript() Transcript {
	out := make(Transcript, 0, len(s.questions))
	for _, q := range s.questions {
		entry := TranscriptEntry{Question: q}
		if a, ok := s.answers[q.ID]; ok {
			a := a
			entry.Answer = &a
		}
		out = append(out, entry)
	}
	return out
}

// CompleteScoring stores the score set. Out-of-range scores fail the session.
func (s *Session) CompleteScoring(t Ticket, scores ScoreSet, now time.Time) error {
	if err := s.checkTicket(t, StageScoring, StateAwaitingScoring); err != nil {
		return err
	}
	if err := scores.Validate(); err != nil {
		s.fail(StageScoring, err, now)
		return nil
	}
	s.scores = &scores
	s.state = StateCompleted
	s.touch(now)
	return nil
}

// FailScoring records a failed scoring call.
func (s *Session) FailScoring(t Ticket, cause error, now time.Time) error {
	if err := s.checkTicket(t, StageScoring, StateAwaitingScoring); err != nil {
		return err
	}
	s.fail(StageScoring, cause, now)
	return nil
}

// Abandon terminates a session that has not completed. Any in-flight call
// becomes stale.
func (s *Session) Abandon(now time.Time) error {
	if s.state.Terminal() {
		return precondition("abandon", s.state)
	}
	stage := s.currentStage()
	s.generation++
	s.state = StateFailed
	s.err = ErrAbandoned
	s.failure = &Failure{Kind: FailureAbandoned, Stage: stage, Message: ErrAbandoned.Error(), At: now}
	s.touch(now)
	return nil
}

// Retry starts a new attempt from a session that failed retryably. With
// RetainQuestions a scoring failure resumes with the same questions and
// answers, otherwise the new attempt regenerates from the same config.
func (s *Session) Retry(newID string, policy RetryPolicy, now time.Time) (*Session, error) {
	if s.state != StateFailed || s.failure == nil {
		return nil, precondition("retry", s.state)
	}
	if !s.failure.Retryable {
		return nil, precondition("retry a non-retryable failure", s.state)
	}
	if policy.MaxAttempts > 0 && s.attempt >= policy.MaxAttempts {
		return nil, invalid("attempt", "Retry limit of %d attempts reached. Start a new session.", policy.MaxAttempts)
	}

	next := NewSession(newID, s.userID, now)
	next.attempt = s.attempt + 1
	next.config = s.config
	if s.failure.Stage == StageScoring && policy.RetainQuestions && len(s.questions) > 0 {
		next.questions = s.Questions()
		for id, a := range s.answers {
			next.answers[id] = a
		}
		next.state = StateInProgress
	}
	return next, nil
}

func (s *Session) checkTicket(t Ticket, stage Stage, state State) error {
	if t.SessionID != s.id || t.Stage != stage || t.Generation != s.generation || s.state != state {
		return ErrStaleResponse
	}
	return nil
}

func (s *Session) ticket(stage Stage) Ticket {
	return Ticket{SessionID: s.id, Generation: s.generation, Stage: stage}
}

func (s *Session) currentStage() Stage {
	switch s.state {
	case StateConfiguring, StateAwaitingQuestions:
		return StageGeneration
	default:
		return StageScoring
	}
}

func (s *Session) fail(stage Stage, cause error, now time.Time) {
	f := classifyFailure(stage, cause, now)
	s.state = StateFailed
	s.failure = &f
	s.err = f.errWithCause(cause)
	s.touch(now)
}

func (s *Session) hasQuestion(id string) bool {
	for _, q := range s.questions {
		if q.ID == id {
			return true
		}
	}
	return false
}

func (s *Session) touch(now time.Time) {
	s.updatedAt = now
}

func validateQuestions(questions []Question) error {
	if len(questions) == 0 {
		return &GenerationError{Reason: "the generation service returned no questions"}
	}
	seen := make(map[string]bool, len(questions))
	for _, q := range questions {
		if q.ID == "" || seen[q.ID] || normalizeAnswer(q.Text) == "" {
			return &GenerationError{Reason: "the generation service returned a malformed question set"}
		}
		seen[q.ID] = true
	}
	return nil
}

// ErrAbandoned terminates a session the candidate walked away from.
var ErrAbandoned = errors.New("session abandoned")
