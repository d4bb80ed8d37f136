package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/google/uuid"

	"nihith303/interview-ace/internal/interview"
	"nihith303/interview-ace/internal/repositories"
)

// Dispatcher hands a ticket to whatever runs external calls.
type Dispatcher interface {
	Enqueue(ticket interview.Ticket) bool
}

// JobRunnerFunc adapts a function to JobRunner.
type JobRunnerFunc func(ctx context.Context, ticket interview.Ticket) error

func (f JobRunnerFunc) Run(ctx context.Context, ticket interview.Ticket) error {
	return f(ctx, ticket)
}

type StartSessionRequest struct {
	Role    string
	Company string
	Resume  interview.ResumeFile
}

// SessionView is a detached snapshot of a session plus its report, if one
// has been stored.
type SessionView struct {
	Session interview.Snapshot
	Report  *interview.Report
}

// InterviewService drives sessions from configuration to a stored report.
type InterviewService interface {
	JobRunner
	StartSession(ctx context.Context, userID string, req StartSessionRequest) (SessionView, error)
	GetSession(ctx context.Context, userID, sessionID string) (SessionView, error)
	SubmitAnswer(ctx context.Context, userID, sessionID, questionID, text string) (SessionView, error)
	Finish(ctx context.Context, userID, sessionID string) (SessionView, error)
	Abandon(ctx context.Context, userID, sessionID string) (SessionView, error)
	Retry(ctx context.Context, userID, sessionID string) (SessionView, error)
	PersistReport(ctx context.Context, userID, sessionID string) (interview.Report, bool, error)
	ListReports(ctx context.Context, userID string) ([]interview.Report, error)
	GetReport(ctx context.Context, userID, reportID string) (interview.Report, error)
}

type InterviewDeps struct {
	Sessions   repositories.SessionStore
	Reports    repositories.ReportRepository
	Gateway    QuestionGateway
	Scorer     ScoringEngine
	Dispatcher Dispatcher
	Archive    ResumeArchive
	Clock      interview.Clock
	Policy     interview.RetryPolicy
	Logger     *slog.Logger
}

type interviewService struct {
	sessions   repositories.SessionStore
	reports    repositories.ReportRepository
	gateway    QuestionGateway
	scorer     ScoringEngine
	dispatcher Dispatcher
	archive    ResumeArchive
	assembler  *interview.Assembler
	clock      interview.Clock
	policy     interview.RetryPolicy
	newID      func() string
	logger     *slog.Logger
}

func NewInterviewService(deps InterviewDeps) InterviewService {
	if deps.Clock == nil {
		deps.Clock = interview.SystemClock{}
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	return &interviewService{
		sessions:   deps.Sessions,
		reports:    deps.Reports,
		gateway:    deps.Gateway,
		scorer:     deps.Scorer,
		dispatcher: deps.Dispatcher,
		archive:    deps.Archive,
		assembler:  interview.NewAssembler(deps.Clock),
		clock:      deps.Clock,
		policy:     deps.Policy,
		newID:      uuid.NewString,
		logger:     deps.Logger,
	}
}

// StartSession ingests the résumé, configures a new session and queues
// question generation.
func (o *interviewService) StartSession(ctx context.Context, userID string, req StartSessionRequest) (SessionView, error) {
	content, err := interview.Ingest(req.Resume)
	if err != nil {
		return SessionView{}, err
	}

	now := o.clock.Now()
	session := interview.NewSession(o.newID(), userID, now)
	cfg := interview.SessionConfig{Role: req.Role, Company: req.Company, Resume: content}
	if err := session.Configure(cfg, now); err != nil {
		return SessionView{}, err
	}
	ticket, err := session.BeginGeneration(now)
	if err != nil {
		return SessionView{}, err
	}

	if err := o.sessions.Create(ctx, session); err != nil {
		return SessionView{}, fmt.Errorf("failed to create session: %w", err)
	}

	o.logger.Info("session started",
		"session_id", session.ID(),
		"user_id", userID,
		"role", session.Config().Role,
		"company", session.Config().Company)

	o.archiveResume(ctx, userID, session.ID(), req.Resume)

	return o.dispatch(ctx, session, ticket)
}

func (o *interviewService) archiveResume(ctx context.Context, userID, sessionID string, file interview.ResumeFile) {
	if o.archive == nil {
		return
	}
	key, err := o.archive.Save(ctx, userID, sessionID, file)
	if err != nil {
		o.logger.Warn("failed to archive resume", "session_id", sessionID, "error", err)
		return
	}
	o.logger.Debug("resume archived", "session_id", sessionID, "key", key)
}

// dispatch queues ticket; a refused ticket fails the session retryably.
func (o *interviewService) dispatch(ctx context.Context, session *interview.Session, ticket interview.Ticket) (SessionView, error) {
	if o.dispatcher != nil && o.dispatcher.Enqueue(ticket) {
		return o.view(ctx, session)
	}

	o.logger.Warn("job queue unavailable", "session_id", ticket.SessionID, "stage", ticket.Stage)
	updated, err := o.sessions.Update(ctx, ticket.SessionID, func(s *interview.Session) error {
		now := o.clock.Now()
		if ticket.Stage == interview.StageScoring {
			return s.FailScoring(ticket, &interview.ScoringError{Reason: "the scoring queue is unavailable", Retryable: true}, now)
		}
		return s.FailGeneration(ticket, &interview.GenerationError{Reason: "the generation queue is unavailable", Retryable: true}, now)
	})
	if errors.Is(err, interview.ErrStaleResponse) {
		// The job was picked up after all.
		return o.GetSession(ctx, session.UserID(), session.ID())
	}
	if err != nil {
		return SessionView{}, err
	}
	return o.view(ctx, updated)
}

// Run implements JobRunner. The external call happens outside the session
// store; its result is applied only if ticket is still current.
func (o *interviewService) Run(ctx context.Context, ticket interview.Ticket) error {
	session, err := o.sessions.Get(ctx, ticket.SessionID)
	if err != nil {
		return err
	}
	if pending, ok := session.PendingTicket(); !ok || pending != ticket {
		return interview.ErrStaleResponse
	}

	switch ticket.Stage {
	case interview.StageGeneration:
		return o.runGeneration(ctx, session, ticket)
	case interview.StageScoring:
		return o.runScoring(ctx, session, ticket)
	}
	return fmt.Errorf("unknown stage %q", ticket.Stage)
}

func (o *interviewService) runGeneration(ctx context.Context, session *interview.Session, ticket interview.Ticket) error {
	questions, genErr := o.gateway.GenerateQuestions(ctx, session.Config())

	updated, err := o.sessions.Update(ctx, ticket.SessionID, func(s *interview.Session) error {
		now := o.clock.Now()
		if genErr != nil {
			return s.FailGeneration(ticket, genErr, now)
		}
		return s.ApplyQuestions(ticket, questions, now)
	})
	if err != nil {
		return err
	}

	if updated.State() == interview.StateFailed {
		f, _ := updated.Failure()
		o.logger.Warn("question generation failed",
			"session_id", updated.ID(),
			"retryable", f.Retryable,
			"reason", f.Message)
		return nil
	}
	o.logger.Info("session in progress", "session_id", updated.ID(), "questions", len(updated.Questions()))
	return nil
}

func (o *interviewService) runScoring(ctx context.Context, session *interview.Session, ticket interview.Ticket) error {
	cfg := session.Config()
	scores, scoreErr := o.scorer.Score(ctx, ScoringRequest{
		Role:       cfg.Role,
		Company:    cfg.Company,
		Transcript: session.Transcript(),
	})

	updated, err := o.sessions.Update(ctx, ticket.SessionID, func(s *interview.Session) error {
		now := o.clock.Now()
		if scoreErr != nil {
			return s.FailScoring(ticket, scoreErr, now)
		}
		return s.CompleteScoring(ticket, scores, now)
	})
	if err != nil {
		return err
	}

	if updated.State() == interview.StateFailed {
		f, _ := updated.Failure()
		o.logger.Warn("scoring failed",
			"session_id", updated.ID(),
			"kind", f.Kind,
			"retryable", f.Retryable,
			"reason", f.Message)
		return nil
	}

	report, _, err := o.saveReport(ctx, updated)
	if err != nil {
		o.logger.Error("failed to persist report", "session_id", updated.ID(), "error", err)
		return err
	}
	o.logger.Info("session completed", "session_id", updated.ID(), "report_id", report.ID)
	return nil
}

// saveReport stores the report for a completed session once. A report that
// already exists is returned as is with created false.
func (o *interviewService) saveReport(ctx context.Context, session *interview.Session) (interview.Report, bool, error) {
	existing, err := o.reports.FindBySession(ctx, session.ID())
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, repositories.ErrReportNotFound) {
		return interview.Report{}, false, err
	}

	report, err := o.assembler.Assemble(session, session.UserID())
	if err != nil {
		return interview.Report{}, false, err
	}
	saved, err := o.reports.Save(ctx, report)
	if errors.Is(err, repositories.ErrReportExists) {
		existing, err := o.reports.FindBySession(ctx, session.ID())
		return existing, false, err
	}
	if err != nil {
		return interview.Report{}, false, fmt.Errorf("failed to save report: %w", err)
	}
	return saved, true, nil
}

func (o *interviewService) GetSession(ctx context.Context, userID, sessionID string) (SessionView, error) {
	session, err := o.ownedSession(ctx, userID, sessionID)
	if err != nil {
		return SessionView{}, err
	}
	return o.view(ctx, session)
}

func (o *interviewService) SubmitAnswer(ctx context.Context, userID, sessionID, questionID, text string) (SessionView, error) {
	updated, err := o.update(ctx, userID, sessionID, func(s *interview.Session) error {
		return s.SubmitAnswer(questionID, text, o.clock.Now())
	})
	if err != nil {
		return SessionView{}, err
	}
	return o.view(ctx, updated)
}

// Finish closes answering and queues scoring. Unanswered questions are
// allowed.
func (o *interviewService) Finish(ctx context.Context, userID, sessionID string) (SessionView, error) {
	var ticket interview.Ticket
	updated, err := o.update(ctx, userID, sessionID, func(s *interview.Session) error {
		var err error
		ticket, err = s.Finish(o.clock.Now())
		return err
	})
	if err != nil {
		return SessionView{}, err
	}
	o.logger.Info("session finished",
		"session_id", sessionID,
		"answered", updated.Transcript().AnsweredCount(),
		"questions", len(updated.Questions()))
	return o.dispatch(ctx, updated, ticket)
}

// Abandon fails the session. In-flight calls are not cancelled; their
// results are discarded when they arrive.
func (o *interviewService) Abandon(ctx context.Context, userID, sessionID string) (SessionView, error) {
	updated, err := o.update(ctx, userID, sessionID, func(s *interview.Session) error {
		return s.Abandon(o.clock.Now())
	})
	if err != nil {
		return SessionView{}, err
	}
	o.logger.Info("session abandoned", "session_id", sessionID)
	return o.view(ctx, updated)
}

// Retry starts the next attempt of a retryably failed session. The new id is
// derived from the failed one, so a repeated retry returns the same attempt.
func (o *interviewService) Retry(ctx context.Context, userID, sessionID string) (SessionView, error) {
	failed, err := o.ownedSession(ctx, userID, sessionID)
	if err != nil {
		return SessionView{}, err
	}

	now := o.clock.Now()
	next, err := failed.Retry(retryID(failed), o.policy, now)
	if err != nil {
		return SessionView{}, err
	}

	var ticket interview.Ticket
	needsGeneration := next.State() == interview.StateConfiguring
	if needsGeneration {
		ticket, err = next.BeginGeneration(now)
		if err != nil {
			return SessionView{}, err
		}
	}

	if err := o.sessions.Create(ctx, next); err != nil {
		if errors.Is(err, repositories.ErrSessionExists) {
			return o.GetSession(ctx, userID, next.ID())
		}
		return SessionView{}, fmt.Errorf("failed to create session: %w", err)
	}

	o.logger.Info("session retried",
		"session_id", next.ID(),
		"previous_session_id", failed.ID(),
		"attempt", next.Attempt(),
		"state", next.State())

	if needsGeneration {
		return o.dispatch(ctx, next, ticket)
	}
	return o.view(ctx, next)
}

func retryID(failed *interview.Session) string {
	name := failed.ID() + "/" + strconv.Itoa(failed.Attempt()+1)
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(name)).String()
}

// PersistReport stores the report of a completed session if it is missing.
// created reports whether this call stored it.
func (o *interviewService) PersistReport(ctx context.Context, userID, sessionID string) (interview.Report, bool, error) {
	session, err := o.ownedSession(ctx, userID, sessionID)
	if err != nil {
		return interview.Report{}, false, err
	}
	if session.State() != interview.StateCompleted {
		return interview.Report{}, false, &interview.PreconditionError{Op: "save a report", State: session.State()}
	}
	return o.saveReport(ctx, session)
}

func (o *interviewService) ListReports(ctx context.Context, userID string) ([]interview.Report, error) {
	return o.reports.ListByUser(ctx, userID)
}

func (o *interviewService) GetReport(ctx context.Context, userID, reportID string) (interview.Report, error) {
	report, err := o.reports.FindByID(ctx, reportID)
	if err != nil {
		return interview.Report{}, err
	}
	if report.UserID != userID {
		return interview.Report{}, repositories.ErrReportNotFound
	}
	return report, nil
}

func (o *interviewService) ownedSession(ctx context.Context, userID, sessionID string) (*interview.Session, error) {
	session, err := o.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.UserID() != userID {
		return nil, repositories.ErrSessionNotFound
	}
	return session, nil
}

func (o *interviewService) update(ctx context.Context, userID, sessionID string, fn func(*interview.Session) error) (*interview.Session, error) {
	return o.sessions.Update(ctx, sessionID, func(s *interview.Session) error {
		if s.UserID() != userID {
			return repositories.ErrSessionNotFound
		}
		return fn(s)
	})
}

func (o *interviewService) view(ctx context.Context, session *interview.Session) (SessionView, error) {
	view := SessionView{Session: session.Snapshot()}
	if session.State() != interview.StateCompleted {
		return view, nil
	}
	report, err := o.reports.FindBySession(ctx, session.ID())
	if errors.Is(err, repositories.ErrReportNotFound) {
		return view, nil
	}
	if err != nil {
		return SessionView{}, err
	}
	view.Report = &report
	return view, nil
}
