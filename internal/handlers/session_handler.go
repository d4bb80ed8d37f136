package handlers

import (
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"path/filepath"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"

	"nihith303/interview-ace/internal/auth"
	"nihith303/interview-ace/internal/interview"
	"nihith303/interview-ace/internal/models"
	"nihith303/interview-ace/internal/services"
)

type SessionHandler struct {
	interviews services.InterviewService
	logger     *slog.Logger
}

func NewSessionHandler(interviews services.InterviewService, logger *slog.Logger) *SessionHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &SessionHandler{interviews: interviews, logger: logger}
}

// HandleStart accepts a multipart form with role, company and a resume file.
func (h *SessionHandler) HandleStart(c *fiber.Ctx) error {
	resume := interview.ResumeFile{}
	if fh, err := c.FormFile("resume"); err == nil {
		resume, err = readResume(fh)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "failed to read resume upload",
			})
		}
	}

	view, err := h.interviews.StartSession(c.UserContext(), auth.UserID(c), services.StartSessionRequest{
		Role:    utils.CopyString(c.FormValue("role")),
		Company: utils.CopyString(c.FormValue("company")),
		Resume:  resume,
	})
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.Status(fiber.StatusAccepted).JSON(models.NewSessionResponse(view.Session, view.Report))
}

func readResume(fh *multipart.FileHeader) (interview.ResumeFile, error) {
	file := interview.ResumeFile{
		Name:         fh.Filename,
		DeclaredType: resumeType(fh),
		Size:         fh.Size,
	}
	src, err := fh.Open()
	if err != nil {
		return file, fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer src.Close()

	// Ingest rejects anything over the limit, one extra byte is enough to tell.
	file.Data, err = io.ReadAll(io.LimitReader(src, interview.MaxResumeSize+1))
	if err != nil {
		return file, fmt.Errorf("failed to read uploaded file: %w", err)
	}
	return file, nil
}

// resumeType falls back to the file extension when the client sent no
// useful content type.
func resumeType(fh *multipart.FileHeader) string {
	declared := strings.TrimSpace(fh.Header.Get(fiber.HeaderContentType))
	if declared != "" && !strings.HasPrefix(declared, "application/octet-stream") {
		return declared
	}
	switch strings.ToLower(filepath.Ext(fh.Filename)) {
	case ".pdf":
		return interview.MediaTypePDF
	case ".docx":
		return interview.MediaTypeDOCX
	}
	return declared
}

// param copies a route parameter out of the request buffer, which fasthttp
// reuses once the handler returns.
func param(c *fiber.Ctx, key string) string {
	return utils.CopyString(c.Params(key))
}

func (h *SessionHandler) HandleGet(c *fiber.Ctx) error {
	view, err := h.interviews.GetSession(c.UserContext(), auth.UserID(c), param(c, "id"))
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(models.NewSessionResponse(view.Session, view.Report))
}

func (h *SessionHandler) HandleAnswer(c *fiber.Ctx) error {
	var req models.AnswerRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	view, err := h.interviews.SubmitAnswer(c.UserContext(), auth.UserID(c), param(c, "id"), param(c, "questionId"), req.Text)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(models.NewSessionResponse(view.Session, view.Report))
}

func (h *SessionHandler) HandleFinish(c *fiber.Ctx) error {
	view, err := h.interviews.Finish(c.UserContext(), auth.UserID(c), param(c, "id"))
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.Status(fiber.StatusAccepted).JSON(models.NewSessionResponse(view.Session, view.Report))
}

func (h *SessionHandler) HandleAbandon(c *fiber.Ctx) error {
	view, err := h.interviews.Abandon(c.UserContext(), auth.UserID(c), param(c, "id"))
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(models.NewSessionResponse(view.Session, view.Report))
}

func (h *SessionHandler) HandleRetry(c *fiber.Ctx) error {
	view, err := h.interviews.Retry(c.UserContext(), auth.UserID(c), param(c, "id"))
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.Status(fiber.StatusAccepted).JSON(models.NewSessionResponse(view.Session, view.Report))
}

// HandlePersistReport stores the report of a completed session if it is
// missing and returns it: 201 when stored now, 200 when it already existed.
func (h *SessionHandler) HandlePersistReport(c *fiber.Ctx) error {
	report, created, err := h.interviews.PersistReport(c.UserContext(), auth.UserID(c), param(c, "id"))
	if err != nil {
		return respondError(c, h.logger, err)
	}
	status := fiber.StatusOK
	if created {
		status = fiber.StatusCreated
	}
	return c.Status(status).JSON(models.NewReportResponse(report))
}
