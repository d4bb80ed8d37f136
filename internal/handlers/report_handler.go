package handlers

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"nihith303/interview-ace/internal/auth"
	"nihith303/interview-ace/internal/models"
	"nihith303/interview-ace/internal/services"
)

type ReportHandler struct {
	interviews services.InterviewService
	logger     *slog.Logger
}

func NewReportHandler(interviews services.InterviewService, logger *slog.Logger) *ReportHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ReportHandler{interviews: interviews, logger: logger}
}

// HandleList returns the user's reports, newest first, without transcripts.
func (h *ReportHandler) HandleList(c *fiber.Ctx) error {
	reports, err := h.interviews.ListReports(c.UserContext(), auth.UserID(c))
	if err != nil {
		return respondError(c, h.logger, err)
	}

	summaries := make([]models.ReportSummary, 0, len(reports))
	for _, r := range reports {
		summaries = append(summaries, models.NewReportSummary(r))
	}
	return c.JSON(fiber.Map{
		"reports": summaries,
	})
}

func (h *ReportHandler) HandleGet(c *fiber.Ctx) error {
	report, err := h.interviews.GetReport(c.UserContext(), auth.UserID(c), param(c, "id"))
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(models.NewReportResponse(report))
}
