package handler

import (
	"github.com/gofiber/fiber/v3"

	"github.com/Spunkeroo/scam-stream/internal/middleware"
	"github.com/Spunkeroo/scam-stream/internal/model"
	"github.com/Spunkeroo/scam-stream/internal/service"
)

type ReportHandler struct {
	svc *service.SubmissionRegistry
}

func NewReportHandler(svc *service.SubmissionRegistry) *ReportHandler {
	return &ReportHandler{svc: svc}
}

// List handles GET /api/reports
func (h *ReportHandler) List(c fiber.Ctx) error {
	ranked, err := h.svc.Ranked(c.Context(), middleware.ClientID(c))
	if err != nil {
		return serviceError(c, err, "Failed to load reports")
	}
	return c.JSON(fiber.Map{
		"reports":   ranked,
		"threshold": h.svc.Threshold(),
	})
}

// Promoted handles GET /api/reports/promoted
func (h *ReportHandler) Promoted(c fiber.Ctx) error {
	promoted, err := h.svc.ListPromoted(c.Context(), 0)
	if err != nil {
		return serviceError(c, err, "Failed to load promoted reports")
	}
	return c.JSON(fiber.Map{"reports": promoted})
}

// Submit handles POST /api/reports
func (h *ReportHandler) Submit(c fiber.Ctx) error {
	var req model.SubmissionRequest
	if err := c.Bind().JSON(&req); err != nil {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_BODY", "Invalid request body")
	}
	if errMsg := middleware.ValidateSubmission(&req); errMsg != "" {
		RecordSubmission("rejected")
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_FIELD", errMsg)
	}

	report, err := h.svc.Submit(c.Context(), req)
	if err != nil {
		RecordSubmission("rejected")
		return serviceError(c, err, "Failed to submit report")
	}
	RecordSubmission("accepted")
	return c.Status(fiber.StatusCreated).JSON(report)
}

// Vote handles POST /api/reports/:id/vote
func (h *ReportHandler) Vote(c fiber.Ctx) error {
	id, errMsg := middleware.ValidateReportID(c.Params("id"))
	if errMsg != "" {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_FIELD", errMsg)
	}
	dir, ok, err := parseVote(c)
	if !ok {
		return err
	}

	resp, err := h.svc.Vote(c.Context(), middleware.ClientID(c), id, dir)
	if err != nil {
		return serviceError(c, err, "Failed to record vote")
	}
	RecordVote(service.NamespaceReport, dir, resp.Action)
	return c.JSON(resp)
}
