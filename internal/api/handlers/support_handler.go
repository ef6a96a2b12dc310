package handlers

import (
	"context"
	"errors"
	"strings"

	"helpdesk-triage/internal/dto"
	"helpdesk-triage/internal/models"
	"helpdesk-triage/internal/service"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// TriageProcessor is the pipeline contract the handler depends on.
type TriageProcessor interface {
	Process(ctx context.Context, request, userID string) (*models.TriageRecord, error)
}

// AuditReader lists past triage records when the audit trail is enabled.
type AuditReader interface {
	ListRecent(ctx context.Context, limit int) ([]*models.TriageRecord, error)
}

type SupportHandler struct {
	pipeline   TriageProcessor
	categories []models.RequestCategory
	audit      AuditReader
	logger     *zap.Logger
}

func NewSupportHandler(pipeline TriageProcessor, categories []models.RequestCategory, audit AuditReader, logger *zap.Logger) *SupportHandler {
	return &SupportHandler{
		pipeline:   pipeline,
		categories: categories,
		audit:      audit,
		logger:     logger,
	}
}

// ProcessRequest runs one support request through the triage pipeline.
func (h *SupportHandler) ProcessRequest(c *fiber.Ctx) error {
	var req dto.SupportRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if strings.TrimSpace(req.Request) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Request text is required",
		})
	}

	record, err := h.pipeline.Process(c.Context(), req.Request, req.UserID)
	if err != nil {
		if errors.Is(err, service.ErrServiceUnavailable) {
			h.logger.Error("Embedding provider unavailable", zap.Error(err))
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"error": "Triage service temporarily unavailable",
			})
		}
		h.logger.Error("Failed to process request", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to process request",
		})
	}

	return c.JSON(dto.FromRecord(record))
}

// Health reports service liveness.
func (h *SupportHandler) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "healthy"})
}

// Categories lists the fixed set of request categories.
func (h *SupportHandler) Categories(c *fiber.Ctx) error {
	names := make([]string, 0, len(h.categories))
	for _, category := range h.categories {
		names = append(names, string(category))
	}
	return c.JSON(fiber.Map{"categories": names})
}

// ListRequests returns recent audit entries, newest first.
func (h *SupportHandler) ListRequests(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 20)
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	records, err := h.audit.ListRecent(c.Context(), limit)
	if err != nil {
		h.logger.Error("Failed to list triage records", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to list requests",
		})
	}

	responses := make([]dto.SupportResponse, 0, len(records))
	for _, record := range records {
		responses = append(responses, dto.FromRecord(record))
	}
	return c.JSON(responses)
}
