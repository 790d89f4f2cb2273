package handlers

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"alfredoptarigan/resume-shortlister/internal/models"
	"alfredoptarigan/resume-shortlister/internal/services"
)

type ScreeningHandler struct {
	screener services.ScreeningService
	catalog  services.JobCatalog
	limits   UploadLimits
}

func NewScreeningHandler(
	screener services.ScreeningService,
	catalog services.JobCatalog,
	limits UploadLimits,
) *ScreeningHandler {
	return &ScreeningHandler{
		screener: screener,
		catalog:  catalog,
		limits:   limits,
	}
}

func exportURL(id uuid.UUID) string {
	return fmt.Sprintf("/api/v1/screenings/%s/export", id)
}

func toScreeningResponse(batch *models.ScreeningBatch) models.ScreeningResponse {
	return models.ScreeningResponse{
		ID:        batch.ID.String(),
		Role:      batch.Role,
		ExportURL: exportURL(batch.ID),
		Items:     batch.Items,
		Report:    batch.Report,
	}
}

// HandleRoles handles GET /roles
func (h *ScreeningHandler) HandleRoles(c *fiber.Ctx) error {
	return c.JSON(models.RoleResponse{Roles: h.catalog.All()})
}

// HandleCreate handles POST /screenings
func (h *ScreeningHandler) HandleCreate(c *fiber.Ctx) error {
	role, uploads, err := readScreeningForm(c, h.limits)
	if err != nil {
		return c.Status(errorStatus(err)).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	batch, err := h.screener.Screen(c.UserContext(), role, uploads)
	if err != nil {
		if errors.Is(err, services.ErrUnknownRole) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": err.Error(),
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to screen resumes",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(toScreeningResponse(batch))
}

// HandleGet handles GET /screenings/:id
func (h *ScreeningHandler) HandleGet(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid screening ID format",
		})
	}

	batch, err := h.screener.Batch(c.UserContext(), id)
	if err != nil {
		if errors.Is(err, services.ErrBatchNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Screening not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to load screening",
		})
	}

	return c.JSON(toScreeningResponse(batch))
}

// HandleExport handles GET /screenings/:id/export
func (h *ScreeningHandler) HandleExport(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid screening ID format",
		})
	}

	data, err := h.screener.ExportCSV(c.UserContext(), id)
	if err != nil {
		if errors.Is(err, services.ErrBatchNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Screening not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to export screening",
		})
	}

	c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s"`, services.ExportFileName))
	return c.Send(data)
}
