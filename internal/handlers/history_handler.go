package handlers

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"alfredoptarigan/resume-shortlister/internal/models"
	"alfredoptarigan/resume-shortlister/internal/repositories"
	"alfredoptarigan/resume-shortlister/internal/services"
)

// HistoryHandler serves persisted runs and candidate search. Either
// dependency may be nil when its feature is switched off.
type HistoryHandler struct {
	repo  repositories.ScreeningRepository
	index services.CandidateIndex
}

func NewHistoryHandler(repo repositories.ScreeningRepository, index services.CandidateIndex) *HistoryHandler {
	return &HistoryHandler{repo: repo, index: index}
}

// HandleList handles GET /history
func (h *HistoryHandler) HandleList(c *fiber.Ctx) error {
	if h.repo == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"error": "Screening history is disabled",
		})
	}

	runs, err := h.repo.ListRecent(c.QueryInt("limit", 20))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to load screening history",
		})
	}

	return c.JSON(models.HistoryResponse{Runs: runs})
}

// HandleGet handles GET /history/:id
func (h *HistoryHandler) HandleGet(c *fiber.Ctx) error {
	if h.repo == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"error": "Screening history is disabled",
		})
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid screening ID format",
		})
	}

	run, err := h.repo.FindByID(id)
	if err != nil {
		if errors.Is(err, repositories.ErrRunNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Screening run not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to load screening run",
		})
	}

	return c.JSON(run)
}

// HandleSearch handles GET /candidates/search
func (h *HistoryHandler) HandleSearch(c *fiber.Ctx) error {
	if h.index == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"error": "Candidate index is disabled",
		})
	}

	query := strings.TrimSpace(c.Query("q"))
	if query == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "q is required",
		})
	}

	matches, err := h.index.Search(c.UserContext(), query, c.Query("role"), c.QueryInt("limit", 5))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to search candidates",
		})
	}

	return c.JSON(models.CandidateSearchResponse{Query: query, Matches: matches})
}
