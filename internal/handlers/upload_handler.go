package handlers

import (
	"fmt"
	"io"
	"strings"

	"github.com/gofiber/fiber/v2"

	"alfredoptarigan/resume-shortlister/internal/models"
)

const resumesField = "resumes"

// UploadLimits bounds a single screening request.
type UploadLimits struct {
	MaxFileSize int64
	MaxFiles    int
}

// readScreeningForm pulls the role and the uploaded resumes out of a
// multipart request. Every validation failure is a 400 *fiber.Error.
func readScreeningForm(c *fiber.Ctx, limits UploadLimits) (string, []models.ResumeUpload, error) {
	form, err := c.MultipartForm()
	if err != nil {
		return "", nil, fiber.NewError(fiber.StatusBadRequest, "failed to parse multipart form")
	}

	role := ""
	if values := form.Value["role"]; len(values) > 0 {
		role = strings.TrimSpace(values[0])
	}
	if role == "" {
		return "", nil, fiber.NewError(fiber.StatusBadRequest, "role is required")
	}

	files := form.File[resumesField]
	if len(files) == 0 {
		return "", nil, fiber.NewError(fiber.StatusBadRequest, "upload at least one resume in the 'resumes' field")
	}
	if limits.MaxFiles > 0 && len(files) > limits.MaxFiles {
		return "", nil, fiber.NewError(fiber.StatusBadRequest,
			fmt.Sprintf("too many files: %d uploaded, max %d", len(files), limits.MaxFiles))
	}

	uploads := make([]models.ResumeUpload, 0, len(files))
	for _, file := range files {
		if limits.MaxFileSize > 0 && file.Size > limits.MaxFileSize {
			return "", nil, fiber.NewError(fiber.StatusBadRequest,
				fmt.Sprintf("%s is too large. Max size: %d bytes", file.Filename, limits.MaxFileSize))
		}

		src, err := file.Open()
		if err != nil {
			return "", nil, fiber.NewError(fiber.StatusBadRequest,
				fmt.Sprintf("failed to open uploaded file %s", file.Filename))
		}
		data, err := io.ReadAll(src)
		src.Close()
		if err != nil {
			return "", nil, fiber.NewError(fiber.StatusBadRequest,
				fmt.Sprintf("failed to read uploaded file %s", file.Filename))
		}

		uploads = append(uploads, models.ResumeUpload{Name: file.Filename, Data: data})
	}

	return role, uploads, nil
}

// errorStatus returns the status carried by a *fiber.Error, or 500.
func errorStatus(err error) int {
	if e, ok := err.(*fiber.Error); ok {
		return e.Code
	}
	return fiber.StatusInternalServerError
}
