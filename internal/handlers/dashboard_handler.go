package handlers

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"strings"

	"github.com/gofiber/fiber/v2"

	"alfredoptarigan/resume-shortlister/internal/models"
	"alfredoptarigan/resume-shortlister/internal/services"
)

//go:embed templates/*.html
var templateFS embed.FS

var dashboardTemplates = template.Must(
	template.New("dashboard").Funcs(template.FuncMap{
		"join": strings.Join,
	}).ParseFS(templateFS, "templates/*.html"),
)

type DashboardHandler struct {
	screener services.ScreeningService
	catalog  services.JobCatalog
	limits   UploadLimits
}

func NewDashboardHandler(
	screener services.ScreeningService,
	catalog services.JobCatalog,
	limits UploadLimits,
) *DashboardHandler {
	return &DashboardHandler{
		screener: screener,
		catalog:  catalog,
		limits:   limits,
	}
}

type indexView struct {
	Roles         []string
	Selected      string
	Accept        string
	MaxFiles      int
	MaxFileSizeMB int64
	Error         string
}

type histogramBar struct {
	Label   string
	Count   int
	Percent int
}

type resultsView struct {
	Batch     *models.ScreeningBatch
	Summary   string
	ExportURL string
	Bars      []histogramBar
}

// HandleIndex handles GET /
func (h *DashboardHandler) HandleIndex(c *fiber.Ctx) error {
	return h.renderIndex(c, fiber.StatusOK, "", "")
}

// HandleScreen handles POST /screen
func (h *DashboardHandler) HandleScreen(c *fiber.Ctx) error {
	role, uploads, err := readScreeningForm(c, h.limits)
	if err != nil {
		return h.renderIndex(c, errorStatus(err), c.FormValue("role"), err.Error())
	}

	batch, err := h.screener.Screen(c.UserContext(), role, uploads)
	if err != nil {
		if errors.Is(err, services.ErrUnknownRole) {
			return h.renderIndex(c, fiber.StatusBadRequest, "", err.Error())
		}
		return h.renderIndex(c, fiber.StatusInternalServerError, role, "Failed to screen resumes")
	}

	return render(c, fiber.StatusOK, "results", resultsView{
		Batch:     batch,
		Summary:   services.SummaryLine(batch.Report.Summary),
		ExportURL: exportURL(batch.ID),
		Bars:      histogramBars(batch.Report.Histogram),
	})
}

func (h *DashboardHandler) renderIndex(c *fiber.Ctx, status int, selected, message string) error {
	return render(c, status, "index", indexView{
		Roles:         h.catalog.Roles(),
		Selected:      selected,
		Accept:        strings.Join(services.SupportedExtensions, ","),
		MaxFiles:      h.limits.MaxFiles,
		MaxFileSizeMB: h.limits.MaxFileSize / (1024 * 1024),
		Error:         message,
	})
}

func histogramBars(h models.Histogram) []histogramBar {
	max := h.MaxCount()
	bars := make([]histogramBar, 0, len(h.Bins))
	for _, bin := range h.Bins {
		percent := 0
		if max > 0 {
			percent = bin.Count * 100 / max
		}
		bars = append(bars, histogramBar{
			Label:   fmt.Sprintf("%.1f to %.1f", bin.Lower, bin.Upper),
			Count:   bin.Count,
			Percent: percent,
		})
	}
	return bars
}

func render(c *fiber.Ctx, status int, name string, data any) error {
	var buf bytes.Buffer
	if err := dashboardTemplates.ExecuteTemplate(&buf, name, data); err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, fmt.Sprintf("failed to render %s: %v", name, err))
	}

	c.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)
	return c.Status(status).Send(buf.Bytes())
}
