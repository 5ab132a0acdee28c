package handler

import (
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jengzang/accel-dashboard-go/internal/analysis"
	"github.com/jengzang/accel-dashboard-go/internal/export"
	"github.com/jengzang/accel-dashboard-go/internal/healthapi"
	"github.com/jengzang/accel-dashboard-go/internal/middleware"
	"github.com/jengzang/accel-dashboard-go/internal/service"
	"github.com/jengzang/accel-dashboard-go/internal/session"
)

// DashboardHandler handles the dashboard pages
type DashboardHandler struct {
	service  *service.DashboardService
	sessions *session.Manager
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(service *service.DashboardService, sessions *session.Manager) *DashboardHandler {
	return &DashboardHandler{service: service, sessions: sessions}
}

// Index renders the selected dataset's charts and metrics
// GET /?dataset=<id>
func (h *DashboardHandler) Index(c *gin.Context) {
	empty := page{Title: "Dashboard"}

	view, err := h.service.Load(c.Request.Context(), c.GetString(middleware.TokenKey), c.Query("dataset"))
	if err != nil {
		h.flashError(c, err)
		render(c, h.sessions, http.StatusOK, "dashboard.html", empty)
		return
	}
	if view == nil {
		render(c, h.sessions, http.StatusOK, "dashboard.html", empty)
		return
	}

	xyz, err := view.XYZChart.JSON()
	if err != nil {
		h.flashError(c, err)
		render(c, h.sessions, http.StatusOK, "dashboard.html", empty)
		return
	}
	magnitude, err := view.MagnitudeChart.JSON()
	if err != nil {
		h.flashError(c, err)
		render(c, h.sessions, http.StatusOK, "dashboard.html", empty)
		return
	}

	render(c, h.sessions, http.StatusOK, "dashboard.html", page{
		Title:          "Dashboard",
		Datasets:       view.Datasets,
		Selected:       view.Selected,
		Metrics:        view.Result.Metrics,
		XYZChart:       xyz,
		MagnitudeChart: magnitude,
	})
}

// Refresh reloads the dashboard
// GET /refresh
func (h *DashboardHandler) Refresh(c *gin.Context) {
	c.Redirect(http.StatusFound, "/")
}

// Export downloads the selected dataset's normalized series as Parquet
// GET /export?dataset=<id>
func (h *DashboardHandler) Export(c *gin.Context) {
	filename, data, err := h.service.Export(c.Request.Context(), c.GetString(middleware.TokenKey), c.Query("dataset"))
	if err != nil {
		if errors.Is(err, service.ErrDatasetNotFound) {
			h.sessions.Flash(c, flashDanger, "No data available to export")
		} else {
			h.flashError(c, err)
		}
		c.Redirect(http.StatusFound, "/")
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, export.ContentType, data)
}

// flashError reports a failed load. Upstream messages are shown as is; anything
// else is prefixed. An expired upstream token also ends the local session.
func (h *DashboardHandler) flashError(c *gin.Context, err error) {
	var (
		apiErr  *healthapi.APIError
		connErr *healthapi.ConnectionError
	)

	switch {
	case errors.Is(err, healthapi.ErrSessionExpired):
		h.sessions.Clear(c)
		h.sessions.Flash(c, flashDanger, err.Error())
	case errors.As(err, &apiErr), errors.As(err, &connErr):
		h.sessions.Flash(c, flashDanger, err.Error())
	default:
		var malformed *analysis.MalformedSampleError
		if !errors.As(err, &malformed) {
			log.Printf("[Dashboard] failed to build dashboard: %v", err)
		}
		h.sessions.Flash(c, flashDanger, "Error: "+err.Error())
	}
}
