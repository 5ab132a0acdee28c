package handler

import (
	"errors"
	"log"

	"github.com/gin-gonic/gin"

	"github.com/jengzang/accel-dashboard-go/internal/analysis"
	"github.com/jengzang/accel-dashboard-go/internal/healthapi"
	"github.com/jengzang/accel-dashboard-go/internal/middleware"
	"github.com/jengzang/accel-dashboard-go/internal/models"
	"github.com/jengzang/accel-dashboard-go/internal/service"
	"github.com/jengzang/accel-dashboard-go/pkg/response"
)

// AccelerationHandler handles the JSON acceleration API
type AccelerationHandler struct {
	service *service.DashboardService
}

// NewAccelerationHandler creates a new acceleration handler
func NewAccelerationHandler(service *service.DashboardService) *AccelerationHandler {
	return &AccelerationHandler{service: service}
}

// ListDatasets returns dataset summaries, newest first
// GET /api/v1/acceleration/datasets
func (h *AccelerationHandler) ListDatasets(c *gin.Context) {
	summaries, err := h.service.List(c.Request.Context(), c.GetString(middleware.TokenKey))
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, summaries)
}

// GetDataset returns a normalized dataset with its metrics
// GET /api/v1/acceleration/datasets/:id
func (h *AccelerationHandler) GetDataset(c *gin.Context) {
	result, err := h.service.Dataset(c.Request.Context(), c.GetString(middleware.TokenKey), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, result)
}

// Process normalizes a dataset supplied in the request body
// POST /api/v1/acceleration/process
func (h *AccelerationHandler) Process(c *gin.Context) {
	var dataset models.RawDataset
	if err := c.ShouldBindJSON(&dataset); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	result, err := h.service.Process(dataset)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, result)
}

func writeError(c *gin.Context, err error) {
	var (
		malformed *analysis.MalformedSampleError
		apiErr    *healthapi.APIError
		connErr   *healthapi.ConnectionError
	)

	switch {
	case errors.Is(err, healthapi.ErrSessionExpired):
		response.Unauthorized(c, err.Error())
	case errors.Is(err, service.ErrDatasetNotFound):
		response.NotFound(c, err.Error())
	case errors.As(err, &malformed):
		response.Unprocessable(c, err.Error())
	case errors.As(err, &apiErr), errors.As(err, &connErr):
		response.BadGateway(c, err.Error())
	default:
		log.Printf("[API] %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
		response.InternalError(c, "Internal server error")
	}
}
