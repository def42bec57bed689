package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mhizterkeyz/resultify-api/internal/service"
	"github.com/mhizterkeyz/resultify-api/pkg/response"
)

const probeTimeout = 2 * time.Second

// HealthProbe checks one backing dependency.
type HealthProbe struct {
	Name  string
	Check func(ctx context.Context) error
}

// MetricsHandler exposes observability endpoints.
type MetricsHandler struct {
	metrics *service.MetricsService
	probes  []HealthProbe
}

func NewMetricsHandler(metrics *service.MetricsService, probes ...HealthProbe) *MetricsHandler {
	return &MetricsHandler{metrics: metrics, probes: probes}
}

// Prometheus serves the Prometheus metrics endpoint.
func (h *MetricsHandler) Prometheus(c *gin.Context) {
	if h.metrics == nil {
		c.AbortWithStatus(http.StatusServiceUnavailable)
		return
	}
	h.metrics.Handler().ServeHTTP(c.Writer, c.Request)
}

// Snapshot godoc
// @Summary Service counters
// @Tags Observability
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /admin/metrics [get]
func (h *MetricsHandler) Snapshot(c *gin.Context) {
	response.JSON(c, http.StatusOK, h.metrics.Snapshot(), nil)
}

// Health runs every probe and answers 503 when any of them fails.
func (h *MetricsHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), probeTimeout)
	defer cancel()

	status := http.StatusOK
	checks := make(gin.H, len(h.probes))
	for _, probe := range h.probes {
		if err := probe.Check(ctx); err != nil {
			status = http.StatusServiceUnavailable
			checks[probe.Name] = err.Error()
			continue
		}
		checks[probe.Name] = "ok"
	}

	state := "ok"
	if status != http.StatusOK {
		state = "degraded"
	}
	c.JSON(status, gin.H{"status": state, "checks": checks})
}
