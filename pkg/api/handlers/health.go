package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/urmzd/shutterlink/pkg/api/types"
)

// HealthHandler handles health check endpoints
type HealthHandler struct {
	session Session
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(s Session) *HealthHandler {
	return &HealthHandler{session: s}
}

// Health handles GET /health
// @Summary      Health check
// @Description  Returns the health of the service and the device link state. The service is healthy when its settings store is reachable, whether or not a device is connected.
// @Tags         health
// @Produce      json
// @Success      200  {object}  types.HealthResponse  "Service is healthy"
// @Failure      503  {object}  types.HealthResponse  "Service is degraded"
// @Router       /health [get]
func (h *HealthHandler) Health(c *gin.Context) {
	st, err := h.session.Status(c.Request.Context())

	status := "healthy"
	httpStatus := http.StatusOK
	if err != nil {
		status = "degraded"
		httpStatus = http.StatusServiceUnavailable
	}

	c.JSON(httpStatus, types.HealthResponse{
		Status:    status,
		Link:      st.Link.State.String(),
		Timestamp: time.Now(),
	})
}
