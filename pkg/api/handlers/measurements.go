package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/urmzd/shutterlink/pkg/api/types"
)

// MeasurementsHandler handles measurement endpoints
type MeasurementsHandler struct {
	session Session
}

// NewMeasurementsHandler creates a new measurements handler
func NewMeasurementsHandler(s Session) *MeasurementsHandler {
	return &MeasurementsHandler{session: s}
}

// Latest handles GET /measurements/latest
// @Summary      Latest measurements
// @Description  Returns the last metadata, single-point and three-point messages received since the last reset
// @Tags         measurements
// @Produce      json
// @Success      200  {object}  types.LatestResponse
// @Router       /measurements/latest [get]
func (h *MeasurementsHandler) Latest(c *gin.Context) {
	l := h.session.Latest()

	resp := types.LatestResponse{
		Metadata:    l.Metadata,
		SinglePoint: l.SinglePoint,
		ThreePoint:  l.ThreePoint,
	}
	if !l.UpdatedAt.IsZero() {
		resp.UpdatedAt = &l.UpdatedAt
	}
	c.JSON(http.StatusOK, resp)
}

// Reset handles POST /measurements/reset
// @Summary      Reset measurements
// @Description  Clears the latest measurements and notifies event subscribers
// @Tags         measurements
// @Produce      json
// @Success      200  {object}  types.StatusResponse
// @Router       /measurements/reset [post]
func (h *MeasurementsHandler) Reset(c *gin.Context) {
	h.session.Reset()
	c.JSON(http.StatusOK, types.StatusResponse{Status: "reset"})
}
