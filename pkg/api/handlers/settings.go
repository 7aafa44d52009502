package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/urmzd/shutterlink/pkg/api/types"
	"github.com/urmzd/shutterlink/pkg/device"
)

// SettingsHandler handles view mode and orientation endpoints
type SettingsHandler struct {
	session Session
}

// NewSettingsHandler creates a new settings handler
func NewSettingsHandler(s Session) *SettingsHandler {
	return &SettingsHandler{session: s}
}

// GetMode handles GET /mode
// @Summary      Get view mode
// @Description  Returns the stored view mode and the device mode it selects
// @Tags         settings
// @Produce      json
// @Success      200  {object}  types.ViewModeResponse
// @Failure      500  {object}  types.ErrorResponse  "Settings store error"
// @Router       /mode [get]
func (h *SettingsHandler) GetMode(c *gin.Context) {
	view, err := h.session.ViewMode(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, types.ViewModeResponse{
		ViewMode:   string(view),
		DeviceMode: view.DeviceMode().String(),
	})
}

// SetMode handles PUT /mode
// @Summary      Set view mode
// @Description  Stores the view mode and, if a device is connected, switches it to the matching device mode (MODE:1 or MODE:2)
// @Tags         settings
// @Accept       json
// @Produce      json
// @Param        request  body      types.ViewModeRequest  true  "single_point, three_point, shutter_timing or shot_by_shot"
// @Success      200      {object}  types.ViewModeResponse
// @Failure      400      {object}  types.ErrorResponse  "Unknown view mode"
// @Failure      502      {object}  types.ErrorResponse  "Command could not be written"
// @Router       /mode [put]
func (h *SettingsHandler) SetMode(c *gin.Context) {
	var req types.ViewModeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	view, err := device.ParseViewMode(req.ViewMode)
	if err != nil {
		writeError(c, err)
		return
	}

	sent, err := h.session.SetViewMode(c.Request.Context(), view)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, types.ViewModeResponse{
		ViewMode:   string(view),
		DeviceMode: view.DeviceMode().String(),
		Sent:       &sent,
	})
}

// GetOrientation handles GET /settings/orientation
// @Summary      Get shutter orientation
// @Description  Returns the shutter orientation setting (auto, vertical or horizontal)
// @Tags         settings
// @Produce      json
// @Success      200  {object}  types.OrientationResponse
// @Failure      500  {object}  types.ErrorResponse  "Settings store error"
// @Router       /settings/orientation [get]
func (h *SettingsHandler) GetOrientation(c *gin.Context) {
	o, err := h.session.Orientation(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, types.OrientationResponse{Orientation: string(o)})
}

// SetOrientation handles PUT /settings/orientation
// @Summary      Set shutter orientation
// @Description  Sets a manual orientation, or auto to infer it from the next three-point measurement
// @Tags         settings
// @Accept       json
// @Produce      json
// @Param        request  body      types.OrientationRequest  true  "auto, vertical or horizontal"
// @Success      200      {object}  types.OrientationResponse
// @Failure      400      {object}  types.ErrorResponse  "Unknown orientation"
// @Router       /settings/orientation [put]
func (h *SettingsHandler) SetOrientation(c *gin.Context) {
	var req types.OrientationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	o, err := device.ParseOrientation(req.Orientation)
	if err != nil {
		writeError(c, err)
		return
	}

	if err := h.session.SetOrientation(c.Request.Context(), o); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, types.OrientationResponse{Orientation: string(o)})
}
