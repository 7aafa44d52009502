package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"github.com/urmzd/shutterlink/pkg/api/types"
	"github.com/urmzd/shutterlink/pkg/device"
	"github.com/urmzd/shutterlink/pkg/transport"
)

// LinkHandler handles device connection endpoints
type LinkHandler struct {
	session   Session
	listPorts func() ([]transport.PortInfo, error)
}

// NewLinkHandler creates a new link handler. listPorts enumerates the
// serial ports offered to clients.
func NewLinkHandler(s Session, listPorts func() ([]transport.PortInfo, error)) *LinkHandler {
	return &LinkHandler{session: s, listPorts: listPorts}
}

// GetLink handles GET /link
// @Summary      Get link status
// @Description  Returns the connection state, active transport and session id
// @Tags         link
// @Produce      json
// @Success      200  {object}  types.LinkResponse
// @Failure      500  {object}  types.ErrorResponse  "Settings store error"
// @Router       /link [get]
func (h *LinkHandler) GetLink(c *gin.Context) {
	st, err := h.session.Status(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, linkResponse(st.Link))
}

// Connect handles POST /link/connect
// @Summary      Connect to the tester
// @Description  Opens the USB serial or Bluetooth link. Connecting the active transport again reconnects it.
// @Tags         link
// @Accept       json
// @Produce      json
// @Param        request  body      types.ConnectRequest  true  "Transport (usb or bluetooth) and optional serial port"
// @Success      200      {object}  types.LinkResponse
// @Failure      400      {object}  types.ErrorResponse  "Invalid transport"
// @Failure      409      {object}  types.ErrorResponse  "Another transport is connected or a connect is in progress"
// @Failure      502      {object}  types.ErrorResponse  "Transport could not be opened"
// @Failure      503      {object}  types.ErrorResponse  "Transport disabled"
// @Router       /link/connect [post]
func (h *LinkHandler) Connect(c *gin.Context) {
	ctx := c.Request.Context()

	var req types.ConnectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	kind, err := device.ParseTransportKind(req.Transport)
	if err != nil {
		writeError(c, err)
		return
	}

	if err := h.session.Connect(ctx, kind, req.Port); err != nil {
		log.Warn().Err(err).Str("transport", req.Transport).Msg("Connect request failed")
		writeError(c, err)
		return
	}

	st, err := h.session.Status(ctx)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, linkResponse(st.Link))
}

// Disconnect handles POST /link/disconnect
// @Summary      Disconnect from the tester
// @Description  Closes the active link. Does nothing when already disconnected.
// @Tags         link
// @Produce      json
// @Success      200  {object}  types.LinkResponse
// @Failure      500  {object}  types.ErrorResponse  "Transport could not be released"
// @Router       /link/disconnect [post]
func (h *LinkHandler) Disconnect(c *gin.Context) {
	if err := h.session.Disconnect(); err != nil {
		writeError(c, err)
		return
	}

	st, err := h.session.Status(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, linkResponse(st.Link))
}

// ListPorts handles GET /ports
// @Summary      List serial ports
// @Description  Enumerates serial ports the USB link can open
// @Tags         link
// @Produce      json
// @Success      200  {object}  types.PortsResponse
// @Failure      500  {object}  types.ErrorResponse  "Enumeration failed"
// @Router       /ports [get]
func (h *LinkHandler) ListPorts(c *gin.Context) {
	ports, err := h.listPorts()
	if err != nil {
		writeError(c, err)
		return
	}
	if ports == nil {
		ports = []transport.PortInfo{}
	}

	c.JSON(http.StatusOK, types.PortsResponse{
		Ports: ports,
		Count: len(ports),
	})
}
