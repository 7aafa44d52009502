package mcp

import (
	"context"

	"github.com/mark3labs/mcp-go/server"
	"github.com/urmzd/shutterlink/pkg/device"
	"github.com/urmzd/shutterlink/pkg/session"
	"github.com/urmzd/shutterlink/pkg/transport"
)

// Session is the part of session.Session exposed as tools.
type Session interface {
	Connect(ctx context.Context, kind device.TransportKind, port string) error
	Disconnect() error
	Status(ctx context.Context) (session.Status, error)
	SetViewMode(ctx context.Context, view device.ViewMode) (bool, error)
	Orientation(ctx context.Context) (device.Orientation, error)
	SetOrientation(ctx context.Context, o device.Orientation) error
	Latest() session.Latest
	Reset()
}

// Server wraps the MCP server with the shutter tester tools
type Server struct {
	mcpServer *server.MCPServer
	session   Session
	listPorts func() ([]transport.PortInfo, error)
}

// NewServer creates a new MCP server over s. A nil listPorts enumerates
// the host's serial ports.
func NewServer(s Session, listPorts func() ([]transport.PortInfo, error)) *Server {
	if listPorts == nil {
		listPorts = transport.ListPorts
	}
	srv := &Server{
		session:   s,
		listPorts: listPorts,
	}

	srv.mcpServer = server.NewMCPServer(
		"shutterlink",
		"1.0.0",
		server.WithToolCapabilities(true),
	)

	srv.registerTools()

	return srv
}

// ServeStdio starts the MCP server using stdio transport
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}
