package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/urmzd/shutterlink/pkg/device"
	"github.com/urmzd/shutterlink/pkg/transport"
)

func (s *Server) handleGetHealth(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	out := GetHealthOutput{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}

	st, err := s.session.Status(ctx)
	if err != nil {
		out.Status = "unhealthy"
	}
	out.Link = st.Link.State.String()

	return mcp.NewToolResultText(formatJSON(out)), nil
}

func (s *Server) handleGetLink(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return s.linkResult(ctx)
}

func (s *Server) handleConnect(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := requiredString(request, "transport")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	kind, err := device.ParseTransportKind(name)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	port := request.GetString("port", "")

	if err := s.session.Connect(ctx, kind, port); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to connect: %s", err)), nil
	}
	return s.linkResult(ctx)
}

func (s *Server) handleDisconnect(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if err := s.session.Disconnect(); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to disconnect: %s", err)), nil
	}
	return s.linkResult(ctx)
}

func (s *Server) handleListPorts(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ports, err := s.listPorts()
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to list ports: %s", err)), nil
	}
	if ports == nil {
		ports = []transport.PortInfo{}
	}

	out := ListPortsOutput{
		Ports: ports,
		Count: len(ports),
	}
	return mcp.NewToolResultText(formatJSON(out)), nil
}

func (s *Server) handleSetViewMode(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := requiredString(request, "view_mode")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	view, err := device.ParseViewMode(name)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	sent, err := s.session.SetViewMode(ctx, view)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to set view mode: %s", err)), nil
	}

	out := SetViewModeOutput{
		ViewMode:   string(view),
		DeviceMode: view.DeviceMode().String(),
		Sent:       sent,
	}
	return mcp.NewToolResultText(formatJSON(out)), nil
}

func (s *Server) handleGetOrientation(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	o, err := s.session.Orientation(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to load orientation: %s", err)), nil
	}
	return mcp.NewToolResultText(formatJSON(OrientationOutput{Orientation: string(o)})), nil
}

func (s *Server) handleSetOrientation(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := requiredString(request, "orientation")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	o, err := device.ParseOrientation(name)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if err := s.session.SetOrientation(ctx, o); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to set orientation: %s", err)), nil
	}
	return mcp.NewToolResultText(formatJSON(OrientationOutput{Orientation: string(o)})), nil
}

func (s *Server) handleGetLatest(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	latest := s.session.Latest()

	out := LatestOutput{
		Metadata:    latest.Metadata,
		SinglePoint: latest.SinglePoint,
		ThreePoint:  latest.ThreePoint,
	}
	if !latest.UpdatedAt.IsZero() {
		out.UpdatedAt = latest.UpdatedAt.UTC().Format(time.RFC3339)
	}
	return mcp.NewToolResultText(formatJSON(out)), nil
}

func (s *Server) handleReset(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s.session.Reset()

	out := ResultOutput{
		Success: true,
		Message: "Measurements cleared",
	}
	return mcp.NewToolResultText(formatJSON(out)), nil
}

// --- helpers ---

func (s *Server) linkResult(ctx context.Context) (*mcp.CallToolResult, error) {
	st, err := s.session.Status(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to get link status: %s", err)), nil
	}
	return mcp.NewToolResultText(formatJSON(LinkToOutput(st.Link))), nil
}

func requiredString(request mcp.CallToolRequest, key string) (string, error) {
	args := request.GetArguments()
	v, ok := args[key]
	if !ok || v == nil {
		return "", fmt.Errorf("required parameter %q is missing", key)
	}
	s, ok := v.(string)
	if !ok || s == "" {
		return "", fmt.Errorf("parameter %q must be a non-empty string", key)
	}
	return s, nil
}

func formatJSON(v any) string {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Sprintf(`{"error":"failed to marshal response: %s"}`, err)
	}
	return string(b)
}
