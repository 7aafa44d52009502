package mcp

import "github.com/mark3labs/mcp-go/mcp"

// registerTools registers all MCP tools with the server
func (s *Server) registerTools() {
	s.mcpServer.AddTool(
		mcp.NewTool("get_health",
			mcp.WithDescription("Check the health of the shutterlink service and the tester link state"),
		),
		s.handleGetHealth,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("get_link",
			mcp.WithDescription("Get the connection state, active transport and session id of the tester link"),
		),
		s.handleGetLink,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("connect",
			mcp.WithDescription("Connect to the shutter tester over USB serial or Bluetooth LE"),
			mcp.WithString("transport",
				mcp.Required(),
				mcp.Description("Transport to use"),
				mcp.Enum("usb", "bluetooth"),
			),
			mcp.WithString("port",
				mcp.Description("Serial port path for a usb connection (default: configured port)"),
			),
		),
		s.handleConnect,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("disconnect",
			mcp.WithDescription("Disconnect from the shutter tester"),
		),
		s.handleDisconnect,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("list_ports",
			mcp.WithDescription("List the serial ports present on the host"),
		),
		s.handleListPorts,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("set_view_mode",
			mcp.WithDescription("Select what the tester measures. single_point and shot_by_shot use one sensor, three_point and shutter_timing use three."),
			mcp.WithString("view_mode",
				mcp.Required(),
				mcp.Description("View mode"),
				mcp.Enum("single_point", "three_point", "shutter_timing", "shot_by_shot"),
			),
		),
		s.handleSetViewMode,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("get_orientation",
			mcp.WithDescription("Get the shutter travel orientation setting"),
		),
		s.handleGetOrientation,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("set_orientation",
			mcp.WithDescription("Set the shutter travel orientation. auto infers it from the next three-point measurement."),
			mcp.WithString("orientation",
				mcp.Required(),
				mcp.Description("Shutter orientation"),
				mcp.Enum("auto", "vertical", "horizontal"),
			),
		),
		s.handleSetOrientation,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("get_latest_measurements",
			mcp.WithDescription("Get the most recent device metadata, single-point and three-point measurements"),
		),
		s.handleGetLatest,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("reset_measurements",
			mcp.WithDescription("Clear the stored measurements"),
		),
		s.handleReset,
	)
}
