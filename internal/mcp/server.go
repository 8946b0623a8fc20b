package mcp

import (
	"context"
	"fmt"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/1broseidon/tileexpo/internal/ipc"
)

const (
	ServerName    = "tileexpo"
	ServerVersion = "0.1.0"
)

// Daemon is the subset of the IPC client the tools use.
type Daemon interface {
	Toggle() error
	Select(x, y int) error
	GetStatus() (*ipc.StatusData, error)
}

// Server is the MCP server exposing overview controls.
type Server struct {
	mcpServer *mcpsdk.Server
	daemon    Daemon
}

// NewServer creates a new MCP server that talks to the daemon.
func NewServer(daemon Daemon) *Server {
	s := &Server{daemon: daemon}
	s.mcpServer = mcpsdk.NewServer(
		&mcpsdk.Implementation{
			Name:    ServerName,
			Version: ServerVersion,
		},
		nil,
	)
	s.registerTools()
	return s
}

// Run starts the MCP server on stdio transport, blocking until done.
func (s *Server) Run(ctx context.Context) error {
	return s.mcpServer.Run(ctx, &mcpsdk.StdioTransport{})
}

func (s *Server) registerTools() {
	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "overview_toggle",
		Description: "Zoom out to the workspace overview, or back into the selected workspace if the overview is already shown. Reverses a zoom that is still animating.",
	}, s.handleToggle)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "overview_select",
		Description: "Zoom into the workspace at column x, row y. Only valid while the overview is shown; call overview_toggle first.",
	}, s.handleSelect)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "overview_status",
		Description: "Report the overview state, the workspace grid size, the active and return workspaces, and animation progress.",
	}, s.handleStatus)
}

func (s *Server) currentState() string {
	st, err := s.daemon.GetStatus()
	if err != nil {
		return "unknown"
	}
	return st.StateName
}

func (s *Server) handleToggle(_ context.Context, _ *mcpsdk.CallToolRequest, _ ToggleInput) (*mcpsdk.CallToolResult, ToggleOutput, error) {
	if err := s.daemon.Toggle(); err != nil {
		return nil, ToggleOutput{}, fmt.Errorf("overview_toggle: %w", err)
	}
	return nil, ToggleOutput{State: s.currentState()}, nil
}

func (s *Server) handleSelect(_ context.Context, _ *mcpsdk.CallToolRequest, args SelectInput) (*mcpsdk.CallToolResult, SelectOutput, error) {
	if args.X < 0 || args.Y < 0 {
		return nil, SelectOutput{}, fmt.Errorf("overview_select: x and y must be >= 0")
	}
	if err := s.daemon.Select(args.X, args.Y); err != nil {
		return nil, SelectOutput{}, fmt.Errorf("overview_select: %w", err)
	}
	return nil, SelectOutput{X: args.X, Y: args.Y, State: s.currentState()}, nil
}

func (s *Server) handleStatus(_ context.Context, _ *mcpsdk.CallToolRequest, _ StatusInput) (*mcpsdk.CallToolResult, StatusOutput, error) {
	st, err := s.daemon.GetStatus()
	if err != nil {
		return nil, StatusOutput{}, fmt.Errorf("overview_status: %w", err)
	}
	return nil, statusOutput(st), nil
}

func statusOutput(st *ipc.StatusData) StatusOutput {
	return StatusOutput{
		State:         st.StateName,
		Columns:       st.Grid.Columns,
		Rows:          st.Grid.Rows,
		ActiveX:       st.Active.X,
		ActiveY:       st.Active.Y,
		ReturnX:       st.Return.X,
		ReturnY:       st.Return.Y,
		Step:          st.Step,
		MaxSteps:      st.MaxSteps,
		Animating:     st.Animating,
		ScaleX:        st.Params.ScaleX,
		ScaleY:        st.Params.ScaleY,
		UptimeSeconds: st.UptimeSeconds,
	}
}
