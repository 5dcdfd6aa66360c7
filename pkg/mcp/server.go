// Package mcp exposes the workflow engine as Model Context Protocol tools
// so that an AI coding agent can drive specification runs step by step.
package mcp

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/speckit/speckit/pkg/engine"
)

// ServerName and ServerVersion identify this server during the MCP handshake.
const (
	ServerName    = "Speckit Workflow Server"
	ServerVersion = "1.0.0"
)

type Server struct {
	mcpServer *server.MCPServer
	engine    *engine.Engine
	logger    *slog.Logger
}

func NewServer(eng *engine.Engine, logger *slog.Logger) *Server {
	s := &Server{
		mcpServer: server.NewMCPServer(
			ServerName,
			ServerVersion,
			server.WithToolCapabilities(true),
		),
		engine: eng,
		logger: logger,
	}

	s.registerTools()

	return s
}

func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// ServeStdio blocks serving the MCP protocol over stdin and stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// SSEServer wraps the MCP server for HTTP transport.
func (s *Server) SSEServer(basePath string) *server.SSEServer {
	return server.NewSSEServer(s.mcpServer, server.WithStaticBasePath(basePath))
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(
		mcp.NewTool(
			"start_workflow",
			mcp.WithDescription("Start a specification workflow for a work item. Returns the instruction for the first step."),
			mcp.WithString("workflow", mcp.Required(), mcp.Description("Name of the workflow to run, as listed by list_workflows")),
			mcp.WithString("contextId", mcp.Required(), mcp.Description("Identifier of the work item or task this run is about")),
		),
		s.handleStartWorkflow,
	)

	s.mcpServer.AddTool(
		mcp.NewTool(
			"execute_step",
			mcp.WithDescription("Report the previous step's output and receive the instruction for the next step."),
			mcp.WithString("sessionId", mcp.Required(), mcp.Description("Session identifier returned by start_workflow")),
			mcp.WithString("previousOutput", mcp.Description("Output produced by the step that just finished; JSON or plain text")),
		),
		s.handleExecuteStep,
	)

	s.mcpServer.AddTool(
		mcp.NewTool(
			"workflow_status",
			mcp.WithDescription("Report progress of a session. Without a sessionId, reports the most recent active session."),
			mcp.WithString("sessionId", mcp.Description("Session identifier; omit for the active session")),
		),
		s.handleWorkflowStatus,
	)

	s.mcpServer.AddTool(
		mcp.NewTool(
			"list_workflows",
			mcp.WithDescription("List the workflows available in this project, with their source tier."),
		),
		s.handleListWorkflows,
	)

	s.mcpServer.AddTool(
		mcp.NewTool(
			"abort_workflow",
			mcp.WithDescription("Abort and delete a session. Without a sessionId, aborts the most recent active session."),
			mcp.WithString("sessionId", mcp.Description("Session identifier; omit for the active session")),
		),
		s.handleAbortWorkflow,
	)

	s.mcpServer.AddTool(
		mcp.NewTool(
			"fail_workflow",
			mcp.WithDescription("Mark a session as failed when a step cannot be completed."),
			mcp.WithString("sessionId", mcp.Required(), mcp.Description("Session identifier returned by start_workflow")),
			mcp.WithString("reason", mcp.Required(), mcp.Description("Why the run cannot continue")),
		),
		s.handleFailWorkflow,
	)
}

func (s *Server) handleStartWorkflow(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]any)
	if !ok {
		return mcp.NewToolResultError("Invalid arguments type"), nil
	}

	workflowName, ok := args["workflow"].(string)
	if !ok || workflowName == "" {
		return mcp.NewToolResultError("Missing required parameter: workflow"), nil
	}

	contextID, ok := args["contextId"].(string)
	if !ok || contextID == "" {
		return mcp.NewToolResultError("Missing required parameter: contextId"), nil
	}

	result, err := s.engine.Start(ctx, workflowName, contextID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to start workflow: %v", err)), nil
	}

	return mcp.NewToolResultText(formatStepResult(result)), nil
}

func (s *Server) handleExecuteStep(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]any)
	if !ok {
		return mcp.NewToolResultError("Invalid arguments type"), nil
	}

	sessionID, ok := args["sessionId"].(string)
	if !ok || sessionID == "" {
		return mcp.NewToolResultError("Missing required parameter: sessionId"), nil
	}

	result, err := s.engine.Advance(ctx, sessionID, args["previousOutput"])
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to execute step: %v", err)), nil
	}

	return mcp.NewToolResultText(formatStepResult(result)), nil
}

func (s *Server) handleWorkflowStatus(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID := optionalString(request, "sessionId")

	report, err := s.engine.Status(ctx, sessionID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to get status: %v", err)), nil
	}

	return mcp.NewToolResultText(formatStatusReport(report)), nil
}

func (s *Server) handleListWorkflows(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	summaries := s.engine.ListWorkflows()

	return mcp.NewToolResultText(formatWorkflowList(summaries)), nil
}

func (s *Server) handleAbortWorkflow(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID := optionalString(request, "sessionId")

	aborted, err := s.engine.Abort(ctx, sessionID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to abort: %v", err)), nil
	}

	if aborted == "" {
		return mcp.NewToolResultText("No active session to abort."), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Session %s aborted.", aborted)), nil
}

func (s *Server) handleFailWorkflow(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]any)
	if !ok {
		return mcp.NewToolResultError("Invalid arguments type"), nil
	}

	sessionID, ok := args["sessionId"].(string)
	if !ok || sessionID == "" {
		return mcp.NewToolResultError("Missing required parameter: sessionId"), nil
	}

	reason, ok := args["reason"].(string)
	if !ok || reason == "" {
		return mcp.NewToolResultError("Missing required parameter: reason"), nil
	}

	if err := s.engine.Fail(ctx, sessionID, reason); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to mark session failed: %v", err)), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Session %s marked as failed: %s", sessionID, reason)), nil
}

func optionalString(request mcp.CallToolRequest, key string) string {
	args, ok := request.Params.Arguments.(map[string]any)
	if !ok {
		return ""
	}

	value, _ := args[key].(string)

	return value
}
