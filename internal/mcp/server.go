package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog"

	"github.com/ksred/card-check/internal/services"
)

// RecentVerificationsURI is the resource holding the latest verification attempts
const RecentVerificationsURI = "verifications://recent"

// Server wraps the MCP server with our application logic
type Server struct {
	mcpServer *server.MCPServer
	handler   *Handler
	logger    zerolog.Logger
}

// NewServer creates a new MCP server instance
func NewServer(verifier *services.VerificationService, logger zerolog.Logger) (*Server, error) {
	if verifier == nil {
		return nil, fmt.Errorf("verification service is required")
	}

	mcpServer := server.NewMCPServer(
		"card-check",
		"1.0.0",
		server.WithLogging(),
	)

	s := &Server{
		mcpServer: mcpServer,
		handler:   NewHandler(verifier, logger),
		logger:    logger,
	}

	s.registerTools()
	s.registerResources()
	s.registerPrompts()

	return s, nil
}

// Serve starts the MCP server on stdio
func (s *Server) Serve(ctx context.Context) error {
	s.logger.Debug().Msg("Starting MCP server ServeStdio")
	err := server.ServeStdio(s.mcpServer)
	if err != nil {
		s.logger.Error().Err(err).Msg("MCP server ServeStdio error")
	}
	return err
}

// HandleMessage processes one JSON-RPC message. It returns nil for notifications.
func (s *Server) HandleMessage(ctx context.Context, message json.RawMessage) mcp.JSONRPCMessage {
	return s.mcpServer.HandleMessage(ctx, message)
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.Tool{
		Name:        "verify_card",
		Description: "Check a payment card number (Luhn checksum, 13 to 19 digits), expiry date (MM/YY, not in the past) and CVV (3 or 4 digits). Every complete submission is logged with its status.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"card_number": map[string]interface{}{
					"type":        "string",
					"description": "Card number; spaces and hyphens are ignored",
				},
				"expiry": map[string]interface{}{
					"type":        "string",
					"description": "Expiry date as MM/YY",
				},
				"cvv": map[string]interface{}{
					"type":        "string",
					"description": "Card verification value",
				},
			},
			Required: []string{"card_number", "expiry", "cvv"},
		},
	}, s.createVerifyCardHandler())

	s.mcpServer.AddTool(mcp.Tool{
		Name:        "list_verifications",
		Description: "List logged verification attempts, newest first. Card numbers are masked and CVVs are never returned.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"limit": map[string]interface{}{
					"type":        "integer",
					"description": "Maximum number of records to return (default: 20)",
					"minimum":     1,
					"maximum":     maxListLimit,
				},
			},
		},
	}, s.createListVerificationsHandler())

	s.logger.Info().Int("count", 2).Msg("Registered MCP tools")
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.Resource{
		URI:         RecentVerificationsURI,
		Name:        "Recent Verifications",
		Description: "The latest logged verification attempts with masked card numbers",
		MIMEType:    "application/json",
	}, s.createRecentVerificationsHandler())

	s.logger.Info().Int("count", 1).Msg("Registered MCP resources")
}

func (s *Server) registerPrompts() {
	s.mcpServer.AddPrompt(mcp.Prompt{
		Name:        "verification_report",
		Description: "Summarise recent verification attempts",
		Arguments: []mcp.PromptArgument{
			{
				Name:        "limit",
				Description: "How many recent attempts to look at",
				Required:    false,
			},
		},
	}, s.createVerificationReportHandler())

	s.logger.Info().Int("count", 1).Msg("Registered MCP prompts")
}

func textResult(text string, isError bool) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{
				Type: "text",
				Text: text,
			},
		},
		IsError: isError,
	}
}

func (s *Server) createVerifyCardHandler() server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		jsonData, err := json.Marshal(request.GetArguments())
		if err != nil {
			return textResult(fmt.Sprintf("Failed to parse arguments: %v", err), true), nil
		}

		response, err := s.handler.handleVerifyCard(ctx, jsonData)
		if err != nil {
			return textResult(fmt.Sprintf("Error: %v", err), true), nil
		}

		resultJSON, err := response.ToJSON()
		if err != nil {
			return textResult(fmt.Sprintf("Failed to marshal result: %v", err), true), nil
		}

		return textResult(string(resultJSON), !response.Success), nil
	}
}

func (s *Server) createListVerificationsHandler() server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		jsonData, err := json.Marshal(request.GetArguments())
		if err != nil {
			return textResult(fmt.Sprintf("Failed to parse arguments: %v", err), true), nil
		}

		response, err := s.handler.handleListVerifications(ctx, jsonData)
		if err != nil {
			return textResult(fmt.Sprintf("Error: %v", err), true), nil
		}

		resultJSON, err := response.ToJSON()
		if err != nil {
			return textResult(fmt.Sprintf("Failed to marshal result: %v", err), true), nil
		}

		return textResult(string(resultJSON), false), nil
	}
}

func (s *Server) createRecentVerificationsHandler() server.ResourceHandlerFunc {
	return func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		response, err := s.handler.handleListVerifications(ctx, nil)
		if err != nil {
			return nil, err
		}

		resultJSON, err := response.ToJSON()
		if err != nil {
			return nil, err
		}

		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      request.Params.URI,
				MIMEType: "application/json",
				Text:     string(resultJSON),
			},
		}, nil
	}
}

func (s *Server) createVerificationReportHandler() server.PromptHandlerFunc {
	return func(ctx context.Context, request mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
		limit := fmt.Sprint(defaultListLimit)
		if l, ok := request.Params.Arguments["limit"]; ok && l != "" {
			limit = l
		}

		return &mcp.GetPromptResult{
			Messages: []mcp.PromptMessage{
				{
					Role: "user",
					Content: mcp.TextContent{
						Type: "text",
						Text: fmt.Sprintf("Call list_verifications with limit %s and summarise how many attempts were valid or invalid. Do not repeat card numbers.", limit),
					},
				},
			},
		}, nil
	}
}
