package api

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
)

// JSON-RPC 2.0 error codes used before a message reaches the MCP server
const (
	ParseError     = -32700
	InvalidRequest = -32600
)

// MCPError represents a JSON-RPC 2.0 error
type MCPError struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// MCPErrorResponse represents a JSON-RPC 2.0 error response
type MCPErrorResponse struct {
	JSONRPC string      `json:"jsonrpc"`
	Error   *MCPError   `json:"error"`
	ID      interface{} `json:"id"`
}

// HandleMCP processes MCP protocol requests over HTTP
// @Summary MCP over HTTP
// @Description Forward one JSON-RPC 2.0 message to the MCP server (tools verify_card and list_verifications)
// @Tags mcp
// @Accept json
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Success 202 "Notification accepted"
// @Router /mcp [post]
func (s *Server) HandleMCP(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil || !json.Valid(body) {
		data := "invalid JSON"
		if err != nil {
			data = err.Error()
		}
		c.JSON(http.StatusOK, MCPErrorResponse{
			JSONRPC: "2.0",
			Error: &MCPError{
				Code:    ParseError,
				Message: "Parse error",
				Data:    data,
			},
		})
		return
	}

	var envelope struct {
		JSONRPC string      `json:"jsonrpc"`
		ID      interface{} `json:"id"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil || envelope.JSONRPC != "2.0" {
		c.JSON(http.StatusOK, MCPErrorResponse{
			JSONRPC: "2.0",
			Error: &MCPError{
				Code:    InvalidRequest,
				Message: "Invalid Request",
				Data:    "jsonrpc must be 2.0",
			},
			ID: envelope.ID,
		})
		return
	}

	response := s.mcp.HandleMessage(c.Request.Context(), body)
	if response == nil {
		c.Status(http.StatusAccepted)
		return
	}

	c.JSON(http.StatusOK, response)
}
