package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// CallTool invokes a tool in process, bypassing the stdio transport, and
// returns the text of its result. A result flagged IsError is returned as an
// error carrying that text.
//
//	server, _ := mcp.NewServer(cfg)
//	resultJSON, err := server.CallTool("highlight", map[string]interface{}{
//	    "selector": "Identifier",
//	})
func (s *Server) CallTool(toolName string, params map[string]interface{}) (string, error) {
	ctx := context.Background()

	paramsJSON, err := json.Marshal(params)
	if err != nil {
		return "", fmt.Errorf("failed to marshal params: %w", err)
	}

	handler, ok := s.handlers[toolName]
	if !ok {
		return "", fmt.Errorf("unknown tool: %s", toolName)
	}

	req := &mcp.CallToolRequest{
		Params: &mcp.CallToolParamsRaw{
			Name:      toolName,
			Arguments: paramsJSON,
		},
	}
	result, err := handler(ctx, req)
	if err != nil {
		return "", err
	}
	if result == nil || len(result.Content) == 0 {
		return "", fmt.Errorf("no content returned from tool %s", toolName)
	}

	text, ok := result.Content[0].(*mcp.TextContent)
	if !ok {
		return "", fmt.Errorf("unexpected content type from tool %s", toolName)
	}
	if result.IsError {
		return text.Text, fmt.Errorf("tool %s failed: %s", toolName, text.Text)
	}
	return text.Text, nil
}

// Tools lists the registered tool names.
func (s *Server) Tools() []string {
	names := make([]string, 0, len(s.handlers))
	for name := range s.handlers {
		names = append(names, name)
	}
	return names
}
