package mcp

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/ediezindell/denops-typescript-estree.vim/internal/errors"
	"github.com/ediezindell/denops-typescript-estree.vim/internal/parser"
	"github.com/ediezindell/denops-typescript-estree.vim/internal/security"
)

// createJSONResponse creates a standardized JSON response for MCP tools
func createJSONResponse(data interface{}) (*mcp.CallToolResult, error) {
	content, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal response data: %v", err)
	}

	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: string(content)},
		},
	}, nil
}

// createErrorResponse reports a tool failure inside the result with IsError
// set, so the client model can see it and correct the call.
func createErrorResponse(operation string, err error) (*mcp.CallToolResult, error) {
	return createSmartErrorResponse(operation, err, nil)
}

// createSmartErrorResponse creates an error response with suggestions for
// the failure at hand.
func createSmartErrorResponse(operation string, err error, context map[string]interface{}) (*mcp.CallToolResult, error) {
	errorData := map[string]interface{}{
		"success":   false,
		"error":     err.Error(),
		"operation": operation,
	}

	if suggestions := generateErrorSuggestions(operation, err); len(suggestions) > 0 {
		errorData["suggestions"] = suggestions
	}
	if help := getOperationHelp(operation); help != "" {
		errorData["help"] = help
	}
	if related := getRelatedOperations(operation); len(related) > 0 {
		errorData["related_operations"] = related
	}
	if len(context) > 0 {
		errorData["context"] = context
	}

	response, marshalErr := createJSONResponse(errorData)
	if marshalErr != nil {
		return nil, marshalErr
	}
	response.IsError = true
	return response, nil
}

// generateErrorSuggestions maps typed failures to next steps.
func generateErrorSuggestions(operation string, err error) []string {
	var suggestions []string

	var selErr *errors.SelectorError
	var parseErr *errors.ParseError
	var fileErr *errors.FileError
	switch {
	case stderrors.As(err, &selErr):
		suggestions = append(suggestions,
			"Selectors follow ESQuery syntax: Identifier[name=\"foo\"], CallExpression > MemberExpression, :function",
			"Run suggest_selectors with the cursor on a node to get working selectors")
	case stderrors.As(err, &parseErr):
		suggestions = append(suggestions,
			fmt.Sprintf("Fix the syntax error at %d:%d or reopen the buffer with another dialect", parseErr.Line, parseErr.Column))
	case stderrors.Is(err, security.ErrTooLarge):
		suggestions = append(suggestions, "Raise parser.max-file-kb in .tsestree.kdl or pass a smaller excerpt as text")
	case stderrors.Is(err, security.ErrBinary), stderrors.Is(err, security.ErrDirectory):
		suggestions = append(suggestions, "open_buffer only loads source text files")
	case stderrors.As(err, &fileErr):
		suggestions = append(suggestions, "Check that the path exists and is readable, or pass the content as text")
	}

	msg := err.Error()
	switch {
	case strings.Contains(msg, "unknown dialect"):
		names := make([]string, 0, len(parser.Dialects()))
		for _, d := range parser.Dialects() {
			names = append(names, d.String())
		}
		suggestions = append(suggestions, "Supported dialects: "+strings.Join(names, ", "))
	case strings.Contains(msg, "unknown buffer"):
		suggestions = append(suggestions, "Use the buffer_id returned by the last open_buffer call")
	case operation == "query" && strings.Contains(msg, "selector is required"):
		suggestions = append(suggestions, "Provide a selector like 'Identifier' or 'CallExpression[callee.name=\"fetch\"]'")
	}

	return suggestions
}

// getOperationHelp provides helpful information about each operation
func getOperationHelp(operation string) string {
	helpMap := map[string]string{
		"open_buffer":       "Open a file by path or a snippet by text. Everything else works on this buffer.",
		"edit_buffer":       "Replace the buffer text. Follow with rehighlight to refresh the active selector.",
		"set_cursor":        "Position the cursor before highlight, inspect or focus_next/focus_prev.",
		"highlight":         "Render every match of an ESQuery selector and jump to the first one at or after the cursor.",
		"query":             "List matches of a selector without touching the highlight.",
		"inspect":           "Show the syntax node under the cursor.",
		"suggest_selectors": "Generate selectors for the nodes under the cursor.",
		"dump_ast":          "Render the syntax tree as text, compact, json or yaml.",
	}
	return helpMap[operation]
}

// getRelatedOperations suggests related operations that might be helpful
func getRelatedOperations(operation string) []string {
	relatedMap := map[string][]string{
		"open_buffer":       {"dump_ast", "highlight", "status"},
		"edit_buffer":       {"rehighlight", "open_buffer"},
		"highlight":         {"suggest_selectors", "query", "dump_ast"},
		"query":             {"highlight", "suggest_selectors", "dump_ast"},
		"inspect":           {"suggest_selectors", "set_cursor"},
		"suggest_selectors": {"inspect", "highlight"},
		"dump_ast":          {"inspect", "query"},
	}
	return relatedMap[operation]
}
