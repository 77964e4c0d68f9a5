// Package ankitools exposes the Anki card operations as MCP tools.
//
// Each tool wraps one operation of the anki.Service: the tool definition
// carries the JSON schema for the agent, Call extracts the arguments and
// returns the operation's result mapping as a JSON text payload. Error
// mappings are returned as error results, never as protocol errors.
package ankitools

import (
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"

	"anki-mcp-go/internal/anki"
	"anki-mcp-go/internal/highlight"
)

// stringSliceArg extracts a string-array argument from a tool request.
// Missing or malformed values yield nil.
func stringSliceArg(req mcp.CallToolRequest, key string) []string {
	raw, ok := req.GetArguments()[key].([]any)
	if !ok {
		return nil
	}

	out := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// colorArg extracts an RGB color object argument, or nil when absent.
func colorArg(req mcp.CallToolRequest, key string) *highlight.Color {
	raw, ok := req.GetArguments()[key].(map[string]any)
	if !ok {
		return nil
	}

	c := highlight.DefaultColor
	c.Red = intField(raw, "Red", c.Red)
	c.Green = intField(raw, "Green", c.Green)
	c.Blue = intField(raw, "Blue", c.Blue)
	return &c
}

// intField extracts an integer from a decoded JSON object, returning
// defaultVal if the key is missing or not a number (JSON numbers are
// float64).
func intField(m map[string]any, key string, defaultVal int) int {
	v, ok := m[key].(float64)
	if !ok {
		return defaultVal
	}
	return int(v)
}

// toolResult serializes a result mapping as a JSON text payload. A mapping
// carrying an error key is flagged as an error result so the agent can
// tell success from failure without parsing the payload.
func toolResult(result anki.Result) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return nil, err
	}

	if _, failed := result["error"]; failed {
		return mcp.NewToolResultError(string(data)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}
