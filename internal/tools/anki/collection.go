package ankitools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"

	"anki-mcp-go/internal/anki"
)

// ListDecksTool lists all decks with per-deck statistics.
type ListDecksTool struct {
	service *anki.Service
}

// NewListDecksTool creates a new ListDecksTool backed by the given service.
func NewListDecksTool(service *anki.Service) *ListDecksTool {
	return &ListDecksTool{service: service}
}

// Name returns the name of the tool.
func (t *ListDecksTool) Name() string {
	return "list_anki_decks"
}

// Definition returns the MCP tool definition.
func (t *ListDecksTool) Definition() mcp.Tool {
	return mcp.NewTool(t.Name(),
		mcp.WithDescription("Get the list of all available Anki decks with card and note counts per deck."),
	)
}

// Call executes the deck listing.
func (t *ListDecksTool) Call(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return toolResult(t.service.ListDecks(ctx))
}

// ListModelsTool lists all note types.
type ListModelsTool struct {
	service *anki.Service
}

// NewListModelsTool creates a new ListModelsTool backed by the given service.
func NewListModelsTool(service *anki.Service) *ListModelsTool {
	return &ListModelsTool{service: service}
}

// Name returns the name of the tool.
func (t *ListModelsTool) Name() string {
	return "list_anki_models"
}

// Definition returns the MCP tool definition.
func (t *ListModelsTool) Definition() mcp.Tool {
	return mcp.NewTool(t.Name(),
		mcp.WithDescription("Get the list of all available Anki note types/models."),
	)
}

// Call executes the model listing.
func (t *ListModelsTool) Call(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return toolResult(t.service.ListModels(ctx))
}

// CollectionInfoTool reports collection-wide statistics.
type CollectionInfoTool struct {
	service *anki.Service
}

// NewCollectionInfoTool creates a new CollectionInfoTool backed by the
// given service.
func NewCollectionInfoTool(service *anki.Service) *CollectionInfoTool {
	return &CollectionInfoTool{service: service}
}

// Name returns the name of the tool.
func (t *CollectionInfoTool) Name() string {
	return "get_anki_info"
}

// Definition returns the MCP tool definition.
func (t *CollectionInfoTool) Definition() mcp.Tool {
	return mcp.NewTool(t.Name(),
		mcp.WithDescription("Get general information about the Anki collection: totals, available decks and note types."),
	)
}

// Call executes the collection info lookup.
func (t *CollectionInfoTool) Call(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return toolResult(t.service.CollectionInfo(ctx))
}
