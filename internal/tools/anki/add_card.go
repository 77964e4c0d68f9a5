package ankitools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"

	"anki-mcp-go/internal/anki"
)

// AddCardTool creates new flashcards through AnkiConnect.
type AddCardTool struct {
	service *anki.Service
}

// NewAddCardTool creates a new AddCardTool backed by the given service.
func NewAddCardTool(service *anki.Service) *AddCardTool {
	return &AddCardTool{service: service}
}

// Name returns the name of the tool.
func (t *AddCardTool) Name() string {
	return "add_anki_card"
}

// Definition returns the MCP tool definition.
func (t *AddCardTool) Definition() mcp.Tool {
	return mcp.NewTool(t.Name(),
		mcp.WithDescription("Add a new card to Anki using AnkiConnect. Creates the target deck if it does not exist and optionally highlights words on either side."),
		mcp.WithString("front",
			mcp.Required(),
			mcp.Description("Front side text"),
		),
		mcp.WithString("back",
			mcp.Required(),
			mcp.Description("Back side text"),
		),
		mcp.WithString("deck",
			mcp.DefaultString(anki.DefaultDeck),
			mcp.Description("Deck name"),
		),
		mcp.WithString("model",
			mcp.DefaultString(anki.DefaultModel),
			mcp.Description("Card type/model"),
		),
		mcp.WithString("tags",
			mcp.Description("Space-separated tags for the card"),
		),
		mcp.WithArray("highlight_front",
			mcp.Description("Words to highlight on the front side"),
			mcp.Items(map[string]any{"type": "string"}),
		),
		mcp.WithArray("highlight_back",
			mcp.Description("Words to highlight on the back side"),
			mcp.Items(map[string]any{"type": "string"}),
		),
		mcp.WithObject("highlight_color",
			mcp.Description("RGB highlight color, defaults to light yellow (255, 255, 180)"),
			mcp.Properties(map[string]any{
				"Red":   map[string]any{"type": "integer", "minimum": 0, "maximum": 255},
				"Green": map[string]any{"type": "integer", "minimum": 0, "maximum": 255},
				"Blue":  map[string]any{"type": "integer", "minimum": 0, "maximum": 255},
			}),
		),
	)
}

// Call executes the add-card operation.
func (t *AddCardTool) Call(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	params := anki.AddCardParams{
		Front:          req.GetString("front", ""),
		Back:           req.GetString("back", ""),
		Deck:           req.GetString("deck", anki.DefaultDeck),
		Model:          req.GetString("model", anki.DefaultModel),
		Tags:           req.GetString("tags", ""),
		HighlightFront: stringSliceArg(req, "highlight_front"),
		HighlightBack:  stringSliceArg(req, "highlight_back"),
		HighlightColor: colorArg(req, "highlight_color"),
	}

	return toolResult(t.service.AddCard(ctx, params))
}
