// Package anki implements the card-creation and collection-inspection
// operations exposed as MCP tools, on top of the AnkiConnect client.
package anki

import (
	"context"
	"fmt"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"

	"anki-mcp-go/internal/ankiconnect"
	"anki-mcp-go/internal/highlight"
)

// Default deck and note type used when the caller does not specify them.
const (
	DefaultDeck  = "English"
	DefaultModel = "Basic"
)

// User-facing messages for recognized failure causes.
const (
	connectionHint   = "Failed to connect to AnkiConnect. Make sure Anki is running with AnkiConnect add-on enabled."
	duplicateMessage = "Duplicate card detected - card already exists"
)

// Result is a JSON-serializable tool result mapping.
type Result map[string]any

// Service implements the tool operations. All operations return a Result
// mapping; failures are converted to {error, success:false} mappings and
// never propagate as errors to the caller.
type Service struct {
	client  *ankiconnect.Client
	logger  zerolog.Logger
	preview *bluemonday.Policy
}

// NewService creates a new service backed by the given AnkiConnect client.
func NewService(client *ankiconnect.Client, logger zerolog.Logger) *Service {
	return &Service{
		client:  client,
		logger:  logger.With().Str("component", "anki_service").Logger(),
		preview: bluemonday.StrictPolicy(),
	}
}

// AddCardParams contains the parameters for AddCard.
type AddCardParams struct {
	Front          string
	Back           string
	Deck           string
	Model          string
	Tags           string
	HighlightFront []string
	HighlightBack  []string
	HighlightColor *highlight.Color
}

// AddCard adds a new card to the collection. The target deck is created if
// missing (best effort); the note type must exist.
func (s *Service) AddCard(ctx context.Context, p AddCardParams) Result {
	if p.Front == "" {
		return errorResult("Front side text is required")
	}
	if p.Back == "" {
		return errorResult("Back side text is required")
	}

	deck := p.Deck
	if deck == "" {
		deck = DefaultDeck
	}
	model := p.Model
	if model == "" {
		model = DefaultModel
	}

	s.logger.Info().
		Str("front_preview", s.fieldPreview(p.Front)).
		Str("deck", deck).
		Str("model", model).
		Msg("Adding Anki card")

	front := p.Front
	back := p.Back
	color := highlight.DefaultColor
	if p.HighlightColor != nil {
		color = *p.HighlightColor
	}
	if len(p.HighlightFront) > 0 {
		front = highlight.Apply(front, p.HighlightFront, color)
	}
	if len(p.HighlightBack) > 0 {
		back = highlight.Apply(back, p.HighlightBack, color)
	}

	// Best effort: a failure here must not prevent card creation.
	s.ensureDeck(ctx, deck)

	if result, ok := s.validateModel(ctx, model); !ok {
		return result
	}

	note := ankiconnect.Note{
		DeckName:  deck,
		ModelName: model,
		Fields: map[string]string{
			"Front": front,
			"Back":  back,
		},
		Tags: strings.Fields(p.Tags),
	}

	noteID, err := s.client.AddNote(ctx, note)
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("deck", deck).
			Msg("Failed to add card")
		return errorResult(normalizeError(err, "Unknown error occurred while adding card"))
	}
	if noteID == 0 {
		return errorResult("Failed to add note - no note ID returned")
	}

	s.logger.Info().
		Int64("note_id", noteID).
		Str("deck", deck).
		Msg("Card added")

	return Result{
		"success":                 true,
		"note_id":                 noteID,
		"front":                   front,
		"back":                    back,
		"deck":                    deck,
		"model":                   model,
		"tags":                    p.Tags,
		"highlighted_words_front": wordList(p.HighlightFront),
		"highlighted_words_back":  wordList(p.HighlightBack),
		"message":                 fmt.Sprintf("Successfully added card to deck '%s'", deck),
	}
}

// ensureDeck creates the deck when it does not exist yet. Failures are
// logged and swallowed.
func (s *Service) ensureDeck(ctx context.Context, deck string) {
	decks, err := s.client.DeckNames(ctx)
	if err != nil {
		s.logger.Warn().
			Err(err).
			Str("deck", deck).
			Msg("Could not check existing decks")
		return
	}

	for _, name := range decks {
		if name == deck {
			return
		}
	}

	s.logger.Info().
		Str("deck", deck).
		Msg("Creating new deck")
	if err := s.client.CreateDeck(ctx, deck); err != nil {
		s.logger.Warn().
			Err(err).
			Str("deck", deck).
			Msg("Could not create deck")
	}
}

// validateModel checks that the requested note type exists. An unknown
// model is a definitive failure; a failure of the lookup itself is logged
// and treated optimistically.
func (s *Service) validateModel(ctx context.Context, model string) (Result, bool) {
	models, err := s.client.ModelNames(ctx)
	if err != nil {
		s.logger.Warn().
			Err(err).
			Str("model", model).
			Msg("Could not check available models")
		return nil, true
	}

	for _, name := range models {
		if name == model {
			return nil, true
		}
	}

	return errorResult(fmt.Sprintf("Model '%s' not found. Available models: %v", model, models)), false
}

// ListDecks returns all deck names with per-deck card and note counts.
// Per-deck statistics failures yield unknown counts for that deck only.
func (s *Service) ListDecks(ctx context.Context) Result {
	decks, err := s.client.DeckNames(ctx)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("Failed to retrieve decks")
		return errorResult(normalizeError(err, "Unknown error occurred while retrieving decks"))
	}

	details := make(map[string]Result, len(decks))
	for _, name := range decks {
		cards, notes := s.deckCounts(ctx, name)
		details[name] = Result{
			"name":       name,
			"card_count": cards,
			"note_count": notes,
		}
	}

	return Result{
		"decks":        decks,
		"deck_count":   len(decks),
		"deck_details": details,
		"message":      fmt.Sprintf("Found %d available decks", len(decks)),
	}
}

// deckCounts returns the card and note counts for one deck, or unknown
// counts when the queries fail.
func (s *Service) deckCounts(ctx context.Context, deck string) (Count, Count) {
	query := fmt.Sprintf("\"deck:%s\"", deck)

	cards, err := s.client.FindCards(ctx, query)
	if err != nil {
		s.logger.Warn().
			Err(err).
			Str("deck", deck).
			Msg("Could not get stats for deck")
		return UnknownCount(), UnknownCount()
	}

	notes, err := s.client.FindNotes(ctx, query)
	if err != nil {
		s.logger.Warn().
			Err(err).
			Str("deck", deck).
			Msg("Could not get stats for deck")
		return UnknownCount(), UnknownCount()
	}

	return KnownCount(len(cards)), KnownCount(len(notes))
}

// ListModels returns all note type names.
func (s *Service) ListModels(ctx context.Context) Result {
	models, err := s.client.ModelNames(ctx)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("Failed to retrieve models")
		return errorResult(normalizeError(err, "Unknown error occurred while retrieving models"))
	}

	return Result{
		"models":      models,
		"model_count": len(models),
		"message":     fmt.Sprintf("Found %d available note types/models", len(models)),
	}
}

// CollectionInfo returns collection-wide statistics. Deck and model name
// lookups are fatal to the call; total card/note counts are best effort.
func (s *Service) CollectionInfo(ctx context.Context) Result {
	decks, err := s.client.DeckNames(ctx)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("Failed to retrieve collection info")
		return errorResult(normalizeError(err, "Unknown error occurred while retrieving collection info"))
	}

	models, err := s.client.ModelNames(ctx)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("Failed to retrieve collection info")
		return errorResult(normalizeError(err, "Unknown error occurred while retrieving collection info"))
	}

	totalCards := UnknownCount()
	totalNotes := UnknownCount()

	cards, err := s.client.FindCards(ctx, "*")
	if err != nil {
		s.logger.Warn().
			Err(err).
			Msg("Could not get total card/note counts")
	} else {
		totalCards = KnownCount(len(cards))
		notes, err := s.client.FindNotes(ctx, "*")
		if err != nil {
			s.logger.Warn().
				Err(err).
				Msg("Could not get total card/note counts")
			totalCards = UnknownCount()
		} else {
			totalNotes = KnownCount(len(notes))
		}
	}

	return Result{
		"total_notes":      totalNotes,
		"total_cards":      totalCards,
		"total_decks":      len(decks),
		"total_models":     len(models),
		"available_decks":  decks,
		"available_models": models,
		"message": fmt.Sprintf("Anki collection contains %s notes, %s cards across %d decks",
			totalNotes, totalCards, len(decks)),
	}
}

// fieldPreview strips HTML from a card field and truncates it for logging.
func (s *Service) fieldPreview(text string) string {
	plain := s.preview.Sanitize(text)
	runes := []rune(plain)
	if len(runes) <= 50 {
		return plain
	}
	return string(runes[:50]) + "..."
}

// normalizeError maps a transport or remote failure to a user-facing
// message. Connectivity failures get a fixed hint, duplicate-note errors a
// fixed duplicate message, empty messages the given fallback; everything
// else passes through verbatim.
func normalizeError(err error, fallback string) string {
	if ankiconnect.IsConnectionError(err) {
		return connectionHint
	}

	msg := ankiconnect.RemoteMessage(err)
	if strings.Contains(strings.ToLower(msg), "duplicate") {
		return duplicateMessage
	}
	if strings.TrimSpace(msg) == "" {
		return fallback
	}
	return msg
}

func errorResult(msg string) Result {
	return Result{
		"error":   msg,
		"success": false,
	}
}

// wordList normalizes a possibly-nil word slice so it serializes as an
// empty JSON array rather than null.
func wordList(words []string) []string {
	if words == nil {
		return []string{}
	}
	return words
}
