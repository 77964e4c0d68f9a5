package ankiconnect

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

// Version is the AnkiConnect API version spoken by this client.
const Version = 6

// request is the AnkiConnect request envelope.
type request struct {
	Action  string `json:"action"`
	Version int    `json:"version"`
	Params  any    `json:"params"`
	Key     string `json:"key,omitempty"`
}

// response is the AnkiConnect response envelope.
type response struct {
	Result json.RawMessage `json:"result"`
	Error  *string         `json:"error"`
}

// Client talks to a local AnkiConnect instance over HTTP. The endpoint is
// resolved once at construction time and treated as read-only afterwards.
type Client struct {
	endpoint   string
	apiKey     string
	httpClient *http.Client
	observer   Observer
	logger     zerolog.Logger
}

// Observer is called after every AnkiConnect round trip with the action,
// "success" or "error", and the elapsed time.
type Observer func(action, status string, elapsed time.Duration)

// ClientConfig contains configuration for the AnkiConnect client
type ClientConfig struct {
	// Endpoint is the resolved AnkiConnect base URL.
	Endpoint string

	// APIKey is included in every request body when non-empty.
	APIKey string

	// HTTPClient overrides the HTTP client used for requests.
	HTTPClient *http.Client

	// Observer receives a callback per round trip, for telemetry.
	Observer Observer
}

// NewClient creates a new AnkiConnect client
func NewClient(cfg ClientConfig, logger zerolog.Logger) *Client {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		endpoint:   cfg.Endpoint,
		apiKey:     cfg.APIKey,
		httpClient: httpClient,
		observer:   cfg.Observer,
		logger:     logger.With().Str("component", "ankiconnect_client").Logger(),
	}
}

// Endpoint returns the resolved AnkiConnect base URL.
func (c *Client) Endpoint() string {
	return c.endpoint
}

// Invoke sends a single AnkiConnect action and returns the raw result
// payload. A nil params is sent as an empty object.
func (c *Client) Invoke(ctx context.Context, action string, params any) (json.RawMessage, error) {
	start := time.Now()
	result, err := c.invoke(ctx, action, params)

	if c.observer != nil {
		status := "success"
		if err != nil {
			status = "error"
		}
		c.observer(action, status, time.Since(start))
	}

	return result, err
}

func (c *Client) invoke(ctx context.Context, action string, params any) (json.RawMessage, error) {
	if params == nil {
		params = map[string]any{}
	}

	body, err := json.Marshal(request{
		Action:  action,
		Version: Version,
		Params:  params,
		Key:     c.apiKey,
	})
	if err != nil {
		return nil, NewBadResponseError(action, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, NewConnectionError(c.endpoint, err)
	}
	req.Header.Set("Content-Type", "application/json")

	c.logger.Debug().
		Str("action", action).
		Str("endpoint", c.endpoint).
		Msg("Sending AnkiConnect request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Debug().
			Err(err).
			Str("action", action).
			Str("endpoint", c.endpoint).
			Msg("AnkiConnect request failed")
		return nil, NewConnectionError(c.endpoint, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, NewConnectionError(c.endpoint, err)
	}

	var parsed response
	if err := json.Unmarshal(data, &parsed); err != nil {
		return nil, NewBadResponseError(action, err)
	}

	if parsed.Error != nil && *parsed.Error != "" {
		c.logger.Debug().
			Str("action", action).
			Str("remote_error", *parsed.Error).
			Msg("AnkiConnect reported an error")
		return nil, NewRemoteError(action, *parsed.Error)
	}

	return parsed.Result, nil
}

// DeckNames returns the names of all decks in the collection.
func (c *Client) DeckNames(ctx context.Context) ([]string, error) {
	result, err := c.Invoke(ctx, "deckNames", nil)
	if err != nil {
		return nil, err
	}

	var names []string
	if err := json.Unmarshal(result, &names); err != nil {
		return nil, NewBadResponseError("deckNames", err)
	}
	return names, nil
}

// ModelNames returns the names of all note types in the collection.
func (c *Client) ModelNames(ctx context.Context) ([]string, error) {
	result, err := c.Invoke(ctx, "modelNames", nil)
	if err != nil {
		return nil, err
	}

	var names []string
	if err := json.Unmarshal(result, &names); err != nil {
		return nil, NewBadResponseError("modelNames", err)
	}
	return names, nil
}

// CreateDeck creates a new deck with the given name.
func (c *Client) CreateDeck(ctx context.Context, deck string) error {
	_, err := c.Invoke(ctx, "createDeck", map[string]any{"deck": deck})
	return err
}

// Note describes a note to be added to the collection.
type Note struct {
	DeckName  string            `json:"deckName"`
	ModelName string            `json:"modelName"`
	Fields    map[string]string `json:"fields"`
	Tags      []string          `json:"tags"`
}

// AddNote adds a note and returns the new note ID. A zero ID with a nil
// error means AnkiConnect accepted the request but returned no identifier.
func (c *Client) AddNote(ctx context.Context, note Note) (int64, error) {
	result, err := c.Invoke(ctx, "addNote", map[string]any{"note": note})
	if err != nil {
		return 0, err
	}

	var noteID *int64
	if err := json.Unmarshal(result, &noteID); err != nil {
		return 0, NewBadResponseError("addNote", err)
	}
	if noteID == nil {
		return 0, nil
	}
	return *noteID, nil
}

// FindCards returns the IDs of cards matching the given search query.
func (c *Client) FindCards(ctx context.Context, query string) ([]int64, error) {
	result, err := c.Invoke(ctx, "findCards", map[string]any{"query": query})
	if err != nil {
		return nil, err
	}

	var ids []int64
	if err := json.Unmarshal(result, &ids); err != nil {
		return nil, NewBadResponseError("findCards", err)
	}
	return ids, nil
}

// FindNotes returns the IDs of notes matching the given search query.
func (c *Client) FindNotes(ctx context.Context, query string) ([]int64, error) {
	result, err := c.Invoke(ctx, "findNotes", map[string]any{"query": query})
	if err != nil {
		return nil, err
	}

	var ids []int64
	if err := json.Unmarshal(result, &ids); err != nil {
		return nil, NewBadResponseError("findNotes", err)
	}
	return ids, nil
}
