package ankiconnect

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

// fakeAnkiConnect records incoming requests and replies with canned
// responses keyed by action.
type fakeAnkiConnect struct {
	t         *testing.T
	requests  []map[string]any
	responses map[string]string
}

func (f *fakeAnkiConnect) handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			f.t.Fatalf("Failed to decode request body: %v", err)
		}
		f.requests = append(f.requests, body)

		action, _ := body["action"].(string)
		resp, ok := f.responses[action]
		if !ok {
			resp = `{"result": null, "error": "unexpected action"}`
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(resp))
	}
}

func newTestClient(t *testing.T, fake *fakeAnkiConnect, apiKey string) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(fake.handler())
	t.Cleanup(srv.Close)

	client := NewClient(ClientConfig{
		Endpoint: srv.URL,
		APIKey:   apiKey,
	}, zerolog.Nop())
	return client, srv
}

func TestInvokeEnvelope(t *testing.T) {
	fake := &fakeAnkiConnect{t: t, responses: map[string]string{
		"deckNames": `{"result": ["Default"], "error": null}`,
	}}
	client, _ := newTestClient(t, fake, "")

	_, err := client.Invoke(context.Background(), "deckNames", nil)
	if err != nil {
		t.Fatalf("Invoke failed: %v", err)
	}

	if len(fake.requests) != 1 {
		t.Fatalf("Expected 1 request, got %d", len(fake.requests))
	}
	req := fake.requests[0]

	if req["action"] != "deckNames" {
		t.Errorf("Expected action deckNames, got %v", req["action"])
	}

	if req["version"] != float64(6) {
		t.Errorf("Expected version 6, got %v", req["version"])
	}

	// A nil params must be sent as an empty object
	params, ok := req["params"].(map[string]any)
	if !ok || len(params) != 0 {
		t.Errorf("Expected empty params object, got %v", req["params"])
	}

	// No key field without a configured credential
	if _, present := req["key"]; present {
		t.Error("Expected no key field in request body")
	}
}

func TestInvokeIncludesAPIKey(t *testing.T) {
	fake := &fakeAnkiConnect{t: t, responses: map[string]string{
		"deckNames": `{"result": [], "error": null}`,
	}}
	client, _ := newTestClient(t, fake, "secret-key")

	if _, err := client.Invoke(context.Background(), "deckNames", nil); err != nil {
		t.Fatalf("Invoke failed: %v", err)
	}

	if fake.requests[0]["key"] != "secret-key" {
		t.Errorf("Expected key to be included, got %v", fake.requests[0]["key"])
	}
}

func TestInvokeRemoteError(t *testing.T) {
	fake := &fakeAnkiConnect{t: t, responses: map[string]string{
		"addNote": `{"result": null, "error": "cannot create note because it is a duplicate"}`,
	}}
	client, _ := newTestClient(t, fake, "")

	_, err := client.Invoke(context.Background(), "addNote", map[string]any{})
	if err == nil {
		t.Fatal("Expected an error")
	}

	acErr, ok := err.(*Error)
	if !ok {
		t.Fatalf("Expected *Error, got %T", err)
	}
	if acErr.Code != ErrRemoteFailure {
		t.Errorf("Expected code %s, got %s", ErrRemoteFailure, acErr.Code)
	}
	if IsConnectionError(err) {
		t.Error("Remote error should not be a connection error")
	}
}

func TestInvokeConnectionError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	endpoint := srv.URL
	srv.Close() // nothing is listening anymore

	client := NewClient(ClientConfig{Endpoint: endpoint}, zerolog.Nop())

	_, err := client.Invoke(context.Background(), "deckNames", nil)
	if err == nil {
		t.Fatal("Expected an error")
	}
	if !IsConnectionError(err) {
		t.Errorf("Expected a connection error, got %v", err)
	}
}

func TestDeckNames(t *testing.T) {
	fake := &fakeAnkiConnect{t: t, responses: map[string]string{
		"deckNames": `{"result": ["Default", "English"], "error": null}`,
	}}
	client, _ := newTestClient(t, fake, "")

	decks, err := client.DeckNames(context.Background())
	if err != nil {
		t.Fatalf("DeckNames failed: %v", err)
	}
	if len(decks) != 2 || decks[0] != "Default" || decks[1] != "English" {
		t.Errorf("Unexpected decks: %v", decks)
	}
}

func TestAddNote(t *testing.T) {
	fake := &fakeAnkiConnect{t: t, responses: map[string]string{
		"addNote": `{"result": 1496198395707, "error": null}`,
	}}
	client, _ := newTestClient(t, fake, "")

	note := Note{
		DeckName:  "English",
		ModelName: "Basic",
		Fields:    map[string]string{"Front": "hello", "Back": "こんにちは"},
		Tags:      []string{"vocab"},
	}
	noteID, err := client.AddNote(context.Background(), note)
	if err != nil {
		t.Fatalf("AddNote failed: %v", err)
	}
	if noteID != 1496198395707 {
		t.Errorf("Expected note ID 1496198395707, got %d", noteID)
	}

	params := fake.requests[0]["params"].(map[string]any)
	sent := params["note"].(map[string]any)
	if sent["deckName"] != "English" || sent["modelName"] != "Basic" {
		t.Errorf("Unexpected note payload: %v", sent)
	}
}

func TestAddNoteNullResult(t *testing.T) {
	fake := &fakeAnkiConnect{t: t, responses: map[string]string{
		"addNote": `{"result": null, "error": null}`,
	}}
	client, _ := newTestClient(t, fake, "")

	noteID, err := client.AddNote(context.Background(), Note{})
	if err != nil {
		t.Fatalf("AddNote failed: %v", err)
	}
	if noteID != 0 {
		t.Errorf("Expected zero note ID for null result, got %d", noteID)
	}
}

func TestFindCards(t *testing.T) {
	fake := &fakeAnkiConnect{t: t, responses: map[string]string{
		"findCards": `{"result": [1, 2, 3], "error": null}`,
	}}
	client, _ := newTestClient(t, fake, "")

	ids, err := client.FindCards(context.Background(), `"deck:English"`)
	if err != nil {
		t.Fatalf("FindCards failed: %v", err)
	}
	if len(ids) != 3 {
		t.Errorf("Expected 3 card IDs, got %d", len(ids))
	}

	params := fake.requests[0]["params"].(map[string]any)
	if params["query"] != `"deck:English"` {
		t.Errorf("Expected quoted deck query, got %v", params["query"])
	}
}

func TestObserverCallback(t *testing.T) {
	fake := &fakeAnkiConnect{t: t, responses: map[string]string{
		"deckNames": `{"result": [], "error": null}`,
	}}
	srv := httptest.NewServer(fake.handler())
	defer srv.Close()

	type observation struct {
		action string
		status string
	}
	var observed []observation

	client := NewClient(ClientConfig{
		Endpoint: srv.URL,
		Observer: func(action, status string, elapsed time.Duration) {
			observed = append(observed, observation{action, status})
		},
	}, zerolog.Nop())

	if _, err := client.Invoke(context.Background(), "deckNames", nil); err != nil {
		t.Fatalf("Invoke failed: %v", err)
	}
	_, _ = client.Invoke(context.Background(), "modelNames", nil) // canned error

	if len(observed) != 2 {
		t.Fatalf("Expected 2 observations, got %d", len(observed))
	}
	if observed[0].action != "deckNames" || observed[0].status != "success" {
		t.Errorf("Unexpected first observation: %+v", observed[0])
	}
	if observed[1].action != "modelNames" || observed[1].status != "error" {
		t.Errorf("Unexpected second observation: %+v", observed[1])
	}
}
