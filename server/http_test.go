package server

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/thisisjofrank/LLM-GM-Practice/ai"
	"github.com/thisisjofrank/LLM-GM-Practice/domain"
	"github.com/thisisjofrank/LLM-GM-Practice/observability"
	"github.com/thisisjofrank/LLM-GM-Practice/runtime"
	"github.com/thisisjofrank/LLM-GM-Practice/services"
)

type testCounts struct {
	registry *runtime.Registry
	notifier *runtime.Notifier
}

func (c testCounts) Count() int       { return c.registry.Count() }
func (c testCounts) ActiveGames() int { return len(c.registry.ActiveGames()) }
func (c testCounts) Subscribers() int { return c.notifier.SubscriberCount() }

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	req := require.New(t)

	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	canned, err := ai.NewCanned(42)
	req.NoError(err)
	resilient := ai.NewResilient(log, "canned", nil, canned)

	registry := runtime.NewRegistry()
	core := runtime.NewCore(log, registry, resilient)
	notifier := runtime.NewNotifier(log, 32)
	games := services.NewGameService(core, notifier)

	monitor, err := observability.NewMonitor(log, testCounts{registry: registry, notifier: notifier})
	req.NoError(err)

	ts := httptest.NewServer(New(log, games, resilient, monitor, 0).Routes())
	t.Cleanup(ts.Close)
	return ts
}

func postJSON(t *testing.T, url string, payload any) *http.Response {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)
	resp, err := http.Post(url, "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func startGame(t *testing.T, ts *httptest.Server, specs []domain.CharacterSpec) string {
	t.Helper()
	resp := postJSON(t, ts.URL+"/api/game/start", map[string]any{
		"gmPrompt":   "You stand at the mouth of a dark cave.",
		"characters": specs,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	started := decode[map[string]string](t, resp)
	require.NotEmpty(t, started["gameId"])
	return started["gameId"]
}

func soloParty() []domain.CharacterSpec {
	return []domain.CharacterSpec{{Name: "Finn", Class: "Rogue", Personality: "Quick-witted"}}
}

func TestServer_Start_Then_Status(t *testing.T) {
	req := require.New(t)
	ts := newTestServer(t)

	// Given a started game with a single character
	gameID := startGame(t, ts, soloParty())

	// When the status is fetched
	resp, err := http.Get(fmt.Sprintf("%s/api/game/status?gameId=%s", ts.URL, gameID))
	req.NoError(err)
	req.Equal(http.StatusOK, resp.StatusCode)
	snapshot := decode[domain.Snapshot](t, resp)

	// Then the log holds the opening prompt and the introduction
	req.Equal(gameID, snapshot.ID)
	req.True(snapshot.Active)
	req.Zero(snapshot.CurrentTurn)
	req.Len(snapshot.Messages, 2)
	req.Equal(domain.GMSpeaker, snapshot.Messages[0].Speaker)
	req.Equal("Finn", snapshot.Messages[1].Speaker)
	req.Len(snapshot.Characters, 1)
}

func TestServer_Prompt_Returns_Refreshed_Snapshot(t *testing.T) {
	req := require.New(t)
	ts := newTestServer(t)
	gameID := startGame(t, ts, soloParty())

	resp := postJSON(t, ts.URL+"/api/game/prompt", map[string]string{
		"gameId": gameID,
		"prompt": "Goblins attack from the shadows!",
	})

	req.Equal(http.StatusOK, resp.StatusCode)
	snapshot := decode[domain.Snapshot](t, resp)
	req.Equal(1, snapshot.CurrentTurn)
	req.Len(snapshot.Messages, 4)
	req.Equal(domain.KindGM, snapshot.Messages[2].Kind)
	req.Equal(domain.KindCharacter, snapshot.Messages[3].Kind)
}

func TestServer_Start_With_Preset_Shortcuts(t *testing.T) {
	req := require.New(t)
	ts := newTestServer(t)

	resp := postJSON(t, ts.URL+"/api/game/start", map[string]string{
		"party":    "default",
		"scenario": "classic",
	})

	req.Equal(http.StatusOK, resp.StatusCode)
	started := decode[map[string]string](t, resp)
	req.NotEmpty(started["gameId"])
}

func TestServer_Start_Rejects_Unknown_Preset(t *testing.T) {
	req := require.New(t)
	ts := newTestServer(t)

	resp := postJSON(t, ts.URL+"/api/game/start", map[string]string{
		"party":    "nonexistent",
		"scenario": "classic",
	})

	req.Equal(http.StatusBadRequest, resp.StatusCode)
	body := decode[map[string]string](t, resp)
	req.Contains(body["error"], "nonexistent")
}

func TestServer_Start_Rejects_Bad_Input(t *testing.T) {
	req := require.New(t)
	ts := newTestServer(t)

	// Empty opening prompt
	resp := postJSON(t, ts.URL+"/api/game/start", map[string]any{
		"gmPrompt":   "   ",
		"characters": soloParty(),
	})
	req.Equal(http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()

	// Malformed body
	malformed, err := http.Post(ts.URL+"/api/game/start", "application/json", bytes.NewReader([]byte("{not json")))
	req.NoError(err)
	req.Equal(http.StatusBadRequest, malformed.StatusCode)
	malformed.Body.Close()
}

func TestServer_Unknown_Game_Is_Not_Found(t *testing.T) {
	req := require.New(t)
	ts := newTestServer(t)

	resp := postJSON(t, ts.URL+"/api/game/prompt", map[string]string{
		"gameId": "missing",
		"prompt": "Anyone there?",
	})
	req.Equal(http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()

	status, err := http.Get(ts.URL + "/api/game/status?gameId=missing")
	req.NoError(err)
	req.Equal(http.StatusNotFound, status.StatusCode)
	status.Body.Close()
}

func TestServer_End_Then_Prompt_Conflicts(t *testing.T) {
	req := require.New(t)
	ts := newTestServer(t)
	gameID := startGame(t, ts, soloParty())

	resp := postJSON(t, ts.URL+"/api/game/end", map[string]string{"gameId": gameID})
	req.Equal(http.StatusNoContent, resp.StatusCode)
	resp.Body.Close()

	after := postJSON(t, ts.URL+"/api/game/prompt", map[string]string{
		"gameId": gameID,
		"prompt": "One more thing...",
	})
	req.Equal(http.StatusConflict, after.StatusCode)
	after.Body.Close()
}

func TestServer_Status_Requires_GameID(t *testing.T) {
	req := require.New(t)
	ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/api/game/status")
	req.NoError(err)
	req.Equal(http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
}

func TestServer_LLM_Status_Reports_Provider(t *testing.T) {
	req := require.New(t)
	ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/api/llm/status")
	req.NoError(err)
	req.Equal(http.StatusOK, resp.StatusCode)
	status := decode[ai.Status](t, resp)
	req.Equal("canned", status.Provider)
	req.False(status.Available)
}

func TestServer_Presets_Catalog(t *testing.T) {
	req := require.New(t)
	ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/api/presets")
	req.NoError(err)
	req.Equal(http.StatusOK, resp.StatusCode)
	catalog := decode[map[string]json.RawMessage](t, resp)
	req.Contains(catalog, "parties")
	req.Contains(catalog, "scenarios")
}

func TestServer_Events_Stream_Delivers_Turn_Messages(t *testing.T) {
	req := require.New(t)
	ts := newTestServer(t)
	gameID := startGame(t, ts, soloParty())

	resp, err := http.Get(fmt.Sprintf("%s/api/game/events?gameId=%s", ts.URL, gameID))
	req.NoError(err)
	defer resp.Body.Close()
	req.Equal("text/event-stream", resp.Header.Get("Content-Type"))

	prompt := postJSON(t, ts.URL+"/api/game/prompt", map[string]string{
		"gameId": gameID,
		"prompt": "The goblins attack!",
	})
	req.Equal(http.StatusOK, prompt.StatusCode)
	prompt.Body.Close()

	// One character in the party means one streamed event for the turn.
	reader := bufio.NewReader(resp.Body)
	event, err := reader.ReadString('\n')
	req.NoError(err)
	req.Equal("event: character_response\n", event)

	data, err := reader.ReadString('\n')
	req.NoError(err)
	var msg domain.Message
	req.NoError(json.Unmarshal([]byte(data[len("data: "):]), &msg))
	req.Equal("Finn", msg.Speaker)
	req.Equal(domain.KindCharacter, msg.Kind)
}

func TestServer_Events_Rejects_Unknown_Game(t *testing.T) {
	req := require.New(t)
	ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/api/game/events?gameId=missing")
	req.NoError(err)
	req.Equal(http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}
