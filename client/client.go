// Package client is a thin HTTP client over the game API, used by the
// terminal GM console and by integration tests.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/thisisjofrank/LLM-GM-Practice/ai"
	"github.com/thisisjofrank/LLM-GM-Practice/domain"
)

type Client struct {
	baseURL string
	http    *http.Client
}

func New(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		// Turns fan out over a slow LLM sequentially; allow for a full
		// party's worth of generation latency.
		http: &http.Client{Timeout: 2 * time.Minute},
	}
}

type startRequest struct {
	GMPrompt   string                 `json:"gmPrompt"`
	Characters []domain.CharacterSpec `json:"characters,omitempty"`
	Party      string                 `json:"party,omitempty"`
	Scenario   string                 `json:"scenario,omitempty"`
}

type startResponse struct {
	GameID string `json:"gameId"`
}

func (c *Client) StartGame(ctx context.Context, gmPrompt string, specs []domain.CharacterSpec) (string, error) {
	return c.start(ctx, startRequest{GMPrompt: gmPrompt, Characters: specs})
}

// StartPreset starts a game from catalog entries instead of explicit
// character sheets.
func (c *Client) StartPreset(ctx context.Context, party, scenario string) (string, error) {
	return c.start(ctx, startRequest{Party: party, Scenario: scenario})
}

func (c *Client) start(ctx context.Context, req startRequest) (string, error) {
	var resp startResponse
	if err := c.post(ctx, "/api/game/start", req, &resp); err != nil {
		return "", err
	}
	return resp.GameID, nil
}

func (c *Client) SubmitPrompt(ctx context.Context, gameID, prompt string) (domain.Snapshot, error) {
	var snapshot domain.Snapshot
	err := c.post(ctx, "/api/game/prompt", map[string]string{"gameId": gameID, "prompt": prompt}, &snapshot)
	return snapshot, err
}

func (c *Client) GameStatus(ctx context.Context, gameID string) (domain.Snapshot, error) {
	var snapshot domain.Snapshot
	err := c.get(ctx, "/api/game/status?gameId="+url.QueryEscape(gameID), &snapshot)
	return snapshot, err
}

func (c *Client) EndGame(ctx context.Context, gameID string) error {
	return c.post(ctx, "/api/game/end", map[string]string{"gameId": gameID}, nil)
}

func (c *Client) LLMStatus(ctx context.Context) (ai.Status, error) {
	var status ai.Status
	err := c.get(ctx, "/api/llm/status", &status)
	return status, err
}

func (c *Client) post(ctx context.Context, path string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("call %s: %w", req.URL.Path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var apiErr struct {
			Error string `json:"error"`
		}
		if decodeErr := json.NewDecoder(resp.Body).Decode(&apiErr); decodeErr == nil && apiErr.Error != "" {
			return fmt.Errorf("%s: %s (status %d)", req.URL.Path, apiErr.Error, resp.StatusCode)
		}
		return fmt.Errorf("%s: unexpected status %d", req.URL.Path, resp.StatusCode)
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
