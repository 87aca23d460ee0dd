// Package server exposes the game over HTTP/JSON plus a server-sent
// event stream for live character messages. The turn core knows nothing
// about any of this; the server is a host shell around GameService.
package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"net/http"
	"time"

	"github.com/thisisjofrank/LLM-GM-Practice/ai"
	"github.com/thisisjofrank/LLM-GM-Practice/domain"
	gmerrors "github.com/thisisjofrank/LLM-GM-Practice/errors"
	"github.com/thisisjofrank/LLM-GM-Practice/observability"
	"github.com/thisisjofrank/LLM-GM-Practice/presets"
	"github.com/thisisjofrank/LLM-GM-Practice/services"
)

// LLMStatus is the slice of the responder stack the server reports on.
type LLMStatus interface {
	Status() ai.Status
}

type Server struct {
	log     *slog.Logger
	games   services.IGameService
	llm     LLMStatus
	monitor *observability.Monitor
	pacing  time.Duration
	rng     *rand.Rand
}

// New assembles the handler set. pacing spaces out streamed character
// messages; zero disables it (useful in tests).
func New(log *slog.Logger, games services.IGameService, llm LLMStatus, monitor *observability.Monitor, pacing time.Duration) *Server {
	return &Server{
		log:     log,
		games:   games,
		llm:     llm,
		monitor: monitor,
		pacing:  pacing,
		rng:     rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (s *Server) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/game/start", s.handleStart)
	mux.HandleFunc("GET /api/game/status", s.handleStatus)
	mux.HandleFunc("POST /api/game/prompt", s.handlePrompt)
	mux.HandleFunc("POST /api/game/end", s.handleEnd)
	mux.HandleFunc("GET /api/game/events", s.handleEvents)
	mux.HandleFunc("GET /api/llm/status", s.handleLLMStatus)
	mux.HandleFunc("GET /api/presets", s.handlePresets)
	mux.HandleFunc("GET /api/monitoring", s.handleMonitoring)
	return mux
}

type startRequest struct {
	GMPrompt   string                 `json:"gmPrompt"`
	Characters []domain.CharacterSpec `json:"characters"`

	// Optional shortcuts into the preset catalog, honored when the
	// explicit fields above are empty.
	Party    string `json:"party,omitempty"`
	Scenario string `json:"scenario,omitempty"`
}

func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	var req startRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}

	if len(req.Characters) == 0 && req.Party != "" {
		specs, ok := presets.Party(req.Party)
		if !ok {
			s.writeError(w, http.StatusBadRequest, fmt.Errorf("unknown party preset %q", req.Party))
			return
		}
		req.Characters = specs
	}
	if req.GMPrompt == "" && req.Scenario != "" {
		scenario, ok := presets.RandomScenario(s.rng, req.Scenario)
		if !ok {
			s.writeError(w, http.StatusBadRequest, fmt.Errorf("unknown scenario tone %q", req.Scenario))
			return
		}
		req.GMPrompt = scenario
	}

	gameID, err := s.games.StartGame(r.Context(), req.GMPrompt, req.Characters)
	if err != nil {
		s.writeError(w, statusFor(err), err)
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]string{"gameId": gameID})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	gameID := r.URL.Query().Get("gameId")
	if gameID == "" {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("missing gameId"))
		return
	}

	snapshot, err := s.games.GameStatus(gameID)
	if err != nil {
		s.writeError(w, statusFor(err), err)
		return
	}
	s.writeJSON(w, http.StatusOK, snapshot)
}

type promptRequest struct {
	GameID string `json:"gameId"`
	Prompt string `json:"prompt"`
}

// handlePrompt resolves one full turn, then answers with the refreshed
// game state so plain HTTP clients need no second round trip.
func (s *Server) handlePrompt(w http.ResponseWriter, r *http.Request) {
	var req promptRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}
	if req.GameID == "" {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("missing gameId"))
		return
	}

	if err := s.games.SubmitPrompt(r.Context(), req.GameID, req.Prompt); err != nil {
		s.writeError(w, statusFor(err), err)
		return
	}

	snapshot, err := s.games.GameStatus(req.GameID)
	if err != nil {
		s.writeError(w, statusFor(err), err)
		return
	}
	s.writeJSON(w, http.StatusOK, snapshot)
}

type endRequest struct {
	GameID string `json:"gameId"`
}

func (s *Server) handleEnd(w http.ResponseWriter, r *http.Request) {
	var req endRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.GameID == "" {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("missing gameId"))
		return
	}

	s.games.EndGame(req.GameID)
	w.WriteHeader(http.StatusNoContent)
}

// handleEvents streams each new character message of a game as one SSE
// event, in log order, paced for readability. The client going away
// just cancels the watch; any turn in flight completes server-side.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	gameID := r.URL.Query().Get("gameId")
	if gameID == "" {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("missing gameId"))
		return
	}
	if _, err := s.games.GameStatus(gameID); err != nil {
		s.writeError(w, statusFor(err), err)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		s.writeError(w, http.StatusInternalServerError, fmt.Errorf("streaming unsupported"))
		return
	}

	// Subscribe before the headers go out so a prompt submitted right
	// after the stream opens cannot slip past the watch.
	messages, cancel := s.games.Watch(gameID)
	defer cancel()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case msg := <-messages:
			payload, err := json.Marshal(msg)
			if err != nil {
				s.log.Error("Failed to encode stream message", "game", gameID, "err", err)
				continue
			}
			fmt.Fprintf(w, "event: character_response\ndata: %s\n\n", payload)
			flusher.Flush()

			// Pacing between messages is purely presentational.
			if s.pacing > 0 {
				select {
				case <-r.Context().Done():
					return
				case <-time.After(s.pacing):
				}
			}
		}
	}
}

func (s *Server) handleLLMStatus(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, s.llm.Status())
}

func (s *Server) handlePresets(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{
		"parties":   presets.Parties,
		"scenarios": presets.Scenarios,
	})
}

func (s *Server) handleMonitoring(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, s.monitor.Collect())
}

// statusFor maps domain failures onto HTTP codes. Anything unmapped is
// a malformed request: the turn core never leaks internal errors.
func statusFor(err error) int {
	switch {
	case errors.Is(err, gmerrors.ErrGameNotFound):
		return http.StatusNotFound
	case errors.Is(err, gmerrors.ErrGameEnded):
		return http.StatusConflict
	default:
		return http.StatusBadRequest
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.log.Error("Failed to encode response", "err", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, err error) {
	s.log.Warn("Request failed", "status", status, "err", err)
	s.writeJSON(w, status, map[string]string{"error": err.Error()})
}
