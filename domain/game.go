// Package domain contains core concepts of the game chat.
// This file defines the Game aggregate: roster, log, and turn counter.
package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/samber/lo"

	"github.com/thisisjofrank/LLM-GM-Practice/errors"
)

var validate = validator.New()

// CharacterSpec is the caller-supplied description of one party member.
type CharacterSpec struct {
	Name        string `json:"name" validate:"required"`
	Class       string `json:"class"`
	Personality string `json:"personality"`
}

// ValidateSpecs checks the roster before any game state is created.
// Names must be present and unique; empty rosters are rejected.
func ValidateSpecs(specs []CharacterSpec) error {
	if len(specs) == 0 {
		return errors.ErrNoCharacters
	}
	seen := make(map[string]struct{}, len(specs))
	for _, spec := range specs {
		if err := validate.Struct(spec); err != nil {
			return fmt.Errorf("invalid character spec: %w", err)
		}
		key := strings.ToLower(strings.TrimSpace(spec.Name))
		if _, dup := seen[key]; dup {
			return fmt.Errorf("%w: %s", errors.ErrDuplicateCharacter, spec.Name)
		}
		seen[key] = struct{}{}
	}
	return nil
}

// Game is one narrative instance: a fixed roster, an append-only log,
// and a turn counter. All mutation goes through the runtime core, which
// serialises access per game.
type Game struct {
	ID          string
	Characters  []*Participant
	Messages    []Message
	CurrentTurn int
	Active      bool
	CreatedAt   time.Time
}

// NewGame builds a game with an ACTIVE status and an empty log.
func NewGame(id string, characters []*Participant) *Game {
	return &Game{
		ID:         id,
		Characters: characters,
		Active:     true,
		CreatedAt:  time.Now().UTC(),
	}
}

// Append adds one message to the log. The log is never reordered or
// mutated in place.
func (g *Game) Append(msg Message) {
	g.Messages = append(g.Messages, msg)
}

// RecentContext renders the last count log messages as "speaker: content"
// lines, oldest first. This is the only shared context window.
func (g *Game) RecentContext(count int) string {
	recent := g.Messages
	if len(recent) > count {
		recent = recent[len(recent)-count:]
	}
	lines := lo.Map(recent, func(msg Message, _ int) string {
		return fmt.Sprintf("%s: %s", msg.Speaker, msg.Content)
	})
	return strings.Join(lines, "\n")
}

// CharacterSummary is the read-model view of a participant.
type CharacterSummary struct {
	Name        string `json:"name"`
	Class       string `json:"class"`
	Personality string `json:"personality"`
	MemorySize  int    `json:"memorySize"`
}

// Snapshot is an immutable copy of the game state handed to readers.
// Two snapshots taken with no intervening prompt are identical.
type Snapshot struct {
	ID          string             `json:"id"`
	Characters  []CharacterSummary `json:"characters"`
	Messages    []Message          `json:"messages"`
	CurrentTurn int                `json:"currentTurn"`
	Active      bool               `json:"isActive"`
	CreatedAt   time.Time          `json:"createdAt"`
}

// Snapshot copies the current state. The message slice is duplicated so
// later appends never leak into a snapshot already handed out.
func (g *Game) Snapshot() Snapshot {
	messages := make([]Message, len(g.Messages))
	copy(messages, g.Messages)

	characters := lo.Map(g.Characters, func(p *Participant, _ int) CharacterSummary {
		return CharacterSummary{
			Name:        p.Name,
			Class:       p.Class,
			Personality: p.Personality,
			MemorySize:  len(p.memory),
		}
	})

	return Snapshot{
		ID:          g.ID,
		Characters:  characters,
		Messages:    messages,
		CurrentTurn: g.CurrentTurn,
		Active:      g.Active,
		CreatedAt:   g.CreatedAt,
	}
}
