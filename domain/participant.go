// Package domain contains core concepts of the game chat.
// This file defines Participant entities and their bounded memory.
// No runtime, network, or UI logic should be added here.
package domain

import (
	"context"
	"fmt"
	"strings"
)

//go:generate go run go.uber.org/mock/mockgen -source=participant.go -destination=../mocks/mock_responder.go -package=mocks

// Responder is the injected text-generation capability. Implementations
// may be slow and may fail; callers decide what a failure means.
type Responder interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

const (
	// memoryCap is the number of memory entries that triggers eviction.
	memoryCap = 10
	// memoryTail is the number of most recent entries kept after eviction.
	memoryTail = 8
)

// MemoryEntry is one compact record of a past exchange: what the
// participant was asked (summarised) and what it answered.
type MemoryEntry struct {
	Prompt string
	Output string
}

// Participant is one AI-driven actor. It is exclusively owned by its
// game: the core serialises all calls, so no internal locking is needed.
type Participant struct {
	Name        string
	Class       string
	Personality string

	responder Responder
	memory    []MemoryEntry
}

// NewParticipant binds an actor to the shared responder capability.
func NewParticipant(name, class, personality string, responder Responder) *Participant {
	return &Participant{
		Name:        name,
		Class:       class,
		Personality: personality,
		responder:   responder,
	}
}

// GenerateIntroduction produces the participant's opening line for a
// scenario. It records the exchange in memory and touches no state
// shared with other participants.
func (p *Participant) GenerateIntroduction(ctx context.Context, scenario string) (string, error) {
	prompt := p.systemPrompt() + fmt.Sprintf(`

SCENARIO: %s

Generate a brief introduction for your character. Stay in character and introduce yourself to the party. Keep it concise (2-3 sentences).`, scenario)

	response, err := p.responder.Generate(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("introduction for %s: %w", p.Name, err)
	}

	p.remember(MemoryEntry{Prompt: "Introduction", Output: response})
	return response, nil
}

// GenerateResponse produces one in-character action for the current turn.
// recentContext is the shared tail of the game log; partyActions are the
// responses teammates already produced this same turn, in order. Failures
// propagate: the turn core owns fallback substitution, not the participant.
func (p *Participant) GenerateResponse(ctx context.Context, gmPrompt, recentContext string, partyActions []string) (string, error) {
	var partyContext string
	if len(partyActions) > 0 {
		partyContext = "\n\nPARTY MEMBERS' RECENT ACTIONS:\n" + strings.Join(partyActions, "\n") + "\n"
	}

	prompt := p.systemPrompt() + fmt.Sprintf(`

RECENT CONVERSATION:
%s%s

GM'S LATEST PROMPT: %s

RESPOND WITH ACTION: As %s the %s, what do you DO in response to this situation?
- State your specific action first (I do X, I attempt Y, I cast Z)
- Use your %s skills and abilities
- COORDINATE with your party members - support, complement, or build upon their actions
- React to what your allies are doing (help them, cover them, follow their lead, etc.)
- Be decisive and take initiative
- Don't duplicate what others are already doing
- Keep your response focused on what you're actively doing

Your coordinated action:`, recentContext, partyContext, gmPrompt, p.Name, p.Class, p.Class)

	response, err := p.responder.Generate(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("response from %s: %w", p.Name, err)
	}

	p.remember(MemoryEntry{Prompt: fmt.Sprintf("Response to %q", gmPrompt), Output: response})
	return response, nil
}

// Memory returns a copy of the retained exchanges, oldest first.
func (p *Participant) Memory() []MemoryEntry {
	out := make([]MemoryEntry, len(p.memory))
	copy(out, p.memory)
	return out
}

// remember appends one exchange and evicts the oldest entries once the
// cap is exceeded, keeping only the most recent tail.
func (p *Participant) remember(entry MemoryEntry) {
	p.memory = append(p.memory, entry)
	if len(p.memory) > memoryCap {
		p.memory = p.memory[len(p.memory)-memoryTail:]
	}
}

// systemPrompt is the fixed identity and coordination framing shared by
// every instruction the participant sends to the responder.
func (p *Participant) systemPrompt() string {
	transcript := make([]string, 0, len(p.memory))
	for _, entry := range p.memory {
		transcript = append(transcript, fmt.Sprintf("%s: %s", entry.Prompt, entry.Output))
	}

	return fmt.Sprintf(`You are %s, a %s in a D&D adventure.

CHARACTER DETAILS:
- Name: %s
- Class: %s
- Personality: %s

CONVERSATION HISTORY:
%s

CRITICAL INSTRUCTIONS - PARTY COORDINATION:
- Always stay in character as %s
- WORK AS A TEAM with your party members
- REACT TO and BUILD UPON what other party members are doing
- COORDINATE your actions - don't duplicate what others are already doing
- Use your %s abilities to complement the team
- Take decisive action that advances the party's goals
- Respond to your allies' needs (healing, protection, assistance, etc.)

TAKE SPECIFIC ACTIONS that show you're working together as a team!`,
		p.Name, p.Class, p.Name, p.Class, p.Personality,
		strings.Join(transcript, "\n"), p.Name, p.Class)
}
