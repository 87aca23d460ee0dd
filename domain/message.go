// Package domain contains core concepts of the game chat.
// This file defines Message events and related rules.
// Messages are immutable once appended to a game log.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// GMSpeaker is the reserved speaker identifier for Game Master messages.
const GMSpeaker = "GM"

// MessageKind tags the provenance of a message, not its formatting.
type MessageKind string

const (
	KindGM        MessageKind = "gm"
	KindCharacter MessageKind = "character"
	KindSystem    MessageKind = "system"
)

// Message represents one immutable utterance in a game log.
type Message struct {
	ID        uuid.UUID   `json:"id"`
	Speaker   string      `json:"speaker"`
	Content   string      `json:"message"`
	Kind      MessageKind `json:"type"`
	CreatedAt time.Time   `json:"timestamp"`
}

// NewMessage assigns a fresh identity and timestamp to an utterance.
func NewMessage(speaker, content string, kind MessageKind) Message {
	return Message{
		ID:        uuid.New(),
		Speaker:   speaker,
		Content:   content,
		Kind:      kind,
		CreatedAt: time.Now().UTC(),
	}
}
