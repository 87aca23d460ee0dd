package errors

import "fmt"

var (
	ErrGameNotFound       = fmt.Errorf("game not found")
	ErrGameEnded          = fmt.Errorf("game is no longer active")
	ErrEmptyPrompt        = fmt.Errorf("prompt must not be empty")
	ErrNoCharacters       = fmt.Errorf("at least one character is required")
	ErrDuplicateCharacter = fmt.Errorf("character names must be unique")
)
