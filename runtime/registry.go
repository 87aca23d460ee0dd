// Package runtime owns turn resolution: which characters answer a GM
// prompt, in what order, with what shared context, and how a single
// failed generation is contained. It orchestrates the domain without
// holding business rules of its own.
package runtime

import (
	"sync"

	"github.com/thisisjofrank/LLM-GM-Practice/domain"
)

// gameHandle pairs a game with the mutex that serialises its turns.
// Holding the mutex across a whole turn is what guarantees two
// concurrent prompts on the same game can never interleave appends.
type gameHandle struct {
	mu   sync.Mutex
	game *domain.Game
}

// Registry maps game ids to their handles. It is an explicitly
// constructed instance, never a package-level singleton, and is safe
// for concurrent lookups. Games it hands out lock independently, so
// unrelated games never wait on each other.
type Registry struct {
	mu    sync.RWMutex
	games map[string]*gameHandle
}

func NewRegistry() *Registry {
	return &Registry{games: make(map[string]*gameHandle)}
}

func (r *Registry) add(game *domain.Game) *gameHandle {
	r.mu.Lock()
	defer r.mu.Unlock()

	handle := &gameHandle{game: game}
	r.games[game.ID] = handle
	return handle
}

func (r *Registry) get(id string) (*gameHandle, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	handle, ok := r.games[id]
	return handle, ok
}

// ActiveGames snapshots every game still accepting prompts.
func (r *Registry) ActiveGames() []domain.Snapshot {
	r.mu.RLock()
	handles := make([]*gameHandle, 0, len(r.games))
	for _, handle := range r.games {
		handles = append(handles, handle)
	}
	r.mu.RUnlock()

	var active []domain.Snapshot
	for _, handle := range handles {
		handle.mu.Lock()
		if handle.game.Active {
			active = append(active, handle.game.Snapshot())
		}
		handle.mu.Unlock()
	}
	return active
}

// Count reports how many games the registry tracks, active or not.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.games)
}
