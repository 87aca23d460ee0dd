package runtime

import (
	"log/slog"
	"sync"

	"github.com/thisisjofrank/LLM-GM-Practice/domain"
)

// Notifier broadcasts each newly produced character message to the
// subscribers of its game, in log order.
//
// It provides best-effort fan-out with no guarantees regarding delivery,
// durability, or retries. A subscriber that cannot keep up loses
// messages rather than stalling the turn; the log remains the source of
// truth and can always be re-read through a status query.
//
// Notifier is safe for concurrent use by multiple goroutines.
type Notifier struct {
	log    *slog.Logger
	buffer int

	mu          sync.RWMutex
	subscribers map[string]map[chan domain.Message]struct{}
}

func NewNotifier(log *slog.Logger, buffer int) *Notifier {
	return &Notifier{
		log:         log,
		buffer:      buffer,
		subscribers: make(map[string]map[chan domain.Message]struct{}),
	}
}

// Subscribe registers interest in a game's character messages. The
// returned cancel func must be called when the caller stops listening;
// abandoning a subscription never disturbs an in-flight turn, which
// completes server-side regardless.
func (n *Notifier) Subscribe(gameID string) (<-chan domain.Message, func()) {
	ch := make(chan domain.Message, n.buffer)

	n.mu.Lock()
	if _, ok := n.subscribers[gameID]; !ok {
		n.subscribers[gameID] = make(map[chan domain.Message]struct{})
	}
	n.subscribers[gameID][ch] = struct{}{}
	n.mu.Unlock()

	cancel := func() {
		n.mu.Lock()
		if subs, ok := n.subscribers[gameID]; ok {
			delete(subs, ch)
			// No empty sets left behind once the last listener leaves.
			if len(subs) == 0 {
				delete(n.subscribers, gameID)
			}
		}
		n.mu.Unlock()
	}
	return ch, cancel
}

// Publish fans the turn's messages out to every subscriber of the game,
// preserving order per subscriber. Full channels drop.
func (n *Notifier) Publish(gameID string, messages []domain.Message) {
	n.mu.RLock()
	defer n.mu.RUnlock()

	for ch := range n.subscribers[gameID] {
		for _, msg := range messages {
			select {
			case ch <- msg:
			default:
				n.log.Debug("Subscriber too slow, dropping message", "game", gameID, "speaker", msg.Speaker)
			}
		}
	}
}

// SubscriberCount is exposed for monitoring.
func (n *Notifier) SubscriberCount() int {
	n.mu.RLock()
	defer n.mu.RUnlock()

	count := 0
	for _, subs := range n.subscribers {
		count += len(subs)
	}
	return count
}
