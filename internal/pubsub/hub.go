package pubsub

import (
	"sync"

	"github.com/prateeksi/gupshup/internal/events"
)

// Hub is the central container for all domain brokers.
type Hub struct {
	Chat    *Broker[events.ChatEvent]
	Session *Broker[events.SessionEvent]

	done chan struct{}
}

// NewHub creates a new Hub with all domain brokers initialized.
func NewHub() *Hub {
	return &Hub{
		Chat:    NewBroker[events.ChatEvent]("chat"),
		Session: NewBroker[events.SessionEvent]("session"),
		done:    make(chan struct{}),
	}
}

// Shutdown gracefully shuts down all brokers.
func (h *Hub) Shutdown() {
	select {
	case <-h.done:
		return // Already shut down
	default:
		close(h.done)
	}

	var wg sync.WaitGroup
	wg.Add(2)

	go func() { defer wg.Done(); h.Chat.Shutdown() }()
	go func() { defer wg.Done(); h.Session.Shutdown() }()

	wg.Wait()
}

// IsShutdown returns true if the hub has been shut down.
func (h *Hub) IsShutdown() bool {
	select {
	case <-h.done:
		return true
	default:
		return false
	}
}

// Done returns a channel that's closed when the hub is shut down.
func (h *Hub) Done() <-chan struct{} {
	return h.done
}
