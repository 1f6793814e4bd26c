package http

import (
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/aretw0/formwork/internal/logging"
	"github.com/aretw0/formwork/pkg/designer"
	"github.com/aretw0/formwork/pkg/domain"
)

// StreamManager fans document diffs out to SSE subscribers of each form.
type StreamManager struct {
	mu          sync.RWMutex
	subscribers map[string]map[chan string]struct{} // form ID -> set of channels
	logger      *slog.Logger
}

// NewStreamManager creates an empty StreamManager.
func NewStreamManager(logger *slog.Logger) *StreamManager {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &StreamManager{
		subscribers: make(map[string]map[chan string]struct{}),
		logger:      logger,
	}
}

// Subscribe registers a buffered channel for formID. The returned func unregisters and closes it.
func (sm *StreamManager) Subscribe(formID string) (<-chan string, func()) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	ch := make(chan string, 16)
	if _, ok := sm.subscribers[formID]; !ok {
		sm.subscribers[formID] = make(map[chan string]struct{})
	}
	sm.subscribers[formID][ch] = struct{}{}

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			sm.mu.Lock()
			defer sm.mu.Unlock()
			if subs, ok := sm.subscribers[formID]; ok {
				delete(subs, ch)
				close(ch)
				if len(subs) == 0 {
					delete(sm.subscribers, formID)
				}
			}
		})
	}
}

// Subscribers returns the number of open streams for formID.
func (sm *StreamManager) Subscribers(formID string) int {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return len(sm.subscribers[formID])
}

// Broadcast sends msg to every subscriber of formID. Slow clients drop messages.
func (sm *StreamManager) Broadcast(formID string, msg string) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	for ch := range sm.subscribers[formID] {
		select {
		case ch <- msg:
		default:
			sm.logger.Warn("SSE: Client buffer full, dropping message", "form_id", formID)
		}
	}
}

// Publish is a session.Listener: it broadcasts the diff of every change that touched the document.
func (sm *StreamManager) Publish(formID string, c designer.Change) {
	diff := domain.Diff(formID, &c.Previous, &c.Current)
	if diff == nil {
		return
	}
	diff.Command = c.Command
	data, err := json.Marshal(diff)
	if err != nil {
		sm.logger.Error("SSE: failed to encode diff", "form_id", formID, "err", err)
		return
	}
	sm.Broadcast(formID, string(data))
}
