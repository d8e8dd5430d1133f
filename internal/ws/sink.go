package ws

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/veldkamp-software/passfoto/internal/pipeline"
)

// HubSink streams pipeline events to the websocket session a photo was
// uploaded under. The upload handler binds the photo ID to a session before
// validation starts and unbinds it afterwards; events for unbound photos are
// dropped.
type HubSink struct {
	hub      *Hub
	mu       sync.RWMutex
	sessions map[string]uuid.UUID
}

func NewHubSink(hub *Hub) *HubSink {
	return &HubSink{
		hub:      hub,
		sessions: make(map[string]uuid.UUID),
	}
}

func (s *HubSink) Bind(photoID string, sessionID uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[photoID] = sessionID
}

func (s *HubSink) Unbind(photoID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, photoID)
}

func (s *HubSink) Notify(ctx context.Context, event pipeline.Event) error {
	s.mu.RLock()
	sessionID, ok := s.sessions[event.PhotoID]
	s.mu.RUnlock()
	if !ok {
		return nil
	}

	s.hub.BroadcastToSession(sessionID, EventType(event.Type), event)
	return nil
}

var _ pipeline.Sink = (*HubSink)(nil)
