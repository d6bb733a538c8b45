package arena

import (
	"context"
	"log"
	"time"

	"github.com/CrwnG/DndProyect-sub001/internal/domain/combat"
	dnderr "github.com/CrwnG/DndProyect-sub001/internal/errors"
	"github.com/gorilla/websocket"
)

// SnapshotHandler receives each state delta pushed by the server
type SnapshotHandler func(snapshot *combat.StateSnapshot)

// StateStream subscribes to the arena's websocket feed of combat-state
// deltas. Pushed snapshots cover changes the move pipeline did not cause
// itself (other players' turns, DM adjustments).
type StateStream struct {
	url     string
	handler SnapshotHandler
}

// StateStreamConfig holds configuration for a StateStream
type StateStreamConfig struct {
	// URL is the websocket endpoint, e.g. ws://localhost:8080/combats/abc/stream
	URL string

	// Handler receives every decoded snapshot
	Handler SnapshotHandler
}

// NewStateStream creates a state stream subscriber
func NewStateStream(cfg *StateStreamConfig) (*StateStream, error) {
	if cfg == nil || cfg.URL == "" {
		return nil, dnderr.InvalidArgument("stream URL is required")
	}
	if cfg.Handler == nil {
		return nil, dnderr.InvalidArgument("snapshot handler is required")
	}

	return &StateStream{url: cfg.URL, handler: cfg.Handler}, nil
}

// Run connects and reads snapshots until ctx is done, reconnecting with
// a flat backoff when the connection drops
func (s *StateStream) Run(ctx context.Context) error {
	const reconnectDelay = 3 * time.Second

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		if err := s.readLoop(ctx); err != nil {
			log.Printf("StateStream: connection lost: %v", err)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(reconnectDelay):
		}
	}
}

func (s *StateStream) readLoop(ctx context.Context) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, s.url, nil)
	if err != nil {
		return dnderr.WrapWithCode(err, dnderr.CodeUnavailable, "failed to dial arena stream")
	}
	defer func() { _ = conn.Close() }()

	log.Printf("StateStream: connected to %s", s.url)

	// Unblock ReadJSON when the context ends.
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			_ = conn.Close()
		case <-done:
		}
	}()

	for {
		var snapshot combat.StateSnapshot
		if err := conn.ReadJSON(&snapshot); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return dnderr.Wrap(err, "failed to read snapshot")
		}
		s.handler(&snapshot)
	}
}
