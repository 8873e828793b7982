package storage

import "curvescope/internal/model"

// Sink consumes decoded events. Sinks live in the CLI layer; the streaming
// core itself persists nothing.
type Sink interface {
	PutEventBatch(events []model.Event) error
}
