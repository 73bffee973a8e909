// Package live publishes record store changes to subscribers whose lifetime is
// bound to a context, typically one open view.
package live

import (
	"context"
	"time"
)

// Ops.
const (
	OpCreate = "create"
	OpSet    = "set"
	OpUpdate = "update"
	OpDelete = "delete"
)

// Change describes one successful write.
type Change struct {
	Collection string    `json:"collection"`
	ID         string    `json:"id"`
	Op         string    `json:"op"`
	At         time.Time `json:"at"`
}

// Broker fans changes out to subscribers of a collection.
type Broker interface {
	Publish(ctx context.Context, c Change) error
	// Subscribe delivers changes for collection until ctx is cancelled, then
	// closes the channel.
	Subscribe(ctx context.Context, collection string) (<-chan Change, error)
}
