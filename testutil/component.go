package testutil

import (
	"context"

	"github.com/kbukum/restclient/component"
)

// TestComponent is a component with test-only state controls.
type TestComponent interface {
	component.Component

	// Reset returns the component to the state it had after Start.
	Reset(ctx context.Context) error

	// Snapshot captures state that Restore can later return to.
	Snapshot(ctx context.Context) (interface{}, error)

	// Restore returns to a state captured by Snapshot.
	Restore(ctx context.Context, snapshot interface{}) error
}
