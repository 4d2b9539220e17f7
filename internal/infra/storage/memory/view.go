package memory

import (
	"context"
	"sync"
)

// ViewRecorder is an occupancy-view stand-in that just counts refreshes.
// Dev mode wires it so refresh plumbing stays observable without a database;
// tests assert on it.
type ViewRecorder struct {
	mu        sync.Mutex
	refreshes int
	// Err, when set, is returned by Refresh to exercise the soft-failure path.
	Err error
}

func (v *ViewRecorder) Refresh(ctx context.Context) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.refreshes++
	return v.Err
}

func (v *ViewRecorder) Refreshes() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.refreshes
}
