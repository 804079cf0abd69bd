package remote

import "context"

// Nop is the adapter used when cloud sync is disabled. Selected at
// construction time so callers never branch on a sync flag at call time.
type Nop struct{}

func (Nop) Pull(ctx context.Context) bool { return true }
func (Nop) Push(ctx context.Context) bool { return true }
