package sweeper

import (
	"context"
)

// Sweeper is a long-running maintenance task of the ledger
type Sweeper interface {
	// Start runs the sweeper until the context is canceled, Stop is called,
	// or, for a one-shot sweeper, the single cycle is done
	Start(ctx context.Context) error

	// Stop gracefully stops the sweeper and waits for in-progress work
	Stop(ctx context.Context) error

	// Name returns the sweeper's name for logging
	Name() string
}
