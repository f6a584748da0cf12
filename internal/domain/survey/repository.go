package survey

import "context"

// Repository provides access to the backing survey response table.
// The aggregation layer buffers the full record set before grouping,
// so reads return complete snapshots rather than cursors.
type Repository interface {
	// ListAll returns every survey response as an immutable snapshot.
	ListAll(ctx context.Context) ([]Record, error)

	// CountAll returns the total number of survey responses.
	CountAll(ctx context.Context) (int, error)
}
