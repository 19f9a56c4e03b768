// README: Store contract; postgres and in-memory implementations satisfy it.
package rides

import "context"

// Store owns Ride records exclusively. Implementations must serialize
// mutations per record: Mutate holds a single-writer lock on the ride for
// the duration of fn so concurrent updates on the same id cannot interleave.
type Store interface {
	Create(ctx context.Context, r *Ride) error
	Get(ctx context.Context, id string) (*Ride, error)

	// List returns rides matching the filter ordered by scheduled time
	// ascending. The ordering is a contract, not incidental.
	List(ctx context.Context, f Filter) ([]*Ride, error)

	// Mutate loads the ride, applies fn under the record's write lock, and
	// persists the result if fn returns nil. fn errors abort the mutation
	// and are returned verbatim.
	Mutate(ctx context.Context, id string, fn func(*Ride) error) (*Ride, error)
}
