package db

// DatabaseProvider is the key-value surface the audit chain persists to.
// The chain is append-only, so there is no delete: keys are written once
// and then only read.
type DatabaseProvider interface {
	// Get retrieves a value by key. A missing key yields (nil, nil).
	Get(key []byte) ([]byte, error)

	// GetBatch fetches several keys at once. Missing keys are absent from
	// the result map, which is keyed by string(key).
	GetBatch(keys [][]byte) (map[string][]byte, error)

	// Put stores a key-value pair
	Put(key, value []byte) error

	Has(key []byte) (bool, error)

	// CountPrefix returns how many keys start with prefix.
	CountPrefix(prefix []byte) (uint64, error)

	Close() error

	// Batch returns a write group applied atomically by Write.
	Batch() DatabaseBatch
}

// DatabaseBatch collects puts that are committed together.
type DatabaseBatch interface {
	Put(key, value []byte)

	// Len returns the number of queued puts.
	Len() int

	// Write commits every queued put, or none of them.
	Write() error

	// Reset drops the queued puts
	Reset()

	// Close releases batch resources
	Close() error
}
