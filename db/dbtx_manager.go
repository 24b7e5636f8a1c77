package db

import (
	"fmt"

	"github.com/jonafarm/market/logx"
)

// DBTxManager runs a group of writes as one batch against a DatabaseProvider.
type DBTxManager struct {
	provider DatabaseProvider
}

func NewDBTxManager(provider DatabaseProvider) *DBTxManager {
	return &DBTxManager{provider: provider}
}

// WithBatch queues the writes made by fn and commits them together. Nothing
// is written when fn fails or queues no writes. label names the operation
// in errors and logs.
func (tm *DBTxManager) WithBatch(label string, fn func(batch DatabaseBatch) error) error {
	batch := tm.provider.Batch()
	defer func() {
		if err := batch.Close(); err != nil {
			logx.Error("TX_MANAGER", fmt.Sprintf("Failed to close %s batch: %v", label, err))
		}
	}()

	if err := fn(batch); err != nil {
		batch.Reset()
		return fmt.Errorf("%s: %w", label, err)
	}
	if batch.Len() == 0 {
		return nil
	}

	if err := batch.Write(); err != nil {
		return fmt.Errorf("%s: commit %d writes: %w", label, batch.Len(), err)
	}
	logx.Debug("TX_MANAGER", fmt.Sprintf("Committed %s | writes=%d", label, batch.Len()))
	return nil
}
