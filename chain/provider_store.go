package chain

import (
	"encoding/binary"
	"fmt"
	"strconv"
	"sync"

	"github.com/jonafarm/market/db"
	"github.com/jonafarm/market/jsonx"
)

// Declare database key prefix for chain objects
const (
	PrefixBlock        = "chain:blk:"
	PrefixBlockMeta    = "chain:blk_meta:"
	BlockMetaKeyLength = "length"
)

// ProviderStore keeps one key per block on a key-value DatabaseProvider.
// The block and the new chain length are written in one batch, so a failed
// append leaves the previous chain untouched.
type ProviderStore struct {
	provider db.DatabaseProvider
	txm      *db.DBTxManager
	source   string
	mu       sync.RWMutex
}

// NewProviderStore creates a chain store on provider. source names the
// backend in error messages.
func NewProviderStore(provider db.DatabaseProvider, source string) (*ProviderStore, error) {
	if provider == nil {
		return nil, fmt.Errorf("provider cannot be nil")
	}
	return &ProviderStore{
		provider: provider,
		txm:      db.NewDBTxManager(provider),
		source:   source,
	}, nil
}

func indexToBlockKey(index uint64) []byte {
	key := make([]byte, len(PrefixBlock)+8)
	copy(key, PrefixBlock)
	binary.BigEndian.PutUint64(key[len(PrefixBlock):], index)
	return key
}

func lengthKey() []byte {
	return []byte(PrefixBlockMeta + BlockMetaKeyLength)
}

func (s *ProviderStore) length() (uint64, error) {
	value, err := s.provider.Get(lengthKey())
	if err != nil {
		return 0, err
	}
	if value == nil {
		return 0, nil
	}
	n, err := strconv.ParseUint(string(value), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid chain length %q: %w", value, err)
	}
	return n, nil
}

func (s *ProviderStore) Load() ([]Block, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.load()
}

func (s *ProviderStore) ReadAll() ([]Block, error) {
	return s.Load()
}

func (s *ProviderStore) load() ([]Block, error) {
	n, err := s.length()
	if err != nil {
		return nil, &StoreReadError{Source: s.source, Err: err}
	}
	stored, err := s.provider.CountPrefix([]byte(PrefixBlock))
	if err != nil {
		return nil, &StoreReadError{Source: s.source, Err: err}
	}
	if stored != n {
		return nil, &StoreReadError{
			Source: s.source,
			Err:    fmt.Errorf("chain length is %d but %d blocks are stored", n, stored),
		}
	}
	if n == 0 {
		return []Block{}, nil
	}

	keys := make([][]byte, n)
	for i := uint64(0); i < n; i++ {
		keys[i] = indexToBlockKey(i + 1)
	}
	values, err := s.provider.GetBatch(keys)
	if err != nil {
		return nil, &StoreReadError{Source: s.source, Err: err}
	}

	blocks := make([]Block, 0, n)
	for i, key := range keys {
		value, ok := values[string(key)]
		if !ok {
			return nil, &StoreReadError{
				Source: s.source,
				Err:    fmt.Errorf("block %d is missing", i+1),
			}
		}
		var blk Block
		if err := jsonx.Unmarshal(value, &blk); err != nil {
			return nil, &StoreReadError{
				Source: s.source,
				Err:    fmt.Errorf("decode block %d: %w", i+1, err),
			}
		}
		blocks = append(blocks, blk)
	}
	return blocks, nil
}

func (s *ProviderStore) Append(blk Block) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, err := s.length()
	if err != nil {
		return &StoreReadError{Source: s.source, Err: err}
	}

	value, err := jsonx.MarshalCanonical(blk)
	if err != nil {
		return &StoreWriteError{Source: s.source, Err: err}
	}

	err = s.txm.WithBatch(fmt.Sprintf("append block %d", n+1), func(batch db.DatabaseBatch) error {
		batch.Put(indexToBlockKey(n+1), value)
		batch.Put(lengthKey(), []byte(strconv.FormatUint(n+1, 10)))
		return nil
	})
	if err != nil {
		return &StoreWriteError{Source: s.source, Err: err}
	}
	return nil
}

func (s *ProviderStore) Close() error {
	return s.provider.Close()
}
