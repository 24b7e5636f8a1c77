package chain

import (
	"bytes"
	"fmt"
	"os"
	"sync"

	"github.com/jonafarm/market/jsonx"
	"github.com/jonafarm/market/utils"
)

// Store is the durable, ordered home of the chain. Implementations assume a
// single writer; Builder provides that serialization.
type Store interface {
	// Load returns the persisted chain, or an empty chain when nothing has
	// been persisted yet.
	Load() ([]Block, error)
	// Append durably adds blk to the end of the chain.
	Append(blk Block) error
	// ReadAll has the semantics of Load and is meant for read-only callers.
	ReadAll() ([]Block, error)
	Close() error
}

// FileStore keeps the chain as one JSON array in a single file and rewrites
// the whole file on every append.
type FileStore struct {
	path      string
	mu        sync.RWMutex
	writeFile func(path string, data []byte, perm os.FileMode) error
}

// NewFileStore returns a store backed by path. The file is created on the
// first append.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path, writeFile: utils.WriteFileAtomic}
}

// Path returns the backing file.
func (s *FileStore) Path() string {
	return s.path
}

func (s *FileStore) Load() ([]Block, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.load()
}

func (s *FileStore) ReadAll() ([]Block, error) {
	return s.Load()
}

func (s *FileStore) load() ([]Block, error) {
	data, err := utils.ReadFileIfExists(s.path)
	if err != nil {
		return nil, &StoreReadError{Source: s.path, Err: err}
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return []Block{}, nil
	}
	return decodeChain(s.path, data)
}

func (s *FileStore) Append(blk Block) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	blocks, err := s.load()
	if err != nil {
		return err
	}
	blocks = append(blocks, blk)

	data, err := jsonx.MarshalIndent(blocks, "  ")
	if err != nil {
		return &StoreWriteError{Source: s.path, Err: err}
	}
	if err := s.writeFile(s.path, data, 0644); err != nil {
		return &StoreWriteError{Source: s.path, Err: err}
	}
	return nil
}

func (s *FileStore) Close() error {
	return nil
}

// decodeChain parses a persisted JSON array of blocks. A literal null is an
// empty chain; anything that is not an array of block objects is an error.
func decodeChain(source string, data []byte) ([]Block, error) {
	var blocks []Block
	if err := jsonx.Unmarshal(data, &blocks); err != nil {
		return nil, &StoreReadError{Source: source, Err: err}
	}
	if blocks == nil {
		return []Block{}, nil
	}
	for i, blk := range blocks {
		if len(blk.ProductAction) == 0 || blk.Hash == "" {
			return nil, &StoreReadError{
				Source: source,
				Err:    fmt.Errorf("block at position %d is missing productAction or hash", i),
			}
		}
	}
	return blocks, nil
}
