package store

import (
	"bytes"
	"fmt"
	"sync"

	"github.com/jonafarm/market/jsonx"
	"github.com/jonafarm/market/utils"
)

// JSONFile is a repository persisted as one JSON array file. A missing file
// reads as an empty list. Writes replace the file atomically.
type JSONFile[T any] struct {
	path string
	mu   sync.Mutex
}

// NewJSONFile returns a repository for path.
func NewJSONFile[T any](path string) *JSONFile[T] {
	return &JSONFile[T]{path: path}
}

// Path returns the backing file.
func (f *JSONFile[T]) Path() string {
	return f.path
}

// All returns every stored item in file order.
func (f *JSONFile[T]) All() ([]T, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.read()
}

// Save replaces the file content with items.
func (f *JSONFile[T]) Save(items []T) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.write(items)
}

// Update runs a read-modify-write cycle under the repository lock. When fn
// returns an error nothing is written.
func (f *JSONFile[T]) Update(fn func(items []T) ([]T, error)) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	items, err := f.read()
	if err != nil {
		return err
	}
	items, err = fn(items)
	if err != nil {
		return err
	}
	return f.write(items)
}

func (f *JSONFile[T]) read() ([]T, error) {
	data, err := utils.ReadFileIfExists(f.path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", f.path, err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return []T{}, nil
	}
	var items []T
	if err := jsonx.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("decode %s: %w", f.path, err)
	}
	if items == nil {
		items = []T{}
	}
	return items, nil
}

func (f *JSONFile[T]) write(items []T) error {
	if items == nil {
		items = []T{}
	}
	data, err := jsonx.MarshalIndent(items, "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", f.path, err)
	}
	if err := utils.WriteFileAtomic(f.path, data, 0644); err != nil {
		return fmt.Errorf("write %s: %w", f.path, err)
	}
	return nil
}
