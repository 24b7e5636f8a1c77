package chain

import (
	"fmt"
	"sync"
	"time"

	"github.com/jonafarm/market/logx"
	"github.com/jonafarm/market/monitoring"
	"github.com/jonafarm/market/utils"
)

// Builder appends blocks to a Store. It owns the only write path to the
// chain: the load, build and append steps of CreateBlock run under one
// mutex so two callers can never link to the same tail.
type Builder struct {
	store Store
	mu    sync.Mutex
	now   func() time.Time
}

// Option configures a Builder.
type Option func(*Builder)

// WithClock replaces the time source used for block timestamps.
func WithClock(now func() time.Time) Option {
	return func(b *Builder) {
		b.now = now
	}
}

// NewBuilder returns a Builder writing to store.
func NewBuilder(store Store, opts ...Option) *Builder {
	b := &Builder{
		store: store,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// CreateBlock records action as a new block at the end of the chain and
// returns it. Store errors are returned unchanged and no block is exposed.
func (b *Builder) CreateBlock(action interface{}) (Block, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	started := b.now()

	blocks, err := b.store.Load()
	if err != nil {
		return Block{}, err
	}

	previousHash := GenesisPrevHash
	if len(blocks) > 0 {
		previousHash = blocks[len(blocks)-1].Hash
	}

	payload, err := EncodeAction(action)
	if err != nil {
		return Block{}, err
	}

	blk := Block{
		Index:         uint64(len(blocks)) + 1,
		Timestamp:     FormatTimestamp(b.now()),
		ProductAction: payload,
		PreviousHash:  previousHash,
	}
	blk.Hash, err = Digest(blk.Content())
	if err != nil {
		return Block{}, err
	}

	if err := b.store.Append(blk); err != nil {
		return Block{}, err
	}

	label := actionLabel(action)
	monitoring.RecordBlockAppended(label, utils.SecondsBetween(started, b.now()), blk.Index)
	logx.Info("CHAIN", fmt.Sprintf("Appended block | index=%d | action=%s | hash=%s", blk.Index, label, blk.Hash))
	return blk, nil
}

// Chain returns the full chain in append order.
func (b *Builder) Chain() ([]Block, error) {
	return b.store.ReadAll()
}

// Verify loads the chain and checks its integrity.
func (b *Builder) Verify() (Result, []Block, error) {
	blocks, err := b.store.ReadAll()
	if err != nil {
		return Result{}, nil, err
	}
	res := Verify(blocks)
	if !res.Valid {
		monitoring.RecordVerificationFailure(string(res.Reason))
		logx.Warn("CHAIN", fmt.Sprintf("Chain verification failed | index=%d | reason=%s | detail=%s", res.Index, res.Reason, res.Detail))
	}
	return res, blocks, nil
}

func actionLabel(action interface{}) string {
	switch a := action.(type) {
	case Action:
		return a.Label
	case *Action:
		if a != nil {
			return a.Label
		}
	}
	return "other"
}
