package interfaces

import (
	"context"

	"github.com/jonafarm/market/chain"
)

// ChainService is the read side of the product audit chain.
type ChainService interface {
	Blocks(ctx context.Context) ([]chain.Block, error)
	Verify(ctx context.Context) (chain.Result, int, error)
}
