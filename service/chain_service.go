package service

import (
	"context"

	"github.com/jonafarm/market/chain"
)

type ChainServiceImpl struct {
	builder *chain.Builder
}

func NewChainService(builder *chain.Builder) *ChainServiceImpl {
	return &ChainServiceImpl{builder: builder}
}

func (s *ChainServiceImpl) Blocks(ctx context.Context) ([]chain.Block, error) {
	return s.builder.Chain()
}

// Verify checks the stored chain and returns the result with the chain length.
func (s *ChainServiceImpl) Verify(ctx context.Context) (chain.Result, int, error) {
	res, blocks, err := s.builder.Verify()
	if err != nil {
		return chain.Result{}, 0, err
	}
	return res, len(blocks), nil
}
