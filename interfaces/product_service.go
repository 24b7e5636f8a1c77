package interfaces

import (
	"context"

	"github.com/jonafarm/market/types"
)

// ProductService manages the catalog. Every successful mutation is recorded
// on the product audit chain.
type ProductService interface {
	List(ctx context.Context) ([]types.Product, error)
	Add(ctx context.Context, in types.ProductInput) (types.Product, error)
	Verify(ctx context.Context, name string) (types.Product, error)
	Update(ctx context.Context, id int, in types.ProductInput) (types.Product, error)
	Delete(ctx context.Context, id int) (types.Product, error)
}
