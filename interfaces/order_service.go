package interfaces

import (
	"context"

	"github.com/jonafarm/market/types"
)

type OrderService interface {
	Place(ctx context.Context, in types.OrderInput) (types.Order, error)
	List(ctx context.Context) ([]types.Order, error)
	ListByFarmer(ctx context.Context, farmer string) ([]types.Order, error)
	UpdateStatus(ctx context.Context, in types.OrderStatusUpdate) (types.Order, error)
}
