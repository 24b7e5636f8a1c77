package service

import (
	"context"
	"fmt"

	"github.com/jonafarm/market/logx"
	"github.com/jonafarm/market/store"
	"github.com/jonafarm/market/types"
)

type OrderServiceImpl struct {
	orders *store.JSONFile[types.Order]
}

func NewOrderService(orders *store.JSONFile[types.Order]) *OrderServiceImpl {
	return &OrderServiceImpl{orders: orders}
}

func (s *OrderServiceImpl) Place(ctx context.Context, in types.OrderInput) (types.Order, error) {
	var placed types.Order
	err := s.orders.Update(func(orders []types.Order) ([]types.Order, error) {
		maxID := 0
		for _, o := range orders {
			if o.ID > maxID {
				maxID = o.ID
			}
		}
		placed = types.Order{
			ID:          maxID + 1,
			Product:     in.Product,
			Quantity:    in.Quantity,
			Buyer:       in.Buyer,
			Phone:       in.Phone,
			Address:     in.Address,
			Status:      types.OrderStatusPending,
			Farmer:      in.Farmer,
			Distributor: "",
			OrderDate:   in.OrderDate,
		}
		return append(orders, placed), nil
	})
	if err != nil {
		return types.Order{}, err
	}
	logx.Info("ORDERS", fmt.Sprintf("Order placed | id=%d | product=%s | farmer=%s", placed.ID, placed.Product, placed.Farmer))
	return placed, nil
}

func (s *OrderServiceImpl) List(ctx context.Context) ([]types.Order, error) {
	return s.orders.All()
}

func (s *OrderServiceImpl) ListByFarmer(ctx context.Context, farmer string) ([]types.Order, error) {
	orders, err := s.orders.All()
	if err != nil {
		return nil, err
	}
	out := make([]types.Order, 0)
	for _, o := range orders {
		if o.Farmer == farmer {
			out = append(out, o)
		}
	}
	return out, nil
}

func (s *OrderServiceImpl) UpdateStatus(ctx context.Context, in types.OrderStatusUpdate) (types.Order, error) {
	var updated types.Order
	err := s.orders.Update(func(orders []types.Order) ([]types.Order, error) {
		for i := range orders {
			if orders[i].ID == in.ID {
				orders[i].Status = in.Status
				orders[i].Distributor = in.Distributor
				updated = orders[i]
				return orders, nil
			}
		}
		return nil, ErrOrderNotFound
	})
	if err != nil {
		return types.Order{}, err
	}
	logx.Info("ORDERS", fmt.Sprintf("Order status updated | id=%d | status=%s | distributor=%s", updated.ID, updated.Status, updated.Distributor))
	return updated, nil
}
