package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/jonafarm/market/chain"
	"github.com/jonafarm/market/logx"
	"github.com/jonafarm/market/store"
	"github.com/jonafarm/market/types"
)

// Chain action labels
const (
	ActionAddProduct    = "Add Product"
	ActionVerifyProduct = "Verify Product"
	ActionUpdateProduct = "Update Product"
	ActionDeleteProduct = "Delete Product"
)

// BlockRecorder appends an action to the audit chain.
type BlockRecorder interface {
	CreateBlock(action interface{}) (chain.Block, error)
}

type ProductServiceImpl struct {
	products *store.JSONFile[types.Product]
	recorder BlockRecorder
	// mu keeps a product write and its block adjacent, so blocks appear in
	// the order the catalog changed.
	mu sync.Mutex
}

func NewProductService(products *store.JSONFile[types.Product], recorder BlockRecorder) *ProductServiceImpl {
	return &ProductServiceImpl{products: products, recorder: recorder}
}

func (s *ProductServiceImpl) List(ctx context.Context) ([]types.Product, error) {
	return s.products.All()
}

func (s *ProductServiceImpl) Add(ctx context.Context, in types.ProductInput) (types.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var created types.Product
	err := s.products.Update(func(products []types.Product) ([]types.Product, error) {
		created = types.Product{
			ID:       nextProductID(products),
			Name:     in.Name,
			PriceKsh: in.PriceKsh,
			Quantity: in.Quantity,
			Unit:     in.Unit,
			Image:    in.Image,
			Verified: false,
		}
		return append(products, created), nil
	})
	if err != nil {
		return types.Product{}, err
	}

	return created, s.record(ActionAddProduct, created)
}

func (s *ProductServiceImpl) Verify(ctx context.Context, name string) (types.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var verified types.Product
	err := s.products.Update(func(products []types.Product) ([]types.Product, error) {
		for i := range products {
			if products[i].Name == name {
				products[i].Verified = true
				verified = products[i]
				return products, nil
			}
		}
		return nil, ErrProductNotFound
	})
	if err != nil {
		return types.Product{}, err
	}

	return verified, s.record(ActionVerifyProduct, verified.Name)
}

func (s *ProductServiceImpl) Update(ctx context.Context, id int, in types.ProductInput) (types.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var updated types.Product
	err := s.products.Update(func(products []types.Product) ([]types.Product, error) {
		for i := range products {
			if products[i].ID != id {
				continue
			}
			p := &products[i]
			if in.Name != "" {
				p.Name = in.Name
			}
			if !in.PriceKsh.IsZero() {
				p.PriceKsh = in.PriceKsh
			}
			if !in.Quantity.IsZero() {
				p.Quantity = in.Quantity
			}
			if in.Unit != "" {
				p.Unit = in.Unit
			}
			if in.Image != "" {
				p.Image = in.Image
			}
			updated = *p
			return products, nil
		}
		return nil, ErrProductNotFound
	})
	if err != nil {
		return types.Product{}, err
	}

	return updated, s.record(ActionUpdateProduct, updated.Name)
}

func (s *ProductServiceImpl) Delete(ctx context.Context, id int) (types.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var removed types.Product
	err := s.products.Update(func(products []types.Product) ([]types.Product, error) {
		for i := range products {
			if products[i].ID == id {
				removed = products[i]
				return append(products[:i], products[i+1:]...), nil
			}
		}
		return nil, ErrProductNotFound
	})
	if err != nil {
		return types.Product{}, err
	}

	return removed, s.record(ActionDeleteProduct, removed.Name)
}

// record appends the block for a catalog change that is already persisted.
// A failure here is reported to the caller; the catalog write stands.
func (s *ProductServiceImpl) record(label string, product interface{}) error {
	if _, err := s.recorder.CreateBlock(chain.Action{Label: label, Product: product}); err != nil {
		logx.Error("PRODUCTS", fmt.Sprintf("Failed to record %q on the audit chain: %v", label, err))
		return fmt.Errorf("record %s: %w", label, err)
	}
	return nil
}

// nextProductID is one more than the highest id in use, so ids stay unique
// after deletions.
func nextProductID(products []types.Product) int {
	maxID := 0
	for _, p := range products {
		if p.ID > maxID {
			maxID = p.ID
		}
	}
	return maxID + 1
}
