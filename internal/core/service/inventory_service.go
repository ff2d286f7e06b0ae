package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/Rhinoj0sa/ntd-fast-api/internal/core/domain"
	"github.com/Rhinoj0sa/ntd-fast-api/internal/port"
)

var ErrInvalidQuantity = errors.New("quantity must be greater than 0")

type InventoryService struct {
	store port.InventoryRepository
}

func NewInventoryService(store port.InventoryRepository) *InventoryService {
	return &InventoryService{store: store}
}

// AddItem creates the item on first use of a name and increments the
// quantity on every following add. The id stays stable for the lifetime
// of the item.
func (s *InventoryService) AddItem(ctx context.Context, name string, quantity int) (domain.Item, error) {
	if quantity <= 0 {
		return domain.Item{}, ErrInvalidQuantity
	}

	item, err := s.store.AddOrIncrement(ctx, name, quantity)
	if err != nil {
		return domain.Item{}, fmt.Errorf("add item: %w", err)
	}
	return item, nil
}

func (s *InventoryService) GetItem(ctx context.Context, id int64) (domain.Item, error) {
	return s.store.Get(ctx, id)
}

func (s *InventoryService) ListItems(ctx context.Context) ([]domain.Item, error) {
	return s.store.List(ctx)
}

func (s *InventoryService) DeleteItem(ctx context.Context, id int64) error {
	return s.store.Delete(ctx, id)
}

// RemoveQuantity decrements the item's quantity. Requesting removal of at
// least the held quantity deletes the item entirely; that is deliberate,
// not an error. Reports whether the item was deleted.
func (s *InventoryService) RemoveQuantity(ctx context.Context, id int64, quantity int) (bool, error) {
	return s.store.RemoveQuantity(ctx, id, quantity)
}
