package port

import (
	"context"

	"github.com/Rhinoj0sa/ntd-fast-api/internal/core/domain"
)

type InventoryRepository interface {
	// AddOrIncrement increments the quantity of the item named name, or
	// creates it with the next sequential id. Returns the item with its
	// resulting total quantity. The whole sequence is atomic.
	AddOrIncrement(ctx context.Context, name string, quantity int) (domain.Item, error)

	// Get fetches an item by id, returning ErrNotFound if absent.
	Get(ctx context.Context, id int64) (domain.Item, error)

	// List returns every item reachable through the name index. Index
	// entries whose record has no name are skipped; a missing quantity
	// reads as zero.
	List(ctx context.Context) ([]domain.Item, error)

	// Delete removes the item record and its name index entry,
	// returning ErrNotFound if absent.
	Delete(ctx context.Context, id int64) error

	// RemoveQuantity decrements the item by quantity, deleting it
	// entirely when the held quantity is less than or equal to the
	// requested amount. Reports whether the item was deleted.
	RemoveQuantity(ctx context.Context, id int64, quantity int) (deleted bool, err error)
}
