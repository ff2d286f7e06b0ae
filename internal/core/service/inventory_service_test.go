package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/Rhinoj0sa/ntd-fast-api/internal/core/domain"
	"github.com/Rhinoj0sa/ntd-fast-api/internal/port"
)

// Mock InventoryRepository
type mockInventoryRepo struct {
	mu       sync.Mutex
	nextID   int64
	items    map[int64]domain.Item
	nameToID map[string]int64
}

func newMockInventoryRepo() *mockInventoryRepo {
	return &mockInventoryRepo{
		items:    make(map[int64]domain.Item),
		nameToID: make(map[string]int64),
	}
}

func (m *mockInventoryRepo) AddOrIncrement(ctx context.Context, name string, quantity int) (domain.Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if id, ok := m.nameToID[name]; ok {
		item := m.items[id]
		item.Quantity += quantity
		m.items[id] = item
		return item, nil
	}

	m.nextID++
	item := domain.Item{ID: m.nextID, Name: name, Quantity: quantity}
	m.items[item.ID] = item
	m.nameToID[name] = item.ID
	return item, nil
}

func (m *mockInventoryRepo) Get(ctx context.Context, id int64) (domain.Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	item, ok := m.items[id]
	if !ok {
		return domain.Item{}, port.ErrNotFound
	}
	return item, nil
}

func (m *mockInventoryRepo) List(ctx context.Context) ([]domain.Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	items := make([]domain.Item, 0, len(m.items))
	for _, id := range m.nameToID {
		items = append(items, m.items[id])
	}
	return items, nil
}

func (m *mockInventoryRepo) Delete(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	item, ok := m.items[id]
	if !ok {
		return port.ErrNotFound
	}
	delete(m.items, id)
	delete(m.nameToID, item.Name)
	return nil
}

func (m *mockInventoryRepo) RemoveQuantity(ctx context.Context, id int64, quantity int) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	item, ok := m.items[id]
	if !ok {
		return false, port.ErrNotFound
	}
	if item.Quantity <= quantity {
		delete(m.items, id)
		delete(m.nameToID, item.Name)
		return true, nil
	}
	item.Quantity -= quantity
	m.items[id] = item
	return false, nil
}

func TestAddItem_InvalidQuantity(t *testing.T) {
	svc := NewInventoryService(newMockInventoryRepo())

	for _, qty := range []int{0, -1, -100} {
		_, err := svc.AddItem(context.Background(), "widget", qty)
		if !errors.Is(err, ErrInvalidQuantity) {
			t.Errorf("quantity %d: expected ErrInvalidQuantity, got %v", qty, err)
		}
	}
}

func TestAddItem_RepeatAddAccumulates(t *testing.T) {
	repo := newMockInventoryRepo()
	svc := NewInventoryService(repo)
	ctx := context.Background()

	first, err := svc.AddItem(ctx, "widget", 5)
	if err != nil {
		t.Fatalf("first add failed: %v", err)
	}
	second, err := svc.AddItem(ctx, "widget", 3)
	if err != nil {
		t.Fatalf("second add failed: %v", err)
	}

	if second.ID != first.ID {
		t.Errorf("expected stable id %d, got %d", first.ID, second.ID)
	}
	if second.Quantity != 8 {
		t.Errorf("expected quantity 8, got %d", second.Quantity)
	}

	items, err := svc.ListItems(ctx)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(items))
	}
	if items[0].Name != "widget" || items[0].Quantity != 8 {
		t.Errorf("expected widget/8, got %s/%d", items[0].Name, items[0].Quantity)
	}
}

func TestGetItem_NotFound(t *testing.T) {
	svc := NewInventoryService(newMockInventoryRepo())

	_, err := svc.GetItem(context.Background(), 42)
	if !errors.Is(err, port.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestDeleteItem(t *testing.T) {
	repo := newMockInventoryRepo()
	svc := NewInventoryService(repo)
	ctx := context.Background()

	item, err := svc.AddItem(ctx, "widget", 2)
	if err != nil {
		t.Fatalf("add failed: %v", err)
	}

	if err := svc.DeleteItem(ctx, item.ID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if _, err := svc.GetItem(ctx, item.ID); !errors.Is(err, port.ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
	if err := svc.DeleteItem(ctx, item.ID); !errors.Is(err, port.ErrNotFound) {
		t.Errorf("expected ErrNotFound on second delete, got %v", err)
	}
}

func TestRemoveQuantity_PartialDecrement(t *testing.T) {
	repo := newMockInventoryRepo()
	svc := NewInventoryService(repo)
	ctx := context.Background()

	item, _ := svc.AddItem(ctx, "widget", 10)

	deleted, err := svc.RemoveQuantity(ctx, item.ID, 4)
	if err != nil {
		t.Fatalf("remove failed: %v", err)
	}
	if deleted {
		t.Error("expected item to survive partial decrement")
	}

	got, err := svc.GetItem(ctx, item.ID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got.Quantity != 6 {
		t.Errorf("expected quantity 6, got %d", got.Quantity)
	}
}

func TestRemoveQuantity_OverLargeRequestDeletes(t *testing.T) {
	repo := newMockInventoryRepo()
	svc := NewInventoryService(repo)
	ctx := context.Background()

	item, _ := svc.AddItem(ctx, "widget", 3)

	// Removing more than held deletes silently rather than erroring.
	deleted, err := svc.RemoveQuantity(ctx, item.ID, 5)
	if err != nil {
		t.Fatalf("remove failed: %v", err)
	}
	if !deleted {
		t.Error("expected item to be deleted")
	}

	items, _ := svc.ListItems(ctx)
	for _, it := range items {
		if it.ID == item.ID {
			t.Error("deleted item still listed")
		}
	}
}

func TestRemoveQuantity_ExactQuantityDeletes(t *testing.T) {
	repo := newMockInventoryRepo()
	svc := NewInventoryService(repo)
	ctx := context.Background()

	item, _ := svc.AddItem(ctx, "widget", 3)

	deleted, err := svc.RemoveQuantity(ctx, item.ID, 3)
	if err != nil {
		t.Fatalf("remove failed: %v", err)
	}
	if !deleted {
		t.Error("expected exact-quantity removal to delete the item")
	}
}

func TestRemoveQuantity_NotFound(t *testing.T) {
	svc := NewInventoryService(newMockInventoryRepo())

	_, err := svc.RemoveQuantity(context.Background(), 99, 1)
	if !errors.Is(err, port.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}
