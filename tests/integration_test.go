package tests

import (
	"context"
	"errors"
	"os"
	"strings"
	"sync"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/Rhinoj0sa/ntd-fast-api/internal/adapter/storage"
	"github.com/Rhinoj0sa/ntd-fast-api/internal/core/classify"
	"github.com/Rhinoj0sa/ntd-fast-api/internal/core/domain"
	"github.com/Rhinoj0sa/ntd-fast-api/internal/core/service"
	"github.com/Rhinoj0sa/ntd-fast-api/internal/port"
)

type testEnv struct {
	redis     *redis.Client
	inventory *service.InventoryService
	cleanup   func()
}

func setupTestEnv(t *testing.T) *testEnv {
	redisAddr := os.Getenv("REDIS_ADDR")
	if redisAddr == "" {
		redisAddr = "localhost:6379"
	}

	rdb := redis.NewClient(&redis.Options{Addr: redisAddr})
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		t.Skipf("Redis not available: %v", err)
	}

	flushKeys(rdb, "item_ids", "item_name_to_id")
	flushPattern(rdb, "item_id:*")
	flushPattern(rdb, "pdf_result:*")

	return &testEnv{
		redis:     rdb,
		inventory: service.NewInventoryService(storage.NewRedisInventory(rdb)),
		cleanup: func() {
			rdb.Close()
		},
	}
}

func flushKeys(rdb *redis.Client, keys ...string) {
	rdb.Del(context.Background(), keys...)
}

func flushPattern(rdb *redis.Client, pattern string) {
	ctx := context.Background()
	keys, _ := rdb.Keys(ctx, pattern).Result()
	for _, k := range keys {
		rdb.Del(ctx, k)
	}
}

func TestInventoryLifecycle(t *testing.T) {
	env := setupTestEnv(t)
	defer env.cleanup()
	ctx := context.Background()

	// Add twice, accumulate under one id.
	first, err := env.inventory.AddItem(ctx, "widget", 5)
	if err != nil {
		t.Fatalf("add failed: %v", err)
	}
	second, err := env.inventory.AddItem(ctx, "widget", 3)
	if err != nil {
		t.Fatalf("second add failed: %v", err)
	}
	if second.ID != first.ID || second.Quantity != 8 {
		t.Errorf("expected id %d quantity 8, got id %d quantity %d", first.ID, second.ID, second.Quantity)
	}

	// Partial removal.
	deleted, err := env.inventory.RemoveQuantity(ctx, first.ID, 2)
	if err != nil || deleted {
		t.Fatalf("expected surviving item, deleted=%v err=%v", deleted, err)
	}
	got, err := env.inventory.GetItem(ctx, first.ID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got.Quantity != 6 {
		t.Errorf("expected quantity 6, got %d", got.Quantity)
	}

	// Over-large removal deletes the item entirely.
	deleted, err = env.inventory.RemoveQuantity(ctx, first.ID, 100)
	if err != nil || !deleted {
		t.Fatalf("expected deletion, deleted=%v err=%v", deleted, err)
	}

	items, err := env.inventory.ListItems(ctx)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	for _, item := range items {
		if item.ID == first.ID {
			t.Error("deleted item still listed")
		}
	}
}

func TestInventoryConcurrentAdds(t *testing.T) {
	env := setupTestEnv(t)
	defer env.cleanup()
	ctx := context.Background()

	totalRequests := 50
	var wg sync.WaitGroup
	for i := 0; i < totalRequests; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := env.inventory.AddItem(ctx, "hot-item", 1); err != nil {
				t.Errorf("add failed: %v", err)
			}
		}()
	}
	wg.Wait()

	items, err := env.inventory.ListItems(ctx)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(items))
	}
	if items[0].Quantity != totalRequests {
		t.Errorf("expected quantity %d, got %d", totalRequests, items[0].Quantity)
	}
}

type cannedExtractor struct{ text string }

func (c cannedExtractor) Extract(ctx context.Context, path string) (string, error) {
	return c.text, nil
}

type cannedEmbedder struct{}

func (cannedEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if strings.Contains(strings.ToLower(text), "receipt") {
		return []float32{0, 1}, nil
	}
	return []float32{1, 0}, nil
}

func (c cannedEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i], _ = c.Embed(ctx, t)
	}
	return out, nil
}

func (cannedEmbedder) Dimensions() int { return 2 }
func (cannedEmbedder) Model() string   { return "canned" }

// Upload pipeline against real Redis: extract, classify, persist, fetch.
func TestDocumentPipeline(t *testing.T) {
	env := setupTestEnv(t)
	defer env.cleanup()
	ctx := context.Background()

	classifier, err := classify.New(ctx, cannedEmbedder{}, []domain.DocumentExample{
		{Label: "Invoice", Text: "invoice example"},
		{Label: "Receipt", Text: "receipt example"},
	})
	if err != nil {
		t.Fatalf("classifier build failed: %v", err)
	}

	documents := service.NewDocumentService(
		cannedExtractor{text: "Receipt for purchase at XYZ Store"},
		classifier,
		storage.NewRedisResults(env.redis),
		t.TempDir(),
		0,
		zerolog.Nop(),
	)

	uploaded, err := documents.ProcessUpload(ctx, "receipt.pdf", "application/pdf", strings.NewReader("%PDF-1.4"))
	if err != nil {
		t.Fatalf("upload failed: %v", err)
	}
	if uploaded.DocumentType != "Receipt" {
		t.Errorf("expected Receipt, got %s", uploaded.DocumentType)
	}
	if uploaded.ConfidenceScore != "1.000" {
		t.Errorf("expected 1.000, got %s", uploaded.ConfidenceScore)
	}

	fetched, err := documents.GetResult(ctx, "receipt.pdf")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if fetched != uploaded {
		t.Errorf("round-trip mismatch: %+v vs %+v", fetched, uploaded)
	}

	all, err := documents.ListResults(ctx)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(all) != 1 {
		t.Errorf("expected 1 result, got %d", len(all))
	}

	if _, err := documents.GetResult(ctx, "nope.pdf"); !errors.Is(err, port.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}
