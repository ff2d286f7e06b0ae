package storage

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/Rhinoj0sa/ntd-fast-api/internal/core/domain"
	"github.com/Rhinoj0sa/ntd-fast-api/internal/port"
)

const resultKeyPrefix = "pdf_result:"

// RedisResults stores classification results as JSON strings keyed by
// filename.
type RedisResults struct {
	client *redis.Client
}

func NewRedisResults(client *redis.Client) *RedisResults {
	return &RedisResults{client: client}
}

func (r *RedisResults) Save(ctx context.Context, result domain.ClassificationResult) error {
	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}
	if err := r.client.Set(ctx, resultKeyPrefix+result.Filename, data, 0).Err(); err != nil {
		return fmt.Errorf("save result %s: %w", result.Filename, err)
	}
	return nil
}

func (r *RedisResults) Get(ctx context.Context, filename string) (domain.ClassificationResult, error) {
	data, err := r.client.Get(ctx, resultKeyPrefix+filename).Bytes()
	if err == redis.Nil {
		return domain.ClassificationResult{}, port.ErrNotFound
	}
	if err != nil {
		return domain.ClassificationResult{}, fmt.Errorf("get result %s: %w", filename, err)
	}

	var result domain.ClassificationResult
	if err := json.Unmarshal(data, &result); err != nil {
		return domain.ClassificationResult{}, fmt.Errorf("unmarshal result %s: %w", filename, err)
	}
	return result, nil
}

// List scans the result key space by prefix. Fine while the store stays
// small; this is not built to scale.
func (r *RedisResults) List(ctx context.Context) ([]domain.ClassificationResult, error) {
	var results []domain.ClassificationResult

	iter := r.client.Scan(ctx, 0, resultKeyPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		data, err := r.client.Get(ctx, iter.Val()).Bytes()
		if err == redis.Nil {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("list result %s: %w", iter.Val(), err)
		}

		var result domain.ClassificationResult
		if err := json.Unmarshal(data, &result); err != nil {
			return nil, fmt.Errorf("unmarshal result %s: %w", iter.Val(), err)
		}
		results = append(results, result)
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("scan results: %w", err)
	}

	return results, nil
}
