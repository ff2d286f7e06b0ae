package storage

import (
	"context"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"

	"github.com/Rhinoj0sa/ntd-fast-api/internal/core/domain"
	"github.com/Rhinoj0sa/ntd-fast-api/internal/port"
)

const (
	itemIDCounterKey = "item_ids"
	nameIndexKey     = "item_name_to_id"
	itemKeyPrefix    = "item_id:"
)

// Check-then-write sequences run as Lua scripts so concurrent requests
// for the same name cannot mint duplicate ids or lose increments.

var addOrIncrementScript = redis.NewScript(`
local id = redis.call('HGET', KEYS[1], ARGV[1])
if id then
	local qty = redis.call('HINCRBY', ARGV[3] .. id, 'quantity', ARGV[2])
	return {tonumber(id), qty}
end

id = redis.call('INCR', KEYS[2])
redis.call('HSET', ARGV[3] .. id,
	'item_id', id,
	'item_name', ARGV[1],
	'quantity', ARGV[2])
redis.call('HSET', KEYS[1], ARGV[1], id)
return {id, tonumber(ARGV[2])}
`)

var deleteItemScript = redis.NewScript(`
local key = ARGV[2] .. ARGV[1]
if redis.call('HEXISTS', key, 'item_id') == 0 then
	return 0
end

local name = redis.call('HGET', key, 'item_name')
if name then
	redis.call('HDEL', KEYS[1], name)
end
redis.call('DEL', key)
return 1
`)

var removeQuantityScript = redis.NewScript(`
local key = ARGV[3] .. ARGV[1]
if redis.call('HEXISTS', key, 'item_id') == 0 then
	return -1
end

local held = tonumber(redis.call('HGET', key, 'quantity') or '0')
local amount = tonumber(ARGV[2])
if held <= amount then
	local name = redis.call('HGET', key, 'item_name')
	if name then
		redis.call('HDEL', KEYS[1], name)
	end
	redis.call('DEL', key)
	return 1
end

redis.call('HINCRBY', key, 'quantity', -amount)
return 0
`)

// RedisInventory keeps item records in hashes keyed by id with a
// name-to-id hash as secondary index.
type RedisInventory struct {
	client *redis.Client
}

func NewRedisInventory(client *redis.Client) *RedisInventory {
	return &RedisInventory{client: client}
}

func (r *RedisInventory) AddOrIncrement(ctx context.Context, name string, quantity int) (domain.Item, error) {
	result, err := addOrIncrementScript.Run(ctx, r.client,
		[]string{nameIndexKey, itemIDCounterKey},
		name, quantity, itemKeyPrefix,
	).Int64Slice()
	if err != nil {
		return domain.Item{}, fmt.Errorf("add or increment: %w", err)
	}
	if len(result) != 2 {
		return domain.Item{}, fmt.Errorf("add or increment: unexpected script reply %v", result)
	}

	return domain.Item{ID: result[0], Name: name, Quantity: int(result[1])}, nil
}

func (r *RedisInventory) Get(ctx context.Context, id int64) (domain.Item, error) {
	fields, err := r.client.HGetAll(ctx, itemKey(id)).Result()
	if err != nil {
		return domain.Item{}, fmt.Errorf("get item %d: %w", id, err)
	}
	if _, ok := fields["item_id"]; !ok {
		return domain.Item{}, port.ErrNotFound
	}

	quantity, _ := strconv.Atoi(fields["quantity"])
	return domain.Item{ID: id, Name: fields["item_name"], Quantity: quantity}, nil
}

func (r *RedisInventory) List(ctx context.Context) ([]domain.Item, error) {
	index, err := r.client.HGetAll(ctx, nameIndexKey).Result()
	if err != nil {
		return nil, fmt.Errorf("list index: %w", err)
	}

	items := make([]domain.Item, 0, len(index))
	for _, idStr := range index {
		id, err := strconv.ParseInt(idStr, 10, 64)
		if err != nil {
			continue
		}

		name, err := r.client.HGet(ctx, itemKey(id), "item_name").Result()
		if err == redis.Nil {
			// Index entry without a named record reads as absent.
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("list item %d: %w", id, err)
		}

		quantity := 0
		if qtyStr, err := r.client.HGet(ctx, itemKey(id), "quantity").Result(); err == nil {
			quantity, _ = strconv.Atoi(qtyStr)
		}

		items = append(items, domain.Item{ID: id, Name: name, Quantity: quantity})
	}
	return items, nil
}

func (r *RedisInventory) Delete(ctx context.Context, id int64) error {
	result, err := deleteItemScript.Run(ctx, r.client,
		[]string{nameIndexKey},
		id, itemKeyPrefix,
	).Int()
	if err != nil {
		return fmt.Errorf("delete item %d: %w", id, err)
	}
	if result == 0 {
		return port.ErrNotFound
	}
	return nil
}

func (r *RedisInventory) RemoveQuantity(ctx context.Context, id int64, quantity int) (bool, error) {
	result, err := removeQuantityScript.Run(ctx, r.client,
		[]string{nameIndexKey},
		id, quantity, itemKeyPrefix,
	).Int()
	if err != nil {
		return false, fmt.Errorf("remove quantity from item %d: %w", id, err)
	}

	switch result {
	case -1:
		return false, port.ErrNotFound
	case 1:
		return true, nil
	default:
		return false, nil
	}
}

func itemKey(id int64) string {
	return itemKeyPrefix + strconv.FormatInt(id, 10)
}
