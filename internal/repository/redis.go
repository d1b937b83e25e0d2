package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"valetdesk/internal/status"
	"valetdesk/models"
)

const itemIndexKey = "items"

// updateStatusScript only touches tickets that still exist, so a concurrent
// delete never leaves a hash holding nothing but a status. It returns the
// updated hash as field/value pairs, or an empty array when the ticket is gone.
const updateStatusScript = `
if redis.call('EXISTS', KEYS[1]) == 0 then
	return {}
end
redis.call('HSET', KEYS[1], 'status', ARGV[1])
return redis.call('HGETALL', KEYS[1])
`

// RedisStore keeps each ticket in a hash and orders them through a sorted set
// scored by entry time.
type RedisStore struct {
	Redis *redis.Client
}

func NewRedisStore(redisClient *redis.Client) *RedisStore {
	return &RedisStore{Redis: redisClient}
}

func itemKey(id string) string {
	return fmt.Sprintf("item:%s", id)
}

func (s *RedisStore) List(ctx context.Context) ([]models.Item, error) {
	ids, err := s.Redis.ZRevRange(ctx, itemIndexKey, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("list item ids: %w", err)
	}

	items := make([]models.Item, 0, len(ids))
	if len(ids) == 0 {
		return items, nil
	}

	cmds := make([]*redis.MapStringStringCmd, len(ids))
	_, err = s.Redis.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		for i, id := range ids {
			cmds[i] = pipe.HGetAll(ctx, itemKey(id))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}

	for _, cmd := range cmds {
		fields := cmd.Val()
		if len(fields) == 0 {
			continue
		}
		items = append(items, itemFromHash(fields))
	}
	return items, nil
}

func (s *RedisStore) Get(ctx context.Context, id string) (*models.Item, error) {
	fields, err := s.Redis.HGetAll(ctx, itemKey(id)).Result()
	if err != nil {
		return nil, fmt.Errorf("get item %s: %w", id, err)
	}
	if len(fields) == 0 {
		return nil, status.ErrItemNotFound
	}
	item := itemFromHash(fields)
	return &item, nil
}

func (s *RedisStore) Insert(ctx context.Context, item models.Item) error {
	added, err := s.Redis.ZAddNX(ctx, itemIndexKey, redis.Z{
		Score:  entryScore(item),
		Member: item.ID,
	}).Result()
	if err != nil {
		return fmt.Errorf("index item %s: %w", item.ID, err)
	}
	if added == 0 {
		return ErrDuplicateID
	}

	if err := s.Redis.HSet(ctx, itemKey(item.ID), itemHash(item)...).Err(); err != nil {
		s.Redis.ZRem(ctx, itemIndexKey, item.ID)
		return fmt.Errorf("insert item %s: %w", item.ID, err)
	}
	return nil
}

func (s *RedisStore) UpdateStatus(ctx context.Context, id, newStatus string) (*models.Item, error) {
	pairs, err := s.Redis.Eval(ctx, updateStatusScript, []string{itemKey(id)}, newStatus).StringSlice()
	if err != nil {
		return nil, fmt.Errorf("update item %s: %w", id, err)
	}
	if len(pairs) == 0 {
		return nil, status.ErrItemNotFound
	}

	fields := make(map[string]string, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		fields[pairs[i]] = pairs[i+1]
	}
	item := itemFromHash(fields)
	return &item, nil
}

func (s *RedisStore) Delete(ctx context.Context, id string) error {
	var del *redis.IntCmd
	_, err := s.Redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		del = pipe.Del(ctx, itemKey(id))
		pipe.ZRem(ctx, itemIndexKey, id)
		return nil
	})
	if err != nil {
		return fmt.Errorf("delete item %s: %w", id, err)
	}
	if del.Val() == 0 {
		return status.ErrItemNotFound
	}
	return nil
}

func (s *RedisStore) Count(ctx context.Context) (int, error) {
	n, err := s.Redis.ZCard(ctx, itemIndexKey).Result()
	if err != nil {
		return 0, fmt.Errorf("count items: %w", err)
	}
	return int(n), nil
}

func itemHash(item models.Item) []any {
	return []any{
		"id", item.ID,
		"title", item.Title,
		"description", item.Description,
		"vehicle_number", item.VehicleNumber,
		"slot", item.Slot,
		"level", item.Level,
		"entry_time", item.EntryTime,
		"status", item.Status,
	}
}

func itemFromHash(fields map[string]string) models.Item {
	return models.Item{
		ID:            fields["id"],
		Title:         fields["title"],
		Description:   fields["description"],
		VehicleNumber: fields["vehicle_number"],
		Slot:          fields["slot"],
		Level:         fields["level"],
		EntryTime:     fields["entry_time"],
		Status:        fields["status"],
	}
}

func entryScore(item models.Item) float64 {
	t, err := item.EntryTimestamp()
	if err != nil {
		t = time.Now()
	}
	return float64(t.UnixNano())
}
