package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"valetdesk/internal/status"
	"valetdesk/models"
)

func setupRedisStore() (*RedisStore, redismock.ClientMock) {
	db, mock := redismock.NewClientMock()
	return NewRedisStore(db), mock
}

func sampleHash(item models.Item) map[string]string {
	return map[string]string{
		"id":             item.ID,
		"title":          item.Title,
		"description":    item.Description,
		"vehicle_number": item.VehicleNumber,
		"slot":           item.Slot,
		"level":          item.Level,
		"entry_time":     item.EntryTime,
		"status":         item.Status,
	}
}

func TestRedisStore_Insert(t *testing.T) {
	store, mock := setupRedisStore()
	ctx := context.Background()
	item := models.SampleItems()[0]

	mock.ExpectZAddNX(itemIndexKey, redis.Z{Score: entryScore(item), Member: item.ID}).SetVal(1)
	mock.ExpectHSet("item:1", itemHash(item)...).SetVal(8)

	require.NoError(t, store.Insert(ctx, item))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisStore_InsertDuplicate(t *testing.T) {
	store, mock := setupRedisStore()
	ctx := context.Background()
	item := models.SampleItems()[0]

	mock.ExpectZAddNX(itemIndexKey, redis.Z{Score: entryScore(item), Member: item.ID}).SetVal(0)

	assert.ErrorIs(t, store.Insert(ctx, item), ErrDuplicateID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisStore_InsertRollsBackIndex(t *testing.T) {
	store, mock := setupRedisStore()
	ctx := context.Background()
	item := models.SampleItems()[0]

	mock.ExpectZAddNX(itemIndexKey, redis.Z{Score: entryScore(item), Member: item.ID}).SetVal(1)
	mock.ExpectHSet("item:1", itemHash(item)...).SetErr(errors.New("OOM"))
	mock.ExpectZRem(itemIndexKey, item.ID).SetVal(1)

	err := store.Insert(ctx, item)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "OOM")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisStore_Get(t *testing.T) {
	store, mock := setupRedisStore()
	ctx := context.Background()
	item := models.SampleItems()[1]

	mock.ExpectHGetAll("item:2").SetVal(sampleHash(item))
	mock.ExpectHGetAll("item:missing").SetVal(map[string]string{})

	got, err := store.Get(ctx, "2")
	require.NoError(t, err)
	assert.Equal(t, item, *got)

	_, err = store.Get(ctx, "missing")
	assert.ErrorIs(t, err, status.ErrItemNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisStore_ListSkipsDanglingIDs(t *testing.T) {
	store, mock := setupRedisStore()
	ctx := context.Background()
	samples := models.SampleItems()

	mock.ExpectZRevRange(itemIndexKey, 0, -1).SetVal([]string{"2", "gone", "1"})
	mock.ExpectHGetAll("item:2").SetVal(sampleHash(samples[1]))
	mock.ExpectHGetAll("item:gone").SetVal(map[string]string{})
	mock.ExpectHGetAll("item:1").SetVal(sampleHash(samples[0]))

	items, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, samples[1], items[0])
	assert.Equal(t, samples[0], items[1])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisStore_ListEmpty(t *testing.T) {
	store, mock := setupRedisStore()

	mock.ExpectZRevRange(itemIndexKey, 0, -1).SetVal([]string{})

	items, err := store.List(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, items)
	assert.Empty(t, items)
}

func TestRedisStore_ListError(t *testing.T) {
	store, mock := setupRedisStore()

	mock.ExpectZRevRange(itemIndexKey, 0, -1).SetErr(errors.New("connection refused"))

	_, err := store.List(context.Background())
	assert.Error(t, err)
}

func TestRedisStore_UpdateStatus(t *testing.T) {
	store, mock := setupRedisStore()
	ctx := context.Background()
	item := models.SampleItems()[0]
	updated := item
	updated.Status = models.ItemStatusCompleted

	// The script answers with the updated hash; no separate HGETALL follows,
	// so a delete landing after the update cannot turn it into a miss.
	mock.ExpectEval(updateStatusScript, []string{"item:1"}, models.ItemStatusCompleted).SetVal(itemHash(updated))
	mock.ExpectEval(updateStatusScript, []string{"item:missing"}, models.ItemStatusCompleted).SetVal([]any{})

	got, err := store.UpdateStatus(ctx, "1", models.ItemStatusCompleted)
	require.NoError(t, err)
	assert.Equal(t, updated, *got)

	_, err = store.UpdateStatus(ctx, "missing", models.ItemStatusCompleted)
	assert.ErrorIs(t, err, status.ErrItemNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisStore_Delete(t *testing.T) {
	store, mock := setupRedisStore()
	ctx := context.Background()

	mock.ExpectTxPipeline()
	mock.ExpectDel("item:1").SetVal(1)
	mock.ExpectZRem(itemIndexKey, "1").SetVal(1)
	mock.ExpectTxPipelineExec()

	require.NoError(t, store.Delete(ctx, "1"))

	mock.ExpectTxPipeline()
	mock.ExpectDel("item:1").SetVal(0)
	mock.ExpectZRem(itemIndexKey, "1").SetVal(0)
	mock.ExpectTxPipelineExec()

	assert.ErrorIs(t, store.Delete(ctx, "1"), status.ErrItemNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisStore_Count(t *testing.T) {
	store, mock := setupRedisStore()

	mock.ExpectZCard(itemIndexKey).SetVal(3)

	count, err := store.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}
