package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/pocketbase/dbx"

	"valetdesk/internal/status"
	"valetdesk/models"
)

const createItemsTable = `
	CREATE TABLE IF NOT EXISTS items (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		description TEXT,
		vehicle_number TEXT,
		slot TEXT,
		level TEXT,
		entry_time TEXT,
		status TEXT
	)
`

const selectItemColumns = `
	SELECT id, title,
		COALESCE(description, '') AS description,
		COALESCE(vehicle_number, '') AS vehicle_number,
		COALESCE(slot, '') AS slot,
		COALESCE(level, '') AS level,
		COALESCE(entry_time, '') AS entry_time,
		COALESCE(status, '') AS status
	FROM items
`

const returningItemColumns = `
	RETURNING id, title,
		COALESCE(description, '') AS description,
		COALESCE(vehicle_number, '') AS vehicle_number,
		COALESCE(slot, '') AS slot,
		COALESCE(level, '') AS level,
		COALESCE(entry_time, '') AS entry_time,
		COALESCE(status, '') AS status
`

// SQLStore persists tickets in the single "items" table. Connections come from
// the builder's pool and are released after every statement.
type SQLStore struct {
	db dbx.Builder
}

func NewSQLStore(db dbx.Builder) *SQLStore {
	return &SQLStore{db: db}
}

// EnsureSchema creates the items table when it does not exist yet.
func (s *SQLStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.NewQuery(createItemsTable).WithContext(ctx).Execute(); err != nil {
		return fmt.Errorf("create items table: %w", err)
	}
	return nil
}

func (s *SQLStore) List(ctx context.Context) ([]models.Item, error) {
	items := []models.Item{}
	err := s.db.NewQuery(selectItemColumns + " ORDER BY entry_time DESC").
		WithContext(ctx).
		All(&items)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	if items == nil {
		items = []models.Item{}
	}
	return items, nil
}

func (s *SQLStore) Get(ctx context.Context, id string) (*models.Item, error) {
	item := &models.Item{}
	err := s.db.NewQuery(selectItemColumns + " WHERE id = {:id}").
		Bind(dbx.Params{"id": id}).
		WithContext(ctx).
		One(item)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, status.ErrItemNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get item %s: %w", id, err)
	}
	return item, nil
}

func (s *SQLStore) Insert(ctx context.Context, item models.Item) error {
	res, err := s.db.NewQuery(`
		INSERT OR IGNORE INTO items (id, title, description, vehicle_number, slot, level, entry_time, status)
		VALUES ({:id}, {:title}, {:description}, {:vehicle_number}, {:slot}, {:level}, {:entry_time}, {:status})
	`).Bind(dbx.Params{
		"id":             item.ID,
		"title":          item.Title,
		"description":    item.Description,
		"vehicle_number": item.VehicleNumber,
		"slot":           item.Slot,
		"level":          item.Level,
		"entry_time":     item.EntryTime,
		"status":         item.Status,
	}).WithContext(ctx).Execute()
	if err != nil {
		return fmt.Errorf("insert item %s: %w", item.ID, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("insert item %s: %w", item.ID, err)
	}
	if affected == 0 {
		return ErrDuplicateID
	}
	return nil
}

// UpdateStatus writes the status and reads the row back in one statement.
func (s *SQLStore) UpdateStatus(ctx context.Context, id, newStatus string) (*models.Item, error) {
	item := &models.Item{}
	err := s.db.NewQuery("UPDATE items SET status = {:status} WHERE id = {:id}" + returningItemColumns).
		Bind(dbx.Params{"status": newStatus, "id": id}).
		WithContext(ctx).
		One(item)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, status.ErrItemNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update item %s: %w", id, err)
	}
	return item, nil
}

func (s *SQLStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.NewQuery("DELETE FROM items WHERE id = {:id}").
		Bind(dbx.Params{"id": id}).
		WithContext(ctx).
		Execute()
	if err != nil {
		return fmt.Errorf("delete item %s: %w", id, err)
	}
	return requireAffected(res)
}

func (s *SQLStore) Count(ctx context.Context) (int, error) {
	var count int
	if err := s.db.NewQuery("SELECT COUNT(*) FROM items").WithContext(ctx).Row(&count); err != nil {
		return 0, fmt.Errorf("count items: %w", err)
	}
	return count, nil
}

func requireAffected(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return status.ErrItemNotFound
	}
	return nil
}
