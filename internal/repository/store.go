package repository

import (
	"context"
	"errors"

	"valetdesk/models"
)

// ErrDuplicateID is returned by Insert when the id is already in use.
var ErrDuplicateID = errors.New("repository: duplicate item id")

// ItemStore is the authoritative set of parking tickets.
type ItemStore interface {
	List(ctx context.Context) ([]models.Item, error)
	Get(ctx context.Context, id string) (*models.Item, error)
	Insert(ctx context.Context, item models.Item) error
	UpdateStatus(ctx context.Context, id, status string) (*models.Item, error)
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int, error)
}

const (
	DriverMemory = "memory"
	DriverSQL    = "sql"
	DriverRedis  = "redis"
)
