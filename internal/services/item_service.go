package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"valetdesk/internal/repository"
	"valetdesk/internal/status"
	"valetdesk/models"
	"valetdesk/monitoring"
	"valetdesk/utils"
)

// maxIDAttempts bounds the retries when a generated id is already taken.
const maxIDAttempts = 5

type CreateItemInput struct {
	Title         string `json:"title"`
	Description   string `json:"description"`
	VehicleNumber string `json:"vehicle_number"`
	Slot          string `json:"slot"`
	Level         string `json:"level"`
}

type ItemService struct {
	Store     repository.ItemStore
	publisher Publisher
	monitor   *monitoring.Monitor

	now   func() time.Time
	newID func() string
}

func NewItemService(store repository.ItemStore, publisher Publisher, monitor *monitoring.Monitor) *ItemService {
	if publisher == nil {
		publisher = NopPublisher{}
	}
	if monitor == nil {
		monitor = monitoring.NewMonitor()
	}
	return &ItemService{
		Store:     store,
		publisher: publisher,
		monitor:   monitor,
		now:       time.Now,
		newID:     utils.GenerateItemID,
	}
}

func (s *ItemService) ListItems(ctx context.Context) ([]models.Item, error) {
	items, err := s.Store.List(ctx)
	s.track("list", err)
	return items, err
}

func (s *ItemService) GetItem(ctx context.Context, id string) (*models.Item, error) {
	item, err := s.Store.Get(ctx, id)
	s.track("get", err)
	return item, err
}

func (s *ItemService) CreateItem(ctx context.Context, input CreateItemInput) (*models.Item, error) {
	if input.Title == "" {
		err := status.Required("title", "Title is required")
		s.track("create", err)
		return nil, err
	}

	item := models.Item{
		Title:         input.Title,
		Description:   input.Description,
		VehicleNumber: input.VehicleNumber,
		Slot:          input.Slot,
		Level:         input.Level,
		EntryTime:     models.FormatEntryTime(s.now()),
		Status:        models.ItemStatusActive,
	}

	err := s.insertWithFreshID(ctx, &item)
	s.track("create", err)
	if err != nil {
		return nil, err
	}

	s.monitor.AddItemsStored(1)
	s.publish(ctx, models.ItemEvent{Type: models.EventItemCreated, ItemID: item.ID, Item: &item})
	return &item, nil
}

func (s *ItemService) insertWithFreshID(ctx context.Context, item *models.Item) error {
	for attempt := 1; attempt <= maxIDAttempts; attempt++ {
		item.ID = s.newID()

		err := s.Store.Insert(ctx, *item)
		if err == nil {
			return nil
		}
		if !errors.Is(err, repository.ErrDuplicateID) {
			return err
		}
		slog.Warn("Generated item id already taken, retrying", "id", item.ID, "attempt", attempt)
	}
	return fmt.Errorf("%w after %d attempts", status.ErrIDExhausted, maxIDAttempts)
}

func (s *ItemService) UpdateItemStatus(ctx context.Context, id, newStatus string) (*models.Item, error) {
	if newStatus == "" {
		err := status.Required("status", "Status is required")
		s.track("update_status", err)
		return nil, err
	}

	item, err := s.Store.UpdateStatus(ctx, id, newStatus)
	s.track("update_status", err)
	if err != nil {
		return nil, err
	}

	s.publish(ctx, models.ItemEvent{Type: models.EventItemUpdated, ItemID: item.ID, Item: item})
	return item, nil
}

func (s *ItemService) DeleteItem(ctx context.Context, id string) error {
	err := s.Store.Delete(ctx, id)
	s.track("delete", err)
	if err != nil {
		return err
	}

	s.monitor.AddItemsStored(-1)
	s.publish(ctx, models.ItemEvent{Type: models.EventItemDeleted, ItemID: id})
	return nil
}

// SeedSamples inserts the sample tickets into an empty store and reports how
// many were written.
func (s *ItemService) SeedSamples(ctx context.Context) (int, error) {
	count, err := s.Store.Count(ctx)
	if err != nil {
		return 0, err
	}
	if count > 0 {
		s.monitor.SetItemsStored(count)
		return 0, nil
	}

	inserted := 0
	for _, sample := range models.SampleItems() {
		err := s.Store.Insert(ctx, sample)
		if errors.Is(err, repository.ErrDuplicateID) {
			continue
		}
		if err != nil {
			return inserted, fmt.Errorf("seed item %s: %w", sample.ID, err)
		}
		inserted++
	}

	s.monitor.SetItemsStored(inserted)
	return inserted, nil
}

// SyncMetrics refreshes the stored-items gauge from the store.
func (s *ItemService) SyncMetrics(ctx context.Context) error {
	count, err := s.Store.Count(ctx)
	if err != nil {
		return err
	}
	s.monitor.SetItemsStored(count)
	return nil
}

func (s *ItemService) publish(ctx context.Context, event models.ItemEvent) {
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.monitor.TrackPublish("failure")
		slog.Error("Failed to publish item event", "type", event.Type, "item_id", event.ItemID, "error", err)
		return
	}
	s.monitor.TrackPublish("success")
}

func (s *ItemService) track(operation string, err error) {
	switch {
	case err == nil:
		s.monitor.TrackItemOperation(operation, "success")
	case errors.Is(err, status.ErrItemNotFound):
		s.monitor.TrackItemOperation(operation, "not_found")
	case errors.Is(err, status.ErrValidation):
		s.monitor.TrackItemOperation(operation, "invalid")
	default:
		s.monitor.TrackItemOperation(operation, "error")
	}
}
