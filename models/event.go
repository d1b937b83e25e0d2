package models

const (
	EventItemCreated = "item.created"
	EventItemUpdated = "item.updated"
	EventItemDeleted = "item.deleted"
)

// ItemEvent is broadcast to realtime subscribers whenever a ticket changes.
type ItemEvent struct {
	Type   string `json:"type"`
	ItemID string `json:"item_id"`
	Item   *Item  `json:"item,omitempty"`
}
