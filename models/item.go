package models

import "time"

const (
	ItemStatusActive    = "active"
	ItemStatusCompleted = "completed"
)

// EntryTimeLayout matches the ISO-8601 local timestamps the mobile client already stores.
const EntryTimeLayout = "2006-01-02T15:04:05.000000"

// Item is a parking ticket: one vehicle occupying one slot.
type Item struct {
	ID            string `json:"id" db:"id"`
	Title         string `json:"title" db:"title"`
	Description   string `json:"description" db:"description"`
	VehicleNumber string `json:"vehicle_number" db:"vehicle_number"`
	Slot          string `json:"slot" db:"slot"`
	Level         string `json:"level" db:"level"`
	EntryTime     string `json:"entry_time" db:"entry_time"`
	Status        string `json:"status" db:"status"`
}

func FormatEntryTime(t time.Time) string {
	return t.Format(EntryTimeLayout)
}

// EntryTimestamp parses EntryTime, accepting both the fractional and the
// second-precision form used by the sample tickets.
func (i Item) EntryTimestamp() (time.Time, error) {
	if t, err := time.ParseInLocation(EntryTimeLayout, i.EntryTime, time.Local); err == nil {
		return t, nil
	}
	return time.ParseInLocation("2006-01-02T15:04:05", i.EntryTime, time.Local)
}

// SampleItems returns the tickets a fresh installation is seeded with.
func SampleItems() []Item {
	return []Item{
		{
			ID:            "1",
			Title:         "Ticket #001 - Blue Honda Civic",
			Description:   "Parked at Slot A1, Level 2",
			VehicleNumber: "MH12AB1234",
			Slot:          "A1",
			Level:         "2",
			EntryTime:     "2026-01-31T10:00:00",
			Status:        ItemStatusActive,
		},
		{
			ID:            "2",
			Title:         "Ticket #002 - White Toyota Camry",
			Description:   "Parked at Slot B3, Level 1",
			VehicleNumber: "MH14CD5678",
			Slot:          "B3",
			Level:         "1",
			EntryTime:     "2026-01-31T11:30:00",
			Status:        ItemStatusActive,
		},
		{
			ID:            "3",
			Title:         "Ticket #003 - Red Maruti Swift",
			Description:   "Parked at Slot C5, Level 3",
			VehicleNumber: "MH01EF9012",
			Slot:          "C5",
			Level:         "3",
			EntryTime:     "2026-01-31T09:15:00",
			Status:        ItemStatusCompleted,
		},
	}
}
