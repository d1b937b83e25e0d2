package utils

import (
	"github.com/google/uuid"
)

// ItemIDLength is the length of generated ticket ids.
const ItemIDLength = 8

// GenerateItemID returns a short random ticket id: the leading hex digits of a
// v4 UUID. Collisions are possible, so stores reject duplicates and the caller
// retries.
func GenerateItemID() string {
	return uuid.NewString()[:ItemIDLength]
}
