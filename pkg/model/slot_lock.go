package model

import (
	"fmt"
	"time"
)

// SlotLock is an advisory lock serializing booking writes for a single
// (professional, slot start) pair. The unique _id makes concurrent acquirers
// collide on a duplicate key; the TTL index on expires_at reaps locks held by
// crashed requests.
type SlotLock struct {
	ID        string    `bson:"_id" json:"id"`
	ExpiresAt time.Time `bson:"expires_at" json:"expires_at"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}

// SlotLockID derives the lock key from the slot coordinates.
func SlotLockID(professionalID string, start time.Time) string {
	return fmt.Sprintf("slot_%s_%d", professionalID, start.UTC().Unix())
}
