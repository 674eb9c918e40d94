package model

import "time"

// RoomLock is an advisory lock serializing booking writers per room. The
// lock id doubles as the unique _id, so a second writer's insert fails with
// a duplicate key error. ExpiresAt backs a TTL index that reaps locks left
// behind by a crashed process.
type RoomLock struct {
	ID        string    `bson:"_id" json:"id"`
	RoomID    string    `bson:"room_id" json:"room_id"`
	ExpiresAt time.Time `bson:"expires_at" json:"expires_at"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}
