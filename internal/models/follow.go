package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Follow represents a directed follow relationship
type Follow struct {
	ID          primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	FollowerID  uint               `json:"follower_id" bson:"follower_id"`
	FollowingID uint               `json:"following_id" bson:"following_id"`
	CreatedAt   time.Time          `json:"created_at" bson:"created_at"`
}

type FollowCounts struct {
	FollowersCount int64 `json:"followers_count"`
	FollowingCount int64 `json:"following_count"`
}
