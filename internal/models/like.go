package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TargetType names the kind of record a like points at.
type TargetType string

const (
	TargetPost    TargetType = "Post"
	TargetComment TargetType = "Comment"
)

// Like is the relation row. Its existence is the source of truth, the
// target's likes_count is derived from it.
type Like struct {
	ID         primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	UserID     uint               `json:"user_id" bson:"user_id"`
	TargetType TargetType         `json:"target_type" bson:"target_type"`
	TargetID   primitive.ObjectID `json:"target_id" bson:"target_id"`
	CreatedAt  time.Time          `json:"created_at" bson:"created_at"`
}

type ToggleLikeRequest struct {
	TargetType string `json:"target_type" validate:"required,oneof=Post Comment"`
	TargetID   string `json:"target_id" validate:"required,objectid"`
}

type LikeTargetQuery struct {
	TargetType string `query:"target_type" validate:"required,oneof=Post Comment"`
	TargetID   string `query:"target_id" validate:"required,objectid"`
}

// LikeView pairs a like with its target. Target is nil when the liked record
// no longer exists.
type LikeView struct {
	Like
	Target interface{} `json:"target"`
}
