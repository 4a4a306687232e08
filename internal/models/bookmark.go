package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Bookmark represents a post saved by a user
type Bookmark struct {
	ID        primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	UserID    uint               `json:"user_id" bson:"user_id"`
	PostID    primitive.ObjectID `json:"post_id" bson:"post_id"`
	CreatedAt time.Time          `json:"created_at" bson:"created_at"`
}

type BookmarkView struct {
	BookmarkID   primitive.ObjectID `json:"bookmark_id"`
	BookmarkedAt time.Time          `json:"bookmarked_at"`
	Post         *Post              `json:"post"`
}
