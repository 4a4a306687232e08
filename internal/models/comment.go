package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Comment is a node of the per-post comment tree. Root comments have a nil
// ParentCommentID, stored as an explicit null so roots can be queried.
type Comment struct {
	ID              primitive.ObjectID  `json:"id" bson:"_id,omitempty"`
	PostID          primitive.ObjectID  `json:"post_id" bson:"post_id"`
	UserID          uint                `json:"user_id" bson:"user_id"`
	ParentCommentID *primitive.ObjectID `json:"parent_comment_id" bson:"parent_comment_id"`
	Content         string              `json:"content" bson:"content"`
	LikesCount      int64               `json:"likes_count" bson:"likes_count"`
	IsEdited        bool                `json:"is_edited" bson:"is_edited"`
	EditedAt        *time.Time          `json:"edited_at,omitempty" bson:"edited_at"`
	CreatedAt       time.Time           `json:"created_at" bson:"created_at"`
	UpdatedAt       time.Time           `json:"updated_at" bson:"updated_at"`
}

// CreateCommentRequest defines the request body for creating a new comment
type CreateCommentRequest struct {
	PostID          string `json:"post_id" validate:"required,objectid"`
	Content         string `json:"content" validate:"required,min=1,max=1000"`
	ParentCommentID string `json:"parent_comment_id,omitempty" validate:"omitempty,objectid"`
}

// UpdateCommentRequest defines the request body for updating an existing comment
type UpdateCommentRequest struct {
	Content string `json:"content" validate:"required,min=1,max=1000"`
}

// CommentView is a comment decorated for display. Replies is only filled on
// root comments.
type CommentView struct {
	Comment
	Author  *UserCompact  `json:"author"`
	IsOwner bool          `json:"is_owner"`
	Replies []CommentView `json:"replies,omitempty"`
}
