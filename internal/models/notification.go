package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type NotificationType string

const (
	NotificationComment NotificationType = "comment"
	NotificationLike    NotificationType = "like"
	NotificationFollow  NotificationType = "follow"
	NotificationReply   NotificationType = "reply"
)

// Notification is append-only apart from the Read flag.
type Notification struct {
	ID               primitive.ObjectID  `json:"id" bson:"_id,omitempty"`
	UserID           uint                `json:"user_id" bson:"user_id"` // recipient
	Type             NotificationType    `json:"type" bson:"type"`
	RelatedUserID    uint                `json:"related_user_id" bson:"related_user_id"` // actor
	RelatedPostID    *primitive.ObjectID `json:"related_post_id,omitempty" bson:"related_post_id"`
	RelatedCommentID *primitive.ObjectID `json:"related_comment_id,omitempty" bson:"related_comment_id"`
	Read             bool                `json:"read" bson:"read"`
	Message          string              `json:"message" bson:"message"`
	CreatedAt        time.Time           `json:"created_at" bson:"created_at"`
	UpdatedAt        time.Time           `json:"updated_at" bson:"updated_at"`
}

// NotificationView includes actor info. Actor is nil when the actor account
// has been removed.
type NotificationView struct {
	Notification
	Actor *UserCompact `json:"actor"`
}

type NotificationQuery struct {
	Page       int  `query:"page"`
	Limit      int  `query:"limit"`
	UnreadOnly bool `query:"unread_only"`
}
