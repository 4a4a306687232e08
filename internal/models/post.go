package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type PostStatus string

const (
	PostStatusDraft     PostStatus = "draft"
	PostStatusPublished PostStatus = "published"
	PostStatusScheduled PostStatus = "scheduled"
)

// Post represents a blog post stored in MongoDB
type Post struct {
	ID          primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	AuthorID    uint               `json:"author_id" bson:"author_id"`
	Title       string             `json:"title" bson:"title"`
	Content     string             `json:"content" bson:"content"`
	Tags        []string           `json:"tags" bson:"tags"`
	Status      PostStatus         `json:"status" bson:"status"`
	PublishedAt *time.Time         `json:"published_at,omitempty" bson:"published_at"`
	LikesCount  int64              `json:"likes_count" bson:"likes_count"`
	ViewsCount  int64              `json:"views_count" bson:"views_count"`
	CreatedAt   time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at" bson:"updated_at"`
}

// CreatePostRequest defines the request body for creating a new post
type CreatePostRequest struct {
	Title       string     `json:"title" validate:"required,min=1,max=200"`
	Content     string     `json:"content" validate:"required,min=1"`
	Tags        []string   `json:"tags,omitempty" validate:"omitempty,max=10,dive,min=1,max=30"`
	Status      PostStatus `json:"status,omitempty" validate:"omitempty,oneof=draft published scheduled"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
}

// UpdatePostRequest defines the request body for updating an existing post
type UpdatePostRequest struct {
	Title   string     `json:"title,omitempty" validate:"omitempty,min=1,max=200"`
	Content string     `json:"content,omitempty" validate:"omitempty,min=1"`
	Tags    []string   `json:"tags,omitempty" validate:"omitempty,max=10,dive,min=1,max=30"`
	Status  PostStatus `json:"status,omitempty" validate:"omitempty,oneof=draft published"`
}

// SchedulePostRequest sets the date a post goes live.
type SchedulePostRequest struct {
	PublishAt time.Time `json:"publishAt" validate:"required"`
}

// PostView is a post with its author's public profile.
type PostView struct {
	Post
	Author *UserCompact `json:"author"`
}

type PostListQuery struct {
	Page     int  `query:"page"`
	Limit    int  `query:"limit"`
	AuthorID uint `query:"author_id"`
}
