package repositories

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"gorm.io/gorm"
)

const (
	postsCollection         = "posts"
	commentsCollection      = "comments"
	likesCollection         = "likes"
	followsCollection       = "follows"
	bookmarksCollection     = "bookmarks"
	notificationsCollection = "notifications"
)

var (
	// ErrNotFound is returned when the requested record does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when an insert violates a unique index.
	ErrDuplicate = errors.New("duplicate key")
	// ErrInvalidID is returned for identifiers that are not ObjectID hex strings.
	ErrInvalidID = errors.New("invalid object id")
)

// ParseObjectID converts a hex identifier, wrapping ErrInvalidID on failure.
func ParseObjectID(id string) (primitive.ObjectID, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	return objID, nil
}

// translate maps driver errors onto the package sentinels.
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments), errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case mongo.IsDuplicateKeyError(err), errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%w: %v", ErrDuplicate, err)
	default:
		return err
	}
}

func findAll[T any](ctx context.Context, coll *mongo.Collection, filter interface{}, opts ...*options.FindOptions) ([]T, error) {
	cursor, err := coll.Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	out := make([]T, 0)
	if err := cursor.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func page(skip, limit int64, sort bson.D) *options.FindOptions {
	return options.Find().SetSkip(skip).SetLimit(limit).SetSort(sort)
}

func afterUpdate() *options.FindOneAndUpdateOptions {
	return options.FindOneAndUpdate().SetReturnDocument(options.After)
}

// EnsureIndexes creates the unique relation keys and the listing indexes.
// Uniqueness of likes, follows and bookmarks depends on these existing.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	specs := map[string][]mongo.IndexModel{
		likesCollection: {
			{
				Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "target_type", Value: 1}, {Key: "target_id", Value: 1}},
				Options: options.Index().SetUnique(true).SetName("ux_like_user_target"),
			},
			{Keys: bson.D{{Key: "target_type", Value: 1}, {Key: "target_id", Value: 1}}},
			{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}}},
		},
		followsCollection: {
			{
				Keys:    bson.D{{Key: "follower_id", Value: 1}, {Key: "following_id", Value: 1}},
				Options: options.Index().SetUnique(true).SetName("ux_follow_pair"),
			},
			{Keys: bson.D{{Key: "following_id", Value: 1}, {Key: "created_at", Value: -1}}},
		},
		bookmarksCollection: {
			{
				Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "post_id", Value: 1}},
				Options: options.Index().SetUnique(true).SetName("ux_bookmark_user_post"),
			},
			{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}}},
		},
		commentsCollection: {
			{Keys: bson.D{{Key: "post_id", Value: 1}, {Key: "parent_comment_id", Value: 1}}},
			{Keys: bson.D{{Key: "parent_comment_id", Value: 1}, {Key: "created_at", Value: 1}}},
		},
		notificationsCollection: {
			{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "read", Value: 1}, {Key: "created_at", Value: -1}}},
			{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}}},
		},
		postsCollection: {
			{Keys: bson.D{{Key: "author_id", Value: 1}, {Key: "status", Value: 1}}},
			{Keys: bson.D{{Key: "status", Value: 1}, {Key: "created_at", Value: -1}}},
			{Keys: bson.D{{Key: "status", Value: 1}, {Key: "published_at", Value: 1}}},
		},
	}

	for coll, models := range specs {
		if _, err := db.Collection(coll).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("create indexes on %s: %w", coll, err)
		}
	}
	return nil
}
