package repositories

import (
	"context"
	"time"

	"github.com/anonto42/inkwell/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// BookmarkRepository defines the interface for bookmark operations
type BookmarkRepository interface {
	CreateBookmark(ctx context.Context, bookmark *models.Bookmark) error
	DeleteBookmark(ctx context.Context, userID uint, postID primitive.ObjectID) (bool, error)
	IsBookmarked(ctx context.Context, userID uint, postID primitive.ObjectID) (bool, error)
	ListByUser(ctx context.Context, userID uint, skip, limit int64) ([]models.Bookmark, error)
	CountByUser(ctx context.Context, userID uint) (int64, error)
}

// MongoBookmarkRepository implements BookmarkRepository
type MongoBookmarkRepository struct {
	collection *mongo.Collection
}

func NewMongoBookmarkRepository(db *mongo.Database) *MongoBookmarkRepository {
	return &MongoBookmarkRepository{collection: db.Collection(bookmarksCollection)}
}

func (r *MongoBookmarkRepository) CreateBookmark(ctx context.Context, bookmark *models.Bookmark) error {
	bookmark.ID = primitive.NewObjectID()
	bookmark.CreatedAt = time.Now().UTC()
	_, err := r.collection.InsertOne(ctx, bookmark)
	return translate(err)
}

func (r *MongoBookmarkRepository) DeleteBookmark(ctx context.Context, userID uint, postID primitive.ObjectID) (bool, error) {
	res, err := r.collection.DeleteOne(ctx, bson.M{"user_id": userID, "post_id": postID})
	if err != nil {
		return false, err
	}
	return res.DeletedCount > 0, nil
}

func (r *MongoBookmarkRepository) IsBookmarked(ctx context.Context, userID uint, postID primitive.ObjectID) (bool, error) {
	n, err := r.collection.CountDocuments(ctx, bson.M{"user_id": userID, "post_id": postID})
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *MongoBookmarkRepository) ListByUser(ctx context.Context, userID uint, skip, limit int64) ([]models.Bookmark, error) {
	return findAll[models.Bookmark](ctx, r.collection, bson.M{"user_id": userID}, page(skip, limit, bson.D{{Key: "created_at", Value: -1}}))
}

func (r *MongoBookmarkRepository) CountByUser(ctx context.Context, userID uint) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{"user_id": userID})
}
