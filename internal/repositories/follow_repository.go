package repositories

import (
	"context"
	"time"

	"github.com/anonto42/inkwell/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// FollowRepository defines the interface for follow data operations
type FollowRepository interface {
	CreateFollow(ctx context.Context, follow *models.Follow) error
	DeleteFollow(ctx context.Context, followerID, followingID uint) (bool, error)
	IsFollowing(ctx context.Context, followerID, followingID uint) (bool, error)
	ListFollowers(ctx context.Context, userID uint, skip, limit int64) ([]models.Follow, error)
	ListFollowing(ctx context.Context, userID uint, skip, limit int64) ([]models.Follow, error)
	CountFollowers(ctx context.Context, userID uint) (int64, error)
	CountFollowing(ctx context.Context, userID uint) (int64, error)
}

// MongoFollowRepository implements FollowRepository for MongoDB
type MongoFollowRepository struct {
	collection *mongo.Collection
}

// NewMongoFollowRepository creates a new MongoFollowRepository
func NewMongoFollowRepository(db *mongo.Database) *MongoFollowRepository {
	return &MongoFollowRepository{collection: db.Collection(followsCollection)}
}

func (r *MongoFollowRepository) CreateFollow(ctx context.Context, follow *models.Follow) error {
	follow.ID = primitive.NewObjectID()
	follow.CreatedAt = time.Now().UTC()
	_, err := r.collection.InsertOne(ctx, follow)
	return translate(err)
}

// DeleteFollow reports whether a follow edge was removed.
func (r *MongoFollowRepository) DeleteFollow(ctx context.Context, followerID, followingID uint) (bool, error) {
	res, err := r.collection.DeleteOne(ctx, bson.M{"follower_id": followerID, "following_id": followingID})
	if err != nil {
		return false, err
	}
	return res.DeletedCount > 0, nil
}

func (r *MongoFollowRepository) IsFollowing(ctx context.Context, followerID, followingID uint) (bool, error) {
	n, err := r.collection.CountDocuments(ctx, bson.M{"follower_id": followerID, "following_id": followingID})
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// ListFollowers returns edges pointing at userID, newest first.
func (r *MongoFollowRepository) ListFollowers(ctx context.Context, userID uint, skip, limit int64) ([]models.Follow, error) {
	return findAll[models.Follow](ctx, r.collection, bson.M{"following_id": userID}, page(skip, limit, bson.D{{Key: "created_at", Value: -1}}))
}

// ListFollowing returns edges starting at userID, newest first.
func (r *MongoFollowRepository) ListFollowing(ctx context.Context, userID uint, skip, limit int64) ([]models.Follow, error) {
	return findAll[models.Follow](ctx, r.collection, bson.M{"follower_id": userID}, page(skip, limit, bson.D{{Key: "created_at", Value: -1}}))
}

func (r *MongoFollowRepository) CountFollowers(ctx context.Context, userID uint) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{"following_id": userID})
}

func (r *MongoFollowRepository) CountFollowing(ctx context.Context, userID uint) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{"follower_id": userID})
}
