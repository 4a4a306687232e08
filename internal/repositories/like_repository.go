package repositories

import (
	"context"
	"time"

	"github.com/anonto42/inkwell/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// LikeRepository defines the interface for like data operations
type LikeRepository interface {
	FindLike(ctx context.Context, userID uint, targetType models.TargetType, targetID primitive.ObjectID) (*models.Like, error)
	CreateLike(ctx context.Context, like *models.Like) error
	DeleteLike(ctx context.Context, id primitive.ObjectID) (bool, error)
	CountLikes(ctx context.Context, targetType models.TargetType, targetID primitive.ObjectID) (int64, error)
	ListByUser(ctx context.Context, userID uint, targetType models.TargetType, skip, limit int64) ([]models.Like, error)
	CountByUser(ctx context.Context, userID uint, targetType models.TargetType) (int64, error)
}

// MongoLikeRepository implements LikeRepository for MongoDB
type MongoLikeRepository struct {
	collection *mongo.Collection
}

// NewMongoLikeRepository creates a new MongoLikeRepository
func NewMongoLikeRepository(db *mongo.Database) *MongoLikeRepository {
	return &MongoLikeRepository{collection: db.Collection(likesCollection)}
}

// FindLike returns ErrNotFound when the user has not liked the target.
func (r *MongoLikeRepository) FindLike(ctx context.Context, userID uint, targetType models.TargetType, targetID primitive.ObjectID) (*models.Like, error) {
	var like models.Like
	filter := bson.M{"user_id": userID, "target_type": targetType, "target_id": targetID}
	if err := r.collection.FindOne(ctx, filter).Decode(&like); err != nil {
		return nil, translate(err)
	}
	return &like, nil
}

// CreateLike inserts the relation row. A concurrent insert of the same
// (user, target) pair fails with ErrDuplicate.
func (r *MongoLikeRepository) CreateLike(ctx context.Context, like *models.Like) error {
	like.ID = primitive.NewObjectID()
	like.CreatedAt = time.Now().UTC()
	_, err := r.collection.InsertOne(ctx, like)
	return translate(err)
}

// DeleteLike reports whether this call removed the row.
func (r *MongoLikeRepository) DeleteLike(ctx context.Context, id primitive.ObjectID) (bool, error) {
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return false, err
	}
	return res.DeletedCount > 0, nil
}

func (r *MongoLikeRepository) CountLikes(ctx context.Context, targetType models.TargetType, targetID primitive.ObjectID) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{"target_type": targetType, "target_id": targetID})
}

func userLikesFilter(userID uint, targetType models.TargetType) bson.M {
	filter := bson.M{"user_id": userID}
	if targetType != "" {
		filter["target_type"] = targetType
	}
	return filter
}

// ListByUser returns the user's likes, newest first. An empty targetType
// matches both kinds.
func (r *MongoLikeRepository) ListByUser(ctx context.Context, userID uint, targetType models.TargetType, skip, limit int64) ([]models.Like, error) {
	return findAll[models.Like](ctx, r.collection, userLikesFilter(userID, targetType), page(skip, limit, bson.D{{Key: "created_at", Value: -1}}))
}

func (r *MongoLikeRepository) CountByUser(ctx context.Context, userID uint, targetType models.TargetType) (int64, error) {
	return r.collection.CountDocuments(ctx, userLikesFilter(userID, targetType))
}
