package repositories

import (
	"context"
	"time"

	"github.com/anonto42/inkwell/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// CommentRepository defines the interface for comment data operations
type CommentRepository interface {
	CreateComment(ctx context.Context, comment *models.Comment) error
	GetCommentByID(ctx context.Context, id primitive.ObjectID) (*models.Comment, error)
	GetCommentsByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Comment, error)
	ListRootComments(ctx context.Context, postID primitive.ObjectID, skip, limit int64) ([]models.Comment, error)
	CountRootComments(ctx context.Context, postID primitive.ObjectID) (int64, error)
	ListReplies(ctx context.Context, parentIDs []primitive.ObjectID) ([]models.Comment, error)
	ChildIDs(ctx context.Context, parentIDs []primitive.ObjectID) ([]primitive.ObjectID, error)
	UpdateContent(ctx context.Context, id primitive.ObjectID, content string) (*models.Comment, error)
	DeleteComments(ctx context.Context, ids []primitive.ObjectID) (int64, error)
	IncrementLikesCount(ctx context.Context, id primitive.ObjectID) error
	DecrementLikesCount(ctx context.Context, id primitive.ObjectID) error
}

// MongoCommentRepository implements CommentRepository for MongoDB
type MongoCommentRepository struct {
	collection *mongo.Collection
}

// NewMongoCommentRepository creates a new MongoCommentRepository
func NewMongoCommentRepository(db *mongo.Database) *MongoCommentRepository {
	return &MongoCommentRepository{collection: db.Collection(commentsCollection)}
}

// CreateComment creates a new comment in MongoDB
func (r *MongoCommentRepository) CreateComment(ctx context.Context, comment *models.Comment) error {
	now := time.Now().UTC()
	comment.ID = primitive.NewObjectID()
	comment.CreatedAt = now
	comment.UpdatedAt = now
	_, err := r.collection.InsertOne(ctx, comment)
	return translate(err)
}

// GetCommentByID retrieves a comment by ID from MongoDB
func (r *MongoCommentRepository) GetCommentByID(ctx context.Context, id primitive.ObjectID) (*models.Comment, error) {
	var comment models.Comment
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&comment); err != nil {
		return nil, translate(err)
	}
	return &comment, nil
}

func (r *MongoCommentRepository) GetCommentsByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Comment, error) {
	if len(ids) == 0 {
		return []models.Comment{}, nil
	}
	return findAll[models.Comment](ctx, r.collection, bson.M{"_id": bson.M{"$in": ids}})
}

// ListRootComments returns a page of top-level comments, newest first.
func (r *MongoCommentRepository) ListRootComments(ctx context.Context, postID primitive.ObjectID, skip, limit int64) ([]models.Comment, error) {
	filter := bson.M{"post_id": postID, "parent_comment_id": nil}
	return findAll[models.Comment](ctx, r.collection, filter, page(skip, limit, bson.D{{Key: "created_at", Value: -1}}))
}

func (r *MongoCommentRepository) CountRootComments(ctx context.Context, postID primitive.ObjectID) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{"post_id": postID, "parent_comment_id": nil})
}

// ListReplies returns the direct children of all parentIDs in one query,
// oldest first.
func (r *MongoCommentRepository) ListReplies(ctx context.Context, parentIDs []primitive.ObjectID) ([]models.Comment, error) {
	if len(parentIDs) == 0 {
		return []models.Comment{}, nil
	}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	return findAll[models.Comment](ctx, r.collection, bson.M{"parent_comment_id": bson.M{"$in": parentIDs}}, opts)
}

// ChildIDs returns only the ids of the direct children of parentIDs.
func (r *MongoCommentRepository) ChildIDs(ctx context.Context, parentIDs []primitive.ObjectID) ([]primitive.ObjectID, error) {
	if len(parentIDs) == 0 {
		return nil, nil
	}
	opts := options.Find().SetProjection(bson.M{"_id": 1})
	cursor, err := r.collection.Find(ctx, bson.M{"parent_comment_id": bson.M{"$in": parentIDs}}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var ids []primitive.ObjectID
	for cursor.Next(ctx) {
		var doc struct {
			ID primitive.ObjectID `bson:"_id"`
		}
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		ids = append(ids, doc.ID)
	}
	return ids, cursor.Err()
}

// UpdateContent replaces the body and marks the comment edited.
func (r *MongoCommentRepository) UpdateContent(ctx context.Context, id primitive.ObjectID, content string) (*models.Comment, error) {
	now := time.Now().UTC()
	update := bson.M{"$set": bson.M{
		"content":    content,
		"is_edited":  true,
		"edited_at":  now,
		"updated_at": now,
	}}

	var comment models.Comment
	if err := r.collection.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, afterUpdate()).Decode(&comment); err != nil {
		return nil, translate(err)
	}
	return &comment, nil
}

// DeleteComments removes all ids in a single statement and reports how many
// were removed.
func (r *MongoCommentRepository) DeleteComments(ctx context.Context, ids []primitive.ObjectID) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res, err := r.collection.DeleteMany(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

func (r *MongoCommentRepository) IncrementLikesCount(ctx context.Context, id primitive.ObjectID) error {
	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$inc": bson.M{"likes_count": 1}})
	return err
}

func (r *MongoCommentRepository) DecrementLikesCount(ctx context.Context, id primitive.ObjectID) error {
	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$inc": bson.M{"likes_count": -1}})
	return err
}
