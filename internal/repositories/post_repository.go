package repositories

import (
	"context"
	"time"

	"github.com/anonto42/inkwell/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// PostRepository defines the interface for post data operations
type PostRepository interface {
	CreatePost(ctx context.Context, post *models.Post) error
	GetPostByID(ctx context.Context, id primitive.ObjectID) (*models.Post, error)
	GetPostsByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Post, error)
	ListPublished(ctx context.Context, skip, limit int64) ([]models.Post, int64, error)
	ListByAuthor(ctx context.Context, authorID uint, includeDrafts bool, skip, limit int64) ([]models.Post, int64, error)
	UpdatePost(ctx context.Context, id primitive.ObjectID, req models.UpdatePostRequest) (*models.Post, error)
	SetPublication(ctx context.Context, id primitive.ObjectID, status models.PostStatus, at time.Time) (*models.Post, error)
	PublishDue(ctx context.Context, now time.Time) (int64, error)
	DeletePost(ctx context.Context, id primitive.ObjectID) error
	IncrementLikesCount(ctx context.Context, id primitive.ObjectID) error
	DecrementLikesCount(ctx context.Context, id primitive.ObjectID) error
	IncrementViewsCount(ctx context.Context, id primitive.ObjectID) error
}

// MongoPostRepository implements PostRepository for MongoDB
type MongoPostRepository struct {
	collection *mongo.Collection
}

// NewMongoPostRepository creates a new MongoPostRepository
func NewMongoPostRepository(db *mongo.Database) *MongoPostRepository {
	return &MongoPostRepository{collection: db.Collection(postsCollection)}
}

// CreatePost creates a new post in MongoDB
func (r *MongoPostRepository) CreatePost(ctx context.Context, post *models.Post) error {
	now := time.Now().UTC()
	post.ID = primitive.NewObjectID()
	post.CreatedAt = now
	post.UpdatedAt = now
	if post.Status == "" {
		post.Status = models.PostStatusDraft
	}
	if post.Status == models.PostStatusPublished && post.PublishedAt == nil {
		post.PublishedAt = &now
	}
	if post.Tags == nil {
		post.Tags = []string{}
	}
	_, err := r.collection.InsertOne(ctx, post)
	return translate(err)
}

// GetPostByID retrieves a post by ID from MongoDB
func (r *MongoPostRepository) GetPostByID(ctx context.Context, id primitive.ObjectID) (*models.Post, error) {
	var post models.Post
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&post); err != nil {
		return nil, translate(err)
	}
	return &post, nil
}

// GetPostsByIDs returns the posts that still exist among ids, in no
// particular order.
func (r *MongoPostRepository) GetPostsByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Post, error) {
	if len(ids) == 0 {
		return []models.Post{}, nil
	}
	return findAll[models.Post](ctx, r.collection, bson.M{"_id": bson.M{"$in": ids}})
}

func (r *MongoPostRepository) ListPublished(ctx context.Context, skip, limit int64) ([]models.Post, int64, error) {
	filter := bson.M{"status": models.PostStatusPublished}
	return r.list(ctx, filter, skip, limit)
}

func (r *MongoPostRepository) ListByAuthor(ctx context.Context, authorID uint, includeDrafts bool, skip, limit int64) ([]models.Post, int64, error) {
	filter := bson.M{"author_id": authorID}
	if !includeDrafts {
		filter["status"] = models.PostStatusPublished
	}
	return r.list(ctx, filter, skip, limit)
}

func (r *MongoPostRepository) list(ctx context.Context, filter bson.M, skip, limit int64) ([]models.Post, int64, error) {
	posts, err := findAll[models.Post](ctx, r.collection, filter, page(skip, limit, bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, 0, err
	}
	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	return posts, total, nil
}

// UpdatePost applies the non-empty fields of req and returns the new document
func (r *MongoPostRepository) UpdatePost(ctx context.Context, id primitive.ObjectID, req models.UpdatePostRequest) (*models.Post, error) {
	var post models.Post
	err := r.collection.FindOneAndUpdate(ctx, bson.M{"_id": id}, postUpdate(req, time.Now().UTC()), afterUpdate()).Decode(&post)
	if err != nil {
		return nil, translate(err)
	}
	return &post, nil
}

// postUpdate builds a single-stage update pipeline. Every expression in the
// stage reads the stored document, so published_at is stamped on the first
// transition into published and kept on re-publish. Client values are wrapped
// in $literal so strings starting with "$" are not read as field paths.
func postUpdate(req models.UpdatePostRequest, now time.Time) mongo.Pipeline {
	set := bson.D{{Key: "updated_at", Value: now}}
	if req.Title != "" {
		set = append(set, bson.E{Key: "title", Value: bson.M{"$literal": req.Title}})
	}
	if req.Content != "" {
		set = append(set, bson.E{Key: "content", Value: bson.M{"$literal": req.Content}})
	}
	if req.Tags != nil {
		set = append(set, bson.E{Key: "tags", Value: bson.M{"$literal": req.Tags}})
	}
	if req.Status != "" {
		set = append(set, bson.E{Key: "status", Value: bson.M{"$literal": req.Status}})
	}
	if req.Status == models.PostStatusPublished {
		set = append(set, bson.E{Key: "published_at", Value: bson.M{"$cond": bson.A{
			bson.M{"$eq": bson.A{"$status", models.PostStatusPublished}},
			bson.M{"$ifNull": bson.A{"$published_at", now}},
			now,
		}}})
	}
	return mongo.Pipeline{{{Key: "$set", Value: set}}}
}

// SetPublication moves a post to status with the given publication date.
func (r *MongoPostRepository) SetPublication(ctx context.Context, id primitive.ObjectID, status models.PostStatus, at time.Time) (*models.Post, error) {
	update := bson.M{"$set": bson.M{
		"status":       status,
		"published_at": at,
		"updated_at":   time.Now().UTC(),
	}}
	var post models.Post
	if err := r.collection.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, afterUpdate()).Decode(&post); err != nil {
		return nil, translate(err)
	}
	return &post, nil
}

// PublishDue publishes every scheduled post whose date has passed.
func (r *MongoPostRepository) PublishDue(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.collection.UpdateMany(ctx,
		dueFilter(now),
		bson.M{"$set": bson.M{"status": models.PostStatusPublished, "updated_at": now}},
	)
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}

func dueFilter(now time.Time) bson.M {
	return bson.M{
		"status":       models.PostStatusScheduled,
		"published_at": bson.M{"$lte": now},
	}
}

// DeletePost deletes a post by ID from MongoDB
func (r *MongoPostRepository) DeletePost(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// IncrementLikesCount increments the likes count of a post
func (r *MongoPostRepository) IncrementLikesCount(ctx context.Context, id primitive.ObjectID) error {
	return r.inc(ctx, id, "likes_count", 1)
}

// DecrementLikesCount decrements the likes count of a post
func (r *MongoPostRepository) DecrementLikesCount(ctx context.Context, id primitive.ObjectID) error {
	return r.inc(ctx, id, "likes_count", -1)
}

func (r *MongoPostRepository) IncrementViewsCount(ctx context.Context, id primitive.ObjectID) error {
	return r.inc(ctx, id, "views_count", 1)
}

func (r *MongoPostRepository) inc(ctx context.Context, id primitive.ObjectID, field string, delta int) error {
	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$inc": bson.M{field: delta}})
	return err
}
