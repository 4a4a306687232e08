package repositories

import (
	"context"
	"time"

	"github.com/anonto42/inkwell/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// NotificationRepository defines the interface for notification operations
type NotificationRepository interface {
	CreateNotification(ctx context.Context, notification *models.Notification) error
	List(ctx context.Context, userID uint, unreadOnly bool, skip, limit int64) ([]models.Notification, error)
	Count(ctx context.Context, userID uint, unreadOnly bool) (int64, error)
	MarkAsRead(ctx context.Context, id primitive.ObjectID, userID uint) (*models.Notification, error)
	MarkAllAsRead(ctx context.Context, userID uint) (int64, error)
}

type mongoNotificationRepository struct {
	collection *mongo.Collection
}

func NewMongoNotificationRepository(db *mongo.Database) NotificationRepository {
	return &mongoNotificationRepository{collection: db.Collection(notificationsCollection)}
}

func (r *mongoNotificationRepository) CreateNotification(ctx context.Context, notification *models.Notification) error {
	now := time.Now().UTC()
	if notification.ID.IsZero() {
		notification.ID = primitive.NewObjectID()
	}
	notification.CreatedAt = now
	notification.UpdatedAt = now
	_, err := r.collection.InsertOne(ctx, notification)
	return translate(err)
}

func recipientFilter(userID uint, unreadOnly bool) bson.M {
	filter := bson.M{"user_id": userID}
	if unreadOnly {
		filter["read"] = false
	}
	return filter
}

// List returns the recipient's notifications, newest first.
func (r *mongoNotificationRepository) List(ctx context.Context, userID uint, unreadOnly bool, skip, limit int64) ([]models.Notification, error) {
	return findAll[models.Notification](ctx, r.collection, recipientFilter(userID, unreadOnly), page(skip, limit, bson.D{{Key: "created_at", Value: -1}}))
}

func (r *mongoNotificationRepository) Count(ctx context.Context, userID uint, unreadOnly bool) (int64, error) {
	return r.collection.CountDocuments(ctx, recipientFilter(userID, unreadOnly))
}

// MarkAsRead flips the flag only when the notification belongs to userID.
// Someone else's notification is reported as ErrNotFound.
func (r *mongoNotificationRepository) MarkAsRead(ctx context.Context, id primitive.ObjectID, userID uint) (*models.Notification, error) {
	var n models.Notification
	filter := bson.M{"_id": id, "user_id": userID}
	update := bson.M{"$set": bson.M{"read": true, "updated_at": time.Now().UTC()}}
	if err := r.collection.FindOneAndUpdate(ctx, filter, update, afterUpdate()).Decode(&n); err != nil {
		return nil, translate(err)
	}
	return &n, nil
}

func (r *mongoNotificationRepository) MarkAllAsRead(ctx context.Context, userID uint) (int64, error) {
	res, err := r.collection.UpdateMany(ctx,
		bson.M{"user_id": userID, "read": false},
		bson.M{"$set": bson.M{"read": true, "updated_at": time.Now().UTC()}},
	)
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}
