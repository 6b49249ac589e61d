package repositories

import (
	"context"
	"time"

	"github.com/locketbot/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MomentRepository defines the interface for the received-moments feed
type MomentRepository interface {
	InsertMoment(ctx context.Context, moment *models.Moment) error
	GetMomentsByRecipient(ctx context.Context, recipientID uint, skip, limit int64) ([]models.Moment, int64, error)
	DeleteMomentsByMediaItem(ctx context.Context, mediaItemID uint) error
}

// MongoMomentRepository implements MomentRepository for MongoDB
type MongoMomentRepository struct {
	collection *mongo.Collection
}

// NewMongoMomentRepository creates a new MongoMomentRepository
func NewMongoMomentRepository(db *mongo.Database) *MongoMomentRepository {
	return &MongoMomentRepository{collection: db.Collection("moments")}
}

// InsertMoment inserts a feed document for one successful delivery
func (r *MongoMomentRepository) InsertMoment(ctx context.Context, moment *models.Moment) error {
	moment.ID = primitive.NewObjectID()
	if moment.DeliveredAt.IsZero() {
		moment.DeliveredAt = time.Now()
	}
	_, err := r.collection.InsertOne(ctx, moment)
	return err
}

// GetMomentsByRecipient retrieves a recipient's feed with pagination, newest first
func (r *MongoMomentRepository) GetMomentsByRecipient(ctx context.Context, recipientID uint, skip, limit int64) ([]models.Moment, int64, error) {
	filter := bson.M{"recipient_id": recipientID}

	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	findOptions := options.Find().SetSkip(skip).SetLimit(limit).
		SetSort(bson.D{{Key: "delivered_at", Value: -1}})
	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	var moments []models.Moment
	if err = cursor.All(ctx, &moments); err != nil {
		return nil, 0, err
	}
	return moments, total, nil
}

// DeleteMomentsByMediaItem removes all feed documents for a deleted media item
func (r *MongoMomentRepository) DeleteMomentsByMediaItem(ctx context.Context, mediaItemID uint) error {
	_, err := r.collection.DeleteMany(ctx, bson.M{"media_item_id": mediaItemID})
	return err
}
