package deliverylogRepo

import (
	"context"
	"fmt"
	"time"

	"vecino/database"
	"vecino/models"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoDeliveryLogRepo implements DeliveryLogRepository using MongoDB.
type MongoDeliveryLogRepo struct {
	coll *mongo.Collection
}

// NewMongoDeliveryLogRepo creates a new instance of DeliveryLogRepository using MongoDB.
func NewMongoDeliveryLogRepo() DeliveryLogRepository {
	coll := database.MongoClient.Database("vecino").Collection("delivery_logs")
	repo := &MongoDeliveryLogRepo{coll: coll}

	if err := repo.ensureIndexes(); err != nil {
		fmt.Printf("failed to create indexes: %v\n", err)
	}
	return repo
}

func newContext(timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), timeout)
}

func (r *MongoDeliveryLogRepo) ensureIndexes() error {
	ctx, cancel := newContext(10 * time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "notificationId", Value: 1}, {Key: "createdAt", Value: 1}}},
		{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "createdAt", Value: -1}}},
	}

	_, err := r.coll.Indexes().CreateMany(ctx, indexModels)
	if err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}
	return nil
}

// Append persists one send-attempt record.
func (r *MongoDeliveryLogRepo) Append(log *models.DeliveryLog) error {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	if log.ID == "" {
		log.ID = uuid.NewString()
	}
	if log.CreatedAt.IsZero() {
		log.CreatedAt = time.Now()
	}

	if _, err := r.coll.InsertOne(ctx, log); err != nil {
		return fmt.Errorf("failed to append delivery log: %w", err)
	}
	return nil
}

// AppendDelivered records an async provider confirmation as a new record.
// The original sent record keeps its identity; the transition carries the
// same notification/channel pair with status delivered.
func (r *MongoDeliveryLogRepo) AppendDelivered(notificationID string, channel models.Channel, providerMessageID string, at time.Time) error {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	var origin models.DeliveryLog
	filter := bson.M{"notificationId": notificationID, "channel": channel}
	opts := options.FindOne().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	if err := r.coll.FindOne(ctx, filter, opts).Decode(&origin); err != nil {
		if err == mongo.ErrNoDocuments {
			return fmt.Errorf("no delivery log for notification %s channel %s", notificationID, channel)
		}
		return fmt.Errorf("failed to fetch delivery log: %w", err)
	}

	transition := &models.DeliveryLog{
		ID:                uuid.NewString(),
		NotificationID:    notificationID,
		UserID:            origin.UserID,
		Channel:           channel,
		Status:            models.DeliveryDelivered,
		Provider:          origin.Provider,
		ProviderMessageID: providerMessageID,
		CreatedAt:         time.Now(),
		DeliveredAt:       &at,
	}
	if _, err := r.coll.InsertOne(ctx, transition); err != nil {
		return fmt.Errorf("failed to append delivered transition: %w", err)
	}
	return nil
}

// FindByNotification returns all attempts for one notification, oldest first.
func (r *MongoDeliveryLogRepo) FindByNotification(notificationID string) ([]models.DeliveryLog, error) {
	ctx, cancel := newContext(10 * time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}})
	cursor, err := r.coll.Find(ctx, bson.M{"notificationId": notificationID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch delivery logs for notification %s: %w", notificationID, err)
	}
	defer cursor.Close(ctx)

	var logs []models.DeliveryLog
	if err := cursor.All(ctx, &logs); err != nil {
		return nil, fmt.Errorf("failed to decode delivery logs: %w", err)
	}
	return logs, nil
}

// FindByUserRange returns the user's logs within [start, end].
func (r *MongoDeliveryLogRepo) FindByUserRange(userID string, start, end *time.Time) ([]models.DeliveryLog, error) {
	ctx, cancel := newContext(10 * time.Second)
	defer cancel()

	filter := bson.M{"userId": userID}
	if start != nil || end != nil {
		created := bson.M{}
		if start != nil {
			created["$gte"] = *start
		}
		if end != nil {
			created["$lte"] = *end
		}
		filter["createdAt"] = created
	}

	cursor, err := r.coll.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch delivery logs for user %s: %w", userID, err)
	}
	defer cursor.Close(ctx)

	var logs []models.DeliveryLog
	if err := cursor.All(ctx, &logs); err != nil {
		return nil, fmt.Errorf("failed to decode delivery logs: %w", err)
	}
	return logs, nil
}
