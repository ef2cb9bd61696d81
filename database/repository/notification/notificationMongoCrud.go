package notificationRepo

import (
	"errors"
	"fmt"
	"time"

	"vecino/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// ErrNotFound is returned when no notification matches the given ID.
var ErrNotFound = errors.New("notification not found")

// Create inserts a new notification document.
func (r *MongoNotificationRepo) Create(n *models.Notification) error {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	now := time.Now()
	n.CreatedAt = now
	n.UpdatedAt = now

	_, err := r.coll.InsertOne(ctx, n)
	if err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}
	return nil
}

// CreateMany inserts a batch of notification documents in one write.
func (r *MongoNotificationRepo) CreateMany(ns []*models.Notification) error {
	if len(ns) == 0 {
		return nil
	}
	ctx, cancel := newContext(10 * time.Second)
	defer cancel()

	now := time.Now()
	docs := make([]any, 0, len(ns))
	for _, n := range ns {
		n.CreatedAt = now
		n.UpdatedAt = now
		docs = append(docs, n)
	}

	if _, err := r.coll.InsertMany(ctx, docs); err != nil {
		return fmt.Errorf("failed to create notifications batch: %w", err)
	}
	return nil
}

// GetByID retrieves a notification document by its ID.
func (r *MongoNotificationRepo) GetByID(id string) (*models.Notification, error) {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	var n models.Notification
	if err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&n); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch notification with id %s: %w", id, err)
	}
	return &n, nil
}

// Update replaces the stored document for the notification.
func (r *MongoNotificationRepo) Update(n *models.Notification) error {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	n.UpdatedAt = time.Now()
	filter := bson.M{"id": n.ID}
	update := bson.M{"$set": n}

	result, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to update notification with id %s: %w", n.ID, err)
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateFields applies a partial $set-style update.
func (r *MongoNotificationRepo) UpdateFields(id string, fields map[string]any) error {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	set := bson.M{"updatedAt": time.Now()}
	for k, v := range fields {
		set[k] = v
	}

	result, err := r.coll.UpdateOne(ctx, bson.M{"id": id}, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("failed to update notification with id %s: %w", id, err)
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// MarkDispatching atomically claims a pending notification for dispatch.
// The status filter makes the update conditional: a concurrent sweep worker
// that already claimed the record leaves MatchedCount at zero.
func (r *MongoNotificationRepo) MarkDispatching(id string) (bool, error) {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	filter := bson.M{"id": id, "status": models.StatusPending}
	update := bson.M{"$set": bson.M{
		"status":    models.StatusDispatching,
		"updatedAt": time.Now(),
	}}

	result, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, fmt.Errorf("failed to claim notification with id %s: %w", id, err)
	}
	return result.MatchedCount == 1, nil
}

// Delete removes a notification document by its ID.
func (r *MongoNotificationRepo) Delete(id string) error {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	result, err := r.coll.DeleteOne(ctx, bson.M{"id": id})
	if err != nil {
		return fmt.Errorf("failed to delete notification with id %s: %w", id, err)
	}
	if result.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
