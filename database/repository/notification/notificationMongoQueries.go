package notificationRepo

import (
	"fmt"
	"time"

	"vecino/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// maxQueryLimit caps listing results regardless of the requested limit.
const maxQueryLimit = 100

// FindDue returns pending notifications whose scheduled time has passed.
// Records with no scheduledAt were due at creation and match as well.
func (r *MongoNotificationRepo) FindDue(now time.Time, limit int) ([]models.Notification, error) {
	ctx, cancel := newContext(10 * time.Second)
	defer cancel()

	if limit <= 0 || limit > maxQueryLimit {
		limit = maxQueryLimit
	}

	filter := bson.M{
		"status": models.StatusPending,
		"$or": bson.A{
			bson.M{"scheduledAt": bson.M{"$lte": now}},
			bson.M{"scheduledAt": nil},
		},
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "scheduledAt", Value: 1}}).
		SetLimit(int64(limit))

	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find due notifications: %w", err)
	}
	defer cursor.Close(ctx)

	var due []models.Notification
	if err := cursor.All(ctx, &due); err != nil {
		return nil, fmt.Errorf("failed to decode due notifications: %w", err)
	}
	return due, nil
}

// Query lists notifications newest-first according to the filter.
func (r *MongoNotificationRepo) Query(filter QueryFilter) ([]models.Notification, error) {
	ctx, cancel := newContext(10 * time.Second)
	defer cancel()

	query := bson.M{}
	if filter.UserID != "" {
		query["userId"] = filter.UserID
	}
	if filter.Type != "" {
		query["type"] = filter.Type
	}
	if filter.Status != "" {
		query["status"] = filter.Status
	}
	if filter.Priority != "" {
		query["priority"] = filter.Priority
	}
	if filter.UnreadOnly {
		query["readAt"] = nil
	}
	if filter.StartDate != nil || filter.EndDate != nil {
		created := bson.M{}
		if filter.StartDate != nil {
			created["$gte"] = *filter.StartDate
		}
		if filter.EndDate != nil {
			created["$lte"] = *filter.EndDate
		}
		query["createdAt"] = created
	}

	limit := filter.Limit
	if limit <= 0 || limit > maxQueryLimit {
		limit = maxQueryLimit
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetLimit(int64(limit))

	cursor, err := r.coll.Find(ctx, query, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query notifications: %w", err)
	}
	defer cursor.Close(ctx)

	var out []models.Notification
	if err := cursor.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("failed to decode notifications: %w", err)
	}
	return out, nil
}

// MarkRead sets readAt once. The readAt filter makes re-marking an
// already-read notification a no-op rather than an error.
func (r *MongoNotificationRepo) MarkRead(id string, at time.Time) error {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	exists := r.coll.FindOne(ctx, bson.M{"id": id})
	if err := exists.Err(); err != nil {
		return ErrNotFound
	}

	filter := bson.M{"id": id, "readAt": nil}
	update := bson.M{"$set": bson.M{"readAt": at, "updatedAt": time.Now()}}
	if _, err := r.coll.UpdateOne(ctx, filter, update); err != nil {
		return fmt.Errorf("failed to mark notification %s read: %w", id, err)
	}
	return nil
}

// MarkAllRead sets readAt on every unread notification of the user.
func (r *MongoNotificationRepo) MarkAllRead(userID string, at time.Time) (int64, error) {
	ctx, cancel := newContext(10 * time.Second)
	defer cancel()

	filter := bson.M{"userId": userID, "readAt": nil}
	update := bson.M{"$set": bson.M{"readAt": at, "updatedAt": time.Now()}}

	result, err := r.coll.UpdateMany(ctx, filter, update)
	if err != nil {
		return 0, fmt.Errorf("failed to mark notifications read for user %s: %w", userID, err)
	}
	return result.ModifiedCount, nil
}

// CountUnread returns the number of unread notifications for the user.
func (r *MongoNotificationRepo) CountUnread(userID string) (int64, error) {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	count, err := r.coll.CountDocuments(ctx, bson.M{"userId": userID, "readAt": nil})
	if err != nil {
		return 0, fmt.Errorf("failed to count unread notifications for user %s: %w", userID, err)
	}
	return count, nil
}
