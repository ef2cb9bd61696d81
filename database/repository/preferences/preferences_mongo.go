package preferencesRepo

import (
	"context"
	"fmt"
	"time"

	"vecino/database"
	"vecino/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoPreferencesRepo implements PreferencesRepository using MongoDB.
type MongoPreferencesRepo struct {
	coll *mongo.Collection
}

// NewMongoPreferencesRepo creates a new instance of PreferencesRepository using MongoDB.
func NewMongoPreferencesRepo() PreferencesRepository {
	coll := database.MongoClient.Database("vecino").Collection("notification_preferences")
	repo := &MongoPreferencesRepo{coll: coll}

	if err := repo.ensureIndexes(); err != nil {
		fmt.Printf("failed to create indexes: %v\n", err)
	}
	return repo
}

func newContext(timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), timeout)
}

func (r *MongoPreferencesRepo) ensureIndexes() error {
	ctx, cancel := newContext(10 * time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		{Keys: bson.D{{Key: "userId", Value: 1}}, Options: options.Index().SetUnique(true)},
	}

	_, err := r.coll.Indexes().CreateMany(ctx, indexModels)
	if err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}
	return nil
}

// GetByUserID retrieves the preferences document for a user.
func (r *MongoPreferencesRepo) GetByUserID(userID string) (*models.NotificationPreferences, error) {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	var prefs models.NotificationPreferences
	if err := r.coll.FindOne(ctx, bson.M{"userId": userID}).Decode(&prefs); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch preferences for user %s: %w", userID, err)
	}
	return &prefs, nil
}

// Create inserts a new preferences document.
func (r *MongoPreferencesRepo) Create(prefs *models.NotificationPreferences) error {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	now := time.Now()
	prefs.CreatedAt = now
	prefs.UpdatedAt = now

	if _, err := r.coll.InsertOne(ctx, prefs); err != nil {
		return fmt.Errorf("failed to create preferences for user %s: %w", prefs.UserID, err)
	}
	return nil
}

// ApplyPatch merges a partial update into the stored document. Dotted $set
// paths keep untouched nested keys intact, which is what gives the patch its
// merge-not-replace semantics.
func (r *MongoPreferencesRepo) ApplyPatch(userID string, patch models.PreferencesPatch) error {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	set := bson.M{"updatedAt": time.Now()}
	if patch.EnablePush != nil {
		set["enablePush"] = *patch.EnablePush
	}
	if patch.EnableEmail != nil {
		set["enableEmail"] = *patch.EnableEmail
	}
	if patch.EnableSms != nil {
		set["enableSms"] = *patch.EnableSms
	}
	if patch.EnableInApp != nil {
		set["enableInApp"] = *patch.EnableInApp
	}
	if patch.QuietHours != nil {
		set["quietHours.start"] = patch.QuietHours.Start
		set["quietHours.end"] = patch.QuietHours.End
	}
	for typ, tp := range patch.TypePreferences {
		prefix := "typePreferences." + typ + "."
		if tp.Enabled != nil {
			set[prefix+"enabled"] = *tp.Enabled
		}
		if tp.Channels != nil {
			set[prefix+"channels"] = tp.Channels
		}
		if tp.Priority != nil {
			set[prefix+"priority"] = *tp.Priority
		}
	}

	result, err := r.coll.UpdateOne(ctx, bson.M{"userId": userID}, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("failed to patch preferences for user %s: %w", userID, err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("preferences for user %s not found", userID)
	}
	return nil
}

// Replace overwrites the preferences document wholesale.
func (r *MongoPreferencesRepo) Replace(prefs *models.NotificationPreferences) error {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	prefs.UpdatedAt = time.Now()
	opts := options.Replace().SetUpsert(true)
	if _, err := r.coll.ReplaceOne(ctx, bson.M{"userId": prefs.UserID}, prefs, opts); err != nil {
		return fmt.Errorf("failed to replace preferences for user %s: %w", prefs.UserID, err)
	}
	return nil
}

// ClearQuietHours removes the quiet-hours window from the document.
func (r *MongoPreferencesRepo) ClearQuietHours(userID string) error {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	update := bson.M{
		"$unset": bson.M{"quietHours": ""},
		"$set":   bson.M{"updatedAt": time.Now()},
	}
	result, err := r.coll.UpdateOne(ctx, bson.M{"userId": userID}, update)
	if err != nil {
		return fmt.Errorf("failed to clear quiet hours for user %s: %w", userID, err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("preferences for user %s not found", userID)
	}
	return nil
}
