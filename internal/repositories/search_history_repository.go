package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/anonto42/recipe-hub/backend/internal/domain"
	"github.com/anonto42/recipe-hub/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// searchHistoryTTL is how long a search stays in a user's history.
const searchHistoryTTL = 90 * 24 * time.Hour

// SearchHistoryRepository defines the interface for per-user search history
type SearchHistoryRepository interface {
	Record(ctx context.Context, entry *models.SearchHistory) error
	GetRecent(ctx context.Context, userID string, limit int64) ([]models.SearchHistory, error)
	DeleteEntry(ctx context.Context, userID, id string) error
	Clear(ctx context.Context, userID string) (int64, error)
}

// MongoSearchHistoryRepository implements SearchHistoryRepository for MongoDB
type MongoSearchHistoryRepository struct {
	collection *mongo.Collection
}

// NewMongoSearchHistoryRepository creates a new MongoSearchHistoryRepository
func NewMongoSearchHistoryRepository(db *mongo.Database) *MongoSearchHistoryRepository {
	return &MongoSearchHistoryRepository{collection: db.Collection("search_history")}
}

// EnsureIndexes creates the lookup index and the expiry index.
func (r *MongoSearchHistoryRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}}},
		{
			Keys:    bson.D{{Key: "created_at", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(int32(searchHistoryTTL.Seconds())),
		},
	})
	if err != nil {
		return fmt.Errorf("create search history indexes: %w", err)
	}
	return nil
}

func (r *MongoSearchHistoryRepository) Record(ctx context.Context, entry *models.SearchHistory) error {
	entry.ID = primitive.NewObjectID()
	entry.CreatedAt = time.Now().UTC()
	if _, err := r.collection.InsertOne(ctx, entry); err != nil {
		return fmt.Errorf("insert search history: %w", err)
	}
	return nil
}

// GetRecent returns the user's latest searches, newest first.
func (r *MongoSearchHistoryRepository) GetRecent(ctx context.Context, userID string, limit int64) ([]models.SearchHistory, error) {
	findOptions := options.Find().SetLimit(limit).SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.M{"user_id": userID}, findOptions)
	if err != nil {
		return nil, fmt.Errorf("find search history: %w", err)
	}
	defer cursor.Close(ctx)

	history := []models.SearchHistory{}
	if err = cursor.All(ctx, &history); err != nil {
		return nil, fmt.Errorf("decode search history: %w", err)
	}
	return history, nil
}

func (r *MongoSearchHistoryRepository) DeleteEntry(ctx context.Context, userID, id string) error {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.NewValidationError("id", "invalid search history id")
	}

	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": objID, "user_id": userID})
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return fmt.Errorf("search history %s: %w", id, domain.ErrNotFound)
		}
		return fmt.Errorf("delete search history %s: %w", id, err)
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("search history %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

func (r *MongoSearchHistoryRepository) Clear(ctx context.Context, userID string) (int64, error) {
	res, err := r.collection.DeleteMany(ctx, bson.M{"user_id": userID})
	if err != nil {
		return 0, fmt.Errorf("clear search history: %w", err)
	}
	return res.DeletedCount, nil
}
