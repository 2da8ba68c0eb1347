package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/OliwiaLewandowska/som-monitor/internal/models"
)

const collResults = "results"

// ResultStore persists survey results in a MongoDB collection. One document
// per QueryResult; a survey is the set of documents sharing a timestamp.
type ResultStore struct {
	client   *mongo.Client
	database *mongo.Database
}

// NewResultStore connects to MongoDB and prepares the indexes that the
// latest-survey lookup depends on.
func NewResultStore(ctx context.Context, uri, database string) (*ResultStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	s := &ResultStore{client: client, database: client.Database(database)}
	if err := s.createIndexes(ctx); err != nil {
		client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to create indexes: %w", err)
	}
	return s, nil
}

func (s *ResultStore) createIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "timestamp", Value: -1},
			},
		},
		{
			Keys: bson.D{
				{Key: "category", Value: 1},
				{Key: "model", Value: 1},
			},
		},
	}

	_, err := s.database.Collection(collResults).Indexes().CreateMany(ctx, indexes)
	return err
}

// SaveResults inserts the survey's results as individual documents.
func (s *ResultStore) SaveResults(ctx context.Context, results []models.QueryResult) error {
	if len(results) == 0 {
		return nil
	}

	docs := make([]interface{}, len(results))
	for i, res := range results {
		docs[i] = res
	}

	if _, err := s.database.Collection(collResults).InsertMany(ctx, docs); err != nil {
		return fmt.Errorf("failed to insert results: %w", err)
	}
	return nil
}

// LoadLatest finds the most recent survey timestamp and returns every result
// belonging to it.
func (s *ResultStore) LoadLatest(ctx context.Context) ([]models.QueryResult, error) {
	coll := s.database.Collection(collResults)

	var latest models.QueryResult
	err := coll.FindOne(ctx, bson.M{}, options.FindOne().SetSort(bson.D{{Key: "timestamp", Value: -1}})).Decode(&latest)
	if err == mongo.ErrNoDocuments {
		return nil, fmt.Errorf("no results found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find latest survey: %w", err)
	}

	cursor, err := coll.Find(ctx, bson.M{"timestamp": latest.Timestamp})
	if err != nil {
		return nil, fmt.Errorf("failed to query results: %w", err)
	}
	defer cursor.Close(ctx)

	var results []models.QueryResult
	if err := cursor.All(ctx, &results); err != nil {
		return nil, fmt.Errorf("failed to decode results: %w", err)
	}
	return results, nil
}

// Close disconnects from MongoDB.
func (s *ResultStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}
