package store

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Default Mongo locations, overridable through MongoConfig.
const (
	DefaultMongoURI        = "mongodb://localhost:27017"
	DefaultMongoDatabase   = "benchdef"
	DefaultMongoCollection = "snapshots"
)

// MongoConfig configures the MongoDB connection.
type MongoConfig struct {
	URI        string
	Database   string
	Collection string
}

// MongoStore is a MongoDB-backed snapshot store for shared deployments.
type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// NewMongoStore connects to MongoDB and verifies the connection with a ping.
func NewMongoStore(ctx context.Context, cfg MongoConfig) (*MongoStore, error) {
	if cfg.URI == "" {
		cfg.URI = DefaultMongoURI
	}
	if cfg.Database == "" {
		cfg.Database = DefaultMongoDatabase
	}
	if cfg.Collection == "" {
		cfg.Collection = DefaultMongoCollection
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	return &MongoStore{
		client: client,
		coll:   client.Database(cfg.Database).Collection(cfg.Collection),
	}, nil
}

func (s *MongoStore) Publish(ctx context.Context, snap *Snapshot) error {
	_, err := s.coll.InsertOne(ctx, snap)
	if mongo.IsDuplicateKeyError(err) {
		return ErrDuplicateID
	}
	if err != nil {
		return fmt.Errorf("insert snapshot: %w", err)
	}
	return nil
}

func (s *MongoStore) Get(ctx context.Context, id string) (*Snapshot, error) {
	var snap Snapshot
	err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&snap)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find snapshot: %w", err)
	}
	return &snap, nil
}

func (s *MongoStore) Latest(ctx context.Context) (*Snapshot, error) {
	opts := options.FindOne().SetSort(bson.D{{Key: "created_at", Value: -1}})
	var snap Snapshot
	err := s.coll.FindOne(ctx, bson.M{}, opts).Decode(&snap)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find latest snapshot: %w", err)
	}
	return &snap, nil
}

func (s *MongoStore) List(ctx context.Context, limit int) ([]Info, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetProjection(bson.M{"definitions": 0})
	if limit > 0 {
		opts = opts.SetLimit(int64(limit))
	}

	cursor, err := s.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}
	defer cursor.Close(ctx)

	var infos []Info
	if err := cursor.All(ctx, &infos); err != nil {
		return nil, fmt.Errorf("decode snapshot listing: %w", err)
	}
	return infos, nil
}

func (s *MongoStore) Delete(ctx context.Context, id string) error {
	res, err := s.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete snapshot: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

var _ Store = (*MongoStore)(nil)
