package mongodb

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const (
	tasksCollection = "tasks"
	usersCollection = "users"

	connectTimeout = 10 * time.Second
)

type DB struct {
	log    *slog.Logger
	client *mongo.Client
	tasks  *mongo.Collection
	users  *mongo.Collection
	now    func() time.Time
}

func New(ctx context.Context, log *slog.Logger, uri, database string) (*DB, error) {
	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		log.Error("connection problem", "database", database, "error", err)
		return nil, err
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		log.Error("connection problem", "database", database, "error", err)
		return nil, err
	}

	d := client.Database(database)
	return &DB{
		log:    log,
		client: client,
		tasks:  d.Collection(tasksCollection),
		users:  d.Collection(usersCollection),
		now:    time.Now,
	}, nil
}

func (db *DB) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()
	return db.client.Disconnect(ctx)
}

func (db *DB) Ping(ctx context.Context) error {
	return db.client.Ping(ctx, readpref.Primary())
}

func (db *DB) ValidID(id string) bool {
	return primitive.IsValidObjectID(id)
}

// EnsureIndexes creates the indexes the store relies on. It is idempotent.
func (db *DB) EnsureIndexes(ctx context.Context) error {
	db.log.Debug("ensuring mongo indexes")

	_, err := db.users.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("users_email_unique"),
	})
	if err != nil {
		return fmt.Errorf("create users email index: %w", err)
	}

	_, err = db.tasks.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "assignedTo", Value: 1}},
		Options: options.Index().SetName("tasks_assigned_to"),
	})
	if err != nil {
		return fmt.Errorf("create tasks assignedTo index: %w", err)
	}

	db.log.Debug("mongo indexes ready")
	return nil
}
