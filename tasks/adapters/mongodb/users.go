package mongodb

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"taskboard/tasks/core"
)

func (db *DB) CreateUser(ctx context.Context, u core.User) (core.User, error) {
	u.CreatedAt = db.now().UTC()

	doc := userToDoc(u)
	doc.ID = primitive.NewObjectID()

	if _, err := db.users.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return core.User{}, core.ErrUserAlreadyExists
		}
		return core.User{}, fmt.Errorf("insert user: %w", err)
	}
	return docToUser(doc), nil
}

func (db *DB) GetUserByEmail(ctx context.Context, email string) (core.User, error) {
	var doc userDoc
	if err := db.users.FindOne(ctx, bson.M{"email": email}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return core.User{}, core.ErrUserNotFound
		}
		return core.User{}, fmt.Errorf("get user: %w", err)
	}
	return docToUser(doc), nil
}

func (db *DB) ListUsers(ctx context.Context) ([]core.User, error) {
	cur, err := db.users.Find(ctx, bson.M{},
		options.Find().
			SetProjection(bson.M{"password": 0}).
			SetSort(bson.D{{Key: "_id", Value: 1}}),
	)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}

	var docs []userDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode users: %w", err)
	}

	out := make([]core.User, 0, len(docs))
	for _, d := range docs {
		out = append(out, docToUser(d))
	}
	return out, nil
}
