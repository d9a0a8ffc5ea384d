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

func (db *DB) ListTasks(ctx context.Context, f core.ListTasksFilter) ([]core.TaskView, error) {
	filter := bson.M{}
	if f.AssignedTo != nil {
		aid, err := primitive.ObjectIDFromHex(*f.AssignedTo)
		if err != nil {
			// no task can reference a malformed id
			return []core.TaskView{}, nil
		}
		filter["assignedTo"] = aid
	}

	cur, err := db.tasks.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("find tasks: %w", err)
	}

	var docs []taskDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode tasks: %w", err)
	}

	refs, err := db.populate(ctx, referencedUsers(docs))
	if err != nil {
		return nil, err
	}

	out := make([]core.TaskView, 0, len(docs))
	for _, d := range docs {
		out = append(out, docToView(d, refs))
	}
	return out, nil
}

// populate loads the name/email projection of the given users.
func (db *DB) populate(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]userDoc, error) {
	refs := make(map[primitive.ObjectID]userDoc, len(ids))
	if len(ids) == 0 {
		return refs, nil
	}

	cur, err := db.users.Find(ctx,
		bson.M{"_id": bson.M{"$in": ids}},
		options.Find().SetProjection(bson.M{"name": 1, "email": 1}),
	)
	if err != nil {
		return nil, fmt.Errorf("populate users: %w", err)
	}

	var users []userDoc
	if err := cur.All(ctx, &users); err != nil {
		return nil, fmt.Errorf("decode users: %w", err)
	}
	for _, u := range users {
		refs[u.ID] = u
	}
	return refs, nil
}

func (db *DB) GetTask(ctx context.Context, id string) (core.Task, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return core.Task{}, core.ErrTaskNotFound
	}

	var doc taskDoc
	if err := db.tasks.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return core.Task{}, core.ErrTaskNotFound
		}
		return core.Task{}, fmt.Errorf("get task: %w", err)
	}
	return docToTask(doc), nil
}

func (db *DB) CreateTask(ctx context.Context, t core.Task) (core.Task, error) {
	t = t.Normalize().WithDefaults()
	if err := t.Validate(); err != nil {
		return core.Task{}, err
	}

	now := db.now().UTC()
	t.ID = ""
	t.CreatedAt = now
	t.UpdatedAt = now

	doc, err := taskToDoc(t)
	if err != nil {
		return core.Task{}, err
	}
	doc.ID = primitive.NewObjectID()

	if _, err := db.tasks.InsertOne(ctx, doc); err != nil {
		return core.Task{}, fmt.Errorf("insert task: %w", err)
	}
	return docToTask(doc), nil
}

func (db *DB) UpdateTask(ctx context.Context, t core.Task) (core.Task, error) {
	t = t.Normalize()
	if err := t.Validate(); err != nil {
		return core.Task{}, err
	}
	t.UpdatedAt = db.now().UTC()

	doc, err := taskToDoc(t)
	if err != nil {
		return core.Task{}, err
	}

	// createdAt is immutable once stored
	set := bson.M{
		"title":       doc.Title,
		"description": doc.Description,
		"status":      doc.Status,
		"createdBy":   doc.CreatedBy,
		"updatedAt":   doc.UpdatedAt,
	}
	update := bson.M{"$set": set}
	if doc.AssignedTo != nil {
		set["assignedTo"] = *doc.AssignedTo
	} else {
		update["$unset"] = bson.M{"assignedTo": ""}
	}

	var out taskDoc
	err = db.tasks.FindOneAndUpdate(ctx,
		bson.M{"_id": doc.ID},
		update,
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&out)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return core.Task{}, core.ErrTaskNotFound
		}
		return core.Task{}, fmt.Errorf("update task: %w", err)
	}
	return docToTask(out), nil
}

func (db *DB) DeleteTask(ctx context.Context, id string) (core.Task, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return core.Task{}, core.ErrTaskNotFound
	}

	var doc taskDoc
	if err := db.tasks.FindOneAndDelete(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return core.Task{}, core.ErrTaskNotFound
		}
		return core.Task{}, fmt.Errorf("delete task: %w", err)
	}
	return docToTask(doc), nil
}
