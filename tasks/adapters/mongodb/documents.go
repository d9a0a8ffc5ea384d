package mongodb

import (
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"taskboard/tasks/core"
)

type taskDoc struct {
	ID          primitive.ObjectID  `bson:"_id,omitempty"`
	Title       string              `bson:"title"`
	Description string              `bson:"description,omitempty"`
	Status      string              `bson:"status"`
	AssignedTo  *primitive.ObjectID `bson:"assignedTo,omitempty"`
	CreatedBy   primitive.ObjectID  `bson:"createdBy"`
	CreatedAt   time.Time           `bson:"createdAt"`
	UpdatedAt   time.Time           `bson:"updatedAt"`
}

type userDoc struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	Name         string             `bson:"name"`
	Email        string             `bson:"email"`
	PasswordHash string             `bson:"password,omitempty"`
	Role         string             `bson:"role,omitempty"`
	CreatedAt    time.Time          `bson:"createdAt,omitempty"`
}

func objectID(field, hex string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(hex)
	if err != nil {
		return primitive.NilObjectID, core.NewPayloadError(field, fmt.Sprintf("%s: %q is not a valid ObjectId", field, hex))
	}
	return oid, nil
}

func taskToDoc(t core.Task) (taskDoc, error) {
	doc := taskDoc{
		Title:       t.Title,
		Description: t.Description,
		Status:      string(t.Status),
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}

	if t.ID != "" {
		oid, err := objectID("_id", t.ID)
		if err != nil {
			return taskDoc{}, err
		}
		doc.ID = oid
	}

	createdBy, err := objectID("createdBy", t.CreatedBy)
	if err != nil {
		return taskDoc{}, err
	}
	doc.CreatedBy = createdBy

	if t.AssignedTo != nil {
		aid, err := objectID("assignedTo", *t.AssignedTo)
		if err != nil {
			return taskDoc{}, err
		}
		doc.AssignedTo = &aid
	}
	return doc, nil
}

func docToTask(doc taskDoc) core.Task {
	t := core.Task{
		ID:          doc.ID.Hex(),
		Title:       doc.Title,
		Description: doc.Description,
		Status:      core.TaskStatus(doc.Status),
		CreatedBy:   doc.CreatedBy.Hex(),
		CreatedAt:   doc.CreatedAt,
		UpdatedAt:   doc.UpdatedAt,
	}
	if doc.AssignedTo != nil {
		aid := doc.AssignedTo.Hex()
		t.AssignedTo = &aid
	}
	return t
}

// docToView expands references using refs, keyed by user id.
func docToView(doc taskDoc, refs map[primitive.ObjectID]userDoc) core.TaskView {
	v := core.TaskView{
		ID:          doc.ID.Hex(),
		Title:       doc.Title,
		Description: doc.Description,
		Status:      core.TaskStatus(doc.Status),
		CreatedBy:   core.UserRef{ID: doc.CreatedBy.Hex()},
		CreatedAt:   doc.CreatedAt,
		UpdatedAt:   doc.UpdatedAt,
	}
	if u, ok := refs[doc.CreatedBy]; ok {
		v.CreatedBy.Name = u.Name
	}
	if doc.AssignedTo != nil {
		if u, ok := refs[*doc.AssignedTo]; ok {
			v.AssignedTo = &core.UserRef{ID: u.ID.Hex(), Name: u.Name, Email: u.Email}
		}
	}
	return v
}

// referencedUsers returns the distinct user ids a page of tasks points at.
func referencedUsers(docs []taskDoc) []primitive.ObjectID {
	seen := make(map[primitive.ObjectID]struct{}, len(docs))
	out := make([]primitive.ObjectID, 0, len(docs))
	add := func(id primitive.ObjectID) {
		if id.IsZero() {
			return
		}
		if _, ok := seen[id]; ok {
			return
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	for _, d := range docs {
		add(d.CreatedBy)
		if d.AssignedTo != nil {
			add(*d.AssignedTo)
		}
	}
	return out
}

func userToDoc(u core.User) userDoc {
	return userDoc{
		Name:         u.Name,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		Role:         string(u.Role),
		CreatedAt:    u.CreatedAt,
	}
}

func docToUser(doc userDoc) core.User {
	return core.User{
		ID:           doc.ID.Hex(),
		Name:         doc.Name,
		Email:        doc.Email,
		PasswordHash: doc.PasswordHash,
		Role:         core.Role(doc.Role),
		CreatedAt:    doc.CreatedAt,
	}
}
