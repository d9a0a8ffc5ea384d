// Package memory keeps tasks and users in process memory. It backs the
// "memory" storage driver and the tests.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"taskboard/tasks/core"
)

type DB struct {
	mu sync.RWMutex

	tasks     map[string]core.Task
	taskOrder []string

	users     map[string]core.User
	userOrder []string
	byEmail   map[string]string

	now func() time.Time
}

func New() *DB {
	return &DB{
		tasks:   make(map[string]core.Task),
		users:   make(map[string]core.User),
		byEmail: make(map[string]string),
		now:     time.Now,
	}
}

func cloneTask(t core.Task) core.Task {
	out := t
	if t.AssignedTo != nil {
		aid := *t.AssignedTo
		out.AssignedTo = &aid
	}
	return out
}

func (db *DB) Ping(context.Context) error {
	return nil
}

func (db *DB) Close() error {
	return nil
}

// ValidID accepts only the canonical lowercase form. Ids are compared as
// strings, so "{...}", "urn:uuid:..." or upper case would never match.
func (db *DB) ValidID(id string) bool {
	u, err := uuid.Parse(id)
	return err == nil && u.String() == id
}

// Tasks

func (db *DB) ListTasks(_ context.Context, f core.ListTasksFilter) ([]core.TaskView, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	out := make([]core.TaskView, 0, len(db.taskOrder))
	for _, id := range db.taskOrder {
		t := db.tasks[id]
		if f.AssignedTo != nil && (t.AssignedTo == nil || *t.AssignedTo != *f.AssignedTo) {
			continue
		}
		out = append(out, db.populate(t))
	}
	return out, nil
}

// populate expects db.mu to be held.
func (db *DB) populate(t core.Task) core.TaskView {
	v := core.TaskView{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Status:      t.Status,
		CreatedBy:   core.UserRef{ID: t.CreatedBy},
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
	if u, ok := db.users[t.CreatedBy]; ok {
		v.CreatedBy.Name = u.Name
	}
	if t.AssignedTo != nil {
		if u, ok := db.users[*t.AssignedTo]; ok {
			v.AssignedTo = &core.UserRef{ID: u.ID, Name: u.Name, Email: u.Email}
		}
	}
	return v
}

func (db *DB) GetTask(_ context.Context, id string) (core.Task, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	t, ok := db.tasks[id]
	if !ok {
		return core.Task{}, core.ErrTaskNotFound
	}
	return cloneTask(t), nil
}

func (db *DB) CreateTask(_ context.Context, t core.Task) (core.Task, error) {
	t = t.Normalize().WithDefaults()
	if err := t.Validate(); err != nil {
		return core.Task{}, err
	}

	db.mu.Lock()
	defer db.mu.Unlock()

	now := db.now()
	t.ID = uuid.NewString()
	t.CreatedAt = now
	t.UpdatedAt = now

	db.tasks[t.ID] = cloneTask(t)
	db.taskOrder = append(db.taskOrder, t.ID)
	return cloneTask(t), nil
}

func (db *DB) UpdateTask(_ context.Context, t core.Task) (core.Task, error) {
	t = t.Normalize()
	if err := t.Validate(); err != nil {
		return core.Task{}, err
	}

	db.mu.Lock()
	defer db.mu.Unlock()

	cur, ok := db.tasks[t.ID]
	if !ok {
		return core.Task{}, core.ErrTaskNotFound
	}

	t.CreatedAt = cur.CreatedAt
	t.UpdatedAt = db.now()

	db.tasks[t.ID] = cloneTask(t)
	return cloneTask(t), nil
}

func (db *DB) DeleteTask(_ context.Context, id string) (core.Task, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	t, ok := db.tasks[id]
	if !ok {
		return core.Task{}, core.ErrTaskNotFound
	}

	delete(db.tasks, id)
	for i, tid := range db.taskOrder {
		if tid == id {
			db.taskOrder = append(db.taskOrder[:i], db.taskOrder[i+1:]...)
			break
		}
	}
	return t, nil
}

// Users

func (db *DB) CreateUser(_ context.Context, u core.User) (core.User, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	if _, ok := db.byEmail[u.Email]; ok {
		return core.User{}, core.ErrUserAlreadyExists
	}

	u.ID = uuid.NewString()
	u.CreatedAt = db.now()

	db.users[u.ID] = u
	db.userOrder = append(db.userOrder, u.ID)
	db.byEmail[u.Email] = u.ID
	return u, nil
}

func (db *DB) GetUserByEmail(_ context.Context, email string) (core.User, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	id, ok := db.byEmail[email]
	if !ok {
		return core.User{}, core.ErrUserNotFound
	}
	return db.users[id], nil
}

func (db *DB) ListUsers(context.Context) ([]core.User, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	out := make([]core.User, 0, len(db.userOrder))
	for _, id := range db.userOrder {
		out = append(out, db.users[id])
	}
	return out, nil
}

// TaskCount is used by tests asserting that a rejected operation left the store untouched.
func (db *DB) TaskCount() int {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return len(db.tasks)
}
