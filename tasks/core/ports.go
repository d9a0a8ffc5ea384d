package core

import "context"

type Pinger interface {
	Ping(ctx context.Context) error
}

// DB is the document store the services run on.
type DB interface {
	Pinger

	// ValidID reports whether id is syntactically a reference this store could have issued.
	ValidID(id string) bool

	// tasks
	ListTasks(ctx context.Context, f ListTasksFilter) ([]TaskView, error)
	GetTask(ctx context.Context, id string) (Task, error)
	CreateTask(ctx context.Context, t Task) (Task, error)
	UpdateTask(ctx context.Context, t Task) (Task, error)
	DeleteTask(ctx context.Context, id string) (Task, error)

	// users
	CreateUser(ctx context.Context, u User) (User, error)
	GetUserByEmail(ctx context.Context, email string) (User, error)
	ListUsers(ctx context.Context) ([]User, error)
}

type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) error
}

type TokenIssuer interface {
	Issue(p Principal) (string, error)
}
