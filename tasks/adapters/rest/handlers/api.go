package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"taskboard/tasks/core"
)

type TaskService interface {
	ListTasks(ctx context.Context, p core.Principal) ([]core.TaskView, error)
	CreateTask(ctx context.Context, p core.Principal, d core.TaskDraft) (core.Task, error)
	UpdateTask(ctx context.Context, p core.Principal, id string, patch core.TaskPatch) (core.Task, error)
	DeleteTask(ctx context.Context, p core.Principal, id string) error
}

type UserService interface {
	Register(ctx context.Context, in core.RegisterInput) (core.User, error)
	Login(ctx context.Context, email, password string) (core.Session, error)
	ListUsers(ctx context.Context) ([]core.User, error)
}

type Deps struct {
	Tasks   TaskService
	Users   UserService
	Pingers map[string]core.Pinger
	Auth    func(http.Handler) http.Handler
	Metrics http.Handler
}

func Register(mux *http.ServeMux, log *slog.Logger, deps Deps, timeout time.Duration) {
	auth := deps.Auth

	// ping
	mux.Handle("GET /api/ping", NewPingHandler(log, deps.Pingers, timeout))
	if deps.Metrics != nil {
		mux.Handle("GET /metrics", deps.Metrics)
	}

	// users
	mux.Handle("POST /api/users/register", NewRegisterHandler(log, deps.Users, timeout))
	mux.Handle("POST /api/users/login", NewLoginHandler(log, deps.Users, timeout))
	mux.Handle("GET /api/users", auth(NewListUsersHandler(log, deps.Users, timeout)))

	// tasks
	mux.Handle("GET /api/tasks", auth(NewListTasksHandler(log, deps.Tasks, timeout)))
	mux.Handle("POST /api/tasks", auth(NewCreateTaskHandler(log, deps.Tasks, timeout)))
	mux.Handle("PUT /api/tasks/{id}", auth(NewUpdateTaskHandler(log, deps.Tasks, timeout)))
	mux.Handle("PATCH /api/tasks/{id}", auth(NewUpdateTaskHandler(log, deps.Tasks, timeout)))
	mux.Handle("DELETE /api/tasks/{id}", auth(NewDeleteTaskHandler(log, deps.Tasks, timeout)))
}
