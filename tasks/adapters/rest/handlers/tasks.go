package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"taskboard/tasks/adapters/rest"
	"taskboard/tasks/adapters/rest/middleware"
	"taskboard/tasks/core"
	"taskboard/tasks/pkg/res"
)

func principal(w http.ResponseWriter, r *http.Request) (core.Principal, bool) {
	p, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		res.Error(w, "Unauthorized", http.StatusUnauthorized)
	}
	return p, ok
}

func NewListTasksHandler(log *slog.Logger, svc TaskService, timeout time.Duration) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, ok := principal(w, r)
		if !ok {
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), timeout)
		defer cancel()

		items, err := svc.ListTasks(ctx, p)
		if err != nil {
			rest.WriteErr(w, log, err)
			return
		}
		res.Json(w, items, http.StatusOK)
	}
}

func NewCreateTaskHandler(log *slog.Logger, svc TaskService, timeout time.Duration) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, ok := principal(w, r)
		if !ok {
			return
		}

		var in rest.CreateTaskIn
		if !decodeJSON(w, r, &in) {
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), timeout)
		defer cancel()

		t, err := svc.CreateTask(ctx, p, in.Draft())
		if err != nil {
			rest.WriteErr(w, log, err)
			return
		}
		res.Json(w, t, http.StatusCreated)
	}
}

func NewUpdateTaskHandler(log *slog.Logger, svc TaskService, timeout time.Duration) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, ok := principal(w, r)
		if !ok {
			return
		}

		id := r.PathValue("id")

		var in rest.PatchTaskIn
		if !decodeJSON(w, r, &in) {
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), timeout)
		defer cancel()

		t, err := svc.UpdateTask(ctx, p, id, in.Patch())
		if err != nil {
			rest.WriteErr(w, log, err)
			return
		}
		res.Json(w, t, http.StatusOK)
	}
}

func NewDeleteTaskHandler(log *slog.Logger, svc TaskService, timeout time.Duration) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, ok := principal(w, r)
		if !ok {
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), timeout)
		defer cancel()

		if err := svc.DeleteTask(ctx, p, r.PathValue("id")); err != nil {
			rest.WriteErr(w, log, err)
			return
		}
		res.Json(w, map[string]any{"message": "Task deleted"}, http.StatusOK)
	}
}
