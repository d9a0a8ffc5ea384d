package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"taskboard/tasks/adapters/rest"
	"taskboard/tasks/core"
	"taskboard/tasks/pkg/res"
)

func NewRegisterHandler(log *slog.Logger, svc UserService, timeout time.Duration) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in rest.RegisterIn
		if !decodeJSON(w, r, &in) {
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), timeout)
		defer cancel()

		u, err := svc.Register(ctx, core.RegisterInput{
			Name:     in.Name,
			Email:    in.Email,
			Password: in.Password,
			Role:     core.Role(in.Role),
		})
		if err != nil {
			rest.WriteErr(w, log, err)
			return
		}

		log.Info("user registered", "user_id", u.ID, "role", u.Role)
		res.Json(w, u, http.StatusCreated)
	}
}

func NewLoginHandler(log *slog.Logger, svc UserService, timeout time.Duration) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in rest.LoginIn
		if !decodeJSON(w, r, &in) {
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), timeout)
		defer cancel()

		s, err := svc.Login(ctx, in.Email, in.Password)
		if err != nil {
			rest.WriteErr(w, log, err)
			return
		}
		res.Json(w, s, http.StatusOK)
	}
}

func NewListUsersHandler(log *slog.Logger, svc UserService, timeout time.Duration) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), timeout)
		defer cancel()

		items, err := svc.ListUsers(ctx)
		if err != nil {
			rest.WriteErr(w, log, err)
			return
		}
		res.Json(w, items, http.StatusOK)
	}
}
