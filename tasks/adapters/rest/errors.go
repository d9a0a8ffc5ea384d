package rest

import (
	"errors"
	"log/slog"
	"net/http"

	"taskboard/tasks/core"
	"taskboard/tasks/pkg/res"
)

func WriteErr(w http.ResponseWriter, log *slog.Logger, err error) {
	var perr *core.PayloadError

	switch {
	case errors.Is(err, core.ErrForbidden):
		res.Error(w, "Access denied", http.StatusForbidden)
	case errors.Is(err, core.ErrTaskNotFound):
		res.Error(w, "Task not found", http.StatusNotFound)
	case errors.Is(err, core.ErrUserNotFound):
		res.Error(w, "User not found", http.StatusNotFound)
	case errors.Is(err, core.ErrInvalidReference):
		res.Error(w, "Invalid assignedTo user ID", http.StatusBadRequest)
	case errors.As(err, &perr):
		res.Error(w, perr.Message, http.StatusBadRequest)
	case errors.Is(err, core.ErrInvalidPayload):
		res.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, core.ErrInvalidCredentials):
		res.Error(w, "Invalid credentials", http.StatusUnauthorized)
	case errors.Is(err, core.ErrUnauthenticated):
		res.Error(w, "Unauthorized", http.StatusUnauthorized)
	case errors.Is(err, core.ErrUserAlreadyExists):
		res.Error(w, "User already exists", http.StatusConflict)
	default:
		log.Error("request failed", "error", err)
		res.Error(w, "internal error", http.StatusInternalServerError)
	}
}
