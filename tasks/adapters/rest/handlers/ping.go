package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"sort"
	"time"

	"taskboard/tasks/core"
	"taskboard/tasks/pkg/res"
)

// NewPingHandler reports "ok" or "down" per dependency; any "down" makes it 503.
func NewPingHandler(log *slog.Logger, deps map[string]core.Pinger, timeout time.Duration) http.HandlerFunc {
	names := make([]string, 0, len(deps))
	for name := range deps {
		names = append(names, name)
	}
	sort.Strings(names)

	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), timeout)
		defer cancel()

		out := make(map[string]string, len(names))
		code := http.StatusOK

		for _, name := range names {
			if err := deps[name].Ping(ctx); err != nil {
				log.Warn("ping failed", "dependency", name, "error", err)
				out[name] = "down"
				code = http.StatusServiceUnavailable
				continue
			}
			out[name] = "ok"
		}

		res.Json(w, map[string]any{"services": out}, code)
	}
}
