package middleware

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"taskboard/tasks/core"
)

type staticVerifier struct {
	token string
	p     core.Principal
}

func (v staticVerifier) Verify(token string) (core.Principal, error) {
	if token != v.token {
		return core.Principal{}, errors.New("bad token")
	}
	return v.p, nil
}

func TestAuth(t *testing.T) {
	t.Parallel()

	want := core.Principal{ID: "u1", Role: core.RoleMember}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	var got core.Principal
	h := Auth(log, staticVerifier{token: "good", p: want})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = PrincipalFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	testCases := []struct {
		name   string
		header string
		code   int
		body   string
	}{
		{name: "missing", header: "", code: http.StatusUnauthorized, body: "missing token"},
		{name: "wrong_scheme", header: "Basic abc", code: http.StatusUnauthorized, body: "missing token"},
		{name: "invalid", header: "Bearer bad", code: http.StatusUnauthorized, body: "invalid token"},
		{name: "valid", header: "bearer good", code: http.StatusNoContent},
	}

	for _, tc := range testCases {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if tc.header != "" {
			req.Header.Set("Authorization", tc.header)
		}
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)

		if rr.Code != tc.code {
			t.Fatalf("%s: expected %d, got %d", tc.name, tc.code, rr.Code)
		}
		if tc.body != "" && !strings.Contains(rr.Body.String(), `"message":"`+tc.body+`"`) {
			t.Fatalf("%s: unexpected body %s", tc.name, rr.Body.String())
		}
	}

	if got != want {
		t.Fatalf("expected principal %+v in context, got %+v", want, got)
	}
}

func TestRequestIDMiddleware(t *testing.T) {
	t.Parallel()

	var seen string
	h := RequestIDMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = RequestID(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if seen != "abc-123" || rr.Header().Get(RequestIDHeader) != "abc-123" {
		t.Fatalf("incoming request id not kept: ctx=%q header=%q", seen, rr.Header().Get(RequestIDHeader))
	}

	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	if seen == "" || rr.Header().Get(RequestIDHeader) != seen {
		t.Fatalf("request id not generated: ctx=%q header=%q", seen, rr.Header().Get(RequestIDHeader))
	}
}

func TestCORS(t *testing.T) {
	t.Parallel()

	called := false
	h := CORS(CORSOptions{AllowedOrigins: []string{"http://app.local"}})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	req := httptest.NewRequest(http.MethodOptions, "/api/tasks", nil)
	req.Header.Set("Origin", "http://app.local")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusNoContent || called {
		t.Fatalf("preflight should short-circuit with 204, got %d called=%v", rr.Code, called)
	}
	if rr.Header().Get("Access-Control-Allow-Origin") != "http://app.local" {
		t.Fatalf("unexpected allow-origin %q", rr.Header().Get("Access-Control-Allow-Origin"))
	}

	req = httptest.NewRequest(http.MethodGet, "/api/tasks", nil)
	req.Header.Set("Origin", "http://evil.local")
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if !called || rr.Header().Get("Access-Control-Allow-Origin") != "" {
		t.Fatalf("foreign origin must pass through without CORS headers")
	}
}

func TestBodyLimit(t *testing.T) {
	t.Parallel()

	h := BodyLimit(8)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, err := io.ReadAll(r.Body); err != nil {
			w.WriteHeader(http.StatusRequestEntityTooLarge)
		}
	}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(strings.Repeat("x", 64))))
	if rr.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("expected 413, got %d", rr.Code)
	}
}

func TestMetrics_RouteLabel(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/tasks/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := Chain(RecordRoute(mux), Logging(log), m.Middleware)

	for _, path := range []string{"/api/tasks/1", "/api/tasks/2", "/nowhere"} {
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	if got := testutil.ToFloat64(m.requestsTotal.WithLabelValues("GET", "GET /api/tasks/{id}", "418")); got != 2 {
		t.Fatalf("expected 2 requests on the pattern, got %v", got)
	}
	if got := testutil.ToFloat64(m.requestsTotal.WithLabelValues("GET", "unmatched", "404")); got != 1 {
		t.Fatalf("expected 1 unmatched request, got %v", got)
	}
	if got := testutil.ToFloat64(m.inFlightRequests); got != 0 {
		t.Fatalf("expected no in-flight requests, got %v", got)
	}

	rr := httptest.NewRecorder()
	m.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if !strings.Contains(rr.Body.String(), "http_requests_total") {
		t.Fatalf("metrics endpoint does not expose http_requests_total")
	}
}

func TestChain_Order(t *testing.T) {
	t.Parallel()

	var order []string
	mw := func(name string) func(http.Handler) http.Handler {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}

	h := Chain(http.HandlerFunc(func(http.ResponseWriter, *http.Request) { order = append(order, "handler") }), mw("a"), mw("b"))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	if strings.Join(order, ",") != "a,b,handler" {
		t.Fatalf("unexpected order %v", order)
	}
}
