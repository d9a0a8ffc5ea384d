package core_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"taskboard/tasks/adapters/auth"
	"taskboard/tasks/adapters/memory"
	"taskboard/tasks/core"
)

func newUserService(allowAdmin bool) (*memory.DB, *auth.JWT, *core.UserService) {
	return newUserServiceWithLog(slog.New(slog.NewTextHandler(io.Discard, nil)), allowAdmin)
}

func newUserServiceWithLog(log *slog.Logger, allowAdmin bool) (*memory.DB, *auth.JWT, *core.UserService) {
	db := memory.New()
	tokens := auth.NewJWT("test-secret", time.Hour)
	return db, tokens, core.NewUserService(log, db, auth.NewBcrypt(4), tokens, allowAdmin)
}

func TestUserServiceRegisterAndLogin(t *testing.T) {
	t.Parallel()

	_, tokens, svc := newUserService(false)
	ctx := context.Background()

	u, err := svc.Register(ctx, core.RegisterInput{
		Name:     "Alice",
		Email:    "  Alice@Example.com ",
		Password: "secret1",
	})
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	if u.Role != core.RoleMember {
		t.Fatalf("expected default role member, got %q", u.Role)
	}
	if u.Email != "alice@example.com" {
		t.Fatalf("expected normalized email, got %q", u.Email)
	}
	if u.PasswordHash == "" || u.PasswordHash == "secret1" {
		t.Fatalf("expected hashed password, got %q", u.PasswordHash)
	}

	session, err := svc.Login(ctx, "ALICE@example.com", "secret1")
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}
	if session.User.ID != u.ID {
		t.Fatalf("expected user %q, got %q", u.ID, session.User.ID)
	}

	p, err := tokens.Verify(session.Token)
	if err != nil {
		t.Fatalf("issued token does not verify: %v", err)
	}
	if p.ID != u.ID || p.Role != core.RoleMember {
		t.Fatalf("unexpected principal from token: %+v", p)
	}
}

func TestUserServiceRegister_Validation(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name  string
		in    core.RegisterInput
		field string
	}{
		{name: "missing_name", in: core.RegisterInput{Email: "a@b.c", Password: "secret1"}, field: "name"},
		{name: "missing_email", in: core.RegisterInput{Name: "a", Password: "secret1"}, field: "email"},
		{name: "bad_email", in: core.RegisterInput{Name: "a", Email: "nope", Password: "secret1"}, field: "email"},
		{name: "short_password", in: core.RegisterInput{Name: "a", Email: "a@b.c", Password: "123"}, field: "password"},
		{name: "long_password", in: core.RegisterInput{Name: "a", Email: "a@b.c", Password: strings.Repeat("x", 73)}, field: "password"},
		{name: "bad_role", in: core.RegisterInput{Name: "a", Email: "a@b.c", Password: "secret1", Role: "root"}, field: "role"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			_, _, svc := newUserService(false)
			_, err := svc.Register(context.Background(), tc.in)

			var perr *core.PayloadError
			if !errors.As(err, &perr) {
				t.Fatalf("expected payload error, got %v", err)
			}
			if perr.Field != tc.field {
				t.Fatalf("expected field %q, got %q", tc.field, perr.Field)
			}
			if !errors.Is(err, core.ErrInvalidPayload) {
				t.Fatalf("payload error must unwrap to ErrInvalidPayload")
			}
		})
	}
}

func TestUserServiceRegister_AdminRole(t *testing.T) {
	t.Parallel()

	in := core.RegisterInput{Name: "root", Email: "root@example.com", Password: "secret1", Role: core.RoleAdmin}

	_, _, closed := newUserService(false)
	if _, err := closed.Register(context.Background(), in); !errors.Is(err, core.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}

	_, _, open := newUserService(true)
	u, err := open.Register(context.Background(), in)
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	if u.Role != core.RoleAdmin {
		t.Fatalf("expected admin role, got %q", u.Role)
	}
}

func TestUserServiceRegister_Duplicate(t *testing.T) {
	t.Parallel()

	_, _, svc := newUserService(false)
	in := core.RegisterInput{Name: "a", Email: "a@example.com", Password: "secret1"}

	if _, err := svc.Register(context.Background(), in); err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	in.Email = "A@EXAMPLE.COM"
	if _, err := svc.Register(context.Background(), in); !errors.Is(err, core.ErrUserAlreadyExists) {
		t.Fatalf("expected ErrUserAlreadyExists, got %v", err)
	}
}

func TestUserServiceLogin_InvalidCredentials(t *testing.T) {
	t.Parallel()

	_, _, svc := newUserService(false)
	ctx := context.Background()
	if _, err := svc.Register(ctx, core.RegisterInput{Name: "a", Email: "a@example.com", Password: "secret1"}); err != nil {
		t.Fatalf("Register returned error: %v", err)
	}

	if _, err := svc.Login(ctx, "a@example.com", "wrong-password"); !errors.Is(err, core.ErrInvalidCredentials) {
		t.Fatalf("wrong password: expected ErrInvalidCredentials, got %v", err)
	}
	if _, err := svc.Login(ctx, "ghost@example.com", "secret1"); !errors.Is(err, core.ErrInvalidCredentials) {
		t.Fatalf("unknown email: expected ErrInvalidCredentials, got %v", err)
	}
}

func TestUserServiceEnsureAdmin_Idempotent(t *testing.T) {
	t.Parallel()

	db, _, svc := newUserService(false)
	ctx := context.Background()

	first, created, err := svc.EnsureAdmin(ctx, "", "Admin@Example.com", "bootstrap")
	if err != nil {
		t.Fatalf("EnsureAdmin returned error: %v", err)
	}
	if !created || first.Role != core.RoleAdmin || first.Name != "admin" {
		t.Fatalf("unexpected bootstrap result: created=%v user=%+v", created, first)
	}

	second, created, err := svc.EnsureAdmin(ctx, "other", "admin@example.com", "bootstrap")
	if err != nil {
		t.Fatalf("EnsureAdmin returned error: %v", err)
	}
	if created || second.ID != first.ID {
		t.Fatalf("expected existing admin to be reused, got created=%v id=%q", created, second.ID)
	}

	users, err := db.ListUsers(ctx)
	if err != nil {
		t.Fatalf("ListUsers returned error: %v", err)
	}
	if len(users) != 1 {
		t.Fatalf("expected 1 user, got %d", len(users))
	}
}

func TestUserServiceEnsureAdmin_ExistingMemberWarns(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := slog.New(slog.NewTextHandler(&buf, nil))
	_, _, svc := newUserServiceWithLog(log, false)
	ctx := context.Background()

	member, err := svc.Register(ctx, core.RegisterInput{Name: "a", Email: "admin@example.com", Password: "secret1"})
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}

	got, created, err := svc.EnsureAdmin(ctx, "admin", "admin@example.com", "bootstrap")
	if err != nil {
		t.Fatalf("EnsureAdmin returned error: %v", err)
	}
	if created || got.ID != member.ID || got.Role != core.RoleMember {
		t.Fatalf("existing member must be returned unchanged: created=%v user=%+v", created, got)
	}
	if !strings.Contains(buf.String(), "level=WARN") || !strings.Contains(buf.String(), member.ID) {
		t.Fatalf("expected a warning naming the user, got %q", buf.String())
	}
}
