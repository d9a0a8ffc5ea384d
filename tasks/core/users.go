package core

import (
	"context"
	"errors"
	"log/slog"
	"net/mail"
	"strings"
)

const (
	minPasswordLen = 6
	maxPasswordLen = 72 // bcrypt limit
)

type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Role     Role
}

type Session struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

type UserService struct {
	log        *slog.Logger
	db         DB
	hasher     PasswordHasher
	tokens     TokenIssuer
	allowAdmin bool
}

func NewUserService(log *slog.Logger, db DB, hasher PasswordHasher, tokens TokenIssuer, allowAdminRegistration bool) *UserService {
	return &UserService{
		log:        log,
		db:         db,
		hasher:     hasher,
		tokens:     tokens,
		allowAdmin: allowAdminRegistration,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *UserService) Register(ctx context.Context, in RegisterInput) (User, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return User{}, NewPayloadError("name", "name is required")
	}
	email := normalizeEmail(in.Email)
	if email == "" {
		return User{}, NewPayloadError("email", "email is required")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return User{}, NewPayloadError("email", "email is invalid")
	}
	if len(in.Password) < minPasswordLen {
		return User{}, NewPayloadError("password", "password must be at least 6 characters")
	}
	if len(in.Password) > maxPasswordLen {
		return User{}, NewPayloadError("password", "password must be at most 72 bytes")
	}

	role := in.Role
	if role == "" {
		role = RoleMember
	}
	if !role.Valid() {
		return User{}, NewPayloadError("role", "role must be admin or member")
	}
	if role == RoleAdmin && !s.allowAdmin {
		return User{}, ErrForbidden
	}

	return s.create(ctx, name, email, in.Password, role)
}

func (s *UserService) create(ctx context.Context, name, email, password string, role Role) (User, error) {
	hash, err := s.hasher.Hash(password)
	if err != nil {
		return User{}, classify("hash password", err)
	}

	u, err := s.db.CreateUser(ctx, User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
	})
	if err != nil {
		return User{}, classify("create user", err)
	}
	return u, nil
}

func (s *UserService) Login(ctx context.Context, email, password string) (Session, error) {
	u, err := s.db.GetUserByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return Session{}, ErrInvalidCredentials
		}
		return Session{}, classify("get user", err)
	}

	if err := s.hasher.Compare(u.PasswordHash, password); err != nil {
		return Session{}, ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(Principal{ID: u.ID, Role: u.Role})
	if err != nil {
		return Session{}, classify("issue token", err)
	}
	return Session{Token: token, User: u}, nil
}

func (s *UserService) ListUsers(ctx context.Context) ([]User, error) {
	items, err := s.db.ListUsers(ctx)
	if err != nil {
		return nil, classify("list users", err)
	}
	return items, nil
}

// EnsureAdmin creates an admin account with the given email unless a user with
// that email already exists. An existing non-admin user is left as is.
func (s *UserService) EnsureAdmin(ctx context.Context, name, email, password string) (User, bool, error) {
	email = normalizeEmail(email)
	u, err := s.db.GetUserByEmail(ctx, email)
	if err == nil {
		if u.Role != RoleAdmin {
			s.log.Warn("bootstrap admin email belongs to a non-admin user, no admin was created",
				"user_id", u.ID, "email", u.Email, "role", u.Role)
		}
		return u, false, nil
	}
	if !errors.Is(err, ErrUserNotFound) {
		return User{}, false, classify("get user", err)
	}

	if strings.TrimSpace(name) == "" {
		name = "admin"
	}
	if len(password) < minPasswordLen {
		return User{}, false, NewPayloadError("password", "password must be at least 6 characters")
	}

	u, err = s.create(ctx, strings.TrimSpace(name), email, password, RoleAdmin)
	if err != nil {
		return User{}, false, err
	}
	return u, true, nil
}
