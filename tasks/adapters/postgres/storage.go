package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"

	"taskboard/tasks/core"
)

type DB struct {
	log  *slog.Logger
	conn *sqlx.DB
}

func New(log *slog.Logger, address string) (*DB, error) {
	db, err := sqlx.Connect("pgx", address)
	if err != nil {
		log.Error("connection problem", "error", err)
		return nil, err
	}
	return &DB{log: log, conn: db}, nil
}

func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) Ping(ctx context.Context) error {
	return db.conn.PingContext(ctx)
}

func (db *DB) ValidID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

type taskRow struct {
	ID          string    `db:"id"`
	Title       string    `db:"title"`
	Description string    `db:"description"`
	Status      string    `db:"status"`
	AssignedTo  *string   `db:"assigned_to"`
	CreatedBy   string    `db:"created_by"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

func (r taskRow) task() core.Task {
	return core.Task{
		ID:          r.ID,
		Title:       r.Title,
		Description: r.Description,
		Status:      core.TaskStatus(r.Status),
		AssignedTo:  r.AssignedTo,
		CreatedBy:   r.CreatedBy,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

type taskViewRow struct {
	taskRow
	AssigneeName  *string `db:"assignee_name"`
	AssigneeEmail *string `db:"assignee_email"`
	CreatorName   *string `db:"creator_name"`
}

func (r taskViewRow) view() core.TaskView {
	v := core.TaskView{
		ID:          r.ID,
		Title:       r.Title,
		Description: r.Description,
		Status:      core.TaskStatus(r.Status),
		CreatedBy:   core.UserRef{ID: r.CreatedBy},
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
	if r.CreatorName != nil {
		v.CreatedBy.Name = *r.CreatorName
	}
	if r.AssignedTo != nil && r.AssigneeName != nil {
		ref := core.UserRef{ID: *r.AssignedTo, Name: *r.AssigneeName}
		if r.AssigneeEmail != nil {
			ref.Email = *r.AssigneeEmail
		}
		v.AssignedTo = &ref
	}
	return v
}

const taskColumns = `id::text AS id, title, COALESCE(description, '') AS description, status,
	assigned_to::text AS assigned_to, created_by::text AS created_by, created_at, updated_at`

// Tasks

func (db *DB) ListTasks(ctx context.Context, f core.ListTasksFilter) ([]core.TaskView, error) {
	const q = `
		SELECT t.id::text AS id, t.title, COALESCE(t.description, '') AS description, t.status,
		       t.assigned_to::text AS assigned_to, t.created_by::text AS created_by,
		       t.created_at, t.updated_at,
		       a.name AS assignee_name, a.email AS assignee_email, c.name AS creator_name
		FROM tasks t
		LEFT JOIN users a ON a.id = t.assigned_to
		LEFT JOIN users c ON c.id = t.created_by
		WHERE $1::uuid IS NULL OR t.assigned_to = $1::uuid
		ORDER BY t.seq ASC;
	`

	if f.AssignedTo != nil && !db.ValidID(*f.AssignedTo) {
		return []core.TaskView{}, nil
	}

	var rows []taskViewRow
	if err := db.conn.SelectContext(ctx, &rows, q, f.AssignedTo); err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}

	out := make([]core.TaskView, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.view())
	}
	return out, nil
}

func (db *DB) GetTask(ctx context.Context, id string) (core.Task, error) {
	if !db.ValidID(id) {
		return core.Task{}, core.ErrTaskNotFound
	}

	q := `SELECT ` + taskColumns + ` FROM tasks WHERE id = $1;`

	var r taskRow
	if err := db.conn.GetContext(ctx, &r, q, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return core.Task{}, core.ErrTaskNotFound
		}
		return core.Task{}, fmt.Errorf("get task: %w", err)
	}
	return r.task(), nil
}

func (db *DB) CreateTask(ctx context.Context, t core.Task) (core.Task, error) {
	t = t.Normalize().WithDefaults()
	if err := t.Validate(); err != nil {
		return core.Task{}, err
	}

	q := `
		INSERT INTO tasks(id, title, description, status, assigned_to, created_by)
		VALUES ($1, $2, NULLIF($3, ''), $4, $5, $6)
		RETURNING ` + taskColumns + `;`

	var r taskRow
	err := db.conn.GetContext(ctx, &r, q, uuid.NewString(), t.Title, t.Description, string(t.Status), t.AssignedTo, t.CreatedBy)
	if err != nil {
		if perr := payloadErr(err); perr != nil {
			return core.Task{}, perr
		}
		return core.Task{}, fmt.Errorf("insert task: %w", err)
	}
	return r.task(), nil
}

func (db *DB) UpdateTask(ctx context.Context, t core.Task) (core.Task, error) {
	t = t.Normalize()
	if err := t.Validate(); err != nil {
		return core.Task{}, err
	}

	q := `
		UPDATE tasks
		SET title = $2,
		    description = NULLIF($3, ''),
		    status = $4,
		    assigned_to = $5,
		    created_by = $6,
		    updated_at = now()
		WHERE id = $1
		RETURNING ` + taskColumns + `;`

	var r taskRow
	err := db.conn.GetContext(ctx, &r, q, t.ID, t.Title, t.Description, string(t.Status), t.AssignedTo, t.CreatedBy)
	if err != nil {
		if perr := payloadErr(err); perr != nil {
			return core.Task{}, perr
		}
		if errors.Is(err, sql.ErrNoRows) {
			return core.Task{}, core.ErrTaskNotFound
		}
		return core.Task{}, fmt.Errorf("update task: %w", err)
	}
	return r.task(), nil
}

func (db *DB) DeleteTask(ctx context.Context, id string) (core.Task, error) {
	if !db.ValidID(id) {
		return core.Task{}, core.ErrTaskNotFound
	}

	q := `DELETE FROM tasks WHERE id = $1 RETURNING ` + taskColumns + `;`

	var r taskRow
	if err := db.conn.GetContext(ctx, &r, q, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return core.Task{}, core.ErrTaskNotFound
		}
		return core.Task{}, fmt.Errorf("delete task: %w", err)
	}
	return r.task(), nil
}

// Users

type userRow struct {
	ID           string    `db:"id"`
	Name         string    `db:"name"`
	Email        string    `db:"email"`
	PasswordHash string    `db:"password_hash"`
	Role         string    `db:"role"`
	CreatedAt    time.Time `db:"created_at"`
}

func (r userRow) user() core.User {
	return core.User{
		ID:           r.ID,
		Name:         r.Name,
		Email:        r.Email,
		PasswordHash: r.PasswordHash,
		Role:         core.Role(r.Role),
		CreatedAt:    r.CreatedAt,
	}
}

const userColumns = `id::text AS id, name, email, password_hash, role, created_at`

func (db *DB) CreateUser(ctx context.Context, u core.User) (core.User, error) {
	q := `
		INSERT INTO users(id, name, email, password_hash, role)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + userColumns + `;`

	var r userRow
	if err := db.conn.GetContext(ctx, &r, q, uuid.NewString(), u.Name, u.Email, u.PasswordHash, string(u.Role)); err != nil {
		if isUniqueViolation(err) {
			return core.User{}, core.ErrUserAlreadyExists
		}
		if isCheckViolation(err) {
			return core.User{}, core.NewPayloadError("role", "role must be admin or member")
		}
		return core.User{}, fmt.Errorf("insert user: %w", err)
	}
	return r.user(), nil
}

func (db *DB) GetUserByEmail(ctx context.Context, email string) (core.User, error) {
	q := `SELECT ` + userColumns + ` FROM users WHERE lower(email) = lower($1);`

	var r userRow
	if err := db.conn.GetContext(ctx, &r, q, email); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return core.User{}, core.ErrUserNotFound
		}
		return core.User{}, fmt.Errorf("get user: %w", err)
	}
	return r.user(), nil
}

func (db *DB) ListUsers(ctx context.Context) ([]core.User, error) {
	const q = `SELECT id::text AS id, name, email, '' AS password_hash, role, created_at FROM users ORDER BY created_at ASC`

	var rows []userRow
	if err := db.conn.SelectContext(ctx, &rows, q); err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}

	out := make([]core.User, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.user())
	}
	return out, nil
}

// pg helpers

// payloadErr turns constraint violations on tasks into payload errors, or returns nil.
func payloadErr(err error) error {
	switch {
	case isForeignKeyViolation(err):
		if constraintName(err) == "tasks_created_by_fkey" {
			return core.NewPayloadError("createdBy", "createdBy user does not exist")
		}
		return core.NewPayloadError("assignedTo", "assignedTo user does not exist")
	case isCheckViolation(err):
		return core.NewPayloadError(constraintColumn(err), "task violates constraint "+constraintName(err))
	default:
		return nil
	}
}

func constraintName(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.ConstraintName
	}
	return ""
}

func constraintColumn(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.ColumnName
	}
	return ""
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23503"
}

func isCheckViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23514"
}
