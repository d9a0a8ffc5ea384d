package core

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

type Service struct {
	log *slog.Logger
	db  DB
}

func NewService(log *slog.Logger, db DB) *Service {
	return &Service{
		log: log,
		db:  db,
	}
}

func (s *Service) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

// classify keeps known store errors and turns the rest into ErrStoreFailure.
func classify(op string, err error) error {
	switch {
	case errors.Is(err, ErrTaskNotFound),
		errors.Is(err, ErrUserNotFound),
		errors.Is(err, ErrUserAlreadyExists),
		errors.Is(err, ErrInvalidPayload),
		errors.Is(err, ErrStoreFailure):
		return err
	default:
		return fmt.Errorf("%s: %w: %w", op, ErrStoreFailure, err)
	}
}

func (s *Service) validReference(id *string) bool {
	return id == nil || s.db.ValidID(*id)
}

// Tasks

func (s *Service) ListTasks(ctx context.Context, p Principal) ([]TaskView, error) {
	if !CanPerform(p, OpList, nil) {
		return nil, ErrForbidden
	}

	var f ListTasksFilter
	if !p.IsAdmin() {
		uid := p.ID
		f.AssignedTo = &uid
	}

	items, err := s.db.ListTasks(ctx, f)
	if err != nil {
		return nil, classify("list tasks", err)
	}
	return items, nil
}

func (s *Service) CreateTask(ctx context.Context, p Principal, d TaskDraft) (Task, error) {
	if !CanPerform(p, OpCreate, nil) {
		return Task{}, ErrForbidden
	}
	if d.AssignedTo != nil && *d.AssignedTo == "" {
		d.AssignedTo = nil
	}
	if !s.validReference(d.AssignedTo) {
		return Task{}, ErrInvalidReference
	}

	t := Task{
		Title:       d.Title,
		Description: d.Description,
		Status:      d.Status,
		AssignedTo:  d.AssignedTo,
		CreatedBy:   p.ID,
	}

	created, err := s.db.CreateTask(ctx, t)
	if err != nil {
		return Task{}, classify("create task", err)
	}

	s.log.Debug("task created", "task_id", created.ID, "created_by", p.ID)
	return created, nil
}

func (s *Service) UpdateTask(ctx context.Context, p Principal, id string, patch TaskPatch) (Task, error) {
	if !s.db.ValidID(id) {
		return Task{}, ErrTaskNotFound
	}

	cur, err := s.db.GetTask(ctx, id)
	if err != nil {
		return Task{}, classify("get task", err)
	}

	if !CanPerform(p, OpUpdate, &cur) {
		return Task{}, ErrForbidden
	}
	if patch.AssignedTo != nil && *patch.AssignedTo != "" && !s.db.ValidID(*patch.AssignedTo) {
		return Task{}, ErrInvalidReference
	}
	if patch.Empty() {
		return cur, nil
	}

	updated, err := s.db.UpdateTask(ctx, patch.Apply(cur))
	if err != nil {
		return Task{}, classify("update task", err)
	}

	s.log.Debug("task updated", "task_id", updated.ID, "by", p.ID)
	return updated, nil
}

func (s *Service) DeleteTask(ctx context.Context, p Principal, id string) error {
	if !CanPerform(p, OpDelete, nil) {
		return ErrForbidden
	}
	if !s.db.ValidID(id) {
		return ErrTaskNotFound
	}

	deleted, err := s.db.DeleteTask(ctx, id)
	if err != nil {
		return classify("delete task", err)
	}

	s.log.Debug("task deleted", "task_id", deleted.ID, "by", p.ID)
	return nil
}
