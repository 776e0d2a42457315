package todosync

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/Makepad-fr/tada/internal/logging"
	"github.com/Makepad-fr/tada/internal/model"
	"github.com/Makepad-fr/tada/internal/validation"
)

// ErrEmptyDescription is returned before any request is made when a
// description is empty or only whitespace.
var ErrEmptyDescription = errors.New("description must not be empty")

// Store is the remote side. remote.Client implements it.
type Store interface {
	List(ctx context.Context) ([]model.Item, error)
	Get(ctx context.Context, id model.ID) (model.Item, error)
	Create(ctx context.Context, description string) (model.ID, error)
	Advance(ctx context.Context, id model.ID) error
	UpdateDescription(ctx context.Context, id model.ID, description string) error
	Delete(ctx context.Context, id model.ID) error
}

type Syncer struct {
	store  Store
	logger *log.Logger
	tracer trace.Tracer
}

func New(store Store, logger *log.Logger) *Syncer {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Syncer{
		store:  store,
		logger: logger,
		tracer: otel.Tracer("github.com/Makepad-fr/tada/internal/todosync"),
	}
}

type descriptionInput struct {
	Description string `json:"description" validate:"required"`
}

// checkDescription rejects whitespace-only text. Accepted text is sent as typed.
func checkDescription(desc string) (string, error) {
	in := descriptionInput{Description: strings.TrimSpace(desc)}
	if err := validation.Struct(in); err != nil {
		return "", fmt.Errorf("%w: %v", ErrEmptyDescription, err)
	}
	return desc, nil
}

// ListTodos replaces the snapshot with the server's list. On failure the
// previous snapshot stays.
func (s *Syncer) ListTodos(ctx context.Context, st *State) ([]model.Item, error) {
	ctx, span := s.tracer.Start(ctx, "todosync.ListTodos")
	defer span.End()

	items, err := s.store.List(ctx)
	if err != nil {
		return nil, s.failed(span, "list todos", err)
	}
	st.replace(items)
	span.SetAttributes(attribute.Int("todo.count", len(items)))
	return st.Snapshot(), nil
}

// CreateTodo posts a new item and appends it locally with the known
// initial status. No refetch happens.
func (s *Syncer) CreateTodo(ctx context.Context, st *State, description string) (model.ID, error) {
	ctx, span := s.tracer.Start(ctx, "todosync.CreateTodo")
	defer span.End()

	desc, err := checkDescription(description)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return "", err
	}
	id, err := s.store.Create(ctx, desc)
	if err != nil {
		return "", s.failed(span, "create todo", err)
	}
	st.append(model.Item{ID: id, Description: desc, Status: model.StatusOpen})
	span.SetAttributes(attribute.String("todo.id", string(id)))
	return id, nil
}

// AdvanceStatus asks the server to move id forward, then refetches: the
// client cannot know the new status otherwise.
func (s *Syncer) AdvanceStatus(ctx context.Context, st *State, id model.ID) error {
	ctx, span := s.tracer.Start(ctx, "todosync.AdvanceStatus", trace.WithAttributes(attribute.String("todo.id", string(id))))
	defer span.End()

	if err := s.store.Advance(ctx, id); err != nil {
		return s.failed(span, "advance status", err, "id", id)
	}
	return s.refetch(ctx, span, st, "advance status", id)
}

// UpdateDescription patches id and refetches.
func (s *Syncer) UpdateDescription(ctx context.Context, st *State, id model.ID, description string) error {
	ctx, span := s.tracer.Start(ctx, "todosync.UpdateDescription", trace.WithAttributes(attribute.String("todo.id", string(id))))
	defer span.End()

	desc, err := checkDescription(description)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	if err := s.store.UpdateDescription(ctx, id, desc); err != nil {
		return s.failed(span, "update description", err, "id", id)
	}
	return s.refetch(ctx, span, st, "update description", id)
}

// DeleteTodo deletes id and drops it from the snapshot without refetching.
func (s *Syncer) DeleteTodo(ctx context.Context, st *State, id model.ID) error {
	ctx, span := s.tracer.Start(ctx, "todosync.DeleteTodo", trace.WithAttributes(attribute.String("todo.id", string(id))))
	defer span.End()

	if err := s.store.Delete(ctx, id); err != nil {
		return s.failed(span, "delete todo", err, "id", id)
	}
	st.remove(id)
	return nil
}

// FetchTodo reads one item fresh from the server. It does not touch any
// snapshot; edit forms use it to prefill.
func (s *Syncer) FetchTodo(ctx context.Context, id model.ID) (model.Item, error) {
	ctx, span := s.tracer.Start(ctx, "todosync.FetchTodo", trace.WithAttributes(attribute.String("todo.id", string(id))))
	defer span.End()

	it, err := s.store.Get(ctx, id)
	if err != nil {
		return model.Item{}, s.failed(span, "fetch todo", err, "id", id)
	}
	return it, nil
}

func (s *Syncer) refetch(ctx context.Context, span trace.Span, st *State, op string, id model.ID) error {
	items, err := s.store.List(ctx)
	if err != nil {
		return s.failed(span, op+": refetch", err, "id", id)
	}
	st.replace(items)
	return nil
}

func (s *Syncer) failed(span trace.Span, op string, err error, kv ...any) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	s.logger.Error(op+" failed", append(kv, "err", err)...)
	return fmt.Errorf("%s: %w", op, err)
}
