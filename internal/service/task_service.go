package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"tasktracker/internal/model"
	"tasktracker/internal/repository"
)

// TaskInput carries the fields for creating a task. Title and
// CreatedBy are required; everything else is optional with defaults.
type TaskInput struct {
	Title       string
	Description string
	DueDate     *time.Time
	Priority    model.Priority
	Status      model.Status
	Tags        model.TagList
	Recurrence  *model.Recurrence
	CreatedBy   string
	AssignedTo  *string
}

// TaskPatch is a partial update. Nil fields are left untouched.
type TaskPatch struct {
	Title       *string
	Description *string
	DueDate     *time.Time
	Priority    *model.Priority
	Status      *model.Status
	Tags        *model.TagList
	Recurrence  *model.Recurrence
	AssignedTo  *string
}

func (p TaskPatch) isEmpty() bool {
	return p.Title == nil && p.Description == nil && p.DueDate == nil &&
		p.Priority == nil && p.Status == nil && p.Tags == nil &&
		p.Recurrence == nil && p.AssignedTo == nil
}

// TaskQuery selects and orders tasks for List.
type TaskQuery struct {
	Filter     repository.TaskFilter
	SortBy     repository.SortField
	Descending bool
	// OverdueOnly keeps only pending tasks whose due date has passed.
	// Applied after the stored filter, per the caller-layer contract.
	OverdueOnly bool
}

// TaskService is the validation boundary in front of the task store.
type TaskService struct {
	tasks *repository.TaskRepository
	users *repository.UserRepository
	now   func() time.Time
}

func NewTaskService(tasks *repository.TaskRepository, users *repository.UserRepository) *TaskService {
	return &TaskService{tasks: tasks, users: users, now: time.Now}
}

// Create validates the input, applies defaults and persists a new task,
// returning its generated id.
func (s *TaskService) Create(ctx context.Context, input TaskInput) (string, error) {
	if input.Title == "" {
		return "", fmt.Errorf("%w: title is required", ErrInvalid)
	}
	if input.CreatedBy == "" {
		return "", fmt.Errorf("%w: created_by is required", ErrInvalid)
	}
	if input.Priority == "" {
		input.Priority = model.PriorityMedium
	}
	if !input.Priority.Valid() {
		return "", fmt.Errorf("%w: unknown priority %q", ErrInvalid, input.Priority)
	}
	if input.Status == "" {
		input.Status = model.StatusPending
	}
	if !input.Status.Valid() {
		return "", fmt.Errorf("%w: unknown status %q", ErrInvalid, input.Status)
	}
	if input.Recurrence != nil && !input.Recurrence.Valid() {
		return "", fmt.Errorf("%w: unknown recurrence %q", ErrInvalid, *input.Recurrence)
	}
	if err := input.Tags.Validate(); err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalid, err)
	}

	task := model.Task{
		ID:          uuid.NewString(),
		Title:       input.Title,
		Description: input.Description,
		DueDate:     input.DueDate,
		Priority:    input.Priority,
		Status:      input.Status,
		Tags:        input.Tags,
		Recurrence:  input.Recurrence,
		CreatedBy:   input.CreatedBy,
		AssignedTo:  input.AssignedTo,
	}
	if err := s.tasks.Create(ctx, &task); err != nil {
		return "", err
	}
	return task.ID, nil
}

// List runs a filtered, ordered query. No match is an empty slice, not
// an error.
func (s *TaskService) List(ctx context.Context, query TaskQuery) ([]model.Task, error) {
	if query.Filter.Priority != "" && !query.Filter.Priority.Valid() {
		return nil, fmt.Errorf("%w: unknown priority %q", ErrInvalid, query.Filter.Priority)
	}
	if query.Filter.Status != "" && !query.Filter.Status.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalid, query.Filter.Status)
	}
	if query.SortBy != "" && !query.SortBy.Valid() {
		return nil, fmt.Errorf("%w: unknown sort field %q", ErrInvalid, query.SortBy)
	}

	tasks, err := s.tasks.Find(ctx, query.Filter, query.SortBy, query.Descending)
	if err != nil {
		return nil, err
	}

	if query.OverdueOnly {
		now := s.now()
		kept := tasks[:0]
		for _, task := range tasks {
			if task.DueDate != nil && task.DueDate.Before(now) && task.Status != model.StatusCompleted {
				kept = append(kept, task)
			}
		}
		tasks = kept
	}
	return tasks, nil
}

func (s *TaskService) Get(ctx context.Context, id string) (*model.Task, error) {
	return s.tasks.FindByID(ctx, id)
}

// Update applies a partial patch. An empty patch is a caller error and
// never reaches the store.
func (s *TaskService) Update(ctx context.Context, id string, patch TaskPatch) error {
	if patch.isEmpty() {
		return fmt.Errorf("%w: empty update", ErrInvalid)
	}

	fields := make(map[string]any)
	if patch.Title != nil {
		if *patch.Title == "" {
			return fmt.Errorf("%w: title must not be empty", ErrInvalid)
		}
		fields["title"] = *patch.Title
	}
	if patch.Description != nil {
		fields["description"] = *patch.Description
	}
	if patch.DueDate != nil {
		fields["due_date"] = *patch.DueDate
	}
	if patch.Priority != nil {
		if !patch.Priority.Valid() {
			return fmt.Errorf("%w: unknown priority %q", ErrInvalid, *patch.Priority)
		}
		fields["priority"] = *patch.Priority
	}
	if patch.Status != nil {
		if !patch.Status.Valid() {
			return fmt.Errorf("%w: unknown status %q", ErrInvalid, *patch.Status)
		}
		fields["status"] = *patch.Status
	}
	if patch.Tags != nil {
		if err := patch.Tags.Validate(); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalid, err)
		}
		fields["tags"] = *patch.Tags
	}
	if patch.Recurrence != nil {
		if !patch.Recurrence.Valid() {
			return fmt.Errorf("%w: unknown recurrence %q", ErrInvalid, *patch.Recurrence)
		}
		fields["recurrence"] = *patch.Recurrence
	}
	if patch.AssignedTo != nil {
		fields["assigned_to"] = *patch.AssignedTo
	}

	return s.tasks.Update(ctx, id, fields)
}

// Delete removes a task permanently. An absent id is an expected
// ErrNotFound, not a fault.
func (s *TaskService) Delete(ctx context.Context, id string) error {
	return s.tasks.Delete(ctx, id)
}

// Assign rewrites a task's assignee. It succeeds only when the assignee
// is a known user and assigner owns the task; every other combination,
// including an absent task id, is the same ErrNotFound signal.
// Reassigning to the current assignee succeeds and changes nothing.
func (s *TaskService) Assign(ctx context.Context, id, assigner, assignee string) error {
	known, err := s.users.Exists(ctx, assignee)
	if err != nil {
		return err
	}
	if !known {
		return repository.ErrNotFound
	}
	return s.tasks.Assign(ctx, id, assigner, assignee)
}
