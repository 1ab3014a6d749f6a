package repository

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"tasktracker/internal/model"
)

// TaskFilter is a set of optional predicates combined with AND. The
// zero value matches every task.
type TaskFilter struct {
	// Username matches tasks the user owns or is assigned.
	Username string
	// Search is a case-insensitive substring match on title or description.
	Search string
	// Tags matches tasks carrying any one of the given tags.
	Tags     []string
	Priority model.Priority
	Status   model.Status
}

// SortField selects the ordering column for task queries.
type SortField string

const (
	SortByDueDate   SortField = "due_date"
	SortByPriority  SortField = "priority"
	SortByCreatedAt SortField = "created_at"
)

func (f SortField) Valid() bool {
	switch f {
	case SortByDueDate, SortByPriority, SortByCreatedAt:
		return true
	}
	return false
}

// TaskRepository handles CRUD for tasks.
type TaskRepository struct {
	db *gorm.DB
}

func NewTaskRepository(db *gorm.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

func (r *TaskRepository) Create(ctx context.Context, task *model.Task) error {
	if err := r.db.WithContext(ctx).Create(task).Error; err != nil {
		return fmt.Errorf("create task: %w", err)
	}
	return nil
}

func (r *TaskRepository) FindByID(ctx context.Context, id string) (*model.Task, error) {
	var task model.Task
	err := r.db.WithContext(ctx).First(&task, "id = ?", id).Error
	switch {
	case err == nil:
		return &task, nil
	case err == gorm.ErrRecordNotFound:
		return nil, ErrNotFound
	default:
		return nil, fmt.Errorf("find task: %w", err)
	}
}

// Find returns tasks matching every given predicate, ordered by the
// sort field. Tasks without a due date sort after dated ones in both
// directions. Ties keep natural storage order. An empty result is not
// an error.
func (r *TaskRepository) Find(ctx context.Context, filter TaskFilter, sort SortField, descending bool) ([]model.Task, error) {
	q := r.db.WithContext(ctx).Model(&model.Task{})

	if filter.Username != "" {
		q = q.Where("(created_by = ? OR assigned_to = ?)", filter.Username, filter.Username)
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		q = q.Where("(title LIKE ? OR description LIKE ?)", pattern, pattern)
	}
	if len(filter.Tags) > 0 {
		// LIKE narrows candidates; exact membership is checked below so
		// that "work" never matches a task tagged "homework".
		clauses := make([]string, 0, len(filter.Tags))
		args := make([]any, 0, len(filter.Tags))
		for _, tag := range filter.Tags {
			clauses = append(clauses, "tags LIKE ?")
			args = append(args, "%"+tag+"%")
		}
		q = q.Where("("+strings.Join(clauses, " OR ")+")", args...)
	}
	if filter.Priority != "" {
		q = q.Where("priority = ?", filter.Priority)
	}
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}

	if !sort.Valid() {
		sort = SortByDueDate
	}
	direction := "ASC"
	if descending {
		direction = "DESC"
	}
	order := fmt.Sprintf("%s %s", sort, direction)
	if sort == SortByDueDate {
		order = fmt.Sprintf("due_date IS NULL, due_date %s", direction)
	}

	var tasks []model.Task
	if err := q.Order(order).Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("query tasks: %w", err)
	}

	if len(filter.Tags) > 0 {
		tasks = keepTagged(tasks, filter.Tags)
	}
	return tasks, nil
}

func keepTagged(tasks []model.Task, tags []string) []model.Task {
	kept := tasks[:0]
	for _, task := range tasks {
		for _, tag := range tags {
			if task.Tags.Contains(tag) {
				kept = append(kept, task)
				break
			}
		}
	}
	return kept
}

// ListRecurring returns every task with a recurrence rule, regardless
// of owner.
func (r *TaskRepository) ListRecurring(ctx context.Context) ([]model.Task, error) {
	var tasks []model.Task
	if err := r.db.WithContext(ctx).
		Where("recurrence IS NOT NULL").
		Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("list recurring tasks: %w", err)
	}
	return tasks, nil
}

// Update applies the given columns to one task. Absent ids return
// ErrNotFound; columns not present in fields are left untouched.
func (r *TaskRepository) Update(ctx context.Context, id string, fields map[string]any) error {
	res := r.db.WithContext(ctx).Model(&model.Task{}).
		Where("id = ?", id).
		Updates(fields)
	if res.Error != nil {
		return fmt.Errorf("update task: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a task permanently. Deleting an absent id reports
// ErrNotFound, which callers treat as an expected condition.
func (r *TaskRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Task{})
	if res.Error != nil {
		return fmt.Errorf("delete task: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Assign rewrites the assignee of a task, but only when assigner is
// its owner. The ownership check and the write are one conditional
// UPDATE, so a missing task and a non-owner assigner are the same
// zero-rows outcome.
func (r *TaskRepository) Assign(ctx context.Context, id, assigner, assignee string) error {
	res := r.db.WithContext(ctx).Model(&model.Task{}).
		Where("id = ? AND created_by = ?", id, assigner).
		Update("assigned_to", assignee)
	if res.Error != nil {
		return fmt.Errorf("assign task: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
