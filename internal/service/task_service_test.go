package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"tasktracker/internal/model"
	"tasktracker/internal/repository"
)

func newTaskService(t *testing.T) (*TaskService, *gorm.DB) {
	t.Helper()
	db := setupTestDB(t)
	svc := NewTaskService(repository.NewTaskRepository(db), repository.NewUserRepository(db))
	return svc, db
}

func registerUser(t *testing.T, db *gorm.DB, username string) {
	t.Helper()
	user := model.User{Username: username, Email: username + "@example.com", PasswordHash: "h"}
	require.NoError(t, db.Create(&user).Error)
}

func TestTaskService_CreateAppliesDefaults(t *testing.T) {
	svc, _ := newTaskService(t)
	ctx := context.Background()

	id, err := svc.Create(ctx, TaskInput{Title: "write report", CreatedBy: "alice"})
	require.NoError(t, err)
	require.NotEmpty(t, id)

	// A query with no predicates returns the stored record with
	// defaults applied.
	tasks, err := svc.List(ctx, TaskQuery{})
	require.NoError(t, err)
	require.Len(t, tasks, 1)

	got := tasks[0]
	assert.Equal(t, id, got.ID)
	assert.Equal(t, "write report", got.Title)
	assert.Equal(t, "", got.Description)
	assert.Equal(t, model.PriorityMedium, got.Priority)
	assert.Equal(t, model.StatusPending, got.Status)
	assert.Empty(t, got.Tags)
	assert.Nil(t, got.DueDate)
	assert.Nil(t, got.Recurrence)
	assert.Nil(t, got.AssignedTo)
	assert.Equal(t, "alice", got.CreatedBy)
}

func TestTaskService_CreateValidation(t *testing.T) {
	svc, _ := newTaskService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, TaskInput{CreatedBy: "alice"})
	assert.ErrorIs(t, err, ErrInvalid)

	_, err = svc.Create(ctx, TaskInput{Title: "no owner"})
	assert.ErrorIs(t, err, ErrInvalid)

	_, err = svc.Create(ctx, TaskInput{Title: "t", CreatedBy: "alice", Priority: "urgent"})
	assert.ErrorIs(t, err, ErrInvalid)

	_, err = svc.Create(ctx, TaskInput{Title: "t", CreatedBy: "alice", Status: "done"})
	assert.ErrorIs(t, err, ErrInvalid)

	bad := model.Recurrence("yearly")
	_, err = svc.Create(ctx, TaskInput{Title: "t", CreatedBy: "alice", Recurrence: &bad})
	assert.ErrorIs(t, err, ErrInvalid)

	// The tag delimiter is forbidden inside a tag value.
	_, err = svc.Create(ctx, TaskInput{Title: "t", CreatedBy: "alice", Tags: model.TagList{"a,b"}})
	assert.ErrorIs(t, err, ErrInvalid)

	// Nothing was persisted along the way.
	tasks, err := svc.List(ctx, TaskQuery{})
	require.NoError(t, err)
	assert.Empty(t, tasks)
}

func TestTaskService_UpdateEmptyPatch(t *testing.T) {
	svc, _ := newTaskService(t)
	ctx := context.Background()

	id, err := svc.Create(ctx, TaskInput{Title: "t", CreatedBy: "alice"})
	require.NoError(t, err)

	err = svc.Update(ctx, id, TaskPatch{})
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestTaskService_UpdatePartial(t *testing.T) {
	svc, _ := newTaskService(t)
	ctx := context.Background()

	id, err := svc.Create(ctx, TaskInput{Title: "t", Description: "original", CreatedBy: "alice"})
	require.NoError(t, err)

	done := model.StatusCompleted
	require.NoError(t, svc.Update(ctx, id, TaskPatch{Status: &done}))

	got, err := svc.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, model.StatusCompleted, got.Status)
	assert.Equal(t, "original", got.Description)

	bad := model.Priority("urgent")
	assert.ErrorIs(t, svc.Update(ctx, id, TaskPatch{Priority: &bad}), ErrInvalid)

	empty := ""
	assert.ErrorIs(t, svc.Update(ctx, id, TaskPatch{Title: &empty}), ErrInvalid)

	assert.ErrorIs(t, svc.Update(ctx, "no-such-id", TaskPatch{Status: &done}), repository.ErrNotFound)
}

func TestTaskService_Assign(t *testing.T) {
	svc, db := newTaskService(t)
	ctx := context.Background()

	registerUser(t, db, "alice")
	registerUser(t, db, "bob")

	id, err := svc.Create(ctx, TaskInput{Title: "shared", CreatedBy: "alice"})
	require.NoError(t, err)

	// Unknown assignee fails with the same signal as a missing task.
	assert.ErrorIs(t, svc.Assign(ctx, id, "alice", "nobody"), repository.ErrNotFound)

	// Non-owner assigner fails and nothing is mutated.
	assert.ErrorIs(t, svc.Assign(ctx, id, "bob", "bob"), repository.ErrNotFound)
	got, err := svc.Get(ctx, id)
	require.NoError(t, err)
	assert.Nil(t, got.AssignedTo)

	require.NoError(t, svc.Assign(ctx, id, "alice", "bob"))
	got, err = svc.Get(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, got.AssignedTo)
	assert.Equal(t, "bob", *got.AssignedTo)

	// Idempotent reassignment.
	require.NoError(t, svc.Assign(ctx, id, "alice", "bob"))

	assert.ErrorIs(t, svc.Assign(ctx, "no-such-id", "alice", "bob"), repository.ErrNotFound)
}

func TestTaskService_ListOverdueOnly(t *testing.T) {
	svc, _ := newTaskService(t)
	ctx := context.Background()

	now := time.Date(2024, time.June, 15, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	past := now.Add(-24 * time.Hour)
	future := now.Add(24 * time.Hour)

	overdueID, err := svc.Create(ctx, TaskInput{Title: "overdue", CreatedBy: "u", DueDate: &past})
	require.NoError(t, err)
	// Same elapsed due date, but completed: excluded.
	_, err = svc.Create(ctx, TaskInput{Title: "done", CreatedBy: "u", DueDate: &past, Status: model.StatusCompleted})
	require.NoError(t, err)
	_, err = svc.Create(ctx, TaskInput{Title: "upcoming", CreatedBy: "u", DueDate: &future})
	require.NoError(t, err)
	// No due date: excluded.
	_, err = svc.Create(ctx, TaskInput{Title: "undated", CreatedBy: "u"})
	require.NoError(t, err)

	tasks, err := svc.List(ctx, TaskQuery{OverdueOnly: true})
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, overdueID, tasks[0].ID)
}

func TestTaskService_ListValidation(t *testing.T) {
	svc, _ := newTaskService(t)
	ctx := context.Background()

	_, err := svc.List(ctx, TaskQuery{Filter: repository.TaskFilter{Priority: "urgent"}})
	assert.ErrorIs(t, err, ErrInvalid)

	_, err = svc.List(ctx, TaskQuery{SortBy: "title"})
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestTaskService_Delete(t *testing.T) {
	svc, _ := newTaskService(t)
	ctx := context.Background()

	id, err := svc.Create(ctx, TaskInput{Title: "t", CreatedBy: "alice"})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, id))
	assert.ErrorIs(t, svc.Delete(ctx, id), repository.ErrNotFound)
}
