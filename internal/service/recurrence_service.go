package service

import (
	"context"
	"errors"
	"log"
	"time"

	"tasktracker/internal/model"
	"tasktracker/internal/repository"
)

// RecurrenceService rolls elapsed recurring tasks forward to their next
// occurrence. It owns no timing loop; an external scheduler calls Scan
// periodically.
type RecurrenceService struct {
	tasks *repository.TaskRepository
	now   func() time.Time
}

func NewRecurrenceService(tasks *repository.TaskRepository) *RecurrenceService {
	return &RecurrenceService{tasks: tasks, now: time.Now}
}

// Scan advances the due date of every recurring task whose due date has
// elapsed, one occurrence per run. Only the due date is rewritten;
// status and all other fields stay untouched. Recurring tasks without a
// due date are skipped. After a rollover the new due date is in the
// future, so an immediate second scan is a no-op.
func (s *RecurrenceService) Scan(ctx context.Context) error {
	now := s.now()

	tasks, err := s.tasks.ListRecurring(ctx)
	if err != nil {
		return err
	}

	for _, task := range tasks {
		if task.Recurrence == nil || task.DueDate == nil {
			continue
		}
		if task.DueDate.After(now) {
			continue
		}
		next := NextOccurrence(*task.DueDate, *task.Recurrence)
		err := s.tasks.Update(ctx, task.ID, map[string]any{"due_date": next})
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			// Deleted mid-scan is fine; anything else gets logged and
			// the scan moves on. A later run picks the task up again.
			log.Printf("recurrence: advance task %s: %v", task.ID, err)
		}
	}
	return nil
}

// NextOccurrence computes the next due date for a recurrence rule.
// Monthly keeps the same day-of-month in the next calendar month,
// clamped to that month's last day (Jan 31 -> Feb 29 in a leap year),
// so it never overflows into the month after next.
func NextOccurrence(due time.Time, rule model.Recurrence) time.Time {
	switch rule {
	case model.RecurDaily:
		return due.AddDate(0, 0, 1)
	case model.RecurWeekly:
		return due.AddDate(0, 0, 7)
	case model.RecurMonthly:
		year, month, day := due.Date()
		next := time.Date(year, month, 1, 0, 0, 0, 0, due.Location()).AddDate(0, 1, 0)
		if last := daysInMonth(next.Month(), next.Year()); day > last {
			day = last
		}
		return time.Date(next.Year(), next.Month(), day,
			due.Hour(), due.Minute(), due.Second(), due.Nanosecond(), due.Location())
	default:
		return due
	}
}

func daysInMonth(month time.Month, year int) int {
	// First of the next month, rolled back a day.
	firstOfMonth := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	return firstOfMonth.AddDate(0, 1, -1).Day()
}
