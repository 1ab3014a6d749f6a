package model

import (
	"database/sql/driver"
	"fmt"
	"strings"
	"time"
)

// Priority is the urgency level of a task.
type Priority string

const (
	PriorityLow      Priority = "low"
	PriorityMedium   Priority = "medium"
	PriorityHigh     Priority = "high"
	PriorityCritical Priority = "critical"
)

func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical:
		return true
	}
	return false
}

// Status is the lifecycle state of a task.
type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
)

func (s Status) Valid() bool {
	return s == StatusPending || s == StatusCompleted
}

// Recurrence is the repeat interval of a recurring task.
type Recurrence string

const (
	RecurDaily   Recurrence = "daily"
	RecurWeekly  Recurrence = "weekly"
	RecurMonthly Recurrence = "monthly"
)

func (r Recurrence) Valid() bool {
	switch r {
	case RecurDaily, RecurWeekly, RecurMonthly:
		return true
	}
	return false
}

// TagList is an ordered set of tags persisted as one comma-joined text
// column. The comma is the delimiter and therefore forbidden inside a
// tag value; Validate enforces that before anything reaches the store.
type TagList []string

// Validate reports the first malformed tag: empty after trimming, or
// containing the delimiter.
func (t TagList) Validate() error {
	for _, tag := range t {
		if strings.TrimSpace(tag) == "" {
			return fmt.Errorf("empty tag")
		}
		if strings.Contains(tag, ",") {
			return fmt.Errorf("tag %q contains a comma", tag)
		}
	}
	return nil
}

// Contains reports whether the list holds the exact tag.
func (t TagList) Contains(tag string) bool {
	for _, have := range t {
		if have == tag {
			return true
		}
	}
	return false
}

// Value implements driver.Valuer.
func (t TagList) Value() (driver.Value, error) {
	return strings.Join(t, ","), nil
}

// Scan implements sql.Scanner.
func (t *TagList) Scan(src any) error {
	var raw string
	switch v := src.(type) {
	case nil:
		*t = nil
		return nil
	case string:
		raw = v
	case []byte:
		raw = string(v)
	default:
		return fmt.Errorf("unsupported tags column type %T", src)
	}
	if raw == "" {
		*t = nil
		return nil
	}
	*t = strings.Split(raw, ",")
	return nil
}

// Task is a single unit of work. CreatedBy is the owner and never
// changes; AssignedTo is the current assignee and may be rewritten by
// the owner only.
type Task struct {
	ID          string `gorm:"primaryKey"`
	Title       string
	Description string
	DueDate     *time.Time
	Priority    Priority `gorm:"index;default:medium"`
	Status      Status   `gorm:"default:pending"`
	Tags        TagList  `gorm:"type:text"`
	Recurrence  *Recurrence
	CreatedBy   string `gorm:"index"`
	AssignedTo  *string
	CreatedAt   time.Time
}
