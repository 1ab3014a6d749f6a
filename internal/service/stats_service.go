package service

import (
	"context"
	"time"

	"tasktracker/internal/model"
	"tasktracker/internal/repository"
)

// ProductivitySummary aggregates the tasks visible to one user.
type ProductivitySummary struct {
	TotalTasks           int
	CompletionRate       float64
	OverdueTasks         int
	PriorityDistribution map[model.Priority]int
}

// StatsService computes summaries consumed by report and chart tooling.
type StatsService struct {
	tasks *repository.TaskRepository
	now   func() time.Time
}

func NewStatsService(tasks *repository.TaskRepository) *StatsService {
	return &StatsService{tasks: tasks, now: time.Now}
}

// Productivity summarizes every task the user owns or is assigned.
func (s *StatsService) Productivity(ctx context.Context, username string) (ProductivitySummary, error) {
	tasks, err := s.tasks.Find(ctx, repository.TaskFilter{Username: username}, repository.SortByDueDate, false)
	if err != nil {
		return ProductivitySummary{}, err
	}

	summary := ProductivitySummary{
		TotalTasks: len(tasks),
		PriorityDistribution: map[model.Priority]int{
			model.PriorityCritical: 0,
			model.PriorityHigh:     0,
			model.PriorityMedium:   0,
			model.PriorityLow:      0,
		},
	}

	now := s.now()
	completed := 0
	for _, task := range tasks {
		if task.Status == model.StatusCompleted {
			completed++
		} else if task.DueDate != nil && task.DueDate.Before(now) {
			summary.OverdueTasks++
		}
		if _, ok := summary.PriorityDistribution[task.Priority]; ok {
			summary.PriorityDistribution[task.Priority]++
		}
	}
	if len(tasks) > 0 {
		summary.CompletionRate = float64(completed) / float64(len(tasks))
	}
	return summary, nil
}
