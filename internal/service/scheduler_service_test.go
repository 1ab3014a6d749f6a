package service

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSchedulerService_RejectsNonPositiveInterval(t *testing.T) {
	s := NewSchedulerService(time.UTC)

	_, err := s.ScheduleInterval(0, func() {})
	assert.Error(t, err)

	_, err = s.ScheduleInterval(-time.Minute, func() {})
	assert.Error(t, err)
}

func TestSchedulerService_RunsJob(t *testing.T) {
	s := NewSchedulerService(time.UTC)

	var runs atomic.Int32
	_, err := s.ScheduleInterval(time.Second, func() { runs.Add(1) })
	require.NoError(t, err)

	s.Start()
	defer s.Stop()

	deadline := time.After(3 * time.Second)
	for runs.Load() == 0 {
		select {
		case <-deadline:
			t.Fatal("job never ran")
		case <-time.After(50 * time.Millisecond):
		}
	}
}
