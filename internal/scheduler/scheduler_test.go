package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddJobRejectsBadSpec(t *testing.T) {
	s := NewScheduler(logrus.New(), time.Second)
	_, err := s.AddJob("bad", "not a spec", func(context.Context) error { return nil })
	require.Error(t, err)
}

func TestAddJobRequiresSecondsField(t *testing.T) {
	s := NewScheduler(logrus.New(), time.Second)
	_, err := s.AddJob("five-field", "0 6 * * *", func(context.Context) error { return nil })
	require.Error(t, err)

	_, err = s.AddJob("six-field", "0 0 6 * * *", func(context.Context) error { return nil })
	require.NoError(t, err)
}

func TestAddJobDuplicateName(t *testing.T) {
	s := NewScheduler(logrus.New(), time.Second)
	noop := func(context.Context) error { return nil }
	_, err := s.AddJob("eval", "@every 1h", noop)
	require.NoError(t, err)
	_, err = s.AddJob("eval", "@every 1h", noop)
	assert.Error(t, err)
}

func TestStartWithoutJobs(t *testing.T) {
	s := NewScheduler(logrus.New(), time.Second)
	assert.Error(t, s.Start())
}

func TestScheduledJobRuns(t *testing.T) {
	s := NewScheduler(logrus.New(), time.Second)
	ran := make(chan struct{}, 1)
	_, err := s.AddJob("tick", "* * * * * *", func(ctx context.Context) error {
		select {
		case ran <- struct{}{}:
		default:
		}
		return nil
	})
	require.NoError(t, err)
	require.NoError(t, s.Start())
	defer s.Stop()

	assert.True(t, s.IsRunning())
	next, ok := s.NextRun("tick")
	assert.True(t, ok)
	assert.False(t, next.IsZero())

	select {
	case <-ran:
	case <-time.After(3 * time.Second):
		t.Fatal("job did not run")
	}
}

func TestRunNowPropagatesError(t *testing.T) {
	s := NewScheduler(logrus.New(), time.Second)
	boom := errors.New("boom")
	err := s.RunNow("manual", func(ctx context.Context) error {
		_, hasDeadline := ctx.Deadline()
		assert.True(t, hasDeadline)
		return boom
	})
	assert.ErrorIs(t, err, boom)
}

func TestRemoveJob(t *testing.T) {
	s := NewScheduler(logrus.New(), time.Second)
	_, err := s.AddJob("eval", "@every 1h", func(context.Context) error { return nil })
	require.NoError(t, err)
	require.NoError(t, s.RemoveJob("eval"))
	_, ok := s.NextRun("eval")
	assert.False(t, ok)
	assert.Error(t, s.RemoveJob("eval"))
}
