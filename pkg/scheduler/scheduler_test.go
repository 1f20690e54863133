package scheduler_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yeisme/reportvault/pkg/scheduler"
)

// 每年 1 月 1 日执行，测试期间不会自然触发
const rarely = "0 0 1 1 *"

func newScheduler(t *testing.T) *scheduler.Scheduler {
	t.Helper()

	s, err := scheduler.NewScheduler()
	require.NoError(t, err)

	s.Start()
	t.Cleanup(func() { _ = s.Stop() })

	return s
}

func TestAddCronAndRunNow(t *testing.T) {
	s := newScheduler(t)

	var runs atomic.Int32

	type key struct{}

	ctx := context.WithValue(context.Background(), key{}, "base")

	var seen atomic.Value

	require.NoError(t, s.AddCron(ctx, "count", rarely, func(ctx context.Context) error {
		seen.Store(ctx.Value(key{}))
		runs.Add(1)

		return nil
	}))

	require.Error(t, s.AddCron(ctx, "count", rarely, func(context.Context) error { return nil }))

	require.NoError(t, s.RunNow("count"))

	require.Eventually(t, func() bool {
		info, err := s.GetJobInfoByName("count")

		return err == nil && !info.LastSuccess.IsZero()
	}, 2*time.Second, 10*time.Millisecond)

	assert.Equal(t, int32(1), runs.Load())
	assert.Equal(t, "base", seen.Load())

	info, err := s.GetJobInfoByName("count")
	require.NoError(t, err)
	assert.Equal(t, scheduler.StatusScheduled, info.Status)
	assert.Equal(t, rarely, info.CronExpr)
	assert.False(t, info.NextRun.IsZero())
}

func TestJobErrorAndPanic(t *testing.T) {
	s := newScheduler(t)

	require.NoError(t, s.AddCron(context.Background(), "fails", rarely, func(context.Context) error {
		return errors.New("boom")
	}))
	require.NoError(t, s.AddCron(context.Background(), "panics", rarely, func(context.Context) error {
		panic("bad")
	}))

	require.NoError(t, s.RunNow("fails"))
	require.NoError(t, s.RunNow("panics"))

	for _, name := range []string{"fails", "panics"} {
		require.Eventually(t, func() bool {
			info, err := s.GetJobInfoByName(name)

			return err == nil && info.Status == scheduler.StatusError
		}, 2*time.Second, 10*time.Millisecond, name)
	}

	info, _ := s.GetJobInfoByName("panics")
	assert.Contains(t, info.Error, "panic")
	assert.True(t, info.LastSuccess.IsZero())
}

func TestRemoveAndList(t *testing.T) {
	s := newScheduler(t)

	for _, name := range []string{"b", "a"} {
		require.NoError(t, s.AddCron(context.Background(), name, rarely, func(context.Context) error { return nil }))
	}

	infos := s.GetJobInfos()
	require.Len(t, infos, 2)
	assert.Equal(t, "a", infos[0].Name)
	assert.Len(t, s.JobIDs(), 2)

	require.NoError(t, s.RemoveJobByName("a"))
	require.Error(t, s.RemoveJobByName("a"))
	require.Error(t, s.RunNow("a"))

	_, err := s.GetJobInfoByName("a")
	require.Error(t, err)
	assert.Len(t, s.GetJobInfos(), 1)
}

func TestInvalidCron(t *testing.T) {
	s := newScheduler(t)

	require.Error(t, s.AddCron(context.Background(), "bad", "not a cron", func(context.Context) error { return nil }))
	assert.Empty(t, s.GetJobInfos())
}
