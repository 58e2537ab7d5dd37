package jobs

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueueRunsTypedTasks(t *testing.T) {
	done := make(chan string, 2)
	q := NewQueue("emails", func(_ context.Context, task Task[string]) error {
		done <- task.Payload
		return nil
	}, Options{Workers: 2})
	q.Start(context.Background())
	defer q.Stop()

	require.NoError(t, q.Enqueue(Task[string]{ID: "1", Payload: "ana@campus.edu"}))
	require.NoError(t, q.Enqueue(Task[string]{ID: "2", Payload: "luis@campus.edu"}))

	got := map[string]bool{}
	for i := 0; i < 2; i++ {
		select {
		case to := <-done:
			got[to] = true
		case <-time.After(time.Second):
			t.Fatal("task not processed")
		}
	}
	assert.True(t, got["ana@campus.edu"] && got["luis@campus.edu"])
}

func TestQueueFailedTaskRunsOnce(t *testing.T) {
	var calls int32
	q := NewQueue("once", func(context.Context, Task[int]) error {
		atomic.AddInt32(&calls, 1)
		return errors.New("smtp down")
	}, Options{})
	q.Start(context.Background())

	require.NoError(t, q.Enqueue(Task[int]{ID: "mail"}))
	q.Stop()

	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestQueueStopDrainsBuffer(t *testing.T) {
	release := make(chan struct{})
	var calls int32
	q := NewQueue("drain", func(context.Context, Task[int]) error {
		<-release
		atomic.AddInt32(&calls, 1)
		return nil
	}, Options{Workers: 1, BufferSize: 4})
	q.Start(context.Background())

	for i := 0; i < 4; i++ {
		require.NoError(t, q.Enqueue(Task[int]{Payload: i}))
	}
	close(release)
	q.Stop()

	assert.Equal(t, int32(4), atomic.LoadInt32(&calls))
	assert.Zero(t, q.Pending())
	assert.ErrorIs(t, q.Enqueue(Task[int]{}), ErrQueueClosed)
}

func TestQueueReportsFullBuffer(t *testing.T) {
	block := make(chan struct{})
	q := NewQueue("full", func(context.Context, Task[int]) error {
		<-block
		return nil
	}, Options{Workers: 1, BufferSize: 1})
	q.Start(context.Background())
	defer func() {
		close(block)
		q.Stop()
	}()

	require.NoError(t, q.Enqueue(Task[int]{ID: "running"}))
	require.Eventually(t, func() bool { return q.Pending() == 0 }, time.Second, time.Millisecond)
	require.NoError(t, q.Enqueue(Task[int]{ID: "buffered"}))
	assert.ErrorIs(t, q.Enqueue(Task[int]{ID: "rejected"}), ErrQueueFull)
}

func TestQueueAppliesTaskTimeout(t *testing.T) {
	errs := make(chan error, 1)
	q := NewQueue("slow", func(ctx context.Context, _ Task[int]) error {
		<-ctx.Done()
		errs <- ctx.Err()
		return ctx.Err()
	}, Options{TaskTimeout: 10 * time.Millisecond})
	q.Start(context.Background())
	defer q.Stop()

	require.NoError(t, q.Enqueue(Task[int]{ID: "slow"}))
	select {
	case err := <-errs:
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	case <-time.After(time.Second):
		t.Fatal("task deadline not applied")
	}
}

func TestQueueSurvivesPanickingHandler(t *testing.T) {
	var calls int32
	q := NewQueue("panics", func(_ context.Context, task Task[int]) error {
		atomic.AddInt32(&calls, 1)
		if task.Payload == 0 {
			panic("bad template")
		}
		return nil
	}, Options{})
	q.Start(context.Background())

	require.NoError(t, q.Enqueue(Task[int]{Payload: 0}))
	require.NoError(t, q.Enqueue(Task[int]{Payload: 1}))
	q.Stop()

	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestEnqueueBeforeStartFails(t *testing.T) {
	q := NewQueue("idle", func(context.Context, Task[int]) error { return nil }, Options{})
	assert.ErrorIs(t, q.Enqueue(Task[int]{ID: "x"}), ErrQueueClosed)
	assert.Zero(t, q.Pending())
}
