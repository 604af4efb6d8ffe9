package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countdown reports "more to do" until n steps were taken.
type countdown struct {
	n     int
	steps int
	times []time.Time
}

func (c *countdown) Step(context.Context) bool {
	c.steps++
	c.times = append(c.times, time.Now())
	return c.steps < c.n
}

func TestDrive_Synchronous(t *testing.T) {
	t.Parallel()
	c := &countdown{n: 50}
	require.NoError(t, New(0).Drive(context.Background(), c))
	assert.Equal(t, 50, c.steps)
}

func TestDrive_NegativeDelayIsSynchronous(t *testing.T) {
	t.Parallel()
	assert.Equal(t, time.Duration(0), New(-time.Second).Delay())
}

func TestDrive_Paced(t *testing.T) {
	t.Parallel()
	const delay = 20 * time.Millisecond
	c := &countdown{n: 4}

	start := time.Now()
	require.NoError(t, New(delay).Drive(context.Background(), c))
	elapsed := time.Since(start)

	assert.Equal(t, 4, c.steps)
	assert.GreaterOrEqual(t, elapsed, 3*delay-5*time.Millisecond, "first step is immediate, the rest are paced")
	for i := 1; i < len(c.times); i++ {
		assert.GreaterOrEqual(t, c.times[i].Sub(c.times[i-1]), delay-5*time.Millisecond)
	}
}

func TestDrive_CancelStopsPacing(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(context.Background())
	c := &countdown{n: 1000}

	done := make(chan error, 1)
	go func() { done <- New(time.Hour).Drive(ctx, c) }()

	// The first step is free; the second wait blocks until cancel.
	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("Drive did not return after cancel")
	}
	assert.Equal(t, 1, c.steps)
}

func TestDrive_SynchronousHonorsCancel(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	c := &countdown{n: 10}

	err := New(0).Drive(ctx, c)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, c.steps)
}
