package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePurger struct {
	before time.Time
	n      int64
	err    error
}

func (f *fakePurger) PurgeStale(_ context.Context, before time.Time) (int64, error) {
	f.before = before
	return f.n, f.err
}

func TestRunCleanupUsesTTL(t *testing.T) {
	now := time.Date(2025, 10, 1, 3, 30, 0, 0, time.UTC)
	p := &fakePurger{n: 4}

	n, err := RunCleanup(context.Background(), p, 30*24*time.Hour, now)
	require.NoError(t, err)
	assert.EqualValues(t, 4, n)
	assert.Equal(t, time.Date(2025, 9, 1, 3, 30, 0, 0, time.UTC), p.before)
}

func TestRunCleanupReportsError(t *testing.T) {
	p := &fakePurger{err: errors.New("db down")}
	_, err := RunCleanup(context.Background(), p, time.Hour, time.Now())
	assert.Error(t, err)
}

func TestStartRejectsBadSpec(t *testing.T) {
	_, err := StartSessionCleanupScheduler(&fakePurger{}, "not a cron", time.Hour)
	assert.Error(t, err)

	c, err := StartSessionCleanupScheduler(&fakePurger{}, "30 3 * * *", time.Hour)
	require.NoError(t, err)
	assert.Len(t, c.Entries(), 1)
	c.Stop()
}
