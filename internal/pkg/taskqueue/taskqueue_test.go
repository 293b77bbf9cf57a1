package taskqueue

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	redisc "github.com/snipvault/core/internal/pkg/redis"
)

func testService(t *testing.T) *Service {
	t.Helper()
	mr := miniredis.RunT(t)
	rc, err := redisc.Connect("redis://" + mr.Addr())
	require.NoError(t, err)
	t.Cleanup(func() { _ = rc.Close() })
	return NewService(rc)
}

func TestCreateIsOneShotPerSnippet(t *testing.T) {
	svc := testService(t)
	ctx := context.Background()

	rec, created, err := svc.Create(ctx, "snip-1")
	require.NoError(t, err)
	require.True(t, created)
	assert.Equal(t, StatusQueued, rec.Status)

	// A second Create for the same snippet must lose the HSETNX claim and
	// hand back the record the first one registered.
	again, created, err := svc.Create(ctx, "snip-1")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, rec.ID, again.ID)

	other, created, err := svc.Create(ctx, "snip-2")
	require.NoError(t, err)
	assert.True(t, created)
	assert.NotEqual(t, rec.ID, other.ID)
}

func TestCreateTakesOverExpiredRecord(t *testing.T) {
	svc := testService(t)
	ctx := context.Background()

	rec, _, err := svc.Create(ctx, "snip-1")
	require.NoError(t, err)

	// Simulate the record body aging out while the mapping lingers.
	require.NoError(t, svc.rc.Raw().Del(ctx, svc.recordKey(rec.ID)).Err())

	fresh, created, err := svc.Create(ctx, "snip-1")
	require.NoError(t, err)
	assert.True(t, created)
	assert.NotEqual(t, rec.ID, fresh.ID)

	mapped, err := svc.GetBySnippet(ctx, "snip-1")
	require.NoError(t, err)
	require.NotNil(t, mapped)
	assert.Equal(t, fresh.ID, mapped.ID)
}

func TestSetStatusTransitions(t *testing.T) {
	svc := testService(t)
	ctx := context.Background()

	rec, _, err := svc.Create(ctx, "snip-1")
	require.NoError(t, err)

	require.NoError(t, svc.SetStatus(ctx, rec.ID, StatusRunning, ""))
	require.NoError(t, svc.SetStatus(ctx, rec.ID, StatusFailed, "backend unreachable"))

	got, err := svc.GetByID(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusFailed, got.Status)
	assert.Equal(t, "backend unreachable", got.Error)

	assert.Error(t, svc.SetStatus(ctx, "missing", StatusDone, ""))
}

func TestListFiltersByStatus(t *testing.T) {
	svc := testService(t)
	ctx := context.Background()

	a, _, err := svc.Create(ctx, "snip-a")
	require.NoError(t, err)
	b, _, err := svc.Create(ctx, "snip-b")
	require.NoError(t, err)
	require.NoError(t, svc.SetStatus(ctx, b.ID, StatusDone, ""))

	all, total, err := svc.List(ctx, 1, 10, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, all, 2)

	queued := StatusQueued
	only, total, err := svc.List(ctx, 1, 10, &queued)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, only, 1)
	assert.Equal(t, a.ID, only[0].ID)
}
