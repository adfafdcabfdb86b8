package cache_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/cmlabs-hris/hris-attendance-payroll/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-attendance-payroll/internal/pkg/clock"
	"github.com/cmlabs-hris/hris-attendance-payroll/internal/repository/cache"
	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var workDate = time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)

func sampleSummary() attendance.DaySummary {
	return attendance.DaySummary{
		EmployeeID:     "emp-1",
		WorkDate:       workDate,
		RegularMinutes: 540,
		LateMinutes:    5,
		IsComplete:     true,
	}
}

// ===== REDIS SUMMARY CACHE TESTS =====

func TestSummaryKey(t *testing.T) {
	assert.Equal(t, "attendance:summary:emp-1:2025-03-10", cache.SummaryKey("emp-1", workDate))
}

func TestRedisSummaryCache_Get(t *testing.T) {
	ctx := context.Background()
	key := cache.SummaryKey("emp-1", workDate)

	t.Run("hit", func(t *testing.T) {
		db, mock := redismock.NewClientMock()
		c := cache.NewRedisSummaryCache(db, time.Minute)

		body, err := json.Marshal(sampleSummary())
		require.NoError(t, err)
		mock.ExpectGet(key).SetVal(string(body))

		got, err := c.Get(ctx, "emp-1", workDate)
		require.NoError(t, err)
		assert.Equal(t, 540, got.RegularMinutes)
		assert.True(t, got.WorkDate.Equal(workDate))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("miss", func(t *testing.T) {
		db, mock := redismock.NewClientMock()
		c := cache.NewRedisSummaryCache(db, time.Minute)

		mock.ExpectGet(key).RedisNil()

		_, err := c.Get(ctx, "emp-1", workDate)
		assert.ErrorIs(t, err, attendance.ErrCacheMiss)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("corrupt entry is a miss", func(t *testing.T) {
		db, mock := redismock.NewClientMock()
		c := cache.NewRedisSummaryCache(db, time.Minute)

		mock.ExpectGet(key).SetVal("{not json")

		_, err := c.Get(ctx, "emp-1", workDate)
		assert.ErrorIs(t, err, attendance.ErrCacheMiss)
	})
}

func TestRedisSummaryCache_SetAndInvalidate(t *testing.T) {
	ctx := context.Background()
	db, mock := redismock.NewClientMock()
	c := cache.NewRedisSummaryCache(db, 5*time.Minute)

	summary := sampleSummary()
	body, err := json.Marshal(summary)
	require.NoError(t, err)
	key := cache.SummaryKey(summary.EmployeeID, summary.WorkDate)

	mock.ExpectSet(key, string(body), 5*time.Minute).SetVal("OK")
	mock.ExpectDel(key).SetVal(1)

	require.NoError(t, c.Set(ctx, summary))
	require.NoError(t, c.Invalidate(ctx, summary.EmployeeID, summary.WorkDate))
	assert.NoError(t, mock.ExpectationsWereMet())
}

// ===== MEMORY SUMMARY CACHE TESTS =====

func TestMemorySummaryCache(t *testing.T) {
	ctx := context.Background()
	clk := clock.NewFixed(time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC))
	c := cache.NewMemorySummaryCache(time.Minute, clk)

	_, err := c.Get(ctx, "emp-1", workDate)
	assert.ErrorIs(t, err, attendance.ErrCacheMiss)

	require.NoError(t, c.Set(ctx, sampleSummary()))
	got, err := c.Get(ctx, "emp-1", workDate)
	require.NoError(t, err)
	assert.Equal(t, 5, got.LateMinutes)

	require.NoError(t, c.Invalidate(ctx, "emp-1", workDate))
	_, err = c.Get(ctx, "emp-1", workDate)
	assert.ErrorIs(t, err, attendance.ErrCacheMiss)

	require.NoError(t, c.Set(ctx, sampleSummary()))
	clk.Advance(2 * time.Minute)
	_, err = c.Get(ctx, "emp-1", workDate)
	assert.ErrorIs(t, err, attendance.ErrCacheMiss, "expired entries are misses")
}
