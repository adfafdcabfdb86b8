// Package cache holds SummaryCache implementations.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/hris-attendance-payroll/internal/domain/attendance"
	"github.com/redis/go-redis/v9"
)

const (
	SummaryKeyPrefix  = "attendance:summary:"
	DefaultSummaryTTL = 10 * time.Minute
)

// SummaryKey is the redis key of one (employee, work date) summary.
func SummaryKey(employeeID string, workDate time.Time) string {
	return fmt.Sprintf("%s%s:%s", SummaryKeyPrefix, employeeID, workDate.Format("2006-01-02"))
}

type redisSummaryCache struct {
	rdb redis.Cmdable
	ttl time.Duration
}

// NewRedisSummaryCache stores summaries as JSON with a TTL so a missed
// invalidation heals on its own.
func NewRedisSummaryCache(rdb redis.Cmdable, ttl time.Duration) attendance.SummaryCache {
	if ttl <= 0 {
		ttl = DefaultSummaryTTL
	}
	return &redisSummaryCache{rdb: rdb, ttl: ttl}
}

func (c *redisSummaryCache) Get(ctx context.Context, employeeID string, workDate time.Time) (attendance.DaySummary, error) {
	cached, err := c.rdb.Get(ctx, SummaryKey(employeeID, workDate)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return attendance.DaySummary{}, attendance.ErrCacheMiss
		}
		return attendance.DaySummary{}, err
	}

	var summary attendance.DaySummary
	if err := json.Unmarshal([]byte(cached), &summary); err != nil {
		// a corrupt entry is treated as absent
		return attendance.DaySummary{}, attendance.ErrCacheMiss
	}
	return summary, nil
}

func (c *redisSummaryCache) Set(ctx context.Context, summary attendance.DaySummary) error {
	body, err := json.Marshal(summary)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, SummaryKey(summary.EmployeeID, summary.WorkDate), string(body), c.ttl).Err()
}

func (c *redisSummaryCache) Invalidate(ctx context.Context, employeeID string, workDate time.Time) error {
	return c.rdb.Del(ctx, SummaryKey(employeeID, workDate)).Err()
}
