package cache

import (
	"context"
	"sync"
	"time"

	"github.com/cmlabs-hris/hris-attendance-payroll/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-attendance-payroll/internal/pkg/clock"
)

type memoryEntry struct {
	summary   attendance.DaySummary
	expiresAt time.Time
}

// MemorySummaryCache is the in-process SummaryCache used when no redis
// address is configured.
type MemorySummaryCache struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	ttl     time.Duration
	clock   clock.Clock
}

func NewMemorySummaryCache(ttl time.Duration, clk clock.Clock) *MemorySummaryCache {
	if ttl <= 0 {
		ttl = DefaultSummaryTTL
	}
	if clk == nil {
		clk = clock.System()
	}
	return &MemorySummaryCache{entries: make(map[string]memoryEntry), ttl: ttl, clock: clk}
}

func (c *MemorySummaryCache) Get(_ context.Context, employeeID string, workDate time.Time) (attendance.DaySummary, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[SummaryKey(employeeID, workDate)]
	if !ok || !c.clock.Now().Before(entry.expiresAt) {
		return attendance.DaySummary{}, attendance.ErrCacheMiss
	}
	return entry.summary, nil
}

func (c *MemorySummaryCache) Set(_ context.Context, summary attendance.DaySummary) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[SummaryKey(summary.EmployeeID, summary.WorkDate)] = memoryEntry{
		summary:   summary,
		expiresAt: c.clock.Now().Add(c.ttl),
	}
	return nil
}

func (c *MemorySummaryCache) Invalidate(_ context.Context, employeeID string, workDate time.Time) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.entries, SummaryKey(employeeID, workDate))
	return nil
}
