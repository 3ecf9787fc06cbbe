package reports

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache stores built reports in Redis. A Cache without a client is a no-op.
//
// Each assessment has a version counter that Invalidate bumps. Reports are
// stored under the version read before the build started, so a build that
// raced a write lands under a stale version and is never served.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewCache(client *redis.Client, ttl time.Duration) *Cache {
	return &Cache{client: client, ttl: ttl}
}

func cacheKey(tenantID, assessmentID string, version int64) string {
	return fmt.Sprintf("okr:report:%s:%s:v%d", tenantID, assessmentID, version)
}

func versionKey(tenantID, assessmentID string) string {
	return fmt.Sprintf("okr:report:%s:%s:version", tenantID, assessmentID)
}

func (c *Cache) enabled() bool {
	return c != nil && c.client != nil
}

// Version returns the current write version of an assessment. Read it
// before loading the data a report is built from.
func (c *Cache) Version(ctx context.Context, tenantID, assessmentID string) int64 {
	if !c.enabled() {
		return 0
	}
	version, err := c.client.Get(ctx, versionKey(tenantID, assessmentID)).Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		slog.Warn("report cache version read failed", "assessmentId", assessmentID, "err", err)
	}
	return version
}

func (c *Cache) Get(ctx context.Context, tenantID, assessmentID string, version int64) (AssessmentReport, bool) {
	if !c.enabled() {
		return AssessmentReport{}, false
	}
	cached, err := c.client.Get(ctx, cacheKey(tenantID, assessmentID, version)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			slog.Warn("report cache read failed", "assessmentId", assessmentID, "err", err)
		}
		return AssessmentReport{}, false
	}
	var report AssessmentReport
	if err := json.Unmarshal(cached, &report); err != nil {
		slog.Warn("report cache decode failed", "assessmentId", assessmentID, "err", err)
		return AssessmentReport{}, false
	}
	return report, true
}

func (c *Cache) Set(ctx context.Context, tenantID string, version int64, report AssessmentReport) {
	if !c.enabled() {
		return
	}
	payload, err := json.Marshal(report)
	if err != nil {
		slog.Warn("report cache encode failed", "assessmentId", report.AssessmentID, "err", err)
		return
	}
	if err := c.client.Set(ctx, cacheKey(tenantID, report.AssessmentID, version), payload, c.ttl).Err(); err != nil {
		slog.Warn("report cache write failed", "assessmentId", report.AssessmentID, "err", err)
	}
}

func (c *Cache) Invalidate(ctx context.Context, tenantID, assessmentID string) error {
	if !c.enabled() {
		return nil
	}
	version, err := c.client.Incr(ctx, versionKey(tenantID, assessmentID)).Result()
	if err != nil {
		return err
	}
	return c.client.Del(ctx, cacheKey(tenantID, assessmentID, version-1)).Err()
}
