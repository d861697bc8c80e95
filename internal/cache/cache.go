package cache

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"strings"
	"time"
)

// ReportCache stores rendered report payloads keyed by report name and
// parameters. Payloads are opaque JSON bytes so one cache serves every
// report shape.
type ReportCache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, payload []byte, ttl time.Duration) error
}

type NoopReportCache struct{}

func (NoopReportCache) Get(_ context.Context, _ string) ([]byte, bool, error) {
	return nil, false, nil
}

func (NoopReportCache) Set(_ context.Context, _ string, _ []byte, _ time.Duration) error {
	return nil
}

// Key builds a stable cache key for a report and its query parameters.
func Key(report string, params ...string) string {
	sum := sha1.Sum([]byte(strings.Join(params, "|")))
	return "report:" + report + ":" + hex.EncodeToString(sum[:])
}
