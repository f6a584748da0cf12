package redis

import (
	"context"
	"time"
)

// ══════════════════════════════════════════════════════════════════════════════
// REPORT CACHE
// Published snapshots of computed reports. Consumers read the latest
// snapshot; the report command overwrites it after every run.
// ══════════════════════════════════════════════════════════════════════════════

// Key layout for published reports.
const (
	// KeyStaySummary holds the latest stay-years summary snapshot.
	KeyStaySummary = "report:stay_summary:latest"

	// DefaultSnapshotTTL bounds how long a stale snapshot survives when
	// the report command stops running.
	DefaultSnapshotTTL = 15 * time.Minute
)

// SummaryRowSnapshot is one published stay group. Means are pointers so a
// group whose respondents all skipped an instrument serializes as JSON
// null rather than zero.
type SummaryRowSnapshot struct {
	StayYears               int      `json:"stay_years"`
	Count                   int      `json:"count"`
	MeanDepression          *float64 `json:"mean_depression"`
	MeanConnectedness       *float64 `json:"mean_connectedness"`
	MeanAcculturativeStress *float64 `json:"mean_acculturative_stress"`
}

// SummarySnapshot is a published stay-years summary.
type SummarySnapshot struct {
	Classification  string               `json:"classification"`
	Rows            []SummaryRowSnapshot `json:"rows"`
	TotalFiltered   int                  `json:"total_filtered"`
	SkippedNullStay int                  `json:"skipped_null_stay"`
	GeneratedAt     time.Time            `json:"generated_at"`
}

// ReportCache publishes report snapshots to Redis.
type ReportCache struct {
	cache *Cache
	ttl   time.Duration
}

// NewReportCache creates a new report cache. A zero TTL falls back to
// DefaultSnapshotTTL.
func NewReportCache(cache *Cache, ttl time.Duration) *ReportCache {
	if ttl <= 0 {
		ttl = DefaultSnapshotTTL
	}
	return &ReportCache{cache: cache, ttl: ttl}
}

// PublishStaySummary stores the latest stay summary snapshot.
func (r *ReportCache) PublishStaySummary(ctx context.Context, snapshot *SummarySnapshot) error {
	return r.cache.Set(ctx, KeyStaySummary, snapshot, r.ttl)
}

// GetStaySummary retrieves the latest stay summary snapshot.
// Returns ErrCacheMiss when no snapshot has been published.
func (r *ReportCache) GetStaySummary(ctx context.Context) (*SummarySnapshot, error) {
	var snapshot SummarySnapshot
	if err := r.cache.Get(ctx, KeyStaySummary, &snapshot); err != nil {
		return nil, err
	}
	return &snapshot, nil
}
