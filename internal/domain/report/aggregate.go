package report

import (
	"math"
	"sort"

	"github.com/wellbeing-hub/survey-insights/internal/domain/survey"
)

// ══════════════════════════════════════════════════════════════════════════════
// SUMMARY OUTPUT
// ══════════════════════════════════════════════════════════════════════════════

// GroupSummary is one output row: the group key, the group size, and one
// value per configured metric.
type GroupSummary struct {
	// Key is the value of the group-by field shared by every record in
	// the group (stay years in the reference report).
	Key int

	// Count is the number of records in the group, always at least one.
	// A record with a null metric source still counts here.
	Count int

	// Values holds one entry per configured metric, in metric order.
	// An entry is nil when the group has no non-null value to aggregate.
	Values []*float64
}

// Summary is the result of one aggregation run.
type Summary struct {
	// Rows are the group summaries in sorted, truncated order.
	Rows []GroupSummary

	// TotalFiltered is the number of records that passed the
	// classification filter, including those with a null group key.
	TotalFiltered int

	// SkippedNullKey is the number of filtered records excluded because
	// their group key was null. Tracked for diagnostics, never an error.
	// Invariant: sum of row counts == TotalFiltered - SkippedNullKey.
	SkippedNullKey int
}

// ══════════════════════════════════════════════════════════════════════════════
// AGGREGATION
// ══════════════════════════════════════════════════════════════════════════════

// Aggregate computes the grouped summary of records under cfg.
//
// Records never mutate and the function has no side effects: two calls with
// identical inputs produce identical output. An empty input, or an input
// where the filter matches nothing, yields an empty summary - a "no groups"
// condition is a valid result, distinct from the validation failures that
// abort the call.
func Aggregate(records []survey.Record, cfg Config) (*Summary, error) {
	cfg = cfg.normalized()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	summary := &Summary{Rows: []GroupSummary{}}
	groups := make(map[int][]survey.Record)

	for _, rec := range records {
		if cfg.FilterClassification != nil {
			// A null classification cannot match any filter value.
			if rec.Classification == nil || *rec.Classification != *cfg.FilterClassification {
				continue
			}
		}
		summary.TotalFiltered++

		keyVal, ok := rec.Numeric(cfg.GroupBy)
		if !ok {
			summary.SkippedNullKey++
			continue
		}
		key := int(keyVal)
		groups[key] = append(groups[key], rec)
	}

	// Every distinct key becomes a row; no group is dropped for size.
	for key, members := range groups {
		row := GroupSummary{
			Key:    key,
			Count:  len(members),
			Values: make([]*float64, len(cfg.Metrics)),
		}
		for i, m := range cfg.Metrics {
			row.Values[i] = computeMetric(members, m)
		}
		summary.Rows = append(summary.Rows, row)
	}

	sortRows(summary.Rows, cfg)

	if cfg.Limit > 0 && len(summary.Rows) > cfg.Limit {
		summary.Rows = summary.Rows[:cfg.Limit]
	}

	return summary, nil
}

// computeMetric evaluates one metric over the members of a group.
// Null source values are excluded from the aggregate; the result is nil
// when no member has a value. Count ignores nulls entirely - it is the
// group size.
func computeMetric(members []survey.Record, m MetricSpec) *float64 {
	if m.Fn == FnCount {
		v := roundTo(float64(len(members)), m.DecimalPlaces)
		return &v
	}

	values := make([]float64, 0, len(members))
	for _, rec := range members {
		if v, ok := rec.Numeric(m.Field); ok {
			values = append(values, v)
		}
	}
	if len(values) == 0 {
		return nil
	}

	var result float64
	switch m.Fn {
	case FnMean:
		result = mean(values)
	case FnMin:
		result = values[0]
		for _, v := range values[1:] {
			if v < result {
				result = v
			}
		}
	case FnMax:
		result = values[0]
		for _, v := range values[1:] {
			if v > result {
				result = v
			}
		}
	case FnStdDev:
		result = stddev(values)
	}

	result = roundTo(result, m.DecimalPlaces)
	return &result
}

func mean(values []float64) float64 {
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// stddev computes the population standard deviation (divisor n).
func stddev(values []float64) float64 {
	m := mean(values)
	var sumsq float64
	for _, v := range values {
		d := v - m
		sumsq += d * d
	}
	return math.Sqrt(sumsq / float64(len(values)))
}

// roundTo rounds to the given number of decimal places, half away from
// zero (the math.Round convention). Chosen over banker's rounding so that
// boundary averages like x.xx5 always move outward; documented here because
// the two modes disagree exactly on those boundaries.
func roundTo(v float64, places int) float64 {
	p := math.Pow10(places)
	return math.Round(v*p) / p
}

// sortRows orders rows by the configured sort key and direction.
// Ties, and rows whose sort metric is nil, fall back to the ascending
// group key so the ordering is deterministic. Nil metric values always
// sort after present values.
func sortRows(rows []GroupSummary, cfg Config) {
	byKey := cfg.SortBy == cfg.GroupBy
	metricIdx := cfg.metricIndex(cfg.SortBy)

	sortVal := func(r GroupSummary) (float64, bool) {
		if byKey {
			return float64(r.Key), true
		}
		if v := r.Values[metricIdx]; v != nil {
			return *v, true
		}
		return 0, false
	}

	sort.Slice(rows, func(i, j int) bool {
		vi, oki := sortVal(rows[i])
		vj, okj := sortVal(rows[j])
		switch {
		case oki && !okj:
			return true
		case !oki && okj:
			return false
		case oki && okj && vi != vj:
			if cfg.SortDirection == SortDesc {
				return vi > vj
			}
			return vi < vj
		default:
			return rows[i].Key < rows[j].Key
		}
	})
}
