// Package report implements the grouped summary computation over survey
// records: filtering, grouping by length of stay, per-group metrics,
// deterministic ordering, and the data-quality companion checks.
//
// The aggregation is a pure one-shot batch over an in-memory snapshot.
// There is no incremental variant: limit and sort depend on fully formed
// group summaries, so the whole record set is buffered before grouping.
package report

import (
	"fmt"

	"github.com/wellbeing-hub/survey-insights/internal/domain/shared"
	"github.com/wellbeing-hub/survey-insights/internal/domain/survey"
)

// ══════════════════════════════════════════════════════════════════════════════
// CONFIGURATION
// ══════════════════════════════════════════════════════════════════════════════

// AggregateFn identifies a per-group aggregate function.
type AggregateFn string

const (
	// FnCount - number of records in the group.
	FnCount AggregateFn = "count"
	// FnMean - arithmetic mean over non-null values.
	FnMean AggregateFn = "mean"
	// FnMin - minimum over non-null values.
	FnMin AggregateFn = "min"
	// FnMax - maximum over non-null values.
	FnMax AggregateFn = "max"
	// FnStdDev - population standard deviation over non-null values.
	FnStdDev AggregateFn = "stddev"
)

// IsValid checks that the function is one of the supported aggregates.
func (fn AggregateFn) IsValid() bool {
	switch fn {
	case FnCount, FnMean, FnMin, FnMax, FnStdDev:
		return true
	default:
		return false
	}
}

// SortDirection controls the ordering of summary rows.
type SortDirection string

const (
	// SortAsc - ascending order.
	SortAsc SortDirection = "asc"
	// SortDesc - descending order.
	SortDesc SortDirection = "desc"
)

// IsValid checks that the direction is asc or desc.
func (d SortDirection) IsValid() bool {
	return d == SortAsc || d == SortDesc
}

// MetricSpec configures one output metric: the source field, the aggregate
// applied to it, and the rounding precision of the result.
type MetricSpec struct {
	// Field is the record column the metric reads.
	Field survey.Field

	// Fn is the aggregate applied within each group.
	Fn AggregateFn

	// DecimalPlaces is the rounding precision of the metric value.
	DecimalPlaces int
}

// Config controls one aggregation run. The zero value of every optional
// setting maps onto the reference report: group by stay years, sort by the
// group key descending, no classification filter, no row limit.
type Config struct {
	// FilterClassification keeps only records with this classification.
	// Records with a null classification are excluded rather than matched.
	// Nil disables filtering.
	FilterClassification *survey.Classification

	// GroupBy is the grouping key field. Empty defaults to stay years.
	GroupBy survey.Field

	// Metrics are the configured output metrics, in output order.
	Metrics []MetricSpec

	// SortBy orders rows by the group key or by a configured metric's
	// source field. Empty defaults to the group key.
	SortBy survey.Field

	// SortDirection orders rows ascending or descending.
	// Empty defaults to descending, matching the reference report.
	SortDirection SortDirection

	// Limit caps the number of summary rows, keeping the head of the
	// sorted sequence. Zero means unlimited; negative is invalid.
	Limit int
}

// normalized returns a copy of the config with defaults applied.
func (c Config) normalized() Config {
	if c.GroupBy == "" {
		c.GroupBy = survey.FieldStayYears
	}
	if c.SortBy == "" {
		c.SortBy = c.GroupBy
	}
	if c.SortDirection == "" {
		c.SortDirection = SortDesc
	}
	return c
}

// Validate checks the configuration. All failures carry the validation
// error kind so callers can distinguish a malformed config from a failed
// computation; validation failures are fatal to the call and never retried.
func (c Config) Validate() error {
	c = c.normalized()

	if c.FilterClassification != nil && !c.FilterClassification.IsValid() {
		return shared.NewDomainError("report", "Validate", shared.ErrValidation,
			fmt.Sprintf("unknown classification %q", *c.FilterClassification))
	}

	if !c.GroupBy.IsValid() {
		return shared.NewDomainError("report", "Validate", shared.ErrUnknownField,
			fmt.Sprintf("group key %q is not a record field", c.GroupBy))
	}
	if !c.GroupBy.IsGroupable() {
		return shared.NewDomainError("report", "Validate", shared.ErrValidation,
			fmt.Sprintf("field %q cannot be used as a group key", c.GroupBy))
	}

	for i, m := range c.Metrics {
		if !m.Field.IsValid() {
			return shared.NewDomainError("report", "Validate", shared.ErrUnknownField,
				fmt.Sprintf("metric %d references unknown field %q", i, m.Field))
		}
		if !m.Fn.IsValid() {
			return shared.NewDomainError("report", "Validate", shared.ErrValidation,
				fmt.Sprintf("metric %d has unknown aggregate %q", i, m.Fn))
		}
		if m.Fn != FnCount && !m.Field.IsNumeric() {
			return shared.NewDomainError("report", "Validate", shared.ErrValidation,
				fmt.Sprintf("metric %d applies %s to non-numeric field %q", i, m.Fn, m.Field))
		}
		if m.DecimalPlaces < 0 {
			return shared.NewDomainError("report", "Validate", shared.ErrNegativeValue,
				fmt.Sprintf("metric %d has negative decimal places", i))
		}
	}

	if c.SortBy != c.GroupBy && c.metricIndex(c.SortBy) < 0 {
		return shared.NewDomainError("report", "Validate", shared.ErrValidation,
			fmt.Sprintf("sort key %q is neither the group key nor a configured metric field", c.SortBy))
	}
	if !c.SortDirection.IsValid() {
		return shared.NewDomainError("report", "Validate", shared.ErrValidation,
			fmt.Sprintf("unknown sort direction %q", c.SortDirection))
	}

	if c.Limit < 0 {
		return shared.NewDomainError("report", "Validate", shared.ErrNegativeValue,
			"limit must be a positive integer or zero for unlimited")
	}

	return nil
}

// metricIndex returns the position of the first metric reading the given
// field, or -1 when no metric reads it.
func (c Config) metricIndex(f survey.Field) int {
	for i, m := range c.Metrics {
		if m.Field == f {
			return i
		}
	}
	return -1
}

// DefaultStaySummaryConfig returns the reference report configuration:
// international respondents grouped by stay years, respondent count plus
// mean depression, connectedness, and acculturative stress at two decimal
// places, sorted by stay years descending, capped at nine groups.
func DefaultStaySummaryConfig() Config {
	international := survey.ClassificationInternational
	return Config{
		FilterClassification: &international,
		GroupBy:              survey.FieldStayYears,
		Metrics: []MetricSpec{
			{Field: survey.FieldDepression, Fn: FnMean, DecimalPlaces: 2},
			{Field: survey.FieldConnectedness, Fn: FnMean, DecimalPlaces: 2},
			{Field: survey.FieldAcculturativeStress, Fn: FnMean, DecimalPlaces: 2},
		},
		SortBy:        survey.FieldStayYears,
		SortDirection: SortDesc,
		Limit:         9,
	}
}
