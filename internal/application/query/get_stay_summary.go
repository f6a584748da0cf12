// Package query contains read operations following CQRS pattern.
// Queries never modify state - they only read and return data.
// Each query is a self-contained use case with its own request/response types.
package query

import (
	"context"
	"time"

	"github.com/wellbeing-hub/survey-insights/internal/domain/report"
	"github.com/wellbeing-hub/survey-insights/internal/domain/shared"
	"github.com/wellbeing-hub/survey-insights/internal/domain/survey"
	"github.com/wellbeing-hub/survey-insights/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET STAY SUMMARY QUERY
// Computes the grouped wellbeing summary by length of stay: respondent
// count plus mean depression, connectedness, and acculturative stress per
// stay group, sorted and capped.
// ══════════════════════════════════════════════════════════════════════════════

// ClassificationAll disables the classification filter.
const ClassificationAll = "all"

// GetStaySummaryQuery contains the stay summary request parameters.
type GetStaySummaryQuery struct {
	// Classification filters respondents ("international", "domestic",
	// or "all"). Empty defaults to international, the reference report.
	Classification string

	// Limit caps the number of stay groups (default 9, maximum 100).
	Limit int

	// SortDirection orders groups by stay years ("asc" or "desc",
	// default "desc").
	SortDirection string
}

// Validate checks the request parameters and applies defaults.
func (q *GetStaySummaryQuery) Validate() error {
	if q.Classification == "" {
		q.Classification = survey.ClassificationInternational.String()
	}
	if q.Classification != ClassificationAll {
		if _, err := survey.ParseClassification(q.Classification); err != nil {
			return err
		}
	}

	if q.Limit < 0 {
		return shared.NewDomainError("query", "GetStaySummary",
			shared.ErrNegativeValue, "limit cannot be negative")
	}
	if q.Limit == 0 {
		q.Limit = 9
	}
	if q.Limit > 100 {
		q.Limit = 100
	}

	switch q.SortDirection {
	case "":
		q.SortDirection = string(report.SortDesc)
	case string(report.SortAsc), string(report.SortDesc):
	default:
		return shared.NewDomainError("query", "GetStaySummary",
			shared.ErrInvalidInput, "sort direction must be asc or desc")
	}

	return nil
}

// StaySummaryRowDTO is one stay group in the response.
type StaySummaryRowDTO struct {
	// StayYears is the group key.
	StayYears int `json:"stay_years"`

	// Count is the number of respondents in the group.
	Count int `json:"count"`

	// MeanDepression is the mean PHQ-9 score, nil when every respondent
	// in the group left the instrument unanswered.
	MeanDepression *float64 `json:"mean_depression"`

	// MeanConnectedness is the mean SCS score.
	MeanConnectedness *float64 `json:"mean_connectedness"`

	// MeanAcculturativeStress is the mean ASISS score.
	MeanAcculturativeStress *float64 `json:"mean_acculturative_stress"`
}

// GetStaySummaryResult contains the stay summary response.
type GetStaySummaryResult struct {
	// Rows are the stay groups in sorted order.
	Rows []StaySummaryRowDTO `json:"rows"`

	// Classification is the filter that was applied.
	Classification string `json:"classification"`

	// TotalFiltered is the number of respondents that passed the filter.
	TotalFiltered int `json:"total_filtered"`

	// SkippedNullStay is the number of filtered respondents excluded
	// because their stay answer was missing.
	SkippedNullStay int `json:"skipped_null_stay"`

	// GeneratedAt is the computation timestamp.
	GeneratedAt time.Time `json:"generated_at"`
}

// GetStaySummaryHandler handles stay summary queries.
type GetStaySummaryHandler struct {
	records survey.Repository
	log     *logger.Logger
}

// NewGetStaySummaryHandler creates a new handler.
func NewGetStaySummaryHandler(records survey.Repository, log *logger.Logger) *GetStaySummaryHandler {
	if log == nil {
		log = logger.Default()
	}
	return &GetStaySummaryHandler{
		records: records,
		log:     log.With(logger.Component("query.get_stay_summary")),
	}
}

// Handle executes the query. The summary is recomputed from the backing
// table on every call; no state is held between invocations.
func (h *GetStaySummaryHandler) Handle(ctx context.Context, q GetStaySummaryQuery) (*GetStaySummaryResult, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	start := time.Now()

	records, err := h.records.ListAll(ctx)
	if err != nil {
		return nil, shared.WrapError("query", "GetStaySummary",
			shared.ErrExternalService, "failed to load survey records", err)
	}

	cfg := report.DefaultStaySummaryConfig()
	cfg.Limit = q.Limit
	cfg.SortDirection = report.SortDirection(q.SortDirection)
	if q.Classification == ClassificationAll {
		cfg.FilterClassification = nil
	} else {
		classification, err := survey.ParseClassification(q.Classification)
		if err != nil {
			return nil, err
		}
		cfg.FilterClassification = &classification
	}

	summary, err := report.Aggregate(records, cfg)
	if err != nil {
		return nil, err
	}

	result := &GetStaySummaryResult{
		Rows:            make([]StaySummaryRowDTO, 0, len(summary.Rows)),
		Classification:  q.Classification,
		TotalFiltered:   summary.TotalFiltered,
		SkippedNullStay: summary.SkippedNullKey,
		GeneratedAt:     time.Now().UTC(),
	}

	// Metric order is fixed by DefaultStaySummaryConfig: depression,
	// connectedness, acculturative stress.
	for _, row := range summary.Rows {
		result.Rows = append(result.Rows, StaySummaryRowDTO{
			StayYears:               row.Key,
			Count:                   row.Count,
			MeanDepression:          row.Values[0],
			MeanConnectedness:       row.Values[1],
			MeanAcculturativeStress: row.Values[2],
		})
	}

	h.log.Info("stay summary computed",
		logger.RecordCount(len(records)),
		logger.GroupCount(len(result.Rows)),
		logger.Int("skipped_null_stay", result.SkippedNullStay),
		logger.Latency(time.Since(start)),
	)

	return result, nil
}
