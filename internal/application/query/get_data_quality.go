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
// GET DATA QUALITY QUERY
// Pre-aggregation diagnostics: null counts per field and instrument
// range violations. Violations are reported, never dropped.
// ══════════════════════════════════════════════════════════════════════════════

// GetDataQualityQuery contains the data quality request parameters.
type GetDataQualityQuery struct {
	// Fields restricts the check to the named fields. Empty checks all.
	Fields []string
}

// Validate checks the request parameters.
func (q *GetDataQualityQuery) Validate() error {
	for _, name := range q.Fields {
		if _, err := survey.ParseField(name); err != nil {
			return err
		}
	}
	return nil
}

// RangeViolationDTO is one out-of-range value in the response.
type RangeViolationDTO struct {
	RespondentID string  `json:"respondent_id"`
	Value        float64 `json:"value"`
}

// FieldQualityDTO summarizes quality findings for one field.
type FieldQualityDTO struct {
	// Field is the record column name.
	Field string `json:"field"`

	// NullCount is the number of records missing this answer.
	NullCount int `json:"null_count"`

	// RangeMin/RangeMax document the instrument domain, when one exists.
	RangeMin *float64 `json:"range_min,omitempty"`
	RangeMax *float64 `json:"range_max,omitempty"`

	// Violations lists values outside the instrument domain.
	Violations []RangeViolationDTO `json:"violations,omitempty"`
}

// GetDataQualityResult contains the data quality response.
type GetDataQualityResult struct {
	// TotalRecords is the size of the inspected snapshot.
	TotalRecords int `json:"total_records"`

	// Fields holds one entry per inspected field, in column order.
	Fields []FieldQualityDTO `json:"fields"`

	// GeneratedAt is the computation timestamp.
	GeneratedAt time.Time `json:"generated_at"`
}

// GetDataQualityHandler handles data quality queries.
type GetDataQualityHandler struct {
	records survey.Repository
	log     *logger.Logger
}

// NewGetDataQualityHandler creates a new handler.
func NewGetDataQualityHandler(records survey.Repository, log *logger.Logger) *GetDataQualityHandler {
	if log == nil {
		log = logger.Default()
	}
	return &GetDataQualityHandler{
		records: records,
		log:     log.With(logger.Component("query.get_data_quality")),
	}
}

// Handle executes the query.
func (h *GetDataQualityHandler) Handle(ctx context.Context, q GetDataQualityQuery) (*GetDataQualityResult, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	start := time.Now()

	records, err := h.records.ListAll(ctx)
	if err != nil {
		return nil, shared.WrapError("query", "GetDataQuality",
			shared.ErrExternalService, "failed to load survey records", err)
	}

	fields := make([]survey.Field, 0, len(q.Fields))
	for _, name := range q.Fields {
		f, err := survey.ParseField(name)
		if err != nil {
			return nil, err
		}
		fields = append(fields, f)
	}
	if len(fields) == 0 {
		fields = survey.Fields()
	}

	nulls, err := report.CountNulls(records, fields)
	if err != nil {
		return nil, err
	}

	result := &GetDataQualityResult{
		TotalRecords: len(records),
		Fields:       make([]FieldQualityDTO, 0, len(fields)),
		GeneratedAt:  time.Now().UTC(),
	}

	for _, f := range fields {
		dto := FieldQualityDTO{
			Field:     f.String(),
			NullCount: nulls[f],
		}

		if min, max, ok := survey.InstrumentRange(f); ok {
			dto.RangeMin = &min
			dto.RangeMax = &max

			violations, err := report.RangeCheck(records, f, min, max)
			if err != nil {
				return nil, err
			}
			for _, v := range violations {
				dto.Violations = append(dto.Violations, RangeViolationDTO{
					RespondentID: v.RespondentID.String(),
					Value:        v.Value,
				})
			}
		}

		result.Fields = append(result.Fields, dto)
	}

	h.log.Info("data quality computed",
		logger.RecordCount(result.TotalRecords),
		logger.Int("fields_checked", len(fields)),
		logger.Latency(time.Since(start)),
	)

	return result, nil
}
