package report

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/wellbeing-hub/survey-insights/internal/domain/shared"
	"github.com/wellbeing-hub/survey-insights/internal/domain/survey"
)

// ErrEmptyResult is reserved for callers that need to treat a zero-group
// summary as exceptional. Aggregate never returns it: an empty result is a
// valid outcome, distinct from a hard failure.
var ErrEmptyResult = errors.New("report: summary has no groups")

// ══════════════════════════════════════════════════════════════════════════════
// DATA-QUALITY CHECKS
// ══════════════════════════════════════════════════════════════════════════════

// CountNulls counts missing answers per field across all records, used for
// pre-aggregation diagnostics. An empty field list counts every field.
func CountNulls(records []survey.Record, fields []survey.Field) (map[survey.Field]int, error) {
	if len(fields) == 0 {
		fields = survey.Fields()
	}

	counts := make(map[survey.Field]int, len(fields))
	for _, f := range fields {
		if !f.IsValid() {
			return nil, shared.NewDomainError("report", "CountNulls", shared.ErrUnknownField,
				fmt.Sprintf("unknown field %q", f))
		}
		counts[f] = 0
	}

	for _, rec := range records {
		for _, f := range fields {
			if rec.IsNull(f) {
				counts[f]++
			}
		}
	}

	return counts, nil
}

// Violation identifies one out-of-range value: which respondent, which
// field, and the offending value.
type Violation struct {
	RespondentID uuid.UUID
	Field        survey.Field
	Value        float64
}

// RangeCheck flags records whose field value falls outside [min, max].
// Violations are reported, never dropped or clamped - an out-of-range
// value is suspect data, not an error, and it still participates in
// aggregation. Null values are missing answers, not violations.
func RangeCheck(records []survey.Record, field survey.Field, min, max float64) ([]Violation, error) {
	if !field.IsNumeric() {
		return nil, shared.NewDomainError("report", "RangeCheck", shared.ErrUnknownField,
			fmt.Sprintf("field %q is not a numeric record field", field))
	}
	if min > max {
		return nil, shared.NewDomainError("report", "RangeCheck", shared.ErrValidation,
			fmt.Sprintf("range lower bound %v exceeds upper bound %v", min, max))
	}

	var violations []Violation
	for _, rec := range records {
		v, ok := rec.Numeric(field)
		if !ok {
			continue
		}
		if v < min || v > max {
			violations = append(violations, Violation{
				RespondentID: rec.RespondentID,
				Field:        field,
				Value:        v,
			})
		}
	}

	return violations, nil
}

// CheckInstrumentRanges runs RangeCheck against the documented domain of
// every instrumented field.
func CheckInstrumentRanges(records []survey.Record) (map[survey.Field][]Violation, error) {
	result := make(map[survey.Field][]Violation)
	for _, f := range survey.Fields() {
		min, max, ok := survey.InstrumentRange(f)
		if !ok {
			continue
		}
		violations, err := RangeCheck(records, f, min, max)
		if err != nil {
			return nil, err
		}
		result[f] = violations
	}
	return result, nil
}
