// Package survey contains the domain model for wellbeing survey responses.
// This is the core of the business logic - it has no infrastructure
// dependencies and records are treated as immutable inputs.
package survey

import (
	"strings"

	"github.com/google/uuid"

	"github.com/wellbeing-hub/survey-insights/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// VALUE OBJECTS
// ══════════════════════════════════════════════════════════════════════════════

// Classification identifies whether a respondent is an international or
// domestic student. A nil *Classification on a record means the answer
// was missing from the survey.
type Classification string

const (
	// ClassificationInternational - respondent studies abroad.
	ClassificationInternational Classification = "international"
	// ClassificationDomestic - respondent studies in their home country.
	ClassificationDomestic Classification = "domestic"
)

// IsValid checks that the classification is one of the known values.
func (c Classification) IsValid() bool {
	return c == ClassificationInternational || c == ClassificationDomestic
}

// String returns the string representation of the classification.
func (c Classification) String() string {
	return string(c)
}

// ParseClassification parses a survey answer into a Classification.
// Matching is case-insensitive so raw exports ("International", "Dom")
// map onto the canonical values where unambiguous.
func ParseClassification(s string) (Classification, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "international", "inter":
		return ClassificationInternational, nil
	case "domestic", "dom":
		return ClassificationDomestic, nil
	default:
		return "", shared.NewDomainError("survey", "ParseClassification",
			shared.ErrInvalidInput, "unknown classification "+strings.TrimSpace(s))
	}
}

// Field identifies a column of a survey record. Fields are the unit of
// configuration for grouping, metrics, and data-quality checks.
type Field string

const (
	// FieldClassification - international/domestic answer.
	FieldClassification Field = "classification"
	// FieldStayYears - length of stay at the institution, in years.
	FieldStayYears Field = "stay_years"
	// FieldDepression - PHQ-9 depression severity total.
	FieldDepression Field = "depression_score"
	// FieldConnectedness - SCS social connectedness total.
	FieldConnectedness Field = "connectedness_score"
	// FieldAcculturativeStress - ASISS acculturative stress total.
	FieldAcculturativeStress Field = "acculturative_stress_score"
)

// Fields returns all record fields in column order.
func Fields() []Field {
	return []Field{
		FieldClassification,
		FieldStayYears,
		FieldDepression,
		FieldConnectedness,
		FieldAcculturativeStress,
	}
}

// IsValid checks that the field names an existing record column.
func (f Field) IsValid() bool {
	switch f {
	case FieldClassification, FieldStayYears, FieldDepression,
		FieldConnectedness, FieldAcculturativeStress:
		return true
	default:
		return false
	}
}

// IsNumeric reports whether the field carries a numeric value.
// Classification is the only categorical field.
func (f Field) IsNumeric() bool {
	return f.IsValid() && f != FieldClassification
}

// IsGroupable reports whether the field can serve as a grouping key.
// Only the integer-valued stay field partitions respondents into
// discrete groups; scores are continuous instrument totals.
func (f Field) IsGroupable() bool {
	return f == FieldStayYears
}

// String returns the string representation of the field.
func (f Field) String() string {
	return string(f)
}

// ParseField parses a field name.
func ParseField(s string) (Field, error) {
	f := Field(strings.ToLower(strings.TrimSpace(s)))
	if !f.IsValid() {
		return "", shared.NewDomainError("survey", "ParseField",
			shared.ErrUnknownField, "unknown field "+strings.TrimSpace(s))
	}
	return f, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// INSTRUMENT DOMAINS
// ══════════════════════════════════════════════════════════════════════════════

// Documented instrument domains. Values outside these ranges are valid
// data - they are flagged by range checks, never dropped or clamped.
const (
	// PHQ-9 depression severity, 9 items scored 0-3.
	DepressionMin float64 = 0
	DepressionMax float64 = 27

	// SCS social connectedness, higher = more connected.
	ConnectednessMin float64 = 20
	ConnectednessMax float64 = 80

	// ASISS acculturative stress, higher = more stress.
	AcculturativeStressMin float64 = 24
	AcculturativeStressMax float64 = 120

	// Expected length-of-stay domain, in years.
	StayYearsMin float64 = 1
	StayYearsMax float64 = 10
)

// InstrumentRange returns the documented domain of a numeric field.
// The second return value is false for fields without a documented range.
func InstrumentRange(f Field) (min, max float64, ok bool) {
	switch f {
	case FieldDepression:
		return DepressionMin, DepressionMax, true
	case FieldConnectedness:
		return ConnectednessMin, ConnectednessMax, true
	case FieldAcculturativeStress:
		return AcculturativeStressMin, AcculturativeStressMax, true
	case FieldStayYears:
		return StayYearsMin, StayYearsMax, true
	default:
		return 0, 0, false
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// MAIN ENTITY: RECORD
// ══════════════════════════════════════════════════════════════════════════════

// Record is one survey respondent. Nil pointers represent missing answers
// (nulls in the backing table); null handling is the aggregation layer's
// concern, so records never reject or repair them.
type Record struct {
	// RespondentID - unique identifier of the respondent.
	RespondentID uuid.UUID

	// Classification - international or domestic, nil when unanswered.
	Classification *Classification

	// StayYears - length of stay in years, nil when unanswered.
	StayYears *int

	// DepressionScore - PHQ-9 total, nil when unanswered.
	DepressionScore *float64

	// ConnectednessScore - SCS total, nil when unanswered.
	ConnectednessScore *float64

	// AcculturativeStressScore - ASISS total, nil when unanswered.
	AcculturativeStressScore *float64
}

// Numeric returns the value of a numeric field on this record.
// The second return value is false when the answer is missing or the
// field is not numeric.
func (r Record) Numeric(f Field) (float64, bool) {
	switch f {
	case FieldStayYears:
		if r.StayYears == nil {
			return 0, false
		}
		return float64(*r.StayYears), true
	case FieldDepression:
		if r.DepressionScore == nil {
			return 0, false
		}
		return *r.DepressionScore, true
	case FieldConnectedness:
		if r.ConnectednessScore == nil {
			return 0, false
		}
		return *r.ConnectednessScore, true
	case FieldAcculturativeStress:
		if r.AcculturativeStressScore == nil {
			return 0, false
		}
		return *r.AcculturativeStressScore, true
	default:
		return 0, false
	}
}

// IsNull reports whether the field has no value on this record.
// Unknown fields report as null.
func (r Record) IsNull(f Field) bool {
	if f == FieldClassification {
		return r.Classification == nil
	}
	_, ok := r.Numeric(f)
	return !ok
}
