// Package reportdef loads report definitions from YAML files and converts
// them into domain aggregation configs. This is the boundary adapter for
// on-disk configuration: struct-tag validation happens here so the domain
// layer only ever sees well-formed values.
package reportdef

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/wellbeing-hub/survey-insights/internal/domain/report"
	"github.com/wellbeing-hub/survey-insights/internal/domain/shared"
	"github.com/wellbeing-hub/survey-insights/internal/domain/survey"
)

// Package-level validator instance for definition validation.
var validate = validator.New()

// MetricDef configures one output metric in a report definition.
type MetricDef struct {
	// Field is the record column the metric reads.
	Field string `yaml:"field" validate:"required"`

	// Fn is the aggregate applied within each group.
	Fn string `yaml:"fn" validate:"required,oneof=count mean min max stddev"`

	// DecimalPlaces is the rounding precision of the metric value.
	DecimalPlaces int `yaml:"decimal_places" validate:"min=0,max=10"`
}

// SortDef configures row ordering in a report definition.
type SortDef struct {
	// By is the sort field; empty sorts by the group key.
	By string `yaml:"by"`

	// Direction is asc or desc; empty defaults to desc.
	Direction string `yaml:"direction" validate:"omitempty,oneof=asc desc"`
}

// Definition is an on-disk report definition.
type Definition struct {
	// Name identifies the report in logs and published snapshots.
	Name string `yaml:"name" validate:"required"`

	// Classification filters respondents; "all" disables the filter.
	Classification string `yaml:"classification" validate:"omitempty,oneof=international domestic all"`

	// GroupBy is the grouping key field; empty defaults to stay_years.
	GroupBy string `yaml:"group_by"`

	// Metrics are the configured output metrics, in output order.
	Metrics []MetricDef `yaml:"metrics" validate:"omitempty,dive"`

	// Sort configures row ordering.
	Sort SortDef `yaml:"sort"`

	// Limit caps the number of rows; zero means unlimited.
	Limit int `yaml:"limit" validate:"min=0"`
}

// Default returns the built-in reference report definition: international
// respondents grouped by stay years, the three instrument means at two
// decimals, sorted descending, capped at nine groups.
func Default() *Definition {
	return &Definition{
		Name:           "stay_summary",
		Classification: survey.ClassificationInternational.String(),
		GroupBy:        survey.FieldStayYears.String(),
		Metrics: []MetricDef{
			{Field: survey.FieldDepression.String(), Fn: "mean", DecimalPlaces: 2},
			{Field: survey.FieldConnectedness.String(), Fn: "mean", DecimalPlaces: 2},
			{Field: survey.FieldAcculturativeStress.String(), Fn: "mean", DecimalPlaces: 2},
		},
		Sort:  SortDef{By: survey.FieldStayYears.String(), Direction: "desc"},
		Limit: 9,
	}
}

// Parse decodes and validates a YAML report definition.
func Parse(data []byte) (*Definition, error) {
	var def Definition
	if err := yaml.Unmarshal(data, &def); err != nil {
		return nil, shared.WrapError("reportdef", "Parse",
			shared.ErrInvalidFormat, "failed to decode report definition", err)
	}

	if err := validate.Struct(&def); err != nil {
		return nil, shared.WrapError("reportdef", "Parse",
			shared.ErrValidation, "report definition validation failed", err)
	}

	return &def, nil
}

// Load reads and parses a YAML report definition file.
func Load(path string) (*Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, shared.WrapError("reportdef", "Load",
			shared.ErrNotFound, fmt.Sprintf("failed to read %s", path), err)
	}
	return Parse(data)
}

// ToConfig converts the definition into a domain aggregation config.
// The domain config performs its own validation, so a definition that
// passes struct-tag validation can still be rejected here (for example,
// an unknown field name).
func (d *Definition) ToConfig() (report.Config, error) {
	cfg := report.Config{Limit: d.Limit}

	if d.Classification != "" && d.Classification != "all" {
		classification, err := survey.ParseClassification(d.Classification)
		if err != nil {
			return report.Config{}, err
		}
		cfg.FilterClassification = &classification
	}

	if d.GroupBy != "" {
		f, err := survey.ParseField(d.GroupBy)
		if err != nil {
			return report.Config{}, err
		}
		cfg.GroupBy = f
	}

	for _, m := range d.Metrics {
		f, err := survey.ParseField(m.Field)
		if err != nil {
			return report.Config{}, err
		}
		cfg.Metrics = append(cfg.Metrics, report.MetricSpec{
			Field:         f,
			Fn:            report.AggregateFn(m.Fn),
			DecimalPlaces: m.DecimalPlaces,
		})
	}

	if d.Sort.By != "" {
		f, err := survey.ParseField(d.Sort.By)
		if err != nil {
			return report.Config{}, err
		}
		cfg.SortBy = f
	}
	cfg.SortDirection = report.SortDirection(d.Sort.Direction)

	if err := cfg.Validate(); err != nil {
		return report.Config{}, err
	}

	return cfg, nil
}
