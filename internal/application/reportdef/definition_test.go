package reportdef

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wellbeing-hub/survey-insights/internal/domain/report"
	"github.com/wellbeing-hub/survey-insights/internal/domain/shared"
	"github.com/wellbeing-hub/survey-insights/internal/domain/survey"
)

const sampleYAML = `
name: stay_summary
classification: international
group_by: stay_years
metrics:
  - field: depression_score
    fn: mean
    decimal_places: 2
  - field: acculturative_stress_score
    fn: stddev
    decimal_places: 3
sort:
  by: stay_years
  direction: desc
limit: 9
`

func TestParse(t *testing.T) {
	def, err := Parse([]byte(sampleYAML))
	require.NoError(t, err)

	assert.Equal(t, "stay_summary", def.Name)
	assert.Equal(t, "international", def.Classification)
	require.Len(t, def.Metrics, 2)
	assert.Equal(t, "stddev", def.Metrics[1].Fn)
	assert.Equal(t, 3, def.Metrics[1].DecimalPlaces)
	assert.Equal(t, 9, def.Limit)
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		kind error
	}{
		{
			name: "not yaml",
			yaml: "{{{",
			kind: shared.ErrInvalidFormat,
		},
		{
			name: "missing name",
			yaml: "classification: international",
			kind: shared.ErrValidation,
		},
		{
			name: "unknown aggregate",
			yaml: "name: x\nmetrics:\n  - field: depression_score\n    fn: median",
			kind: shared.ErrValidation,
		},
		{
			name: "unknown classification",
			yaml: "name: x\nclassification: exchange",
			kind: shared.ErrValidation,
		},
		{
			name: "negative limit",
			yaml: "name: x\nlimit: -3",
			kind: shared.ErrValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.kind)
		})
	}
}

func TestDefinition_ToConfig(t *testing.T) {
	def, err := Parse([]byte(sampleYAML))
	require.NoError(t, err)

	cfg, err := def.ToConfig()
	require.NoError(t, err)

	require.NotNil(t, cfg.FilterClassification)
	assert.Equal(t, survey.ClassificationInternational, *cfg.FilterClassification)
	assert.Equal(t, survey.FieldStayYears, cfg.GroupBy)
	assert.Equal(t, report.SortDesc, cfg.SortDirection)
	assert.Equal(t, 9, cfg.Limit)

	require.Len(t, cfg.Metrics, 2)
	assert.Equal(t, report.FnMean, cfg.Metrics[0].Fn)
	assert.Equal(t, report.FnStdDev, cfg.Metrics[1].Fn)
}

func TestDefinition_ToConfig_AllDisablesFilter(t *testing.T) {
	def := Default()
	def.Classification = "all"

	cfg, err := def.ToConfig()
	require.NoError(t, err)
	assert.Nil(t, cfg.FilterClassification)
}

func TestDefinition_ToConfig_DomainValidationStillApplies(t *testing.T) {
	// Passes struct-tag validation but names a score as the group key.
	def := Default()
	def.GroupBy = survey.FieldDepression.String()
	def.Sort.By = survey.FieldDepression.String()

	_, err := def.ToConfig()
	require.Error(t, err)
	assert.ErrorIs(t, err, shared.ErrValidation)
}

func TestDefault_IsValid(t *testing.T) {
	cfg, err := Default().ToConfig()
	require.NoError(t, err)

	assert.Equal(t, 9, cfg.Limit)
	require.Len(t, cfg.Metrics, 3)
}
