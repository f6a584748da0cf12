package report

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wellbeing-hub/survey-insights/internal/domain/survey"
)

// ══════════════════════════════════════════════════════════════════════════════
// TEST HELPERS
// ══════════════════════════════════════════════════════════════════════════════

func fptr(v float64) *float64 { return &v }
func iptr(v int) *int         { return &v }

func classification(c survey.Classification) *survey.Classification { return &c }

// respondent builds a fully answered record.
func respondent(c survey.Classification, stay int, dep, con, acc float64) survey.Record {
	return survey.Record{
		RespondentID:             uuid.New(),
		Classification:           classification(c),
		StayYears:                iptr(stay),
		DepressionScore:          fptr(dep),
		ConnectednessScore:       fptr(con),
		AcculturativeStressScore: fptr(acc),
	}
}

// rowCountSum verifies the accounting invariant of a summary.
func rowCountSum(s *Summary) int {
	total := 0
	for _, r := range s.Rows {
		total += r.Count
	}
	return total
}

// ══════════════════════════════════════════════════════════════════════════════
// REFERENCE SCENARIO
// ══════════════════════════════════════════════════════════════════════════════

func TestAggregate_ReferenceScenario(t *testing.T) {
	records := []survey.Record{
		respondent(survey.ClassificationInternational, 1, 5, 40, 60),
		respondent(survey.ClassificationInternational, 1, 6, 42, 62),
		respondent(survey.ClassificationInternational, 1, 7, 44, 64),
		// Domestic respondent must not appear in the filtered summary.
		respondent(survey.ClassificationDomestic, 1, 20, 30, 100),
		// International respondent without a stay answer is skipped.
		{
			RespondentID:             uuid.New(),
			Classification:           classification(survey.ClassificationInternational),
			DepressionScore:          fptr(10),
			ConnectednessScore:       fptr(50),
			AcculturativeStressScore: fptr(70),
		},
	}

	summary, err := Aggregate(records, DefaultStaySummaryConfig())
	require.NoError(t, err)

	assert.Equal(t, 4, summary.TotalFiltered)
	assert.Equal(t, 1, summary.SkippedNullKey)
	require.Len(t, summary.Rows, 1)

	row := summary.Rows[0]
	assert.Equal(t, 1, row.Key)
	assert.Equal(t, 3, row.Count)
	require.Len(t, row.Values, 3)
	require.NotNil(t, row.Values[0])
	require.NotNil(t, row.Values[1])
	require.NotNil(t, row.Values[2])
	assert.Equal(t, 6.00, *row.Values[0])
	assert.Equal(t, 42.00, *row.Values[1])
	assert.Equal(t, 62.00, *row.Values[2])

	assert.Equal(t, summary.TotalFiltered-summary.SkippedNullKey, rowCountSum(summary))
}

// ══════════════════════════════════════════════════════════════════════════════
// FILTERING AND NULL HANDLING
// ══════════════════════════════════════════════════════════════════════════════

func TestAggregate_NullClassificationNeverMatchesFilter(t *testing.T) {
	records := []survey.Record{
		{RespondentID: uuid.New(), StayYears: iptr(2), DepressionScore: fptr(8)},
		respondent(survey.ClassificationInternational, 2, 4, 40, 60),
	}

	summary, err := Aggregate(records, DefaultStaySummaryConfig())
	require.NoError(t, err)

	assert.Equal(t, 1, summary.TotalFiltered)
	require.Len(t, summary.Rows, 1)
	assert.Equal(t, 1, summary.Rows[0].Count)
}

func TestAggregate_NoFilterKeepsEveryClassification(t *testing.T) {
	records := []survey.Record{
		respondent(survey.ClassificationInternational, 3, 4, 40, 60),
		respondent(survey.ClassificationDomestic, 3, 8, 44, 64),
		{RespondentID: uuid.New(), StayYears: iptr(3), DepressionScore: fptr(6)},
	}

	cfg := DefaultStaySummaryConfig()
	cfg.FilterClassification = nil

	summary, err := Aggregate(records, cfg)
	require.NoError(t, err)

	assert.Equal(t, 3, summary.TotalFiltered)
	require.Len(t, summary.Rows, 1)
	assert.Equal(t, 3, summary.Rows[0].Count)
	assert.Equal(t, 6.00, *summary.Rows[0].Values[0])
}

func TestAggregate_NullMetricValuesExcludedFromMean(t *testing.T) {
	rec1 := respondent(survey.ClassificationInternational, 1, 10, 40, 60)
	rec2 := respondent(survey.ClassificationInternational, 1, 20, 42, 62)
	rec3 := respondent(survey.ClassificationInternational, 1, 0, 44, 64)
	rec3.DepressionScore = nil

	summary, err := Aggregate([]survey.Record{rec1, rec2, rec3}, DefaultStaySummaryConfig())
	require.NoError(t, err)

	require.Len(t, summary.Rows, 1)
	row := summary.Rows[0]
	// Count is the group size; the null answer still counts the respondent.
	assert.Equal(t, 3, row.Count)
	// Mean over the two non-null values, not three.
	assert.Equal(t, 15.00, *row.Values[0])
	assert.Equal(t, 42.00, *row.Values[1])
}

func TestAggregate_AllNullMetricYieldsNilValue(t *testing.T) {
	rec1 := respondent(survey.ClassificationInternational, 2, 0, 40, 60)
	rec2 := respondent(survey.ClassificationInternational, 2, 0, 42, 62)
	rec1.DepressionScore = nil
	rec2.DepressionScore = nil

	summary, err := Aggregate([]survey.Record{rec1, rec2}, DefaultStaySummaryConfig())
	require.NoError(t, err)

	require.Len(t, summary.Rows, 1)
	row := summary.Rows[0]
	assert.Equal(t, 2, row.Count)
	assert.Nil(t, row.Values[0])
	assert.NotNil(t, row.Values[1])
}

// ══════════════════════════════════════════════════════════════════════════════
// EMPTY INPUTS
// ══════════════════════════════════════════════════════════════════════════════

func TestAggregate_EmptyInputIsValid(t *testing.T) {
	summary, err := Aggregate(nil, DefaultStaySummaryConfig())
	require.NoError(t, err)

	assert.Empty(t, summary.Rows)
	assert.Equal(t, 0, summary.TotalFiltered)
	assert.Equal(t, 0, summary.SkippedNullKey)
}

func TestAggregate_FilterMatchingNothingIsValid(t *testing.T) {
	records := []survey.Record{
		respondent(survey.ClassificationDomestic, 1, 5, 40, 60),
		respondent(survey.ClassificationDomestic, 2, 6, 42, 62),
	}

	summary, err := Aggregate(records, DefaultStaySummaryConfig())
	require.NoError(t, err)

	assert.Empty(t, summary.Rows)
	assert.Equal(t, 0, summary.TotalFiltered)
}

// ══════════════════════════════════════════════════════════════════════════════
// SORTING AND LIMIT
// ══════════════════════════════════════════════════════════════════════════════

func TestAggregate_SortsByStayYearsDescending(t *testing.T) {
	records := []survey.Record{
		respondent(survey.ClassificationInternational, 2, 5, 40, 60),
		respondent(survey.ClassificationInternational, 5, 6, 42, 62),
		respondent(survey.ClassificationInternational, 1, 7, 44, 64),
		respondent(survey.ClassificationInternational, 3, 8, 46, 66),
	}

	summary, err := Aggregate(records, DefaultStaySummaryConfig())
	require.NoError(t, err)

	keys := make([]int, 0, len(summary.Rows))
	for _, r := range summary.Rows {
		keys = append(keys, r.Key)
	}
	assert.Equal(t, []int{5, 3, 2, 1}, keys)
}

func TestAggregate_SortAscending(t *testing.T) {
	records := []survey.Record{
		respondent(survey.ClassificationInternational, 4, 5, 40, 60),
		respondent(survey.ClassificationInternational, 2, 6, 42, 62),
	}

	cfg := DefaultStaySummaryConfig()
	cfg.SortDirection = SortAsc

	summary, err := Aggregate(records, cfg)
	require.NoError(t, err)

	require.Len(t, summary.Rows, 2)
	assert.Equal(t, 2, summary.Rows[0].Key)
	assert.Equal(t, 4, summary.Rows[1].Key)
}

func TestAggregate_SortByMetricBreaksTiesByKey(t *testing.T) {
	records := []survey.Record{
		respondent(survey.ClassificationInternational, 3, 10, 40, 60),
		respondent(survey.ClassificationInternational, 1, 10, 42, 62),
		respondent(survey.ClassificationInternational, 2, 20, 44, 64),
	}

	cfg := DefaultStaySummaryConfig()
	cfg.SortBy = survey.FieldDepression
	cfg.SortDirection = SortDesc

	summary, err := Aggregate(records, cfg)
	require.NoError(t, err)

	require.Len(t, summary.Rows, 3)
	assert.Equal(t, 2, summary.Rows[0].Key)
	// Groups 1 and 3 tie on mean depression; the lower key comes first.
	assert.Equal(t, 1, summary.Rows[1].Key)
	assert.Equal(t, 3, summary.Rows[2].Key)
}

func TestAggregate_NilSortMetricSortsLast(t *testing.T) {
	withScore := respondent(survey.ClassificationInternational, 1, 5, 40, 60)
	noScore := respondent(survey.ClassificationInternational, 9, 0, 42, 62)
	noScore.DepressionScore = nil

	cfg := DefaultStaySummaryConfig()
	cfg.SortBy = survey.FieldDepression
	cfg.SortDirection = SortDesc

	summary, err := Aggregate([]survey.Record{withScore, noScore}, cfg)
	require.NoError(t, err)

	require.Len(t, summary.Rows, 2)
	assert.Equal(t, 1, summary.Rows[0].Key)
	assert.Equal(t, 9, summary.Rows[1].Key)
	assert.Nil(t, summary.Rows[1].Values[0])
}

func TestAggregate_LimitKeepsHeadOfSortedRows(t *testing.T) {
	var records []survey.Record
	for stay := 1; stay <= 12; stay++ {
		records = append(records,
			respondent(survey.ClassificationInternational, stay, float64(stay), 40, 60))
	}

	summary, err := Aggregate(records, DefaultStaySummaryConfig())
	require.NoError(t, err)

	// 12 distinct stay groups, capped at 9: the highest stays survive.
	require.Len(t, summary.Rows, 9)
	assert.Equal(t, 12, summary.Rows[0].Key)
	assert.Equal(t, 4, summary.Rows[8].Key)
	// TotalFiltered counts all filtered records, not just surviving rows.
	assert.Equal(t, 12, summary.TotalFiltered)
}

func TestAggregate_ZeroLimitIsUnlimited(t *testing.T) {
	var records []survey.Record
	for stay := 1; stay <= 15; stay++ {
		records = append(records,
			respondent(survey.ClassificationInternational, stay, 5, 40, 60))
	}

	cfg := DefaultStaySummaryConfig()
	cfg.Limit = 0

	summary, err := Aggregate(records, cfg)
	require.NoError(t, err)
	assert.Len(t, summary.Rows, 15)
}

// ══════════════════════════════════════════════════════════════════════════════
// OTHER AGGREGATES
// ══════════════════════════════════════════════════════════════════════════════

func TestAggregate_MinMaxStdDev(t *testing.T) {
	records := []survey.Record{
		respondent(survey.ClassificationInternational, 1, 2, 40, 60),
		respondent(survey.ClassificationInternational, 1, 4, 42, 62),
		respondent(survey.ClassificationInternational, 1, 6, 44, 64),
	}

	cfg := Config{
		GroupBy: survey.FieldStayYears,
		Metrics: []MetricSpec{
			{Field: survey.FieldDepression, Fn: FnMin, DecimalPlaces: 2},
			{Field: survey.FieldDepression, Fn: FnMax, DecimalPlaces: 2},
			{Field: survey.FieldDepression, Fn: FnStdDev, DecimalPlaces: 4},
			{Field: survey.FieldStayYears, Fn: FnCount},
		},
	}

	summary, err := Aggregate(records, cfg)
	require.NoError(t, err)

	require.Len(t, summary.Rows, 1)
	row := summary.Rows[0]
	assert.Equal(t, 2.0, *row.Values[0])
	assert.Equal(t, 6.0, *row.Values[1])
	// Population stddev of {2, 4, 6}: sqrt(8/3).
	assert.InDelta(t, 1.6330, *row.Values[2], 0.0001)
	assert.Equal(t, 3.0, *row.Values[3])
}

func TestRoundTo_HalfAwayFromZero(t *testing.T) {
	tests := []struct {
		name   string
		value  float64
		places int
		want   float64
	}{
		{"half rounds up", 0.125, 2, 0.13},
		{"negative half rounds away", -0.125, 2, -0.13},
		{"below half rounds down", 0.1249, 2, 0.12},
		{"zero places half up", 6.5, 0, 7},
		{"zero places negative half", -6.5, 0, -7},
		{"already exact", 42.42, 2, 42.42},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, roundTo(tt.value, tt.places), 1e-9)
		})
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// DETERMINISM
// ══════════════════════════════════════════════════════════════════════════════

func TestAggregate_IsIdempotent(t *testing.T) {
	records := []survey.Record{
		respondent(survey.ClassificationInternational, 1, 5, 40, 60),
		respondent(survey.ClassificationInternational, 2, 6, 42, 62),
		respondent(survey.ClassificationInternational, 2, 7, 44, 64),
		respondent(survey.ClassificationDomestic, 1, 8, 46, 66),
	}

	first, err := Aggregate(records, DefaultStaySummaryConfig())
	require.NoError(t, err)
	second, err := Aggregate(records, DefaultStaySummaryConfig())
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestAggregate_DoesNotMutateInput(t *testing.T) {
	rec := respondent(survey.ClassificationInternational, 1, 5, 40, 60)
	records := []survey.Record{rec}

	_, err := Aggregate(records, DefaultStaySummaryConfig())
	require.NoError(t, err)

	assert.Equal(t, rec, records[0])
	assert.Equal(t, 5.0, *records[0].DepressionScore)
}

// Out-of-range values are suspect data, not errors: they stay in the
// aggregate and are only surfaced by RangeCheck.
func TestAggregate_OutOfRangeValuesStillAggregate(t *testing.T) {
	records := []survey.Record{
		respondent(survey.ClassificationInternational, 1, 30, 40, 60), // above PHQ-9 max
		respondent(survey.ClassificationInternational, 1, 10, 42, 62),
	}

	summary, err := Aggregate(records, DefaultStaySummaryConfig())
	require.NoError(t, err)

	require.Len(t, summary.Rows, 1)
	assert.Equal(t, 20.00, *summary.Rows[0].Values[0])
}
