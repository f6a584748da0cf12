package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/wellbeing-hub/survey-insights/internal/domain/shared"
	"github.com/wellbeing-hub/survey-insights/internal/domain/survey"
)

// ══════════════════════════════════════════════════════════════════════════════
// SURVEY REPOSITORY
// Reads the pre-existing survey_responses table. NULL columns scan into
// nil pointers; the domain treats them as skipped answers, never as zero.
// ══════════════════════════════════════════════════════════════════════════════

// surveyColumns is the column list shared by reads and batch inserts.
var surveyColumns = []string{
	"respondent_id",
	"classification",
	"stay_years",
	"depression_score",
	"connectedness_score",
	"acculturative_stress_score",
}

// SurveyRepository implements survey.Repository using PostgreSQL.
type SurveyRepository struct {
	conn  *Connection
	table string
}

// NewSurveyRepository creates a new survey repository. An empty table name
// falls back to survey_responses.
func NewSurveyRepository(conn *Connection, table string) *SurveyRepository {
	if table == "" {
		table = "survey_responses"
	}
	return &SurveyRepository{conn: conn, table: table}
}

// ListAll returns every survey response in the table. Ordered by
// respondent_id so repeated reads of an unchanged table produce the same
// slice.
func (r *SurveyRepository) ListAll(ctx context.Context) ([]survey.Record, error) {
	query := fmt.Sprintf(`
		SELECT respondent_id, classification, stay_years,
		       depression_score, connectedness_score, acculturative_stress_score
		FROM %s
		ORDER BY respondent_id
	`, r.table)

	rows, err := r.conn.Query(ctx, query)
	if err != nil {
		return nil, shared.WrapError("postgres", "ListAll",
			shared.ErrExternalService, "failed to query survey responses", err)
	}
	defer rows.Close()

	var records []survey.Record
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, shared.WrapError("postgres", "ListAll",
			shared.ErrExternalService, "failed to iterate survey responses", err)
	}

	return records, nil
}

// CountAll returns the number of survey responses in the table.
func (r *SurveyRepository) CountAll(ctx context.Context) (int, error) {
	query := fmt.Sprintf("SELECT COUNT(*) FROM %s", r.table)

	var count int
	if err := r.conn.QueryRow(ctx, query).Scan(&count); err != nil {
		return 0, shared.WrapError("postgres", "CountAll",
			shared.ErrExternalService, "failed to count survey responses", err)
	}

	return count, nil
}

// InsertBatch bulk-inserts survey responses via COPY. Used by the intake
// command after parsing a dataset file.
func (r *SurveyRepository) InsertBatch(ctx context.Context, records []survey.Record) (int, error) {
	if len(records) == 0 {
		return 0, nil
	}

	rows := make([][]interface{}, 0, len(records))
	for _, record := range records {
		var classification *string
		if record.Classification != nil {
			s := record.Classification.String()
			classification = &s
		}
		rows = append(rows, []interface{}{
			record.RespondentID,
			classification,
			record.StayYears,
			record.DepressionScore,
			record.ConnectednessScore,
			record.AcculturativeStressScore,
		})
	}

	copied, err := r.conn.Pool().CopyFrom(ctx,
		pgx.Identifier{r.table},
		surveyColumns,
		pgx.CopyFromRows(rows),
	)
	if err != nil {
		if IsUniqueViolation(err) {
			return 0, shared.WrapError("postgres", "InsertBatch",
				shared.ErrInvalidInput, "duplicate respondent in batch", err)
		}
		return 0, shared.WrapError("postgres", "InsertBatch",
			shared.ErrExternalService, "failed to copy survey responses", err)
	}

	return int(copied), nil
}

// scanRecord scans one survey response row.
func scanRecord(row pgx.Row) (survey.Record, error) {
	var (
		record         survey.Record
		classification *string
	)

	err := row.Scan(
		&record.RespondentID,
		&classification,
		&record.StayYears,
		&record.DepressionScore,
		&record.ConnectednessScore,
		&record.AcculturativeStressScore,
	)
	if err != nil {
		return survey.Record{}, shared.WrapError("postgres", "scanRecord",
			shared.ErrExternalService, "failed to scan survey response", err)
	}

	if classification != nil {
		parsed, err := survey.ParseClassification(*classification)
		if err != nil {
			return survey.Record{}, err
		}
		record.Classification = &parsed
	}

	return record, nil
}
