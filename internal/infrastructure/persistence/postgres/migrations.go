// Package postgres implements the PostgreSQL persistence layer for Survey
// Insights.
package postgres

// ══════════════════════════════════════════════════════════════════════════════
// MIGRATION 001: CREATE SURVEY RESPONSES
// ══════════════════════════════════════════════════════════════════════════════

const migration001Up = `
-- Migration: Create survey_responses table
-- Version: 001
-- Purpose: One row per respondent. NULLs are meaningful: a NULL score
-- means the respondent skipped that instrument, and a NULL stay_years
-- means the length-of-stay question was unanswered. No CHECK constraints
-- on instrument ranges: out-of-range values are kept and surfaced by the
-- data quality report rather than rejected at write time.

CREATE TABLE IF NOT EXISTS survey_responses (
    respondent_id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    classification VARCHAR(20),
    stay_years INTEGER,
    depression_score DOUBLE PRECISION,
    connectedness_score DOUBLE PRECISION,
    acculturative_stress_score DOUBLE PRECISION,
    ingested_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),

    CONSTRAINT valid_classification CHECK (
        classification IS NULL OR classification IN ('international', 'domestic')
    )
);

-- Indexes for the reference report: filter by classification, group by stay
CREATE INDEX IF NOT EXISTS idx_survey_responses_classification ON survey_responses(classification);
CREATE INDEX IF NOT EXISTS idx_survey_responses_stay_years ON survey_responses(stay_years) WHERE stay_years IS NOT NULL;
`

const migration001Down = `
DROP TABLE IF EXISTS survey_responses;
`

// ══════════════════════════════════════════════════════════════════════════════
// EMBEDDED MIGRATIONS
// ══════════════════════════════════════════════════════════════════════════════

// GetMigrations returns all embedded migrations.
func GetMigrations() []Migration {
	return []Migration{
		{
			Version: 1,
			Name:    "create_survey_responses",
			UpSQL:   migration001Up,
			DownSQL: migration001Down,
		},
	}
}
