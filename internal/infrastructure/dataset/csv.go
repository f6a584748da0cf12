// Package dataset reads survey response files into domain records.
// CSV is the interchange format used by the intake pipeline: one row per
// respondent, empty cells meaning the question was skipped.
package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/wellbeing-hub/survey-insights/internal/domain/shared"
	"github.com/wellbeing-hub/survey-insights/internal/domain/survey"
)

// Column names recognized in the CSV header, case-insensitive.
const (
	colRespondentID        = "respondent_id"
	colClassification      = "classification"
	colStayYears           = "stay_years"
	colDepression          = "depression_score"
	colConnectedness       = "connectedness_score"
	colAcculturativeStress = "acculturative_stress_score"
)

// ReadFile reads survey records from a CSV file.
func ReadFile(path string) ([]survey.Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, shared.WrapError("dataset", "ReadFile",
			shared.ErrNotFound, fmt.Sprintf("failed to open %s", path), err)
	}
	defer f.Close()

	return Read(f)
}

// Read parses survey records from CSV data. The first row must be a
// header; unknown columns are ignored so intake files can carry extra
// demographic columns without breaking the reader. A missing
// respondent_id column generates fresh IDs.
func Read(r io.Reader) ([]survey.Record, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, shared.NewDomainError("dataset", "Read",
			shared.ErrInvalidFormat, "dataset is empty, expected a header row")
	}
	if err != nil {
		return nil, shared.WrapError("dataset", "Read",
			shared.ErrInvalidFormat, "failed to read header row", err)
	}

	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}

	var records []survey.Record
	for line := 2; ; line++ {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, shared.WrapError("dataset", "Read",
				shared.ErrInvalidFormat, fmt.Sprintf("failed to read row %d", line), err)
		}

		record, err := parseRow(cols, row, line)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}

	return records, nil
}

// parseRow converts one CSV row into a record. Empty cells become nil
// pointers.
func parseRow(cols map[string]int, row []string, line int) (survey.Record, error) {
	record := survey.Record{}

	if raw, ok := cell(cols, row, colRespondentID); ok {
		id, err := uuid.Parse(raw)
		if err != nil {
			return survey.Record{}, shared.WrapError("dataset", "parseRow",
				shared.ErrInvalidFormat,
				fmt.Sprintf("row %d: invalid respondent_id %q", line, raw), err)
		}
		record.RespondentID = id
	} else {
		record.RespondentID = uuid.New()
	}

	if raw, ok := cell(cols, row, colClassification); ok {
		classification, err := survey.ParseClassification(raw)
		if err != nil {
			return survey.Record{}, shared.WrapError("dataset", "parseRow",
				shared.ErrInvalidFormat,
				fmt.Sprintf("row %d: invalid classification %q", line, raw), err)
		}
		record.Classification = &classification
	}

	if raw, ok := cell(cols, row, colStayYears); ok {
		years, err := strconv.Atoi(raw)
		if err != nil {
			return survey.Record{}, shared.WrapError("dataset", "parseRow",
				shared.ErrInvalidFormat,
				fmt.Sprintf("row %d: invalid stay_years %q", line, raw), err)
		}
		record.StayYears = &years
	}

	scores := []struct {
		col  string
		dest **float64
	}{
		{colDepression, &record.DepressionScore},
		{colConnectedness, &record.ConnectednessScore},
		{colAcculturativeStress, &record.AcculturativeStressScore},
	}
	for _, s := range scores {
		raw, ok := cell(cols, row, s.col)
		if !ok {
			continue
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return survey.Record{}, shared.WrapError("dataset", "parseRow",
				shared.ErrInvalidFormat,
				fmt.Sprintf("row %d: invalid %s %q", line, s.col, raw), err)
		}
		*s.dest = &v
	}

	return record, nil
}

// cell returns the trimmed value of a named column, reporting false for
// missing columns, short rows, and empty cells.
func cell(cols map[string]int, row []string, name string) (string, bool) {
	idx, ok := cols[name]
	if !ok || idx >= len(row) {
		return "", false
	}
	v := strings.TrimSpace(row[idx])
	if v == "" {
		return "", false
	}
	return v, true
}
