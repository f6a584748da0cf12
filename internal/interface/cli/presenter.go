// Package cli renders query results as plain-text tables for terminal
// output.
package cli

import (
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/wellbeing-hub/survey-insights/internal/application/query"
)

// nullCell marks a metric with no non-null inputs.
const nullCell = "-"

// Presenter writes formatted report output.
type Presenter struct {
	w io.Writer
}

// NewPresenter creates a presenter writing to w.
func NewPresenter(w io.Writer) *Presenter {
	return &Presenter{w: w}
}

// StaySummary renders the stay-years summary table.
func (p *Presenter) StaySummary(result *query.GetStaySummaryResult) error {
	fmt.Fprintf(p.w, "Wellbeing by length of stay (%s)\n", result.Classification)
	fmt.Fprintf(p.w, "Respondents: %d", result.TotalFiltered)
	if result.SkippedNullStay > 0 {
		fmt.Fprintf(p.w, " (%d without a stay answer, excluded)", result.SkippedNullStay)
	}
	fmt.Fprintln(p.w)
	fmt.Fprintln(p.w)

	tw := tabwriter.NewWriter(p.w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "STAY YEARS\tCOUNT\tDEPRESSION\tCONNECTEDNESS\tACCULT. STRESS")
	for _, row := range result.Rows {
		fmt.Fprintf(tw, "%d\t%d\t%s\t%s\t%s\n",
			row.StayYears,
			row.Count,
			meanCell(row.MeanDepression),
			meanCell(row.MeanConnectedness),
			meanCell(row.MeanAcculturativeStress),
		)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if len(result.Rows) == 0 {
		fmt.Fprintln(p.w, "(no groups matched)")
	}

	return nil
}

// DataQuality renders the null-count and range-violation report.
func (p *Presenter) DataQuality(result *query.GetDataQualityResult) error {
	fmt.Fprintf(p.w, "Data quality (%d records)\n\n", result.TotalRecords)

	tw := tabwriter.NewWriter(p.w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "FIELD\tNULLS\tRANGE\tOUT OF RANGE")
	for _, f := range result.Fields {
		fmt.Fprintf(tw, "%s\t%d\t%s\t%d\n",
			f.Field,
			f.NullCount,
			rangeCell(f.RangeMin, f.RangeMax),
			len(f.Violations),
		)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	for _, f := range result.Fields {
		for _, v := range f.Violations {
			fmt.Fprintf(p.w, "  %s: respondent %s has %s = %s\n",
				f.Field, v.RespondentID, f.Field,
				strconv.FormatFloat(v.Value, 'f', -1, 64))
		}
	}

	return nil
}

func meanCell(v *float64) string {
	if v == nil {
		return nullCell
	}
	return fmt.Sprintf("%.2f", *v)
}

func rangeCell(min, max *float64) string {
	if min == nil || max == nil {
		return nullCell
	}
	return fmt.Sprintf("%g..%g", *min, *max)
}
