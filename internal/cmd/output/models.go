package output

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/agentstation/utc"

	"github.com/osmhh/treesync/pkg/constants"
	"github.com/osmhh/treesync/pkg/reconciler"
	"github.com/osmhh/treesync/pkg/records"
)

// RecordsToTableData converts cadastre records to table rows.
func RecordsToTableData(recs []*records.Authoritative) Data {
	data := Data{
		Headers:         []string{"Stable ID", "Position", "Genus", "Species", "Check Date", "Tags"},
		ColumnAlignment: []Align{AlignLeft, AlignLeft, AlignLeft, AlignLeft, AlignLeft, AlignRight},
	}
	for _, r := range recs {
		data.Rows = append(data.Rows, []string{
			string(r.ID),
			r.Position.String(),
			dash(r.Tags[constants.TagGenus]),
			dash(r.Tags[constants.TagSpecies]),
			dash(r.Tags[constants.TagCheckDate]),
			strconv.Itoa(len(r.Tags)),
		})
	}
	return data
}

// ResultToTableData converts the decision counts of a run to table rows,
// one row per decision followed by one row per review reason.
func ResultToTableData(res *reconciler.Result) Data {
	s := res.Summary()
	data := Data{
		Headers:         []string{"Decision", "Count"},
		ColumnAlignment: []Align{AlignLeft, AlignRight},
		Rows: [][]string{
			{string(reconciler.DecisionCreate), strconv.Itoa(s.Created)},
			{string(reconciler.DecisionUpdate), strconv.Itoa(s.Updated)},
			{string(reconciler.DecisionReview), strconv.Itoa(s.Reviewed)},
			{string(reconciler.DecisionDelete), strconv.Itoa(s.Deleted)},
			{"unchanged", strconv.Itoa(res.Unchanged)},
		},
	}
	counts := res.ReviewCounts()
	for _, reason := range reconciler.Reasons {
		if n := counts[reason]; n > 0 {
			data.Rows = append(data.Rows, []string{"review: " + string(reason), strconv.Itoa(n)})
		}
	}
	return data
}

// ReviewsToTableData converts review entries to table rows.
func ReviewsToTableData(reviews []reconciler.Review) Data {
	data := Data{
		Headers:         []string{"Stable ID", "Position", "Reason", "Conflicts", "Nearby"},
		ColumnAlignment: []Align{AlignLeft, AlignLeft, AlignCenter, AlignLeft, AlignLeft},
	}
	for _, rv := range reviews {
		nearby := make([]string, len(rv.Nearby))
		for i, id := range rv.Nearby {
			nearby[i] = fmt.Sprintf("n%d", id)
		}
		data.Rows = append(data.Rows, []string{
			string(rv.Record.ID),
			rv.Record.Position.String(),
			string(rv.Reason),
			dash(strings.Join(rv.Conflicts, ", ")),
			dash(strings.Join(nearby, ", ")),
		})
	}
	return data
}

// Report is the machine-readable outcome of a reconcile run.
type Report struct {
	Summary   reconciler.Summary        `json:"summary" yaml:"summary"`
	Unchanged int                       `json:"unchanged" yaml:"unchanged"`
	Reasons   map[reconciler.Reason]int `json:"reasons,omitempty" yaml:"reasons,omitempty"`
	Warnings  []string                  `json:"warnings,omitempty" yaml:"warnings,omitempty"`
	Files     map[string]string         `json:"files,omitempty" yaml:"files,omitempty"`
	DryRun    bool                      `json:"dry_run,omitempty" yaml:"dry_run,omitempty"`
	Started   utc.Time                  `json:"started" yaml:"started"`
	Finished  utc.Time                  `json:"finished" yaml:"finished"`
	Duration  string                    `json:"duration" yaml:"duration"`
}

// NewReport builds a report from a result.
func NewReport(res *reconciler.Result) *Report {
	return &Report{
		Summary:   res.Summary(),
		Unchanged: res.Unchanged,
		Reasons:   res.ReviewCounts(),
		Warnings:  res.Warnings,
		Started:   res.Metadata.StartTime,
		Finished:  res.Metadata.EndTime,
		Duration:  res.Metadata.Duration.String(),
	}
}

// FormatResult writes a run result. Table output shows the decision counts
// followed by the records left for review; json and yaml the full report.
func FormatResult(w io.Writer, format Format, res *reconciler.Result, report *Report) error {
	if format == FormatJSON || format == FormatYAML {
		return NewFormatter(format).Format(w, report)
	}
	table := NewFormatter(FormatTable)
	if err := table.Format(w, ResultToTableData(res)); err != nil {
		return err
	}
	if len(res.Review) == 0 {
		return nil
	}
	if _, err := io.WriteString(w, "\n"); err != nil {
		return err
	}
	return table.Format(w, ReviewsToTableData(res.Review))
}

// FormatRecords writes cadastre records: a summary table for table output,
// the full records otherwise.
func FormatRecords(w io.Writer, format Format, recs []*records.Authoritative) error {
	if format == FormatJSON || format == FormatYAML {
		return NewFormatter(format).Format(w, recs)
	}
	return NewFormatter(FormatTable).Format(w, RecordsToTableData(recs))
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
