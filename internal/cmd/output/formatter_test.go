package output

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osmhh/treesync/pkg/errors"
	"github.com/osmhh/treesync/pkg/geo"
	"github.com/osmhh/treesync/pkg/reconciler"
	"github.com/osmhh/treesync/pkg/records"
)

func testRecords() []*records.Authoritative {
	return []*records.Authoritative{
		{
			ID:       "ref:bukea=100001",
			Position: geo.MustPoint(53.5508629, 9.9811003),
			Tags:     records.Tags{"natural": "tree", "genus": "Tilia", "ref:bukea": "100001"},
		},
		{
			ID:       "ref:bukea=100002",
			Position: geo.MustPoint(53.5658112, 9.9984099),
			Tags:     records.Tags{"natural": "tree", "ref:bukea": "100002"},
		},
	}
}

func testResult() *reconciler.Result {
	res := reconciler.NewResult()
	recs := testRecords()
	res.AddCreate(recs[0])
	res.AddReview(reconciler.Review{Record: recs[1], Reason: reconciler.ReasonAmbiguous, Nearby: []int64{7, 9}})
	res.Unchanged = 3
	res.Finalize()
	return res
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		input   string
		want    Format
		wantErr bool
	}{
		{"table", FormatTable, false},
		{"JSON", FormatJSON, false},
		{"yaml", FormatYAML, false},
		{"", "", false},
		{"csv", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseFormat(tt.input)
			if tt.wantErr {
				assert.True(t, errors.IsValidationError(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDetectFormatExplicit(t *testing.T) {
	assert.Equal(t, FormatYAML, DetectFormat("YAML"))
}

func TestJSONFormatter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewFormatter(FormatJSON).Format(&buf, testRecords()))

	var decoded []map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	require.Len(t, decoded, 2)
	assert.Equal(t, "ref:bukea=100001", decoded[0]["id"])
}

func TestYAMLFormatter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewFormatter(FormatYAML).Format(&buf, NewReport(testResult())))

	out := buf.String()
	assert.Contains(t, out, "created: 1")
	assert.Contains(t, out, "reviewed: 1")
	assert.Contains(t, out, "unchanged: 3")
	assert.Contains(t, out, "ambiguous: 1")
}

func TestTableFormatter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewFormatter(FormatTable).Format(&buf, RecordsToTableData(testRecords())))

	out := buf.String()
	assert.Contains(t, strings.ToLower(out), "stable id")
	assert.Contains(t, out, "ref:bukea=100001")
	assert.Contains(t, out, "53.5508629,9.9811003")
	assert.Contains(t, out, "Tilia")
}

func TestTableFormatterFallsBackToJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewFormatter(FormatTable).Format(&buf, testResult().Summary()))

	var decoded reconciler.Summary
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, 1, decoded.Created)
}

func TestResultToTableData(t *testing.T) {
	data := ResultToTableData(testResult())

	assert.Equal(t, []string{"create", "1"}, data.Rows[0])
	assert.Equal(t, []string{"review", "1"}, data.Rows[2])
	assert.Equal(t, []string{"unchanged", "3"}, data.Rows[4])
	assert.Equal(t, []string{"review: ambiguous", "1"}, data.Rows[5])
	assert.Len(t, data.Rows, 6)
}

func TestReviewsToTableData(t *testing.T) {
	data := ReviewsToTableData(testResult().Review)

	require.Len(t, data.Rows, 1)
	assert.Equal(t, "ambiguous", data.Rows[0][2])
	assert.Equal(t, "-", data.Rows[0][3])
	assert.Equal(t, "n7, n9", data.Rows[0][4])
}

func TestFormatResult(t *testing.T) {
	res := testResult()
	report := NewReport(res)
	report.Files = map[string]string{"change": "out/baeume-aenderungen.osc"}

	var buf bytes.Buffer
	require.NoError(t, FormatResult(&buf, FormatJSON, res, report))

	var decoded Report
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, 1, decoded.Summary.Created)
	assert.Equal(t, "out/baeume-aenderungen.osc", decoded.Files["change"])
	assert.Equal(t, res.Metadata.StartTime.Unix(), decoded.Started.Unix())
	assert.False(t, decoded.Finished.Before(decoded.Started))
}

func TestFormatResultTable(t *testing.T) {
	tests := []struct {
		name       string
		result     func() *reconciler.Result
		wantReview bool
	}{
		{"with reviews", testResult, true},
		{"without reviews", func() *reconciler.Result {
			res := reconciler.NewResult()
			res.AddCreate(testRecords()[0])
			res.Finalize()
			return res
		}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := tt.result()
			var buf bytes.Buffer
			require.NoError(t, FormatResult(&buf, FormatTable, res, NewReport(res)))

			out := buf.String()
			assert.Contains(t, out, "unchanged")
			if tt.wantReview {
				assert.Contains(t, out, "ref:bukea=100002")
				assert.Contains(t, out, "n7, n9")
			} else {
				assert.NotContains(t, strings.ToLower(out), "nearby")
			}
		})
	}
}

func TestReportYAMLTimes(t *testing.T) {
	res := testResult()
	var buf bytes.Buffer
	require.NoError(t, NewFormatter(FormatYAML).Format(&buf, NewReport(res)))

	out := buf.String()
	assert.Contains(t, out, "started:")
	assert.Contains(t, out, res.Metadata.StartTime.Format("2006-01-02T15:04:05Z"))
}
