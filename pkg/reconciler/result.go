package reconciler

import (
	"fmt"
	"time"

	"github.com/agentstation/utc"

	"github.com/osmhh/treesync/pkg/records"
)

// Decision classifies what happens to a record.
type Decision string

const (
	// DecisionCreate adds the authoritative record as a new target.
	DecisionCreate Decision = "create"
	// DecisionUpdate overlays authoritative tags onto an existing target.
	DecisionUpdate Decision = "update"
	// DecisionReview defers the record to a human.
	DecisionReview Decision = "review"
	// DecisionDelete removes a linked target gone from the snapshot.
	DecisionDelete Decision = "delete"
)

// Reason explains why a record was sent to review.
type Reason string

const (
	// ReasonAmbiguous means more than one unlinked target is within safe distance.
	ReasonAmbiguous Reason = "ambiguous"
	// ReasonConflict means tags differ and the target was verified more recently.
	ReasonConflict Reason = "conflict"
	// ReasonTooFar means the only nearby target is beyond merge distance.
	ReasonTooFar Reason = "too-far"
	// ReasonNotNewer means the nearby target was verified at the same time or later.
	ReasonNotNewer Reason = "not-newer"
	// ReasonClaimed means the only nearby target already took another record this run.
	ReasonClaimed Reason = "claimed"
	// ReasonDuplicateLink means several targets carry the record's stable id.
	ReasonDuplicateLink Reason = "duplicate-link"
)

// Reasons lists all review reasons.
var Reasons = []Reason{ReasonAmbiguous, ReasonConflict, ReasonTooFar, ReasonNotNewer, ReasonClaimed, ReasonDuplicateLink}

// Review is a record deferred to a human together with the evidence.
type Review struct {
	Record    *records.Authoritative `json:"record" yaml:"record"`
	Reason    Reason                 `json:"reason" yaml:"reason"`
	Conflicts []string               `json:"conflicts,omitempty" yaml:"conflicts,omitempty"`
	Nearby    []int64                `json:"nearby,omitempty" yaml:"nearby,omitempty"`
}

// Result holds the four decision sets of one run in encounter order.
// The sets are append-only and disjoint.
type Result struct {
	Create []*records.Authoritative
	Update []*records.Target
	Review []Review
	Delete []*records.Target

	// Unchanged counts linked records that were already current.
	Unchanged int

	Metadata ResultMetadata
	Warnings []string
}

// ResultMetadata contains metadata about the reconciliation run.
type ResultMetadata struct {
	StartTime utc.Time
	EndTime   utc.Time
	Duration  time.Duration
	Stats     ResultStatistics
}

// ResultStatistics contains input sizes of the run.
type ResultStatistics struct {
	Authoritative int
	Targets       int
	Linked        int
	Unlinked      int
}

// Summary counts the decision sets.
type Summary struct {
	Created  int `json:"created" yaml:"created"`
	Updated  int `json:"updated" yaml:"updated"`
	Reviewed int `json:"reviewed" yaml:"reviewed"`
	Deleted  int `json:"deleted" yaml:"deleted"`
}

// String returns a one-line description of the counts.
func (s Summary) String() string {
	return fmt.Sprintf("%d created, %d updated, %d to review, %d deleted", s.Created, s.Updated, s.Reviewed, s.Deleted)
}

// NewResult creates an empty result.
func NewResult() *Result {
	return &Result{
		Warnings: []string{},
		Metadata: ResultMetadata{StartTime: utc.Now()},
	}
}

// AddCreate records a new entity.
func (r *Result) AddCreate(a *records.Authoritative) {
	r.Create = append(r.Create, a)
}

// AddUpdate records a target whose tags were updated.
func (r *Result) AddUpdate(t *records.Target) {
	r.Update = append(r.Update, t)
}

// AddReview records a deferred decision.
func (r *Result) AddReview(rv Review) {
	r.Review = append(r.Review, rv)
}

// AddDelete records a target to remove.
func (r *Result) AddDelete(t *records.Target) {
	r.Delete = append(r.Delete, t)
}

// Warn adds a warning.
func (r *Result) Warn(format string, args ...any) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

// Summary returns the decision counts.
func (r *Result) Summary() Summary {
	return Summary{
		Created:  len(r.Create),
		Updated:  len(r.Update),
		Reviewed: len(r.Review),
		Deleted:  len(r.Delete),
	}
}

// HasChanges reports whether anything is to be written to the target store.
func (r *Result) HasChanges() bool {
	return len(r.Create) > 0 || len(r.Update) > 0 || len(r.Delete) > 0
}

// Reviewed returns the records sent to review.
func (r *Result) Reviewed() []*records.Authoritative {
	out := make([]*records.Authoritative, len(r.Review))
	for i, rv := range r.Review {
		out[i] = rv.Record
	}
	return out
}

// ReviewCounts returns the number of reviews per reason.
func (r *Result) ReviewCounts() map[Reason]int {
	counts := make(map[Reason]int, len(Reasons))
	for _, rv := range r.Review {
		counts[rv.Reason]++
	}
	return counts
}

// Finalize calculates duration and marks completion.
func (r *Result) Finalize() {
	r.Metadata.EndTime = utc.Now()
	r.Metadata.Duration = r.Metadata.EndTime.Sub(r.Metadata.StartTime)
}
