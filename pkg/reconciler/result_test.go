package reconciler_test

import (
	"testing"

	"github.com/osmhh/treesync/pkg/reconciler"
	"github.com/osmhh/treesync/pkg/records"
)

func TestResultAggregates(t *testing.T) {
	r := reconciler.NewResult()
	if r.HasChanges() {
		t.Error("empty result should have no changes")
	}

	a := &records.Authoritative{ID: "ref:bukea=1"}
	b := &records.Authoritative{ID: "ref:bukea=2"}
	r.AddCreate(a)
	r.AddReview(reconciler.Review{Record: b, Reason: reconciler.ReasonAmbiguous})
	r.AddReview(reconciler.Review{Record: a, Reason: reconciler.ReasonAmbiguous})
	r.AddUpdate(&records.Target{ID: 1})
	r.AddDelete(&records.Target{ID: 2})
	r.AddDelete(&records.Target{ID: 3})
	r.Warn("target %d is odd", 7)
	r.Finalize()

	want := reconciler.Summary{Created: 1, Updated: 1, Reviewed: 2, Deleted: 2}
	if got := r.Summary(); got != want {
		t.Errorf("Summary() = %+v, want %+v", got, want)
	}
	if got := r.Summary().String(); got != "1 created, 1 updated, 2 to review, 2 deleted" {
		t.Errorf("Summary().String() = %q", got)
	}
	if !r.HasChanges() {
		t.Error("expected changes")
	}

	reviewed := r.Reviewed()
	if len(reviewed) != 2 || reviewed[0] != b || reviewed[1] != a {
		t.Errorf("Reviewed() must keep encounter order, got %v", reviewed)
	}
	if got := r.ReviewCounts()[reconciler.ReasonAmbiguous]; got != 2 {
		t.Errorf("ReviewCounts()[ambiguous] = %d, want 2", got)
	}
	if len(r.Warnings) != 1 || r.Warnings[0] != "target 7 is odd" {
		t.Errorf("Warnings = %v", r.Warnings)
	}
	if r.Metadata.EndTime.Before(r.Metadata.StartTime) {
		t.Error("end time before start time")
	}
}

func TestReviewOnlyResultHasNoChanges(t *testing.T) {
	r := reconciler.NewResult()
	r.AddReview(reconciler.Review{Record: &records.Authoritative{ID: "ref:bukea=1"}, Reason: reconciler.ReasonConflict})
	if r.HasChanges() {
		t.Error("reviews are not changes")
	}
}
