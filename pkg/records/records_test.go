package records_test

import (
	"testing"
	"time"

	"github.com/agentstation/utc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osmhh/treesync/pkg/errors"
	"github.com/osmhh/treesync/pkg/geo"
	"github.com/osmhh/treesync/pkg/records"
)

var idTags = []string{"ref:bukea", "ref:hpa"}

func TestTags(t *testing.T) {
	a := records.Tags{"genus": "Tilia", "species": "Tilia cordata", "circumference": "1.20"}
	b := records.Tags{"species": "Tilia cordata", "circumference": "1.20", "genus": "Tilia"}

	assert.True(t, a.Equal(b))
	assert.Equal(t, []string{"circumference", "genus", "species"}, a.Keys())

	c := a.Clone()
	c["genus"] = "Acer"
	assert.Equal(t, "Tilia", a["genus"])
	assert.NotNil(t, records.Tags(nil).Clone())
}

func TestConflictsWith(t *testing.T) {
	a := records.Tags{"genus": "Tilia", "circumference": "1.20", "start_date": "1990"}
	b := records.Tags{"genus": "Quercus", "circumference": "1.35", "leaf_type": "broadleaved"}

	assert.Equal(t, []string{"circumference", "genus"}, a.ConflictsWith(b, nil))
	assert.Equal(t, []string{"genus"}, a.ConflictsWith(b, map[string]bool{"circumference": true}))
	assert.Empty(t, a.ConflictsWith(records.Tags{"genus": "Tilia"}, nil))
}

func TestOverlay(t *testing.T) {
	target := records.Tags{"genus": "Tilia", "leaf_type": "broadleaved"}

	changed := target.Overlay(records.Tags{"genus": "Tilia", "species": "Tilia cordata"})
	assert.True(t, changed)
	assert.Equal(t, records.Tags{"genus": "Tilia", "species": "Tilia cordata", "leaf_type": "broadleaved"}, target)
	assert.True(t, target.ContainsAll(records.Tags{"genus": "Tilia"}))

	assert.False(t, target.Overlay(records.Tags{"genus": "Tilia"}))
	assert.False(t, target.ContainsAll(records.Tags{"genus": "Acer"}))
}

func TestStableIDOf(t *testing.T) {
	tests := []struct {
		name   string
		tags   records.Tags
		want   records.StableID
		wantOK bool
	}{
		{"bukea", records.Tags{"ref:bukea": "4711"}, "ref:bukea=4711", true},
		{"hpa", records.Tags{"ref:hpa": "12"}, "ref:hpa=12", true},
		{"bukea first", records.Tags{"ref:hpa": "12", "ref:bukea": "4711"}, "ref:bukea=4711", true},
		{"blank value", records.Tags{"ref:bukea": "  ", "ref:hpa": "12"}, "ref:hpa=12", true},
		{"none", records.Tags{"ref": "4711"}, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := records.StableIDOf(tt.tags, idTags)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}

	key, value := records.NewStableID("ref:bukea", "4711").Tag()
	assert.Equal(t, "ref:bukea", key)
	assert.Equal(t, "4711", value)
}

func TestLastVerified(t *testing.T) {
	published := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	a := &records.Authoritative{Tags: records.Tags{}, Published: utc.New(published)}
	assert.Equal(t, published, a.LastVerified(time.UTC))

	edited := time.Date(2022, 1, 1, 10, 0, 0, 0, time.UTC)
	target := &records.Target{Timestamp: utc.New(edited), Tags: records.Tags{"check_date": "2023-05-04"}}
	assert.Equal(t, time.Date(2023, 5, 4, 0, 0, 0, 0, time.UTC), target.LastVerified(time.UTC))
}

func TestStore(t *testing.T) {
	t1 := &records.Target{ID: 10, Position: geo.MustPoint(53.5, 10)}
	t2 := &records.Target{ID: 3, Position: geo.MustPoint(53.6, 10), Tags: records.Tags{"genus": "Acer"}}

	store, err := records.NewStore([]*records.Target{t1, t2})
	require.NoError(t, err)

	assert.Equal(t, 2, store.Len())
	assert.Equal(t, []*records.Target{t1, t2}, store.All())
	assert.NotNil(t, t1.Tags)

	got, ok := store.Get(3)
	require.True(t, ok)
	assert.Same(t, t2, got)

	_, ok = store.Get(99)
	assert.False(t, ok)

	assert.True(t, store.Claim(3, "ref:bukea=1"))
	assert.True(t, store.Claim(3, "ref:bukea=1"))
	assert.False(t, store.Claim(3, "ref:bukea=2"))
	owner, ok := store.ClaimedBy(3)
	assert.True(t, ok)
	assert.Equal(t, records.StableID("ref:bukea=1"), owner)

	_, ok = store.ClaimedBy(10)
	assert.False(t, ok)
}

func TestNewStoreRejectsDuplicates(t *testing.T) {
	_, err := records.NewStore([]*records.Target{{ID: 1}, {ID: 1}})
	require.Error(t, err)
	assert.True(t, errors.IsAlreadyExists(err))

	_, err = records.NewStore([]*records.Target{nil})
	require.Error(t, err)
	assert.True(t, errors.IsValidationError(err))
}
