package tagrules_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osmhh/treesync/pkg/errors"
	"github.com/osmhh/treesync/pkg/records"
	"github.com/osmhh/treesync/pkg/tagrules"
)

func apply(t *testing.T, name string, tags records.Tags) records.Tags {
	t.Helper()
	r, err := tagrules.ByName(name)
	require.NoError(t, err)
	assert.Equal(t, name, r.Name())
	return r.Apply(tags)
}

func TestBuiltinRules(t *testing.T) {
	tests := []struct {
		name string
		rule string
		in   records.Tags
		want records.Tags
	}{
		{
			name: "trim and normalize",
			rule: tagrules.TrimSpace,
			in:   records.Tags{"genus:de": "  Linde ", "species:de": "Spitz-Ahorń"},
			want: records.Tags{"genus:de": "Linde", "species:de": "Spitz-Ahorń"},
		},
		{
			name: "drop empty",
			rule: tagrules.DropEmpty,
			in:   records.Tags{"genus": "Tilia", "start_date": ""},
			want: records.Tags{"genus": "Tilia"},
		},
		{
			name: "capitalize genus and species",
			rule: tagrules.CapitalizeGenus,
			in:   records.Tags{"genus": "tilia", "species": "TILIA cordata"},
			want: records.Tags{"genus": "Tilia", "species": "Tilia cordata"},
		},
		{
			name: "cultivar in quotes",
			rule: tagrules.ExtractCultivar,
			in:   records.Tags{"species": "Acer platanoides 'Globosum'"},
			want: records.Tags{"species": "Acer platanoides", "taxon:cultivar": "Globosum"},
		},
		{
			name: "cultivar in parentheses",
			rule: tagrules.ExtractCultivar,
			in:   records.Tags{"species": "Prunus serrulata (Kanzan)"},
			want: records.Tags{"species": "Prunus serrulata", "taxon:cultivar": "Kanzan"},
		},
		{
			name: "existing cultivar is kept",
			rule: tagrules.ExtractCultivar,
			in:   records.Tags{"species": "Prunus serrulata (Kanzan)", "taxon:cultivar": "Kwanzan"},
			want: records.Tags{"species": "Prunus serrulata", "taxon:cultivar": "Kwanzan"},
		},
		{
			name: "no cultivar",
			rule: tagrules.ExtractCultivar,
			in:   records.Tags{"species": "Quercus robur"},
			want: records.Tags{"species": "Quercus robur"},
		},
		{
			name: "species equal to genus",
			rule: tagrules.StripSpeciesEqualGenus,
			in:   records.Tags{"genus": "Tilia", "species": "tilia"},
			want: records.Tags{"genus": "Tilia"},
		},
		{
			name: "species differs from genus",
			rule: tagrules.StripSpeciesEqualGenus,
			in:   records.Tags{"genus": "Tilia", "species": "Tilia cordata"},
			want: records.Tags{"genus": "Tilia", "species": "Tilia cordata"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := tt.in.Clone()
			got := apply(t, tt.rule, tt.in)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, in, tt.in, "input must not be modified")
		})
	}
}

func TestByNameErrors(t *testing.T) {
	_, err := tagrules.ByName("no-such-rule")
	require.Error(t, err)
	assert.True(t, errors.IsNotFound(err))

	_, err = tagrules.ByName(tagrules.RegexReplace)
	require.Error(t, err)
	assert.True(t, errors.IsValidationError(err))
}

func TestRegexReplace(t *testing.T) {
	r, err := tagrules.NewRegexReplace("species", `\s+spec\.?$`, "")
	require.NoError(t, err)
	assert.Equal(t, "regex-replace:species", r.Name())

	assert.Equal(t, records.Tags{"species": "Acer"}, r.Apply(records.Tags{"species": "Acer spec."}))
	assert.Equal(t, records.Tags{"genus": "Acer"}, r.Apply(records.Tags{"genus": "Acer"}))

	blank, err := tagrules.NewRegexReplace("species", `.*`, "")
	require.NoError(t, err)
	assert.Equal(t, records.Tags{}, blank.Apply(records.Tags{"species": "Acer"}))

	_, err = tagrules.NewRegexReplace("species", `(`, "")
	assert.True(t, errors.IsValidationError(err))

	_, err = tagrules.NewRegexReplace("", `x`, "")
	assert.True(t, errors.IsValidationError(err))
}

func TestPipeline(t *testing.T) {
	p, err := tagrules.Build(tagrules.DefaultRules)
	require.NoError(t, err)
	assert.Equal(t, tagrules.DefaultRules, p.Names())

	in := records.Tags{
		"genus":      " tilia ",
		"species":    "tilia cordata 'Greenspire'",
		"species:de": "",
	}
	got := p.Apply(in)

	assert.Equal(t, records.Tags{
		"genus":          "Tilia",
		"species":        "Tilia cordata",
		"taxon:cultivar": "Greenspire",
	}, got)
	assert.Equal(t, " tilia ", in["genus"])

	_, err = tagrules.Build([]string{"trim-space", "bogus"})
	assert.Error(t, err)
}

func TestLoadFile(t *testing.T) {
	p, err := tagrules.LoadFile("testdata/rules.yaml")
	require.NoError(t, err)
	assert.Equal(t, []string{
		"trim-space",
		"drop-empty",
		"regex-replace:species",
		"capitalize-genus",
		"extract-cultivar",
		"strip-species-equal-genus",
	}, p.Names())

	got := p.Apply(records.Tags{"genus": "Acer", "species": "acer spec."})
	assert.Equal(t, records.Tags{"genus": "Acer"}, got)
}

func TestLoadFileErrors(t *testing.T) {
	_, err := tagrules.LoadFile("testdata/missing.yaml")
	require.Error(t, err)
	var ioErr *errors.IOError
	assert.True(t, errors.As(err, &ioErr))

	_, err = tagrules.Parse([]byte("rules: [\n"))
	require.Error(t, err)
	var parseErr *errors.ParseError
	assert.True(t, errors.As(err, &parseErr))
	assert.Equal(t, "yaml", parseErr.Format)

	_, err = tagrules.Parse([]byte("rules:\n  - name: regex-replace\n    key: species\n    pattern: '('\n"))
	assert.True(t, errors.IsValidationError(err))
}
