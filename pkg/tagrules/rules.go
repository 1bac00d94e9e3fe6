// Package tagrules provides small, pure tag transformations applied to
// cadastre records before reconciliation. Dataset specific cleanup lives
// here so the matching engine stays free of tag semantics.
package tagrules

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"

	"github.com/osmhh/treesync/pkg/constants"
	"github.com/osmhh/treesync/pkg/errors"
	"github.com/osmhh/treesync/pkg/records"
)

// Rule transforms a tag set. Apply must not modify its argument.
type Rule interface {
	Name() string
	Apply(tags records.Tags) records.Tags
}

// Builtin rule names.
const (
	TrimSpace              = "trim-space"
	DropEmpty              = "drop-empty"
	CapitalizeGenus        = "capitalize-genus"
	ExtractCultivar        = "extract-cultivar"
	StripSpeciesEqualGenus = "strip-species-equal-genus"
	RegexReplace           = "regex-replace"
)

// DefaultRules is the rule order used when nothing is configured.
var DefaultRules = []string{TrimSpace, DropEmpty, CapitalizeGenus, ExtractCultivar, StripSpeciesEqualGenus}

// RuleFunc adapts a function to the Rule interface.
type RuleFunc struct {
	name string
	fn   func(records.Tags) records.Tags
}

// NewRuleFunc returns a named rule. fn receives a copy of the tags and may
// modify it.
func NewRuleFunc(name string, fn func(records.Tags) records.Tags) RuleFunc {
	return RuleFunc{name: name, fn: fn}
}

// Name implements Rule.
func (r RuleFunc) Name() string { return r.name }

// Apply implements Rule.
func (r RuleFunc) Apply(tags records.Tags) records.Tags {
	return r.fn(tags.Clone())
}

// ByName returns the builtin rule with the given name. regex-replace needs
// parameters and is only available through NewRegexReplace or a rules file.
func ByName(name string) (Rule, error) {
	switch name {
	case TrimSpace:
		return NewRuleFunc(name, trimSpace), nil
	case DropEmpty:
		return NewRuleFunc(name, dropEmpty), nil
	case CapitalizeGenus:
		return NewRuleFunc(name, capitalizeGenus), nil
	case ExtractCultivar:
		return NewRuleFunc(name, extractCultivar), nil
	case StripSpeciesEqualGenus:
		return NewRuleFunc(name, stripSpeciesEqualGenus), nil
	case RegexReplace:
		return nil, &errors.ValidationError{
			Field:   "rule",
			Value:   name,
			Message: "regex-replace requires key, pattern and replace and must be configured in a rules file",
		}
	default:
		return nil, &errors.NotFoundError{Resource: "tag rule", ID: name}
	}
}

func trimSpace(tags records.Tags) records.Tags {
	for k, v := range tags {
		tags[k] = norm.NFC.String(strings.TrimSpace(v))
	}
	return tags
}

func dropEmpty(tags records.Tags) records.Tags {
	for k, v := range tags {
		if v == "" {
			delete(tags, k)
		}
	}
	return tags
}

// capitalizeGenus writes the genus and the first word of the species with
// an upper-case initial, the way botanical names are spelled.
func capitalizeGenus(tags records.Tags) records.Tags {
	if v, ok := tags[constants.TagGenus]; ok {
		tags[constants.TagGenus] = capitalizeFirstWord(v)
	}
	if v, ok := tags[constants.TagSpecies]; ok {
		tags[constants.TagSpecies] = capitalizeFirstWord(v)
	}
	return tags
}

func capitalizeFirstWord(v string) string {
	first, rest, found := strings.Cut(v, " ")
	// a Caser is stateful and must not be shared between goroutines
	first = cases.Title(language.Und).String(first)
	if !found {
		return first
	}
	return first + " " + rest
}

var cultivarPattern = regexp.MustCompile(`^(.+?)\s*(?:'([^']+)'|"([^"]+)"|\(([^)]+)\))\s*$`)

// extractCultivar moves a quoted or parenthesized cultivar name out of the
// species, e.g. "Acer platanoides 'Globosum'".
func extractCultivar(tags records.Tags) records.Tags {
	species, ok := tags[constants.TagSpecies]
	if !ok {
		return tags
	}
	m := cultivarPattern.FindStringSubmatch(species)
	if m == nil {
		return tags
	}
	cultivar := strings.TrimSpace(m[2] + m[3] + m[4])
	if cultivar == "" {
		return tags
	}
	tags[constants.TagSpecies] = strings.TrimSpace(m[1])
	if _, exists := tags[constants.TagCultivar]; !exists {
		tags[constants.TagCultivar] = cultivar
	}
	return tags
}

// stripSpeciesEqualGenus drops a species that only repeats the genus, which
// the cadastre records when the species is unknown.
func stripSpeciesEqualGenus(tags records.Tags) records.Tags {
	genus, ok := tags[constants.TagGenus]
	if !ok {
		return tags
	}
	if species, ok := tags[constants.TagSpecies]; ok && strings.EqualFold(strings.TrimSpace(species), strings.TrimSpace(genus)) {
		delete(tags, constants.TagSpecies)
	}
	return tags
}

// Replace rewrites the value of one key with a regular expression.
// A value that becomes empty is removed.
type Replace struct {
	Key     string
	Pattern *regexp.Regexp
	With    string
}

// NewRegexReplace compiles a regex-replace rule.
func NewRegexReplace(key, pattern, with string) (*Replace, error) {
	if key == "" {
		return nil, &errors.ValidationError{Field: "key", Message: "regex-replace rule needs a key"}
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, errors.WrapValidation("pattern", err)
	}
	return &Replace{Key: key, Pattern: re, With: with}, nil
}

// Name implements Rule.
func (r *Replace) Name() string { return RegexReplace + ":" + r.Key }

// Apply implements Rule.
func (r *Replace) Apply(tags records.Tags) records.Tags {
	out := tags.Clone()
	v, ok := out[r.Key]
	if !ok {
		return out
	}
	v = strings.TrimSpace(r.Pattern.ReplaceAllString(v, r.With))
	if v == "" {
		delete(out, r.Key)
	} else {
		out[r.Key] = v
	}
	return out
}
