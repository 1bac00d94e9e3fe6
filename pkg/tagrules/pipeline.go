package tagrules

import (
	"os"

	"github.com/goccy/go-yaml"

	"github.com/osmhh/treesync/pkg/errors"
	"github.com/osmhh/treesync/pkg/records"
)

// Pipeline applies rules in order.
type Pipeline []Rule

// Apply runs every rule on tags and returns the result. tags is not modified.
func (p Pipeline) Apply(tags records.Tags) records.Tags {
	out := tags.Clone()
	for _, r := range p {
		out = r.Apply(out)
	}
	return out
}

// Names returns the rule names in order.
func (p Pipeline) Names() []string {
	names := make([]string, len(p))
	for i, r := range p {
		names[i] = r.Name()
	}
	return names
}

// Build returns a pipeline of builtin rules.
func Build(names []string) (Pipeline, error) {
	p := make(Pipeline, 0, len(names))
	for _, name := range names {
		r, err := ByName(name)
		if err != nil {
			return nil, err
		}
		p = append(p, r)
	}
	return p, nil
}

// File is the YAML layout of a rules file.
type File struct {
	Rules []RuleSpec `yaml:"rules"`
}

// RuleSpec configures one rule of a rules file. Key, Pattern and Replace
// are only used by regex-replace.
type RuleSpec struct {
	Name    string `yaml:"name"`
	Key     string `yaml:"key,omitempty"`
	Pattern string `yaml:"pattern,omitempty"`
	Replace string `yaml:"replace,omitempty"`
}

// Parse builds a pipeline from rules file content.
func Parse(data []byte) (Pipeline, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, errors.WrapParse("yaml", "", err)
	}

	p := make(Pipeline, 0, len(f.Rules))
	for _, entry := range f.Rules {
		if entry.Name == RegexReplace {
			r, err := NewRegexReplace(entry.Key, entry.Pattern, entry.Replace)
			if err != nil {
				return nil, err
			}
			p = append(p, r)
			continue
		}
		r, err := ByName(entry.Name)
		if err != nil {
			return nil, err
		}
		p = append(p, r)
	}
	return p, nil
}

// LoadFile reads a rules file.
func LoadFile(path string) (Pipeline, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WrapIO("read", path, err)
	}
	p, err := Parse(data)
	if err != nil {
		var pe *errors.ParseError
		if errors.As(err, &pe) {
			pe.File = path
		}
		return nil, err
	}
	return p, nil
}
