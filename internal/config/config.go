// Package config maps viper settings onto the reconciliation, tag rule and
// data source configuration of treesync.
package config

import (
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/osmhh/treesync/pkg/constants"
	"github.com/osmhh/treesync/pkg/errors"
	"github.com/osmhh/treesync/pkg/geo"
	"github.com/osmhh/treesync/pkg/reconciler"
	"github.com/osmhh/treesync/pkg/tagrules"
)

// Setting keys, as used in config files. Environment variables use the
// upper-case key with the TREESYNC_ prefix.
const (
	KeySafeDistance         = "safe_distance"
	KeyMergeDistance        = "merge_distance"
	KeyCellSize             = "cell_size"
	KeyRegion               = "region"
	KeyNonConflictingFields = "non_conflicting_fields"
	KeyIDTags               = "id_tags"
	KeyTimezone             = "timezone"
	KeyOverpassURL          = "overpass_url"
	KeyAreaRelation         = "area_relation"
	KeyTagRules             = "tag_rules"
	KeyRulesFile            = "rules_file"
	KeyWorkers              = "workers"
	KeyMetricsFile          = "metrics_file"
)

// DefaultRegion is the Hamburg import area as "min_lat,min_lon,max_lat,max_lon".
var DefaultRegion = strings.Join([]string{
	strconv.FormatFloat(constants.DefaultRegionMinLat, 'f', -1, 64),
	strconv.FormatFloat(constants.DefaultRegionMinLon, 'f', -1, 64),
	strconv.FormatFloat(constants.DefaultRegionMaxLat, 'f', -1, 64),
	strconv.FormatFloat(constants.DefaultRegionMaxLon, 'f', -1, 64),
}, ",")

// Config holds the domain settings of a run.
type Config struct {
	SafeDistance         float64  `json:"safe_distance" yaml:"safe_distance"`
	MergeDistance        float64  `json:"merge_distance" yaml:"merge_distance"`
	CellSize             float64  `json:"cell_size" yaml:"cell_size"`
	Region               string   `json:"region" yaml:"region"`
	NonConflictingFields []string `json:"non_conflicting_fields" yaml:"non_conflicting_fields"`
	IDTags               []string `json:"id_tags" yaml:"id_tags"`
	Timezone             string   `json:"timezone" yaml:"timezone"`
	OverpassURL          string   `json:"overpass_url" yaml:"overpass_url"`
	AreaRelation         int64    `json:"area_relation" yaml:"area_relation"`
	TagRules             []string `json:"tag_rules" yaml:"tag_rules"`
	RulesFile            string   `json:"rules_file,omitempty" yaml:"rules_file,omitempty"`
	Workers              int      `json:"workers" yaml:"workers"`
	MetricsFile          string   `json:"metrics_file,omitempty" yaml:"metrics_file,omitempty"`
}

// SetDefaults registers the default of every setting on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeySafeDistance, constants.DefaultSafeDistance)
	v.SetDefault(KeyMergeDistance, constants.DefaultMergeDistance)
	v.SetDefault(KeyCellSize, constants.DefaultCellSize)
	v.SetDefault(KeyRegion, DefaultRegion)
	v.SetDefault(KeyNonConflictingFields, []string{constants.TagCircumference, constants.TagDiameterCrown})
	v.SetDefault(KeyIDTags, []string{constants.TagRefBUKEA, constants.TagRefHPA})
	v.SetDefault(KeyTimezone, constants.DefaultTimezone)
	v.SetDefault(KeyOverpassURL, constants.DefaultOverpassURL)
	v.SetDefault(KeyAreaRelation, constants.DefaultAreaRelation)
	v.SetDefault(KeyTagRules, tagrules.DefaultRules)
	v.SetDefault(KeyWorkers, constants.DefaultWorkers)
}

// FromViper reads the domain settings from v.
func FromViper(v *viper.Viper) *Config {
	return &Config{
		SafeDistance:         v.GetFloat64(KeySafeDistance),
		MergeDistance:        v.GetFloat64(KeyMergeDistance),
		CellSize:             v.GetFloat64(KeyCellSize),
		Region:               v.GetString(KeyRegion),
		NonConflictingFields: StringList(v, KeyNonConflictingFields),
		IDTags:               StringList(v, KeyIDTags),
		Timezone:             v.GetString(KeyTimezone),
		OverpassURL:          v.GetString(KeyOverpassURL),
		AreaRelation:         v.GetInt64(KeyAreaRelation),
		TagRules:             StringList(v, KeyTagRules),
		RulesFile:            v.GetString(KeyRulesFile),
		Workers:              v.GetInt(KeyWorkers),
		MetricsFile:          v.GetString(KeyMetricsFile),
	}
}

// StringList returns a list setting. Environment variables carry lists as
// comma separated values.
func StringList(v *viper.Viper, key string) []string {
	var out []string
	for _, item := range v.GetStringSlice(key) {
		for _, part := range strings.Split(item, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

// Location loads the configured time zone.
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, errors.NewConfigError(KeyTimezone, "unknown time zone "+strconv.Quote(c.Timezone), err)
	}
	return loc, nil
}

// Reconciler builds and validates the engine configuration.
func (c *Config) Reconciler() (reconciler.Config, error) {
	region, err := ParseRegion(c.Region)
	if err != nil {
		return reconciler.Config{}, err
	}
	loc, err := c.Location()
	if err != nil {
		return reconciler.Config{}, err
	}

	cfg := reconciler.Config{
		SafeDistance:         c.SafeDistance,
		MergeDistance:        c.MergeDistance,
		CellSize:             c.CellSize,
		Region:               region,
		NonConflictingFields: c.NonConflictingFields,
		IDTags:               c.IDTags,
		Location:             loc,
	}
	if err := cfg.Validate(); err != nil {
		return reconciler.Config{}, err
	}
	return cfg, nil
}

// Pipeline builds the tag rule pipeline. A rules file takes precedence over
// the list of rule names.
func (c *Config) Pipeline() (tagrules.Pipeline, error) {
	if c.RulesFile != "" {
		return tagrules.LoadFile(c.RulesFile)
	}
	return tagrules.Build(c.TagRules)
}

// ParseRegion parses "min_lat,min_lon,max_lat,max_lon".
func ParseRegion(s string) (geo.BoundingBox, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return geo.BoundingBox{}, errors.NewValidationError(KeyRegion, s, "expected min_lat,min_lon,max_lat,max_lon")
	}
	var v [4]float64
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return geo.BoundingBox{}, errors.NewValidationError(KeyRegion, s, "invalid number "+strconv.Quote(p))
		}
		v[i] = f
	}
	box, err := geo.ParseBoundingBox(v[0], v[1], v[2], v[3])
	if err != nil {
		return geo.BoundingBox{}, errors.WrapValidation(KeyRegion, err)
	}
	return box, nil
}
