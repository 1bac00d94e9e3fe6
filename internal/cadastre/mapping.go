package cadastre

import (
	"strconv"
	"strings"

	"github.com/osmhh/treesync/pkg/constants"
	"github.com/osmhh/treesync/pkg/errors"
	"github.com/osmhh/treesync/pkg/records"
)

// Operator is written to every record.
const Operator = "BUKEA Hamburg"

// fieldTags maps cadastre attributes to OSM keys. Attributes not listed
// here are dropped.
var fieldTags = map[string]string{
	"baumid":            constants.TagRefBUKEA,
	"pflanzjahr":        "start_date",
	"kronendurchmesser": constants.TagDiameterCrown,
	"stammumfang":       constants.TagCircumference,
	"stand_bearbeitung": constants.TagCheckDate,
	"gattung_latein":    constants.TagGenus,
	"gattung_deutsch":   constants.TagGenus + ":de",
	"art_latein":        constants.TagSpecies,
	"art_deutsch":       constants.TagSpecies + ":de",
}

// converters rewrite attribute values whose unit differs from OSM.
var converters = map[string]func(string) (string, error){
	"stammumfang": centimetersToMeters,
}

// Tags converts the attributes of a feature into OSM tags.
func Tags(fields map[string]string) (records.Tags, error) {
	tags := records.Tags{
		constants.TagNatural:  "tree",
		constants.TagOperator: Operator,
	}
	for field, value := range fields {
		key, ok := fieldTags[field]
		if !ok {
			continue
		}
		value = strings.TrimSpace(value)
		if value == "" {
			continue
		}
		if convert, ok := converters[field]; ok {
			v, err := convert(value)
			if err != nil {
				return nil, err
			}
			value = v
		}
		tags[key] = value
	}
	return tags, nil
}

// centimetersToMeters converts a trunk circumference, "125" -> "1.25".
func centimetersToMeters(v string) (string, error) {
	cm, err := strconv.ParseFloat(strings.ReplaceAll(v, ",", "."), 64)
	if err != nil {
		return "", &errors.ValidationError{
			Field:   "stammumfang",
			Value:   v,
			Message: "not a number",
		}
	}
	return strconv.FormatFloat(cm/100, 'f', 2, 64), nil
}
