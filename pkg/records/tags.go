package records

import (
	"maps"
	"slices"
)

// Tags is a key/value tag mapping. Order is irrelevant for equality.
type Tags map[string]string

// Equal reports whether t and other hold the same keys and values.
func (t Tags) Equal(other Tags) bool {
	return maps.Equal(t, other)
}

// Clone returns an independent copy. Cloning nil yields an empty map.
func (t Tags) Clone() Tags {
	out := make(Tags, len(t))
	maps.Copy(out, t)
	return out
}

// Keys returns the keys in sorted order.
func (t Tags) Keys() []string {
	return slices.Sorted(maps.Keys(t))
}

// ConflictsWith returns the sorted keys present in both t and other with
// different values, ignoring keys in exclude.
func (t Tags) ConflictsWith(other Tags, exclude map[string]bool) []string {
	var keys []string
	for k, v := range t {
		if exclude[k] {
			continue
		}
		if ov, ok := other[k]; ok && ov != v {
			keys = append(keys, k)
		}
	}
	slices.Sort(keys)
	return keys
}

// ContainsAll reports whether every key of other is present in t with the
// same value.
func (t Tags) ContainsAll(other Tags) bool {
	for k, v := range other {
		if ov, ok := t[k]; !ok || ov != v {
			return false
		}
	}
	return true
}

// Overlay copies every key of src into t, replacing existing values.
// Keys only present in t are kept. It reports whether t changed.
func (t Tags) Overlay(src Tags) bool {
	changed := false
	for k, v := range src {
		if ov, ok := t[k]; !ok || ov != v {
			t[k] = v
			changed = true
		}
	}
	return changed
}
