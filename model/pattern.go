package model

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/pkg/errors"
)

// StepPattern is a rhythm of arbitrary length, one bool per step.
type StepPattern []bool

// Active counts the steps that trigger a hit.
func (p StepPattern) Active() int {
	var n int
	for _, on := range p {
		if on {
			n++
		}
	}
	return n
}

// UnmarshalJSON accepts both [0,1,...] and [false,true,...].
func (p *StepPattern) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*p = nil
		return nil
	}
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return errors.Wrap(err, "step pattern must be an array")
	}
	res := make(StepPattern, len(raw))
	for i, v := range raw {
		var b bool
		if err := json.Unmarshal(v, &b); err == nil {
			res[i] = b
			continue
		}
		var n float64
		if err := json.Unmarshal(v, &n); err != nil {
			return errors.Errorf("step %d: expected 0/1 or bool, got %s", i, string(v))
		}
		res[i] = n != 0
	}
	*p = res
	return nil
}

// MarshalJSON writes the 0/1 form used by the pattern library.
func (p StepPattern) MarshalJSON() ([]byte, error) {
	ints := make([]int, len(p))
	for i, on := range p {
		if on {
			ints[i] = 1
		}
	}
	return json.Marshal(ints)
}

// CanonicalPattern is a StepPattern normalized to the loop step count.
type CanonicalPattern StepPattern

func (c CanonicalPattern) Active() int {
	return StepPattern(c).Active()
}

// Steps returns the indices of active steps in ascending order.
func (c CanonicalPattern) Steps() []int {
	var res []int
	for i, on := range c {
		if on {
			res = append(res, i)
		}
	}
	return res
}

// PatternEntry is one rhythmic template of a style.
type PatternEntry struct {
	ID         string
	InspiredBy string
	Patterns   map[Role]StepPattern
}

// Pattern returns the role's pattern, or nil when the entry has none.
func (e PatternEntry) Pattern(r Role) StepPattern {
	return e.Patterns[r]
}

func (e *PatternEntry) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return errors.Wrap(err, "pattern entry must be an object")
	}
	entry := PatternEntry{Patterns: make(map[Role]StepPattern)}
	for k, v := range fields {
		switch strings.ToLower(k) {
		case "pattern_id":
			if err := json.Unmarshal(v, &entry.ID); err != nil {
				return errors.Wrap(err, "pattern_id")
			}
		case "inspired_by":
			if err := json.Unmarshal(v, &entry.InspiredBy); err != nil {
				return errors.Wrap(err, "inspired_by")
			}
		default:
			role, ok := ParseRole(k)
			if !ok {
				// unknown instruments are carried by some libraries; ignore them
				continue
			}
			var p StepPattern
			if err := json.Unmarshal(v, &p); err != nil {
				return errors.Wrapf(err, "entry %q role %s", entry.ID, role)
			}
			entry.Patterns[role] = p
		}
	}
	*e = entry
	return nil
}

func (e PatternEntry) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(e.Patterns)+2)
	out["pattern_id"] = e.ID
	out["inspired_by"] = e.InspiredBy
	for role, p := range e.Patterns {
		out[role.Key()] = p
	}
	return json.Marshal(out)
}

// SampleAsset is one clip on disk for a role within a genre.
type SampleAsset struct {
	Path  string
	Role  Role
	Genre string
}

// Voice pairs a normalized pattern with the clip it triggers.
type Voice struct {
	Role    Role
	Pattern CanonicalPattern
	Sample  SampleAsset
}
