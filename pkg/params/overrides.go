package params

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrBadOverride is returned for overrides that cannot be applied.
var ErrBadOverride = errors.New("invalid parameter override")

// Overrides holds caller-supplied values for the three overridable records.
type Overrides struct {
	Hyper      map[string]any
	Evaluation map[string]any
	Run        map[string]any
}

// Set stores value under key in the named record ("hp", "evaluation" or "run").
func (o *Overrides) Set(record, key string, value any) error {
	if key == "" {
		return fmt.Errorf("%w: empty key for %s", ErrBadOverride, record)
	}
	var target *map[string]any
	switch record {
	case HyperName:
		target = &o.Hyper
	case EvaluationName:
		target = &o.Evaluation
	case RunName:
		target = &o.Run
	default:
		return fmt.Errorf("%w: record %q cannot be overridden", ErrBadOverride, record)
	}
	if *target == nil {
		*target = make(map[string]any)
	}
	(*target)[key] = value
	return nil
}

// ParseOverride parses "record.key=value" and stores it in o. The value is
// decoded as JSON when possible and kept as a plain string otherwise, so
// "hp.lr=0.01" sets a number and "run.video=car" sets a string.
func (o *Overrides) ParseOverride(s string) error {
	lhs, raw, ok := strings.Cut(s, "=")
	if !ok {
		return fmt.Errorf("%w: %q is not record.key=value", ErrBadOverride, s)
	}
	record, key, ok := strings.Cut(strings.TrimSpace(lhs), ".")
	if !ok {
		return fmt.Errorf("%w: %q has no record prefix", ErrBadOverride, lhs)
	}

	var value any
	if err := json.Unmarshal([]byte(raw), &value); err != nil {
		value = raw
	}
	return o.Set(record, key, value)
}
