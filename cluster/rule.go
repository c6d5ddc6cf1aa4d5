package cluster

import (
	"errors"
	"fmt"
	"math"

	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
)

// Kind selects how a Rule interprets the field it reads.
type Kind string

const (
	// KindEquals passes when the string at Path equals Value.
	KindEquals Kind = "equals"
	// KindNotEquals passes when the string at Path is set, non-empty and differs from Value.
	KindNotEquals Kind = "notEquals"
	// KindRange passes when the integer at Path lies within [Min, Max].
	KindRange Kind = "range"
	// KindPresent passes when the value at Path is set and non-empty.
	KindPresent Kind = "present"
	// KindAnyEquals passes when some element of the list at Path has Field equal to Value.
	KindAnyEquals Kind = "anyEquals"
	// KindAllHaveKey passes when the list at Path is non-empty and every element
	// carries Key in the map found at Field.
	KindAllHaveKey Kind = "allHaveKey"
)

// Rule is a declarative pass condition over a decoded cluster object.
type Rule struct {
	Kind  Kind     `yaml:"kind"`
	Path  []string `yaml:"path"`
	Field []string `yaml:"field,omitempty"`
	Key   string   `yaml:"key,omitempty"`
	Value string   `yaml:"value,omitempty"`
	Min   *int64   `yaml:"min,omitempty"`
	Max   *int64   `yaml:"max,omitempty"`
}

// Outcome is the determination of a rule. Observed is nil when nothing
// meaningful was found at the rule's path.
type Outcome struct {
	Pass     bool
	Observed interface{}
}

var errInvalidRule = errors.New("invalid rule")

// Validate reports whether the rule carries the parameters its kind needs.
func (r Rule) Validate() error {
	if len(r.Path) == 0 {
		return fmt.Errorf("%w: %s: empty path", errInvalidRule, r.Kind)
	}
	switch r.Kind {
	case KindEquals, KindNotEquals:
		if r.Value == "" {
			return fmt.Errorf("%w: %s: value is required", errInvalidRule, r.Kind)
		}
	case KindRange:
		if r.Min == nil && r.Max == nil {
			return fmt.Errorf("%w: %s: min or max is required", errInvalidRule, r.Kind)
		}
		if r.Min != nil && r.Max != nil && *r.Min > *r.Max {
			return fmt.Errorf("%w: %s: min %d exceeds max %d", errInvalidRule, r.Kind, *r.Min, *r.Max)
		}
	case KindPresent:
	case KindAnyEquals:
		if len(r.Field) == 0 || r.Value == "" {
			return fmt.Errorf("%w: %s: field and value are required", errInvalidRule, r.Kind)
		}
	case KindAllHaveKey:
		if r.Key == "" {
			return fmt.Errorf("%w: %s: key is required", errInvalidRule, r.Kind)
		}
	default:
		return fmt.Errorf("%w: unknown kind %q", errInvalidRule, r.Kind)
	}
	return nil
}

// Evaluate applies the rule to obj. A missing or mistyped field never passes.
func (r Rule) Evaluate(obj map[string]interface{}) Outcome {
	if obj == nil {
		return Outcome{}
	}
	val, found, _ := unstructured.NestedFieldNoCopy(obj, r.Path...)
	if !found {
		val = nil
	}

	switch r.Kind {
	case KindEquals:
		s, ok := val.(string)
		if !ok {
			return Outcome{Observed: val}
		}
		return Outcome{Pass: s == r.Value, Observed: s}

	case KindNotEquals:
		s, ok := val.(string)
		if !ok || s == "" {
			return Outcome{Observed: val}
		}
		return Outcome{Pass: s != r.Value, Observed: s}

	case KindRange:
		n, ok := asInt64(val)
		if !ok {
			return Outcome{Observed: val}
		}
		pass := (r.Min == nil || n >= *r.Min) && (r.Max == nil || n <= *r.Max)
		return Outcome{Pass: pass, Observed: n}

	case KindPresent:
		if !truthy(val) {
			return Outcome{}
		}
		return Outcome{Pass: true, Observed: val}

	case KindAnyEquals:
		items, ok := val.([]interface{})
		if !ok || len(items) == 0 {
			return Outcome{}
		}
		observed := make([]interface{}, 0, len(items))
		pass := false
		for _, item := range items {
			m, ok := item.(map[string]interface{})
			if !ok {
				continue
			}
			v, found, _ := unstructured.NestedFieldNoCopy(m, r.Field...)
			if !found {
				continue
			}
			observed = append(observed, v)
			if s, ok := v.(string); ok && s == r.Value {
				pass = true
			}
		}
		return Outcome{Pass: pass, Observed: observed}

	case KindAllHaveKey:
		items, _ := val.([]interface{})
		matched := 0
		for _, item := range items {
			m, ok := item.(map[string]interface{})
			if !ok {
				continue
			}
			keys := m
			if len(r.Field) > 0 {
				v, _, _ := unstructured.NestedFieldNoCopy(m, r.Field...)
				if keys, ok = v.(map[string]interface{}); !ok {
					continue
				}
			}
			if _, ok := keys[r.Key]; ok {
				matched++
			}
		}
		return Outcome{
			Pass:     len(items) > 0 && matched == len(items),
			Observed: fmt.Sprintf("%d/%d", matched, len(items)),
		}
	}
	return Outcome{}
}

func asInt64(v interface{}) (int64, bool) {
	switch n := v.(type) {
	case int64:
		return n, true
	case int:
		return int64(n), true
	case float64:
		if n != math.Trunc(n) || math.IsInf(n, 0) {
			return 0, false
		}
		return int64(n), true
	}
	return 0, false
}

func truthy(v interface{}) bool {
	switch t := v.(type) {
	case nil:
		return false
	case string:
		return t != ""
	case bool:
		return t
	case map[string]interface{}:
		return len(t) > 0
	case []interface{}:
		return len(t) > 0
	case int64:
		return t != 0
	case float64:
		return t != 0
	}
	return true
}
