package domain

import (
	"fmt"
	"math"
	"strconv"
)

// OptionValue is a configured option value.
// It holds a bool, a float64, a string, or a []OptionValue for multi options.
type OptionValue any

// Options maps option identifiers to configured values.
type Options map[string]OptionValue

// Clone returns a shallow copy of the options.
func (o Options) Clone() Options {
	if o == nil {
		return Options{}
	}
	c := make(Options, len(o))
	for k, v := range o {
		c[k] = v
	}
	return c
}

// OptionKind is the value kind of an option.
type OptionKind string

const (
	// OptionBoolean is a true/false option.
	OptionBoolean OptionKind = "boolean"
	// OptionNumber is a numeric option.
	OptionNumber OptionKind = "number"
	// OptionString is a free-form or choice string option.
	OptionString OptionKind = "string"
)

// OptionChoice is one allowed value of an option, optionally gated by a condition.
type OptionChoice struct {
	Value     OptionValue
	Label     string
	Condition Requirements
}

// OptionDefinition describes a configurable option.
type OptionDefinition struct {
	ID      string
	Kind    OptionKind
	Multi   bool
	Global  bool
	Choices []OptionChoice
	Min     *float64
	Max     *float64
	Default OptionValue
}

// Choice returns the choice whose value equals v.
func (o *OptionDefinition) Choice(v OptionValue) (OptionChoice, bool) {
	for _, c := range o.Choices {
		if ValuesEqual(c.Value, v) {
			return c, true
		}
	}
	return OptionChoice{}, false
}

// OptionDefaultValue returns the value an option takes when nothing is configured.
// Resolution order: declared default, empty list for multi options, first choice,
// numeric minimum, then the kind's zero value.
func OptionDefaultValue(o *OptionDefinition) OptionValue {
	switch {
	case o.Default != nil:
		return o.Default
	case o.Multi:
		return []OptionValue{}
	case len(o.Choices) > 0:
		return o.Choices[0].Value
	case o.Min != nil:
		return *o.Min
	}

	switch o.Kind {
	case OptionBoolean:
		return false
	case OptionNumber:
		return float64(0)
	default:
		return ""
	}
}

// GetOptionValue returns the configured value of the option, or its default.
func GetOptionValue(o *OptionDefinition, opts Options) OptionValue {
	if v, ok := opts[o.ID]; ok && v != nil {
		return v
	}
	return OptionDefaultValue(o)
}

// IsOptionDefaultValue reports whether v equals the option's default.
// List values are compared as sets.
func IsOptionDefaultValue(o *OptionDefinition, v OptionValue) bool {
	return ValuesEqual(OptionDefaultValue(o), v)
}

// ValuesEqual compares two option values structurally.
// Lists compare as sets: order and duplicates are ignored.
func ValuesEqual(a, b OptionValue) bool {
	la, aList := a.([]OptionValue)
	lb, bList := b.([]OptionValue)
	if aList || bList {
		if !aList || !bList {
			return false
		}
		return containsAll(la, lb) && containsAll(lb, la)
	}
	return scalarEqual(a, b)
}

// ValueMatches reports whether a configured value satisfies a required value.
// A list satisfies a scalar when it contains it; otherwise values must be equal.
func ValueMatches(actual, required OptionValue) bool {
	if list, ok := actual.([]OptionValue); ok {
		if _, reqList := required.([]OptionValue); !reqList {
			return containsValue(list, required)
		}
	}
	return ValuesEqual(actual, required)
}

func containsAll(set, items []OptionValue) bool {
	for _, item := range items {
		if !containsValue(set, item) {
			return false
		}
	}
	return true
}

func containsValue(list []OptionValue, v OptionValue) bool {
	for _, item := range list {
		if scalarEqual(item, v) {
			return true
		}
	}
	return false
}

func scalarEqual(a, b OptionValue) bool {
	switch av := a.(type) {
	case nil:
		return b == nil
	case bool:
		bv, ok := b.(bool)
		return ok && av == bv
	case string:
		bv, ok := b.(string)
		return ok && av == bv
	}

	an, aok := toFloat(a)
	bn, bok := toFloat(b)
	return aok && bok && an == bn
}

func toFloat(v OptionValue) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, !math.IsNaN(n)
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint64:
		return float64(n), true
	}
	return 0, false
}

// NormalizeValue converts decoded YAML or JSON scalars into canonical option values.
// Integers become float64 and nested lists become []OptionValue.
func NormalizeValue(v any) OptionValue {
	switch t := v.(type) {
	case []any:
		out := make([]OptionValue, len(t))
		for i, item := range t {
			out[i] = NormalizeValue(item)
		}
		return out
	case []OptionValue:
		out := make([]OptionValue, len(t))
		for i, item := range t {
			out[i] = NormalizeValue(item)
		}
		return out
	case bool, string, nil:
		return t
	}
	if n, ok := toFloat(v); ok {
		return n
	}
	return fmt.Sprint(v)
}

// CoerceValue converts a loosely typed value to the option's kind, so that "4",
// true or 1.5 typed on a command line compare equal to the declared choices.
// Values that cannot be converted are returned unchanged.
func CoerceValue(o *OptionDefinition, v OptionValue) OptionValue {
	if list, ok := v.([]OptionValue); ok {
		out := make([]OptionValue, len(list))
		for i, item := range list {
			out[i] = CoerceValue(o, item)
		}
		return out
	}

	switch o.Kind {
	case OptionString:
		switch t := v.(type) {
		case bool:
			return strconv.FormatBool(t)
		case float64:
			return strconv.FormatFloat(t, 'f', -1, 64)
		}
	case OptionNumber:
		if s, ok := v.(string); ok {
			if n, err := strconv.ParseFloat(s, 64); err == nil {
				return n
			}
		}
	case OptionBoolean:
		if s, ok := v.(string); ok {
			if b, err := strconv.ParseBool(s); err == nil {
				return b
			}
		}
	}
	return v
}
