package invariants

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"

	"github.com/driftwatch/driftwatch/internal/types"
)

// OperatorResult is the outcome of comparing an observed value against an
// expected value under one operator.
type OperatorResult struct {
	Passed bool
	Reason string
}

// EvaluateOperator applies the named comparison operator. Non-numeric inputs
// to the ordering operators coerce to NaN, which fails every comparison; that
// is a permissive failure, not an error.
func EvaluateOperator(operator string, observed, expected any) OperatorResult {
	if operator == "" {
		operator = types.OpEquals
	}

	switch operator {
	case types.OpEquals:
		if deepEqual(observed, expected) {
			return pass("values are equal")
		}
		return fail(fmt.Sprintf("expected %q, observed %q", Stringify(expected), Stringify(observed)))

	case types.OpNotEquals:
		if !deepEqual(observed, expected) {
			return pass("values differ")
		}
		return fail(fmt.Sprintf("observed value equals %q", Stringify(expected)))

	case types.OpContains:
		if contains(observed, expected) {
			return pass(fmt.Sprintf("%q is present", Stringify(expected)))
		}
		return fail(fmt.Sprintf("%q not found in observed value", Stringify(expected)))

	case types.OpNotContains:
		if !contains(observed, expected) {
			return pass(fmt.Sprintf("%q is absent", Stringify(expected)))
		}
		return fail(fmt.Sprintf("%q found in observed value", Stringify(expected)))

	case types.OpGreaterThan:
		return ordering(observed, expected, ">", func(a, b float64) bool { return a > b })

	case types.OpLessThan:
		return ordering(observed, expected, "<", func(a, b float64) bool { return a < b })

	case types.OpGreaterThanOrEquals:
		return ordering(observed, expected, ">=", func(a, b float64) bool { return a >= b })

	case types.OpLessThanOrEquals:
		return ordering(observed, expected, "<=", func(a, b float64) bool { return a <= b })

	case types.OpInList:
		if listContains(ToList(expected), observed) {
			return pass(fmt.Sprintf("%q is in the expected list", Stringify(observed)))
		}
		return fail(fmt.Sprintf("%q is not in the expected list", Stringify(observed)))

	case types.OpNotInList:
		if !listContains(ToList(expected), observed) {
			return pass(fmt.Sprintf("%q is not in the expected list", Stringify(observed)))
		}
		return fail(fmt.Sprintf("%q is in the expected list", Stringify(observed)))

	case types.OpIsEmpty:
		if len(ToList(observed)) == 0 {
			return pass("observed value is empty")
		}
		return fail("observed value is not empty")

	case types.OpIsNotEmpty:
		if len(ToList(observed)) > 0 {
			return pass("observed value is not empty")
		}
		return fail("observed value is empty")
	}

	return fail("Unknown operator: " + operator)
}

func pass(reason string) OperatorResult {
	return OperatorResult{Passed: true, Reason: reason}
}

func fail(reason string) OperatorResult {
	return OperatorResult{Passed: false, Reason: reason}
}

func ordering(observed, expected any, symbol string, cmp func(a, b float64) bool) OperatorResult {
	a := toNumber(observed)
	b := toNumber(expected)

	// NaN on either side fails every comparison.
	if cmp(a, b) {
		return pass(fmt.Sprintf("%s %s %s", Stringify(observed), symbol, Stringify(expected)))
	}

	return fail(fmt.Sprintf("expected observed %s %s, observed %s", symbol, Stringify(expected), Stringify(observed)))
}

// contains implements CONTAINS: substring when both sides are strings,
// otherwise case-insensitive membership of expected in the observed list.
func contains(observed, expected any) bool {
	obsStr, obsIsStr := observed.(string)
	expStr, expIsStr := expected.(string)

	if obsIsStr && expIsStr {
		return strings.Contains(obsStr, expStr)
	}

	return listContains(ToList(observed), expected)
}

func listContains(list []any, value any) bool {
	needle := Stringify(value)

	for _, item := range list {
		if strings.EqualFold(Stringify(item), needle) {
			return true
		}
	}

	return false
}

// ToList normalizes a value into comparison-ready list form: arrays pass
// through, strings parse as a JSON array or split on commas, nil becomes the
// empty list, and any other scalar becomes a singleton. ToList is idempotent.
func ToList(value any) []any {
	switch v := value.(type) {
	case nil:
		return []any{}
	case []any:
		return v
	case string:
		trimmed := strings.TrimSpace(v)

		if strings.HasPrefix(trimmed, "[") {
			var parsed []any
			if err := json.Unmarshal([]byte(trimmed), &parsed); err == nil {
				return parsed
			}
		}

		parts := strings.Split(v, ",")
		list := make([]any, 0, len(parts))

		for _, part := range parts {
			if item := strings.TrimSpace(part); item != "" {
				list = append(list, item)
			}
		}

		return list
	}

	rv := reflect.ValueOf(value)

	if rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array {
		list := make([]any, rv.Len())
		for i := range list {
			list[i] = rv.Index(i).Interface()
		}
		return list
	}

	return []any{value}
}

// Stringify renders a value for evidence strings and membership comparison.
// Maps and lists render as JSON, nil as the empty string.
func Stringify(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	}

	rv := reflect.ValueOf(value)

	switch rv.Kind() {
	case reflect.Map, reflect.Slice, reflect.Array, reflect.Struct:
		if raw, err := json.Marshal(value); err == nil {
			return string(raw)
		}
	}

	return fmt.Sprintf("%v", value)
}

func toNumber(value any) float64 {
	switch v := value.(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	case int:
		return float64(v)
	case int8:
		return float64(v)
	case int16:
		return float64(v)
	case int32:
		return float64(v)
	case int64:
		return float64(v)
	case uint:
		return float64(v)
	case uint8:
		return float64(v)
	case uint16:
		return float64(v)
	case uint32:
		return float64(v)
	case uint64:
		return float64(v)
	case string:
		if n, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
			return n
		}
	}

	return math.NaN()
}

// deepEqual compares two values structurally after JSON normalization, so
// numeric type differences (int vs float64) do not break equality.
func deepEqual(a, b any) bool {
	return reflect.DeepEqual(normalize(a), normalize(b))
}

func normalize(value any) any {
	raw, err := json.Marshal(value)
	if err != nil {
		return value
	}

	var out any
	if err := json.Unmarshal(raw, &out); err != nil {
		return value
	}

	return out
}
