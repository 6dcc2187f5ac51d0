package invariants

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/driftwatch/driftwatch/internal/types"
)

func TestEvaluateOperatorEquals(t *testing.T) {
	tests := []struct {
		name     string
		observed any
		expected any
		passed   bool
	}{
		{"equal strings", "running", "running", true},
		{"different strings", "stopped", "running", false},
		{"int against float", 3, 3.0, true},
		{"string number is not a number", "3", 3, false},
		{"equal maps", map[string]any{"a": 1}, map[string]any{"a": 1.0}, true},
		{"equal slices", []any{"a", "b"}, []any{"a", "b"}, true},
		{"nil equals nil", nil, nil, true},
		{"bool mismatch", true, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := EvaluateOperator(types.OpEquals, tt.observed, tt.expected)
			assert.Equal(t, tt.passed, result.Passed, result.Reason)
		})
	}
}

func TestEvaluateOperatorDefaultsToEquals(t *testing.T) {
	result := EvaluateOperator("", "x", "x")
	assert.True(t, result.Passed)
}

func TestEvaluateOperatorNotEquals(t *testing.T) {
	assert.True(t, EvaluateOperator(types.OpNotEquals, "a", "b").Passed)
	assert.False(t, EvaluateOperator(types.OpNotEquals, "a", "a").Passed)
}

func TestEvaluateOperatorContains(t *testing.T) {
	// Both strings: substring semantics.
	assert.True(t, EvaluateOperator(types.OpContains, "us-east-1a", "east").Passed)
	assert.False(t, EvaluateOperator(types.OpContains, "us-west-2", "east").Passed)

	// Observed list: membership, case-insensitive.
	assert.True(t, EvaluateOperator(types.OpContains, []any{"Alpha", "beta"}, "alpha").Passed)
	assert.False(t, EvaluateOperator(types.OpContains, []any{"alpha"}, "gamma").Passed)

	assert.False(t, EvaluateOperator(types.OpNotContains, "us-east-1a", "east").Passed)
	assert.True(t, EvaluateOperator(types.OpNotContains, []any{"alpha"}, "gamma").Passed)
}

func TestEvaluateOperatorOrdering(t *testing.T) {
	assert.True(t, EvaluateOperator(types.OpGreaterThan, 5, 3).Passed)
	assert.False(t, EvaluateOperator(types.OpGreaterThan, 3, 5).Passed)
	assert.True(t, EvaluateOperator(types.OpLessThan, "2", "10").Passed)
	assert.True(t, EvaluateOperator(types.OpGreaterThanOrEquals, 3, 3).Passed)
	assert.True(t, EvaluateOperator(types.OpLessThanOrEquals, 3, 3).Passed)

	// Non-numeric operands coerce to NaN and fail instead of erroring.
	assert.False(t, EvaluateOperator(types.OpGreaterThan, "running", 3).Passed)
	assert.False(t, EvaluateOperator(types.OpLessThan, "running", 3).Passed)
	assert.False(t, EvaluateOperator(types.OpGreaterThanOrEquals, nil, nil).Passed)
}

func TestEvaluateOperatorInList(t *testing.T) {
	assert.True(t, EvaluateOperator(types.OpInList, "running", []any{"running", "pending"}).Passed)
	assert.True(t, EvaluateOperator(types.OpInList, "running", "running, pending").Passed)
	assert.True(t, EvaluateOperator(types.OpInList, "running", `["running","pending"]`).Passed)
	assert.False(t, EvaluateOperator(types.OpInList, "stopped", []any{"running"}).Passed)

	// Membership is case-insensitive.
	assert.True(t, EvaluateOperator(types.OpInList, "Running", []any{"running"}).Passed)

	assert.False(t, EvaluateOperator(types.OpNotInList, "running", []any{"running"}).Passed)
	assert.True(t, EvaluateOperator(types.OpNotInList, "stopped", []any{"running"}).Passed)

	// An empty expected list is vacuously satisfied by NOT_IN_LIST.
	assert.True(t, EvaluateOperator(types.OpNotInList, "anything", []any{}).Passed)
	assert.False(t, EvaluateOperator(types.OpInList, "anything", []any{}).Passed)
}

func TestEvaluateOperatorEmptiness(t *testing.T) {
	assert.True(t, EvaluateOperator(types.OpIsEmpty, nil, nil).Passed)
	assert.True(t, EvaluateOperator(types.OpIsEmpty, []any{}, nil).Passed)
	assert.True(t, EvaluateOperator(types.OpIsEmpty, "", nil).Passed)
	assert.False(t, EvaluateOperator(types.OpIsEmpty, []any{"x"}, nil).Passed)

	assert.False(t, EvaluateOperator(types.OpIsNotEmpty, nil, nil).Passed)
	assert.True(t, EvaluateOperator(types.OpIsNotEmpty, "value", nil).Passed)
}

func TestEvaluateOperatorUnknown(t *testing.T) {
	result := EvaluateOperator("BOGUS", 1, 1)
	assert.False(t, result.Passed)
	assert.Equal(t, "Unknown operator: BOGUS", result.Reason)
}

func TestToList(t *testing.T) {
	assert.Empty(t, ToList(nil))
	assert.Equal(t, []any{"a", "b"}, ToList([]any{"a", "b"}))
	assert.Equal(t, []any{"a", "b"}, ToList("a, b"))
	assert.Equal(t, []any{"a", "b"}, ToList(`["a","b"]`))
	assert.Equal(t, []any{42}, ToList(42))
	assert.Empty(t, ToList(""))

	// Malformed JSON arrays fall back to comma splitting.
	assert.Equal(t, []any{"[a", "b"}, ToList("[a, b"))

	// Idempotent: applying twice returns the same list.
	once := ToList("x, y")
	assert.Equal(t, once, ToList(once))
}

func TestStringify(t *testing.T) {
	assert.Equal(t, "", Stringify(nil))
	assert.Equal(t, "running", Stringify("running"))
	assert.Equal(t, "true", Stringify(true))
	assert.Equal(t, "42", Stringify(42))
	assert.Equal(t, `["a","b"]`, Stringify([]any{"a", "b"}))
	assert.Equal(t, `{"k":"v"}`, Stringify(map[string]any{"k": "v"}))
}
