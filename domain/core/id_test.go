package core

import (
	"errors"
	"testing"
)

// TestNewIDUniqueness tests that NewID generates unique identifiers
func TestNewIDUniqueness(t *testing.T) {
	const numIDs = 10000

	ids := make(map[ID]bool, numIDs)
	for i := 0; i < numIDs; i++ {
		id := NewID()
		if id.IsEmpty() {
			t.Errorf("Generated empty ID at iteration %d", i)
		}
		if ids[id] {
			t.Errorf("Generated duplicate ID: %s", id)
		}
		ids[id] = true
	}

	if len(ids) != numIDs {
		t.Errorf("Expected %d unique IDs, got %d", numIDs, len(ids))
	}
}

// TestIDIsEmpty tests ID emptiness check
func TestIDIsEmpty(t *testing.T) {
	if !ID("").IsEmpty() {
		t.Error("Expected empty ID to be empty")
	}
	if ID("not-empty").IsEmpty() {
		t.Error("Expected non-empty ID to not be empty")
	}
}

// TestParseRunID tests run ID parsing
func TestParseRunID(t *testing.T) {
	tests := []struct {
		input    string
		expected RunID
		hasError bool
	}{
		{"run-123", RunID("run-123"), false},
		{"", "", true},
		{"   ", "", true},
	}

	for _, test := range tests {
		result, err := ParseRunID(test.input)
		if test.hasError && err == nil {
			t.Errorf("Expected error for input '%s', but got none", test.input)
		}
		if !test.hasError && err != nil {
			t.Errorf("Unexpected error for input '%s': %v", test.input, err)
		}
		if result != test.expected {
			t.Errorf("Expected %s, got %s", test.expected, result)
		}
	}
}

func TestComputeRuleHashDeterministic(t *testing.T) {
	a := ComputeRuleHash("age", "quantile", []float64{18, 25, 40, 70})
	b := ComputeRuleHash("age", "quantile", []float64{18, 25, 40, 70})
	c := ComputeRuleHash("age", "quantile", []float64{18, 25, 41, 70})

	if a != b {
		t.Errorf("Expected identical rules to hash equally, got %s and %s", a, b)
	}
	if a == c {
		t.Error("Expected different edges to produce different hashes")
	}
}

func TestErrorTaxonomy(t *testing.T) {
	err := NewColumnError("income", ErrNonNumeric)
	if !IsInvalidColumnError(err) {
		t.Errorf("Expected %v to be an invalid column error", err)
	}
	if IsConfigurationError(err) {
		t.Errorf("Did not expect %v to be a configuration error", err)
	}

	bin := NewDegenerateBinError("age", "[18, 25)", "zero events")
	if !IsDegenerateBinError(bin) {
		t.Errorf("Expected %v to be a degenerate bin error", bin)
	}

	if !errors.Is(ErrNotConverged, ErrModelFit) || !IsModelFitError(ErrSingularSystem) {
		t.Error("Expected fit sentinels to wrap ErrModelFit")
	}
	if !IsConfigurationError(NewConfigurationError("tail", "must be one or two")) {
		t.Error("Expected configuration error to match ErrConfiguration")
	}
}
