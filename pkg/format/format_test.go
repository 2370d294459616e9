package format

import (
	"errors"
	"testing"
)

func TestCurrency(t *testing.T) {
	tests := []struct {
		name     string
		amount   float64
		expected string
	}{
		{"Small amount", 12.5, "$12.50"},
		{"Thousands", 1234.56, "$1,234.56"},
		{"Millions", 1250000, "$1,250,000.00"},
		{"Negative", -98765.4, "-$98,765.40"},
		{"Zero", 0, "$0.00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Currency(tt.amount); got != tt.expected {
				t.Errorf("Currency(%v) = %q, expected %q", tt.amount, got, tt.expected)
			}
		})
	}
}

func TestPercent(t *testing.T) {
	if got := Percent(0.25); got != "25.0%" {
		t.Errorf("Percent(0.25) = %q, expected 25.0%%", got)
	}
	if got := Percent(0.125); got != "12.5%" {
		t.Errorf("Percent(0.125) = %q, expected 12.5%%", got)
	}
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		expected  float64
		expectErr bool
	}{
		{name: "Plain", input: "100000", expected: 100000},
		{name: "Separators", input: "100,000", expected: 100000},
		{name: "Dollar sign", input: " $1,250.50 ", expected: 1250.5},
		{name: "Negative", input: "-10", expected: -10},
		{name: "Empty", input: "   ", expectErr: true},
		{name: "Text", input: "abc", expectErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseAmount(tt.input)
			if tt.expectErr {
				if err == nil {
					t.Fatalf("ParseAmount(%q) expected error", tt.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseAmount(%q) unexpected error: %v", tt.input, err)
			}
			if got != tt.expected {
				t.Errorf("ParseAmount(%q) = %v, expected %v", tt.input, got, tt.expected)
			}
		})
	}

	if _, err := ParseAmount(""); !errors.Is(err, ErrEmptyAmount) {
		t.Errorf("expected ErrEmptyAmount, got %v", err)
	}
}
