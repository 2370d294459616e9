package validation

import (
	"testing"
	"time"
)

func TestRequired(t *testing.T) {
	tests := []struct {
		name     string
		value    string
		expected string
	}{
		{"Empty", "", "Email is required"},
		{"Whitespace only", "  \t ", "Email is required"},
		{"Present", "a", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Required("Email", tt.value); got != tt.expected {
				t.Errorf("Required(%q) = %q, expected %q", tt.value, got, tt.expected)
			}
		})
	}
}

func TestEmail(t *testing.T) {
	tests := []struct {
		name     string
		value    string
		expected string
	}{
		{"Not an email", "not-an-email", MsgInvalidEmail},
		{"Valid", "user@example.com", ""},
		{"Missing domain dot", "user@example", MsgInvalidEmail},
		{"Inner space", "us er@example.com", MsgInvalidEmail},
		{"Two at signs", "a@b@c.com", MsgInvalidEmail},
		{"Empty left to Required", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Email(tt.value); got != tt.expected {
				t.Errorf("Email(%q) = %q, expected %q", tt.value, got, tt.expected)
			}
		})
	}
}

func TestPassword(t *testing.T) {
	if got := Password("1234567"); got != MsgPasswordTooShort {
		t.Errorf("expected 7-character password to be rejected, got %q", got)
	}
	if got := Password("12345678"); got != "" {
		t.Errorf("expected 8-character password to be accepted, got %q", got)
	}
	if got := ConfirmPassword("12345678", "12345679"); got != MsgPasswordMismatch {
		t.Errorf("expected mismatch to be rejected, got %q", got)
	}
	if got := ConfirmPassword("12345678", "12345678"); got != "" {
		t.Errorf("expected matching confirmation, got %q", got)
	}
}

func TestOTP(t *testing.T) {
	tests := []struct {
		name  string
		value string
		valid bool
	}{
		{"Six digits", "123456", true},
		{"Padded", " 654321 ", true},
		{"Five digits", "12345", false},
		{"Letters", "12a456", false},
		{"Empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := OTP(tt.value)
			if (got == "") != tt.valid {
				t.Errorf("OTP(%q) = %q, valid expected %v", tt.value, got, tt.valid)
			}
		})
	}
}

func TestPositiveAmount(t *testing.T) {
	tests := []struct {
		name  string
		value string
		valid bool
	}{
		{"Positive", "100000", true},
		{"Formatted", "$1,000", true},
		{"Zero", "0", false},
		{"Negative", "-5", false},
		{"Non numeric", "lots", false},
		{"Empty left to Required", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := PositiveAmount("Revenue", tt.value)
			if (got == "") != tt.valid {
				t.Errorf("PositiveAmount(%q) = %q, valid expected %v", tt.value, got, tt.valid)
			}
		})
	}
}

func TestYear(t *testing.T) {
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	if got := Year("Founded", "2019", now); got != "" {
		t.Errorf("expected 2019 to be valid, got %q", got)
	}
	if got := Year("Founded", "2030", now); got == "" {
		t.Errorf("expected future year to be rejected")
	}
	if got := Year("Founded", "19", now); got == "" {
		t.Errorf("expected short year to be rejected")
	}
}

func TestCardFields(t *testing.T) {
	now := time.Date(2026, 6, 15, 0, 0, 0, 0, time.UTC)

	cardTests := []struct {
		name  string
		value string
		valid bool
	}{
		{"Visa test number", "4242 4242 4242 4242", true},
		{"Dashes", "4111-1111-1111-1111", true},
		{"Bad checksum", "4242424242424241", false},
		{"Too short", "4242", false},
		{"Letters", "4242abcd42424242", false},
	}
	for _, tt := range cardTests {
		t.Run("card "+tt.name, func(t *testing.T) {
			got := CardNumber(tt.value)
			if (got == "") != tt.valid {
				t.Errorf("CardNumber(%q) = %q, valid expected %v", tt.value, got, tt.valid)
			}
		})
	}

	expiryTests := []struct {
		name     string
		value    string
		expected string
	}{
		{"Current month", "06/26", ""},
		{"Next year", "01/27", ""},
		{"December rolls over", "12/26", ""},
		{"Last month", "05/26", MsgCardExpired},
		{"Bad month", "13/27", MsgInvalidExpiry},
		{"Bad shape", "2027-01", MsgInvalidExpiry},
	}
	for _, tt := range expiryTests {
		t.Run("expiry "+tt.name, func(t *testing.T) {
			if got := CardExpiry(tt.value, now); got != tt.expected {
				t.Errorf("CardExpiry(%q) = %q, expected %q", tt.value, got, tt.expected)
			}
		})
	}

	if got := CVC("123"); got != "" {
		t.Errorf("expected 3-digit CVC to be valid, got %q", got)
	}
	if got := CVC("12"); got != MsgInvalidCVC {
		t.Errorf("expected 2-digit CVC to be rejected, got %q", got)
	}
}
