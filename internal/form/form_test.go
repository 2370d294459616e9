package form

import (
	"errors"
	"testing"
	"time"

	"github.com/iwvelando/company-valuation/pkg/validation"
)

func TestSignupAccountValidate(t *testing.T) {
	tests := []struct {
		name     string
		values   map[string]string
		valid    bool
		expected map[string]string
	}{
		{
			name:  "All empty",
			valid: false,
			expected: map[string]string{
				FieldFullName:        "Full name is required",
				FieldEmail:           "Email is required",
				FieldPassword:        "Password is required",
				FieldConfirmPassword: "Confirm password is required",
			},
		},
		{
			name: "Bad email and short password",
			values: map[string]string{
				FieldFullName:        "Ada Lovelace",
				FieldEmail:           "not-an-email",
				FieldPassword:        "1234567",
				FieldConfirmPassword: "1234567",
			},
			expected: map[string]string{
				FieldEmail:    validation.MsgInvalidEmail,
				FieldPassword: validation.MsgPasswordTooShort,
			},
		},
		{
			name: "Mismatched confirmation",
			values: map[string]string{
				FieldFullName:        "Ada Lovelace",
				FieldEmail:           "user@example.com",
				FieldPassword:        "12345678",
				FieldConfirmPassword: "87654321",
			},
			expected: map[string]string{
				FieldConfirmPassword: validation.MsgPasswordMismatch,
			},
		},
		{
			name: "Valid",
			values: map[string]string{
				FieldFullName:        "Ada Lovelace",
				FieldEmail:           "user@example.com",
				FieldPassword:        "12345678",
				FieldConfirmPassword: "12345678",
			},
			valid:    true,
			expected: map[string]string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := New(SignupAccount, OnSubmit)
			if err := f.SetAll(tt.values); err != nil {
				t.Fatalf("SetAll() error = %v", err)
			}
			if got := f.Valid(); got != tt.valid {
				t.Fatalf("Valid() = %v, expected %v", got, tt.valid)
			}
			if len(f.Errors()) != 0 {
				t.Fatalf("Valid() must not record errors, got %v", f.Errors())
			}
			if got := f.Validate(); got != tt.valid {
				t.Fatalf("Validate() = %v, expected %v", got, tt.valid)
			}
			errs := f.Errors()
			if len(errs) != len(tt.expected) {
				t.Fatalf("Errors() = %v, expected %v", errs, tt.expected)
			}
			for field, msg := range tt.expected {
				if errs[field] != msg {
					t.Errorf("error for %s = %q, expected %q", field, errs[field], msg)
				}
			}
		})
	}
}

func TestModes(t *testing.T) {
	submit := New(Login, OnSubmit)
	submit.Validate()
	if submit.Error(FieldEmail) == "" {
		t.Fatal("expected required error after Validate")
	}
	if err := submit.Set(FieldEmail, "bad"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if submit.Error(FieldEmail) != "" {
		t.Fatalf("OnSubmit Set should clear the error, got %q", submit.Error(FieldEmail))
	}

	change := New(Login, OnChange)
	if err := change.Set(FieldEmail, "bad"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if change.Error(FieldEmail) != validation.MsgInvalidEmail {
		t.Fatalf("OnChange Set should validate, got %q", change.Error(FieldEmail))
	}
	if change.Error(FieldPassword) != "" {
		t.Fatal("OnChange must only validate the edited field")
	}
}

func TestUnknownField(t *testing.T) {
	f := New(Login, OnSubmit)
	if err := f.Set("nickname", "x"); !errors.Is(err, ErrUnknownField) {
		t.Fatalf("expected ErrUnknownField, got %v", err)
	}
	if err := f.SetAll(map[string]string{FieldEmail: "a@b.co", "nickname": "x"}); !errors.Is(err, ErrUnknownField) {
		t.Fatalf("expected ErrUnknownField from SetAll, got %v", err)
	}
}

func TestFreeTextIsSanitised(t *testing.T) {
	f := New(SupportTicket, OnSubmit)
	if err := f.Set(FieldMessage, "<b>Great</b> product"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if got := f.Value(FieldMessage); got != "Great product" {
		t.Fatalf("expected markup to be stripped, got %q", got)
	}
	if err := f.Set(FieldSubject, "<b>kept</b>"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if got := f.Value(FieldSubject); got != "<b>kept</b>" {
		t.Fatalf("non free-text fields are stored as typed, got %q", got)
	}
}

func TestFreeTextKeepsPlainCharacters(t *testing.T) {
	tests := []struct {
		name     string
		value    string
		expected string
	}{
		{name: "Ampersand and comparison", value: "R&D costs < 5% of revenue", expected: "R&D costs < 5% of revenue"},
		{name: "Quotes", value: `Owner's "flagship" store`, expected: `Owner's "flagship" store`},
		{name: "Script stripped", value: "Bakery<script>alert(1)</script> & cafe", expected: "Bakery & cafe"},
		{name: "Tags stripped", value: "<b>Family</b> run > 20 years", expected: "Family run > 20 years"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := New(CompanyProfile, OnSubmit)
			if err := f.Set(FieldDescription, tt.value); err != nil {
				t.Fatalf("Set() error = %v", err)
			}
			if got := f.Value(FieldDescription); got != tt.expected {
				t.Errorf("Value() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestViewsMaskSecrets(t *testing.T) {
	f := New(Login, OnSubmit)
	_ = f.Set(FieldEmail, "user@example.com")
	_ = f.Set(FieldPassword, "hunter22")

	views := f.Views()
	if len(views) != 2 {
		t.Fatalf("expected 2 views, got %d", len(views))
	}
	if views[0].Name != FieldEmail || views[0].Value != "user@example.com" {
		t.Fatalf("unexpected email view %+v", views[0])
	}
	if views[1].Value != "" {
		t.Fatalf("password must be masked, got %q", views[1].Value)
	}
}

func TestTwoFactorSkip(t *testing.T) {
	f := New(TwoFactor, OnSubmit)
	if f.Valid() {
		t.Fatal("two-factor needs a code or an explicit skip")
	}
	_ = f.Set(FieldSkip, "true")
	if !f.Valid() {
		t.Fatal("skipping two-factor should satisfy the form")
	}
	_ = f.Set(FieldSkip, "")
	_ = f.Set(FieldCode, "123456")
	if !f.Valid() {
		t.Fatal("a 6-digit code should satisfy the form")
	}
}

func TestBillingUsesClock(t *testing.T) {
	f := New(Billing, OnSubmit).WithClock(func() time.Time {
		return time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	})
	_ = f.SetAll(map[string]string{
		FieldCardholder: "Ada Lovelace",
		FieldCardNumber: "4242 4242 4242 4242",
		FieldExpiry:     "05/26",
		FieldCVC:        "123",
	})
	if f.Validate() {
		t.Fatal("expired card should fail validation")
	}
	if f.Error(FieldExpiry) != validation.MsgCardExpired {
		t.Fatalf("expected expiry error, got %q", f.Error(FieldExpiry))
	}

	_ = f.Set(FieldExpiry, "07/26")
	if !f.Validate() {
		t.Fatalf("expected valid billing form, errors %v", f.Errors())
	}
}

func TestReset(t *testing.T) {
	f := New(Projection, OnChange)
	_ = f.Set(FieldBaseRevenue, "-1")
	f.Reset()
	if f.Value(FieldBaseRevenue) != "" || f.Error(FieldBaseRevenue) != "" {
		t.Fatal("Reset should clear values and errors")
	}
}
