package billing

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/iwvelando/company-valuation/internal/form"
)

func validCard() map[string]string {
	return map[string]string{
		form.FieldCardholder: "Ada Lovelace",
		form.FieldCardNumber: "4242 4242 4242 4242",
		form.FieldExpiry:     "12/30",
		form.FieldCVC:        "123",
	}
}

func newService(p PaymentProcessor) *Service {
	s := NewService(nil, p)
	s.now = func() time.Time { return time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC) }
	return s
}

func TestSelect(t *testing.T) {
	tests := []struct {
		name    string
		id      string
		want    PlanSelection
		wantErr error
	}{
		{name: "single", id: "single", want: PlanSelection{PlanID: PlanSingle, Price: "$499"}},
		{name: "multiple mixed case", id: " Multiple ", want: PlanSelection{PlanID: PlanMultiple, Price: "$1,499"}},
		{name: "custom", id: "custom", want: PlanSelection{PlanID: PlanCustom, Price: "Contact us"}},
		{name: "unknown", id: "enterprise", wantErr: ErrUnknownPlan},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Select(tt.id)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Select(%q) error = %v, want %v", tt.id, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("Select(%q) = %+v, want %+v", tt.id, got, tt.want)
			}
		})
	}
}

func TestCheckoutRecordsCharge(t *testing.T) {
	processor := &MemoryProcessor{}
	svc := newService(processor)
	sel, _ := Select("multiple")

	result, err := svc.Checkout(context.Background(), "acct-1", sel, validCard())
	if err != nil {
		t.Fatalf("Checkout() error = %v", err)
	}
	if result.Charge == nil {
		t.Fatal("expected a charge")
	}
	if result.Charge.AmountCents != 149900 || result.Charge.Last4 != "4242" {
		t.Errorf("charge = %+v", result.Charge)
	}

	charges := processor.Charges()
	if len(charges) != 1 || charges[0].AccountID != "acct-1" {
		t.Fatalf("recorded charges = %+v", charges)
	}
}

func TestCheckoutInvalidCard(t *testing.T) {
	processor := &MemoryProcessor{}
	svc := newService(processor)
	sel, _ := Select("single")

	fields := validCard()
	fields[form.FieldCardNumber] = "4242 4242 4242 4241"
	fields[form.FieldExpiry] = "12/25"
	delete(fields, form.FieldCVC)

	result, err := svc.Checkout(context.Background(), "acct-1", sel, fields)
	if !errors.Is(err, ErrInvalidBilling) {
		t.Fatalf("Checkout() error = %v, want ErrInvalidBilling", err)
	}
	for _, field := range []string{form.FieldCardNumber, form.FieldExpiry, form.FieldCVC} {
		if result.Errors[field] == "" {
			t.Errorf("expected an error for %s, got %v", field, result.Errors)
		}
	}
	if len(processor.Charges()) != 0 {
		t.Error("invalid checkout must not reach the processor")
	}
}

func TestCheckoutCustomPlanIsQuoteOnly(t *testing.T) {
	svc := newService(nil)
	sel, _ := Select("custom")
	if _, err := svc.Checkout(context.Background(), "acct-1", sel, validCard()); !errors.Is(err, ErrQuoteOnly) {
		t.Fatalf("Checkout() error = %v, want ErrQuoteOnly", err)
	}
}

type failingProcessor struct{}

func (failingProcessor) Submit(context.Context, Charge) error { return errors.New("declined") }

func TestCheckoutProcessorFailure(t *testing.T) {
	svc := newService(failingProcessor{})
	sel, _ := Select("single")
	if _, err := svc.Checkout(context.Background(), "acct-1", sel, validCard()); err == nil {
		t.Fatal("expected processor error to surface")
	}
}
