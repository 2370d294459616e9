// Package billing holds the pricing plans and the checkout hand-off to the
// payment collaborator.
package billing

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/iwvelando/company-valuation/internal/form"
	"go.uber.org/zap"
)

var (
	ErrUnknownPlan    = errors.New("unknown plan")
	ErrInvalidBilling = errors.New("billing details are invalid")
	ErrQuoteOnly      = errors.New("plan is priced on request")
)

// PlanID identifies a pricing plan.
type PlanID string

const (
	PlanSingle   PlanID = "single"
	PlanMultiple PlanID = "multiple"
	PlanCustom   PlanID = "custom"
)

// Plan is one pricing card.
type Plan struct {
	ID          PlanID   `json:"id"`
	Name        string   `json:"name"`
	Price       string   `json:"price"`
	AmountCents int64    `json:"amountCents,omitempty"`
	Reports     int      `json:"reports,omitempty"`
	Features    []string `json:"features"`
}

// Plans is the catalogue in display order.
var Plans = []Plan{
	{
		ID: PlanSingle, Name: "Single Report", Price: "$499", AmountCents: 49900, Reports: 1,
		Features: []string{"One valuation report", "Five-year revenue projection", "PDF export"},
	},
	{
		ID: PlanMultiple, Name: "Multiple Reports", Price: "$1,499", AmountCents: 149900, Reports: 5,
		Features: []string{"Five valuation reports", "Portfolio overview", "Priority support"},
	},
	{
		ID: PlanCustom, Name: "Custom", Price: "Contact us",
		Features: []string{"Unlimited reports", "Dedicated analyst", "Custom integrations"},
	},
}

// Lookup returns the plan with the given id.
func Lookup(id string) (Plan, error) {
	for _, plan := range Plans {
		if string(plan.ID) == strings.ToLower(strings.TrimSpace(id)) {
			return plan, nil
		}
	}
	return Plan{}, fmt.Errorf("%w: %q", ErrUnknownPlan, id)
}

// PlanSelection is chosen once per checkout.
type PlanSelection struct {
	PlanID PlanID `json:"planId"`
	Price  string `json:"price"`
}

// Select validates a plan id and returns the selection.
func Select(id string) (PlanSelection, error) {
	plan, err := Lookup(id)
	if err != nil {
		return PlanSelection{}, err
	}
	return PlanSelection{PlanID: plan.ID, Price: plan.Price}, nil
}

// Charge is what the payment collaborator receives. Card data never leaves
// the form except as the last four digits.
type Charge struct {
	ID          string    `json:"id"`
	AccountID   string    `json:"accountId"`
	PlanID      PlanID    `json:"planId"`
	AmountCents int64     `json:"amountCents"`
	Cardholder  string    `json:"cardholder"`
	Last4       string    `json:"last4"`
	CreatedAt   time.Time `json:"createdAt"`
}

// PaymentProcessor is the single submit callback of the billing form.
type PaymentProcessor interface {
	Submit(ctx context.Context, charge Charge) error
}

// Result of a checkout: either a charge or the field errors to show.
type Result struct {
	Charge *Charge           `json:"charge,omitempty"`
	Errors map[string]string `json:"errors,omitempty"`
}

// Service runs checkouts.
type Service struct {
	logger    *zap.Logger
	processor PaymentProcessor
	now       func() time.Time
}

// NewService creates a checkout service backed by processor.
func NewService(logger *zap.Logger, processor PaymentProcessor) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if processor == nil {
		processor = &MemoryProcessor{}
	}
	return &Service{logger: logger, processor: processor, now: time.Now}
}

// Checkout validates the billing form and submits a charge. Invalid card
// fields yield ErrInvalidBilling together with the field errors.
func (s *Service) Checkout(ctx context.Context, accountID string, selection PlanSelection, fields map[string]string) (Result, error) {
	plan, err := Lookup(string(selection.PlanID))
	if err != nil {
		return Result{}, err
	}
	if plan.AmountCents == 0 {
		return Result{}, fmt.Errorf("%w: %s", ErrQuoteOnly, plan.Name)
	}

	f := form.New(form.Billing, form.OnSubmit).WithClock(s.now)
	if err := f.SetAll(fields); err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrInvalidBilling, err)
	}
	if !f.Validate() {
		return Result{Errors: f.Errors()}, ErrInvalidBilling
	}

	digits := strings.NewReplacer(" ", "", "-", "").Replace(f.Value(form.FieldCardNumber))
	charge := Charge{
		ID:          uuid.New().String(),
		AccountID:   accountID,
		PlanID:      plan.ID,
		AmountCents: plan.AmountCents,
		Cardholder:  f.Value(form.FieldCardholder),
		Last4:       digits[len(digits)-4:],
		CreatedAt:   s.now(),
	}
	if err := s.processor.Submit(ctx, charge); err != nil {
		return Result{}, fmt.Errorf("payment submission failed: %w", err)
	}

	s.logger.Info("checkout completed",
		zap.String("op", "billing.Checkout"),
		zap.String("account", accountID),
		zap.String("plan", string(plan.ID)),
	)
	return Result{Charge: &charge}, nil
}

// MemoryProcessor records charges instead of transmitting them.
type MemoryProcessor struct {
	mu      sync.Mutex
	charges []Charge
}

// Submit records the charge.
func (p *MemoryProcessor) Submit(ctx context.Context, charge Charge) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p.mu.Lock()
	p.charges = append(p.charges, charge)
	p.mu.Unlock()
	return nil
}

// Charges returns the recorded charges.
func (p *MemoryProcessor) Charges() []Charge {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]Charge(nil), p.charges...)
}
