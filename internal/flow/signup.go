package flow

import (
	"context"
	"errors"
	"fmt"

	"github.com/iwvelando/company-valuation/internal/billing"
	"github.com/iwvelando/company-valuation/internal/form"
	"github.com/iwvelando/company-valuation/internal/session"
)

// MsgEmailTaken is shown on the account step when signup hits an existing email.
const MsgEmailTaken = "An account with this email already exists"

func (f *Flow) signupStages() []*stage {
	account := &stage{
		screen:      ScreenSignupAccount,
		title:       "Account",
		description: "Create your login",
		form:        f.newForm(form.SignupAccount),
	}
	company := &stage{
		screen:      ScreenSignupCompany,
		title:       "Company",
		description: "Tell us about your company",
		form:        f.newForm(form.CompanyProfile),
	}
	plan := &stage{
		screen:      ScreenSignupPlan,
		title:       "Plan",
		description: "Choose a plan",
		form:        f.newForm(form.PlanChoice),
	}
	plan.complete = func() bool { return f.plan != nil && f.account != nil }
	plan.reset = func() { f.plan = nil }
	plan.action = func(ctx context.Context) error {
		selection, err := billing.Select(plan.form.Value(form.FieldPlan))
		if err != nil {
			plan.form.Fail(form.FieldPlan, "Choose one of the available plans")
			return err
		}
		f.plan = &selection
		return f.createAccount(ctx, account.form, company.form)
	}

	return []*stage{account, company, plan}
}

func (f *Flow) createAccount(ctx context.Context, account, company *form.Form) error {
	if f.account != nil {
		return nil
	}
	created, err := f.deps.Accounts.CreateAccount(ctx, session.SignupRequest{
		Name:        account.Value(form.FieldFullName),
		Email:       account.Value(form.FieldEmail),
		Password:    account.Value(form.FieldPassword),
		CompanyName: company.Value(form.FieldCompanyName),
		Industry:    company.Value(form.FieldIndustry),
		PlanID:      string(f.plan.PlanID),
	})
	if err != nil {
		if errors.Is(err, session.ErrEmailTaken) {
			account.Fail(form.FieldEmail, MsgEmailTaken)
		}
		return fmt.Errorf("failed to create account: %w", err)
	}
	f.account = &created
	f.owner = created.Email
	return nil
}

// Account returns the account a completed signup flow created.
func (f *Flow) Account() (session.Account, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.account == nil {
		return session.Account{}, false
	}
	return *f.account, true
}
