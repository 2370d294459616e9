package flow

import (
	"context"
	"errors"
	"fmt"

	"github.com/iwvelando/company-valuation/internal/form"
	"github.com/iwvelando/company-valuation/internal/session"
	"github.com/iwvelando/company-valuation/pkg/validation"
)

func (f *Flow) verificationStages() []*stage {
	verify := &stage{
		screen:      ScreenVerifyEmail,
		title:       "Verify email",
		description: "Enter the code we emailed you",
		form:        f.newForm(form.VerifyEmail),
	}
	verify.complete = func() bool { return f.verified }
	verify.action = func(ctx context.Context) error {
		if f.verified {
			return nil
		}
		err := f.deps.Accounts.VerifyEmail(ctx, f.owner, verify.form.Value(form.FieldCode))
		if err != nil {
			switch {
			case errors.Is(err, session.ErrInvalidCode):
				verify.form.Fail(form.FieldCode, validation.MsgInvalidCode)
			case errors.Is(err, session.ErrTooManyAttempts):
				verify.form.Fail(form.FieldCode, validation.MsgTooManyAttempts+", request a new one")
			}
			return fmt.Errorf("email verification failed: %w", err)
		}
		f.verified = true

		code, err := f.deps.Accounts.StartTwoFactor(ctx, f.owner)
		if err != nil {
			return fmt.Errorf("failed to start two-factor enrolment: %w", err)
		}
		f.setupCode = code
		return nil
	}

	twoFactor := &stage{
		screen:      ScreenTwoFactor,
		title:       "Two-factor",
		description: "Protect your account with an authenticator app",
		form:        f.newForm(form.TwoFactor),
	}
	twoFactor.complete = func() bool {
		return f.twoFactor || form.IsChecked(twoFactor.form.Value(form.FieldSkip))
	}
	twoFactor.action = func(ctx context.Context) error {
		if f.twoFactor || form.IsChecked(twoFactor.form.Value(form.FieldSkip)) {
			return nil
		}
		err := f.deps.Accounts.EnableTwoFactor(ctx, f.owner, twoFactor.form.Value(form.FieldCode))
		if err != nil {
			switch {
			case errors.Is(err, session.ErrInvalidCode):
				twoFactor.form.Fail(form.FieldCode, validation.MsgInvalidCode)
			case errors.Is(err, session.ErrTooManyAttempts):
				twoFactor.form.Fail(form.FieldCode, validation.MsgTooManyAttempts+", skip for now")
			}
			return fmt.Errorf("two-factor enrolment failed: %w", err)
		}
		f.twoFactor = true
		return nil
	}

	return []*stage{verify, twoFactor}
}

// ResendCode asks the account service for a fresh email code. Only the
// verify screen offers it.
func (f *Flow) ResendCode(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.kind != KindVerification || f.wizard.Finished() || f.current().screen != ScreenVerifyEmail {
		return ErrNotAvailable
	}
	f.touch()
	return f.deps.Accounts.ResendCode(ctx, f.owner)
}
