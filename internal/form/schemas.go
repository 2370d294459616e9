package form

import (
	"strings"

	"github.com/iwvelando/company-valuation/pkg/validation"
)

// Field names shared between schemas and the flows that read them.
const (
	FieldFullName        = "fullName"
	FieldEmail           = "email"
	FieldPassword        = "password"
	FieldConfirmPassword = "confirmPassword"
	FieldCode            = "code"
	FieldSkip            = "skip"
	FieldCompanyName     = "companyName"
	FieldIndustry        = "industry"
	FieldFoundedYear     = "foundedYear"
	FieldDescription     = "description"
	FieldBaseRevenue     = "baseRevenue"
	FieldPurpose         = "purpose"
	FieldConfirm         = "confirm"
	FieldSubject         = "subject"
	FieldMessage         = "message"
	FieldCardholder      = "cardholder"
	FieldCardNumber      = "cardNumber"
	FieldExpiry          = "expiry"
	FieldCVC             = "cvc"
	FieldPlan            = "plan"
)

func single(name string, check func(string) string) Rule {
	return func(v Values) string { return check(v.Get(name)) }
}

func checked(label string) Rule {
	return func(v Values) string {
		if !IsChecked(v.Get(FieldConfirm)) {
			return label + " must be confirmed"
		}
		return ""
	}
}

// IsChecked interprets checkbox-style values.
func IsChecked(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "true", "on", "yes", "1":
		return true
	}
	return false
}

// Login is the sign-in form.
var Login = Schema{
	Name: "login",
	Fields: []Field{
		{Name: FieldEmail, Label: "Email", Required: true, Rules: []Rule{single(FieldEmail, validation.Email)}},
		{Name: FieldPassword, Label: "Password", Required: true, Secret: true},
	},
}

// SignupAccount is the first signup screen.
var SignupAccount = Schema{
	Name: "signup-account",
	Fields: []Field{
		{Name: FieldFullName, Label: "Full name", Required: true},
		{Name: FieldEmail, Label: "Email", Required: true, Rules: []Rule{single(FieldEmail, validation.Email)}},
		{Name: FieldPassword, Label: "Password", Required: true, Secret: true, Rules: []Rule{single(FieldPassword, validation.Password)}},
		{Name: FieldConfirmPassword, Label: "Confirm password", Required: true, Secret: true, Rules: []Rule{
			func(v Values) string {
				return validation.ConfirmPassword(v.Get(FieldPassword), v.Get(FieldConfirmPassword))
			},
		}},
	},
}

// CompanyProfile collects the company the account or report is about.
var CompanyProfile = Schema{
	Name: "company-profile",
	Fields: []Field{
		{Name: FieldCompanyName, Label: "Company name", Required: true},
		{Name: FieldIndustry, Label: "Industry", Required: true},
		{Name: FieldFoundedYear, Label: "Founded year", Rules: []Rule{
			func(v Values) string { return validation.Year("Founded year", v.Get(FieldFoundedYear), v.Now()) },
		}},
		{Name: FieldDescription, Label: "Description", FreeText: true},
	},
}

// ReportCompany is the first report screen: the profile plus why the valuation is needed.
var ReportCompany = Schema{
	Name:   "report-company",
	Fields: append(append([]Field(nil), CompanyProfile.Fields...), Field{Name: FieldPurpose, Label: "Valuation purpose", Required: true}),
}

// PlanChoice is the last signup screen. The plan id is checked against the
// billing catalogue when the step is submitted.
var PlanChoice = Schema{
	Name: "plan",
	Fields: []Field{
		{Name: FieldPlan, Label: "Plan", Required: true},
	},
}

// VerifyEmail takes the one-time code sent after signup.
var VerifyEmail = Schema{
	Name: "verify-email",
	Fields: []Field{
		{Name: FieldCode, Label: "Verification code", Required: true, Rules: []Rule{single(FieldCode, validation.OTP)}},
	},
}

// TwoFactor is optional: the user either confirms a setup code or skips.
var TwoFactor = Schema{
	Name: "two-factor",
	Fields: []Field{
		{Name: FieldSkip, Label: "Skip"},
		{Name: FieldCode, Label: "Authenticator code", Rules: []Rule{
			func(v Values) string {
				if IsChecked(v.Get(FieldSkip)) {
					return ""
				}
				return validation.OTP(v.Get(FieldCode))
			},
		}},
	},
}

// Projection takes the base-year revenue.
var Projection = Schema{
	Name: "projection",
	Fields: []Field{
		{Name: FieldBaseRevenue, Label: "Base revenue", Required: true, Rules: []Rule{
			single(FieldBaseRevenue, func(s string) string { return validation.PositiveAmount("Base revenue", s) }),
		}},
	},
}

// Review is the final confirmation before a report is generated.
var Review = Schema{
	Name: "review",
	Fields: []Field{
		{Name: FieldConfirm, Label: "Confirmation", Rules: []Rule{checked("Report details")}},
	},
}

// SupportTicket is the help-desk form.
var SupportTicket = Schema{
	Name: "support-ticket",
	Fields: []Field{
		{Name: FieldSubject, Label: "Subject", Required: true},
		{Name: FieldMessage, Label: "Message", Required: true, FreeText: true},
	},
}

// Billing collects card details for the payment collaborator.
var Billing = Schema{
	Name: "billing",
	Fields: []Field{
		{Name: FieldCardholder, Label: "Cardholder name", Required: true},
		{Name: FieldCardNumber, Label: "Card number", Required: true, Secret: true, Rules: []Rule{single(FieldCardNumber, validation.CardNumber)}},
		{Name: FieldExpiry, Label: "Expiry", Required: true, Rules: []Rule{
			func(v Values) string { return validation.CardExpiry(v.Get(FieldExpiry), v.Now()) },
		}},
		{Name: FieldCVC, Label: "CVC", Required: true, Secret: true, Rules: []Rule{single(FieldCVC, validation.CVC)}},
	},
}
