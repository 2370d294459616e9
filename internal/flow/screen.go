package flow

import (
	"errors"
	"fmt"
)

var (
	ErrUnknownScreen = errors.New("unknown screen")
	ErrUnknownKind   = errors.New("unknown flow kind")
)

// Screen identifies what the client renders for the current step.
type Screen int

const (
	ScreenUnknown Screen = iota
	ScreenSignupAccount
	ScreenSignupCompany
	ScreenSignupPlan
	ScreenVerifyEmail
	ScreenTwoFactor
	ScreenReportCompany
	ScreenReportDocuments
	ScreenReportProjection
	ScreenReportReview
	ScreenDone
)

var screenNames = [...]string{
	ScreenUnknown:          "unknown",
	ScreenSignupAccount:    "signup-account",
	ScreenSignupCompany:    "signup-company",
	ScreenSignupPlan:       "signup-plan",
	ScreenVerifyEmail:      "verify-email",
	ScreenTwoFactor:        "two-factor",
	ScreenReportCompany:    "report-company",
	ScreenReportDocuments:  "report-documents",
	ScreenReportProjection: "report-projection",
	ScreenReportReview:     "report-review",
	ScreenDone:             "done",
}

func (s Screen) String() string {
	if s < 0 || int(s) >= len(screenNames) {
		return fmt.Sprintf("Screen(%d)", int(s))
	}
	return screenNames[s]
}

// ParseScreen is the inverse of String.
func ParseScreen(name string) (Screen, error) {
	for i, n := range screenNames {
		if n == name && Screen(i) != ScreenUnknown {
			return Screen(i), nil
		}
	}
	return ScreenUnknown, fmt.Errorf("%w: %q", ErrUnknownScreen, name)
}

func (s Screen) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Screen) UnmarshalText(text []byte) error {
	parsed, err := ParseScreen(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// Kind selects which wizard a flow runs.
type Kind int

const (
	kindNone Kind = iota
	KindSignup
	KindVerification
	KindReport
)

func (k Kind) String() string {
	switch k {
	case KindSignup:
		return "signup"
	case KindVerification:
		return "verification"
	case KindReport:
		return "report"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// ParseKind is the inverse of String.
func ParseKind(name string) (Kind, error) {
	for _, k := range []Kind{KindSignup, KindVerification, KindReport} {
		if k.String() == name {
			return k, nil
		}
	}
	return kindNone, fmt.Errorf("%w: %q", ErrUnknownKind, name)
}

func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *Kind) UnmarshalText(text []byte) error {
	parsed, err := ParseKind(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}
