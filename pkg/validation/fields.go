package validation

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/iwvelando/company-valuation/pkg/constants"
	"github.com/iwvelando/company-valuation/pkg/format"
)

// Field validators return the message to show next to the field, or an empty
// string when the value is acceptable.

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Messages shared with callers that need to match on them.
const (
	MsgInvalidEmail     = "Invalid email format"
	MsgPasswordTooShort = "Password must be at least 8 characters"
	MsgPasswordMismatch = "Passwords do not match"
	MsgInvalidCode      = "Enter the 6-digit code"
	MsgTooManyAttempts  = "Too many incorrect codes"
	MsgInvalidCard      = "Invalid card number"
	MsgInvalidExpiry    = "Invalid expiry date"
	MsgCardExpired      = "Card has expired"
	MsgInvalidCVC       = "Invalid CVC"
)

// Required rejects empty and whitespace-only values.
func Required(label, value string) string {
	if strings.TrimSpace(value) == "" {
		return fmt.Sprintf("%s is required", label)
	}
	return ""
}

// Email checks the address shape only; emptiness is Required's concern.
func Email(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}
	if !emailPattern.MatchString(value) {
		return MsgInvalidEmail
	}
	return ""
}

// Password enforces the minimum length policy.
func Password(value string) string {
	if value == "" {
		return ""
	}
	if utf8.RuneCountInString(value) < constants.MinPasswordLength {
		return MsgPasswordTooShort
	}
	return ""
}

// ConfirmPassword reports a mismatch on the confirmation field.
func ConfirmPassword(password, confirm string) string {
	if confirm == "" {
		return ""
	}
	if password != confirm {
		return MsgPasswordMismatch
	}
	return ""
}

// OTP accepts exactly constants.OTPDigits ASCII digits.
func OTP(value string) string {
	value = strings.TrimSpace(value)
	if len(value) != constants.OTPDigits || !allDigits(value) {
		return MsgInvalidCode
	}
	return ""
}

// PositiveAmount accepts amounts parseable by format.ParseAmount that are
// strictly greater than zero.
func PositiveAmount(label, value string) string {
	if strings.TrimSpace(value) == "" {
		return ""
	}
	amount, err := format.ParseAmount(value)
	if err != nil || amount <= 0 {
		return fmt.Sprintf("%s must be a positive number", label)
	}
	return ""
}

// Year accepts an optional four digit year no later than the current one.
func Year(label, value string, now time.Time) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}
	year, err := strconv.Atoi(value)
	if err != nil || len(value) != 4 || year < 1800 || year > now.Year() {
		return fmt.Sprintf("%s must be a valid year", label)
	}
	return ""
}

// CardNumber checks digits and the Luhn checksum. Spaces and dashes are ignored.
func CardNumber(value string) string {
	digits := strings.NewReplacer(" ", "", "-", "").Replace(strings.TrimSpace(value))
	if digits == "" {
		return ""
	}
	if len(digits) < 12 || len(digits) > 19 || !allDigits(digits) || !luhn(digits) {
		return MsgInvalidCard
	}
	return ""
}

// CardExpiry accepts MM/YY and rejects months that have already ended.
func CardExpiry(value string, now time.Time) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}
	mm, yy, ok := strings.Cut(value, "/")
	if !ok || len(mm) != 2 || len(yy) != 2 || !allDigits(mm) || !allDigits(yy) {
		return MsgInvalidExpiry
	}
	month, _ := strconv.Atoi(mm)
	year, _ := strconv.Atoi(yy)
	if month < 1 || month > 12 {
		return MsgInvalidExpiry
	}
	// First instant after the expiry month.
	end := time.Date(2000+year, time.Month(month)+1, 1, 0, 0, 0, 0, now.Location())
	if !now.Before(end) {
		return MsgCardExpired
	}
	return ""
}

// CVC accepts three or four digits.
func CVC(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}
	if (len(value) != 3 && len(value) != 4) || !allDigits(value) {
		return MsgInvalidCVC
	}
	return ""
}

func allDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}

func luhn(digits string) bool {
	sum := 0
	double := false
	for i := len(digits) - 1; i >= 0; i-- {
		d := int(digits[i] - '0')
		if double {
			d *= 2
			if d > 9 {
				d -= 9
			}
		}
		sum += d
		double = !double
	}
	return sum%10 == 0
}
