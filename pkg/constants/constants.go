// Package constants provides shared constants for the company-valuation application.
package constants

import "time"

// Financial constants
const (
	// DecimalPrecision is the precision for currency rounding (2 decimal places)
	DecimalPrecision = 100

	// ProjectionYears is the length of the revenue projection horizon
	ProjectionYears = 5

	// DefaultExpenseRatio is the share of revenue consumed by expenses each year
	DefaultExpenseRatio = 0.70

	// DefaultDiscountRate is the annual rate used to discount projected income
	DefaultDiscountRate = 0.10

	// DefaultTerminalGrowth is the perpetual growth rate used for the terminal value
	DefaultTerminalGrowth = 0.03
)

// DefaultGrowthSchedule returns the year-over-year revenue growth rates of the
// projection horizon. A fresh slice is returned on every call.
func DefaultGrowthSchedule() []float64 {
	return []float64{0.25, 0.20, 0.18, 0.15, 0.12}
}

// Output format constants
const (
	// OutputFormatPretty is the human-readable output format
	OutputFormatPretty = "pretty"

	// OutputFormatCSV is the CSV output format
	OutputFormatCSV = "csv"
)

// Configuration file constants
const (
	// DefaultConfigFile is the default configuration file name
	DefaultConfigFile = "config.yaml"

	// DefaultServerConfigFile is the default server configuration file name
	DefaultServerConfigFile = "server-config.yaml"

	// EnvPrefix is the prefix for environment variable overrides
	EnvPrefix = "VALUATION"
)

// Server configuration defaults
const (
	// DefaultServerAddress is the default HTTP listen address for the API
	DefaultServerAddress = ":8080"

	// DefaultMaxUploadSizeBytes is the default ceiling for one uploaded document (10 MB)
	DefaultMaxUploadSizeBytes int64 = 10 * 1024 * 1024

	// DefaultMaxRequestSizeBytes bounds a whole multipart request carrying several documents
	DefaultMaxRequestSizeBytes int64 = 5 * DefaultMaxUploadSizeBytes

	// ContentTypePDF is the only document type accepted by default
	ContentTypePDF = "application/pdf"
)

// Simulation defaults for the in-memory stand-ins of external services.
const (
	DefaultUploadDelay  = 1500 * time.Millisecond
	DefaultAccountDelay = 1 * time.Second
	DefaultFlowIdleTTL  = 1 * time.Hour
	DefaultSessionTTL   = 24 * time.Hour
)

// Form constants
const (
	// MinPasswordLength is the shortest accepted password
	MinPasswordLength = 8

	// OTPDigits is the length of email and two-factor verification codes
	OTPDigits = 6

	// MaxCodeAttempts is how many wrong guesses discard a verification code
	MaxCodeAttempts = 5

	// DefaultPageSize is the number of rows per admin table page
	DefaultPageSize = 10
)
