// Package config defines the application configuration and loads it from a
// YAML file with environment overrides.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/iwvelando/company-valuation/internal/projection"
	"github.com/iwvelando/company-valuation/internal/upload"
	"github.com/iwvelando/company-valuation/pkg/constants"
	"github.com/iwvelando/company-valuation/pkg/format"
	"github.com/iwvelando/company-valuation/pkg/validation"
	"github.com/spf13/viper"
)

// Configuration holds all configuration for company-valuation.
type Configuration struct {
	Logging    LoggingConfig          `yaml:"logging,omitempty" mapstructure:"logging"`
	Output     OutputConfig           `yaml:"output,omitempty" mapstructure:"output"`
	Projection projection.Assumptions `yaml:"projection,omitempty" mapstructure:"projection"`
	Uploads    UploadsConfig          `yaml:"uploads,omitempty" mapstructure:"uploads"`
	Simulation SimulationConfig       `yaml:"simulation,omitempty" mapstructure:"simulation"`
	Admin      AdminConfig            `yaml:"admin,omitempty" mapstructure:"admin"`
}

// LoggingConfig holds logging configuration options
type LoggingConfig struct {
	Level      string `yaml:"level,omitempty" mapstructure:"level"`           // debug, info, warn, error
	Format     string `yaml:"format,omitempty" mapstructure:"format"`         // json, console
	OutputFile string `yaml:"outputFile,omitempty" mapstructure:"outputFile"` // optional file output
}

// OutputConfig holds output format configuration options
type OutputConfig struct {
	Format string `yaml:"format,omitempty" mapstructure:"format"` // pretty, csv
}

// UploadsConfig controls which documents the report flow accepts.
type UploadsConfig struct {
	Accept      []string `yaml:"accept,omitempty" mapstructure:"accept"`
	MaxFileSize string   `yaml:"maxFileSize,omitempty" mapstructure:"maxFileSize"` // e.g. "10M"
	MaxFiles    int      `yaml:"maxFiles,omitempty" mapstructure:"maxFiles"`
}

// SimulationConfig sets the latency of the in-memory stand-ins and the
// lifetime of flows and sessions.
type SimulationConfig struct {
	UploadDelay  time.Duration `yaml:"uploadDelay,omitempty" mapstructure:"uploadDelay"`
	AccountDelay time.Duration `yaml:"accountDelay,omitempty" mapstructure:"accountDelay"`
	FlowIdleTTL  time.Duration `yaml:"flowIdleTTL,omitempty" mapstructure:"flowIdleTTL"`
	SessionTTL   time.Duration `yaml:"sessionTTL,omitempty" mapstructure:"sessionTTL"`
}

// AdminConfig seeds the admin console and its operator account.
type AdminConfig struct {
	Seed     bool   `yaml:"seed" mapstructure:"seed"`
	Name     string `yaml:"name,omitempty" mapstructure:"name"`
	Email    string `yaml:"email,omitempty" mapstructure:"email"`
	Password string `yaml:"password,omitempty" mapstructure:"password"`
	PageSize int    `yaml:"pageSize,omitempty" mapstructure:"pageSize"`
}

func setDefaults(v *viper.Viper) {
	assumptions := projection.DefaultAssumptions()

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.outputFile", "")
	v.SetDefault("output.format", constants.OutputFormatPretty)
	v.SetDefault("projection.growth", assumptions.Growth)
	v.SetDefault("projection.expenseRatio", assumptions.ExpenseRatio)
	v.SetDefault("projection.discountRate", assumptions.DiscountRate)
	v.SetDefault("projection.terminalGrowth", assumptions.TerminalGrowth)
	v.SetDefault("uploads.accept", []string{constants.ContentTypePDF})
	v.SetDefault("uploads.maxFileSize", "10M")
	v.SetDefault("uploads.maxFiles", 0)
	v.SetDefault("simulation.uploadDelay", constants.DefaultUploadDelay)
	v.SetDefault("simulation.accountDelay", constants.DefaultAccountDelay)
	v.SetDefault("simulation.flowIdleTTL", constants.DefaultFlowIdleTTL)
	v.SetDefault("simulation.sessionTTL", constants.DefaultSessionTTL)
	v.SetDefault("admin.seed", true)
	v.SetDefault("admin.name", "Administrator")
	v.SetDefault("admin.email", "admin@example.com")
	v.SetDefault("admin.password", "")
	v.SetDefault("admin.pageSize", constants.DefaultPageSize)
}

// Default returns the configuration used when no file is given, with
// environment overrides applied.
func Default() (*Configuration, error) {
	return LoadConfiguration("")
}

// LoadConfiguration takes a file path as input and loads the YAML-formatted
// configuration there. Every key can be overridden from the environment,
// e.g. VALUATION_UPLOADS_MAXFILESIZE=20M. An empty path loads defaults only.
func LoadConfiguration(configPath string) (*Configuration, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(constants.EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
		v.SetConfigType("yml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config file, %s", err)
		}
	}

	var configuration Configuration
	if err := v.Unmarshal(&configuration); err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %s", err)
	}

	if err := configuration.Validate(); err != nil {
		return nil, err
	}
	return &configuration, nil
}

// Validate checks the values that cannot be corrected by a default.
func (c *Configuration) Validate() error {
	if err := validation.ValidateOutputFormat(c.Output.Format); err != nil {
		return err
	}
	if err := c.Projection.Validate(); err != nil {
		return err
	}
	if _, err := c.UploadConfig(); err != nil {
		return err
	}
	if c.Uploads.MaxFiles < 0 {
		return fmt.Errorf("uploads.maxFiles must not be negative, got %d", c.Uploads.MaxFiles)
	}
	return nil
}

// UploadConfig converts the uploads section into the queue's acceptance rules.
func (c *Configuration) UploadConfig() (upload.Config, error) {
	size, err := format.ParseSize(c.Uploads.MaxFileSize, constants.DefaultMaxUploadSizeBytes)
	if err != nil {
		return upload.Config{}, fmt.Errorf("uploads.maxFileSize: %w", err)
	}
	if size <= 0 {
		size = constants.DefaultMaxUploadSizeBytes
	}
	return upload.Config{
		Accept:      append([]string(nil), c.Uploads.Accept...),
		MaxFileSize: size,
		MaxEntries:  c.Uploads.MaxFiles,
	}, nil
}
