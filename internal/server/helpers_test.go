package server

import (
	"testing"

	"github.com/iwvelando/company-valuation/internal/config"
)

func defaultTestConfig(t *testing.T) *config.Configuration {
	t.Helper()
	cfg, err := config.Default()
	if err != nil {
		t.Fatalf("config.Default() error = %v", err)
	}
	return cfg
}
