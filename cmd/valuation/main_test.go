package main

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/iwvelando/company-valuation/internal/config"
)

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestProjectCommand(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		contains string
		wantErr  bool
	}{
		{name: "pretty", args: []string{"project", "100000"}, contains: "Present value:  $820,215.49"},
		{name: "csv", args: []string{"project", "$100,000", "--output-format", "csv"}, contains: `"total","","","","","820215.49"`},
		{name: "negative revenue", args: []string{"project", "-1"}, wantErr: true},
		{name: "not a number", args: []string{"project", "lots"}, wantErr: true},
		{name: "bad format", args: []string{"project", "100", "--output-format", "xml"}, wantErr: true},
		{name: "missing argument", args: []string{"project"}, wantErr: true},
		{name: "missing explicit config", args: []string{"project", "100", "--config", "does-not-exist.yaml"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := runCLI(t, append(tt.args, "--log-level", "error")...)
			if (err != nil) != tt.wantErr {
				t.Fatalf("error = %v, wantErr %v (output %q)", err, tt.wantErr, out)
			}
			if !strings.Contains(out, tt.contains) {
				t.Errorf("output %q does not contain %q", out, tt.contains)
			}
		})
	}
}

func TestVersionCommand(t *testing.T) {
	out, err := runCLI(t, "version")
	if err != nil {
		t.Fatalf("version error = %v", err)
	}
	if out != "valuation dev\n" {
		t.Errorf("version output = %q", out)
	}
}

func TestInitializeLogger(t *testing.T) {
	tests := []struct {
		name     string
		cfg      config.LoggingConfig
		override string
		wantErr  bool
	}{
		{name: "defaults", cfg: config.LoggingConfig{}},
		{name: "console debug", cfg: config.LoggingConfig{Level: "debug", Format: "console"}},
		{name: "override wins", cfg: config.LoggingConfig{Level: "bogus"}, override: "warn"},
		{name: "bad level", cfg: config.LoggingConfig{Level: "loud"}, wantErr: true},
		{name: "bad format", cfg: config.LoggingConfig{Format: "xml"}, wantErr: true},
		{name: "output file", cfg: config.LoggingConfig{OutputFile: filepath.Join(t.TempDir(), "logs", "valuation.log")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, err := initializeLogger(tt.cfg, tt.override)
			if (err != nil) != tt.wantErr {
				t.Fatalf("initializeLogger() error = %v, wantErr %v", err, tt.wantErr)
			}
			if logger != nil {
				_ = logger.Sync()
			}
		})
	}
}
