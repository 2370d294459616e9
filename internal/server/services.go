package server

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"os"

	"github.com/iwvelando/company-valuation/internal/admin"
	"github.com/iwvelando/company-valuation/internal/billing"
	"github.com/iwvelando/company-valuation/internal/config"
	"github.com/iwvelando/company-valuation/internal/flow"
	"github.com/iwvelando/company-valuation/internal/projection"
	"github.com/iwvelando/company-valuation/internal/session"
	"github.com/iwvelando/company-valuation/internal/upload"
	"go.uber.org/zap"
)

// BuildServices wires the in-memory stand-ins from the application config.
// A generated admin password is written to notice, never to the log; a nil
// notice means stderr.
func BuildServices(logger *zap.Logger, cfg *config.Configuration, notice io.Writer) (Services, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if notice == nil {
		notice = os.Stderr
	}

	calculator, err := projection.NewCalculator(logger, cfg.Projection)
	if err != nil {
		return Services{}, err
	}
	uploads, err := cfg.UploadConfig()
	if err != nil {
		return Services{}, err
	}

	accounts := session.NewMemoryAccounts(logger, cfg.Simulation.AccountDelay)
	flows, err := flow.NewManager(flow.Deps{
		Logger:     logger,
		Accounts:   accounts,
		Calculator: calculator,
		Uploads:    uploads,
		Store:      upload.NewMemoryStore(cfg.Simulation.UploadDelay),
	}, cfg.Simulation.FlowIdleTTL)
	if err != nil {
		return Services{}, err
	}

	console := admin.NewConsole(logger, cfg.Admin.PageSize)
	if cfg.Admin.Seed {
		console.Seed()
		if err := seedAdmin(logger, notice, accounts, cfg.Admin); err != nil {
			return Services{}, err
		}
	}

	return Services{
		Accounts:   accounts,
		Sessions:   session.NewStore(logger, cfg.Simulation.SessionTTL),
		Flows:      flows,
		Billing:    billing.NewService(logger, &billing.MemoryProcessor{}),
		Console:    console,
		Calculator: calculator,
	}, nil
}

func seedAdmin(logger *zap.Logger, notice io.Writer, accounts *session.MemoryAccounts, cfg config.AdminConfig) error {
	password := cfg.Password
	generated := password == ""
	if generated {
		buf := make([]byte, 12)
		if _, err := rand.Read(buf); err != nil {
			return fmt.Errorf("failed to generate admin password: %w", err)
		}
		password = hex.EncodeToString(buf)
	}

	if _, err := accounts.AddAccount(cfg.Name, cfg.Email, password, session.RoleAdmin); err != nil {
		return fmt.Errorf("failed to seed admin account: %w", err)
	}

	logger.Warn("admin account seeded",
		zap.String("op", "server.seedAdmin"),
		zap.String("email", cfg.Email),
		zap.Bool("generatedPassword", generated),
	)
	if generated {
		if _, err := fmt.Fprintf(notice, "admin account %s: generated password %s\n", cfg.Email, password); err != nil {
			return fmt.Errorf("failed to report admin password: %w", err)
		}
	}
	return nil
}
