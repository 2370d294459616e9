package session

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/iwvelando/company-valuation/pkg/constants"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidCode        = errors.New("invalid verification code")
	ErrUnknownAccount     = errors.New("unknown account")
	ErrNotVerified        = errors.New("email not verified")
	ErrTooManyAttempts    = errors.New("too many incorrect codes")
)

// Account is a registered user.
type Account struct {
	ID          string    `json:"id"`
	Email       string    `json:"email"`
	Name        string    `json:"name"`
	CompanyName string    `json:"companyName,omitempty"`
	Industry    string    `json:"industry,omitempty"`
	PlanID      string    `json:"planId,omitempty"`
	Roles       []string  `json:"roles,omitempty"`
	Verified    bool      `json:"verified"`
	TwoFactor   bool      `json:"twoFactor"`
	CreatedAt   time.Time `json:"createdAt"`
}

// SignupRequest carries everything the signup wizard collected.
type SignupRequest struct {
	Name        string
	Email       string
	Password    string
	CompanyName string
	Industry    string
	PlanID      string
}

// AccountService is the authentication collaborator.
type AccountService interface {
	CreateAccount(ctx context.Context, req SignupRequest) (Account, error)
	VerifyEmail(ctx context.Context, email, code string) error
	ResendCode(ctx context.Context, email string) error
	StartTwoFactor(ctx context.Context, email string) (string, error)
	EnableTwoFactor(ctx context.Context, email, code string) error
	Authenticate(ctx context.Context, email, password string) (Account, error)
	Lookup(ctx context.Context, email string) (Account, error)
}

type accountRecord struct {
	account      Account
	passwordHash []byte
	emailCode    string
	twoFactorKey string
	// Failed guesses against the current codes; a code is discarded once
	// its counter reaches constants.MaxCodeAttempts.
	emailAttempts     int
	twoFactorAttempts int
}

// MemoryAccounts keeps accounts in memory and simulates service latency.
type MemoryAccounts struct {
	logger *zap.Logger
	delay  time.Duration
	cost   int
	now    func() time.Time
	// Code generates verification codes; replaceable in tests.
	Code func() (string, error)

	mu       sync.Mutex
	accounts map[string]*accountRecord
}

// NewMemoryAccounts creates an account stand-in whose calls take delay.
func NewMemoryAccounts(logger *zap.Logger, delay time.Duration) *MemoryAccounts {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MemoryAccounts{
		logger:   logger,
		delay:    delay,
		cost:     bcrypt.DefaultCost,
		now:      time.Now,
		Code:     randomCode,
		accounts: make(map[string]*accountRecord),
	}
}

// WithHashCost lowers the bcrypt cost, e.g. for tests.
func (m *MemoryAccounts) WithHashCost(cost int) *MemoryAccounts {
	if cost >= bcrypt.MinCost && cost <= bcrypt.MaxCost {
		m.cost = cost
	}
	return m
}

// CreateAccount registers an unverified account and issues an email code.
func (m *MemoryAccounts) CreateAccount(ctx context.Context, req SignupRequest) (Account, error) {
	if err := m.wait(ctx); err != nil {
		return Account{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), m.cost)
	if err != nil {
		return Account{}, fmt.Errorf("failed to hash password: %w", err)
	}
	code, err := m.Code()
	if err != nil {
		return Account{}, fmt.Errorf("failed to generate verification code: %w", err)
	}

	key := normalizeEmail(req.Email)
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.accounts[key]; exists {
		return Account{}, ErrEmailTaken
	}
	account := Account{
		ID:          uuid.New().String(),
		Email:       strings.TrimSpace(req.Email),
		Name:        strings.TrimSpace(req.Name),
		CompanyName: strings.TrimSpace(req.CompanyName),
		Industry:    strings.TrimSpace(req.Industry),
		PlanID:      req.PlanID,
		CreatedAt:   m.now(),
	}
	m.accounts[key] = &accountRecord{account: account, passwordHash: hash, emailCode: code}

	m.logger.Info("account created",
		zap.String("op", "session.CreateAccount"),
		zap.String("account", account.ID),
	)
	return account, nil
}

// AddAccount registers a verified account directly, e.g. seeded admins.
func (m *MemoryAccounts) AddAccount(name, email, password string, roles ...string) (Account, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), m.cost)
	if err != nil {
		return Account{}, fmt.Errorf("failed to hash password: %w", err)
	}

	key := normalizeEmail(email)
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.accounts[key]; exists {
		return Account{}, ErrEmailTaken
	}
	account := Account{
		ID:        uuid.New().String(),
		Email:     strings.TrimSpace(email),
		Name:      name,
		Roles:     append([]string(nil), roles...),
		Verified:  true,
		CreatedAt: m.now(),
	}
	m.accounts[key] = &accountRecord{account: account, passwordHash: hash}
	return account, nil
}

// VerifyEmail checks the emailed code and marks the account verified.
func (m *MemoryAccounts) VerifyEmail(ctx context.Context, email, code string) error {
	if err := m.wait(ctx); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.accounts[normalizeEmail(email)]
	if !ok {
		return ErrUnknownAccount
	}
	if rec.account.Verified {
		return nil
	}
	if rec.emailAttempts >= constants.MaxCodeAttempts {
		return ErrTooManyAttempts
	}
	if rec.emailCode == "" || strings.TrimSpace(code) != rec.emailCode {
		rec.emailAttempts++
		if rec.emailAttempts >= constants.MaxCodeAttempts {
			rec.emailCode = ""
			m.logger.Warn("email code discarded after failed attempts",
				zap.String("op", "session.VerifyEmail"),
				zap.String("account", rec.account.ID),
				zap.Int("attempts", rec.emailAttempts),
			)
			return ErrTooManyAttempts
		}
		return ErrInvalidCode
	}
	rec.account.Verified = true
	rec.emailCode = ""
	rec.emailAttempts = 0
	return nil
}

// ResendCode replaces the pending email code.
func (m *MemoryAccounts) ResendCode(ctx context.Context, email string) error {
	if err := m.wait(ctx); err != nil {
		return err
	}
	code, err := m.Code()
	if err != nil {
		return fmt.Errorf("failed to generate verification code: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.accounts[normalizeEmail(email)]
	if !ok {
		return ErrUnknownAccount
	}
	if rec.account.Verified {
		return nil
	}
	rec.emailCode = code
	rec.emailAttempts = 0
	m.logger.Info("verification code resent",
		zap.String("op", "session.ResendCode"),
		zap.String("account", rec.account.ID),
	)
	return nil
}

// StartTwoFactor issues the code the authenticator enrolment would display.
func (m *MemoryAccounts) StartTwoFactor(ctx context.Context, email string) (string, error) {
	if err := m.wait(ctx); err != nil {
		return "", err
	}
	code, err := m.Code()
	if err != nil {
		return "", fmt.Errorf("failed to generate two-factor code: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.accounts[normalizeEmail(email)]
	if !ok {
		return "", ErrUnknownAccount
	}
	if !rec.account.Verified {
		return "", ErrNotVerified
	}
	rec.twoFactorKey = code
	rec.twoFactorAttempts = 0
	return code, nil
}

// EnableTwoFactor confirms the enrolment code.
func (m *MemoryAccounts) EnableTwoFactor(ctx context.Context, email, code string) error {
	if err := m.wait(ctx); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.accounts[normalizeEmail(email)]
	if !ok {
		return ErrUnknownAccount
	}
	if rec.twoFactorAttempts >= constants.MaxCodeAttempts {
		return ErrTooManyAttempts
	}
	if rec.twoFactorKey == "" || strings.TrimSpace(code) != rec.twoFactorKey {
		rec.twoFactorAttempts++
		if rec.twoFactorAttempts >= constants.MaxCodeAttempts {
			rec.twoFactorKey = ""
			return ErrTooManyAttempts
		}
		return ErrInvalidCode
	}
	rec.account.TwoFactor = true
	rec.twoFactorKey = ""
	rec.twoFactorAttempts = 0
	return nil
}

// Authenticate checks credentials of a verified account.
func (m *MemoryAccounts) Authenticate(ctx context.Context, email, password string) (Account, error) {
	if err := m.wait(ctx); err != nil {
		return Account{}, err
	}

	m.mu.Lock()
	rec, ok := m.accounts[normalizeEmail(email)]
	var hash []byte
	var account Account
	if ok {
		hash = rec.passwordHash
		account = rec.account
	}
	m.mu.Unlock()

	if !ok {
		return Account{}, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(hash, []byte(password)); err != nil {
		return Account{}, ErrInvalidCredentials
	}
	if !account.Verified {
		return Account{}, ErrNotVerified
	}
	account.Roles = append([]string(nil), account.Roles...)
	return account, nil
}

// Lookup returns an account by email.
func (m *MemoryAccounts) Lookup(_ context.Context, email string) (Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.accounts[normalizeEmail(email)]
	if !ok {
		return Account{}, ErrUnknownAccount
	}
	account := rec.account
	account.Roles = append([]string(nil), account.Roles...)
	return account, nil
}

// PendingCode exposes the outstanding email code. The real service would
// email it; the stand-in logs it and lets tests read it.
func (m *MemoryAccounts) PendingCode(email string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.accounts[normalizeEmail(email)]
	if !ok || rec.emailCode == "" {
		return "", false
	}
	return rec.emailCode, true
}

// Len returns the number of registered accounts.
func (m *MemoryAccounts) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.accounts)
}

func (m *MemoryAccounts) wait(ctx context.Context) error {
	if m.delay <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(m.delay)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func randomCode() (string, error) {
	limit := big.NewInt(1)
	for i := 0; i < constants.OTPDigits; i++ {
		limit.Mul(limit, big.NewInt(10))
	}
	n, err := rand.Int(rand.Reader, limit)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%0*d", constants.OTPDigits, n.Int64()), nil
}
