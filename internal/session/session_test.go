package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/iwvelando/company-valuation/pkg/constants"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

func newAccounts() *MemoryAccounts {
	return NewMemoryAccounts(zap.NewNop(), 0).WithHashCost(bcrypt.MinCost)
}

func TestStoreLifecycle(t *testing.T) {
	store := NewStore(zap.NewNop(), time.Hour)
	account := Account{ID: "u1", Email: "user@example.com", Roles: []string{RoleAdmin}}

	sess, err := store.Init(account)
	if err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	if len(sess.Token) != 64 {
		t.Fatalf("expected 32-byte hex token, got %q", sess.Token)
	}

	got, err := store.Lookup(sess.Token)
	if err != nil {
		t.Fatalf("Lookup() error = %v", err)
	}
	if got.UserID != "u1" || !got.HasRole(RoleAdmin) {
		t.Fatalf("unexpected session %+v", got)
	}

	store.Clear(sess.Token)
	if _, err := store.Lookup(sess.Token); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound after Clear, got %v", err)
	}
	store.Clear(sess.Token)
	if store.Len() != 0 {
		t.Fatalf("expected no sessions, got %d", store.Len())
	}
}

func TestStoreExpiry(t *testing.T) {
	store := NewStore(nil, time.Minute)
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	sess, err := store.Init(Account{ID: "u1"})
	if err != nil {
		t.Fatalf("Init() error = %v", err)
	}

	now = now.Add(2 * time.Minute)
	if _, err := store.Lookup(sess.Token); !errors.Is(err, ErrSessionExpired) {
		t.Fatalf("expected ErrSessionExpired, got %v", err)
	}
	if store.Len() != 0 {
		t.Fatal("expired session should be dropped")
	}
}

func TestContextRoundTrip(t *testing.T) {
	if _, ok := FromContext(context.Background()); ok {
		t.Fatal("empty context should carry no session")
	}
	sess := &Session{UserID: "u1"}
	got, ok := FromContext(WithSession(context.Background(), sess))
	if !ok || got.UserID != "u1" {
		t.Fatalf("unexpected session from context: %+v", got)
	}
}

func TestSignupVerifyAuthenticate(t *testing.T) {
	ctx := context.Background()
	accounts := newAccounts()

	account, err := accounts.CreateAccount(ctx, SignupRequest{
		Name:     "Ada Lovelace",
		Email:    "Ada@Example.com",
		Password: "correct horse",
	})
	if err != nil {
		t.Fatalf("CreateAccount() error = %v", err)
	}
	if account.Verified {
		t.Fatal("new accounts start unverified")
	}

	if _, err := accounts.CreateAccount(ctx, SignupRequest{Email: "ada@example.com", Password: "whatever1"}); !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}

	if _, err := accounts.Authenticate(ctx, "ada@example.com", "correct horse"); !errors.Is(err, ErrNotVerified) {
		t.Fatalf("expected ErrNotVerified, got %v", err)
	}

	code, ok := accounts.PendingCode("ada@example.com")
	if !ok || len(code) != 6 {
		t.Fatalf("expected a pending 6-digit code, got %q", code)
	}
	if err := accounts.VerifyEmail(ctx, "ada@example.com", "000000x"); !errors.Is(err, ErrInvalidCode) {
		t.Fatalf("expected ErrInvalidCode, got %v", err)
	}
	if err := accounts.VerifyEmail(ctx, "ada@example.com", code); err != nil {
		t.Fatalf("VerifyEmail() error = %v", err)
	}

	if _, err := accounts.Authenticate(ctx, "ada@example.com", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if _, err := accounts.Authenticate(ctx, "nobody@example.com", "x"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for unknown email, got %v", err)
	}
	got, err := accounts.Authenticate(ctx, "ADA@example.com", "correct horse")
	if err != nil {
		t.Fatalf("Authenticate() error = %v", err)
	}
	if got.ID != account.ID || !got.Verified {
		t.Fatalf("unexpected account %+v", got)
	}
}

func TestResendReplacesCode(t *testing.T) {
	ctx := context.Background()
	accounts := newAccounts()
	codes := []string{"111111", "222222"}
	accounts.Code = func() (string, error) {
		code := codes[0]
		codes = codes[1:]
		return code, nil
	}

	if _, err := accounts.CreateAccount(ctx, SignupRequest{Email: "a@b.co", Password: "password1"}); err != nil {
		t.Fatalf("CreateAccount() error = %v", err)
	}
	if err := accounts.ResendCode(ctx, "a@b.co"); err != nil {
		t.Fatalf("ResendCode() error = %v", err)
	}
	if err := accounts.VerifyEmail(ctx, "a@b.co", "111111"); !errors.Is(err, ErrInvalidCode) {
		t.Fatalf("old code should be rejected, got %v", err)
	}
	if err := accounts.VerifyEmail(ctx, "a@b.co", "222222"); err != nil {
		t.Fatalf("VerifyEmail() error = %v", err)
	}
	if err := accounts.ResendCode(ctx, "missing@b.co"); !errors.Is(err, ErrUnknownAccount) {
		t.Fatalf("expected ErrUnknownAccount, got %v", err)
	}
}

func TestTwoFactorEnrolment(t *testing.T) {
	ctx := context.Background()
	accounts := newAccounts()
	if _, err := accounts.AddAccount("Admin", "admin@example.com", "adminpass", RoleAdmin); err != nil {
		t.Fatalf("AddAccount() error = %v", err)
	}

	if err := accounts.EnableTwoFactor(ctx, "admin@example.com", "123456"); !errors.Is(err, ErrInvalidCode) {
		t.Fatalf("enabling without enrolment should fail, got %v", err)
	}
	code, err := accounts.StartTwoFactor(ctx, "admin@example.com")
	if err != nil {
		t.Fatalf("StartTwoFactor() error = %v", err)
	}
	if err := accounts.EnableTwoFactor(ctx, "admin@example.com", code); err != nil {
		t.Fatalf("EnableTwoFactor() error = %v", err)
	}
	got, _ := accounts.Lookup(ctx, "admin@example.com")
	if !got.TwoFactor {
		t.Fatal("two-factor should be enabled")
	}
}

func TestCodeDiscardedAfterFailedAttempts(t *testing.T) {
	ctx := context.Background()
	accounts := newAccounts()
	codes := []string{"111111", "222222"}
	accounts.Code = func() (string, error) {
		code := codes[0]
		codes = codes[1:]
		return code, nil
	}
	if _, err := accounts.CreateAccount(ctx, SignupRequest{Email: "a@b.co", Password: "password1"}); err != nil {
		t.Fatalf("CreateAccount() error = %v", err)
	}

	for i := 1; i < constants.MaxCodeAttempts; i++ {
		if err := accounts.VerifyEmail(ctx, "a@b.co", "999999"); !errors.Is(err, ErrInvalidCode) {
			t.Fatalf("attempt %d: expected ErrInvalidCode, got %v", i, err)
		}
	}
	if err := accounts.VerifyEmail(ctx, "a@b.co", "999999"); !errors.Is(err, ErrTooManyAttempts) {
		t.Fatalf("last attempt: expected ErrTooManyAttempts, got %v", err)
	}
	if err := accounts.VerifyEmail(ctx, "a@b.co", "111111"); !errors.Is(err, ErrTooManyAttempts) {
		t.Fatalf("discarded code should stay rejected, got %v", err)
	}
	if _, ok := accounts.PendingCode("a@b.co"); ok {
		t.Error("no code should be pending after lockout")
	}

	if err := accounts.ResendCode(ctx, "a@b.co"); err != nil {
		t.Fatalf("ResendCode() error = %v", err)
	}
	if err := accounts.VerifyEmail(ctx, "a@b.co", "222222"); err != nil {
		t.Fatalf("VerifyEmail() after resend error = %v", err)
	}
}

func TestTwoFactorDiscardedAfterFailedAttempts(t *testing.T) {
	ctx := context.Background()
	accounts := newAccounts()
	if _, err := accounts.AddAccount("Admin", "admin@example.com", "adminpass", RoleAdmin); err != nil {
		t.Fatalf("AddAccount() error = %v", err)
	}
	code, err := accounts.StartTwoFactor(ctx, "admin@example.com")
	if err != nil {
		t.Fatalf("StartTwoFactor() error = %v", err)
	}
	wrong := "000000"
	if code == wrong {
		wrong = "000001"
	}

	for i := 0; i < constants.MaxCodeAttempts; i++ {
		_ = accounts.EnableTwoFactor(ctx, "admin@example.com", wrong)
	}
	if err := accounts.EnableTwoFactor(ctx, "admin@example.com", code); !errors.Is(err, ErrTooManyAttempts) {
		t.Fatalf("expected ErrTooManyAttempts, got %v", err)
	}

	code, err = accounts.StartTwoFactor(ctx, "admin@example.com")
	if err != nil {
		t.Fatalf("StartTwoFactor() error = %v", err)
	}
	if err := accounts.EnableTwoFactor(ctx, "admin@example.com", code); err != nil {
		t.Fatalf("EnableTwoFactor() after restart error = %v", err)
	}
}

func TestSimulatedDelayHonoursContext(t *testing.T) {
	accounts := NewMemoryAccounts(nil, time.Hour).WithHashCost(bcrypt.MinCost)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := accounts.CreateAccount(ctx, SignupRequest{Email: "a@b.co", Password: "password1"})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline error, got %v", err)
	}
	if accounts.Len() != 0 {
		t.Fatal("cancelled call must not create an account")
	}
}
