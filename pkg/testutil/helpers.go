// Package testutil provides common utility functions for testing.
package testutil

import (
	"sync"
	"testing"
	"time"

	"github.com/iwvelando/company-valuation/internal/session"
	"github.com/iwvelando/company-valuation/internal/upload"
	"golang.org/x/crypto/bcrypt"
)

// Code is the verification code issued by Accounts.
const Code = "123456"

// Epoch is the instant FixedClock and TickingClock start from.
var Epoch = time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

// Accounts returns an in-memory account service without latency, with the
// cheapest bcrypt cost and a predictable verification code.
func Accounts(t testing.TB) *session.MemoryAccounts {
	t.Helper()
	accounts := session.NewMemoryAccounts(nil, 0).WithHashCost(bcrypt.MinCost)
	accounts.Code = func() (string, error) { return Code, nil }
	return accounts
}

// FixedClock always returns Epoch.
func FixedClock() time.Time {
	return Epoch
}

// TickingClock returns a clock that advances by step on every call.
func TickingClock(step time.Duration) func() time.Time {
	var mu sync.Mutex
	now := Epoch
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		now = now.Add(step)
		return now
	}
}

// PDF returns a small file that is sniffed as a PDF.
func PDF(name string) upload.File {
	return upload.File{Name: name, ContentType: "application/pdf", Data: []byte("%PDF-1.4 statement")}
}

// FindDocument finds a document by name in docs.
// Returns a pointer to the document if found, nil otherwise.
func FindDocument(docs []upload.Document, name string) *upload.Document {
	for i := range docs {
		if docs[i].Name == name {
			return &docs[i]
		}
	}
	return nil
}
