package upload

import (
	"context"
	"sync"
	"time"
)

// MemoryStore keeps document bytes in memory after a simulated transfer delay.
// It stands in for the document storage service.
type MemoryStore struct {
	delay time.Duration

	mu   sync.RWMutex
	data map[string][]byte
	// Fail, when set, is returned by Put for documents it matches.
	Fail func(doc Document) error
}

// NewMemoryStore creates a store whose Put takes delay to complete.
func NewMemoryStore(delay time.Duration) *MemoryStore {
	return &MemoryStore{delay: delay, data: make(map[string][]byte)}
}

// Put waits for the simulated delay, then keeps the bytes.
func (s *MemoryStore) Put(ctx context.Context, doc Document, data []byte) error {
	if s.delay > 0 {
		timer := time.NewTimer(s.delay)
		defer timer.Stop()
		select {
		case <-timer.C:
		case <-ctx.Done():
			return ctx.Err()
		}
	} else if err := ctx.Err(); err != nil {
		return err
	}

	if s.Fail != nil {
		if err := s.Fail(doc); err != nil {
			return err
		}
	}

	s.mu.Lock()
	s.data[doc.ID] = data
	s.mu.Unlock()
	return nil
}

// Delete forgets a document. Unknown ids are not an error.
func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	delete(s.data, id)
	s.mu.Unlock()
	return nil
}

// Has reports whether bytes are stored for id.
func (s *MemoryStore) Has(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.data[id]
	return ok
}
