package flow

import (
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/iwvelando/company-valuation/internal/projection"
	"github.com/iwvelando/company-valuation/internal/upload"
)

var ErrReportNotFound = errors.New("report not found")

// Report is a generated valuation.
type Report struct {
	ID          string                 `json:"id"`
	Owner       string                 `json:"owner"`
	CompanyName string                 `json:"companyName"`
	Industry    string                 `json:"industry"`
	FoundedYear string                 `json:"foundedYear,omitempty"`
	Description string                 `json:"description,omitempty"`
	Purpose     string                 `json:"purpose"`
	Documents   []upload.Document      `json:"documents"`
	Projection  *projection.Projection `json:"projection"`
	CreatedAt   time.Time              `json:"createdAt"`
}

// History keeps generated reports per owner.
type History struct {
	mu      sync.RWMutex
	reports map[string]Report
}

func NewHistory() *History {
	return &History{reports: make(map[string]Report)}
}

// Add stores a report, assigning an id when it has none.
func (h *History) Add(report Report) Report {
	if report.ID == "" {
		report.ID = uuid.New().String()
	}
	h.mu.Lock()
	h.reports[report.ID] = report
	h.mu.Unlock()
	return report
}

// Get returns a report owned by owner.
func (h *History) Get(owner, id string) (Report, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	report, ok := h.reports[id]
	if !ok || report.Owner != owner {
		return Report{}, ErrReportNotFound
	}
	return report, nil
}

// List returns owner's reports, newest first.
func (h *History) List(owner string) []Report {
	h.mu.RLock()
	out := make([]Report, 0)
	for _, report := range h.reports {
		if report.Owner == owner {
			out = append(out, report)
		}
	}
	h.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}
