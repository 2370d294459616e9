// Package admin backs the admin console: companies, subscriptions, support
// tickets and the activity log.
package admin

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/iwvelando/company-valuation/pkg/constants"
	"go.uber.org/zap"
)

var (
	ErrTicketNotFound = errors.New("ticket not found")
	ErrInvalidStatus  = errors.New("invalid ticket status")
)

// TicketStatus is the lifecycle of a support ticket.
type TicketStatus string

const (
	TicketOpen       TicketStatus = "open"
	TicketInProgress TicketStatus = "in_progress"
	TicketClosed     TicketStatus = "closed"
)

// ParseTicketStatus validates a status string.
func ParseTicketStatus(s string) (TicketStatus, error) {
	switch TicketStatus(strings.ToLower(strings.TrimSpace(s))) {
	case TicketOpen:
		return TicketOpen, nil
	case TicketInProgress:
		return TicketInProgress, nil
	case TicketClosed:
		return TicketClosed, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidStatus, s)
}

type Company struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Industry  string    `json:"industry"`
	Owner     string    `json:"owner"`
	Reports   int       `json:"reports"`
	CreatedAt time.Time `json:"createdAt"`
}

type Subscription struct {
	PlanID      string `json:"planId"`
	Name        string `json:"name"`
	Price       string `json:"price"`
	Subscribers int    `json:"subscribers"`
}

type Ticket struct {
	ID        string       `json:"id"`
	Subject   string       `json:"subject"`
	Message   string       `json:"message"`
	Requester string       `json:"requester"`
	Status    TicketStatus `json:"status"`
	CreatedAt time.Time    `json:"createdAt"`
	UpdatedAt time.Time    `json:"updatedAt"`
}

type Activity struct {
	At     time.Time `json:"at"`
	Actor  string    `json:"actor"`
	Action string    `json:"action"`
	Detail string    `json:"detail,omitempty"`
}

// PageResult is one page of a table.
type PageResult[T any] struct {
	Items      []T `json:"items"`
	Page       int `json:"page"`
	PerPage    int `json:"perPage"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

// Page slices items for display. perPage below one falls back to the
// default and page is clamped into range.
func Page[T any](items []T, page, perPage int) PageResult[T] {
	if perPage < 1 {
		perPage = constants.DefaultPageSize
	}
	total := len(items)
	pages := (total + perPage - 1) / perPage
	if pages == 0 {
		pages = 1
	}
	if page < 1 {
		page = 1
	}
	if page > pages {
		page = pages
	}
	start := (page - 1) * perPage
	end := start + perPage
	if end > total {
		end = total
	}
	return PageResult[T]{
		Items:      append([]T{}, items[start:end]...),
		Page:       page,
		PerPage:    perPage,
		Total:      total,
		TotalPages: pages,
	}
}

// Console is the in-memory admin data set.
type Console struct {
	mu            sync.RWMutex
	logger        *zap.Logger
	perPage       int
	companies     []Company
	subscriptions []Subscription
	tickets       []Ticket
	activity      []Activity
	now           func() time.Time
}

// NewConsole creates an empty console.
func NewConsole(logger *zap.Logger, perPage int) *Console {
	if logger == nil {
		logger = zap.NewNop()
	}
	if perPage < 1 {
		perPage = constants.DefaultPageSize
	}
	return &Console{logger: logger, perPage: perPage, now: time.Now}
}

// Seed loads the sample companies, subscriptions and tickets shown on a
// fresh install.
func (c *Console) Seed() {
	now := c.now()
	c.mu.Lock()
	defer c.mu.Unlock()

	c.companies = []Company{
		{ID: uuid.NewString(), Name: "Acme Robotics", Industry: "Manufacturing", Owner: "jane@acme.example", Reports: 3, CreatedAt: now.AddDate(0, -6, 0)},
		{ID: uuid.NewString(), Name: "Bluefin Analytics", Industry: "Software", Owner: "li@bluefin.example", Reports: 1, CreatedAt: now.AddDate(0, -4, 0)},
		{ID: uuid.NewString(), Name: "Cedar Health", Industry: "Healthcare", Owner: "omar@cedar.example", Reports: 2, CreatedAt: now.AddDate(0, -3, 0)},
		{ID: uuid.NewString(), Name: "Delta Logistics", Industry: "Transportation", Owner: "sam@delta.example", Reports: 5, CreatedAt: now.AddDate(0, -2, 0)},
		{ID: uuid.NewString(), Name: "Evergreen Foods", Industry: "Consumer Goods", Owner: "ana@evergreen.example", Reports: 1, CreatedAt: now.AddDate(0, -1, 0)},
	}
	c.subscriptions = []Subscription{
		{PlanID: "single", Name: "Single Report", Price: "$499", Subscribers: 42},
		{PlanID: "multiple", Name: "Multiple Reports", Price: "$1,499", Subscribers: 17},
		{PlanID: "custom", Name: "Custom", Price: "Contact us", Subscribers: 3},
	}
	c.tickets = []Ticket{
		{ID: uuid.NewString(), Subject: "Cannot upload statement", Message: "The PDF upload stays pending.", Requester: "li@bluefin.example", Status: TicketOpen, CreatedAt: now.Add(-48 * time.Hour), UpdatedAt: now.Add(-48 * time.Hour)},
		{ID: uuid.NewString(), Subject: "Invoice request", Message: "Please send last month's invoice.", Requester: "sam@delta.example", Status: TicketClosed, CreatedAt: now.Add(-96 * time.Hour), UpdatedAt: now.Add(-72 * time.Hour)},
	}
}

// AddCompany registers a company, typically on signup completion.
func (c *Console) AddCompany(name, industry, owner string) Company {
	company := Company{ID: uuid.NewString(), Name: name, Industry: industry, Owner: owner, CreatedAt: c.now()}
	c.mu.Lock()
	c.companies = append(c.companies, company)
	c.mu.Unlock()
	return company
}

// CountReport bumps the report counter of the named company.
func (c *Console) CountReport(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.companies {
		if strings.EqualFold(c.companies[i].Name, name) {
			c.companies[i].Reports++
			return
		}
	}
}

// Companies filters by a case-insensitive name substring, sorted by name.
func (c *Console) Companies(query string, page int) PageResult[Company] {
	query = strings.ToLower(strings.TrimSpace(query))
	c.mu.RLock()
	matched := make([]Company, 0, len(c.companies))
	for _, company := range c.companies {
		if query == "" || strings.Contains(strings.ToLower(company.Name), query) {
			matched = append(matched, company)
		}
	}
	c.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool {
		return strings.ToLower(matched[i].Name) < strings.ToLower(matched[j].Name)
	})
	return Page(matched, page, c.perPage)
}

func (c *Console) Subscriptions() []Subscription {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]Subscription{}, c.subscriptions...)
}

// Tickets lists tickets newest first. An empty status lists all of them.
func (c *Console) Tickets(status TicketStatus, page int) PageResult[Ticket] {
	c.mu.RLock()
	matched := make([]Ticket, 0, len(c.tickets))
	for _, ticket := range c.tickets {
		if status == "" || ticket.Status == status {
			matched = append(matched, ticket)
		}
	}
	c.mu.RUnlock()

	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})
	return Page(matched, page, c.perPage)
}

// OpenTicket files a new support ticket.
func (c *Console) OpenTicket(requester, subject, message string) Ticket {
	now := c.now()
	ticket := Ticket{
		ID:        uuid.NewString(),
		Subject:   subject,
		Message:   message,
		Requester: requester,
		Status:    TicketOpen,
		CreatedAt: now,
		UpdatedAt: now,
	}
	c.mu.Lock()
	c.tickets = append(c.tickets, ticket)
	c.mu.Unlock()

	c.logger.Info("support ticket opened",
		zap.String("op", "admin.OpenTicket"),
		zap.String("ticket", ticket.ID),
		zap.String("requester", requester),
	)
	return ticket
}

func (c *Console) UpdateTicketStatus(id string, status TicketStatus) (Ticket, error) {
	if _, err := ParseTicketStatus(string(status)); err != nil {
		return Ticket{}, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.tickets {
		if c.tickets[i].ID == id {
			c.tickets[i].Status = status
			c.tickets[i].UpdatedAt = c.now()
			return c.tickets[i], nil
		}
	}
	return Ticket{}, fmt.Errorf("%w: %s", ErrTicketNotFound, id)
}

// Record appends an entry to the activity log.
func (c *Console) Record(actor, action, detail string) {
	entry := Activity{At: c.now(), Actor: actor, Action: action, Detail: detail}
	c.mu.Lock()
	c.activity = append(c.activity, entry)
	c.mu.Unlock()
}

// Activity lists log entries newest first.
func (c *Console) Activity(page int) PageResult[Activity] {
	c.mu.RLock()
	entries := make([]Activity, len(c.activity))
	for i, entry := range c.activity {
		entries[len(c.activity)-1-i] = entry
	}
	c.mu.RUnlock()
	return Page(entries, page, c.perPage)
}
