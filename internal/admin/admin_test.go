package admin

import (
	"errors"
	"testing"
	"time"
)

func TestPage(t *testing.T) {
	items := make([]int, 23)
	for i := range items {
		items[i] = i
	}

	tests := []struct {
		name      string
		items     []int
		page      int
		perPage   int
		wantPage  int
		wantLen   int
		wantFirst int
		wantPages int
	}{
		{name: "first page", items: items, page: 1, perPage: 10, wantPage: 1, wantLen: 10, wantFirst: 0, wantPages: 3},
		{name: "last partial page", items: items, page: 3, perPage: 10, wantPage: 3, wantLen: 3, wantFirst: 20, wantPages: 3},
		{name: "page clamped high", items: items, page: 9, perPage: 10, wantPage: 3, wantLen: 3, wantFirst: 20, wantPages: 3},
		{name: "page clamped low", items: items, page: -2, perPage: 10, wantPage: 1, wantLen: 10, wantFirst: 0, wantPages: 3},
		{name: "default page size", items: items, page: 2, perPage: 0, wantPage: 2, wantLen: 10, wantFirst: 10, wantPages: 3},
		{name: "empty", items: nil, page: 1, perPage: 10, wantPage: 1, wantLen: 0, wantPages: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Page(tt.items, tt.page, tt.perPage)
			if got.Page != tt.wantPage || len(got.Items) != tt.wantLen || got.TotalPages != tt.wantPages {
				t.Fatalf("Page() = page %d, %d items, %d pages", got.Page, len(got.Items), got.TotalPages)
			}
			if tt.wantLen > 0 && got.Items[0] != tt.wantFirst {
				t.Errorf("first item = %d, want %d", got.Items[0], tt.wantFirst)
			}
			if got.Total != len(tt.items) {
				t.Errorf("Total = %d, want %d", got.Total, len(tt.items))
			}
		})
	}
}

func TestCompaniesFilter(t *testing.T) {
	console := NewConsole(nil, 10)
	console.Seed()

	got := console.Companies("LOGIST", 1)
	if got.Total != 1 || got.Items[0].Name != "Delta Logistics" {
		t.Fatalf("Companies(LOGIST) = %+v", got)
	}

	all := console.Companies("", 1)
	if all.Total != 5 {
		t.Fatalf("Companies() total = %d, want 5", all.Total)
	}
	for i := 1; i < len(all.Items); i++ {
		if all.Items[i-1].Name > all.Items[i].Name {
			t.Fatalf("companies not sorted: %q before %q", all.Items[i-1].Name, all.Items[i].Name)
		}
	}

	console.AddCompany("Acme Widgets", "Retail", "x@example.com")
	console.CountReport("acme widgets")
	got = console.Companies("widgets", 1)
	if got.Total != 1 || got.Items[0].Reports != 1 {
		t.Errorf("added company = %+v", got.Items)
	}
}

func TestTicketLifecycle(t *testing.T) {
	console := NewConsole(nil, 10)
	console.Seed()

	ticket := console.OpenTicket("user@example.com", "Help", "Projection looks off")
	if ticket.Status != TicketOpen {
		t.Fatalf("new ticket status = %q", ticket.Status)
	}

	open := console.Tickets(TicketOpen, 1)
	if open.Total != 2 {
		t.Fatalf("open tickets = %d, want 2", open.Total)
	}

	updated, err := console.UpdateTicketStatus(ticket.ID, TicketClosed)
	if err != nil {
		t.Fatalf("UpdateTicketStatus() error = %v", err)
	}
	if updated.Status != TicketClosed {
		t.Errorf("status = %q, want closed", updated.Status)
	}
	if console.Tickets(TicketClosed, 1).Total != 2 {
		t.Error("expected two closed tickets")
	}

	if _, err := console.UpdateTicketStatus("missing", TicketClosed); !errors.Is(err, ErrTicketNotFound) {
		t.Errorf("missing ticket error = %v", err)
	}
	if _, err := console.UpdateTicketStatus(ticket.ID, "archived"); !errors.Is(err, ErrInvalidStatus) {
		t.Errorf("invalid status error = %v", err)
	}
}

func TestActivityNewestFirst(t *testing.T) {
	console := NewConsole(nil, 2)
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	tick := 0
	console.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Minute)
	}

	console.Record("a@example.com", "login", "")
	console.Record("a@example.com", "report.generated", "Acme")
	console.Record("a@example.com", "logout", "")

	first := console.Activity(1)
	if first.Total != 3 || first.TotalPages != 2 {
		t.Fatalf("Activity(1) = %+v", first)
	}
	if first.Items[0].Action != "logout" || first.Items[1].Action != "report.generated" {
		t.Errorf("order = %+v", first.Items)
	}
	if second := console.Activity(2); second.Items[0].Action != "login" {
		t.Errorf("page 2 = %+v", second.Items)
	}
}
