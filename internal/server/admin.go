package server

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/iwvelando/company-valuation/internal/admin"
)

func (h *handler) handleAdminCompanies(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.svc.Console.Companies(r.URL.Query().Get("q"), pageParam(r)))
}

func (h *handler) handleAdminSubscriptions(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.svc.Console.Subscriptions())
}

func (h *handler) handleAdminTickets(w http.ResponseWriter, r *http.Request) {
	var status admin.TicketStatus
	if raw := r.URL.Query().Get("status"); raw != "" {
		parsed, err := admin.ParseTicketStatus(raw)
		if err != nil {
			h.respondErr(w, err, nil, "server.handleAdminTickets")
			return
		}
		status = parsed
	}
	h.writeJSON(w, http.StatusOK, h.svc.Console.Tickets(status, pageParam(r)))
}

func (h *handler) handleAdminUpdateTicket(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleAdminUpdateTicket"

	var req struct {
		Status string `json:"status"`
	}
	if err := decodeJSON(r, &req); err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, fmt.Sprintf("failed to decode request: %v", err), op)
		return
	}
	status, err := admin.ParseTicketStatus(req.Status)
	if err != nil {
		h.respondErr(w, err, nil, op)
		return
	}
	ticket, err := h.svc.Console.UpdateTicketStatus(chi.URLParam(r, "id"), status)
	if err != nil {
		h.respondErr(w, err, nil, op)
		return
	}
	h.record(currentSession(r).Email, "ticket.updated", ticket.ID+" "+string(ticket.Status))
	h.writeJSON(w, http.StatusOK, ticket)
}

func (h *handler) handleAdminActivity(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.svc.Console.Activity(pageParam(r)))
}
