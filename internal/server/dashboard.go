package server

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/iwvelando/company-valuation/internal/billing"
	"github.com/iwvelando/company-valuation/internal/form"
	"github.com/iwvelando/company-valuation/internal/projection"
	"github.com/iwvelando/company-valuation/pkg/constants"
	"github.com/iwvelando/company-valuation/pkg/output"
)

type projectionRequest struct {
	BaseRevenue string `json:"baseRevenue"`
}

func (h *handler) handleProjection(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleProjection"

	var req projectionRequest
	if err := decodeJSON(r, &req); err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, fmt.Sprintf("failed to decode request: %v", err), op)
		return
	}

	f := form.New(form.Projection, form.OnSubmit)
	_ = f.Set(form.FieldBaseRevenue, req.BaseRevenue)
	if !f.Validate() {
		h.writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: "invalid base revenue", Errors: f.Errors()})
		return
	}

	result, err := h.svc.Calculator.ProjectInput(req.BaseRevenue)
	if err != nil {
		h.respondErr(w, err, nil, op)
		return
	}
	h.writeProjection(w, r, result)
}

// writeProjection honours ?format=csv and ?format=pretty; JSON otherwise.
func (h *handler) writeProjection(w http.ResponseWriter, r *http.Request, result *projection.Projection) {
	switch r.URL.Query().Get("format") {
	case constants.OutputFormatCSV:
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		output.CsvFormat(w, result)
	case constants.OutputFormatPretty:
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		output.PrettyFormat(w, result)
	default:
		h.writeJSON(w, http.StatusOK, result)
	}
}

func (h *handler) handleListReports(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.svc.Flows.Reports().List(currentSession(r).Email))
}

func (h *handler) handleGetReport(w http.ResponseWriter, r *http.Request) {
	report, err := h.svc.Flows.Reports().Get(currentSession(r).Email, chi.URLParam(r, "id"))
	if err != nil {
		h.respondErr(w, err, nil, "server.handleGetReport")
		return
	}
	if r.URL.Query().Get("format") != "" && report.Projection != nil {
		h.writeProjection(w, r, report.Projection)
		return
	}
	h.writeJSON(w, http.StatusOK, report)
}

type checkoutRequest struct {
	PlanID string            `json:"planId"`
	Card   map[string]string `json:"card"`
}

func (h *handler) handleCheckout(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleCheckout"

	var req checkoutRequest
	if err := decodeJSON(r, &req); err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, fmt.Sprintf("failed to decode request: %v", err), op)
		return
	}
	selection, err := billing.Select(req.PlanID)
	if err != nil {
		h.respondErr(w, err, nil, op)
		return
	}

	sess := currentSession(r)
	result, err := h.svc.Billing.Checkout(r.Context(), sess.UserID, selection, req.Card)
	if err != nil {
		h.respondErr(w, err, result.Errors, op)
		return
	}
	h.record(sess.Email, "checkout", string(selection.PlanID))
	h.writeJSON(w, http.StatusOK, result)
}

type ticketRequest struct {
	Subject string `json:"subject"`
	Message string `json:"message"`
}

func (h *handler) handleOpenTicket(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleOpenTicket"

	var req ticketRequest
	if err := decodeJSON(r, &req); err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, fmt.Sprintf("failed to decode request: %v", err), op)
		return
	}

	f := form.New(form.SupportTicket, form.OnSubmit)
	_ = f.SetAll(map[string]string{form.FieldSubject: req.Subject, form.FieldMessage: req.Message})
	if !f.Validate() {
		h.writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: "invalid ticket", Errors: f.Errors()})
		return
	}

	sess := currentSession(r)
	ticket := h.svc.Console.OpenTicket(sess.Email, f.Value(form.FieldSubject), f.Value(form.FieldMessage))
	h.writeJSON(w, http.StatusCreated, ticket)
}
