package server

import (
	"fmt"
	"net/http"

	"github.com/iwvelando/company-valuation/internal/flow"
	"github.com/iwvelando/company-valuation/internal/form"
	"github.com/iwvelando/company-valuation/internal/session"
)

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token   string           `json:"token"`
	Session *session.Session `json:"session"`
}

func (h *handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleLogin"

	var req credentials
	if err := decodeJSON(r, &req); err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, fmt.Sprintf("failed to decode credentials: %v", err), op)
		return
	}

	f := form.New(form.Login, form.OnSubmit)
	_ = f.SetAll(map[string]string{form.FieldEmail: req.Email, form.FieldPassword: req.Password})
	if !f.Validate() {
		h.writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: "invalid credentials", Errors: f.Errors()})
		return
	}

	account, err := h.svc.Accounts.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		h.respondErr(w, err, nil, op)
		return
	}
	h.startSession(w, account, http.StatusOK, op)
}

func (h *handler) startSession(w http.ResponseWriter, account session.Account, status int, op string) {
	sess, err := h.svc.Sessions.Init(account)
	if err != nil {
		h.respondErrorWithOp(w, http.StatusInternalServerError, fmt.Sprintf("failed to start session: %v", err), op)
		return
	}
	h.record(account.Email, "login", "")
	h.writeJSON(w, status, loginResponse{Token: sess.Token, Session: sess})
}

func (h *handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	sess := currentSession(r)
	h.svc.Sessions.Clear(sess.Token)
	h.record(sess.Email, "logout", "")
	w.WriteHeader(http.StatusNoContent)
}

func (h *handler) handleSession(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, currentSession(r))
}

func (h *handler) handleSignup(w http.ResponseWriter, r *http.Request) {
	f, err := h.svc.Flows.Start(flow.KindSignup, "")
	if err != nil {
		h.respondErr(w, err, nil, "server.handleSignup")
		return
	}
	h.writeJSON(w, http.StatusCreated, f.Render())
}

func (h *handler) handleResend(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleResend"

	var req struct {
		FlowID string `json:"flowId"`
	}
	if err := decodeJSON(r, &req); err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, fmt.Sprintf("failed to decode request: %v", err), op)
		return
	}
	f, err := h.svc.Flows.Get(req.FlowID)
	if err != nil {
		h.respondErr(w, err, nil, op)
		return
	}
	if err := f.ResendCode(r.Context()); err != nil {
		h.respondErr(w, err, nil, op)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}
