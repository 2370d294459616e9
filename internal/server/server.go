// Package server exposes the valuation product over HTTP: authentication,
// the signup, verification and report flows, the dashboard and the admin
// console.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/iwvelando/company-valuation/internal/admin"
	"github.com/iwvelando/company-valuation/internal/billing"
	"github.com/iwvelando/company-valuation/internal/flow"
	"github.com/iwvelando/company-valuation/internal/form"
	"github.com/iwvelando/company-valuation/internal/projection"
	"github.com/iwvelando/company-valuation/internal/session"
	"github.com/iwvelando/company-valuation/pkg/constants"
	"go.uber.org/zap"
)

// Services are the components the handlers delegate to.
type Services struct {
	Accounts   session.AccountService
	Sessions   *session.Store
	Flows      *flow.Manager
	Billing    *billing.Service
	Console    *admin.Console
	Calculator *projection.Calculator
}

type handler struct {
	logger        *zap.Logger
	maxUploadSize int64
	version       string
	svc           Services
}

// NewHandler constructs the HTTP handler that serves the JSON API.
func NewHandler(logger *zap.Logger, maxUploadSize int64, version string, svc Services) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}

	if maxUploadSize <= 0 {
		maxUploadSize = constants.DefaultMaxRequestSizeBytes
	}

	trimmedVersion := strings.TrimSpace(version)
	if trimmedVersion == "" {
		trimmedVersion = "dev"
	}

	h := &handler{logger: logger, maxUploadSize: maxUploadSize, version: trimmedVersion, svc: svc}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(h.requestLogger)
	r.Use(h.loadSession)

	r.Get("/", h.handleIndex)
	r.Get("/api/version", h.handleVersion)
	r.Get("/api/plans", h.handlePlans)
	r.Get("/api/routes", h.handleRoutes)

	r.Post("/api/login", h.handleLogin)
	r.Post("/api/signup", h.handleSignup)
	r.Post("/api/verification/resend", h.handleResend)

	r.Route("/api/flows", func(r chi.Router) {
		r.Post("/", h.handleStartFlow)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.handleGetFlow)
			r.Delete("/", h.handleDeleteFlow)
			r.Put("/fields", h.handleSetFields)
			r.Post("/advance", h.handleAdvance)
			r.Post("/steps/{step}", h.handleGoToStep)
			r.Post("/documents", h.handleUploadDocuments)
			r.Delete("/documents/{doc}", h.handleRemoveDocument)
		})
	})

	r.Group(func(r chi.Router) {
		r.Use(h.requireSession)

		r.Post("/api/logout", h.handleLogout)
		r.Get("/api/session", h.handleSession)
		r.Post("/api/projections", h.handleProjection)
		r.Get("/api/reports", h.handleListReports)
		r.Get("/api/reports/{id}", h.handleGetReport)
		r.Post("/api/billing/checkout", h.handleCheckout)
		r.Post("/api/support/tickets", h.handleOpenTicket)
	})

	r.Route("/api/admin", func(r chi.Router) {
		r.Use(h.requireSession)
		r.Use(h.requireRole(session.RoleAdmin))

		r.Get("/companies", h.handleAdminCompanies)
		r.Get("/subscriptions", h.handleAdminSubscriptions)
		r.Get("/tickets", h.handleAdminTickets)
		r.Patch("/tickets/{id}", h.handleAdminUpdateTicket)
		r.Get("/activity", h.handleAdminActivity)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		h.respondErrorWithOp(w, http.StatusNotFound, "not found", "server.NotFound")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		h.respondErrorWithOp(w, http.StatusMethodNotAllowed, http.StatusText(http.StatusMethodNotAllowed), "server.MethodNotAllowed")
	})

	return r
}

func (h *handler) handleIndex(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"name":    "company-valuation",
		"version": h.version,
		"api":     "/api",
	})
}

func (h *handler) handleVersion(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{
		"version": h.version,
	})
}

func (h *handler) handlePlans(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, billing.Plans)
}

func (h *handler) handleRoutes(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, ClientRoutes)
}

func (h *handler) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		h.logger.Debug("request served",
			zap.String("op", "server.requestLogger"),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("requestId", middleware.GetReqID(r.Context())),
		)
	})
}

// loadSession attaches the session named by a bearer token, if any. Routes
// that need one add requireSession.
func (h *handler) loadSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" || h.svc.Sessions == nil {
			next.ServeHTTP(w, r)
			return
		}
		sess, err := h.svc.Sessions.Lookup(token)
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}
		next.ServeHTTP(w, r.WithContext(session.WithSession(r.Context(), sess)))
	})
}

func (h *handler) requireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := session.FromContext(r.Context()); !ok {
			h.respondErrorWithOp(w, http.StatusUnauthorized, "authentication required", "server.requireSession")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (h *handler) requireRole(role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess, ok := session.FromContext(r.Context())
			if !ok || !sess.HasRole(role) {
				h.respondErrorWithOp(w, http.StatusForbidden, "insufficient permissions", "server.requireRole")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func bearerToken(r *http.Request) string {
	auth := strings.TrimSpace(r.Header.Get("Authorization"))
	token, ok := strings.CutPrefix(auth, "Bearer ")
	if !ok {
		return ""
	}
	return strings.TrimSpace(token)
}

func currentSession(r *http.Request) *session.Session {
	sess, _ := session.FromContext(r.Context())
	return sess
}

func (h *handler) record(actor, action, detail string) {
	if h.svc.Console != nil {
		h.svc.Console.Record(actor, action, detail)
	}
}

func decodeJSON(r *http.Request, v interface{}) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

func pageParam(r *http.Request) int {
	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || page < 1 {
		return 1
	}
	return page
}

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, flow.ErrFlowNotFound),
		errors.Is(err, flow.ErrReportNotFound),
		errors.Is(err, admin.ErrTicketNotFound):
		return http.StatusNotFound
	case errors.Is(err, flow.ErrStepIncomplete),
		errors.Is(err, billing.ErrInvalidBilling),
		errors.Is(err, session.ErrInvalidCode):
		return http.StatusUnprocessableEntity
	case errors.Is(err, flow.ErrStepLocked),
		errors.Is(err, flow.ErrFinished),
		errors.Is(err, flow.ErrNotAvailable),
		errors.Is(err, flow.ErrNoDocuments),
		errors.Is(err, session.ErrEmailTaken):
		return http.StatusConflict
	case errors.Is(err, session.ErrTooManyAttempts):
		return http.StatusTooManyRequests
	case errors.Is(err, session.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, session.ErrNotVerified):
		return http.StatusForbidden
	case errors.Is(err, billing.ErrUnknownPlan),
		errors.Is(err, billing.ErrQuoteOnly),
		errors.Is(err, form.ErrUnknownField),
		errors.Is(err, flow.ErrUnknownKind),
		errors.Is(err, flow.ErrOwnerRequired),
		errors.Is(err, admin.ErrInvalidStatus),
		errors.Is(err, projection.ErrInvalidBaseRevenue),
		errors.Is(err, session.ErrUnknownAccount):
		return http.StatusBadRequest
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	}
	return http.StatusInternalServerError
}

type errorResponse struct {
	Error  string            `json:"error"`
	Errors map[string]string `json:"errors,omitempty"`
}

func (h *handler) respondErr(w http.ResponseWriter, err error, fields map[string]string, op string) {
	status := statusFor(err)
	h.logger.Warn("request failed",
		zap.String("op", op),
		zap.Int("status", status),
		zap.Error(err),
	)
	h.writeJSON(w, status, errorResponse{Error: err.Error(), Errors: fields})
}

func (h *handler) respondErrorWithOp(w http.ResponseWriter, status int, msg string, op string) {
	h.logger.Error("request failed",
		zap.String("op", op),
		zap.Int("status", status),
		zap.String("error", msg),
	)

	h.writeJSON(w, status, errorResponse{Error: msg})
}

func (h *handler) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("failed to write JSON response", zap.Error(err))
	}
}
