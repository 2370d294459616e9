package server

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/iwvelando/company-valuation/internal/flow"
	"github.com/iwvelando/company-valuation/internal/upload"
	"go.uber.org/zap"
)

type startFlowRequest struct {
	Kind  flow.Kind `json:"kind"`
	Email string    `json:"email,omitempty"`
}

func (h *handler) handleStartFlow(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleStartFlow"

	var req startFlowRequest
	if err := decodeJSON(r, &req); err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, fmt.Sprintf("failed to decode request: %v", err), op)
		return
	}

	owner := ""
	switch req.Kind {
	case flow.KindReport:
		sess := currentSession(r)
		if sess == nil {
			h.respondErrorWithOp(w, http.StatusUnauthorized, "authentication required", op)
			return
		}
		owner = sess.Email
	case flow.KindVerification:
		// Resumes an abandoned signup.
		account, err := h.svc.Accounts.Lookup(r.Context(), req.Email)
		if err != nil {
			h.respondErr(w, err, nil, op)
			return
		}
		if account.Verified {
			h.respondErrorWithOp(w, http.StatusConflict, "account already verified", op)
			return
		}
		owner = account.Email
	}

	f, err := h.svc.Flows.Start(req.Kind, owner)
	if err != nil {
		h.respondErr(w, err, nil, op)
		return
	}
	h.writeJSON(w, http.StatusCreated, f.Render())
}

// flowFor resolves the {id} flow. Report flows are visible to their owner only.
func (h *handler) flowFor(w http.ResponseWriter, r *http.Request, op string) (*flow.Flow, bool) {
	f, err := h.svc.Flows.Get(chi.URLParam(r, "id"))
	if err == nil && f.Kind() == flow.KindReport {
		if sess := currentSession(r); sess == nil || sess.Email != f.Owner() {
			err = flow.ErrFlowNotFound
		}
	}
	if err != nil {
		h.respondErr(w, err, nil, op)
		return nil, false
	}
	return f, true
}

func (h *handler) handleGetFlow(w http.ResponseWriter, r *http.Request) {
	f, ok := h.flowFor(w, r, "server.handleGetFlow")
	if !ok {
		return
	}
	h.writeJSON(w, http.StatusOK, f.Render())
}

func (h *handler) handleDeleteFlow(w http.ResponseWriter, r *http.Request) {
	f, ok := h.flowFor(w, r, "server.handleDeleteFlow")
	if !ok {
		return
	}
	if err := h.svc.Flows.Remove(f.ID()); err != nil {
		h.respondErr(w, err, nil, "server.handleDeleteFlow")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type setFieldsRequest struct {
	Fields map[string]string `json:"fields"`
}

func (h *handler) handleSetFields(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleSetFields"

	f, ok := h.flowFor(w, r, op)
	if !ok {
		return
	}
	var req setFieldsRequest
	if err := decodeJSON(r, &req); err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, fmt.Sprintf("failed to decode fields: %v", err), op)
		return
	}
	if _, err := f.SetFields(req.Fields); err != nil {
		h.respondErr(w, err, nil, op)
		return
	}
	h.writeJSON(w, http.StatusOK, f.Render())
}

type advanceResponse struct {
	flow.Outcome
	View  *flow.View     `json:"view,omitempty"`
	Login *loginResponse `json:"login,omitempty"`
}

func (h *handler) handleAdvance(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleAdvance"

	f, ok := h.flowFor(w, r, op)
	if !ok {
		return
	}
	out, err := h.svc.Flows.Advance(r.Context(), f.ID())
	if err != nil {
		h.respondErr(w, err, out.Errors, op)
		return
	}

	resp := advanceResponse{Outcome: out}
	if !out.Finished {
		view := f.Render()
		resp.View = &view
		h.writeJSON(w, http.StatusOK, resp)
		return
	}

	if out.Handoff != nil && out.Handoff.Flow != nil {
		view := out.Handoff.Flow.Render()
		resp.View = &view
	}
	if err := h.completed(r, f, out, &resp); err != nil {
		h.respondErr(w, err, nil, op)
		return
	}
	h.writeJSON(w, http.StatusOK, resp)
}

// completed applies the side effects of a finished flow: registering the new
// company, signing in a freshly verified account, counting a report.
func (h *handler) completed(r *http.Request, f *flow.Flow, out flow.Outcome, resp *advanceResponse) error {
	switch f.Kind() {
	case flow.KindSignup:
		account, ok := f.Account()
		if !ok {
			return nil
		}
		if h.svc.Console != nil && account.CompanyName != "" {
			h.svc.Console.AddCompany(account.CompanyName, account.Industry, account.Email)
		}
		h.record(account.Email, "signup", account.PlanID)
	case flow.KindVerification:
		account, err := h.svc.Accounts.Lookup(r.Context(), f.Owner())
		if err != nil {
			return err
		}
		sess, err := h.svc.Sessions.Init(account)
		if err != nil {
			return err
		}
		h.record(account.Email, "email.verified", "")
		resp.Login = &loginResponse{Token: sess.Token, Session: sess}
	case flow.KindReport:
		report, err := h.svc.Flows.Reports().Get(f.Owner(), out.Handoff.ReportID)
		if err != nil {
			return err
		}
		if h.svc.Console != nil {
			h.svc.Console.CountReport(report.CompanyName)
		}
		h.record(f.Owner(), "report.generated", report.CompanyName)
	}
	return nil
}

func (h *handler) handleGoToStep(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleGoToStep"

	f, ok := h.flowFor(w, r, op)
	if !ok {
		return
	}
	step, err := strconv.Atoi(chi.URLParam(r, "step"))
	if err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, "invalid step", op)
		return
	}
	if err := f.GoToStep(step); err != nil {
		h.respondErr(w, err, nil, op)
		return
	}
	h.writeJSON(w, http.StatusOK, f.Render())
}

type uploadResponse struct {
	Accepted  []upload.Document  `json:"accepted"`
	Rejected  []upload.Rejection `json:"rejected"`
	Documents []upload.Document  `json:"documents,omitempty"`
}

// handleUploadDocuments accepts one or more "file" parts. With ?wait=true the
// response is written after the uploads settle.
func (h *handler) handleUploadDocuments(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleUploadDocuments"

	f, ok := h.flowFor(w, r, op)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)
	if err := r.ParseMultipartForm(h.maxUploadSize); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			h.respondErrorWithOp(w, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("upload exceeds limit of %d bytes", h.maxUploadSize), op)
			return
		}
		h.respondErrorWithOp(w, http.StatusBadRequest, fmt.Sprintf("failed to parse upload: %v", err), op)
		return
	}
	defer func() {
		if err := r.MultipartForm.RemoveAll(); err != nil {
			h.logger.Warn("failed to remove multipart temp files", zap.String("op", op), zap.Error(err))
		}
	}()

	headers := r.MultipartForm.File["file"]
	if len(headers) == 0 {
		h.respondErrorWithOp(w, http.StatusBadRequest, "missing document file", op)
		return
	}

	files := make([]upload.File, 0, len(headers))
	for _, fh := range headers {
		file, err := fh.Open()
		if err != nil {
			h.respondErrorWithOp(w, http.StatusBadRequest, fmt.Sprintf("failed to open %s: %v", fh.Filename, err), op)
			return
		}
		data, err := io.ReadAll(file)
		if closeErr := file.Close(); closeErr != nil {
			h.logger.Warn("failed to close uploaded file",
				zap.String("op", op),
				zap.Error(closeErr),
			)
		}
		if err != nil {
			h.respondErrorWithOp(w, http.StatusInternalServerError, fmt.Sprintf("failed to read %s: %v", fh.Filename, err), op)
			return
		}
		files = append(files, upload.File{
			Name:        fh.Filename,
			ContentType: fh.Header.Get("Content-Type"),
			Data:        data,
		})
	}

	accepted, rejected, err := f.AddDocuments(files)
	if err != nil {
		h.respondErr(w, err, nil, op)
		return
	}
	resp := uploadResponse{Accepted: accepted, Rejected: rejected}
	if resp.Accepted == nil {
		resp.Accepted = []upload.Document{}
	}
	if resp.Rejected == nil {
		resp.Rejected = []upload.Rejection{}
	}

	status := http.StatusAccepted
	if r.URL.Query().Get("wait") == "true" {
		if err := f.WaitDocuments(r.Context()); err != nil {
			h.respondErr(w, err, nil, op)
			return
		}
		resp.Documents = f.Documents()
		status = http.StatusOK
	}
	h.writeJSON(w, status, resp)
}

func (h *handler) handleRemoveDocument(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleRemoveDocument"

	f, ok := h.flowFor(w, r, op)
	if !ok {
		return
	}
	removed, err := f.RemoveDocument(chi.URLParam(r, "doc"))
	if err != nil {
		h.respondErr(w, err, nil, op)
		return
	}
	if !removed {
		h.respondErrorWithOp(w, http.StatusNotFound, "document not found", op)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
