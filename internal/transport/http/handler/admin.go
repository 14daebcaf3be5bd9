package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/thlight-panel/internal/application/admin"
	"github.com/thlight-panel/internal/domain"
)

// AdminHandler serves the owner-only moderation endpoints.
type AdminHandler struct {
	svc admin.Service
}

func NewAdminHandler(svc admin.Service) *AdminHandler { return &AdminHandler{svc: svc} }

func (h *AdminHandler) Overview(w http.ResponseWriter, r *http.Request) {
	ov, err := h.svc.Overview(r.Context())
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ov)
}

func (h *AdminHandler) Actions(w http.ResponseWriter, r *http.Request) {
	actions, err := h.svc.Actions(r.Context())
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, DataEnvelope{Data: actions})
}

func (h *AdminHandler) DeleteServer(w http.ResponseWriter, r *http.Request) {
	h.serverAction(w, r, h.svc.DeleteServer)
}

func (h *AdminHandler) BanServer(w http.ResponseWriter, r *http.Request) {
	h.serverAction(w, r, h.svc.BanServer)
}

func (h *AdminHandler) UnbanServer(w http.ResponseWriter, r *http.Request) {
	h.serverAction(w, r, h.svc.UnbanServer)
}

func (h *AdminHandler) Revoke(w http.ResponseWriter, r *http.Request) {
	h.serverAction(w, r, h.svc.Revoke)
}

func (h *AdminHandler) BanEmail(w http.ResponseWriter, r *http.Request) {
	h.emailAction(w, r, h.svc.BanEmail)
}

func (h *AdminHandler) UnbanEmail(w http.ResponseWriter, r *http.Request) {
	h.emailAction(w, r, h.svc.UnbanEmail)
}

func (h *AdminHandler) Grant(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerOrUnauthorized(w, r)
	if !ok {
		return
	}
	var req domain.GrantRequest
	if !decodeBody(w, r, &req) {
		return
	}
	res, err := h.svc.Grant(r.Context(), caller, req)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

type adminOp func(ctx context.Context, caller domain.Caller, target string) (*domain.AdminResult, error)

func (h *AdminHandler) serverAction(w http.ResponseWriter, r *http.Request, op adminOp) {
	caller, ok := callerOrUnauthorized(w, r)
	if !ok {
		return
	}
	res, err := op(r.Context(), caller, chi.URLParam(r, "id"))
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *AdminHandler) emailAction(w http.ResponseWriter, r *http.Request, op adminOp) {
	caller, ok := callerOrUnauthorized(w, r)
	if !ok {
		return
	}
	var req domain.BanEmailRequest
	if !decodeBody(w, r, &req) {
		return
	}
	res, err := op(r.Context(), caller, req.Email)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
