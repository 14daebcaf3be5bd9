package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/thlight-panel/internal/application/gameserver"
	"github.com/thlight-panel/internal/domain"
	"github.com/thlight-panel/internal/transport/http/middleware"
)

// ServerHandler handles game server, settings and player endpoints.
type ServerHandler struct {
	svc gameserver.Service
}

func NewServerHandler(svc gameserver.Service) *ServerHandler { return &ServerHandler{svc: svc} }

type catalogEnvelope struct {
	Plans    []domain.Plan `json:"plans"`
	Versions []string      `json:"versions"`
}

func (h *ServerHandler) Plans(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, catalogEnvelope{Plans: h.svc.Plans(), Versions: h.svc.Versions()})
}

func (h *ServerHandler) Create(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerOrUnauthorized(w, r)
	if !ok {
		return
	}
	var req domain.CreateServerRequest
	if !decodeBody(w, r, &req) {
		return
	}
	v, err := h.svc.Create(r.Context(), caller, req)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, v)
}

func (h *ServerHandler) List(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerOrUnauthorized(w, r)
	if !ok {
		return
	}
	list, err := h.svc.List(r.Context(), caller)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, DataEnvelope{Data: list})
}

func (h *ServerHandler) Get(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerOrUnauthorized(w, r)
	if !ok {
		return
	}
	v, err := h.svc.Get(r.Context(), caller, chi.URLParam(r, "id"))
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (h *ServerHandler) Power(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerOrUnauthorized(w, r)
	if !ok {
		return
	}
	action := domain.ServerAction(chi.URLParam(r, "action"))
	v, err := h.svc.Power(r.Context(), caller, chi.URLParam(r, "id"), action)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, v)
}

func (h *ServerHandler) UpdateConfig(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerOrUnauthorized(w, r)
	if !ok {
		return
	}
	var cfg domain.ServerConfig
	if !decodeBody(w, r, &cfg) {
		return
	}
	v, err := h.svc.UpdateConfig(r.Context(), caller, chi.URLParam(r, "id"), cfg)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (h *ServerHandler) UpdateSpecs(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerOrUnauthorized(w, r)
	if !ok {
		return
	}
	var specs domain.Specs
	if !decodeBody(w, r, &specs) {
		return
	}
	v, err := h.svc.UpdateSpecs(r.Context(), caller, chi.URLParam(r, "id"), specs)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (h *ServerHandler) ChangeVersion(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerOrUnauthorized(w, r)
	if !ok {
		return
	}
	var req domain.VersionRequest
	if !decodeBody(w, r, &req) {
		return
	}
	v, err := h.svc.ChangeVersion(r.Context(), caller, chi.URLParam(r, "id"), req)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (h *ServerHandler) ListPlayers(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerOrUnauthorized(w, r)
	if !ok {
		return
	}
	players, err := h.svc.ListPlayers(r.Context(), caller, chi.URLParam(r, "id"))
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, DataEnvelope{Data: players})
}

func (h *ServerHandler) AddPlayer(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerOrUnauthorized(w, r)
	if !ok {
		return
	}
	var req domain.AddPlayerRequest
	if !decodeBody(w, r, &req) {
		return
	}
	res, err := h.svc.AddPlayer(r.Context(), caller, chi.URLParam(r, "id"), req)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

func (h *ServerHandler) ActOnPlayer(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerOrUnauthorized(w, r)
	if !ok {
		return
	}
	action := domain.PlayerAction(chi.URLParam(r, "action"))
	res, err := h.svc.ActOnPlayer(r.Context(), caller, chi.URLParam(r, "id"), chi.URLParam(r, "playerID"), action)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func callerOrUnauthorized(w http.ResponseWriter, r *http.Request) (domain.Caller, bool) {
	caller, ok := middleware.CallerFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
	}
	return caller, ok
}
