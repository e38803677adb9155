// Package server exposes the district tables as JSON over HTTP.
package server

import (
	"bvvassist-backend/internal/agenda"
	"bvvassist-backend/internal/app"
	"bvvassist-backend/internal/components/assert"
	"bvvassist-backend/internal/components/telemetry"
	"bvvassist-backend/internal/council"
	"bvvassist-backend/internal/district"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

const (
	report_server_load  = "server.load"
	report_server_write = "server.write"
)

// Handler serves the district tables of an App.
type Handler struct {
	app *app.App
	tel telemetry.API
}

func New(tel telemetry.API, a *app.App) *Handler {
	assert.NotNil(tel)
	assert.NotNil(a)

	return &Handler{
		app: a,
		tel: telemetry.NewScopedAPI("server", tel),
	}
}

// Router mounts every endpoint, metrics is served under /metrics.
func (h *Handler) Router(metrics http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(5 * time.Minute))

	r.Get("/districts", h.HandleDistricts)
	r.Route("/districts/{district}", func(r chi.Router) {
		r.Get("/organizations", h.HandleOrganizations)
		r.Get("/members", h.HandleMembers)
		r.Get("/counts", h.HandleCounts)
		r.Get("/plenary", h.HandlePlenary)
		r.Get("/gender", h.HandleGender)
		r.Get("/agenda", h.HandleAgenda)
		r.Get("/search", h.HandleSearch)
		r.Get("/words", h.HandleWords)
	})
	r.Post("/cache/purge", h.HandlePurge)
	if metrics != nil {
		r.Handle("/metrics", metrics)
	}
	return r
}

type errorResponse struct {
	Error string `json:"error"`
}

// unavailable is returned with status 200 when a district publishes no usable agenda data.
type unavailable struct {
	Available bool   `json:"available"`
	Message   string `json:"message"`
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, value any) {
	w.Header().Set("content-type", "application/json")
	w.WriteHeader(status)
	err := json.NewEncoder(w).Encode(value)
	if err != nil {
		h.tel.ReportWarning(report_server_write, err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, err error) {
	h.writeJSON(w, status, errorResponse{Error: err.Error()})
}

// load resolves and loads the district of the request, writing the error response itself
// when that fails.
func (h *Handler) load(w http.ResponseWriter, r *http.Request) (district.Snapshot, bool) {
	snapshot, err := h.app.Load(r.Context(), chi.URLParam(r, "district"))
	if errors.Is(err, district.ErrUnknownDistrict) {
		h.writeError(w, http.StatusNotFound, err)
		return snapshot, false
	}
	if err != nil {
		h.tel.ReportBroken(report_server_load, err, r.URL.Path)
		h.writeError(w, http.StatusBadGateway, err)
		return snapshot, false
	}
	return snapshot, true
}

func (h *Handler) loadMembers(w http.ResponseWriter, r *http.Request) (district.Snapshot, bool) {
	snapshot, ok := h.load(w, r)
	if !ok {
		return snapshot, false
	}
	if snapshot.MembersErr != nil {
		h.writeError(w, http.StatusBadGateway, snapshot.MembersErr)
		return snapshot, false
	}
	return snapshot, true
}

func (h *Handler) loadAgenda(w http.ResponseWriter, r *http.Request) (district.Snapshot, bool) {
	snapshot, ok := h.load(w, r)
	if !ok {
		return snapshot, false
	}
	if snapshot.AgendaErr != nil {
		h.writeJSON(w, http.StatusOK, unavailable{Message: district.ErrNoAgendaData.Error()})
		return snapshot, false
	}
	return snapshot, true
}

// HandleDistricts handles GET /districts.
func (h *Handler) HandleDistricts(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, district.All)
}

// HandleOrganizations handles GET /districts/{district}/organizations.
func (h *Handler) HandleOrganizations(w http.ResponseWriter, r *http.Request) {
	snapshot, ok := h.loadMembers(w, r)
	if !ok {
		return
	}
	h.writeJSON(w, http.StatusOK, nonNil(snapshot.Organizations))
}

// HandleMembers handles GET /districts/{district}/members, ?all=true includes ended
// memberships.
func (h *Handler) HandleMembers(w http.ResponseWriter, r *http.Request) {
	snapshot, ok := h.loadMembers(w, r)
	if !ok {
		return
	}
	all, _ := strconv.ParseBool(r.URL.Query().Get("all"))
	if all {
		h.writeJSON(w, http.StatusOK, nonNil(snapshot.Members))
		return
	}
	h.writeJSON(w, http.StatusOK, nonNil(snapshot.Current()))
}

// HandleCounts handles GET /districts/{district}/counts.
func (h *Handler) HandleCounts(w http.ResponseWriter, r *http.Request) {
	snapshot, ok := h.loadMembers(w, r)
	if !ok {
		return
	}
	h.writeJSON(w, http.StatusOK, council.CountCurrentMembers(snapshot.Current()))
}

// HandlePlenary handles GET /districts/{district}/plenary.
func (h *Handler) HandlePlenary(w http.ResponseWriter, r *http.Request) {
	snapshot, ok := h.loadMembers(w, r)
	if !ok {
		return
	}
	h.writeJSON(w, http.StatusOK, nonNil(council.PlenaryMemberNames(snapshot.Current(), h.app.Classifier)))
}

type genderResponse struct {
	History []council.GenderYear `json:"history"`
	Roles   council.RoleAverages `json:"roles"`
}

// HandleGender handles GET /districts/{district}/gender.
func (h *Handler) HandleGender(w http.ResponseWriter, r *http.Request) {
	snapshot, ok := h.loadMembers(w, r)
	if !ok {
		return
	}
	history, err := h.app.GenderHistory(snapshot)
	if err != nil {
		h.writeError(w, http.StatusUnprocessableEntity, err)
		return
	}
	roles, err := council.AverageRolesByGender(snapshot.Current())
	if err != nil {
		h.writeError(w, http.StatusUnprocessableEntity, err)
		return
	}
	h.writeJSON(w, http.StatusOK, genderResponse{History: history, Roles: roles})
}

// HandleAgenda handles GET /districts/{district}/agenda.
func (h *Handler) HandleAgenda(w http.ResponseWriter, r *http.Request) {
	snapshot, ok := h.loadAgenda(w, r)
	if !ok {
		return
	}
	h.writeJSON(w, http.StatusOK, nonNil(agenda.Flatten(snapshot.Meetings)))
}

// HandleSearch handles GET /districts/{district}/search?q=<term>.
func (h *Handler) HandleSearch(w http.ResponseWriter, r *http.Request) {
	term := r.URL.Query().Get("q")
	if term == "" {
		h.writeJSON(w, http.StatusOK, []agenda.Match{})
		return
	}
	snapshot, ok := h.loadAgenda(w, r)
	if !ok {
		return
	}
	matches := h.app.Searcher.Search(r.Context(), snapshot.Meetings, term)
	h.writeJSON(w, http.StatusOK, nonNil(matches))
}

// HandleWords handles GET /districts/{district}/words?limit=<n>.
func (h *Handler) HandleWords(w http.ResponseWriter, r *http.Request) {
	limit := 100
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			h.writeError(w, http.StatusBadRequest, err)
			return
		}
		limit = parsed
	}
	snapshot, ok := h.loadAgenda(w, r)
	if !ok {
		return
	}
	h.writeJSON(w, http.StatusOK, agenda.TopWords(agenda.ItemNames(snapshot.Meetings), limit))
}

// HandlePurge handles POST /cache/purge.
func (h *Handler) HandlePurge(w http.ResponseWriter, r *http.Request) {
	h.app.Purge()
	w.WriteHeader(http.StatusNoContent)
}

func nonNil[T any](list []T) []T {
	if list == nil {
		return []T{}
	}
	return list
}
