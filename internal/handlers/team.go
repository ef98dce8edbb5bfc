package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/staffdesk/apiserver/internal/services"
	"github.com/staffdesk/apiserver/types"
)

// TeamHandler provides HTTP handlers for teams and guard assignment.
type TeamHandler struct {
	rosterService *services.RosterService
}

func NewTeamHandler(rosterService *services.RosterService) *TeamHandler {
	return &TeamHandler{rosterService: rosterService}
}

// TeamRouter registers team routes on the given router. All routes
// require a valid session.
func TeamRouter(r chi.Router, rosterService *services.RosterService, authMiddleware func(http.Handler) http.Handler) {
	handler := NewTeamHandler(rosterService)

	r.Group(func(r chi.Router) {
		r.Use(authMiddleware)
		r.Get("/", handler.ListTeams)
		r.Post("/", handler.CreateTeam)
		r.Get("/supervisor/{supervisorID}", handler.TeamBySupervisor)
		r.Get("/guards/unassigned", handler.UnassignedGuards)
		r.Put("/assign/{guardID}/{teamID}", handler.AssignGuard)
		r.Put("/remove/{guardID}", handler.RemoveGuard)
	})
}

type CreateTeamRequest struct {
	Name         string `json:"name"`
	SupervisorID int    `json:"supervisorId"`
}

func (h *TeamHandler) ListTeams(w http.ResponseWriter, r *http.Request) {
	teams, err := h.rosterService.ListTeams(r.Context())
	if err != nil {
		writeServiceError(w, err, "failed to list teams")
		return
	}
	writeData(w, http.StatusOK, "teams found", teams)
}

func (h *TeamHandler) CreateTeam(w http.ResponseWriter, r *http.Request) {
	var req CreateTeamRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" || req.SupervisorID < 1 {
		writeError(w, http.StatusBadRequest, "missing team name or supervisor")
		return
	}

	team, err := h.rosterService.CreateTeam(r.Context(), types.Team{
		Name:         req.Name,
		SupervisorID: req.SupervisorID,
	})
	if err != nil {
		writeServiceError(w, err, "failed to create team")
		return
	}
	writeData(w, http.StatusCreated, "team created", team)
}

// TeamBySupervisor returns a supervisor's team with its guards.
func (h *TeamHandler) TeamBySupervisor(w http.ResponseWriter, r *http.Request) {
	supervisorID, err := intParam(r, "supervisorID")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	team, err := h.rosterService.TeamBySupervisor(r.Context(), supervisorID)
	if err != nil {
		writeServiceError(w, err, "failed to fetch team")
		return
	}
	writeData(w, http.StatusOK, "team found", team)
}

func (h *TeamHandler) UnassignedGuards(w http.ResponseWriter, r *http.Request) {
	guards, err := h.rosterService.UnassignedGuards(r.Context())
	if err != nil {
		writeServiceError(w, err, "failed to list guards")
		return
	}
	writeData(w, http.StatusOK, "guards found", guards)
}

// AssignGuard adds a guard to a team. A guard already on a team is
// rejected with a conflict.
func (h *TeamHandler) AssignGuard(w http.ResponseWriter, r *http.Request) {
	guardID, err := intParam(r, "guardID")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	teamID, err := intParam(r, "teamID")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	team, err := h.rosterService.AssignGuard(r.Context(), guardID, teamID)
	if err != nil {
		writeServiceError(w, err, "failed to assign guard")
		return
	}
	writeData(w, http.StatusOK, "guard assigned", team)
}

// RemoveGuard takes a guard off whichever team they are on.
func (h *TeamHandler) RemoveGuard(w http.ResponseWriter, r *http.Request) {
	guardID, err := intParam(r, "guardID")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	guard, err := h.rosterService.RemoveGuard(r.Context(), guardID)
	if err != nil {
		writeServiceError(w, err, "failed to remove guard")
		return
	}
	writeData(w, http.StatusOK, "guard removed", guard)
}
