package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/staffdesk/apiserver/internal/services"
	"github.com/staffdesk/apiserver/types"
)

// RequestHandler provides HTTP handlers for account-request intake.
type RequestHandler struct {
	intakeService *services.IntakeService
}

func NewRequestHandler(intakeService *services.IntakeService) *RequestHandler {
	return &RequestHandler{intakeService: intakeService}
}

// RequestRouter registers account-request routes on the given router.
// Submission is open; listing and triage require a valid session.
func RequestRouter(r chi.Router, intakeService *services.IntakeService, authMiddleware func(http.Handler) http.Handler) {
	handler := NewRequestHandler(intakeService)

	r.Post("/", handler.CreateRequest)
	r.Group(func(r chi.Router) {
		r.Use(authMiddleware)
		r.Get("/", handler.ListRequests)
		r.Put("/{requestID}", handler.UpdateRequest)
	})
}

type CreateAccountRequest struct {
	Email string `json:"email"`
	Rut   string `json:"rut"`
}

type UpdateAccountRequest struct {
	Ignored   bool `json:"ignored"`
	Completed bool `json:"completed"`
}

// CreateRequest records a request for an account to be created.
func (h *RequestHandler) CreateRequest(w http.ResponseWriter, r *http.Request) {
	var req CreateAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	req.Email = strings.TrimSpace(req.Email)
	req.Rut = strings.TrimSpace(req.Rut)
	if req.Email == "" || req.Rut == "" {
		writeError(w, http.StatusBadRequest, "missing email or rut")
		return
	}

	request, err := h.intakeService.Create(r.Context(), types.AccountRequest{
		Email: req.Email,
		Rut:   req.Rut,
	})
	if err != nil {
		writeServiceError(w, err, "failed to create request")
		return
	}
	writeData(w, http.StatusCreated, "request created", request)
}

func (h *RequestHandler) ListRequests(w http.ResponseWriter, r *http.Request) {
	requests, err := h.intakeService.List(r.Context())
	if err != nil {
		writeServiceError(w, err, "failed to list requests")
		return
	}
	writeData(w, http.StatusOK, "requests found", requests)
}

// UpdateRequest flags a request as ignored or completed.
func (h *RequestHandler) UpdateRequest(w http.ResponseWriter, r *http.Request) {
	id, err := intParam(r, "requestID")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req UpdateAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	request, err := h.intakeService.Update(r.Context(), id, types.AccountRequest{
		Ignored:   req.Ignored,
		Completed: req.Completed,
	})
	if err != nil {
		writeServiceError(w, err, "failed to update request")
		return
	}
	writeData(w, http.StatusOK, "request updated", request)
}
