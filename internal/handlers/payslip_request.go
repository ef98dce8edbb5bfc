package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/staffdesk/apiserver/internal/services"
	"github.com/staffdesk/apiserver/types"
)

// PayslipRequestHandler provides HTTP handlers for payslip petitions.
type PayslipRequestHandler struct {
	intakeService *services.IntakeService
}

func NewPayslipRequestHandler(intakeService *services.IntakeService) *PayslipRequestHandler {
	return &PayslipRequestHandler{intakeService: intakeService}
}

// PayslipRequestRouter registers payslip-petition routes. All routes
// require a valid session.
func PayslipRequestRouter(r chi.Router, intakeService *services.IntakeService, authMiddleware func(http.Handler) http.Handler) {
	handler := NewPayslipRequestHandler(intakeService)

	r.Group(func(r chi.Router) {
		r.Use(authMiddleware)
		r.Put("/", handler.CreateOrUpdate)
		r.Get("/", handler.List)
	})
}

type PayslipRequestPayload struct {
	ID        int    `json:"id"`
	UserID    int    `json:"userId"`
	Message   string `json:"message"`
	Completed bool   `json:"completed"`
}

// CreateOrUpdate records a payslip petition; a payload carrying an id
// updates the existing petition instead.
func (h *PayslipRequestHandler) CreateOrUpdate(w http.ResponseWriter, r *http.Request) {
	var req PayslipRequestPayload
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}
	if req.ID == 0 && req.UserID < 1 {
		writeError(w, http.StatusBadRequest, "missing user id")
		return
	}

	request, err := h.intakeService.CreateOrUpdatePayslipRequest(r.Context(), types.PayslipRequest{
		ID:        req.ID,
		UserID:    req.UserID,
		Message:   strings.TrimSpace(req.Message),
		Completed: req.Completed,
	})
	if err != nil {
		writeServiceError(w, err, "failed to save payslip request")
		return
	}
	writeData(w, http.StatusOK, "payslip request saved", request)
}

func (h *PayslipRequestHandler) List(w http.ResponseWriter, r *http.Request) {
	requests, err := h.intakeService.ListPayslipRequests(r.Context())
	if err != nil {
		writeServiceError(w, err, "failed to list payslip requests")
		return
	}
	writeData(w, http.StatusOK, "payslip requests found", requests)
}
