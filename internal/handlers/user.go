package handlers

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/staffdesk/apiserver/internal/services"
	"github.com/staffdesk/apiserver/types"
)

// UserHandler provides HTTP handlers for staff accounts and their
// documents.
type UserHandler struct {
	userService *services.UserService
	authService *services.AuthService
}

func NewUserHandler(userService *services.UserService, authService *services.AuthService) *UserHandler {
	return &UserHandler{userService: userService, authService: authService}
}

// UserRouter registers user routes on the given router. Registration is
// open; everything else requires a valid session.
func UserRouter(
	r chi.Router,
	userService *services.UserService,
	authService *services.AuthService,
	authMiddleware func(http.Handler) http.Handler,
) {
	handler := NewUserHandler(userService, authService)

	r.Post("/", handler.CreateUser)
	r.Group(func(r chi.Router) {
		r.Use(authMiddleware)
		r.Get("/", handler.ListUsers)
		r.Get("/next-birthdays", handler.NextBirthdays)
		r.Route("/{userID}", func(r chi.Router) {
			r.Get("/", handler.GetUser)
			r.Put("/", handler.UpdateUser)
			r.Put("/change-password", handler.ChangePassword)
			r.Get("/is-admin", handler.IsAdmin)
			r.Put("/contract", handler.AttachContract)
			r.Get("/contract", handler.DownloadContract)
			r.Get("/contract/base64", handler.ContractBase64)
			r.Put("/picture", handler.AttachPicture)
			r.Get("/picture/base64", handler.PictureBase64)
			r.Put("/payslips", handler.AddPayslip)
			r.Put("/payslips/multiple", handler.AddPayslips)
			r.Get("/payslips", handler.ListPayslips)
			r.Get("/has-payslips", handler.HasPayslips)
			r.Get("/payslips/{payslipID}", handler.DownloadPayslip)
			r.Get("/payslips/{payslipID}/base64", handler.PayslipBase64)
		})
	})
}

type CreateUserRequest struct {
	FullName  string `json:"fullName"`
	Email     string `json:"email"`
	Rut       string `json:"rut"`
	Role      string `json:"role"`
	IsAdmin   bool   `json:"isAdmin"`
	BirthDate string `json:"birthDate"`
	Password  string `json:"password"`
}

// UpdateUserRequest is a partial profile change. IsAdmin is a pointer so
// a payload that omits the flag leaves it untouched.
type UpdateUserRequest struct {
	FullName  string `json:"fullName"`
	Email     string `json:"email"`
	Rut       string `json:"rut"`
	Role      string `json:"role"`
	IsAdmin   *bool  `json:"isAdmin"`
	BirthDate string `json:"birthDate"`
}

type ChangePasswordRequest struct {
	OldPassword string `json:"oldPassword"`
	NewPassword string `json:"newPassword"`
}

// CreateUser registers a staff account. The password is hashed before it
// is stored and never echoed back.
func (h *UserHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	req.FullName = strings.TrimSpace(req.FullName)
	req.Email = strings.TrimSpace(req.Email)
	req.Rut = strings.TrimSpace(req.Rut)
	if req.FullName == "" || req.Email == "" || req.Rut == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "missing required fields")
		return
	}

	birthDate, err := parseBirthDate(req.BirthDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid birth date, expected YYYY-MM-DD")
		return
	}

	user, err := h.userService.Create(r.Context(), types.User{
		FullName:  req.FullName,
		Email:     req.Email,
		Rut:       req.Rut,
		Role:      types.Role(req.Role),
		IsAdmin:   req.IsAdmin,
		BirthDate: birthDate,
	}, req.Password)
	if err != nil {
		writeServiceError(w, err, "failed to create user")
		return
	}

	writeData(w, http.StatusCreated, "user created", user)
}

func (h *UserHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.userService.List(r.Context())
	if err != nil {
		writeServiceError(w, err, "failed to list users")
		return
	}
	writeData(w, http.StatusOK, "users found", users)
}

func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	id, err := intParam(r, "userID")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	user, err := h.userService.GetByID(r.Context(), id)
	if err != nil {
		writeServiceError(w, err, "failed to fetch user")
		return
	}
	writeData(w, http.StatusOK, "user found", user)
}

func (h *UserHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	id, err := intParam(r, "userID")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req UpdateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	changes := services.ProfileUpdate{
		FullName: strings.TrimSpace(req.FullName),
		Email:    strings.TrimSpace(req.Email),
		Rut:      strings.TrimSpace(req.Rut),
		Role:     types.Role(req.Role),
		IsAdmin:  req.IsAdmin,
	}
	if strings.TrimSpace(req.BirthDate) != "" {
		birthDate, err := parseBirthDate(req.BirthDate)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid birth date, expected YYYY-MM-DD")
			return
		}
		changes.BirthDate = birthDate
	}

	user, err := h.userService.Update(r.Context(), id, changes)
	if err != nil {
		writeServiceError(w, err, "failed to update user")
		return
	}
	writeData(w, http.StatusOK, "user updated", user)
}

// ChangePassword swaps the account credential after verifying the old
// password. Only the account owner may change it.
func (h *UserHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	id, err := intParam(r, "userID")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	subject, err := userIDFromContext(r.Context())
	if err != nil || subject != id {
		writeError(w, http.StatusForbidden, "forbidden")
		return
	}

	var req ChangePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}
	if req.OldPassword == "" || req.NewPassword == "" {
		writeError(w, http.StatusBadRequest, "missing passwords")
		return
	}

	if err := h.authService.ChangePassword(r.Context(), id, req.OldPassword, req.NewPassword); err != nil {
		writeServiceError(w, err, "failed to change password")
		return
	}
	writeData(w, http.StatusOK, "password changed", true)
}

func (h *UserHandler) IsAdmin(w http.ResponseWriter, r *http.Request) {
	id, err := intParam(r, "userID")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	isAdmin, err := h.authService.IsAdmin(r.Context(), id)
	if err != nil {
		writeServiceError(w, err, "failed to check user")
		return
	}
	writeData(w, http.StatusOK, "user checked", isAdmin)
}

// AttachContract stores the uploaded contract PDF for the user.
func (h *UserHandler) AttachContract(w http.ResponseWriter, r *http.Request) {
	id, err := intParam(r, "userID")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	upload, err := formFile(r, "file")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	user, err := h.userService.AttachContract(r.Context(), id, upload.Filename, upload.Data)
	if err != nil {
		writeServiceError(w, err, "failed to store contract")
		return
	}
	writeData(w, http.StatusOK, "contract updated", user)
}

// DownloadContract streams the user's contract PDF.
func (h *UserHandler) DownloadContract(w http.ResponseWriter, r *http.Request) {
	id, err := intParam(r, "userID")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	user, err := h.userService.GetByID(r.Context(), id)
	if err != nil {
		writeServiceError(w, err, "failed to fetch user")
		return
	}

	data, err := h.userService.ContractDocument(r.Context(), id)
	if err != nil {
		writeServiceError(w, err, "failed to fetch contract")
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", fmt.Sprintf("%s_%d.pdf", user.Rut, user.ID)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// ContractBase64 returns the contract PDF as a base64 payload.
func (h *UserHandler) ContractBase64(w http.ResponseWriter, r *http.Request) {
	id, err := intParam(r, "userID")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	data, err := h.userService.ContractDocument(r.Context(), id)
	if err != nil {
		writeServiceError(w, err, "failed to fetch contract")
		return
	}

	writeData(w, http.StatusOK, "contract encoded", map[string]string{
		"base64": base64.StdEncoding.EncodeToString(data),
	})
}

// AttachPicture stores the uploaded profile picture for the user.
func (h *UserHandler) AttachPicture(w http.ResponseWriter, r *http.Request) {
	id, err := intParam(r, "userID")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	upload, err := formFile(r, "file")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	user, err := h.userService.AttachPicture(r.Context(), id, upload.Filename, upload.Data)
	if err != nil {
		writeServiceError(w, err, "failed to store picture")
		return
	}
	writeData(w, http.StatusOK, "picture updated", user)
}

// PictureBase64 returns the profile picture as a base64 payload.
func (h *UserHandler) PictureBase64(w http.ResponseWriter, r *http.Request) {
	id, err := intParam(r, "userID")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	data, err := h.userService.PictureDocument(r.Context(), id)
	if err != nil {
		writeServiceError(w, err, "failed to fetch picture")
		return
	}

	writeData(w, http.StatusOK, "picture encoded", map[string]string{
		"base64": base64.StdEncoding.EncodeToString(data),
	})
}

// AddPayslip stores a single payslip PDF for the user.
func (h *UserHandler) AddPayslip(w http.ResponseWriter, r *http.Request) {
	id, err := intParam(r, "userID")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	upload, err := formFile(r, "file")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	slip, err := h.userService.AddPayslip(r.Context(), id, upload.Filename, upload.Data)
	if err != nil {
		writeServiceError(w, err, "failed to store payslip")
		return
	}
	writeData(w, http.StatusOK, "payslip added", slip)
}

// AddPayslips stores a batch of payslip PDFs for the user.
func (h *UserHandler) AddPayslips(w http.ResponseWriter, r *http.Request) {
	id, err := intParam(r, "userID")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	uploads, err := formFiles(r, "files")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	slips, err := h.userService.AddPayslips(r.Context(), id, uploads)
	if err != nil {
		writeServiceError(w, err, "failed to store payslips")
		return
	}
	writeData(w, http.StatusOK, "payslips added", slips)
}

func (h *UserHandler) ListPayslips(w http.ResponseWriter, r *http.Request) {
	id, err := intParam(r, "userID")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	slips, err := h.userService.Payslips(r.Context(), id)
	if err != nil {
		writeServiceError(w, err, "failed to list payslips")
		return
	}
	writeData(w, http.StatusOK, "payslips found", slips)
}

func (h *UserHandler) HasPayslips(w http.ResponseWriter, r *http.Request) {
	id, err := intParam(r, "userID")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	has, err := h.userService.HasPayslips(r.Context(), id)
	if err != nil {
		writeServiceError(w, err, "failed to check payslips")
		return
	}
	writeData(w, http.StatusOK, "payslips checked", has)
}

// DownloadPayslip streams one of the user's payslip PDFs.
func (h *UserHandler) DownloadPayslip(w http.ResponseWriter, r *http.Request) {
	id, err := intParam(r, "userID")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	payslipID, err := intParam(r, "payslipID")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	data, err := h.userService.PayslipDocument(r.Context(), id, payslipID)
	if err != nil {
		writeServiceError(w, err, "failed to fetch payslip")
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", fmt.Sprintf("payslip_%d_%d.pdf", id, payslipID)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// PayslipBase64 returns one of the user's payslip PDFs as a base64
// payload.
func (h *UserHandler) PayslipBase64(w http.ResponseWriter, r *http.Request) {
	id, err := intParam(r, "userID")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	payslipID, err := intParam(r, "payslipID")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	data, err := h.userService.PayslipDocument(r.Context(), id, payslipID)
	if err != nil {
		writeServiceError(w, err, "failed to fetch payslip")
		return
	}

	writeData(w, http.StatusOK, "payslip encoded", map[string]string{
		"base64": base64.StdEncoding.EncodeToString(data),
	})
}

// NextBirthdays lists upcoming birthdays, soonest first.
func (h *UserHandler) NextBirthdays(w http.ResponseWriter, r *http.Request) {
	birthdays, err := h.userService.NextBirthdays(r.Context())
	if err != nil {
		writeServiceError(w, err, "failed to compute birthdays")
		return
	}
	writeData(w, http.StatusOK, "upcoming birthdays", birthdays)
}
