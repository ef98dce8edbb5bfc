package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/staffdesk/apiserver/internal/services"
	"github.com/staffdesk/apiserver/internal/store"
)

type contextKey string

const contextSubjectKey contextKey = "sub"

const maxUploadBytes = 32 << 20

// Response is the envelope every endpoint answers with: a human-readable
// message, an optional payload and an error flag. Internal details and
// secrets never reach Message.
type Response struct {
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
	Error   bool   `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, value any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(value)
}

func writeData(w http.ResponseWriter, status int, message string, data any) {
	writeJSON(w, status, Response{Message: message, Data: data, Error: false})
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, Response{Message: message, Error: true})
}

// writeServiceError maps the service error taxonomy onto HTTP statuses.
// Unknown errors collapse to a generic 500 so internals never leak.
func writeServiceError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	case errors.Is(err, store.ErrDuplicate):
		writeError(w, http.StatusConflict, "duplicate value for a unique field")
	case errors.Is(err, services.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, services.ErrInvalidCredentials.Error())
	case errors.Is(err, services.ErrPasswordMismatch):
		writeError(w, http.StatusBadRequest, services.ErrPasswordMismatch.Error())
	case errors.Is(err, services.ErrAlreadyAssigned):
		writeError(w, http.StatusConflict, services.ErrAlreadyAssigned.Error())
	case errors.Is(err, services.ErrNotAssigned):
		writeError(w, http.StatusConflict, services.ErrNotAssigned.Error())
	default:
		writeError(w, http.StatusInternalServerError, fallback)
	}
}

func userIDFromContext(ctx context.Context) (int, error) {
	value := ctx.Value(contextSubjectKey)
	switch subject := value.(type) {
	case int:
		if subject < 1 {
			return 0, errors.New("invalid subject")
		}
		return subject, nil
	case string:
		parsed, err := strconv.Atoi(strings.TrimSpace(subject))
		if err != nil || parsed < 1 {
			return 0, errors.New("invalid subject")
		}
		return parsed, nil
	default:
		return 0, errors.New("missing subject")
	}
}

func intParam(r *http.Request, name string) (int, error) {
	raw := strings.TrimSpace(chi.URLParam(r, name))
	value, err := strconv.Atoi(raw)
	if err != nil || value < 1 {
		return 0, errors.New("invalid " + name)
	}
	return value, nil
}

// parseBirthDate accepts the wire format for birth dates.
func parseBirthDate(value string) (time.Time, error) {
	return time.Parse("2006-01-02", strings.TrimSpace(value))
}

// formFile reads one uploaded file from a multipart request.
func formFile(r *http.Request, field string) (services.Upload, error) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		return services.Upload{}, errors.New("invalid multipart request")
	}
	file, header, err := r.FormFile(field)
	if err != nil {
		return services.Upload{}, errors.New("missing file field " + field)
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxUploadBytes+1))
	if err != nil {
		return services.Upload{}, errors.New("failed to read upload")
	}
	if len(data) > maxUploadBytes {
		return services.Upload{}, errors.New("file too large")
	}
	return services.Upload{Filename: header.Filename, Data: data}, nil
}

// formFiles reads every file uploaded under field from a multipart
// request.
func formFiles(r *http.Request, field string) ([]services.Upload, error) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		return nil, errors.New("invalid multipart request")
	}
	if r.MultipartForm == nil || len(r.MultipartForm.File[field]) == 0 {
		return nil, errors.New("missing file field " + field)
	}

	uploads := make([]services.Upload, 0, len(r.MultipartForm.File[field]))
	for _, header := range r.MultipartForm.File[field] {
		upload, err := readFileHeader(header)
		if err != nil {
			return nil, err
		}
		uploads = append(uploads, upload)
	}
	return uploads, nil
}

func readFileHeader(header *multipart.FileHeader) (services.Upload, error) {
	file, err := header.Open()
	if err != nil {
		return services.Upload{}, errors.New("failed to open upload")
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxUploadBytes+1))
	if err != nil {
		return services.Upload{}, errors.New("failed to read upload")
	}
	if len(data) > maxUploadBytes {
		return services.Upload{}, errors.New("file too large")
	}
	return services.Upload{Filename: header.Filename, Data: data}, nil
}
