package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"chef/internal/controller"
	applog "chef/internal/log"
)

type detailResponse struct {
	Detail string `json:"detail"`
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		applog.Error(r.Context(), "failed to encode response", "error", err)
	}
}

func writeDetail(w http.ResponseWriter, r *http.Request, status int, detail string) {
	writeJSON(w, r, status, detailResponse{Detail: detail})
}

// statusFor maps a controller error onto an HTTP status.
func statusFor(err error) int {
	var (
		notFound *controller.NotFoundError
		conflict *controller.ReferentialConflictError
		invalid  *controller.InvalidReferenceError
	)
	switch {
	case errors.As(err, &notFound):
		return http.StatusNotFound
	case errors.As(err, &conflict), errors.As(err, &invalid), errors.Is(err, controller.ErrInvalidPayload):
		return http.StatusBadRequest
	case errors.Is(err, controller.ErrOperationDisabled):
		return http.StatusMethodNotAllowed
	}
	return http.StatusInternalServerError
}

// writeError reports err with its mapped status. Unexpected errors are logged
// and hidden from the client.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		applog.Error(r.Context(), "request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		writeDetail(w, r, status, "internal server error")
		return
	}
	applog.Debug(r.Context(), "request rejected", "status", status, "error", err)
	writeDetail(w, r, status, detailOf(err))
}

// detailOf returns the message of the outermost typed controller error, so
// the client sees "Tag id=3 not found" rather than the wrapping context.
func detailOf(err error) string {
	var (
		notFound *controller.NotFoundError
		conflict *controller.ReferentialConflictError
		invalid  *controller.InvalidReferenceError
	)
	switch {
	case errors.As(err, &notFound):
		return notFound.Error()
	case errors.As(err, &conflict):
		return conflict.Error()
	case errors.As(err, &invalid):
		return invalid.Error()
	}
	return err.Error()
}
