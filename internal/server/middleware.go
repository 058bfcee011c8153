package server

import (
	"net/http"

	"github.com/google/uuid"

	applog "chef/internal/log"
)

const requestIDHeader = "X-Request-Id"

// requestID propagates a caller supplied UUID or assigns a fresh one, echoing
// it in the response and attaching it to every log entry of the request.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.New().String()
		}
		w.Header().Set(requestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(applog.WithRequestID(r.Context(), id)))
	})
}
