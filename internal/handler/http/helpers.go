package http

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/cmlabs-hris/attendance-backend-go/internal/handler/http/response"
	"github.com/go-chi/chi/v5"
)

// maxJSONBody covers base64 spreadsheets sent to /files/upload-attendance.
const maxJSONBody = 20 << 20

// decodeJSON reads the request body into dst and writes a 400 on failure.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	body := http.MaxBytesReader(w, r.Body, maxJSONBody)
	if err := json.NewDecoder(body).Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			response.BadRequest(w, "Request body is required", nil)
			return false
		}
		slog.Debug("Failed to decode request body", "path", r.URL.Path, "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return false
	}
	return true
}

// getIntQueryParam gets an int query parameter with a default value
func getIntQueryParam(r *http.Request, key string, defaultVal int) int {
	val := r.URL.Query().Get(key)
	if val == "" {
		return defaultVal
	}
	intVal, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return intVal
}

// getOptionalInt64Query returns nil when key is absent and false when it is malformed.
func getOptionalInt64Query(r *http.Request, key string) (*int64, bool) {
	val := r.URL.Query().Get(key)
	if val == "" {
		return nil, true
	}
	n, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return nil, false
	}
	return &n, true
}

func getOptionalStringQuery(r *http.Request, key string) *string {
	if val := r.URL.Query().Get(key); val != "" {
		return &val
	}
	return nil
}

// idParam parses the {id} route parameter and writes a 400 when it is not a positive integer.
func idParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		response.BadRequest(w, "Invalid employee id", nil)
		return 0, false
	}
	return id, true
}
