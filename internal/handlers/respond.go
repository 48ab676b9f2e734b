package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/smartsupply/delivery-app/httpx"
	"github.com/smartsupply/delivery-app/internal/services"
)

// writeServiceError maps service error kinds to HTTP statuses. Unknown
// errors are reported as 500 without leaking internals.
func writeServiceError(w http.ResponseWriter, err error) {
	switch services.KindOf(err) {
	case services.KindNotFound:
		httpx.JSONError(w, http.StatusNotFound, "not_found", err.Error())
	case services.KindInvalidRequest:
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", err.Error())
	case services.KindInvalidState:
		httpx.JSONError(w, http.StatusConflict, "invalid_state", err.Error())
	case services.KindConflict:
		httpx.JSONError(w, http.StatusConflict, "conflict", err.Error())
	default:
		httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
	}
}

// pathID parses the {id} path value as a positive integer.
func pathID(r *http.Request) (uint, bool) {
	n, err := strconv.ParseUint(strings.TrimSpace(r.PathValue("id")), 10, 64)
	if err != nil || n == 0 {
		return 0, false
	}
	return uint(n), true
}
