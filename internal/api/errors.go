package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/hackgods/practice-scheduling/internal/appointment"
)

var kindStatus = map[appointment.Kind]int{
	appointment.KindNotFound:          http.StatusNotFound,
	appointment.KindSlotConflict:      http.StatusConflict,
	appointment.KindInvalidTransition: http.StatusConflict,
	appointment.KindScheduleViolation: http.StatusUnprocessableEntity,
	appointment.KindPastSlot:          http.StatusUnprocessableEntity,
	appointment.KindDuplicatePatient:  http.StatusConflict,
	appointment.KindInvalidInput:      http.StatusBadRequest,
	appointment.KindInUse:             http.StatusConflict,
	appointment.KindForbidden:         http.StatusForbidden,
}

// handleDomainError maps scheduling errors to HTTP responses. The kind is the
// error code and the structured fields become details.
func handleDomainError(w http.ResponseWriter, err error) {
	var typed *appointment.Error
	if !errors.As(err, &typed) {
		writeError(w, http.StatusInternalServerError, "internal_error", nil)
		return
	}
	status, ok := kindStatus[typed.Kind]
	if !ok {
		status = http.StatusInternalServerError
	}
	writeError(w, status, string(typed.Kind), typed.Fields)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, details map[string]string) {
	writeJSON(w, status, ErrorResponse{Error: code, Details: details})
}
