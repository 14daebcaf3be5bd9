package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/thlight-panel/internal/domain"
	"github.com/thlight-panel/internal/pkg/validate"
)

// MessageEnvelope is the generic response wrapper.
type MessageEnvelope struct {
	Message   string `json:"message,omitempty"`
	Error     string `json:"error,omitempty"`
	ErrorCode int    `json:"error_code,omitempty"`
}

// ResultEnvelope is the {success, message} shape used by the OTP endpoints.
type ResultEnvelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// EmailCheckEnvelope answers /api/validate-email.
type EmailCheckEnvelope struct {
	IsValid bool   `json:"isValid"`
	Message string `json:"message"`
}

// OTPStatusEnvelope answers /api/otp-status. Only Exists is set when no code is pending.
type OTPStatusEnvelope struct {
	Exists   bool       `json:"exists"`
	Expiry   *time.Time `json:"expiry,omitempty"`
	Attempts *int       `json:"attempts,omitempty"`
	Expired  *bool      `json:"expired,omitempty"`
}

// PreviewItem is one entry of /api/email-previews. Timestamp is Unix milliseconds.
type PreviewItem struct {
	ID        string `json:"id"`
	Subject   string `json:"subject"`
	Content   string `json:"content"`
	Timestamp int64  `json:"timestamp"`
	TimeAgo   string `json:"timeAgo"`
	OTP       string `json:"otp,omitempty"`
}

type PreviewsEnvelope struct {
	Emails []PreviewItem `json:"emails"`
}

// LatestOTPEnvelope answers /api/latest-otp. OTP is null when nothing usable exists.
type LatestOTPEnvelope struct {
	OTP     *string `json:"otp"`
	Expired *bool   `json:"expired,omitempty"`
	TimeAgo string  `json:"timeAgo,omitempty"`
	Message string  `json:"message,omitempty"`
}

// DataEnvelope wraps a single payload.
type DataEnvelope struct {
	Data    interface{} `json:"data"`
	Message string      `json:"message,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, MessageEnvelope{Error: msg, ErrorCode: status})
}

// httpError maps domain sentinel errors to status codes. Anything unrecognised
// is logged and reported as a generic 500.
func httpError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrBadRequest):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrUnauthorized):
		writeError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, domain.ErrForbidden):
		writeError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrConflict):
		writeError(w, http.StatusConflict, err.Error())
	default:
		slog.Error("unhandled error", "err", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

// decodeBody decodes and validates a JSON body. It writes the error response
// itself and reports whether the handler should continue.
func decodeBody(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	if err := validate.Struct(dst); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return false
	}
	return true
}
