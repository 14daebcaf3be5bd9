package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/thlight-panel/internal/domain"
)

type otpService interface {
	Issue(ctx context.Context, address string, purpose domain.Purpose) (domain.IssuedOTP, error)
	Verify(ctx context.Context, address, candidate string) (domain.VerifyResult, error)
	Status(ctx context.Context, address string) (domain.OTPStatus, error)
}

type emailChecker interface {
	Check(email string) domain.EmailCheck
}

type sendOTPRequest struct {
	Email   string `json:"email"`
	Purpose string `json:"purpose"`
}

type verifyOTPRequest struct {
	Email string `json:"email"`
	OTP   string `json:"otp"`
}

type validateEmailRequest struct {
	Email string `json:"email"`
}

// OTPHandler serves email validation and the OTP issue/verify/status endpoints.
type OTPHandler struct {
	otp     otpService
	checker emailChecker
}

func NewOTPHandler(otp otpService, checker emailChecker) *OTPHandler {
	return &OTPHandler{otp: otp, checker: checker}
}

func (h *OTPHandler) ValidateEmail(w http.ResponseWriter, r *http.Request) {
	var req validateEmailRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, EmailCheckEnvelope{Message: "Email is required"})
		return
	}
	res := h.checker.Check(req.Email)
	status := http.StatusOK
	if !res.Valid {
		status = http.StatusBadRequest
	}
	writeJSON(w, status, EmailCheckEnvelope{IsValid: res.Valid, Message: res.Message})
}

func (h *OTPHandler) Send(w http.ResponseWriter, r *http.Request) {
	var req sendOTPRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.Email) == "" {
		writeJSON(w, http.StatusBadRequest, ResultEnvelope{Message: "Email is required"})
		return
	}
	issued, err := h.otp.Issue(r.Context(), req.Email, domain.ParsePurpose(req.Purpose))
	if err != nil {
		if errors.Is(err, domain.ErrBadRequest) {
			writeJSON(w, http.StatusBadRequest, ResultEnvelope{Message: "Email is required"})
			return
		}
		slog.Error("send otp", "err", err)
		writeJSON(w, http.StatusInternalServerError, ResultEnvelope{Message: "Error sending OTP"})
		return
	}
	writeJSON(w, http.StatusOK, ResultEnvelope{
		Success: true,
		Message: fmt.Sprintf("OTP has been sent to %s! Please check your inbox. The email should arrive within 1-2 minutes.", issued.Address),
	})
}

func (h *OTPHandler) Verify(w http.ResponseWriter, r *http.Request) {
	var req verifyOTPRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Email == "" || req.OTP == "" {
		writeJSON(w, http.StatusBadRequest, ResultEnvelope{Message: "Email and OTP are required"})
		return
	}
	res, err := h.otp.Verify(r.Context(), req.Email, req.OTP)
	if err != nil {
		if errors.Is(err, domain.ErrBadRequest) {
			writeJSON(w, http.StatusBadRequest, ResultEnvelope{Message: "Email and OTP are required"})
			return
		}
		slog.Error("verify otp", "err", err)
		writeJSON(w, http.StatusInternalServerError, ResultEnvelope{Message: "Error verifying OTP"})
		return
	}
	status := http.StatusOK
	if !res.Success {
		status = http.StatusBadRequest
	}
	writeJSON(w, status, ResultEnvelope{Success: res.Success, Message: res.Message()})
}

func (h *OTPHandler) Status(w http.ResponseWriter, r *http.Request) {
	email := r.URL.Query().Get("email")
	if email == "" {
		writeError(w, http.StatusBadRequest, "Email is required")
		return
	}
	st, err := h.otp.Status(r.Context(), email)
	if err != nil {
		httpError(w, err)
		return
	}
	if !st.Exists {
		writeJSON(w, http.StatusOK, OTPStatusEnvelope{})
		return
	}
	writeJSON(w, http.StatusOK, OTPStatusEnvelope{
		Exists:   true,
		Expiry:   &st.ExpiresAt,
		Attempts: &st.Attempts,
		Expired:  &st.Expired,
	})
}
