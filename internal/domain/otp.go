package domain

import (
	"fmt"
	"time"
)

// Purpose selects the wording of an OTP email. It has no effect on validation.
type Purpose string

const (
	PurposeRegister     Purpose = "register"
	PurposeLogin        Purpose = "login"
	PurposeReset        Purpose = "reset"
	PurposeVerification Purpose = "verification"
)

// ParsePurpose maps a caller-supplied label to a known purpose.
// Unknown or empty labels fall back to PurposeVerification.
func ParsePurpose(s string) Purpose {
	switch p := Purpose(s); p {
	case PurposeRegister, PurposeLogin, PurposeReset:
		return p
	default:
		return PurposeVerification
	}
}

// OTPRecord is the single pending code for an address.
type OTPRecord struct {
	Address   string    `json:"address"`
	Code      string    `json:"code"`
	ExpiresAt time.Time `json:"expires_at"`
	Attempts  int       `json:"attempts"`
}

// Expired reports whether the record is past its expiry at now.
func (r OTPRecord) Expired(now time.Time) bool {
	return now.After(r.ExpiresAt)
}

// OutboundEmail is a rendered message handed to a mailer.
// Code is empty for messages that do not carry an OTP.
type OutboundEmail struct {
	To      string
	Subject string
	Body    string
	Code    string
}

// IssuedOTP confirms an issuance. EmailID is informational only.
type IssuedOTP struct {
	Address   string
	EmailID   string
	ExpiresAt time.Time
}

// VerifyReason classifies the outcome of a verification attempt.
type VerifyReason string

const (
	VerifyOK              VerifyReason = "ok"
	VerifyNoPendingCode   VerifyReason = "no_pending_code"
	VerifyExpired         VerifyReason = "expired"
	VerifyTooManyAttempts VerifyReason = "too_many_attempts"
	VerifyIncorrectCode   VerifyReason = "incorrect_code"
)

// VerifyResult is the structured outcome of OTP verification.
// Remaining is only meaningful when Reason is VerifyIncorrectCode.
type VerifyResult struct {
	Success   bool
	Reason    VerifyReason
	Remaining int
}

// OTPStatus is a read-only snapshot of the pending record for an address.
type OTPStatus struct {
	Exists    bool
	ExpiresAt time.Time
	Attempts  int
	Expired   bool
}

// Message is the user-facing wording for the result.
func (r VerifyResult) Message() string {
	switch r.Reason {
	case VerifyOK:
		return "OTP verified successfully"
	case VerifyNoPendingCode:
		return "No OTP found for this email. Please request a new one."
	case VerifyExpired:
		return "OTP has expired. Please request a new one."
	case VerifyTooManyAttempts:
		return "Too many incorrect attempts. Please request a new OTP."
	default:
		return fmt.Sprintf("Incorrect OTP. %d attempts remaining.", r.Remaining)
	}
}

// RecordChange tells an OTP store what to do with a record at the end of an
// atomic update.
type RecordChange int

const (
	RecordKeep RecordChange = iota
	RecordSave
	RecordDelete
)
