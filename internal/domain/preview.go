package domain

import "time"

// EmailPreview is the retained copy of a simulated outbound email.
type EmailPreview struct {
	ID        string    `json:"id"`
	Recipient string    `json:"recipient"`
	Subject   string    `json:"subject"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
	Code      string    `json:"code,omitempty"`
}

// HasCode reports whether the preview carries an OTP.
func (p EmailPreview) HasCode() bool { return p.Code != "" }

// PreviewEntry is an EmailPreview annotated with its relative age.
type PreviewEntry struct {
	EmailPreview
	TimeAgo string
}

// LatestOTP is the answer to "what is the newest code sent to this address".
// Code is empty when nothing was found or the newest code is stale.
type LatestOTP struct {
	Found   bool
	Code    string
	Expired bool
	TimeAgo string
}

// EmailCheck is the outcome of email format validation.
type EmailCheck struct {
	Valid   bool
	Message string
}
