package otp

import (
	"fmt"
	"time"

	"github.com/thlight-panel/internal/domain"
)

type wording struct {
	title  string // subject line fragment
	phrase string // inline body fragment
}

var wordings = map[domain.Purpose]wording{
	domain.PurposeRegister:     {"Registration", "account registration"},
	domain.PurposeLogin:        {"Login", "login"},
	domain.PurposeReset:        {"Password Reset", "password reset"},
	domain.PurposeVerification: {"Verification", "verification"},
}

const bodyTemplate = `Dear User,

You have requested a %s code for your THLIGHT Panel account.

Your verification code is: %s

This code will expire in %s.

If you didn't request this code, please ignore this email.

Best regards,
THLIGHT Panel Team
`

// Render produces the subject and body of an OTP email.
func Render(purpose domain.Purpose, code string, ttl time.Duration) (subject, body string) {
	w, ok := wordings[purpose]
	if !ok {
		w = wordings[domain.PurposeVerification]
	}
	subject = fmt.Sprintf("THLIGHT Panel - Your %s Code", w.title)
	body = fmt.Sprintf(bodyTemplate, w.phrase, code, humanDuration(ttl))
	return subject, body
}

func humanDuration(d time.Duration) string {
	if d >= time.Minute && d%time.Minute == 0 {
		if m := int(d / time.Minute); m != 1 {
			return fmt.Sprintf("%d minutes", m)
		}
		return "1 minute"
	}
	return d.String()
}
