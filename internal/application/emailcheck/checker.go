// Package emailcheck decides whether an address is acceptable for sign-up.
package emailcheck

import (
	"regexp"
	"strings"

	"github.com/thlight-panel/internal/domain"
)

var shape = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Local parts containing any of these are treated as throwaway addresses.
var fakeMarkers = []string{
	"test123",
	"fake123",
	"invalid123",
	"notreal123",
	"temporary123",
}

type Checker struct {
	domain string
	label  string
}

// New returns a Checker accepting only addresses at allowedDomain.
func New(allowedDomain string) *Checker {
	d := strings.ToLower(strings.TrimPrefix(allowedDomain, "@"))
	label := d
	if d == "gmail.com" {
		label = "Gmail"
	}
	return &Checker{domain: d, label: label}
}

func (c *Checker) Check(email string) domain.EmailCheck {
	if email == "" {
		return domain.EmailCheck{Message: "Email is required"}
	}
	if !shape.MatchString(email) {
		return domain.EmailCheck{Message: "Invalid email format"}
	}
	lower := strings.ToLower(email)
	if !strings.HasSuffix(lower, "@"+c.domain) {
		return domain.EmailCheck{Message: "Email is invalid. Only real " + c.label + " accounts are supported."}
	}
	local, _, _ := strings.Cut(lower, "@")
	if looksFake(local) {
		return domain.EmailCheck{Message: "Email is invalid. Please enter a valid " + c.label + " address."}
	}
	return domain.EmailCheck{Valid: true, Message: "Email is valid"}
}

func looksFake(local string) bool {
	for _, m := range fakeMarkers {
		if strings.Contains(local, m) {
			return true
		}
	}
	return strings.Contains(local, "..") ||
		strings.HasPrefix(local, ".") ||
		strings.HasSuffix(local, ".") ||
		len(local) < 2
}
