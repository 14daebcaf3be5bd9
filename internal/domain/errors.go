package domain

import "errors"

// Services wrap these with fmt.Errorf("...: %w"); handlers pick the status
// code with errors.Is. Storage backends return ErrNotFound for missing keys.
var (
	ErrNotFound     = errors.New("not found")    // 404, also hides other users' servers
	ErrConflict     = errors.New("conflict")     // 409: duplicates, busy server, repeated ban
	ErrUnauthorized = errors.New("unauthorized") // 401: bad credentials or OTP
	ErrForbidden    = errors.New("forbidden")    // 403: bans and plan limits
	ErrBadRequest   = errors.New("bad request")  // 400
)
