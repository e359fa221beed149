package service

import (
	"errors"
	"fmt"
)

// Business-rule errors surfaced by the services. Handlers map these onto the
// HTTP taxonomy; anything else is an internal fault.
var (
	ErrExamNotFound         = errors.New("exam not found")
	ErrExamNotPublished     = errors.New("exam is not published")
	ErrInviteRequired       = errors.New("invite token required")
	ErrInviteInvalid        = errors.New("invite token invalid")
	ErrOutsideExamWindow    = errors.New("outside the exam time window")
	ErrSubmissionNotFound   = errors.New("no in-progress submission found")
	ErrMissingSubmissionRef = errors.New("no submission reference supplied")
	ErrSubmissionClosed     = errors.New("submission is no longer in progress")
	ErrConcurrentSession    = errors.New("another session holds the lock")
)

// IPNotAllowedError is an admission denial naming the rejected client IP.
type IPNotAllowedError struct {
	IP string
}

func (e *IPNotAllowedError) Error() string {
	return fmt.Sprintf("IP address %s is not allowed for this exam", e.IP)
}
