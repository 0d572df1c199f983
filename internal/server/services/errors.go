package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/gophcourse/internal/drip"
)

var (
	// ErrMissingIdentity means the payment notification carried no email.
	ErrMissingIdentity = errors.New("missing customer email")
	// ErrInternalProvisioning wraps any identity, vault or store failure
	// while handling a payment notification.
	ErrInternalProvisioning = errors.New("internal provisioning error")

	ErrInvalidArgument = errors.New("invalid argument")
	// ErrNotFound merges "never vaulted" and "already revealed" so callers
	// cannot tell which one happened.
	ErrNotFound         = errors.New("credential expired or already viewed")
	ErrDeadlineExceeded = errors.New("credential reveal window has passed")
	ErrInternal         = errors.New("internal error")

	ErrModuleLocked = errors.New("module locked")
)

// LockedError reports a module that is still under its release delay.
// It matches ErrModuleLocked.
type LockedError struct {
	ModuleID string
	State    drip.State
	UnlockAt time.Time
}

func (e *LockedError) Error() string {
	return fmt.Sprintf("module %s locked for %s", e.ModuleID, e.State.Remaining)
}

func (e *LockedError) Is(target error) bool {
	return target == ErrModuleLocked
}
