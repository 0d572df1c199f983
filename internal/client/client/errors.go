package client

import (
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/gophcourse/internal/client/models"
)

var (
	ErrUnavailable     = errors.New("server unavailable")
	ErrUnauthorized    = errors.New("unauthorized")
	ErrNoSession       = errors.New("not logged in")
	ErrForbidden       = errors.New("course access is not active")
	ErrNotFound        = errors.New("not found")
	ErrInvalidArgument = errors.New("invalid argument")
	ErrExpired         = errors.New("credential expired")
	ErrRateLimited     = errors.New("too many requests")
	ErrServer          = errors.New("server error")
)

// LockedError reports a module still held back by its release schedule.
type LockedError struct {
	ModuleID string
	Drip     models.DripView
}

func (e *LockedError) Error() string {
	return fmt.Sprintf("module %s is locked for another %s", e.ModuleID, e.Drip.Remaining().Round(time.Second))
}
