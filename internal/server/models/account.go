// Package models defines server-side data models persisted in the database.
package models

import (
	"fmt"
	"time"
)

// AccessLevel is an ordered entitlement tier. Grants never lower it.
type AccessLevel int

const (
	AccessBase AccessLevel = iota + 1
	AccessUpgraded
	AccessElite
)

func (l AccessLevel) String() string {
	switch l {
	case AccessBase:
		return "base"
	case AccessUpgraded:
		return "upgraded"
	case AccessElite:
		return "elite"
	default:
		return fmt.Sprintf("AccessLevel(%d)", int(l))
	}
}

func (l AccessLevel) MarshalText() ([]byte, error) {
	switch l {
	case AccessBase, AccessUpgraded, AccessElite:
		return []byte(l.String()), nil
	}
	return nil, fmt.Errorf("unknown access level %d", int(l))
}

func (l *AccessLevel) UnmarshalText(b []byte) error {
	switch string(b) {
	case "base":
		*l = AccessBase
	case "upgraded":
		*l = AccessUpgraded
	case "elite":
		*l = AccessElite
	default:
		return fmt.Errorf("unknown access level %q", string(b))
	}
	return nil
}

type CourseStatus string

const (
	CourseInactive CourseStatus = "inactive"
	CourseActive   CourseStatus = "active"
)

// Account is the per-user course record. CreatedAt is the enrollment
// timestamp: it is written once, when the account is first granted access.
type Account struct {
	UID           string          `json:"uid"`
	Email         string          `json:"email"`
	DisplayName   string          `json:"displayName"`
	AccessLevel   AccessLevel     `json:"accessLevel"`
	CourseStatus  CourseStatus    `json:"courseStatus"`
	CreatedAt     time.Time       `json:"createdAt"`
	LastUpdated   time.Time       `json:"lastUpdated"`
	Progress      map[string]bool `json:"progress"`
	CurrentLesson string          `json:"currentLesson,omitempty"`
}

// Completed reports whether lessonID is marked complete.
func (a *Account) Completed(lessonID string) bool {
	return a.Progress[lessonID]
}

// Grant describes an access grant merged into an account.
type Grant struct {
	UID          string
	Email        string
	DisplayName  string
	AccessLevel  AccessLevel
	CourseStatus CourseStatus
	Now          time.Time
}
