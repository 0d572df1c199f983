// Package models holds the client-side view of the course API payloads.
package models

import (
	"time"

	"github.com/dmitrijs2005/gophcourse/internal/catalog"
)

type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

type Account struct {
	UID           string          `json:"uid"`
	Email         string          `json:"email"`
	DisplayName   string          `json:"displayName"`
	AccessLevel   string          `json:"accessLevel"`
	CourseStatus  string          `json:"courseStatus"`
	CreatedAt     time.Time       `json:"createdAt"`
	LastUpdated   time.Time       `json:"lastUpdated"`
	Progress      map[string]bool `json:"progress"`
	CurrentLesson string          `json:"currentLesson,omitempty"`
}

// DripView is a module's lock state as reported by the server.
type DripView struct {
	Locked          bool       `json:"locked"`
	RemainingMillis int64      `json:"remainingMillis"`
	UnlockAt        *time.Time `json:"unlockAt,omitempty"`
}

func (d DripView) Remaining() time.Duration {
	return time.Duration(d.RemainingMillis) * time.Millisecond
}

type ModuleView struct {
	Module    catalog.Module `json:"module"`
	Drip      DripView       `json:"drip"`
	Completed int            `json:"completed"`
	Total     int            `json:"total"`
}

type Overview struct {
	Account   *Account     `json:"account"`
	Modules   []ModuleView `json:"modules"`
	Completed int          `json:"completed"`
	Total     int          `json:"total"`
	Percent   int          `json:"percent"`
}

// Module finds a module of the overview by id.
func (o *Overview) Module(id string) (*ModuleView, bool) {
	for i := range o.Modules {
		if o.Modules[i].Module.ID == id {
			return &o.Modules[i], true
		}
	}
	return nil, false
}

type LessonView struct {
	Lesson    catalog.Lesson `json:"lesson"`
	ModuleID  string         `json:"moduleId"`
	Module    string         `json:"moduleTitle"`
	Completed bool           `json:"completed"`
}

// CountdownMessage is one frame of the countdown stream.
type CountdownMessage struct {
	ModuleID string `json:"moduleId"`
	DripView
}
