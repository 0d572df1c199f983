// Package webhook decodes payment provider notifications.
//
// Providers disagree on field names, so each logical field is resolved from
// an ordered list of candidate paths. The first non-empty string wins.
package webhook

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"
)

var ErrMalformedPayload = errors.New("malformed webhook payload")

var (
	emailPaths  = [][]string{{"customer", "email"}, {"email"}, {"customer_email"}}
	namePaths   = [][]string{{"customer", "name"}, {"name"}, {"customer_name"}}
	statusPaths = [][]string{{"state"}, {"status"}, {"payment_status"}}
	secretPaths = [][]string{{"secret"}}
)

// DefaultPaidStatuses are the statuses accepted as a completed payment.
var DefaultPaidStatuses = []string{"paid", "approved", "completed"}

// Event is the normalized view of a payment notification.
type Event struct {
	Email  string
	Name   string
	Status string
	Secret string
}

// Parse decodes raw into an Event. Email is trimmed and lower-cased. Fields
// that cannot be resolved are left empty.
func Parse(raw []byte) (Event, error) {
	var payload map[string]any

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&payload); err != nil {
		return Event{}, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	if payload == nil {
		return Event{}, fmt.Errorf("%w: payload is not an object", ErrMalformedPayload)
	}

	return Event{
		Email:  strings.ToLower(strings.TrimSpace(resolve(payload, emailPaths))),
		Name:   strings.TrimSpace(resolve(payload, namePaths)),
		Status: strings.TrimSpace(resolve(payload, statusPaths)),
		Secret: resolve(payload, secretPaths),
	}, nil
}

// Paid reports whether the event status is one of accepted, ignoring case.
func (e Event) Paid(accepted []string) bool {
	if e.Status == "" {
		return false
	}
	return slices.ContainsFunc(accepted, func(s string) bool {
		return strings.EqualFold(s, e.Status)
	})
}

func resolve(payload map[string]any, paths [][]string) string {
	for _, p := range paths {
		if s := lookup(payload, p); s != "" {
			return s
		}
	}
	return ""
}

func lookup(node map[string]any, path []string) string {
	for i, key := range path {
		v, ok := node[key]
		if !ok {
			return ""
		}
		if i == len(path)-1 {
			s, _ := v.(string)
			return s
		}
		if node, ok = v.(map[string]any); !ok {
			return ""
		}
	}
	return ""
}
