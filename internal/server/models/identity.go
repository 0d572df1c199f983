package models

import "time"

// Identity is an authentication record. The password is stored as an
// argon2id hash under a per-identity salt.
type Identity struct {
	ID           string
	Email        string
	DisplayName  string
	Salt         []byte
	PasswordHash []byte
	CreatedAt    time.Time
}
