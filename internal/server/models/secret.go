package models

import "time"

// VaultedSecret is a one-time credential awaiting its single reveal.
// Password holds AES-GCM ciphertext sealed with Nonce.
type VaultedSecret struct {
	Email     string
	Password  []byte
	Nonce     []byte
	CreatedAt time.Time
	ExpiresAt time.Time
	Retrieved bool
}

// Expired reports whether the secret can no longer be revealed at now.
func (s *VaultedSecret) Expired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}
