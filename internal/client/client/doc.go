// Package client talks to the course backend.
//
// GRPCClient calls the credential service (reveal, ping). HTTPClient wraps the
// HTTP API with resty: it attaches the stored access token, refreshes it once
// on 401 and retries, and decodes error bodies into the sentinel errors of
// this package. Countdown streams a module's drip state over a websocket.
// InitDatabase opens the local SQLite store and applies its migrations.
//
// Callers match failures with errors.Is; a locked module surfaces as
// *LockedError.
package client
