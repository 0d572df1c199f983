package common

// WebhookSecretHeaderName carries the shared secret of the payment provider.
const WebhookSecretHeaderName = "X-Webhook-Secret"

// CredentialCharset is the alphabet of generated one-time credentials.
const CredentialCharset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// DefaultCredentialLength is the length of a generated one-time credential.
const DefaultCredentialLength = 8
