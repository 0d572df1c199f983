package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEnv(t *testing.T) {
	t.Setenv("GOPHCOURSE_HTTP_ADDR", ":9999")
	t.Setenv("GOPHCOURSE_SECRET_TTL", "90s")
	t.Setenv("GOPHCOURSE_SECRET_RETENTION", "2h")
	t.Setenv("GOPHCOURSE_CREDENTIAL_LENGTH", "12")
	t.Setenv("GOPHCOURSE_ACCEPTED_STATUSES", "paid,settled")
	t.Setenv("GOPHCOURSE_ALLOWED_ORIGINS", "https://app.example")

	var c Config
	c.LoadDefaults()
	parseEnv(&c)

	assert.Equal(t, ":9999", c.EndpointAddrHTTP)
	assert.Equal(t, 90*time.Second, c.SecretTTL)
	assert.Equal(t, 2*time.Hour, c.SecretRetention)
	assert.Equal(t, 12, c.CredentialLength)
	assert.Equal(t, []string{"paid", "settled"}, c.AcceptedStatuses)
	assert.Equal(t, []string{"https://app.example"}, c.AllowedOrigins)

	assert.Equal(t, ":50051", c.EndpointAddrGRPC, "unset variables keep their value")
	assert.Equal(t, "/obrigado", c.RedirectPath)
}

func TestParseEnv_InvalidPanics(t *testing.T) {
	t.Setenv("GOPHCOURSE_CREDENTIAL_LENGTH", "many")

	var c Config
	require.Panics(t, func() { parseEnv(&c) })
}
