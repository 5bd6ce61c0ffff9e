package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var envKeys = []string{
	"PORT", "SHOWME_PORT", "ENV", "LOG_LEVEL",
	"SMS_BACKEND", "SMS_TIMEOUT", "SHOWME_KID_FRIENDLY_QUERIES",
	"TWILIO_SID", "TWILIO_TOKEN", "TWILIO_FROM",
	"TELNYX_API_KEY", "TELNYX_FROM_NUMBER", "KAFKA_BROKERS",
	"GEMINI_API_KEY", "GEMINI_MODEL",
	"SHOWME_JWT_SIGNING_KEY", "SHOWME_JWT_ISSUER", "SHOWME_PHRASES_FILE",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range envKeys {
		t.Setenv(k, "")
	}
}

func TestDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "5002", cfg.Server.Port)
	assert.Equal(t, "development", cfg.Server.Env)
	assert.Equal(t, BackendLog, cfg.SMS.Backend)
	assert.Equal(t, 10*time.Second, cfg.SMS.Timeout)
	assert.False(t, cfg.SMS.KidFriendlyQueries)
	assert.Equal(t, "gemini-2.5-flash", cfg.Gemini.Model)
	assert.Equal(t, "catinci-showme", cfg.JWT.Issuer)
	assert.Empty(t, cfg.Kafka.Brokers)
}

func TestPortPrecedence(t *testing.T) {
	clearEnv(t)
	t.Setenv("SHOWME_PORT", "9000")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "9000", cfg.Server.Port)

	t.Setenv("PORT", "8080")
	cfg, err = Load()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Server.Port)
}

func TestTwilioSelectedWhenConfigured(t *testing.T) {
	clearEnv(t)
	t.Setenv("TWILIO_SID", "AC123")
	t.Setenv("TWILIO_TOKEN", "tok")
	t.Setenv("TWILIO_FROM", "+15550001234")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, BackendTwilio, cfg.SMS.Backend)
}

func TestPartialTwilioFallsBackToLog(t *testing.T) {
	clearEnv(t)
	t.Setenv("TWILIO_SID", "AC123")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, BackendLog, cfg.SMS.Backend)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{"explicit twilio without creds", map[string]string{"SMS_BACKEND": "twilio"}, "TWILIO_SID"},
		{"telnyx without creds", map[string]string{"SMS_BACKEND": "telnyx"}, "TELNYX_API_KEY"},
		{"kafka without brokers", map[string]string{"SMS_BACKEND": "kafka"}, "KAFKA_BROKERS"},
		{"unknown backend", map[string]string{"SMS_BACKEND": "pigeon"}, "unknown SMS_BACKEND"},
		{"kafka ok", map[string]string{"SMS_BACKEND": "Kafka", "KAFKA_BROKERS": "kafka:9092, other:9092"}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			cfg, err := Load()
			if tt.wantErr != "" {
				assert.ErrorContains(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, []string{"kafka:9092", "other:9092"}, cfg.Kafka.Brokers)
		})
	}
}

func TestBadValuesKeepDefaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("SMS_TIMEOUT", "soon")
	t.Setenv("SHOWME_KID_FRIENDLY_QUERIES", "maybe")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 10*time.Second, cfg.SMS.Timeout)
	assert.False(t, cfg.SMS.KidFriendlyQueries)
}

func TestPhrasesFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "phrases.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`triggers:
  - '\bpeek\b'
blocked:
  - spiders
  - sharks
`), 0o644))
	t.Setenv("SHOWME_PHRASES_FILE", path)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, []string{`\bpeek\b`}, cfg.Phrases.Triggers)
	assert.Equal(t, []string{"spiders", "sharks"}, cfg.Phrases.Blocked)
	assert.Equal(t, path, cfg.Phrases.File)
}

func TestPhrasesFileMissing(t *testing.T) {
	clearEnv(t)
	t.Setenv("SHOWME_PHRASES_FILE", filepath.Join(t.TempDir(), "nope.yaml"))

	_, err := Load()
	assert.ErrorContains(t, err, "read phrases file")
}
