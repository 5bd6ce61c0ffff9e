package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestGenerateAndValidate(t *testing.T) {
	s := New("test-key", "catinci-showme")
	tok, err := s.GenerateToken("voice-agent", time.Hour)
	require.NoError(t, err)

	claims, err := s.ValidateToken(tok)
	require.NoError(t, err)
	assert.Equal(t, "voice-agent", claims.Agent)
	assert.Equal(t, "voice-agent", claims.Subject)
}

func TestValidateRejects(t *testing.T) {
	s := New("test-key", "catinci-showme")

	expired, err := s.GenerateToken("agent", -time.Minute)
	require.NoError(t, err)
	_, err = s.ValidateToken(expired)
	assert.Error(t, err, "expired")

	otherKey, err := New("other-key", "catinci-showme").GenerateToken("agent", time.Hour)
	require.NoError(t, err)
	_, err = s.ValidateToken(otherKey)
	assert.Error(t, err, "wrong key")

	otherIssuer, err := New("test-key", "someone-else").GenerateToken("agent", time.Hour)
	require.NoError(t, err)
	_, err = s.ValidateToken(otherIssuer)
	assert.ErrorContains(t, err, "issuer")

	_, err = s.ValidateToken("garbage")
	assert.Error(t, err)
}

func TestMiddleware(t *testing.T) {
	s := New("test-key", "catinci-showme")
	h := s.Middleware(zap.NewNop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	tok, err := s.GenerateToken("agent", time.Hour)
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"valid", "Bearer " + tok, http.StatusTeapot},
		{"lowercase scheme", "bearer " + tok, http.StatusTeapot},
		{"missing", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic abc", http.StatusUnauthorized},
		{"bad token", "Bearer nope", http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/show_me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			h.ServeHTTP(w, req)
			assert.Equal(t, tt.want, w.Code)
		})
	}
}
