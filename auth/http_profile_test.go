package auth_test

import (
	"net/http"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookmarkd/bookmarkd/auth"
)

func TestMeGet(t *testing.T) {
	t.Run("returns the authenticated user", func(t *testing.T) {
		srv := newTestServer(t)
		token := srv.signup(t, "pepe@example.com", "s3cret")

		resp := srv.request(t, http.MethodGet, "/users/me", token, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		body := decodeBody(t, resp)
		assert.Equal(t, "pepe@example.com", body["email"])
		assert.NotEmpty(t, body["id"])
		assert.NotContains(t, body, "password_hash", "hash must never leave the server")
	})

	t.Run("rejects requests without a token", func(t *testing.T) {
		srv := newTestServer(t)
		srv.signup(t, "pepe@example.com", "s3cret")

		resp := srv.request(t, http.MethodGet, "/users/me", "", nil)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("rejects an expired token", func(t *testing.T) {
		srv := newTestServer(t)
		srv.signup(t, "pepe@example.com", "s3cret")

		impl := srv.auther.TokenService().(*auth.TokenServiceImpl)
		now := time.Now()
		expired, err := impl.SignClaims(&auth.JWTClaims{
			RegisteredClaims: jwt.RegisteredClaims{
				Issuer:    "bookmarkd-test",
				Subject:   "user-123",
				IssuedAt:  jwt.NewNumericDate(now.Add(-time.Hour)),
				ExpiresAt: jwt.NewNumericDate(now.Add(-45 * time.Minute)),
			},
		})
		require.NoError(t, err)

		resp := srv.request(t, http.MethodGet, "/users/me", expired, nil)
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

		body := decodeBody(t, resp)
		errBody, ok := body["error"].(map[string]any)
		require.True(t, ok)
		assert.Equal(t, "TOKEN_EXPIRED", errBody["text_code"])
	})

	t.Run("rejects a valid token whose subject no longer exists", func(t *testing.T) {
		srv := newTestServer(t)
		srv.signup(t, "pepe@example.com", "s3cret")

		identity := &MockIdentity{}
		identity.On("ID").Return("b7a8f1f0-0000-4000-8000-000000000000")
		identity.On("Email").Return("ghost@example.com")

		ghostToken, err := srv.auther.TokenService().Generate(identity)
		require.NoError(t, err)

		resp := srv.request(t, http.MethodGet, "/users/me", ghostToken, nil)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})
}

func TestUpdatePatch(t *testing.T) {
	t.Run("applies a partial update", func(t *testing.T) {
		srv := newTestServer(t)
		token := srv.signup(t, "pepe@example.com", "s3cret")

		resp := srv.request(t, http.MethodPatch, "/users", token, map[string]string{
			"first_name":   "Pepe",
			"last_name":    "Rodriguez",
			"phone_number": "+1 415 555 2671",
		})
		require.Equal(t, http.StatusOK, resp.StatusCode)

		body := decodeBody(t, resp)
		assert.Equal(t, "Pepe", body["first_name"])
		assert.Equal(t, "Rodriguez", body["last_name"])
		assert.Equal(t, "pepe@example.com", body["email"], "untouched fields keep their value")
	})

	t.Run("updates the email", func(t *testing.T) {
		srv := newTestServer(t)
		token := srv.signup(t, "pepe@example.com", "s3cret")

		resp := srv.request(t, http.MethodPatch, "/users", token, map[string]string{
			"email": "pepe2@example.com",
		})
		require.Equal(t, http.StatusOK, resp.StatusCode)

		body := decodeBody(t, resp)
		assert.Equal(t, "pepe2@example.com", body["email"])
	})

	t.Run("rejects a taken email with 403", func(t *testing.T) {
		srv := newTestServer(t)
		srv.signup(t, "first@example.com", "s3cret")
		token := srv.signup(t, "second@example.com", "s3cret")

		resp := srv.request(t, http.MethodPatch, "/users", token, map[string]string{
			"email": "first@example.com",
		})
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	})

	t.Run("rejects invalid fields with 400", func(t *testing.T) {
		srv := newTestServer(t)
		token := srv.signup(t, "pepe@example.com", "s3cret")

		tests := []struct {
			name    string
			payload map[string]string
		}{
			{"bad email", map[string]string{"email": "not-an-email"}},
			{"bad phone", map[string]string{"phone_number": "not-a-phone"}},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				resp := srv.request(t, http.MethodPatch, "/users", token, tt.payload)
				assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
			})
		}
	})

	t.Run("empty payload returns the unchanged user", func(t *testing.T) {
		srv := newTestServer(t)
		token := srv.signup(t, "pepe@example.com", "s3cret")

		resp := srv.request(t, http.MethodPatch, "/users", token, map[string]string{})
		require.Equal(t, http.StatusOK, resp.StatusCode)

		body := decodeBody(t, resp)
		assert.Equal(t, "pepe@example.com", body["email"])
	})

	t.Run("requires a token", func(t *testing.T) {
		srv := newTestServer(t)

		resp := srv.request(t, http.MethodPatch, "/users", "", map[string]string{
			"first_name": "Pepe",
		})
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})
}
