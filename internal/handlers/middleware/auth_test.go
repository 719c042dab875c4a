package middleware

import (
	"testing"
	"time"

	"io"
	"net/http"
	"net/http/httptest"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/olusegun-dev/bankcore/internal/handlers/userctx"
)

func TestAuthMiddleware(t *testing.T) {
	const secretKey = "test-secret"

	// Simple handler that writes the authenticated user id to response.
	// The middleware must either set the user or reject the request.
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := userctx.FromContext(r.Context())
		require.True(t, ok)

		w.WriteHeader(http.StatusOK)
		_, err := w.Write([]byte(user.ID.String()))
		require.NoError(t, err, "should write user id to response")
	})

	signToken := func(t *testing.T, method jwt.SigningMethod, key any, claims jwt.MapClaims) string {
		t.Helper()
		signed, err := jwt.NewWithClaims(method, claims).SignedString(key)
		require.NoError(t, err)
		return signed
	}

	get := func(t *testing.T, url string, authorization string) (*http.Response, string) {
		t.Helper()

		req, err := http.NewRequest(http.MethodGet, url, nil)
		require.NoError(t, err)
		if authorization != "" {
			req.Header.Set("Authorization", authorization)
		}

		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err, "should make request to test server")
		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err, "should read response body")
		defer resp.Body.Close() // nolint:errcheck

		return resp, string(body)
	}

	srv := httptest.NewServer(AuthMiddleware(secretKey)(handler))
	defer srv.Close()

	t.Run("auth ok", func(t *testing.T) {
		userID := uuid.New()
		token := signToken(t, jwt.SigningMethodHS256, []byte(secretKey), jwt.MapClaims{
			"uid":   userID.String(),
			"email": "user@bank.test",
			"exp":   jwt.NewNumericDate(time.Now().Add(time.Hour)),
		})

		resp, body := get(t, srv.URL+"/test", "Bearer "+token)

		require.Equalf(t, http.StatusOK, resp.StatusCode, "should return status OK. Resp: %s", body)
		require.Equal(t, userID.String(), body, "should return user id in response")
	})

	t.Run("no token", func(t *testing.T) {
		resp, body := get(t, srv.URL+"/test", "")

		require.Equalf(t, http.StatusUnauthorized, resp.StatusCode, "should return status Unauthorized. Resp: %s", body)
		require.JSONEq(t,
			`{
				"error": "service_error",
				"message": "Unauthorized"
			}`,
			body,
		)
	})

	t.Run("wrong signing key", func(t *testing.T) {
		token := signToken(t, jwt.SigningMethodHS256, []byte("other-secret"), jwt.MapClaims{
			"uid": uuid.NewString(),
			"exp": jwt.NewNumericDate(time.Now().Add(time.Hour)),
		})

		resp, _ := get(t, srv.URL+"/test", "Bearer "+token)

		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("expired token", func(t *testing.T) {
		token := signToken(t, jwt.SigningMethodHS256, []byte(secretKey), jwt.MapClaims{
			"uid": uuid.NewString(),
			"exp": jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		})

		resp, _ := get(t, srv.URL+"/test", "Bearer "+token)

		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("token without subject", func(t *testing.T) {
		token := signToken(t, jwt.SigningMethodHS256, []byte(secretKey), jwt.MapClaims{
			"exp": jwt.NewNumericDate(time.Now().Add(time.Hour)),
		})

		resp, _ := get(t, srv.URL+"/test", "Bearer "+token)

		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("alg none rejected", func(t *testing.T) {
		token := signToken(t, jwt.SigningMethodNone, jwt.UnsafeAllowNoneSignatureType, jwt.MapClaims{
			"uid": uuid.NewString(),
			"exp": jwt.NewNumericDate(time.Now().Add(time.Hour)),
		})

		resp, _ := get(t, srv.URL+"/test", "Bearer "+token)

		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})
}
