package middleware

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/olusegun-dev/bankcore/internal/handlers/render"
	"github.com/olusegun-dev/bankcore/internal/handlers/userctx"
)

// accessClaims are the claims of the access token issued by the external
// auth service. Registration, login and token issuance all live there;
// this service only verifies the signature and reads the subject.
type accessClaims struct {
	jwt.RegisteredClaims
	UserID uuid.UUID `json:"uid"`
	Email  string    `json:"email"`
}

// AuthMiddleware verifies the bearer token and stores the authenticated
// user in the request context
func AuthMiddleware(secretKey string) func(http.Handler) http.Handler {
	keyFunc := func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secretKey), nil
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, found := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !found || raw == "" {
				render.ServiceError(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			var claims accessClaims
			_, err := jwt.ParseWithClaims(raw, &claims, keyFunc, jwt.WithValidMethods([]string{"HS256"}))
			if err != nil || claims.UserID == uuid.Nil {
				render.ServiceError(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			ctx := userctx.New(r.Context(), userctx.User{ID: claims.UserID, Email: claims.Email})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
