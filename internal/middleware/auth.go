package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

const (
	// UserIDContextKey is the context key for the authenticated user's ID
	UserIDContextKey contextKey = "user_id"

	// UserRoleContextKey is the context key for the authenticated user's role
	UserRoleContextKey contextKey = "user_role"
)

// RequireUser validates the Authorization bearer token and stores the
// authenticated user's ID (token subject) and role in the request context.
// Requests without a valid token get 401.
func RequireUser(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if !strings.HasPrefix(header, "Bearer ") {
				respondUnauthorized(w, r)
				return
			}

			token, err := jwt.Parse(strings.TrimPrefix(header, "Bearer "),
				func(t *jwt.Token) (interface{}, error) {
					if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
						return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
					}
					return []byte(secret), nil
				},
				jwt.WithValidMethods([]string{"HS256"}),
			)
			if err != nil || !token.Valid {
				respondUnauthorized(w, r)
				return
			}

			claims, ok := token.Claims.(jwt.MapClaims)
			if !ok {
				respondUnauthorized(w, r)
				return
			}

			sub, err := claims.GetSubject()
			if err != nil {
				respondUnauthorized(w, r)
				return
			}
			userID, err := strconv.ParseInt(sub, 10, 64)
			if err != nil || userID <= 0 {
				respondUnauthorized(w, r)
				return
			}

			role, _ := claims["role"].(string)

			ctx := context.WithValue(r.Context(), UserIDContextKey, userID)
			ctx = context.WithValue(ctx, UserRoleContextKey, role)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAdmin gates operator-only routes. Must run after RequireUser.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if role, _ := r.Context().Value(UserRoleContextKey).(string); role != "admin" {
			respondForbidden(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// UserIDFromContext retrieves the authenticated user's ID.
// Returns 0, false on unauthenticated requests.
func UserIDFromContext(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(UserIDContextKey).(int64)
	return id, ok
}
