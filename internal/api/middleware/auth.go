package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	"eventhub/internal/common"
	"eventhub/internal/common/security"
	"eventhub/internal/domain/model"
	"eventhub/internal/platform/cache"

	"github.com/go-chi/jwtauth/v5"
)

type contextKey string

const (
	UserIDCtxKey      contextKey = "userID"
	UserRoleCtxKey    contextKey = "userRole"
	TokenIDCtxKey     contextKey = "tokenID"
	TokenExpiryCtxKey contextKey = "tokenExpiry"
)

// Authenticator resolves the caller's identity from the verified token and
// rejects tokens revoked by logout. It is the Identity Gate's HTTP face;
// services still receive the identity explicitly.
func Authenticator(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, claims, err := jwtauth.FromContext(r.Context()) // Extracts token from Authorization header

		if err != nil {
			if strings.Contains(err.Error(), "token not found") || token == nil {
				common.RespondWithError(w, http.StatusUnauthorized, "Authorization token required")
			} else {
				common.RespondWithError(w, http.StatusUnauthorized, "Invalid token: "+err.Error())
			}
			return
		}

		if token == nil {
			common.RespondWithError(w, http.StatusUnauthorized, "Invalid token")
			return
		}

		userID, err := security.GetUserIDFromClaims(claims)
		if err != nil {
			common.RespondWithError(w, http.StatusUnauthorized, "Invalid token claims: "+err.Error())
			return
		}
		userRole, err := security.GetUserRoleFromClaims(claims)
		if err != nil {
			common.RespondWithError(w, http.StatusUnauthorized, "Invalid token claims: "+err.Error())
			return
		}

		ctx := r.Context()
		if jti, err := security.GetTokenIDFromClaims(claims); err == nil {
			revoked, err := cache.IsTokenRevoked(ctx, jti)
			if err != nil {
				common.RespondWithError(w, http.StatusServiceUnavailable, "Could not verify session")
				return
			}
			if revoked {
				common.RespondWithError(w, http.StatusUnauthorized, "Token has been revoked")
				return
			}
			ctx = context.WithValue(ctx, TokenIDCtxKey, jti)
			if exp, err := security.GetExpiryFromClaims(claims); err == nil {
				ctx = context.WithValue(ctx, TokenExpiryCtxKey, exp)
			}
		}

		ctx = context.WithValue(ctx, UserIDCtxKey, userID)
		ctx = context.WithValue(ctx, UserRoleCtxKey, userRole)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func AdminOnly(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		role, ok := r.Context().Value(UserRoleCtxKey).(string)
		if !ok || role != model.RoleAdmin {
			common.RespondWithError(w, http.StatusForbidden, "Admin access required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// GetIdentityFromContext returns the caller identity resolved by
// Authenticator.
func GetIdentityFromContext(ctx context.Context) (model.Identity, bool) {
	userID, ok := ctx.Value(UserIDCtxKey).(string)
	if !ok {
		return model.Identity{}, false
	}
	role, ok := ctx.Value(UserRoleCtxKey).(string)
	if !ok {
		return model.Identity{}, false
	}
	return model.Identity{UserID: userID, Role: role}, true
}

// GetTokenFromContext returns the token id and expiry, used by logout.
func GetTokenFromContext(ctx context.Context) (string, time.Time, bool) {
	jti, ok := ctx.Value(TokenIDCtxKey).(string)
	if !ok {
		return "", time.Time{}, false
	}
	exp, ok := ctx.Value(TokenExpiryCtxKey).(time.Time)
	if !ok {
		return "", time.Time{}, false
	}
	return jti, exp, true
}
