package middleware

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/JonMunkholm/weaveops/internal/config"
	"github.com/JonMunkholm/weaveops/internal/core"
	"github.com/golang-jwt/jwt/v5"
)

var (
	errMissingToken = errors.New("missing token")
	errInvalidToken = errors.New("invalid token")
)

// Claims is the bearer token payload.
type Claims struct {
	TenantID string `json:"tenant_id"`
	UserID   string `json:"user_id"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// Auth returns middleware that resolves the calling core.Actor from an
// "Authorization: Bearer <jwt>" header and stores it on the request context.
//
// When cfg.Required is false, requests without a token run as an admin of
// cfg.DevTenant. A token that is present is always verified.
func Auth(cfg config.AuthConfig) func(http.Handler) http.Handler {
	secret := []byte(cfg.JWTSecret)
	dev := core.Actor{Tenant: cfg.DevTenant, UserID: "dev", Role: core.RoleAdmin}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := bearerToken(r)
			if raw == "" || (!cfg.Required && len(secret) == 0) {
				if cfg.Required {
					unauthorized(w, errMissingToken)
					return
				}
				next.ServeHTTP(w, r.WithContext(core.ContextWithActor(r.Context(), dev)))
				return
			}

			actor, err := ParseToken(secret, raw)
			if err != nil {
				slog.Warn("auth: rejected token",
					"path", r.URL.Path,
					"remote_addr", r.RemoteAddr,
					"error", err,
				)
				unauthorized(w, errInvalidToken)
				return
			}
			next.ServeHTTP(w, r.WithContext(core.ContextWithActor(r.Context(), actor)))
		})
	}
}

// ParseToken verifies an HMAC-signed token and returns its actor.
func ParseToken(secret []byte, raw string) (core.Actor, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return secret, nil
	})
	if err != nil {
		return core.Actor{}, err
	}
	if !token.Valid {
		return core.Actor{}, errInvalidToken
	}
	if strings.TrimSpace(claims.TenantID) == "" {
		return core.Actor{}, fmt.Errorf("%w: no tenant_id claim", errInvalidToken)
	}
	role := core.Role(claims.Role)
	if !core.Allows(core.Roles, role) {
		return core.Actor{}, fmt.Errorf("%w: unknown role %q", errInvalidToken, claims.Role)
	}
	return core.Actor{Tenant: claims.TenantID, UserID: claims.UserID, Role: role}, nil
}

// IssueToken signs an HS256 token for actor that expires after ttl.
func IssueToken(secret []byte, actor core.Actor, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &Claims{
		TenantID: actor.Tenant,
		UserID:   actor.UserID,
		Role:     string(actor.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   actor.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if len(h) < 7 || !strings.EqualFold(h[:7], "bearer ") {
		return ""
	}
	return strings.TrimSpace(h[7:])
}

func unauthorized(w http.ResponseWriter, err error) {
	w.Header().Set("WWW-Authenticate", `Bearer realm="weaveops"`)
	writeError(w, http.StatusUnauthorized, err)
}

// writeError writes the same JSON envelope the handlers use.
func writeError(w http.ResponseWriter, status int, err error) {
	msg := core.MapError(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"error":   msg.Message,
		"message": msg.Message,
		"action":  msg.Action,
		"code":    msg.Code,
	})
}
