package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"

	"github.com/taiyeoguns/gen-ai-llm-api/internal/metrics"
	"github.com/taiyeoguns/gen-ai-llm-api/internal/utils"
)

type contextKey string

const UserIDKey contextKey = "userID"

var ErrUnauthorized = errors.New("unauthorized")

// Gate decides whether a request may reach domain logic. It returns the
// caller's identity, which may be empty.
type Gate interface {
	Validate(r *http.Request) (string, error)
}

// AllowAll accepts every request.
type AllowAll struct{}

func (AllowAll) Validate(*http.Request) (string, error) {
	return "", nil
}

// JWTGate accepts HS256 tokens carrying a non-empty userId claim, read from
// the Authorization bearer header or the token cookie.
type JWTGate struct {
	secret []byte
}

func NewJWTGate(secret string) *JWTGate {
	return &JWTGate{secret: []byte(secret)}
}

func (g *JWTGate) Validate(r *http.Request) (string, error) {
	raw := bearerToken(r)
	if raw == "" {
		if c, err := r.Cookie("token"); err == nil {
			raw = c.Value
		}
	}
	if raw == "" {
		return "", ErrUnauthorized
	}

	token, err := jwt.Parse(raw, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return g.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		return "", ErrUnauthorized
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", ErrUnauthorized
	}
	userID, ok := claims["userId"].(string)
	if !ok || userID == "" {
		return "", ErrUnauthorized
	}
	return userID, nil
}

func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if len(h) > 7 && strings.EqualFold(h[:7], "bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return ""
}

// NewGate returns the JWT gate when a secret is configured and AllowAll otherwise.
func NewGate(secret string) Gate {
	if secret == "" {
		return AllowAll{}
	}
	return NewJWTGate(secret)
}

// RequireValid short-circuits rejected requests with 401. Nothing downstream
// runs for them.
func RequireValid(gate Gate, log logrus.FieldLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, err := gate.Validate(r)
			if err != nil {
				metrics.GateRejectionsTotal.Inc()
				log.WithFields(logrus.Fields{"method": r.Method, "path": r.URL.Path}).Debug("request rejected by gate")
				utils.ErrorResponse(w, http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized", nil)
				return
			}

			if userID != "" {
				r = r.WithContext(context.WithValue(r.Context(), UserIDKey, userID))
			}
			next.ServeHTTP(w, r)
		})
	}
}

func UserIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(UserIDKey).(string)
	return id, ok
}
