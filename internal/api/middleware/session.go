package middleware

import (
	"context"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/taiyeoguns/gen-ai-llm-api/internal/repositories"
	"github.com/taiyeoguns/gen-ai-llm-api/internal/utils"
)

type SessionOpener interface {
	Open(ctx context.Context) (*repositories.Session, error)
}

// Sessions gives each request its own database session and releases it when
// the handler returns, panics, or the client goes away.
func Sessions(opener SessionOpener, log logrus.FieldLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			s, err := opener.Open(r.Context())
			if err != nil {
				log.WithError(err).Error("could not open database session")
				utils.ErrorResponse(w, http.StatusInternalServerError, "STORAGE_ERROR", "Internal server error", nil)
				return
			}
			defer func() {
				if err := s.Close(); err != nil {
					log.WithError(err).Warn("closing database session")
				}
			}()

			next.ServeHTTP(w, r.WithContext(repositories.WithSession(r.Context(), s)))
		})
	}
}
