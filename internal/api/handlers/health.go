package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/taiyeoguns/gen-ai-llm-api/internal/utils"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthResponse struct {
	Status string `json:"status"`
}

// Health reports 503 while the database cannot be reached.
func Health(db Pinger, log logrus.FieldLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := db.Ping(ctx); err != nil {
			log.WithError(err).Warn("health check: database unreachable")
			utils.JSONResponse(w, http.StatusServiceUnavailable, HealthResponse{Status: "unavailable"})
			return
		}
		utils.JSONResponse(w, http.StatusOK, HealthResponse{Status: "ok"})
	}
}
