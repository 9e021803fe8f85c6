package api

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"github.com/sirupsen/logrus"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/taiyeoguns/gen-ai-llm-api/docs"
	"github.com/taiyeoguns/gen-ai-llm-api/internal/api/handlers"
	"github.com/taiyeoguns/gen-ai-llm-api/internal/api/middleware"
	"github.com/taiyeoguns/gen-ai-llm-api/internal/config"
	"github.com/taiyeoguns/gen-ai-llm-api/internal/repositories"
)

type Deps struct {
	Settings *config.Settings
	Log      logrus.FieldLogger
	Gate     middleware.Gate
	Sessions middleware.SessionOpener
	Store    repositories.UserRepository
	DB       handlers.Pinger
}

func SetupRouter(d Deps) http.Handler {
	mainMux := http.NewServeMux()
	c := cors.New(d.Settings.CorsConfig())
	prefix := d.Settings.APIPrefix()
	docs.SwaggerInfo.BasePath = prefix

	// ---------- PUBLIC ROUTES ----------
	mainMux.HandleFunc("GET /health", handlers.Health(d.DB, d.Log))
	mainMux.Handle("GET /metrics", promhttp.Handler())
	mainMux.HandleFunc("/docs/", httpSwagger.WrapHandler)

	// ---------- PROTECTED ROUTES ----------
	// gate first, then a session for the lifetime of the handler
	protect := func(h http.HandlerFunc) http.Handler {
		return middleware.RequireValid(d.Gate, d.Log)(middleware.Sessions(d.Sessions, d.Log)(h))
	}

	users := handlers.NewUserHandler(d.Store, d.Log)
	mainMux.Handle("GET "+prefix+"/users", protect(users.ListUsers))
	mainMux.Handle("GET "+prefix+"/user/{user_id}", protect(users.GetUser))
	mainMux.Handle("POST "+prefix+"/users", protect(users.CreateUser))

	d.Log.WithField("prefix", prefix).Info("Router initialized")
	// Recovery sits inside Metrics and Logger so a recovered panic is
	// counted and logged as the 500 it was answered with.
	handler := middleware.Recovery(d.Log)(mainMux)
	handler = middleware.Metrics(handler)
	handler = c.Handler(handler)
	handler = middleware.Logger(d.Log)(handler)
	return handler
}
