package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/joeshaw/envdecode"
	"github.com/joho/godotenv"
	"github.com/rs/cors"
)

// DatabaseScheme prefixes every connection string built from components.
const DatabaseScheme = "postgresql"

// Settings is resolved once at process start and passed to every component
// that needs it. It is never mutated after Load returns.
type Settings struct {
	Version string `env:"VERSION,default=v1"`
	Debug   bool   `env:"DEBUG,default=false"`
	Port    string `env:"PORT,default=8080"`

	PostgresUser        string `env:"POSTGRES_USER"`
	PostgresPassword    string `env:"POSTGRES_PASSWORD"`
	PostgresHost        string `env:"POSTGRES_HOST"`
	PostgresPort        string `env:"POSTGRES_PORT"`
	PostgresDB          string `env:"POSTGRES_DB"`
	DatabaseURLOverride string `env:"DATABASE_URL"`
	DBMaxOpenConns      int    `env:"DB_MAX_OPEN_CONNS,default=25"`
	DBMaxIdleConns      int    `env:"DB_MAX_IDLE_CONNS,default=5"`

	OllamaDomain          string `env:"OLLAMA_DOMAIN,default=localhost"`
	OllamaPort            string `env:"OLLAMA_PORT,default=11434"`
	OllamaGenerationModel string `env:"OLLAMA_GENERATION_MODEL"`
	OllamaEmbeddingModel  string `env:"OLLAMA_EMBEDDING_MODEL"`
	OllamaHostOverride    string `env:"OLLAMA_HOST"`

	LogLevel string `env:"LOG_LEVEL,default=debug"`
	LogDir   string `env:"LOG_DIR,default=logs"`

	JWTSecret          string `env:"JWT_SECRET"`
	CORSAllowedOrigins string `env:"CORS_ALLOWED_ORIGINS,default=http://localhost:5173"`

	// Derived by Load.
	DatabaseURL string
	OllamaHost  string
}

// ConfigurationError reports a setting that cannot be resolved. It is fatal:
// the process must not start serving when Load returns one.
type ConfigurationError struct {
	Field string
	Err   error
}

func (e *ConfigurationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("configuration: %v", e.Err)
	}
	return fmt.Sprintf("configuration: %s: %v", e.Field, e.Err)
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

// Load reads envFile (".env" when empty) into the process environment without
// overriding variables that are already set, decodes the environment into
// Settings and derives the composite values.
func Load(envFile string) (*Settings, error) {
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, &ConfigurationError{Field: "ENV_FILE", Err: err}
	}

	// StrictDecode reports unparsable values instead of zeroing the field.
	var s Settings
	if err := envdecode.StrictDecode(&s); err != nil && !errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
		return nil, &ConfigurationError{Err: err}
	}

	dsn, err := s.buildDatabaseURL()
	if err != nil {
		return nil, err
	}
	s.DatabaseURL = dsn

	s.OllamaHost = s.buildOllamaHost()

	return &s, nil
}

// buildDatabaseURL returns the override verbatim when present. The port is
// only parsed when the URL has to be assembled from components.
func (s *Settings) buildDatabaseURL() (string, error) {
	if s.DatabaseURLOverride != "" {
		return s.DatabaseURLOverride, nil
	}

	port, err := strconv.Atoi(strings.TrimSpace(s.PostgresPort))
	if err != nil {
		return "", &ConfigurationError{Field: "POSTGRES_PORT", Err: fmt.Errorf("must be an integer, got %q", s.PostgresPort)}
	}

	u := url.URL{
		Scheme: DatabaseScheme,
		Host:   net.JoinHostPort(s.PostgresHost, strconv.Itoa(port)),
		Path:   "/" + s.PostgresDB,
	}
	if s.PostgresPassword != "" {
		u.User = url.UserPassword(s.PostgresUser, s.PostgresPassword)
	} else if s.PostgresUser != "" {
		u.User = url.User(s.PostgresUser)
	}
	return u.String(), nil
}

// buildOllamaHost joins domain and port as given.
func (s *Settings) buildOllamaHost() string {
	if s.OllamaHostOverride != "" {
		return s.OllamaHostOverride
	}
	return "http://" + s.OllamaDomain + ":" + s.OllamaPort
}

// APIPrefix is the mount point of the versioned routes, e.g. "/api/v1".
func (s *Settings) APIPrefix() string {
	return "/api/" + strings.Trim(s.Version, "/")
}

func (s *Settings) CorsConfig() cors.Options {
	var origins []string
	for _, o := range strings.Split(s.CORSAllowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	}
}

// EnvFile returns the dotenv path named by ENV_FILE, if any.
func EnvFile() string {
	return os.Getenv("ENV_FILE")
}
