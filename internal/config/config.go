package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	StorageSQLite   = "sqlite"
	StoragePostgres = "postgres"
)

type Config struct {
	Env       string
	Server    ServerConfig
	Storage   StorageConfig
	Database  DatabaseConfig
	SQLite    SQLiteConfig
	Session   SessionConfig
	ML        MLConfig
	Places    PlacesConfig
	RateLimit RateLimitConfig
}

type ServerConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

type StorageConfig struct {
	Driver string
}

type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	Name            string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxIdleTime time.Duration
	ConnMaxLifetime time.Duration
}

type SQLiteConfig struct {
	Path string
}

type SessionConfig struct {
	JWTSecret string
	JWTIssuer string
	TokenTTL  time.Duration
	IdleTTL   time.Duration
}

type MLConfig struct {
	BaseURL           string
	PredictionPaths   []string
	ChatURLs          []string
	PredictionTimeout time.Duration
	BillTimeout       time.Duration
	ChatTimeout       time.Duration
}

type PlacesConfig struct {
	NominatimURL string
	PhotonURL    string
	OverpassURL  string
	GoogleURL    string
	GoogleAPIKey string
	UserAgent    string
	Radius       int
	Limit        int
	Timeout      time.Duration
}

type RateLimitConfig struct {
	SessionsPerMinute int
	SessionsBurst     int
	UpstreamPerMinute int
	UpstreamBurst     int
}

// Load загружает конфигурацию приложения из окружения и .env.
func Load() (Config, error) {
	cfg := Config{}

	if err := loadEnv(); err != nil {
		return cfg, err
	}

	cfg.Env = getEnv("APP_ENV", "local")

	server, err := loadServer("SERVER", 8080)
	if err != nil {
		return cfg, err
	}
	cfg.Server = server

	cfg.Storage = StorageConfig{Driver: strings.ToLower(getEnv("STORAGE_DRIVER", StorageSQLite))}
	cfg.SQLite = SQLiteConfig{Path: getEnv("SQLITE_PATH", "data/trip.db")}

	dbPort, err := parseIntEnv("DB_PORT", 5432)
	if err != nil {
		return cfg, err
	}

	maxOpenConns, err := parseIntEnv("DB_MAX_OPEN_CONNS", 10)
	if err != nil {
		return cfg, err
	}

	maxIdleConns, err := parseIntEnv("DB_MAX_IDLE_CONNS", 5)
	if err != nil {
		return cfg, err
	}

	connMaxIdleTime, err := parseDurationEnv("DB_CONN_MAX_IDLE_TIME", 5*time.Minute)
	if err != nil {
		return cfg, err
	}

	connMaxLifetime, err := parseDurationEnv("DB_CONN_MAX_LIFETIME", 30*time.Minute)
	if err != nil {
		return cfg, err
	}

	cfg.Database = DatabaseConfig{
		Host:            getEnv("DB_HOST", "localhost"),
		Port:            dbPort,
		User:            getEnv("DB_USER", "trip"),
		Password:        getEnv("DB_PASSWORD", "trip"),
		Name:            getEnv("DB_NAME", "trip_dashboard"),
		SSLMode:         getEnv("DB_SSLMODE", "disable"),
		MaxOpenConns:    maxOpenConns,
		MaxIdleConns:    maxIdleConns,
		ConnMaxIdleTime: connMaxIdleTime,
		ConnMaxLifetime: connMaxLifetime,
	}

	tokenTTL, err := parseDurationEnv("SESSION_TOKEN_TTL", 24*time.Hour)
	if err != nil {
		return cfg, err
	}

	idleTTL, err := parseDurationEnv("SESSION_IDLE_TTL", 12*time.Hour)
	if err != nil {
		return cfg, err
	}

	cfg.Session = SessionConfig{
		JWTSecret: getEnv("JWT_SECRET", ""),
		JWTIssuer: getEnv("JWT_ISSUER", "trip-dashboard"),
		TokenTTL:  tokenTTL,
		IdleTTL:   idleTTL,
	}

	predictionTimeout, err := parseDurationEnv("ML_PREDICTION_TIMEOUT", 8*time.Second)
	if err != nil {
		return cfg, err
	}

	billTimeout, err := parseDurationEnv("ML_BILL_TIMEOUT", 20*time.Second)
	if err != nil {
		return cfg, err
	}

	chatTimeout, err := parseDurationEnv("CHAT_TIMEOUT", 3500*time.Millisecond)
	if err != nil {
		return cfg, err
	}

	mlBaseURL := strings.TrimRight(getEnv("ML_API_URL", "http://localhost:5000"), "/")
	chatURLs := parseCSVEnv("CHATBOT_API_URLS")
	if mlBaseURL != "" {
		chatURLs = append(chatURLs, mlBaseURL+"/chatbot/query")
	}

	cfg.ML = MLConfig{
		BaseURL:           mlBaseURL,
		PredictionPaths:   parseCSVEnv("ML_PREDICTION_PATHS"),
		ChatURLs:          chatURLs,
		PredictionTimeout: predictionTimeout,
		BillTimeout:       billTimeout,
		ChatTimeout:       chatTimeout,
	}

	radius, err := parseIntEnv("PLACES_RADIUS_METERS", 5000)
	if err != nil {
		return cfg, err
	}

	limit, err := parseIntEnv("PLACES_LIMIT", 10)
	if err != nil {
		return cfg, err
	}

	placesTimeout, err := parseDurationEnv("PLACES_TIMEOUT", 25*time.Second)
	if err != nil {
		return cfg, err
	}

	cfg.Places = PlacesConfig{
		NominatimURL: getEnv("NOMINATIM_URL", "https://nominatim.openstreetmap.org"),
		PhotonURL:    getEnv("PHOTON_URL", "https://photon.komoot.io"),
		OverpassURL:  getEnv("OVERPASS_URL", "https://overpass-api.de/api/interpreter"),
		GoogleURL:    getEnv("GOOGLE_PLACES_URL", "https://maps.googleapis.com/maps/api/place"),
		GoogleAPIKey: getEnv("GOOGLE_MAPS_API_KEY", ""),
		UserAgent:    getEnv("PLACES_USER_AGENT", "trip-dashboard/1.0"),
		Radius:       radius,
		Limit:        limit,
		Timeout:      placesTimeout,
	}

	sessionsPerMinute, err := parseIntEnv("SESSION_RATE_LIMIT_PER_MINUTE", 30)
	if err != nil {
		return cfg, err
	}

	sessionsBurst, err := parseIntEnv("SESSION_RATE_LIMIT_BURST", 10)
	if err != nil {
		return cfg, err
	}

	upstreamPerMinute, err := parseIntEnv("UPSTREAM_RATE_LIMIT_PER_MINUTE", 60)
	if err != nil {
		return cfg, err
	}

	upstreamBurst, err := parseIntEnv("UPSTREAM_RATE_LIMIT_BURST", 20)
	if err != nil {
		return cfg, err
	}

	cfg.RateLimit = RateLimitConfig{
		SessionsPerMinute: sessionsPerMinute,
		SessionsBurst:     sessionsBurst,
		UpstreamPerMinute: upstreamPerMinute,
		UpstreamBurst:     upstreamBurst,
	}

	if err := cfg.validate(); err != nil {
		return cfg, err
	}

	return cfg, nil
}

// DSN возвращает строку подключения к базе данных.
func (c DatabaseConfig) DSN() string {
	user := url.UserPassword(c.User, c.Password)
	dsn := url.URL{
		Scheme: "postgres",
		User:   user,
		Host:   fmt.Sprintf("%s:%d", c.Host, c.Port),
		Path:   c.Name,
	}

	query := url.Values{}
	query.Set("sslmode", c.SSLMode)
	return dsn.String() + "?" + query.Encode()
}

func (c Config) validate() error {
	if c.Server.Port <= 0 {
		return fmt.Errorf("SERVER_PORT must be greater than 0")
	}

	switch c.Storage.Driver {
	case StorageSQLite:
		if c.SQLite.Path == "" {
			return fmt.Errorf("SQLITE_PATH is required")
		}
	case StoragePostgres:
		if c.Database.Host == "" {
			return fmt.Errorf("DB_HOST is required")
		}
		if c.Database.User == "" {
			return fmt.Errorf("DB_USER is required")
		}
		if c.Database.Name == "" {
			return fmt.Errorf("DB_NAME is required")
		}
		if c.Database.MaxIdleConns > c.Database.MaxOpenConns {
			return fmt.Errorf("DB_MAX_IDLE_CONNS cannot exceed DB_MAX_OPEN_CONNS")
		}
	default:
		return fmt.Errorf("STORAGE_DRIVER must be %q or %q", StorageSQLite, StoragePostgres)
	}

	if c.Session.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}

	if c.ML.BaseURL == "" {
		return fmt.Errorf("ML_API_URL is required")
	}

	return nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}

	return fallback
}

func parseIntEnv(key string, fallback int) (int, error) {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback, nil
	}

	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", key, err)
	}

	if parsed <= 0 {
		return 0, fmt.Errorf("%s must be greater than 0", key)
	}

	return parsed, nil
}

func parseDurationEnv(key string, fallback time.Duration) (time.Duration, error) {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback, nil
	}

	parsed, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be a duration: %w", key, err)
	}

	if parsed <= 0 {
		return 0, fmt.Errorf("%s must be greater than 0", key)
	}

	return parsed, nil
}

func parseCSVEnv(key string) []string {
	value, ok := os.LookupEnv(key)
	if !ok {
		return nil
	}

	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed == "" {
			continue
		}
		out = append(out, trimmed)
	}
	return out
}

func loadEnv() error {
	if envFile := os.Getenv("ENV_FILE"); envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return fmt.Errorf("load env file %s: %w", envFile, err)
		}
		return nil
	}

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("load .env: %w", err)
	}

	return nil
}
