package server

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"

	"example.com/trip-dashboard/backend/internal/auth"
	"example.com/trip-dashboard/backend/internal/bill"
	"example.com/trip-dashboard/backend/internal/chat"
	"example.com/trip-dashboard/backend/internal/config"
	"example.com/trip-dashboard/backend/internal/handlers"
	"example.com/trip-dashboard/backend/internal/itinerary"
	"example.com/trip-dashboard/backend/internal/metrics"
	"example.com/trip-dashboard/backend/internal/notifications"
	"example.com/trip-dashboard/backend/internal/places"
	"example.com/trip-dashboard/backend/internal/prediction"
	"example.com/trip-dashboard/backend/internal/repository"
	"example.com/trip-dashboard/backend/internal/trip"
)

// New собирает HTTP-сервер Echo с роутами и зависимостями.
func New(cfg config.Config, logger *slog.Logger, headers repository.HeaderStore) *echo.Echo {
	if logger == nil {
		logger = slog.Default()
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = NewValidator()

	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(RequestLogger(logger))

	m := metrics.New()
	hub := notifications.NewHub()
	store := trip.NewStore(hub, cfg.Session.IdleTTL)
	tokenManager := auth.NewTokenManager(cfg.Session.JWTSecret, cfg.Session.JWTIssuer, cfg.Session.TokenTTL)

	predictor := prediction.NewClient(cfg.ML.BaseURL, cfg.ML.PredictionPaths, cfg.ML.PredictionTimeout)
	predictor.Metrics = m

	bills := bill.NewClient(cfg.ML.BaseURL, cfg.ML.BillTimeout)
	bills.Metrics = m

	chatClient := chat.NewClient(cfg.ML.ChatURLs, cfg.ML.ChatTimeout)
	chatClient.Metrics = m
	chatService := chat.NewService(chatClient, cfg.Session.IdleTTL)
	chatService.Metrics = m

	suggester := newPlacesService(cfg.Places)
	suggester.Metrics = m

	itineraryService := itinerary.NewService(store, suggester, bills)

	registerRoutes(e, routeHandlers{
		health:    handlers.NewHealthHandler(store, cfg.Storage.Driver),
		sessions:  handlers.NewSessionHandler(store, tokenManager, m),
		trip:      handlers.NewTripHandler(store),
		plan:      handlers.NewPlanHandler(store, predictor),
		itinerary: handlers.NewItineraryHandler(itineraryService),
		budget:    handlers.NewBudgetHandler(store),
		chat:      handlers.NewChatHandler(chatService),
		header:    handlers.NewHeaderHandler(headers),
		stream:    handlers.NewStreamHandler(hub),
		metrics:   echo.WrapHandler(m.Handler()),
	},
		auth.SessionMiddleware(tokenManager),
		rateLimiter(cfg.RateLimit.SessionsPerMinute, cfg.RateLimit.SessionsBurst),
		rateLimiter(cfg.RateLimit.UpstreamPerMinute, cfg.RateLimit.UpstreamBurst),
	)

	return e
}

func newPlacesService(cfg config.PlacesConfig) *places.Service {
	geocoder := places.FallbackGeocoder{
		places.NewNominatimGeocoder(cfg.NominatimURL, cfg.UserAgent, cfg.Timeout),
		places.NewPhotonGeocoder(cfg.PhotonURL, cfg.UserAgent, cfg.Timeout),
	}
	overpass := places.NewOverpassClient(cfg.OverpassURL, cfg.UserAgent, cfg.Timeout)
	google := places.NewGoogleClient(cfg.GoogleAPIKey, cfg.GoogleURL, cfg.Timeout)
	return places.NewService(geocoder, overpass, google, cfg.Radius, cfg.Limit)
}

// NewHTTPServer создает net/http сервер с заданными таймаутами.
func NewHTTPServer(cfg config.ServerConfig, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      handler,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}
}

// RequestLogger пишет по одной записи slog на запрос; 5xx на уровне error.
func RequestLogger(logger *slog.Logger) echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:      true,
		LogStatus:   true,
		LogMethod:   true,
		LogLatency:  true,
		LogRemoteIP: true,
		LogError:    true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			attrs := []slog.Attr{
				slog.String("method", v.Method),
				slog.String("uri", v.URI),
				slog.Int("status", v.Status),
				slog.String("remote_ip", v.RemoteIP),
				slog.Duration("latency", v.Latency),
			}

			if v.Error != nil {
				attrs = append(attrs, slog.String("error", v.Error.Error()))
			}

			msg := "request completed"
			if v.Status >= http.StatusInternalServerError {
				logger.LogAttrs(c.Request().Context(), slog.LevelError, msg, attrs...)
				return nil
			}

			logger.LogAttrs(c.Request().Context(), slog.LevelInfo, msg, attrs...)
			return nil
		},
	})
}

func rateLimiter(perMinute, burst int) echo.MiddlewareFunc {
	limit := rate.Limit(float64(perMinute) / 60.0)
	store := middleware.NewRateLimiterMemoryStoreWithConfig(middleware.RateLimiterMemoryStoreConfig{
		Rate:      limit,
		Burst:     burst,
		ExpiresIn: time.Minute,
	})

	return middleware.RateLimiter(store)
}
