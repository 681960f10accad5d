package router

import (
	"app/internal/api/v1/handler"
	"app/internal/config"
	"app/internal/middleware"
	"app/internal/pubsub"
	"app/internal/repository"
	"app/internal/service"
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/cors"
	"github.com/rs/zerolog"
)

func New(cfg *config.Config, logger zerolog.Logger) (http.Handler, *pgxpool.Pool, error) {
	logger.Info().Str("environment", cfg.Environment).Msg("Router initializing")

	// 1. Open DB connection pool
	dsn := cfg.DBConnectionString
	// In a development environment, ensure SSL is disabled for local
	// testing. In production the connection string carries its own SSL
	// settings.
	if cfg.Environment == "development" && !strings.Contains(dsn, "sslmode") {
		separator := "?"
		if strings.Contains(dsn, "?") {
			separator = "&"
		}
		dsn += separator + "sslmode=disable"
	}

	poolCfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to parse DB connection string")
		return nil, nil, err
	}
	poolCfg.MaxConns = 25
	poolCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(context.Background(), poolCfg)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to open DB connection pool")
		return nil, nil, err
	}
	if err := pool.Ping(context.Background()); err != nil {
		logger.Error().Err(err).Msg("Failed to ping DB")
		return nil, nil, err
	}
	logger.Info().Msg("Database connection successful")

	// 2. Initialize validator
	validate := validator.New(validator.WithRequiredStructEnabled())

	// 3. Initialize credential store and event publisher. Both are
	// optional in local setups without GCP access.
	var credentials service.CredentialStore
	credentials, err = service.NewSecretManagerStore(context.Background(), cfg)
	if err != nil {
		logger.Warn().Err(err).Msg("Secret Manager unavailable; stored API keys disabled")
		credentials = service.NoopCredentialStore{}
	}

	var publisher pubsub.Publisher
	if p, err := pubsub.NewPublisher(context.Background(), cfg); err != nil {
		logger.Warn().Err(err).Msg("Pub/Sub unavailable; content-generated events disabled")
	} else {
		publisher = p
	}

	// 4. Initialize providers
	timeout := time.Duration(cfg.ProviderTimeoutSec) * time.Second
	providers := []service.Provider{
		service.NewGeminiClient(service.GeminiOptions{
			BaseURL:     cfg.GeminiBaseURL,
			Model:       cfg.GeminiModel,
			Temperature: cfg.GenerationTemp,
			MaxTokens:   cfg.GenerationMaxTokens,
			Timeout:     timeout,
		}),
		service.NewGroqClient(service.GroqOptions{
			BaseURL:     cfg.GroqBaseURL,
			Model:       cfg.GroqModel,
			Temperature: cfg.GenerationTemp,
			MaxTokens:   cfg.GenerationMaxTokens,
			Timeout:     timeout,
		}),
	}
	keyValidators := map[string]service.KeyValidator{
		service.ProviderGeneral: service.NewGeminiKeyValidator(cfg.GeminiBaseURL),
		service.ProviderFast:    service.NewGroqKeyValidator(cfg.GroqBaseURL),
	}

	// 5. Initialize repositories & services & handlers
	userRepo := repository.NewUserRepo(pool)
	planRepo := repository.NewPlanRepo(pool)
	accountRepo := repository.NewAIAccountRepo(pool)

	userSvc := service.NewUserService(userRepo)
	genSvc := service.NewGenerationService(planRepo, accountRepo, credentials, providers, publisher, cfg.ContentTopic, logger)

	userHandler := handler.NewUserHandler(userSvc, validate)
	genHandler := handler.NewGenerationHandler(genSvc, validate, logger)
	credHandler := handler.NewCredentialHandler(credentials, keyValidators, validate, logger)

	// 6. Initialize middleware
	authMiddleware := middleware.AuthMiddleware(cfg.JWTSecret)

	// 7. Create ServeMux router
	mux := http.NewServeMux()

	apiV1Mux := http.NewServeMux()
	userHandler.RegisterRoutes(apiV1Mux, authMiddleware)
	genHandler.RegisterRoutes(apiV1Mux, authMiddleware)
	credHandler.RegisterRoutes(apiV1Mux, authMiddleware)

	// Mount the API v1 routes under /v1
	mux.Handle("/v1/", http.StripPrefix("/v1", apiV1Mux))

	// Add Swagger documentation
	mux.HandleFunc("/swagger/swagger.json", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, "./docs/swagger/swagger.json")
	})
	mux.Handle("/swagger/", http.StripPrefix("/swagger/", http.FileServer(http.Dir("./docs/swagger/swagger-ui"))))

	// 8. Apply CORS middleware
	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"}, // Allow all origins for development
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	})

	return middleware.LoggerMiddleware(c.Handler(mux)), pool, nil
}
