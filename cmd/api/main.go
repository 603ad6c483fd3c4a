package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/rafabene/avantpro-members/docs"
	"github.com/rafabene/avantpro-members/internal/domain/events"
	"github.com/rafabene/avantpro-members/internal/forms"
	httphandlers "github.com/rafabene/avantpro-members/internal/handlers/http"
	"github.com/rafabene/avantpro-members/internal/handlers/middleware"
	"github.com/rafabene/avantpro-members/internal/infrastructure/config"
	"github.com/rafabene/avantpro-members/internal/infrastructure/i18n"
	"github.com/rafabene/avantpro-members/internal/infrastructure/logging"
	"github.com/rafabene/avantpro-members/internal/infrastructure/metrics"
	"github.com/rafabene/avantpro-members/internal/infrastructure/persistence/postgres"
	"github.com/rafabene/avantpro-members/internal/infrastructure/security"
	"github.com/rafabene/avantpro-members/internal/infrastructure/session"
	"github.com/rafabene/avantpro-members/internal/services"
	"github.com/rafabene/avantpro-members/internal/views"
)

// @title        Members API
// @version      1.0
// @description  Administração de membros e funções de template da área de membros.
// @BasePath     /
func main() {
	migrateOnly := flag.Bool("migrate", false, "create the members tables and exit")
	flag.Parse()

	// Carregar configurações
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	// Inicializar logger
	logger := logging.NewSlogLogger(cfg.Logging.Level)
	logger.Info("starting members backend",
		"env", cfg.Env,
		"version", "dev",
	)

	// Conectar ao banco de dados
	db, err := postgres.NewDatabaseConnection(&cfg.Database, logger)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		log.Fatal(err)
	}

	if *migrateOnly || cfg.Database.AutoMigrate {
		if err := postgres.Migrate(db); err != nil {
			logger.Error("failed to migrate database", "error", err)
			log.Fatal(err)
		}
		logger.Info("members tables migrated")
		if *migrateOnly {
			return
		}
	}

	if missing := postgres.MissingTables(db); len(missing) > 0 {
		logger.Warn("members tables missing, admin pages will point to the install check",
			"tables", missing,
			"dbcheck", cfg.Members.DBCheckURL,
		)
	}

	// Inicializar i18n
	i18nService, err := i18n.NewService(cfg.I18n.LocalesDir, cfg.I18n.DefaultLanguage)
	if err != nil {
		logger.Error("failed to initialize i18n", "error", err)
		log.Fatal(err)
	}
	logger.Info("i18n initialized",
		"default_language", i18nService.GetDefaultLanguage(),
		"supported_languages", i18nService.GetSupportedLanguages(),
	)

	// Sessões e mensagens: Redis quando configurado, memória caso contrário
	var (
		sessions session.Store    = session.NewMemoryStore()
		flashes  session.FlashBag = session.NewMemoryFlashBag()
	)
	if cfg.Redis.URL != "" {
		redisClient, err := session.NewRedisClient(context.Background(), cfg.Redis.URL)
		if err != nil {
			logger.Error("failed to connect to redis", "error", err)
			log.Fatal(err)
		}
		defer redisClient.Close()

		sessions = session.NewRedisStore(redisClient, cfg.Redis.SessionTTL)
		flashes = session.NewRedisFlashBag(redisClient, cfg.Redis.SessionTTL)
		logger.Info("redis session store enabled")
	} else {
		logger.Warn("REDIS_URL not set, using in-memory sessions")
	}

	appMetrics := metrics.New()
	hub := httphandlers.NewEventHub(logger)

	// Eventos de conta
	dispatcher := events.NewDispatcher()
	dispatcher.Observe(events.Wildcard, hub.Observe)
	dispatcher.Observe(events.Wildcard, func(e *events.StorageEvent) {
		appMetrics.ObserveEvent(e.Name)
	})

	// Inicializar repositories
	accountRepo := postgres.NewAccountRepository(db, dispatcher)
	oauthRepo := postgres.NewOauthRepository(db)
	providerRepo := postgres.NewProviderRepository(db)
	metaRepo := postgres.NewAccountMetaRepository(db)
	uow := postgres.NewUnitOfWork(db)
	services.RegisterCascade(dispatcher, oauthRepo, providerRepo, metaRepo)

	// Inicializar services
	rolesService := services.NewRolesService(cfg.Members.Roles)
	recordsService := services.NewRecordsService(accountRepo, oauthRepo, providerRepo, metaRepo, logger)
	adminService := services.NewAdminService(
		accountRepo, oauthRepo, providerRepo, rolesService, uow, dispatcher,
		security.NewBcryptHasher(0), logger,
	)

	// Views
	formsManager := forms.NewManager(cfg.Members.Actions, i18nService)
	renderer, err := views.NewRenderer()
	if err != nil {
		logger.Error("failed to parse templates", "error", err)
		log.Fatal(err)
	}
	functions := views.NewFunctions(recordsService, formsManager, renderer, cfg.Members.Templates, i18nService, logger)

	// Inicializar handlers
	backendHandler := httphandlers.NewBackendHandler(
		adminService, recordsService, rolesService, formsManager, renderer, functions,
		flashes, appMetrics, cfg.Members, logger,
	)
	frontendHandler := httphandlers.NewFrontendHandler(renderer, functions, rolesService, logger)
	adminAuth := middleware.NewAdminAuth(
		security.NewTokenVerifier(cfg.JWT.Secret),
		cfg.Members.AdminRoles, cfg.JWT.AdminCookie, cfg.Members.DashboardURL, logger,
	)

	// Setup Gin
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.Default()

	// Middleware global para adicionar base URL ao contexto
	router.Use(func(c *gin.Context) {
		c.Set("base_url", cfg.Server.BaseURL)
		c.Next()
	})

	// Middleware CORS
	router.Use(middleware.CORS(cfg.CORS.AllowedOrigins))

	// Middleware i18n
	i18nMiddleware := middleware.NewI18nMiddleware(i18nService)
	router.Use(i18nMiddleware.DetectLanguage())

	// Sessão do membro
	router.Use(middleware.MemberSession(sessions, cfg.Members.SessionCookie, logger))

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
			"env":    cfg.Env,
		})
	})
	router.GET("/metrics", gin.WrapH(appMetrics.Handler()))

	// usa o host da requisição
	docs.SwaggerInfo.Host = ""
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Administração
	admin := router.Group(cfg.Members.AdminPath, adminAuth.RequireAdmin())
	backendHandler.RegisterRoutes(admin, hub)

	// Página pública de membros
	router.GET("/members", frontendHandler.Members)

	// HTTP Server
	srv := &http.Server{
		Addr:              cfg.Server.Host + ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Graceful shutdown
	go func() {
		logger.Info("server starting",
			"host", cfg.Server.Host,
			"port", cfg.Server.Port,
			"admin_path", cfg.Members.AdminPath,
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server failed", "error", err)
			log.Fatal(err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
	}

	logger.Info("server exited")
}
