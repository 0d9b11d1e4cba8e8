package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	appAuth "github.com/parivartan/platform-api/internal/app/auth"
	appControllers "github.com/parivartan/platform-api/internal/app/controllers"
	appMigrations "github.com/parivartan/platform-api/internal/app/migrations"
	appRepos "github.com/parivartan/platform-api/internal/app/repositories"
	appRoutes "github.com/parivartan/platform-api/internal/app/routes"
	appServices "github.com/parivartan/platform-api/internal/app/services"
	"github.com/parivartan/platform-api/internal/config"
	"github.com/parivartan/platform-api/internal/db"
	appMiddleware "github.com/parivartan/platform-api/internal/middleware"
	pkgAuth "github.com/parivartan/platform-api/internal/pkg/auth"
	"github.com/parivartan/platform-api/internal/pkg/cache"
	"github.com/parivartan/platform-api/internal/pkg/email"
	"github.com/parivartan/platform-api/internal/pkg/errreport"
	"github.com/parivartan/platform-api/internal/pkg/filestorage"
	"github.com/parivartan/platform-api/internal/pkg/functions"
	"github.com/parivartan/platform-api/internal/pkg/logger"
	"github.com/parivartan/platform-api/internal/pkg/queue"
	"github.com/parivartan/platform-api/internal/pkg/websocket"
	"github.com/parivartan/platform-api/internal/seed"
)

// Dependencies holds all the application dependencies
type Dependencies struct {
	Repos          *appRepos.Repositories
	Services       *appServices.Services
	Controllers    *appRoutes.Controllers
	JWTService     *pkgAuth.JWTService
	AuthzService   *appAuth.AuthorizationService
	AuthMiddleware *appMiddleware.AuthMiddleware
	RateLimiter    *appMiddleware.RateLimiter
	FileStorage    *filestorage.LocalStorage
	Functions      *functions.Client
	EmailSender    email.Sender
	Reporter       errreport.Reporter

	// Optional infrastructure; nil when not configured or unreachable
	Redis *redis.Client
	Queue *queue.RabbitMQ

	Hub       *websocket.Hub
	Relay     *websocket.RedisRelay
	WSHandler *websocket.Handler

	Logger zerolog.Logger
	cfg    *config.Config
}

// LoadConfigAndSetupLogger loads configuration and initializes the logger.
func LoadConfigAndSetupLogger() (*config.Config, zerolog.Logger, error) {
	configPath := filepath.Join("configs", "config.yaml")
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load configuration")
		return nil, zerolog.Logger{}, err
	}

	logLevel := logger.ParseLevel(cfg.Logging.Level)
	lgr := logger.Configure(logger.Config{
		Level:  logLevel,
		Pretty: strings.ToLower(cfg.Logging.Format) == "text",
	})

	lgr.Info().Str("logLevel", string(logLevel)).Str("logFormat", cfg.Logging.Format).Msg("Logger configured")
	return cfg, lgr, nil
}

// SetupDatabase establishes the database connection, runs migrations and seeds the super admin.
func SetupDatabase(cfg *config.Config, lgr zerolog.Logger) (*pgxpool.Pool, error) {
	lgr.Info().Msg("Establishing database connection...")
	database, err := db.NewPostgresDB(cfg)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to connect to database")
		return nil, err
	}
	dbPool := database.Pool
	lgr.Info().Msg("Database connection successfully established.")

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	migrationsDir := cfg.Server.MigrationsDir
	if _, err := os.Stat(migrationsDir); os.IsNotExist(err) {
		lgr.Error().Str("path", migrationsDir).Msg("Migrations directory not found")
		dbPool.Close()
		return nil, fmt.Errorf("migrations directory not found at %s: %w", migrationsDir, err)
	}

	lgr.Info().Str("path", migrationsDir).Msg("Running database migrations...")
	migrator := appMigrations.NewMigrator(dbPool, lgr)
	if err := migrator.MigrateFromDirectory(ctx, migrationsDir); err != nil {
		lgr.Error().Err(err).Msg("Database migration error")
		dbPool.Close()
		return nil, fmt.Errorf("database migrations failed: %w", err)
	}
	lgr.Info().Msg("Database migrations successfully applied.")

	userRepo := appRepos.NewUserRepository(dbPool)
	if err := seed.EnsureSuperAdmin(ctx, userRepo, cfg.Seed.SuperAdminEmail, cfg.Seed.SuperAdminPassword, lgr); err != nil {
		// A failed seed must not block startup
		lgr.Error().Err(err).Msg("Failed to seed super admin, proceeding anyway...")
	}

	return dbPool, nil
}

// BuildDependencies initializes infrastructure clients, repositories, services and controllers.
// baseCtx bounds the lifetime of websocket client goroutines.
func BuildDependencies(baseCtx context.Context, cfg *config.Config, dbPool *pgxpool.Pool, lgr zerolog.Logger) (*Dependencies, error) {
	deps := &Dependencies{Logger: lgr, cfg: cfg}
	deps.Repos = appRepos.NewRepositories(dbPool)

	var err error
	fileStorageBaseURL := strings.TrimRight(cfg.Server.PublicBaseURL, "/") + "/uploads"
	deps.FileStorage, err = filestorage.NewLocalStorage(cfg.Server.StoragePath, fileStorageBaseURL)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to initialize file storage")
		return nil, fmt.Errorf("failed to initialize file storage: %w", err)
	}

	// --- Redis: cache, realtime relay and rate limiting ---
	var appCache cache.Cache = cache.Noop{}
	if cfg.Redis.Enabled {
		deps.Redis, err = cache.NewRedisClient(baseCtx, cache.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			lgr.Warn().Err(err).Msg("Redis unavailable, running without cache, relay and rate limits")
		} else {
			appCache = cache.NewRedisCache(deps.Redis, "parivartan", config.Duration(cfg.Redis.CacheTTL, time.Minute))
			lgr.Info().Str("addr", cfg.Redis.Addr).Msg("Redis connected")
		}
	}

	deps.Hub = websocket.NewHub(logger.Component("realtime"))
	var publisher websocket.Publisher = deps.Hub
	if deps.Redis != nil {
		deps.Relay = websocket.NewRedisRelay(deps.Hub, deps.Redis, websocket.DefaultRelayChannel, logger.Component("relay"))
		publisher = deps.Relay
	}

	deps.RateLimiter = appMiddleware.NewRateLimiter(appMiddleware.RateLimitConfig{
		Enabled:        cfg.RateLimit.Enabled,
		Capacity:       cfg.RateLimit.Capacity,
		RefillTokens:   cfg.RateLimit.RefillTokens,
		RefillInterval: config.Duration(cfg.RateLimit.RefillInterval, time.Second),
		Prefix:         cfg.RateLimit.Prefix,
	}, deps.Redis)

	// --- Serverless functions, email and error reporting ---
	deps.Functions = functions.NewClient(functions.Config{
		BaseURL: cfg.Functions.BaseURL,
		APIKey:  cfg.Functions.APIKey,
		Timeout: config.Duration(cfg.Functions.Timeout, 15*time.Second),
	})

	deps.EmailSender = email.NewSender(email.Config{
		Provider:     cfg.Email.Provider,
		FromName:     cfg.Email.FromName,
		FromEmail:    cfg.Email.FromEmail,
		SMTPHost:     cfg.Email.SMTPHost,
		SMTPPort:     cfg.Email.SMTPPort,
		SMTPUsername: cfg.Email.SMTPUsername,
		SMTPPassword: cfg.Email.SMTPPassword,
		SMTPUseTLS:   cfg.Email.SMTPUseTLS,
		SendgridKey:  cfg.Email.SendgridKey,
	}, deps.Functions, logger.Component("email"))

	var jobs email.JobPublisher
	if cfg.RabbitMQ.Enabled {
		deps.Queue, err = queue.NewRabbitMQ(cfg.RabbitMQ.URL, logger.Component("queue"))
		if err != nil {
			lgr.Warn().Err(err).Msg("RabbitMQ unavailable, emails will be sent in-process")
		} else {
			jobs = deps.Queue
		}
	}
	mailer := email.NewDispatcher(deps.EmailSender, jobs, email.DispatcherConfig{
		Queue:  cfg.RabbitMQ.EmailQueue,
		AppURL: cfg.Server.AppURL,
		APIURL: cfg.Server.PublicBaseURL,
	}, logger.Component("email"))

	host, _ := os.Hostname()
	deps.Reporter = errreport.New(errreport.Config{
		Token:       cfg.Rollbar.Token,
		Environment: cfg.Rollbar.Environment,
		ServerHost:  host,
	})

	// --- Services ---
	deps.AuthzService = appAuth.NewAuthorizationService(deps.Repos.UserRepository)
	deps.JWTService = pkgAuth.NewJWTService(pkgAuth.JWTConfig{
		SecretKey:       cfg.JWT.Secret,
		AccessTokenExp:  config.Duration(cfg.JWT.AccessTokenExpiration, time.Hour),
		RefreshTokenExp: config.Duration(cfg.JWT.RefreshTokenExpiration, 720*time.Hour),
		ChallengeExp:    config.Duration(cfg.JWT.ChallengeExpiration, 5*time.Minute),
		TokenIssuer:     cfg.JWT.Issuer,
	})

	svc := &appServices.Services{}
	svc.NotificationService = appServices.NewNotificationService(deps.Repos.NotificationRepository, publisher, lgr)
	svc.AuthService = appServices.NewAuthService(
		deps.Repos.UserRepository,
		deps.Repos.TokenRepository,
		deps.Repos.UserTokenRepository,
		deps.Repos.TwoFactorRepository,
		deps.JWTService,
		deps.Functions,
		mailer,
		lgr,
	)
	svc.TwoFactorService = appServices.NewTwoFactorService(deps.Repos.UserRepository, deps.Repos.TwoFactorRepository, deps.Functions, lgr)
	svc.UserService = appServices.NewUserService(
		deps.Repos.UserRepository,
		deps.Repos.TokenRepository,
		deps.Repos.BadgeRepository,
		deps.Repos.AchievementRepository,
		deps.FileStorage,
		svc.NotificationService,
		lgr,
	)
	svc.FeedService = appServices.NewFeedService(
		deps.Repos.PostRepository,
		deps.Repos.CommentRepository,
		deps.Repos.AnnouncementRepository,
		deps.FileStorage,
		svc.NotificationService,
		publisher,
		lgr,
	)
	svc.EventService = appServices.NewEventService(deps.Repos.EventRepository, lgr)
	svc.ChatService = appServices.NewChatService(
		deps.Repos.ChatRepository,
		deps.Repos.MessageRepository,
		deps.Repos.UserRepository,
		publisher,
		lgr,
	)
	svc.PopupService = appServices.NewPopupService(deps.Repos.PopupRepository, lgr)
	svc.SlideshowService = appServices.NewSlideshowService(deps.Repos.SlideshowRepository, appCache, deps.FileStorage, lgr)
	svc.DonationService = appServices.NewDonationService(
		deps.Repos.CampaignRepository,
		deps.Repos.DonationRepository,
		deps.Repos.UserRepository,
		deps.Functions,
		mailer,
		svc.NotificationService,
		cfg.Payments.Currency,
		lgr,
	)
	svc.TaskService = appServices.NewTaskService(deps.Repos.TaskRepository, svc.NotificationService, lgr)
	svc.StudioService = appServices.NewStudioService(deps.Repos.AIUsageRepository, deps.Functions, cfg.AI.DailyLimit, lgr)
	svc.ChatbotService = appServices.NewChatbotService(deps.Repos.FAQRepository, appCache, lgr)
	svc.ErrorLogService = appServices.NewErrorLogService(deps.Repos.ErrorLogRepository, deps.Reporter, lgr)
	svc.AnalyticsService = appServices.NewAnalyticsService(deps.Repos.AnalyticsRepository, appCache, lgr)
	deps.Services = svc

	deps.AuthMiddleware = appMiddleware.NewAuthMiddleware(deps.JWTService, deps.AuthzService)
	deps.WSHandler = websocket.NewHandler(
		baseCtx,
		deps.Hub,
		publisher,
		deps.JWTService,
		deps.AuthzService,
		svc.ChatService,
		cfg.CORSOriginList(),
		logger.Component("realtime"),
	)

	// --- Controllers ---
	deps.Controllers = &appRoutes.Controllers{
		Auth:         appControllers.NewAuthController(svc.AuthService, svc.TwoFactorService, lgr),
		User:         appControllers.NewUserController(svc.UserService, lgr),
		Feed:         appControllers.NewFeedController(svc.FeedService, lgr),
		Event:        appControllers.NewEventController(svc.EventService, lgr),
		Task:         appControllers.NewTaskController(svc.TaskService, lgr),
		Chat:         appControllers.NewChatController(svc.ChatService, lgr),
		Notification: appControllers.NewNotificationController(svc.NotificationService),
		Engagement:   appControllers.NewEngagementController(svc.PopupService, svc.SlideshowService),
		Donation:     appControllers.NewDonationController(svc.DonationService, lgr),
		Studio:       appControllers.NewStudioController(svc.StudioService, svc.ChatbotService, lgr),
		Admin:        appControllers.NewAdminController(svc.ErrorLogService, svc.AnalyticsService, lgr),
	}

	return deps, nil
}

// StartBackground runs the realtime hub, the Redis relay and the email consumer until ctx is cancelled
func (d *Dependencies) StartBackground(ctx context.Context) {
	go d.Hub.Run(ctx)
	if d.Relay != nil {
		go d.Relay.Run(ctx)
	}
	if d.Queue != nil {
		go d.Queue.Consume(ctx, d.cfg.RabbitMQ.EmailQueue, email.JobHandler(d.EmailSender))
	}
}

// Close releases the infrastructure clients
func (d *Dependencies) Close() {
	if d.Queue != nil {
		if err := d.Queue.Close(); err != nil {
			d.Logger.Warn().Err(err).Msg("Error closing RabbitMQ connection")
		}
	}
	if d.Redis != nil {
		if err := d.Redis.Close(); err != nil {
			d.Logger.Warn().Err(err).Msg("Error closing Redis client")
		}
	}
	if d.Reporter != nil {
		d.Reporter.Close()
	}
}

// SetupRouter configures the Gin engine with middleware and routes.
func SetupRouter(cfg *config.Config, deps *Dependencies, lgr zerolog.Logger) (*gin.Engine, error) {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
		lgr.Info().Msg("Setting Gin mode to release")
	} else {
		gin.SetMode(gin.DebugMode)
		lgr.Info().Msg("Setting Gin mode to debug")
	}

	if err := appMiddleware.RegisterValidators(); err != nil {
		return nil, fmt.Errorf("failed to register validators: %w", err)
	}

	router := gin.New()
	router.MaxMultipartMemory = 8 << 20
	router.Use(
		appMiddleware.RequestID(),
		appMiddleware.RequestLogger(logger.Component("http")),
		appMiddleware.Recovery(lgr),
		appMiddleware.CORS(cfg.CORSOriginList()),
		appMiddleware.ErrorRecorder(deps.Services.ErrorLogService),
	)

	appRoutes.SetupSwagger(router, swaggerHost(cfg.Server.PublicBaseURL))

	appRoutes.SetupRouter(router,
		deps.Controllers,
		deps.AuthMiddleware,
		deps.RateLimiter,
		deps.WSHandler,
	)

	router.Static("/uploads", cfg.Server.StoragePath)

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong", "status": "success"})
	})

	return router, nil
}

func swaggerHost(publicBaseURL string) string {
	u, err := url.Parse(publicBaseURL)
	if err != nil {
		return ""
	}
	return u.Host
}
