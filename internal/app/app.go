package app

import (
	"campus_portal_backend/internal/config"
	"campus_portal_backend/internal/controller"
	"campus_portal_backend/internal/repository"
	"campus_portal_backend/internal/repository/memory"
	"campus_portal_backend/internal/service"
	"campus_portal_backend/internal/util"
	"campus_portal_backend/pkg/configwatcher"
	"campus_portal_backend/pkg/database"
	"campus_portal_backend/pkg/logger"
	"campus_portal_backend/pkg/monitoring"
	"campus_portal_backend/pkg/security"
	"campus_portal_backend/pkg/tracing"
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const DefaultConfigFile = "configs/config.yaml"

type App struct {
	Config     *config.Config
	ConfigFile string
	Router     *gin.Engine
	DB         *gorm.DB
	Redis      *redis.Client

	services        *services
	limiter         *security.Limiter
	tracer          *sdktrace.TracerProvider
	configCallbacks []func(*config.Config)
}

type repositories struct {
	user     repository.UserStore
	forum    repository.ForumStore
	group    repository.GroupStore
	settings repository.SettingsStore
}

type services struct {
	auth      *service.AuthService
	storage   *service.StorageService
	forum     *service.ForumService
	group     *service.GroupService
	settings  *service.SettingsService
	dashboard *service.DashboardService
	seeder    *service.Seeder
}

type controllers struct {
	auth      *controller.AuthController
	forum     *controller.ForumController
	group     *controller.GroupController
	settings  *controller.SettingsController
	dashboard *controller.DashboardController
	health    *controller.HealthController
}

func (a *App) RegisterConfigCallback(callback func(*config.Config)) {
	a.configCallbacks = append(a.configCallbacks, callback)
}

// initRepositories db 为 nil 时使用进程内存储
func (a *App) initRepositories(db *gorm.DB) *repositories {
	if db == nil {
		return &repositories{
			user:     memory.NewUserRepository(),
			forum:    memory.NewForumRepository(),
			group:    memory.NewGroupRepository(),
			settings: memory.NewSettingsRepository(),
		}
	}
	return &repositories{
		user:     repository.NewUserRepository(db),
		forum:    repository.NewForumRepository(db),
		group:    repository.NewGroupRepository(db),
		settings: repository.NewSettingsRepository(db),
	}
}

func (a *App) initServices(repos *repositories, cfg *config.Config, rdb *redis.Client) *services {
	s := &services{}

	// 启用 Redis 时会话快照和浏览去重放在 Redis，否则放在进程内
	var sessions service.SessionStore
	var views service.ViewCounter
	if rdb != nil {
		sessions = service.NewRedisSessionStore(rdb)
		views = service.NewRedisViewCounter(rdb, cfg.ViewWindow())
	} else {
		sessions = service.NewMemorySessionStore()
		views = service.NewMemoryViewCounter(cfg.ViewWindow())
	}

	s.storage = service.NewStorageService(cfg)
	s.auth = service.NewAuthService(repos.user, sessions, cfg)
	s.forum = service.NewForumService(repos.forum, repos.user, views, cfg.Forum.MaxTags)
	s.group = service.NewGroupService(repos.group, repos.user, s.storage, cfg.Groups.DefaultMaxMembers)
	s.settings = service.NewSettingsService(repos.settings, repos.user)
	s.dashboard = service.NewDashboardService(repos.user, repos.forum, repos.group)
	s.seeder = service.NewSeeder(s.auth, s.forum, s.group)
	return s
}

func (a *App) initControllers(s *services, db *gorm.DB, rdb *redis.Client) *controllers {
	return &controllers{
		auth:      controller.NewAuthController(s.auth),
		forum:     controller.NewForumController(s.forum),
		group:     controller.NewGroupController(s.group),
		settings:  controller.NewSettingsController(s.settings),
		dashboard: controller.NewDashboardController(s.dashboard),
		health:    controller.NewHealthController(db, rdb, a.Config.Storage.Backend),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())

	a.limiter = security.NewLimiter(cfg.RateLimit.MaxRequests, time.Duration(cfg.RateLimit.WindowMinutes)*time.Minute)
	router.Use(a.limiter.Middleware())

	// 分布式追踪中间件
	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

// shouldSeed 内存存储默认写入示例数据；MySQL 只在 -seed 时写入
func shouldSeed(cfg *config.Config) bool {
	if cfg.Seed {
		return true
	}
	return cfg.Forum.SeedSampleData && cfg.Storage.Backend == util.BackendMemory
}

// New 组装 repositories → services → controllers → router，不负责建立外部连接
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client) *App {
	app := &App{
		Config:     cfg,
		ConfigFile: DefaultConfigFile,
		DB:         db,
		Redis:      rdb,
	}

	repos := app.initRepositories(db)
	app.services = app.initServices(repos, cfg, rdb)
	ctrls := app.initControllers(app.services, db, rdb)

	// 监控初始化
	monitoring.Init()

	router := gin.New()
	router.Use(gin.Recovery())
	if cfg.Server.Mode != gin.ReleaseMode {
		router.Use(gin.Logger())
	}
	app.Router = router

	app.setupMiddlewares(router, cfg)
	app.registerRoutes(router, ctrls, cfg)

	if cfg.Storage.Type == util.StorageLocal {
		router.Static("/uploads", cfg.Storage.LocalPath)
	}

	app.RegisterConfigCallback(func(newCfg *config.Config) {
		logger.SetLevel(logger.LevelFor(newCfg))
	})
	app.RegisterConfigCallback(func(newCfg *config.Config) {
		app.limiter.Update(newCfg.RateLimit.MaxRequests, time.Duration(newCfg.RateLimit.WindowMinutes)*time.Minute)
	})

	if shouldSeed(cfg) {
		if err := app.services.seeder.Seed(context.Background()); err != nil {
			logger.Log.Error("Failed to seed sample data", zap.Error(err))
		}
	}

	return app
}

func NewApp(cfg *config.Config) *App {
	logger.InitLogger(cfg)
	defer logger.Log.Sync()

	logger.Log.Info("Logger initialized successfully", zap.String("backend", cfg.Storage.Backend))
	gin.SetMode(cfg.Server.Mode)

	var db *gorm.DB
	if cfg.Storage.Backend == util.BackendMySQL {
		var err error
		db, err = database.InitDB(&cfg.Database, cfg.Server.Mode)
		if err != nil {
			logger.Log.Fatal("Failed to initialize database", zap.Error(err))
			log.Fatalf("Failed to initialize database: %v", err)
		}

		// release 模式下只有显式 -migrate 才迁移
		if cfg.ForceMigrate || cfg.Server.Mode != gin.ReleaseMode {
			if err := database.Migrate(db); err != nil {
				logger.Log.Fatal("Failed to migrate database", zap.Error(err))
			}
		}
		if cfg.MigrateOnly {
			return &App{Config: cfg, DB: db}
		}
	}

	var rdb *redis.Client
	if cfg.Redis.Enabled {
		var err error
		rdb, err = database.InitRedis(&cfg.Redis)
		if err != nil {
			logger.Log.Fatal("Failed to initialize redis", zap.Error(err))
			log.Fatalf("Failed to initialize redis: %v", err)
		}
	}

	var tp *sdktrace.TracerProvider
	if cfg.Tracing.Enabled {
		var err error
		tp, err = tracing.InitTracer("campus-portal", cfg.Tracing.CollectorEndpoint)
		if err != nil {
			logger.Log.Fatal("Failed to initialize tracing", zap.Error(err))
		}
	}

	app := New(cfg, db, rdb)
	app.tracer = tp
	return app
}

func (a *App) applyConfig(cfg *config.Config) {
	for _, callback := range a.configCallbacks {
		callback(cfg)
	}
	logger.Log.Info("Configuration reloaded", zap.String("level", logger.Level().String()))
}

func (a *App) Run() {
	srv := &http.Server{
		Addr:    ":" + a.Config.Server.Port,
		Handler: a.Router,
	}

	watchCtx, stopWatch := context.WithCancel(context.Background())
	defer stopWatch()
	go func() {
		if err := configwatcher.WatchConfig(watchCtx, a.ConfigFile, a.applyConfig); err != nil {
			logger.Log.Warn("Config hot reload disabled", zap.Error(err))
		}
	}()

	// 启动服务器
	go func() {
		logger.Log.Info("Server running", zap.String("port", a.Config.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// 等待中断信号优雅地关闭服务器（设置5秒的超时时间）
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	stopWatch()
	a.limiter.Stop()

	// 关闭服务
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	if a.tracer != nil {
		if err := a.tracer.Shutdown(ctx); err != nil {
			logger.Log.Error("Failed to shutdown tracer provider", zap.Error(err))
		}
	}
	if a.Redis != nil {
		_ = a.Redis.Close()
	}

	log.Println("Server exiting")
}
