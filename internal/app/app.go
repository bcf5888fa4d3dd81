package app

import (
	"cbda_exam_backend/internal/config"
	"cbda_exam_backend/internal/controller"
	"cbda_exam_backend/internal/repository"
	"cbda_exam_backend/internal/service"
	"cbda_exam_backend/internal/store"
	"cbda_exam_backend/pkg/logger"
	"cbda_exam_backend/pkg/monitoring"
	"cbda_exam_backend/pkg/security"
	"cbda_exam_backend/pkg/tracing"
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type App struct {
	Config          *config.Config
	Router          *gin.Engine
	Store           store.Store
	services        *services
	configCallbacks []func(*config.Config)
}

type repositories struct {
	user     *repository.UserRepository
	question *repository.QuestionRepository
	result   *repository.ResultRepository
}

type services struct {
	auth     *service.AuthService
	question *service.QuestionService
	result   *service.ResultService
	storage  *service.StorageService
}

type controllers struct {
	auth     *controller.AuthController
	question *controller.QuestionController
	result   *controller.ResultController
	admin    *controller.AdminController
	health   *controller.HealthController
}

func (a *App) RegisterConfigCallback(callback func(*config.Config)) {
	a.configCallbacks = append(a.configCallbacks, callback)
}

// OnConfigChange 配置热更新入口，由 configwatcher 回调
func (a *App) OnConfigChange(cfg *config.Config) {
	logger.Log.Info("config reloaded", zap.String("mode", cfg.Server.Mode))
	for _, cb := range a.configCallbacks {
		cb(cfg)
	}
}

func (a *App) initRepositories(s store.Store, cfg *config.Config) *repositories {
	return &repositories{
		user:     repository.NewUserRepository(s, cfg.Storage.UsersFile()),
		question: repository.NewQuestionRepository(s, cfg.Storage.QuestionsDir()),
		result:   repository.NewResultRepository(s, cfg.Storage.ResultsFile()),
	}
}

func (a *App) initServices(repos *repositories, cfg *config.Config) *services {
	s := &services{}
	s.storage = service.NewStorageService(cfg)
	s.auth = service.NewAuthService(repos.user)
	s.question = service.NewQuestionService(repos.question)
	s.result = service.NewResultService(repos.result)
	return s
}

func (a *App) initControllers(s *services) *controllers {
	return &controllers{
		auth:     controller.NewAuthController(s.auth),
		question: controller.NewQuestionController(s.question, a.Config.Storage.UploadsPath),
		result:   controller.NewResultController(s.result, s.storage),
		admin:    controller.NewAdminController(s.auth, s.result, s.storage),
		health:   controller.NewHealthController(a.Config.Storage.DataPath),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())

	maxRequests := cfg.RateLimit.MaxRequests
	if maxRequests <= 0 {
		maxRequests = 1000
	}
	window := time.Duration(cfg.RateLimit.WindowMinutes) * time.Minute
	if window <= 0 {
		window = time.Minute
	}
	router.Use(security.RateLimiter(maxRequests, window))

	// 分布式追踪中间件
	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

func NewApp(cfg *config.Config) *App {
	logger.InitLogger(cfg)
	logger.Log.Info("Logger initialized successfully")

	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	app := &App{
		Config: cfg,
		Store:  store.NewFileStore(),
	}

	repos := app.initRepositories(app.Store, cfg)
	services := app.initServices(repos, cfg)
	app.services = services
	controllers := app.initControllers(services)

	// 监控初始化
	monitoring.Init()

	router := gin.Default()
	app.Router = router

	app.setupMiddlewares(router, cfg)

	if cfg.Tracing.Enabled {
		if _, err := tracing.InitTracer("cbda-exam-backend", cfg.Tracing.CollectorEndpoint); err != nil {
			logger.Log.Fatal("Failed to initialize tracing", zap.Error(err))
		}
	}

	app.registerRoutes(router, controllers)

	// logo等上传文件直接静态服务
	if _, err := os.Stat(cfg.Storage.UploadsPath); os.IsNotExist(err) {
		os.MkdirAll(cfg.Storage.UploadsPath, os.ModePerm)
	}
	router.Static("/uploads", cfg.Storage.UploadsPath)

	return app
}

func (a *App) Run() {
	srv := &http.Server{
		Addr:    ":" + a.Config.Server.Port,
		Handler: a.Router,
	}

	// 启动服务器
	go func() {
		log.Printf("Server running on port %s", a.Config.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// 等待中断信号优雅地关闭服务器（设置5秒的超时时间）
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exiting")
}
