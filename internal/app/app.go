package app

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"khattha_backend/internal/config"
	"khattha_backend/internal/controller"
	"khattha_backend/internal/repository"
	"khattha_backend/internal/service"
	"khattha_backend/pkg/configwatcher"
	"khattha_backend/pkg/database"
	"khattha_backend/pkg/logger"
	"khattha_backend/pkg/monitoring"
	"khattha_backend/pkg/security"
	"khattha_backend/pkg/tracing"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type App struct {
	Config          *config.Config
	Router          *gin.Engine
	DB              *gorm.DB
	Redis           *redis.Client
	services        *services
	configCallbacks []func(*config.Config)
}

type repositories struct {
	user         *repository.UserRepository
	subject      *repository.SubjectRepository
	lesson       *repository.LessonRepository
	quiz         *repository.QuizRepository
	answer       *repository.AnswerRepository
	access       *repository.AccessRepository
	discount     *repository.DiscountRepository
	progress     *repository.ProgressRepository
	chat         *repository.ChatRepository
	notification *repository.NotificationRepository
}

type services struct {
	auth         *service.AuthService
	storage      *service.StorageService
	access       *service.AccessService
	subject      *service.SubjectService
	lesson       *service.LessonService
	quiz         *service.QuizService
	grading      *service.GradingService
	tutor        *service.TutorService
	ai           *service.AIService
	discount     *service.DiscountService
	progress     *service.ProgressService
	notification *service.NotificationService
	dashboard    *service.DashboardService
}

type controllers struct {
	auth         *controller.AuthController
	subject      *controller.SubjectController
	lesson       *controller.LessonController
	quiz         *controller.QuizController
	grading      *controller.GradingController
	tutor        *controller.TutorController
	discount     *controller.DiscountController
	progress     *controller.ProgressController
	notification *controller.NotificationController
	dashboard    *controller.DashboardController
	upload       *controller.UploadController
	health       *controller.HealthController
}

func (a *App) RegisterConfigCallback(callback func(*config.Config)) {
	a.configCallbacks = append(a.configCallbacks, callback)
}

func (a *App) initRepositories(db *gorm.DB) *repositories {
	return &repositories{
		user:         repository.NewUserRepository(db),
		subject:      repository.NewSubjectRepository(db),
		lesson:       repository.NewLessonRepository(db),
		quiz:         repository.NewQuizRepository(db),
		answer:       repository.NewAnswerRepository(db),
		access:       repository.NewAccessRepository(db),
		discount:     repository.NewDiscountRepository(db),
		progress:     repository.NewProgressRepository(db),
		chat:         repository.NewChatRepository(db),
		notification: repository.NewNotificationRepository(db),
	}
}

func (a *App) initServices(repos *repositories, cfg *config.Config, rdb *redis.Client) *services {
	s := &services{}
	clock := service.SystemClock()

	s.storage = service.NewStorageService(cfg)
	s.auth = service.NewAuthService(repos.user, cfg)
	s.access = service.NewAccessService(repos.access, clock)
	s.subject = service.NewSubjectService(repos.subject, repos.access)
	s.lesson = service.NewLessonService(repos.lesson, repos.subject)
	s.quiz = service.NewQuizService(repos.quiz, repos.answer, clock)
	s.notification = service.NewNotificationService(repos.notification, repos.user)
	s.grading = service.NewGradingService(repos.quiz, repos.answer, clock, s.notification)
	s.ai = service.NewAIService(cfg.AI)
	s.tutor = service.NewTutorService(s.access, repos.subject, repos.chat, s.ai, rdb, cfg.Tutor.DailyQuestionLimit, clock)
	s.discount = service.NewDiscountService(repos.discount, rdb)
	s.progress = service.NewProgressService(repos.progress, repos.lesson, clock)
	s.dashboard = service.NewDashboardService(repos.user, repos.subject, repos.lesson, repos.quiz, repos.answer, repos.progress)

	return s
}

func (a *App) initControllers(s *services, db *gorm.DB) *controllers {
	return &controllers{
		auth:         controller.NewAuthController(s.auth),
		subject:      controller.NewSubjectController(s.subject, s.access, s.storage),
		lesson:       controller.NewLessonController(s.lesson, s.access),
		quiz:         controller.NewQuizController(s.quiz, s.grading, s.subject, s.access),
		grading:      controller.NewGradingController(s.grading),
		tutor:        controller.NewTutorController(s.tutor),
		discount:     controller.NewDiscountController(s.discount),
		progress:     controller.NewProgressController(s.progress),
		notification: controller.NewNotificationController(s.notification),
		dashboard:    controller.NewDashboardController(s.dashboard),
		upload:       controller.NewUploadController(s.storage),
		health:       controller.NewHealthController(db),
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

	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

// watchConfig 配置文件热更新，仅对支持热更的配置项生效
func (a *App) watchConfig() {
	go configwatcher.WatchConfig("configs/config.yaml", func(newCfg *config.Config) {
		logger.Log.Info("config reloaded")
		for _, callback := range a.configCallbacks {
			callback(newCfg)
		}
	})
}

func NewApp(cfg *config.Config) *App {
	logger.InitLogger(cfg)

	logger.Log.Info("Logger initialized successfully")

	db, err := database.InitDB(&cfg.Database)
	if err != nil {
		logger.Log.Fatal("Failed to initialize database", zap.Error(err))
	}

	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		logger.Log.Fatal("Failed to initialize redis", zap.Error(err))
	}

	app := &App{
		Config: cfg,
		DB:     db,
		Redis:  rdb,
	}

	repos := app.initRepositories(db)
	services := app.initServices(repos, cfg, rdb)
	app.services = services
	controllers := app.initControllers(services, db)

	monitoring.Init()

	gin.SetMode(cfg.Server.Mode)
	router := gin.Default()
	app.Router = router

	app.setupMiddlewares(router, cfg)

	if cfg.Tracing.Enabled {
		if _, err := tracing.InitTracer("khattha", cfg.Tracing.CollectorEndpoint); err != nil {
			logger.Log.Fatal("Failed to initialize tracing", zap.Error(err))
		}
	}

	app.registerRoutes(router, controllers, cfg)

	if cfg.Storage.Type == "local" {
		router.Static("/uploads", cfg.Storage.LocalPath)
	}

	app.RegisterConfigCallback(func(newCfg *config.Config) {
		services.tutor.SetDailyLimit(newCfg.Tutor.DailyQuestionLimit)
	})
	app.watchConfig()

	return app
}

func (a *App) Run() {
	srv := &http.Server{
		Addr:    ":" + a.Config.Server.Port,
		Handler: a.Router,
	}

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
