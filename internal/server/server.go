package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"todoapp/internal/config"
	"todoapp/internal/handler"
	"todoapp/internal/middleware"
	"todoapp/internal/repository"
	"todoapp/internal/service"
	"todoapp/static"

	"github.com/gin-gonic/gin"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

type Server struct {
	Engine    *gin.Engine
	DB        *gorm.DB
	Config    *config.Config
	Logger    *zap.Logger
	scheduler *service.Scheduler
}

func Init(cfg *config.Config, logger *zap.Logger) (*Server, error) {
	// Setup GORM; one shared handle for the whole process
	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		cfg.DBHost, cfg.DBPort, cfg.DBUser, cfg.DBPassword, cfg.DBName,
	)
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to DB: %w", err)
	}
	logger.Info("connected to database")

	if err := runMigrations(cfg); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	if err := os.MkdirAll(cfg.UploadDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}

	// Setup Gin
	r := gin.Default()

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	permRepo := repository.NewPermissionRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	actionLogRepo := repository.NewActionLogRepository(db)

	// Initialize services
	notificationService := service.NewNotificationService(notificationRepo, userRepo)
	taskService := service.NewTaskService(taskRepo, permRepo, actionLogRepo, notificationService, logger)
	scheduler := service.NewScheduler(taskService, cfg.ScanInterval, logger)

	// Initialize handlers
	files := handler.NewFileStore(cfg.UploadDir, logger)
	userHandler := handler.NewUserHandler(userRepo, cfg.JWTSecret)
	taskHandler := handler.NewTaskHandler(taskService, files)
	notificationHandler := handler.NewNotificationHandler(notificationService)
	actionLogHandler := handler.NewActionLogHandler(taskService)

	// Browser client and stored attachments
	r.GET("/", func(c *gin.Context) {
		c.Data(http.StatusOK, "text/html; charset=utf-8", static.IndexHTML())
	})
	r.Static("/uploads", cfg.UploadDir)
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Public routes
	r.POST("/auth/register", userHandler.Register)
	r.POST("/auth/login", userHandler.Login)

	// Protected routes - require authentication
	authorized := r.Group("/")
	authorized.Use(middleware.JWTAuthMiddleware(cfg.JWTSecret))
	{
		// Task routes
		authorized.GET("/tasks", taskHandler.GetAll)
		authorized.GET("/tasks/paginated", taskHandler.GetAllPaginated)
		authorized.GET("/tasks/history", actionLogHandler.GetHistory)
		authorized.GET("/tasks/:id", taskHandler.GetByID)
		authorized.POST("/tasks", taskHandler.Create)
		authorized.PUT("/tasks/:id", taskHandler.Update)
		authorized.PATCH("/tasks/:id", taskHandler.Update)
		authorized.DELETE("/tasks/:id", taskHandler.Delete)

		// Task sharing routes
		authorized.POST("/tasks/:id/permissions", taskHandler.GrantPermission)
		authorized.GET("/tasks/:id/permissions", taskHandler.GetPermissions)
		authorized.DELETE("/tasks/:id/permissions/:user_id", taskHandler.RevokePermission)

		// Notification routes
		authorized.GET("/notifications", notificationHandler.GetAll)
		authorized.GET("/notifications/unread-count", notificationHandler.CountUnread)
		authorized.PUT("/notifications/mark-all-read", notificationHandler.MarkAllAsRead)
		authorized.PUT("/notifications/:id/read", notificationHandler.MarkAsRead)
		authorized.DELETE("/notifications/:id", notificationHandler.Delete)
	}

	return &Server{
		Engine:    r,
		DB:        db,
		Config:    cfg,
		Logger:    logger,
		scheduler: scheduler,
	}, nil
}

func runMigrations(cfg *config.Config) error {
	url := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		cfg.DBUser, cfg.DBPassword, cfg.DBHost, cfg.DBPort, cfg.DBName,
	)
	m, err := migrate.New("file://"+cfg.MigrationDir, url)
	if err != nil {
		return err
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}

func (s *Server) Run() {
	srv := &http.Server{
		Addr:    ":" + s.Config.ServerPort,
		Handler: s.Engine,
	}

	// Scheduled scans stop with the server
	scanCtx, stopScans := context.WithCancel(context.Background())
	go s.scheduler.Run(scanCtx)

	go func() {
		s.Logger.Info("server running", zap.String("port", s.Config.ServerPort))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.Logger.Fatal("failed to listen", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	s.Logger.Info("shutting down server...")
	stopScans()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		s.Logger.Fatal("server forced to shutdown", zap.Error(err))
	}

	s.Logger.Info("server exited properly")
}
