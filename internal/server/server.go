package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"taskboard/internal/auth"
	"taskboard/internal/cache"
	"taskboard/internal/config"
	"taskboard/internal/handler"
	"taskboard/internal/middleware"
	"taskboard/internal/migrations"
	"taskboard/internal/repository"
)

type Server struct {
	Engine *gin.Engine
	DB     *gorm.DB
	Redis  *redis.Client
	Config *config.Config
	Logger *zap.Logger
}

func Init(ctx context.Context, cfg *config.Config, log *zap.Logger) (*Server, error) {
	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to DB: %w", err)
	}
	log.Info("connected to database", zap.String("host", cfg.DBHost), zap.String("db", cfg.DBName))

	if cfg.RunMigrations {
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("failed to get sql.DB: %w", err)
		}
		if err := migrations.Up(sqlDB, log); err != nil {
			return nil, err
		}
	}

	rdb, err := cache.NewClient(ctx, cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	if rdb == nil {
		log.Info("redis disabled, caching and idempotency keys are off")
	} else {
		log.Info("connected to redis")
	}

	s := &Server{
		DB:     db,
		Redis:  rdb,
		Config: cfg,
		Logger: log,
	}
	s.Engine = s.routes()
	return s, nil
}

func (s *Server) routes() *gin.Engine {
	gin.SetMode(s.Config.GinMode)
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestID(), middleware.RequestLogger(s.Logger))

	tokens := auth.NewManager(s.Config.JWTSecret, s.Config.JWTExpiry)

	userRepo := repository.NewUserRepository(s.DB)
	projectRepo := repository.NewProjectRepository(s.DB)
	shareRepo := repository.NewProjectShareRepository(s.DB)
	taskRepo := repository.NewTaskRepository(s.DB)
	entryRepo := repository.NewTimeEntryRepository(s.DB)

	taskCache := cache.NewCollectionCache(taskRepo, s.Redis, s.Config.CacheTTL)
	dedup := cache.NewDeduper(s.Redis, s.Config.IdempotencyTTL)

	userHandler := handler.NewUserHandler(userRepo, tokens)
	projectHandler := handler.NewProjectHandler(projectRepo, shareRepo)
	shareHandler := handler.NewShareHandler(projectRepo, userRepo, shareRepo)
	taskHandler := handler.NewTaskHandler(taskRepo, projectRepo, shareRepo, userRepo, taskCache, dedup)
	timeHandler := handler.NewTimeEntryHandler(entryRepo, taskRepo, projectRepo, shareRepo)
	healthHandler := handler.NewHealthHandler(s.healthChecks())

	// Public routes
	r.POST("/register", userHandler.Register)
	r.POST("/login", userHandler.Login)
	r.GET("/health", healthHandler.Health)
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Protected routes - require authentication
	authorized := r.Group("/")
	authorized.Use(middleware.JWTAuthMiddleware(s.Config.JWTSecret))
	{
		// Project routes
		authorized.POST("/projects", projectHandler.Create)
		authorized.GET("/projects", projectHandler.GetAll)
		authorized.GET("/projects/:id", projectHandler.GetByID)
		authorized.PUT("/projects/:id", projectHandler.Update)
		authorized.DELETE("/projects/:id", projectHandler.Delete)

		// Project sharing routes
		authorized.POST("/projects/:id/share", shareHandler.ShareProject)
		authorized.DELETE("/projects/:id/share/:user_id", shareHandler.RemoveShare)
		authorized.GET("/projects/:id/share", shareHandler.GetProjectShares)
		authorized.GET("/shared-projects", shareHandler.GetSharedProjects)

		// Task routes
		authorized.POST("/tasks", taskHandler.Create)
		authorized.GET("/tasks/:id", taskHandler.GetByID)
		authorized.GET("/projects/:id/tasks", taskHandler.GetByProjectID)
		authorized.PUT("/tasks/:id", taskHandler.Update)
		authorized.DELETE("/tasks/:id", taskHandler.Delete)
		authorized.POST("/tasks/:id/assign", taskHandler.AssignUser)
		authorized.DELETE("/tasks/:id/assign", taskHandler.UnassignUser)
		authorized.PUT("/tasks/:id/sequence", taskHandler.UpdateSequence)

		// Time tracking routes
		authorized.POST("/tasks/:id/time-entries", timeHandler.Create)
		authorized.GET("/tasks/:id/time-entries", timeHandler.ListByTask)
		authorized.DELETE("/time-entries/:id", timeHandler.Delete)
		authorized.GET("/timesheet", timeHandler.Timesheet)
	}
	return r
}

func (s *Server) healthChecks() map[string]handler.Pinger {
	checks := map[string]handler.Pinger{
		"postgres": func(ctx context.Context) error {
			sqlDB, err := s.DB.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
	}
	if s.Redis != nil {
		checks["redis"] = func(ctx context.Context) error {
			return s.Redis.Ping(ctx).Err()
		}
	}
	return checks
}

// Run serves until SIGINT or SIGTERM and then shuts down gracefully.
func (s *Server) Run() error {
	srv := &http.Server{
		Addr:    ":" + s.Config.ServerPort,
		Handler: s.Engine,
	}

	errCh := make(chan error, 1)
	go func() {
		s.Logger.Info("server running", zap.String("port", s.Config.ServerPort))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return fmt.Errorf("failed to listen: %w", err)
	case sig := <-quit:
		s.Logger.Info("shutting down server", zap.String("signal", sig.String()))
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.Config.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	s.Close()
	s.Logger.Info("server exited properly")
	return nil
}

func (s *Server) Close() {
	if s.Redis != nil {
		_ = s.Redis.Close()
	}
	if sqlDB, err := s.DB.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
