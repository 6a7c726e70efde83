package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"

	"notes/internal/config"
	"notes/internal/database"
	"notes/internal/events"
	"notes/internal/handler"
	"notes/internal/middleware"
	"notes/internal/repository"
	"notes/internal/service"
)

type Server struct {
	Engine    *gin.Engine
	DB        *gorm.DB
	Config    *config.Config
	Publisher events.Publisher
	log       *slog.Logger
}

func Init(cfg *config.Config, log *slog.Logger) (*Server, error) {
	db, err := database.Open(cfg, log)
	if err != nil {
		return nil, err
	}
	log.Info("connected to database", "driver", cfg.DBDriver)

	var publisher events.Publisher = events.NopPublisher{}
	if cfg.NATSURL != "" {
		natsPublisher, err := events.ConnectNATS(cfg.NATSURL, cfg.NATSSubject)
		if err != nil {
			database.Close(db, log)
			return nil, err
		}
		publisher = natsPublisher
		log.Info("publishing task events", "url", cfg.NATSURL, "prefix", cfg.NATSSubject)
	}

	taskRepo := repository.NewTaskRepository(db)
	taskService := service.NewTaskService(taskRepo, publisher, log)
	taskHandler := handler.NewTaskHandler(taskService, log)

	gin.SetMode(cfg.GinMode)
	return &Server{
		Engine:    NewRouter(cfg, taskHandler, log),
		DB:        db,
		Config:    cfg,
		Publisher: publisher,
		log:       log,
	}, nil
}

// NewRouter builds the gin engine with middleware, API routes, swagger UI and
// the optional static frontend.
func NewRouter(cfg *config.Config, taskHandler *handler.TaskHandler, log *slog.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(log))
	r.Use(middleware.CORS(cfg.AllowedOrigins))

	api := r.Group("/api")
	{
		api.GET("/healthz", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "ok"})
		})
		taskHandler.Register(api)
	}

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	mountStatic(r, cfg.StaticDir, log)
	return r
}

func (s *Server) Run() error {
	srv := &http.Server{
		Addr:              ":" + s.Config.ServerPort,
		Handler:           s.Engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("server running", "port", s.Config.ServerPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		s.close()
		if err != nil {
			return fmt.Errorf("failed to listen: %w", err)
		}
		return nil
	case <-quit:
	}
	s.log.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err := srv.Shutdown(ctx)
	s.close()
	if err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	s.log.Info("server exited properly")
	return nil
}

func (s *Server) close() {
	if err := s.Publisher.Close(); err != nil {
		s.log.Warn("failed to close event publisher", "error", err)
	}
	database.Close(s.DB, s.log)
}
