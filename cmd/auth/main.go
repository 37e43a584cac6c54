package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/fitnease/fitnease-auth/internal/clients"
	"github.com/fitnease/fitnease-auth/internal/config"
	"github.com/fitnease/fitnease-auth/internal/events"
	"github.com/fitnease/fitnease-auth/internal/httpserver"
	"github.com/fitnease/fitnease-auth/internal/middleware"
	"github.com/fitnease/fitnease-auth/internal/repo"
	"github.com/fitnease/fitnease-auth/internal/search"
	"github.com/fitnease/fitnease-auth/internal/service"
	"github.com/fitnease/fitnease-auth/pkg/logging"
	"github.com/labstack/echo/v4"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}
	logger := logging.New(cfg.LOG_LEVEL)

	db, err := config.InitDB(cfg)
	if err != nil {
		log.Fatalf("db init error: %v", err)
	}

	gormRepo := repo.New(db)
	jwtSecret := []byte(cfg.SERVICE_JWT_SECRET)

	var directory service.Directory
	if cfg.ES_URL != "" {
		es, err := search.NewClient(cfg.ES_URL, cfg.ES_USER, cfg.ES_PASSWORD)
		if err != nil {
			logger.Warn("elasticsearch unavailable, admin search falls back to SQL", "error", err)
		} else {
			directory = search.NewUserIndex(es, cfg.ES_INDEX)
		}
	}

	var producer *events.Producer
	if cfg.KAFKA_ADDRESS != "" {
		producer = events.NewProducer(cfg.KAFKA_ADDRESS, cfg.KAFKA_TOPIC)
		defer producer.Close()
	}

	authSvc := &service.AuthService{
		Repo:       gormRepo,
		BcryptCost: cfg.BCRYPT_COST,
		Comms:      clients.NewCommsClient(cfg.COMMS_SERVICE_URL, cfg.APP_URL, jwtSecret),
		Engagement: clients.NewEngagementClient(cfg.ENGAGEMENT_SERVICE_URL, jwtSecret),
		Directory:  directory,
	}
	if producer != nil {
		authSvc.Events = producer
	}

	e := echo.New()
	e.HideBanner = true
	e.Server.ReadTimeout = 10 * time.Second
	e.Server.WriteTimeout = 15 * time.Second
	e.Server.ReadHeaderTimeout = 3 * time.Second

	httpserver.Register(e, &httpserver.Deps{
		AuthHandler:  &httpserver.AuthHTTP{Svc: authSvc},
		RolesHandler: &httpserver.RolesHTTP{Svc: &service.RBACService{Repo: gormRepo}},
		UsersHandler: &httpserver.UsersHTTP{Svc: &service.UserService{Repo: gormRepo, Directory: directory}},
		AuthMw:       middleware.NewAuth(authSvc),
		Logger:       logger,
	})

	go func() {
		if err := e.Start(cfg.AUTH_PORT); err != nil && err != http.ErrServerClosed {
			log.Fatalf("echo start: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt)
	<-stop

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Printf("echo shutdown: %v", err)
	}
}
