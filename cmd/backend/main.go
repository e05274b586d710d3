package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"travelbooking/internal/config"
	"travelbooking/internal/database"
	"travelbooking/internal/domain/store"
	"travelbooking/internal/middleware"
	"travelbooking/internal/pkg/jwt"
	"travelbooking/internal/pkg/logger"
	"travelbooking/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

func main() {
	if err := config.LoadEnvFile(); err != nil {
		logrus.WithError(err).Fatal("load .env")
	}
	cfg, err := config.LoadBackend()
	if err != nil {
		logrus.WithError(err).Fatal("load config")
	}
	log := logger.New(cfg.Log.Level, cfg.Log.Format)
	if cfg.ProdLike() {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.Connect(cfg.Database.URL, log)
	if err != nil {
		log.WithError(err).Fatal("connect database")
	}
	if err := repository.Migrate(db); err != nil {
		log.WithError(err).Fatal("migrate database")
	}

	tokens := jwt.New(cfg.JWT.Secret, cfg.JWT.TTL)
	svc := store.NewService(
		repository.NewUserRepository(db),
		repository.NewOfferingRepository(db),
		repository.NewReservationRepository(db),
		repository.NewVehicleBookingRepository(db),
		tokens,
		log,
	)

	r := gin.New()
	r.Use(middleware.RequestID(), middleware.Recovery(log), middleware.RequestLogger(log), middleware.CORS(cfg.Server.Origins()))
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "database": database.Driver(cfg.Database.URL)})
	})
	store.NewHandler(svc).RegisterRoutes(r.Group("/api/v1"), middleware.JWTAuth(tokens))

	srv := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.WithField("addr", srv.Addr).Info("backend listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("backend stopped")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.WithError(err).Error("graceful shutdown failed")
	}
	log.Info("backend stopped")
}

