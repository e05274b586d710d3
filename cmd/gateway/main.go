package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"travelbooking/internal/backend"
	"travelbooking/internal/config"
	"travelbooking/internal/domain/feed"
	"travelbooking/internal/domain/reservation"
	"travelbooking/internal/domain/session"
	"travelbooking/internal/events"
	"travelbooking/internal/middleware"
	"travelbooking/internal/pkg/jwt"
	"travelbooking/internal/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/go-co-op/gocron/v2"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

func main() {
	if err := config.LoadEnvFile(); err != nil {
		logrus.WithError(err).Fatal("load .env")
	}
	cfg, err := config.LoadGateway()
	if err != nil {
		logrus.WithError(err).Fatal("load config")
	}
	log := logger.New(cfg.Log.Level, cfg.Log.Format)
	if cfg.ProdLike() {
		gin.SetMode(gin.ReleaseMode)
	}

	client := backend.NewClient(cfg.Backend.URL, cfg.Backend.Timeout, nil, log)
	tokens := jwt.New(cfg.Session.Secret, cfg.Session.TTL)

	store, closeStore := sessionStore(cfg.Redis.URL, log)
	defer closeStore()

	sched, err := gocron.NewScheduler()
	if err != nil {
		log.WithError(err).Fatal("create scheduler")
	}
	sched.Start()
	defer func() { _ = sched.Shutdown() }()

	sessions := session.NewManager(client, store, tokens, sched, log)

	brokers, err := events.New(events.Config{
		Drivers:      cfg.Events.Driver,
		AMQPURL:      cfg.Events.AMQPURL,
		AMQPQueue:    cfg.Events.AMQPQueue,
		KafkaBrokers: cfg.KafkaBrokers(),
		KafkaTopic:   cfg.Events.KafkaTopic,
	}, log)
	if err != nil {
		log.WithError(err).Fatal("configure event publishers")
	}
	defer func() { _ = brokers.Close() }()

	hub := feed.NewHub(log)
	publisher := append(events.Fanout{hub}, brokers...)

	boards := reservation.NewBoards()
	sessions.OnEnd(boards.Drop)
	sessions.OnEnd(hub.CloseSession)

	builder := reservation.NewBuilder(client, publisher, reservation.BuilderConfig{
		CapacityCeiling:        cfg.Booking.CapacityCeiling,
		MaxCNICPhotoBytes:      cfg.Booking.MaxCNICPhotoBytes,
		DefaultDriverFeePerDay: cfg.Booking.DriverFeePerDay,
	}, log)
	machine := reservation.NewStateMachine(client, publisher, boards, log)
	aggregator := reservation.NewAggregator(client, boards, publisher, cfg.Aggregator.Concurrency, log)

	r := gin.New()
	r.Use(middleware.RequestID(), middleware.Recovery(log), middleware.RequestLogger(log), middleware.CORS(cfg.Server.Origins()))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	auth := middleware.SessionAuth(sessions)
	v1 := r.Group("/api/v1")
	session.NewHandler(sessions).RegisterRoutes(v1, auth)
	reservation.NewHandler(builder, machine, aggregator).
		RegisterRoutes(v1, middleware.OptionalSession(sessions), auth, middleware.Moderators())
	feed.NewWSHandler(hub, sessions, cfg.Server.Origins()).RegisterRoutes(r)

	srv := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.WithFields(logrus.Fields{"addr": srv.Addr, "backend": cfg.Backend.URL}).Info("gateway listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("gateway stopped")
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
	log.Info("gateway stopped")
}

// sessionStore uses Redis when REDIS_URL is set and memory otherwise.
func sessionStore(redisURL string, log *logrus.Logger) (session.Store, func()) {
	if redisURL == "" {
		log.Info("sessions kept in memory")
		return session.NewMemoryStore(), func() {}
	}
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		log.WithError(err).Fatal("parse REDIS_URL")
	}
	rdb := redis.NewClient(opts)
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.WithError(err).Fatal("connect redis")
	}
	log.WithField("addr", opts.Addr).Info("sessions kept in redis")
	return session.NewRedisStore(rdb), func() { _ = rdb.Close() }
}
