package main

import (
	"context"
	"time"

	"travelbooking/internal/config"
	"travelbooking/internal/database"
	"travelbooking/internal/pkg/logger"
	"travelbooking/internal/repository"

	"github.com/sirupsen/logrus"
)

// retention deletes cancelled and completed reservations, and rejected legacy
// vehicle bookings, once they ended more than RETENTION ago.
func main() {
	if err := config.LoadEnvFile(); err != nil {
		logrus.WithError(err).Fatal("load .env")
	}
	cfg, err := config.LoadBackend()
	if err != nil {
		logrus.WithError(err).Fatal("load config")
	}
	log := logger.New(cfg.Log.Level, cfg.Log.Format)

	db, err := database.Connect(cfg.Database.URL, log)
	if err != nil {
		log.WithError(err).Fatal("db connect failed")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()
	cutoff := time.Now().UTC().Add(-cfg.Retention)

	reservations, err := repository.NewReservationRepository(db).PurgeFinished(ctx, cutoff)
	if err != nil {
		log.WithError(err).Fatal("purge reservations failed")
	}
	bookings, err := repository.NewVehicleBookingRepository(db).PurgeFinished(ctx, cutoff)
	if err != nil {
		log.WithError(err).Fatal("purge vehicle bookings failed")
	}

	log.WithFields(logrus.Fields{
		"cutoff":           cutoff.Format(time.RFC3339),
		"reservations":     reservations,
		"vehicle_bookings": bookings,
	}).Info("retention cleanup completed")
}
