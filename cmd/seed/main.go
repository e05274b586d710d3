package main

import (
	"context"
	"time"

	"travelbooking/internal/config"
	"travelbooking/internal/database"
	"travelbooking/internal/domain"
	"travelbooking/internal/pkg/logger"
	"travelbooking/internal/repository"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
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

	db, err := database.Connect(cfg.Database.URL, log)
	if err != nil {
		log.WithError(err).Fatal("DB connection failed")
	}
	if err := repository.Migrate(db); err != nil {
		log.WithError(err).Fatal("migrate failed")
	}

	// Cleanup old data
	log.Info("cleaning old data")
	for _, table := range []string{"vehicle_bookings", "reservations", "offerings", "users"} {
		if err := db.Exec("DELETE FROM " + table).Error; err != nil {
			log.WithError(err).WithField("table", table).Fatal("cleanup failed")
		}
	}

	ctx := context.Background()
	users := repository.NewUserRepository(db)
	offerings := repository.NewOfferingRepository(db)
	reservations := repository.NewReservationRepository(db)
	vehicles := repository.NewVehicleBookingRepository(db)

	// ================== USERS ==================
	admin := mustUser(ctx, log, users, "admin@travelbooking.pk", "admin123", domain.RoleAdmin, "Administrator", "")
	provider := mustUser(ctx, log, users, "provider@travelbooking.pk", "provider123", domain.RoleProvider, "Northern Travels", "+92 300 1112233")
	customers := []*domain.User{
		mustUser(ctx, log, users, "ayesha@mail.pk", "client123", domain.RoleCustomer, "Ayesha Khan", "+92 300 1234567"),
		mustUser(ctx, log, users, "bilal@mail.pk", "client123", domain.RoleCustomer, "Bilal Ahmed", "+92 321 7654321"),
	}

	// ================== OFFERINGS ==================
	catalog := []domain.Offering{
		{Type: domain.ServiceHotel, Name: "Pearl Continental Lahore", Attributes: map[string]any{"pricePerNight": 25000, "maxGuests": 4, "city": "Lahore"}},
		{Type: domain.ServiceVehicle, Name: "Toyota Corolla 2022", Attributes: map[string]any{"pricePerDay": 8000, "seats": 5, "driverFeePerDay": 3000}},
		{Type: domain.ServiceTour, Name: "Hunza Valley Day Trip", Attributes: map[string]any{"pricePerPerson": 15000, "maxTravelers": 20}},
		{Type: domain.ServiceTrain, Name: "Green Line Express", Attributes: map[string]any{"price": 4500, "availableSeats": 120, "from": "Karachi", "to": "Islamabad"}},
		{Type: domain.ServiceFlight, Name: "PK-301 KHI-ISB", Attributes: map[string]any{"price": 22000, "availableSeats": 150}},
		{Type: domain.ServiceRestaurant, Name: "Monal Islamabad", Attributes: map[string]any{"pricePerGuest": 3500, "capacity": 80}},
		{Type: domain.ServiceEvent, Name: "Lahore Music Meet", Attributes: map[string]any{"price": 2500, "availableTickets": 500}},
	}
	for i := range catalog {
		catalog[i].ProviderID = provider.ID
		if err := offerings.Create(ctx, &catalog[i]); err != nil {
			log.WithError(err).Fatal("create offering")
		}
	}
	log.WithField("count", len(catalog)).Info("offerings created")

	// ================== RESERVATIONS ==================
	checkIn := time.Now().AddDate(0, 0, 14).Truncate(24 * time.Hour)
	hotel := catalog[0]
	pending := &domain.Reservation{
		RecordKind:   domain.RecordService,
		ServiceID:    hotel.ID,
		ServiceType:  hotel.Type,
		ServiceName:  hotel.Name,
		CustomerID:   customers[0].ID,
		ProviderID:   provider.ID,
		Customer:     domain.Customer{Name: customers[0].Name, Email: customers[0].Email, Phone: customers[0].Phone},
		Period:       domain.Period{CheckIn: checkIn, CheckOut: checkIn.AddDate(0, 0, 3)},
		PartySize:    2,
		Identity:     &domain.IdentityVerification{CNICNumber: "35202-1234567-1"},
		UnitPrice:    25000,
		DurationDays: 3,
		TotalAmount:  150000,
		Status:       domain.ReservationPending,
	}
	past := *pending
	past.ID = ""
	past.CustomerID = customers[1].ID
	past.Customer = domain.Customer{Name: customers[1].Name, Email: customers[1].Email, Phone: customers[1].Phone}
	past.Period = domain.Period{CheckIn: checkIn.AddDate(0, -2, 0), CheckOut: checkIn.AddDate(0, -2, 2)}
	past.DurationDays, past.TotalAmount = 2, 100000
	past.Status = domain.ReservationConfirmed

	for _, r := range []*domain.Reservation{pending, &past} {
		if err := reservations.Create(ctx, r); err != nil {
			log.WithError(err).Fatal("create reservation")
		}
	}

	// ================== LEGACY VEHICLE BOOKINGS ==================
	car := catalog[1]
	legacy := &domain.VehicleBooking{
		VehicleID:     car.ID,
		VehicleName:   car.Name,
		UserID:        customers[1].ID,
		OwnerID:       provider.ID,
		FullName:      customers[1].Name,
		Email:         customers[1].Email,
		ContactNumber: customers[1].Phone,
		PickupDate:    checkIn,
		ReturnDate:    checkIn.AddDate(0, 0, 2),
		Passengers:    3,
		NeedDriver:    "yes",
		CNICNumber:    "35202-7654321-3",
		PricePerDay:   8000,
		DriverFee:     3000,
		TotalPrice:    22000,
	}
	if err := vehicles.Create(ctx, legacy); err != nil {
		log.WithError(err).Fatal("create vehicle booking")
	}

	log.WithFields(logrus.Fields{
		"admin":     admin.Email,
		"provider":  provider.Email,
		"customers": len(customers),
	}).Info("seed completed")
}

func mustUser(ctx context.Context, log *logrus.Logger, users *repository.UserRepository, email, password string, role domain.UserRole, name, phone string) *domain.User {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.WithError(err).Fatal("hash password")
	}
	u := &domain.User{Email: email, PasswordHash: string(hash), Role: role, Name: name, Phone: phone}
	if err := users.Create(ctx, u); err != nil {
		log.WithError(err).WithField("email", email).Fatal("create user")
	}
	log.WithFields(logrus.Fields{"email": email, "role": role}).Info("user created")
	return u
}
