package repository

import (
	"context"
	"time"

	"travelbooking/internal/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type VehicleBookingRepository struct {
	db *gorm.DB
}

func NewVehicleBookingRepository(db *gorm.DB) *VehicleBookingRepository {
	return &VehicleBookingRepository{db: db}
}

type vehicleBookingModel struct {
	ID              string    `gorm:"column:id;primaryKey;size:36"`
	BookingNumber   string    `gorm:"column:booking_number;uniqueIndex;size:32"`
	VehicleID       string    `gorm:"column:vehicle_id;size:36"`
	VehicleName     string    `gorm:"column:vehicle_name"`
	UserID          string    `gorm:"column:user_id;size:36;index"`
	OwnerID         string    `gorm:"column:owner_id;size:36;index"`
	FullName        string    `gorm:"column:full_name"`
	Email           string    `gorm:"column:email"`
	ContactNumber   string    `gorm:"column:contact_number"`
	PickupDate      time.Time `gorm:"column:pickup_date"`
	ReturnDate      time.Time `gorm:"column:return_date"`
	Passengers      int       `gorm:"column:passengers"`
	NeedDriver      string    `gorm:"column:need_driver;size:8"`
	PickupLocation  *string   `gorm:"column:pickup_location"`
	CNICNumber      *string   `gorm:"column:cnic_number"`
	CNICImage       *string   `gorm:"column:cnic_image;type:text"`
	PricePerDay     float64   `gorm:"column:price_per_day"`
	DriverFee       float64   `gorm:"column:driver_fee"`
	TotalPrice      float64   `gorm:"column:total_price"`
	BookingStatus   string    `gorm:"column:booking_status;size:16"`
	RejectionReason *string   `gorm:"column:rejection_reason"`
	CreatedAt       time.Time `gorm:"column:created_at"`
	UpdatedAt       time.Time `gorm:"column:updated_at"`
}

func (vehicleBookingModel) TableName() string { return "vehicle_bookings" }

func toDomainVehicleBooking(m vehicleBookingModel) *domain.VehicleBooking {
	return &domain.VehicleBooking{
		ID:              m.ID,
		BookingNumber:   m.BookingNumber,
		VehicleID:       m.VehicleID,
		VehicleName:     m.VehicleName,
		UserID:          m.UserID,
		OwnerID:         m.OwnerID,
		FullName:        m.FullName,
		Email:           m.Email,
		ContactNumber:   m.ContactNumber,
		PickupDate:      m.PickupDate.UTC(),
		ReturnDate:      m.ReturnDate.UTC(),
		Passengers:      m.Passengers,
		NeedDriver:      m.NeedDriver,
		PickupLocation:  deref(m.PickupLocation),
		CNICNumber:      deref(m.CNICNumber),
		CNICImage:       deref(m.CNICImage),
		PricePerDay:     m.PricePerDay,
		DriverFee:       m.DriverFee,
		TotalPrice:      m.TotalPrice,
		BookingStatus:   m.BookingStatus,
		RejectionReason: deref(m.RejectionReason),
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
	}
}

func toVehicleBookingModel(b *domain.VehicleBooking) vehicleBookingModel {
	return vehicleBookingModel{
		ID:              b.ID,
		BookingNumber:   b.BookingNumber,
		VehicleID:       b.VehicleID,
		VehicleName:     b.VehicleName,
		UserID:          b.UserID,
		OwnerID:         b.OwnerID,
		FullName:        b.FullName,
		Email:           b.Email,
		ContactNumber:   b.ContactNumber,
		PickupDate:      b.PickupDate,
		ReturnDate:      b.ReturnDate,
		Passengers:      b.Passengers,
		NeedDriver:      b.NeedDriver,
		PickupLocation:  optional(b.PickupLocation),
		CNICNumber:      optional(b.CNICNumber),
		CNICImage:       optional(b.CNICImage),
		PricePerDay:     b.PricePerDay,
		DriverFee:       b.DriverFee,
		TotalPrice:      b.TotalPrice,
		BookingStatus:   b.BookingStatus,
		RejectionReason: optional(b.RejectionReason),
		CreatedAt:       b.CreatedAt,
		UpdatedAt:       b.UpdatedAt,
	}
}

func (r *VehicleBookingRepository) Create(ctx context.Context, b *domain.VehicleBooking) error {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	if b.BookingNumber == "" {
		b.BookingNumber = NewConfirmationNumber()
	}
	if b.BookingStatus == "" {
		b.BookingStatus = domain.LegacyStatusPending
	}
	m := toVehicleBookingModel(b)
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		return translate(err)
	}
	*b = *toDomainVehicleBooking(m)
	return nil
}

func (r *VehicleBookingRepository) GetByID(ctx context.Context, id string) (*domain.VehicleBooking, error) {
	var m vehicleBookingModel
	if err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return toDomainVehicleBooking(m), nil
}

func (r *VehicleBookingRepository) ListByUser(ctx context.Context, userID string) ([]domain.VehicleBooking, error) {
	return r.list(ctx, "user_id = ?", userID)
}

func (r *VehicleBookingRepository) ListByOwner(ctx context.Context, ownerID string) ([]domain.VehicleBooking, error) {
	return r.list(ctx, "owner_id = ?", ownerID)
}

func (r *VehicleBookingRepository) list(ctx context.Context, where string, arg string) ([]domain.VehicleBooking, error) {
	var rows []vehicleBookingModel
	if err := r.db.WithContext(ctx).Where(where, arg).Order("created_at DESC").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]domain.VehicleBooking, 0, len(rows))
	for _, m := range rows {
		out = append(out, *toDomainVehicleBooking(m))
	}
	return out, nil
}

// UpdateStatus only applies while the booking is still in the from status.
func (r *VehicleBookingRepository) UpdateStatus(ctx context.Context, id, from, to, reason string) error {
	tx := r.db.WithContext(ctx).
		Model(&vehicleBookingModel{}).
		Where("id = ? AND booking_status = ?", id, from).
		Updates(map[string]any{
			"booking_status":   to,
			"rejection_reason": optional(reason),
			"updated_at":       time.Now().UTC(),
		})
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return ErrStaleStatus
	}
	return nil
}

func (r *VehicleBookingRepository) Delete(ctx context.Context, id string) error {
	tx := r.db.WithContext(ctx).Delete(&vehicleBookingModel{}, "id = ?", id)
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// PurgeFinished removes rejected legacy bookings returned before cutoff.
func (r *VehicleBookingRepository) PurgeFinished(ctx context.Context, cutoff time.Time) (int64, error) {
	tx := r.db.WithContext(ctx).
		Where("booking_status = ? AND return_date < ?", domain.LegacyStatusRejected, cutoff).
		Delete(&vehicleBookingModel{})
	return tx.RowsAffected, tx.Error
}
