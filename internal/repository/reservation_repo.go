package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"travelbooking/internal/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const confirmationAttempts = 3

type ReservationRepository struct {
	db *gorm.DB
}

func NewReservationRepository(db *gorm.DB) *ReservationRepository {
	return &ReservationRepository{db: db}
}

type reservationModel struct {
	ID                 string    `gorm:"column:id;primaryKey;size:36"`
	ConfirmationNumber string    `gorm:"column:confirmation_number;uniqueIndex;size:32"`
	ServiceID          string    `gorm:"column:service_id;size:36"`
	ServiceType        string    `gorm:"column:service_type;size:32;index"`
	ServiceName        string    `gorm:"column:service_name"`
	CustomerID         string    `gorm:"column:customer_id;size:36;index"`
	ProviderID         string    `gorm:"column:provider_id;size:36;index"`
	CustomerName       string    `gorm:"column:customer_name"`
	CustomerEmail      string    `gorm:"column:customer_email"`
	CustomerPhone      string    `gorm:"column:customer_phone"`
	CheckIn            time.Time `gorm:"column:check_in"`
	CheckOut           time.Time `gorm:"column:check_out"`
	PartySize          int       `gorm:"column:party_size"`
	CNICNumber         *string   `gorm:"column:cnic_number"`
	CNICPhoto          *string   `gorm:"column:cnic_photo;type:text"`
	SpecialRequests    *string   `gorm:"column:special_requests"`
	NeedsDriver        bool      `gorm:"column:needs_driver"`
	PickupLocation     *string   `gorm:"column:pickup_location"`
	UnitPrice          float64   `gorm:"column:unit_price"`
	FlatFeePerDay      float64   `gorm:"column:flat_fee_per_day"`
	DurationDays       int       `gorm:"column:duration_days"`
	TotalAmount        float64   `gorm:"column:total_amount"`
	Status             string    `gorm:"column:status;size:16"`
	RejectionReason    *string   `gorm:"column:rejection_reason"`
	CreatedAt          time.Time `gorm:"column:created_at"`
	UpdatedAt          time.Time `gorm:"column:updated_at"`
}

func (reservationModel) TableName() string { return "reservations" }

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func toDomainReservation(m reservationModel) *domain.Reservation {
	r := &domain.Reservation{
		ID:                 m.ID,
		RecordKind:         domain.RecordService,
		ConfirmationNumber: m.ConfirmationNumber,
		ServiceID:          m.ServiceID,
		ServiceType:        domain.ServiceType(m.ServiceType),
		ServiceName:        m.ServiceName,
		CustomerID:         m.CustomerID,
		ProviderID:         m.ProviderID,
		Customer: domain.Customer{
			Name:  m.CustomerName,
			Email: m.CustomerEmail,
			Phone: m.CustomerPhone,
		},
		Period:          domain.Period{CheckIn: m.CheckIn.UTC(), CheckOut: m.CheckOut.UTC()},
		PartySize:       m.PartySize,
		SpecialRequests: deref(m.SpecialRequests),
		NeedsDriver:     m.NeedsDriver,
		PickupLocation:  deref(m.PickupLocation),
		UnitPrice:       m.UnitPrice,
		FlatFeePerDay:   m.FlatFeePerDay,
		DurationDays:    m.DurationDays,
		TotalAmount:     m.TotalAmount,
		Status:          domain.ReservationStatus(m.Status),
		RejectionReason: deref(m.RejectionReason),
		CreatedAt:       m.CreatedAt,
	}
	if m.CNICNumber != nil {
		r.Identity = &domain.IdentityVerification{CNICNumber: *m.CNICNumber, CNICPhoto: deref(m.CNICPhoto)}
	}
	return r
}

func toReservationModel(r *domain.Reservation) reservationModel {
	m := reservationModel{
		ID:                 r.ID,
		ConfirmationNumber: r.ConfirmationNumber,
		ServiceID:          r.ServiceID,
		ServiceType:        string(r.ServiceType),
		ServiceName:        r.ServiceName,
		CustomerID:         r.CustomerID,
		ProviderID:         r.ProviderID,
		CustomerName:       r.Customer.Name,
		CustomerEmail:      r.Customer.Email,
		CustomerPhone:      r.Customer.Phone,
		CheckIn:            r.Period.CheckIn,
		CheckOut:           r.Period.CheckOut,
		PartySize:          r.PartySize,
		SpecialRequests:    optional(r.SpecialRequests),
		NeedsDriver:        r.NeedsDriver,
		PickupLocation:     optional(r.PickupLocation),
		UnitPrice:          r.UnitPrice,
		FlatFeePerDay:      r.FlatFeePerDay,
		DurationDays:       r.DurationDays,
		TotalAmount:        r.TotalAmount,
		Status:             string(r.Status),
		RejectionReason:    optional(r.RejectionReason),
		CreatedAt:          r.CreatedAt,
	}
	if r.Identity != nil {
		m.CNICNumber = optional(r.Identity.CNICNumber)
		m.CNICPhoto = optional(r.Identity.CNICPhoto)
	}
	return m
}

// NewConfirmationNumber returns a short human-readable booking reference.
func NewConfirmationNumber() string {
	return "TB-" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:10])
}

// Create assigns an id and a confirmation number, retrying when the number collides.
func (r *ReservationRepository) Create(ctx context.Context, res *domain.Reservation) error {
	if res.ID == "" {
		res.ID = uuid.NewString()
	}
	var err error
	for attempt := 0; attempt < confirmationAttempts; attempt++ {
		res.ConfirmationNumber = NewConfirmationNumber()
		m := toReservationModel(res)
		err = translate(r.db.WithContext(ctx).Create(&m).Error)
		if err == nil {
			*res = *toDomainReservation(m)
			return nil
		}
		if !errors.Is(err, ErrDuplicate) {
			return err
		}
	}
	return err
}

func (r *ReservationRepository) GetByID(ctx context.Context, id string) (*domain.Reservation, error) {
	var m reservationModel
	if err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return toDomainReservation(m), nil
}

// ListFilter narrows listings; empty fields are ignored.
type ListFilter struct {
	CustomerID  string
	ProviderID  string
	ServiceType domain.ServiceType
}

func (r *ReservationRepository) List(ctx context.Context, f ListFilter) ([]domain.Reservation, error) {
	q := r.db.WithContext(ctx).Model(&reservationModel{})
	if f.CustomerID != "" {
		q = q.Where("customer_id = ?", f.CustomerID)
	}
	if f.ProviderID != "" {
		q = q.Where("provider_id = ?", f.ProviderID)
	}
	if f.ServiceType != "" {
		q = q.Where("service_type = ?", string(f.ServiceType))
	}

	var rows []reservationModel
	if err := q.Order("created_at DESC").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]domain.Reservation, 0, len(rows))
	for _, m := range rows {
		out = append(out, *toDomainReservation(m))
	}
	return out, nil
}

// UpdateStatus moves the row from one status to another. ErrStaleStatus means
// the row was no longer in the from status.
func (r *ReservationRepository) UpdateStatus(ctx context.Context, id string, from, to domain.ReservationStatus, reason string) error {
	tx := r.db.WithContext(ctx).
		Model(&reservationModel{}).
		Where("id = ? AND status = ?", id, string(from)).
		Updates(map[string]any{
			"status":           string(to),
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

func (r *ReservationRepository) Delete(ctx context.Context, id string) error {
	tx := r.db.WithContext(ctx).Delete(&reservationModel{}, "id = ?", id)
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// PurgeFinished removes cancelled or completed reservations whose checkout is
// before cutoff and returns how many rows went away.
func (r *ReservationRepository) PurgeFinished(ctx context.Context, cutoff time.Time) (int64, error) {
	tx := r.db.WithContext(ctx).
		Where("status IN ? AND check_out < ?", []string{string(domain.ReservationCancelled), string(domain.ReservationCompleted)}, cutoff).
		Delete(&reservationModel{})
	return tx.RowsAffected, tx.Error
}
