package reservation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"travelbooking/internal/domain"
	"travelbooking/internal/domain/session"
	"travelbooking/internal/pkg/apperr"
	"travelbooking/internal/pkg/validator"

	"github.com/sirupsen/logrus"
)

const DefaultCapacityCeiling = 1000

// Form is what the customer filled in. Dates are kept raw so parsing happens
// in the period validation step.
type Form struct {
	ServiceType     domain.ServiceType
	ServiceID       string
	CheckIn         string
	CheckOut        string
	PartySize       int
	Phone           string
	CNICNumber      string
	CNICPhoto       string
	SpecialRequests string
	NeedsDriver     bool
	PickupLocation  string
}

type BuilderConfig struct {
	CapacityCeiling        int
	MaxCNICPhotoBytes      int
	DefaultDriverFeePerDay float64
}

// Builder validates a booking form and issues exactly one create call.
type Builder struct {
	backend Backend
	events  EventPublisher
	cfg     BuilderConfig
	now     func() time.Time
	log     *logrus.Entry
}

func NewBuilder(backend Backend, events EventPublisher, cfg BuilderConfig, log *logrus.Logger) *Builder {
	if cfg.CapacityCeiling <= 0 {
		cfg.CapacityCeiling = DefaultCapacityCeiling
	}
	if cfg.MaxCNICPhotoBytes <= 0 {
		cfg.MaxCNICPhotoBytes = DefaultMaxCNICPhotoBytes
	}
	return &Builder{
		backend: backend,
		events:  events,
		cfg:     cfg,
		now:     time.Now,
		log:     log.WithField("component", "reservation_builder"),
	}
}

// draft is a form that passed every check not needing the service record.
type draft struct {
	profile  Profile
	period   domain.Period
	party    int
	phone    string
	identity *domain.IdentityVerification
}

// Validate runs the local checks in order: auth, period, phone, identity, party size.
func (b *Builder) Validate(sess *session.Session, form Form) error {
	_, err := b.validate(sess, form)
	return err
}

func (b *Builder) validate(sess *session.Session, form Form) (*draft, error) {
	if sess == nil {
		return nil, apperr.ErrAuthRequired
	}

	profile, ok := ProfileFor(form.ServiceType)
	if !ok {
		return nil, apperr.Validation("serviceType", "Unknown service type")
	}
	if strings.TrimSpace(form.ServiceID) == "" {
		return nil, apperr.Validation("serviceId", "Service is required")
	}

	period, err := b.parsePeriod(profile, form.CheckIn, form.CheckOut)
	if err != nil {
		return nil, err
	}

	phone := strings.TrimSpace(form.Phone)
	if phone == "" {
		phone = strings.TrimSpace(sess.User.Phone)
	}
	if phone == "" {
		return nil, apperr.Validation("phone", "Phone number is required")
	}

	var identity *domain.IdentityVerification
	if profile.IdentityRequired {
		number := strings.TrimSpace(form.CNICNumber)
		if number == "" {
			return nil, apperr.Validation("cnicNumber", "CNIC number is required")
		}
		if strings.TrimSpace(form.CNICPhoto) == "" {
			return nil, apperr.Validation("cnicPhotoDataUri", "CNIC photo is required")
		}
		if err := ValidateCNICPhoto(form.CNICPhoto, b.cfg.MaxCNICPhotoBytes); err != nil {
			return nil, err
		}
		identity = &domain.IdentityVerification{CNICNumber: number, CNICPhoto: strings.TrimSpace(form.CNICPhoto)}
	}

	party := form.PartySize
	if party == 0 {
		party = 1
	}
	if party < 1 {
		return nil, apperr.Validation("partySize", "At least one guest is required")
	}

	return &draft{profile: profile, period: period, party: party, phone: phone, identity: identity}, nil
}

func (b *Builder) parsePeriod(p Profile, rawIn, rawOut string) (domain.Period, error) {
	rawIn, rawOut = strings.TrimSpace(rawIn), strings.TrimSpace(rawOut)

	if rawIn == "" && rawOut == "" && p.SingleDay {
		d := today(b.now())
		return domain.Period{CheckIn: d, CheckOut: d}, nil
	}
	if rawIn == "" {
		return domain.Period{}, apperr.Validation("checkInDate", "Check-in date is required")
	}
	checkIn, err := ParseDate(rawIn)
	if err != nil {
		return domain.Period{}, apperr.Validation("checkInDate", "Check-in date is invalid")
	}
	if rawOut == "" {
		if p.SingleDay {
			return domain.Period{CheckIn: checkIn, CheckOut: checkIn}, nil
		}
		return domain.Period{}, apperr.Validation("checkOutDate", "Check-out date is required")
	}
	checkOut, err := ParseDate(rawOut)
	if err != nil {
		return domain.Period{}, apperr.Validation("checkOutDate", "Check-out date is invalid")
	}
	if checkOut.Before(checkIn) {
		return domain.Period{}, apperr.Validation("checkOutDate", "Check-out date must not be before check-in date")
	}
	return domain.Period{CheckIn: checkIn, CheckOut: checkOut}, nil
}

// Submit validates the form, prices it from the service record and creates the reservation.
func (b *Builder) Submit(ctx context.Context, sess *session.Session, form Form) (*domain.Reservation, error) {
	d, err := b.validate(sess, form)
	if err != nil {
		return nil, err
	}

	raw, err := b.backend.GetService(ctx, form.ServiceType, form.ServiceID)
	if err != nil {
		return nil, fmt.Errorf("load service: %w", err)
	}
	rec, err := d.profile.ParseRecord(raw)
	if err != nil {
		return nil, fmt.Errorf("load service: %w", err)
	}

	capacity := b.cfg.CapacityCeiling
	if rec.HasCapacity {
		capacity = rec.Capacity
	}
	if d.party > capacity {
		return nil, apperr.Validation("partySize", fmt.Sprintf("Maximum %d guests allowed", capacity))
	}

	var flatFee float64
	if form.NeedsDriver && d.profile.DriverFeeField != "" {
		flatFee = b.cfg.DefaultDriverFeePerDay
		if rec.HasDriverFee {
			flatFee = rec.DriverFeePerDay
		}
	}
	price := d.profile.Quote(rec.Price(), d.period, d.party, flatFee)

	payload := &CreatePayload{
		ServiceID:   strings.TrimSpace(form.ServiceID),
		ServiceType: form.ServiceType,
		ProviderID:  rec.ProviderID,
		Customer: domain.Customer{
			Name:  sess.User.Name,
			Email: sess.User.Email,
			Phone: d.phone,
		},
		Period:          PayloadPeriod{CheckIn: d.period.CheckIn, CheckOut: d.period.CheckOut},
		PartySize:       d.party,
		Identity:        d.identity,
		SpecialRequests: strings.TrimSpace(form.SpecialRequests),
		NeedsDriver:     form.NeedsDriver && d.profile.DriverFeeField != "",
		PickupLocation:  strings.TrimSpace(form.PickupLocation),
		UnitPrice:       price.UnitPrice,
		FlatFeePerDay:   price.FlatFeePerDay,
		DurationDays:    price.DurationDays,
		TotalAmount:     price.Total,
		Status:          domain.ReservationPending,
	}
	if err := validator.Check(payload); err != nil {
		return nil, err
	}

	created, err := b.backend.CreateReservation(ctx, sess.BackendToken, payload)
	if err != nil {
		fields := logrus.Fields{"service_type": form.ServiceType, "service_id": payload.ServiceID, "user_id": sess.User.ID}
		var be *apperr.BackendError
		if errors.As(err, &be) {
			fields["status"] = be.Status
		}
		b.log.WithError(err).WithFields(fields).Warn("reservation create failed")
		return nil, fmt.Errorf("create reservation: %w", err)
	}

	b.log.WithFields(logrus.Fields{
		"reservation_id": created.ID,
		"confirmation":   created.ConfirmationNumber,
		"service_type":   created.ServiceType,
		"total":          created.TotalAmount,
	}).Info("reservation created")

	publish(ctx, b.events, b.log, NewEvent(EventReservationCreated, *created, sess.User.ID))
	return created, nil
}

// ParseDate accepts a calendar date or an RFC 3339 timestamp.
func ParseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if t, err := time.Parse(time.DateOnly, raw); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, raw)
}
