package domain

import "time"

// VehicleBooking is a vehicle rental stored by the older booking flow. It is
// served in its original wire shape; gateways normalize it into Reservation.
type VehicleBooking struct {
	ID              string    `json:"_id"`
	BookingNumber   string    `json:"bookingNumber"`
	VehicleID       string    `json:"vehicleId"`
	VehicleName     string    `json:"vehicleName"`
	UserID          string    `json:"userId"`
	OwnerID         string    `json:"ownerId"`
	FullName        string    `json:"fullName"`
	Email           string    `json:"email"`
	ContactNumber   string    `json:"contactNumber"`
	PickupDate      time.Time `json:"pickupDate"`
	ReturnDate      time.Time `json:"returnDate"`
	Passengers      int       `json:"passengers"`
	NeedDriver      string    `json:"needDriver"`
	PickupLocation  string    `json:"pickupLocation,omitempty"`
	CNICNumber      string    `json:"cnicNumber,omitempty"`
	CNICImage       string    `json:"cnicImage,omitempty"`
	PricePerDay     float64   `json:"pricePerDay"`
	DriverFee       float64   `json:"driverFee"`
	TotalPrice      float64   `json:"totalPrice"`
	BookingStatus   string    `json:"bookingStatus"`
	RejectionReason string    `json:"rejectionReason,omitempty"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

const (
	LegacyStatusPending  = "pending"
	LegacyStatusApproved = "approved"
	LegacyStatusRejected = "rejected"
)
