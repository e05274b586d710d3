package repository

import "gorm.io/gorm"

// Migrate creates or updates every table the backend uses.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&userModel{}, &offeringModel{}, &reservationModel{}, &vehicleBookingModel{})
}
