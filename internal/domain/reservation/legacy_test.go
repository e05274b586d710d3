package reservation

import (
	"testing"

	"travelbooking/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const legacyListing = `[
  {
    "_id": "lv-1",
    "vehicleId": "v-9",
    "vehicleName": "Toyota Corolla",
    "userId": "c-1",
    "ownerId": "p-1",
    "fullName": "Ayesha Khan",
    "email": "ayesha@example.com",
    "contactNumber": "03001234567",
    "pickupDate": "2026-04-10",
    "returnDate": "2026-04-12T00:00:00Z",
    "needDriver": "yes",
    "pickupLocation": "Lahore Airport",
    "cnicNumber": "35202-1234567-1",
    "cnicImage": "data:image/png;base64,AAAA",
    "pricePerDay": 5000,
    "driverFee": 700000,
    "totalPrice": 1410000,
    "bookingStatus": "Approved",
    "createdAt": "2026-04-01T09:30:00Z"
  },
  {"id": "lv-2", "bookingStatus": "rejected", "rejectionReason": "Vehicle in service", "passengers": 3}
]`

func TestAdaptLegacyVehicleList(t *testing.T) {
	items, err := AdaptLegacyVehicleList([]byte(legacyListing))
	require.NoError(t, err)
	require.Len(t, items, 2)

	first := items[0]
	assert.Equal(t, "lv-1", first.ID)
	assert.Equal(t, domain.RecordLegacyVehicle, first.RecordKind)
	assert.Equal(t, domain.ServiceVehicle, first.ServiceType)
	assert.Equal(t, "v-9", first.ServiceID)
	assert.Equal(t, "p-1", first.ProviderID)
	assert.Equal(t, "03001234567", first.Customer.Phone)
	assert.Equal(t, domain.ReservationConfirmed, first.Status)
	assert.True(t, first.NeedsDriver)
	assert.Equal(t, 2, first.DurationDays)
	assert.Equal(t, 1410000.0, first.TotalAmount)
	require.NotNil(t, first.Identity)
	assert.Equal(t, "35202-1234567-1", first.Identity.CNICNumber)

	second := items[1]
	assert.Equal(t, "lv-2", second.ID)
	assert.Equal(t, domain.ReservationCancelled, second.Status)
	assert.Equal(t, "Vehicle in service", second.RejectionReason)
	assert.Equal(t, 3, second.PartySize)
	assert.Nil(t, second.Identity)
}

func TestAdaptLegacyVehicleList_WrappedAndInvalid(t *testing.T) {
	items, err := AdaptLegacyVehicleList([]byte(`{"bookings":[{"_id":"lv-3","bookingStatus":"pending"}]}`))
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, domain.ReservationPending, items[0].Status)

	_, err = AdaptLegacyVehicleList([]byte(`{"bookings":"nope"}`))
	assert.Error(t, err)
	_, err = AdaptLegacyVehicleList([]byte(`not json`))
	assert.Error(t, err)
}

func TestLegacyStatusBody(t *testing.T) {
	assert.Equal(t, map[string]any{"bookingStatus": "approved"},
		LegacyStatusBody(StatusUpdate{Status: domain.ReservationConfirmed}))
	assert.Equal(t, map[string]any{"bookingStatus": "rejected", "rejectionReason": "No driver"},
		LegacyStatusBody(StatusUpdate{Status: domain.ReservationCancelled, RejectionReason: "No driver"}))
}
