package domain

import "time"

// Offering is a bookable service listed by a provider. Type-specific fields
// (pricePerNight, maxGuests, seats, ...) live in Attributes.
type Offering struct {
	ID         string         `json:"id"`
	Type       ServiceType    `json:"type"`
	ProviderID string         `json:"providerId"`
	Name       string         `json:"name"`
	Attributes map[string]any `json:"attributes"`
	CreatedAt  time.Time      `json:"createdAt"`
}

// Flatten renders the offering the way the backend serves it: one flat object.
func (o Offering) Flatten() map[string]any {
	out := make(map[string]any, len(o.Attributes)+4)
	for k, v := range o.Attributes {
		out[k] = v
	}
	out["id"] = o.ID
	out["type"] = string(o.Type)
	out["providerId"] = o.ProviderID
	out["name"] = o.Name
	return out
}
