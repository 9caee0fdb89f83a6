package models

import "time"

// AvailabilitySlot is the daily window a user has declared for meetings.
type AvailabilitySlot string

const (
	SlotMorning AvailabilitySlot = "MORNING" // 06:00-12:00
	SlotEvening AvailabilitySlot = "EVENING" // 16:00-22:00
)

// User carries the resolved identity fields the negotiation engine consumes.
// Authentication and profile management live in a separate system; this
// service only reads.
type User struct {
	ID        string  `bson:"id" json:"id"`
	FirstName string  `bson:"firstName" json:"firstName"`
	LastName  string  `bson:"lastName" json:"lastName"`
	Lat       float64 `bson:"lat" json:"lat"`
	Lng       float64 `bson:"lng" json:"lng"`

	WeekdaysAvailability AvailabilitySlot `bson:"weekdaysAvailability" json:"weekdaysAvailability"`
	WeekendsAvailability AvailabilitySlot `bson:"weekendsAvailability" json:"weekendsAvailability"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
}

// PublicProfile is the projection of a user embedded in request responses.
type PublicProfile struct {
	ID        string `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

// Public returns the projection safe to embed in another user's response.
func (u *User) Public() PublicProfile {
	return PublicProfile{ID: u.ID, FirstName: u.FirstName, LastName: u.LastName}
}
