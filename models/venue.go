package models

// SchedulePoint is one endpoint of an opening-hours period. Values are in
// the venue's local wall-clock time: Day 0 (Sunday) through 6.
type SchedulePoint struct {
	Day    int `json:"day"`
	Hour   int `json:"hour"`
	Minute int `json:"minute"`
}

// SchedulePeriod is one (open, close) window. Close may be absent, which
// means open-ended from Open onward; Open at Sunday 00:00 with no Close
// denotes an always-open venue.
type SchedulePeriod struct {
	Open  *SchedulePoint `json:"open,omitempty"`
	Close *SchedulePoint `json:"close,omitempty"`
}

// VenueCandidate is the transient output of a venue directory search.
// TimeZone and Schedule are optional; both must be present for an
// availability verdict to count as verified.
type VenueCandidate struct {
	PlaceID  string           `json:"placeId"`
	Name     string           `json:"name"`
	Address  string           `json:"address,omitempty"`
	Lat      float64          `json:"lat"`
	Lng      float64          `json:"lng"`
	TimeZone string           `json:"timeZone,omitempty"`
	Schedule []SchedulePeriod `json:"schedule,omitempty"`
}

// AvailabilityMode reports how the venue pool was narrowed during selection.
const (
	AvailabilityVerifiedOpen = "VERIFIED_OPEN"
	AvailabilityBestEffort   = "BEST_EFFORT"
)

// ResolvedVenue is a candidate with its availability verdict and distance
// from the search midpoint.
type ResolvedVenue struct {
	VenueCandidate
	OpenAtProposedTime   bool    `json:"openAtProposedTime"`
	AvailabilityVerified bool    `json:"availabilityVerified"`
	DistanceMeters       float64 `json:"distanceMeters"`
}

// Snapshot copies the resolved venue into the form persisted on a proposal.
func (v *ResolvedVenue) Snapshot() VenueSnapshot {
	return VenueSnapshot{
		PlaceID:              v.PlaceID,
		Name:                 v.Name,
		Address:              v.Address,
		Lat:                  v.Lat,
		Lng:                  v.Lng,
		OpenAtProposedTime:   v.OpenAtProposedTime,
		AvailabilityVerified: v.AvailabilityVerified,
	}
}
