// File: services/venue/selector.go
package venue

import (
	"context"
	"math"
	"time"

	"meetpoint/models"
)

// Selection is the outcome of picking a venue for a proposal.
type Selection struct {
	Chosen           models.ResolvedVenue
	AvailabilityMode string
}

// Selector resolves one venue near a midpoint for a target instant.
type Selector interface {
	PickOne(ctx context.Context, midLat, midLng float64, target time.Time) (*Selection, error)
}

// DefaultSelector is the production implementation: it verifies opening
// hours where the provider supplied them, prefers verified-open venues, and
// picks the one nearest to the midpoint.
type DefaultSelector struct {
	Directory DirectoryClient
}

// PickOne searches the directory once, resolves each candidate's
// availability at target, and returns the preferred candidate together with
// the mode the pool was narrowed under.
func (s *DefaultSelector) PickOne(ctx context.Context, midLat, midLng float64, target time.Time) (*Selection, error) {
	if target.IsZero() {
		return nil, ErrInvalidInstant
	}

	candidates, err := s.Directory.Search(ctx, midLat, midLng)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return nil, ErrNoCandidates
	}

	resolved := make([]models.ResolvedVenue, 0, len(candidates))
	for _, c := range candidates {
		r := models.ResolvedVenue{
			VenueCandidate: c,
			DistanceMeters: haversineMeters(midLat, midLng, c.Lat, c.Lng),
		}
		if len(c.Schedule) > 0 && zoneUsable(c.TimeZone) {
			r.AvailabilityVerified = true
			r.OpenAtProposedTime = IsOpenAt(target, c.TimeZone, c.Schedule)
		}
		resolved = append(resolved, r)
	}

	pool := make([]models.ResolvedVenue, 0, len(resolved))
	for _, r := range resolved {
		if r.AvailabilityVerified && r.OpenAtProposedTime {
			pool = append(pool, r)
		}
	}
	mode := models.AvailabilityVerifiedOpen
	if len(pool) == 0 {
		pool = resolved
		mode = models.AvailabilityBestEffort
	}

	// Nearest wins; a strict comparison keeps provider order on ties.
	chosen := pool[0]
	for _, r := range pool[1:] {
		if r.DistanceMeters < chosen.DistanceMeters {
			chosen = r
		}
	}

	return &Selection{Chosen: chosen, AvailabilityMode: mode}, nil
}

// haversineMeters is the great-circle distance on a spherical earth.
func haversineMeters(aLat, aLng, bLat, bLng float64) float64 {
	const earthRadius = 6371000.0
	toRad := func(deg float64) float64 { return deg * math.Pi / 180 }

	dLat := toRad(bLat - aLat)
	dLng := toRad(bLng - aLng)
	s1 := math.Sin(dLat / 2)
	s2 := math.Sin(dLng / 2)
	h := s1*s1 + math.Cos(toRad(aLat))*math.Cos(toRad(bLat))*s2*s2
	return 2 * earthRadius * math.Asin(math.Sqrt(h))
}
