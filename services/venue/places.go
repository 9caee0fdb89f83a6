// File: services/venue/places.go
package venue

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"meetpoint/config"
	"meetpoint/models"
	"meetpoint/utils"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

const placesSearchURL = "https://places.googleapis.com/v1/places:searchNearby"

const placesFieldMask = "places.id,places.displayName,places.formattedAddress," +
	"places.location,places.regularOpeningHours,places.timeZone"

// DirectoryClient searches an external place directory for candidate venues
// around a point.
type DirectoryClient interface {
	Search(ctx context.Context, centerLat, centerLng float64) ([]models.VenueCandidate, error)
}

// GooglePlacesClient implements DirectoryClient against the Places
// searchNearby API. Raw candidate lists are cached briefly in Redis keyed on
// the rounded center, so a counter-offer minutes later skips the provider
// round-trip while openness is still re-evaluated per instant.
type GooglePlacesClient struct {
	HTTPClient   *http.Client
	Cache        *redis.Client
	BaseURL      string
	APIKey       string
	RadiusMeters int
	MaxResults   int
}

// NewGooglePlacesClient builds a client from configuration, clamping radius
// and result count to sane provider bounds.
func NewGooglePlacesClient(cache *redis.Client) *GooglePlacesClient {
	radius := config.AppConfig.GooglePlacesRadiusMeters
	if radius < 100 {
		radius = 100
	}
	if radius > 50000 {
		radius = 50000
	}
	maxResults := config.AppConfig.GooglePlacesMaxResults
	if maxResults < 1 {
		maxResults = 1
	}
	if maxResults > 20 {
		maxResults = 20
	}
	return &GooglePlacesClient{
		HTTPClient:   &http.Client{Timeout: 10 * time.Second},
		Cache:        cache,
		BaseURL:      placesSearchURL,
		APIKey:       config.AppConfig.GooglePlacesAPIKey,
		RadiusMeters: radius,
		MaxResults:   maxResults,
	}
}

// place mirrors the fields requested through the field mask.
type place struct {
	ID          string `json:"id"`
	DisplayName struct {
		Text string `json:"text"`
	} `json:"displayName"`
	FormattedAddress string `json:"formattedAddress"`
	Location         *struct {
		Latitude  float64 `json:"latitude"`
		Longitude float64 `json:"longitude"`
	} `json:"location"`
	RegularOpeningHours struct {
		Periods []struct {
			Open  *placePoint `json:"open"`
			Close *placePoint `json:"close"`
		} `json:"periods"`
	} `json:"regularOpeningHours"`
	TimeZone struct {
		ID string `json:"id"`
	} `json:"timeZone"`
}

type placePoint struct {
	Day    int `json:"day"`
	Hour   int `json:"hour"`
	Minute int `json:"minute"`
}

// Search returns candidate venues near the center. Candidates missing an id
// or coordinates are dropped before being returned.
func (c *GooglePlacesClient) Search(ctx context.Context, centerLat, centerLng float64) ([]models.VenueCandidate, error) {
	logger := utils.GetLogger()

	cacheKey := fmt.Sprintf("%s%.4f:%.4f:%d:%d",
		utils.VenueCachePrefix, centerLat, centerLng, c.RadiusMeters, c.MaxResults)

	if c.Cache != nil {
		cached, err := c.Cache.Get(ctx, cacheKey).Result()
		if err == nil && cached != "" {
			var candidates []models.VenueCandidate
			if err := json.Unmarshal([]byte(cached), &candidates); err == nil {
				return candidates, nil
			}
			// A corrupt cache entry falls through to a fresh search.
		}
	}

	body, err := json.Marshal(map[string]interface{}{
		"includedTypes":  []string{"restaurant"},
		"maxResultCount": c.MaxResults,
		"locationRestriction": map[string]interface{}{
			"circle": map[string]interface{}{
				"center": map[string]float64{
					"latitude":  centerLat,
					"longitude": centerLng,
				},
				"radius": float64(c.RadiusMeters),
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build places request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build places request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Goog-Api-Key", c.APIKey)
	req.Header.Set("X-Goog-FieldMask", placesFieldMask)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, &UpstreamError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, &UpstreamError{Status: resp.StatusCode, Body: string(raw)}
	}

	var data struct {
		Places []place `json:"places"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, &UpstreamError{Err: fmt.Errorf("decoding places response: %w", err)}
	}

	candidates := make([]models.VenueCandidate, 0, len(data.Places))
	for _, p := range data.Places {
		if p.ID == "" || p.Location == nil {
			continue
		}
		name := p.DisplayName.Text
		if name == "" {
			name = "Restaurant"
		}

		candidate := models.VenueCandidate{
			PlaceID:  p.ID,
			Name:     name,
			Address:  p.FormattedAddress,
			Lat:      p.Location.Latitude,
			Lng:      p.Location.Longitude,
			TimeZone: p.TimeZone.ID,
		}
		for _, period := range p.RegularOpeningHours.Periods {
			candidate.Schedule = append(candidate.Schedule, models.SchedulePeriod{
				Open:  (*models.SchedulePoint)(period.Open),
				Close: (*models.SchedulePoint)(period.Close),
			})
		}
		candidates = append(candidates, candidate)
	}

	if c.Cache != nil {
		if raw, err := json.Marshal(candidates); err == nil {
			if err := c.Cache.Set(ctx, cacheKey, raw, utils.VenueCacheTTL).Err(); err != nil {
				logger.Warn("failed to cache venue search results", zap.Error(err))
			}
		}
	}
	return candidates, nil
}
