package places

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"time"
)

const (
	googleGeocodeURL = "https://maps.googleapis.com/maps/api/geocode/json"
	googleNearbyURL  = "https://maps.googleapis.com/maps/api/place/nearbysearch/json"
)

// GoogleBackend searches clinics with the Google Geocoding + Places APIs.
type GoogleBackend struct {
	apiKey     string
	httpClient *http.Client
}

// NewGoogleBackend reads GOOGLE_MAPS_API_KEY from the environment. Configured
// reports whether a key is present; callers skip straight to the fallback
// backend when it is not.
func NewGoogleBackend() *GoogleBackend {
	return &GoogleBackend{
		apiKey:     os.Getenv("GOOGLE_MAPS_API_KEY"),
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

func (g *GoogleBackend) Configured() bool { return g.apiKey != "" }

// FindClinics geocodes the location, then runs a nearby search for hospitals
// matching the "clinic" keyword around the resolved point.
func (g *GoogleBackend) FindClinics(ctx context.Context, location string, radiusMeters int) (*Result, error) {
	if g.apiKey == "" {
		return nil, fmt.Errorf("google maps api key not configured")
	}
	if radiusMeters <= 0 {
		radiusMeters = DefaultRadiusMeters
	}

	lat, lng, formatted, err := g.geocode(ctx, location)
	if err != nil {
		return nil, err
	}

	clinics, err := g.nearbyClinics(ctx, lat, lng, radiusMeters)
	if err != nil {
		return nil, err
	}

	return &Result{ResolvedAddress: formatted, Clinics: clinics}, nil
}

func (g *GoogleBackend) geocode(ctx context.Context, location string) (lat, lng float64, formatted string, err error) {
	q := url.Values{}
	q.Set("address", location)
	q.Set("key", g.apiKey)

	var payload struct {
		Status  string `json:"status"`
		Results []struct {
			FormattedAddress string `json:"formatted_address"`
			Geometry         struct {
				Location struct {
					Lat float64 `json:"lat"`
					Lng float64 `json:"lng"`
				} `json:"location"`
			} `json:"geometry"`
		} `json:"results"`
	}
	if err = g.getJSON(ctx, googleGeocodeURL, q, &payload); err != nil {
		return 0, 0, "", err
	}

	if payload.Status != "OK" || len(payload.Results) == 0 {
		return 0, 0, "", fmt.Errorf("geocode failed for %q: status %s", location, payload.Status)
	}

	best := payload.Results[0]
	return best.Geometry.Location.Lat, best.Geometry.Location.Lng, best.FormattedAddress, nil
}

func (g *GoogleBackend) nearbyClinics(ctx context.Context, lat, lng float64, radiusMeters int) ([]Clinic, error) {
	q := url.Values{}
	q.Set("location", fmt.Sprintf("%f,%f", lat, lng))
	q.Set("radius", fmt.Sprintf("%d", radiusMeters))
	// "clinic" is not a supported place type everywhere; hospital type with a
	// clinic keyword is the reliable combination.
	q.Set("type", "hospital")
	q.Set("keyword", "clinic")
	q.Set("key", g.apiKey)

	var payload struct {
		Status       string `json:"status"`
		ErrorMessage string `json:"error_message"`
		Results      []struct {
			Name             string  `json:"name"`
			Vicinity         string  `json:"vicinity"`
			FormattedAddress string  `json:"formatted_address"`
			PlaceID          string  `json:"place_id"`
			Rating           float64 `json:"rating"`
		} `json:"results"`
	}
	if err := g.getJSON(ctx, googleNearbyURL, q, &payload); err != nil {
		return nil, err
	}

	if payload.Status != "OK" && payload.Status != "ZERO_RESULTS" {
		return nil, fmt.Errorf("google places error: %s - %s", payload.Status, payload.ErrorMessage)
	}

	clinics := make([]Clinic, 0, len(payload.Results))
	for _, place := range payload.Results {
		name := place.Name
		if name == "" {
			name = "Unknown Clinic"
		}
		address := place.Vicinity
		if address == "" {
			address = place.FormattedAddress
		}
		if address == "" {
			address = "Address not available"
		}

		mapsURL := ""
		if place.PlaceID != "" {
			mapsURL = "https://www.google.com/maps/search/?api=1&query_place_id=" + url.QueryEscape(place.PlaceID)
		} else {
			mapsURL = "https://www.google.com/maps/search/?api=1&query=" + url.QueryEscape(name+" "+address)
		}

		clinics = append(clinics, Clinic{
			Name:    name,
			Address: address,
			Rating:  place.Rating,
			MapsURL: mapsURL,
		})
	}
	return clinics, nil
}

func (g *GoogleBackend) getJSON(ctx context.Context, endpoint string, query url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+query.Encode(), nil)
	if err != nil {
		return fmt.Errorf("build places request failed: %w", err)
	}

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("places request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("places response status %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("parse places json failed: %w", err)
	}
	return nil
}
