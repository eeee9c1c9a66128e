package places

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

const (
	nominatimURL = "https://nominatim.openstreetmap.org/search"
	overpassURL  = "https://overpass-api.de/api/interpreter"

	osmUserAgent = "SheCareBot/1.0 (contact: support@shecare.ai)"
)

// OSMBackend is the keyless fallback: Nominatim for geocoding, Overpass for
// clinic/hospital nodes around the point.
type OSMBackend struct {
	httpClient *http.Client
}

func NewOSMBackend() *OSMBackend {
	return &OSMBackend{
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

// FindClinics resolves the location through Nominatim, then queries Overpass
// for amenity=clinic and amenity=hospital nodes within the radius.
func (o *OSMBackend) FindClinics(ctx context.Context, location string, radiusMeters int) (*Result, error) {
	if radiusMeters <= 0 {
		radiusMeters = DefaultRadiusMeters
	}

	lat, lon, err := o.geocode(ctx, location)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`[out:json];
(
  node["amenity"="clinic"](around:%d,%s,%s);
  node["amenity"="hospital"](around:%d,%s,%s);
);
out;`, radiusMeters, lat, lon, radiusMeters, lat, lon)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		overpassURL+"?"+url.Values{"data": {query}}.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build overpass request failed: %w", err)
	}
	req.Header.Set("User-Agent", osmUserAgent)

	resp, err := o.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("overpass request failed: %w", err)
	}
	defer resp.Body.Close()

	var payload struct {
		Elements []struct {
			Tags map[string]string `json:"tags"`
		} `json:"elements"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("parse overpass json failed: %w", err)
	}

	clinics := make([]Clinic, 0, len(payload.Elements))
	for _, el := range payload.Elements {
		name := el.Tags["name"]
		if name == "" {
			name = "Unnamed Clinic"
		}
		address := el.Tags["addr:full"]
		if address == "" {
			address = el.Tags["addr:street"]
		}
		clinics = append(clinics, Clinic{Name: name, Address: address})
	}

	return &Result{Clinics: clinics}, nil
}

func (o *OSMBackend) geocode(ctx context.Context, location string) (lat, lon string, err error) {
	q := url.Values{}
	q.Set("q", location)
	q.Set("format", "json")
	q.Set("limit", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, nominatimURL+"?"+q.Encode(), nil)
	if err != nil {
		return "", "", fmt.Errorf("build nominatim request failed: %w", err)
	}
	req.Header.Set("User-Agent", osmUserAgent)

	resp, err := o.httpClient.Do(req)
	if err != nil {
		return "", "", fmt.Errorf("nominatim request failed: %w", err)
	}
	defer resp.Body.Close()

	var payload []struct {
		Lat string `json:"lat"`
		Lon string `json:"lon"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", "", fmt.Errorf("parse nominatim json failed: %w", err)
	}
	if len(payload) == 0 {
		return "", "", fmt.Errorf("nominatim found no match for %q", location)
	}

	return payload[0].Lat, payload[0].Lon, nil
}
