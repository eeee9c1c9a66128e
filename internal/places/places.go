// Package places resolves free-text locations to nearby clinics. A Google
// geocode+nearby-search backend is primary; OpenStreetMap (Nominatim +
// Overpass) serves as fallback when Google is unconfigured or empty-handed.
package places

import "context"

// DefaultRadiusMeters is the clinic search radius unless overridden.
const DefaultRadiusMeters = 5000

// Clinic is one venue entry ready for user-facing formatting.
type Clinic struct {
	Name    string
	Address string
	Rating  float64 // 0 when unknown
	MapsURL string  // empty when the backend cannot build one
}

// Result is one backend's answer for a location query.
type Result struct {
	// ResolvedAddress is the geocoded human-readable area, used to show the
	// user what location the results are anchored to. May be empty.
	ResolvedAddress string
	Clinics         []Clinic
}

// Backend searches clinics around a free-text location. Zero clinics with a
// nil error means the location resolved but nothing was found nearby.
type Backend interface {
	FindClinics(ctx context.Context, location string, radiusMeters int) (*Result, error)
}
