package services

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/shecare-health/shecare-backend/internal/places"
)

const (
	clinicNoResults    = "⚕️ Sorry, I couldn’t find any clinics near that location."
	clinicBadLocation  = "⚠️ Please provide a valid location name."
	maxClinicsPerReply = 6
)

// ClinicLocator finds clinics near a free-text location: the primary backend
// (Google when a key is configured) first, OpenStreetMap as fallback. It
// never returns an error — every failure collapses into a user-facing "no
// results" message, since a partial clinic list has no retry semantics worth
// surfacing.
type ClinicLocator struct {
	primary  places.Backend // nil when unconfigured
	fallback places.Backend
	radius   int
}

func NewClinicLocator(primary, fallback places.Backend) *ClinicLocator {
	return &ClinicLocator{
		primary:  primary,
		fallback: fallback,
		radius:   places.DefaultRadiusMeters,
	}
}

// Find resolves the location and formats up to six venue entries.
func (l *ClinicLocator) Find(ctx context.Context, location string) string {
	query := strings.TrimSpace(location)
	if len(query) < 2 {
		return clinicBadLocation
	}

	log.Printf("🔎 Searching for clinics near: %s", query)

	var result *places.Result
	if l.primary != nil {
		r, err := l.primary.FindClinics(ctx, query, l.radius)
		if err != nil {
			log.Printf("⚠️  Primary clinic search failed: %v", err)
		} else {
			result = r
		}
	}

	if result == nil || len(result.Clinics) == 0 {
		r, err := l.fallback.FindClinics(ctx, query, l.radius)
		if err != nil {
			log.Printf("⚠️  Fallback clinic search failed: %v", err)
		} else {
			result = r
		}
	}

	if result == nil || len(result.Clinics) == 0 {
		return clinicNoResults
	}

	return formatClinics(result)
}

func formatClinics(result *places.Result) string {
	var entries []string
	if result.ResolvedAddress != "" {
		entries = append(entries, "📍 Showing clinics near: "+result.ResolvedAddress)
	}

	clinics := result.Clinics
	if len(clinics) > maxClinicsPerReply {
		clinics = clinics[:maxClinicsPerReply]
	}
	for _, c := range clinics {
		var b strings.Builder
		fmt.Fprintf(&b, "🏥 %s\n", c.Name)
		if c.Rating > 0 {
			fmt.Fprintf(&b, "⭐ %.1f\n", c.Rating)
		}
		fmt.Fprintf(&b, "📍 %s", c.Address)
		if c.MapsURL != "" {
			fmt.Fprintf(&b, "\n🗺️ %s", c.MapsURL)
		}
		entries = append(entries, b.String())
	}

	return "🩺 Clinics near you:\n\n" + strings.Join(entries, "\n\n")
}
