package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/shecare-health/shecare-backend/internal/places"
)

func nairobiResult(n int) *places.Result {
	r := &places.Result{ResolvedAddress: "Nairobi, Kenya"}
	names := []string{
		"Mama Lucy Hospital", "Westlands Clinic", "Upper Hill Medical Centre",
		"Kilimani Health Point", "Karen Family Clinic", "Eastleigh Dispensary",
		"South B Clinic", "Lang'ata Health Centre",
	}
	for i := 0; i < n && i < len(names); i++ {
		r.Clinics = append(r.Clinics, places.Clinic{
			Name:    names[i],
			Address: "Somewhere Rd, Nairobi",
			Rating:  4.2,
			MapsURL: "https://maps.example/" + names[i],
		})
	}
	return r
}

func TestClinicFindUsesPrimary(t *testing.T) {
	primary := &stubPlaces{result: nairobiResult(2)}
	fallback := &stubPlaces{result: nairobiResult(1)}
	locator := NewClinicLocator(primary, fallback)

	reply := locator.Find(context.Background(), "Nairobi")

	assert.Contains(t, reply, "🩺 Clinics near you:")
	assert.Contains(t, reply, "📍 Showing clinics near: Nairobi, Kenya")
	assert.Contains(t, reply, "Mama Lucy Hospital")
	assert.Zero(t, fallback.calls.Load(), "fallback must not run when primary has results")
}

func TestClinicFindFallsBackOnPrimaryError(t *testing.T) {
	primary := &stubPlaces{err: errors.New("geocode failed")}
	fallback := &stubPlaces{result: nairobiResult(1)}
	locator := NewClinicLocator(primary, fallback)

	reply := locator.Find(context.Background(), "Nairobi")

	assert.Contains(t, reply, "Mama Lucy Hospital")
	assert.Equal(t, int32(1), fallback.calls.Load())
}

func TestClinicFindFallsBackOnEmptyPrimary(t *testing.T) {
	primary := &stubPlaces{result: &places.Result{}}
	fallback := &stubPlaces{result: nairobiResult(1)}
	locator := NewClinicLocator(primary, fallback)

	reply := locator.Find(context.Background(), "Nairobi")
	assert.Contains(t, reply, "Mama Lucy Hospital")
}

func TestClinicFindNilPrimaryGoesStraightToFallback(t *testing.T) {
	fallback := &stubPlaces{result: nairobiResult(1)}
	locator := NewClinicLocator(nil, fallback)

	reply := locator.Find(context.Background(), "Nairobi")
	assert.Contains(t, reply, "Mama Lucy Hospital")
}

func TestClinicFindNoResultsAnywhere(t *testing.T) {
	primary := &stubPlaces{result: &places.Result{}}
	fallback := &stubPlaces{err: errors.New("overpass timeout")}
	locator := NewClinicLocator(primary, fallback)

	reply := locator.Find(context.Background(), "Nowhereville")
	assert.Equal(t, clinicNoResults, reply)
}

func TestClinicFindRejectsShortLocation(t *testing.T) {
	primary := &stubPlaces{result: nairobiResult(1)}
	locator := NewClinicLocator(primary, &stubPlaces{})

	assert.Equal(t, clinicBadLocation, locator.Find(context.Background(), " "))
	assert.Equal(t, clinicBadLocation, locator.Find(context.Background(), "x"))
	assert.Zero(t, primary.calls.Load(), "no backend call for an invalid location")
}

func TestClinicFindCapsEntries(t *testing.T) {
	primary := &stubPlaces{result: nairobiResult(8)}
	locator := NewClinicLocator(primary, &stubPlaces{})

	reply := locator.Find(context.Background(), "Nairobi")

	assert.Contains(t, reply, "Westlands Clinic")
	assert.NotContains(t, reply, "South B Clinic", "reply must cap the clinic list")
	assert.NotContains(t, reply, "Lang'ata Health Centre")
}
