package dataset

import (
	"math/rand/v2"
	"time"
)

// Reference point for the synthetic city (lower Manhattan).
const (
	CityLat = 40.7128
	CityLon = -74.0060

	workLat = 40.7589
	workLon = -73.9851
)

// Scenario selects the spatial spread of a generated trace set. Jam clusters
// points tightly (high density); FreeFlow scatters them.
type Scenario string

const (
	ScenarioJam      Scenario = "JAM"
	ScenarioFreeFlow Scenario = "FREE_FLOW"
)

// spread controls how far points wander from the city center per scenario.
func (s Scenario) spread() float64 {
	if s == ScenarioJam {
		return 0.001
	}
	return 0.02
}

// GenerateScenario produces a compact trace set for the given scenario:
// drivers x pointsPerDriver samples scattered around the city center with a
// scenario-dependent spread. Timestamps advance hourly from the given start.
func GenerateScenario(rng *rand.Rand, scenario Scenario, drivers, pointsPerDriver int, start time.Time) []RawRecord {
	records := make([]RawRecord, 0, drivers*pointsPerDriver)
	spread := scenario.spread()
	for driver := 0; driver < drivers; driver++ {
		for point := 0; point < pointsPerDriver; point++ {
			records = append(records, RawRecord{
				DriverID:  driver,
				Latitude:  CityLat + (rng.Float64()-0.5)*spread,
				Longitude: CityLon + (rng.Float64()-0.5)*spread,
				Timestamp: start.Add(time.Duration(point) * time.Hour),
			})
		}
	}
	return records
}

// SimulateDay produces a full day of driving for one driver: a morning
// commute from home to work with peak-hour slowdown, workday jitter around
// the office, and an evening commute home.
func SimulateDay(rng *rand.Rand, driverID int, dayStart time.Time) []RawRecord {
	homeLat := CityLat + (rng.Float64()-0.5)*0.1
	homeLon := CityLon + (rng.Float64()-0.5)*0.1
	officeLat := workLat + (rng.Float64()-0.5)*0.04
	officeLon := workLon + (rng.Float64()-0.5)*0.04

	var records []RawRecord

	// Morning commute, 07:00-09:00. Points interpolate home to work with
	// noise; mid-commute points run slower to mimic peak congestion.
	morningStart := dayStart.Add(7 * time.Hour)
	records = append(records, commute(rng, driverID, homeLat, homeLon, officeLat, officeLon, morningStart, 2*time.Hour, 1.5)...)

	// Workday, 09:00-17:00: a sample every 15 minutes near the office.
	workStart := morningStart.Add(2 * time.Hour)
	for hour := 0; hour < 8; hour++ {
		for minute := 0; minute < 60; minute += 15 {
			records = append(records, RawRecord{
				DriverID:  driverID,
				Latitude:  officeLat + (rng.Float64()-0.5)*0.01,
				Longitude: officeLon + (rng.Float64()-0.5)*0.01,
				Timestamp: workStart.Add(time.Duration(hour)*time.Hour + time.Duration(minute)*time.Minute),
			})
		}
	}

	// Evening commute, 17:00-19:00, with a milder slowdown.
	eveningStart := workStart.Add(8 * time.Hour)
	records = append(records, commute(rng, driverID, officeLat, officeLon, homeLat, homeLon, eveningStart, 2*time.Hour, 1.3)...)

	return records
}

func commute(rng *rand.Rand, driverID int, fromLat, fromLon, toLat, toLon float64, start time.Time, duration time.Duration, slowdown float64) []RawRecord {
	const numPoints = 20
	records := make([]RawRecord, 0, numPoints)
	for i := 0; i < numPoints; i++ {
		t := float64(i) / float64(numPoints-1)
		offset := time.Duration(t * float64(duration))
		if t > 0.25 && t < 0.75 {
			offset = time.Duration(float64(offset) * slowdown)
		}
		records = append(records, RawRecord{
			DriverID:  driverID,
			Latitude:  fromLat + t*(toLat-fromLat) + (rng.Float64()-0.5)*0.002,
			Longitude: fromLon + t*(toLon-fromLon) + (rng.Float64()-0.5)*0.002,
			Timestamp: start.Add(offset),
		})
	}
	return records
}
