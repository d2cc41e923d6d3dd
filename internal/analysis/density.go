package analysis

import (
	"math"

	"geovault/internal/dataset"
	dErrors "geovault/pkg/domain-errors"
)

// DefaultGridSize matches the resolution city planners asked for in the
// original congestion study.
const DefaultGridSize = 10

// hotspotFraction marks cells at or above this share of the maximum count as
// hotspots.
const hotspotFraction = 0.7

// DensityGrid bins samples into a gridSize x gridSize grid over the batch's
// bounding box and reports per-cell counts plus hotspot cells. Cells
// aggregating fewer than minCount samples are zeroed so sparse cells cannot
// single out a driver.
func DensityGrid(records []dataset.RawRecord, gridSize, minCount int) (DensityResult, error) {
	if gridSize <= 0 {
		gridSize = DefaultGridSize
	}
	if gridSize == 1 {
		return DensityResult{}, dErrors.New(dErrors.CodeInvalidInput, "grid size must be at least 2")
	}
	if len(records) == 0 {
		return DensityResult{}, dErrors.New(dErrors.CodeBadRequest, "no records to analyze")
	}

	bounds := boundsOf(records)
	cells := make([][]int, gridSize)
	for i := range cells {
		cells[i] = make([]int, gridSize)
	}

	latStep := (bounds.LatMax - bounds.LatMin) / float64(gridSize)
	lonStep := (bounds.LonMax - bounds.LonMin) / float64(gridSize)

	for _, r := range records {
		cells[binIndex(r.Latitude, bounds.LatMin, latStep, gridSize)][binIndex(r.Longitude, bounds.LonMin, lonStep, gridSize)]++
	}

	suppressed := 0
	maxCount := 0
	for i := range cells {
		for j := range cells[i] {
			if cells[i][j] > 0 && cells[i][j] < minCount {
				cells[i][j] = 0
				suppressed++
				continue
			}
			if cells[i][j] > maxCount {
				maxCount = cells[i][j]
			}
		}
	}

	var hotspots []Hotspot
	threshold := float64(maxCount) * hotspotFraction
	for i := range cells {
		for j := range cells[i] {
			if cells[i][j] == 0 || float64(cells[i][j]) < threshold {
				continue
			}
			hotspots = append(hotspots, Hotspot{
				Latitude:  bounds.LatMin + (float64(i)+0.5)*latStep,
				Longitude: bounds.LonMin + (float64(j)+0.5)*lonStep,
				Count:     cells[i][j],
			})
		}
	}

	return DensityResult{
		GridSize: gridSize,
		// Bounds are released at reduced precision; the exact extremes are
		// themselves sample coordinates.
		Bounds: Bounds{
			LatMin: roundCoord(bounds.LatMin), LatMax: roundCoord(bounds.LatMax),
			LonMin: roundCoord(bounds.LonMin), LonMax: roundCoord(bounds.LonMax),
		},
		Cells:       cells,
		Hotspots:    hotspots,
		TotalPoints: len(records),
		Suppressed:  suppressed,
	}, nil
}

// roundCoord truncates a coordinate to ~11m precision.
func roundCoord(v float64) float64 {
	return math.Round(v*1e4) / 1e4
}

func boundsOf(records []dataset.RawRecord) Bounds {
	b := Bounds{
		LatMin: records[0].Latitude, LatMax: records[0].Latitude,
		LonMin: records[0].Longitude, LonMax: records[0].Longitude,
	}
	for _, r := range records[1:] {
		if r.Latitude < b.LatMin {
			b.LatMin = r.Latitude
		}
		if r.Latitude > b.LatMax {
			b.LatMax = r.Latitude
		}
		if r.Longitude < b.LonMin {
			b.LonMin = r.Longitude
		}
		if r.Longitude > b.LonMax {
			b.LonMax = r.Longitude
		}
	}
	return b
}

// binIndex clamps to the grid so boundary samples land in the last cell.
func binIndex(value, min, step float64, gridSize int) int {
	if step == 0 {
		return 0
	}
	idx := int((value - min) / step)
	if idx < 0 {
		return 0
	}
	if idx >= gridSize {
		return gridSize - 1
	}
	return idx
}
