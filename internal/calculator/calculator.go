package calculator

import (
	"fmt"
	"math"
	"sort"

	"tech-dispatch/internal/models"
)

// TieTolerance is how close two distances (km) must be to count as equal.
// A technician ties when it is within TieTolerance of the overall minimum,
// so the outcome does not depend on the order the others were scanned in.
const TieTolerance = 1e-9

type LoggerCallback func(msg string)

// Candidate is a technician with its distance to the query point.
type Candidate struct {
	Technician models.Technician
	DistanceKm float64
	Index      int // position in the input slice
}

// ComputeNearest returns the technician closest to from. The first technician in
// input order wins a tie, so callers pass registry order to get a stable choice.
// ok is false for an empty list.
func ComputeNearest(from models.Coordinate, techs []models.Technician, logger LoggerCallback) (Candidate, bool) {
	if len(techs) == 0 {
		return Candidate{}, false
	}

	dists := make([]float64, len(techs))
	for idx, t := range techs {
		dists[idx] = Distance(from, t.Location)
	}
	nearestIdx := nearestIndex(dists)
	minDist := dists[nearestIdx]

	if logger != nil {
		logger(fmt.Sprintf("Nearest of %d technicians: %s (%.2f km)", len(techs), techs[nearestIdx].Name, minDist))
	}

	return Candidate{
		Technician: techs[nearestIdx],
		DistanceKm: minDist,
		Index:      nearestIdx,
	}, true
}

// nearestIndex returns the first index whose distance is within TieTolerance
// of the smallest one.
func nearestIndex(dists []float64) int {
	minDist := math.MaxFloat64
	for _, d := range dists {
		if d < minDist {
			minDist = d
		}
	}
	for idx, d := range dists {
		if d <= minDist+TieTolerance {
			return idx
		}
	}
	return 0
}

// ComputeRadius returns every technician within radiusKm of from, closest first.
// Equal distances keep input order.
func ComputeRadius(from models.Coordinate, techs []models.Technician, radiusKm float64, logger LoggerCallback) []Candidate {
	var res []Candidate

	for idx, t := range techs {
		d := Distance(from, t.Location)
		if d <= radiusKm {
			res = append(res, Candidate{Technician: t, DistanceKm: d, Index: idx})
		}
	}

	sort.SliceStable(res, func(i, j int) bool {
		return res[i].DistanceKm < res[j].DistanceKm-TieTolerance
	})

	if logger != nil {
		logger(fmt.Sprintf("Radius search (%.2f km): %d of %d technicians", radiusKm, len(res), len(techs)))
	}
	return res
}
