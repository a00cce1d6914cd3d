package track

import (
	"time"

	"github.com/dpup/latconv/internal/lib/geo"
	"github.com/dpup/latconv/internal/lib/location"
)

const (
	// DefaultMaxGap is the longest pause between two points of the same track
	DefaultMaxGap = 10 * time.Minute

	// DefaultMaxDistanceKm is the longest jump between two points of the same track
	DefaultMaxDistanceKm = 40.0
)

// Segmenter splits a location history into runs of continuous points.
// Two consecutive points are discontinuous when the time between them exceeds
// MaxGap or the great-circle distance exceeds MaxDistanceKm. Both comparisons
// are strict: a gap of exactly MaxGap stays in the same run.
type Segmenter struct {
	MaxGap        time.Duration
	MaxDistanceKm float64
}

// DefaultSegmenter returns a Segmenter with the 10 minute / 40 km thresholds
func DefaultSegmenter() Segmenter {
	return Segmenter{
		MaxGap:        DefaultMaxGap,
		MaxDistanceKm: DefaultMaxDistanceKm,
	}
}

// Split reverses the newest-first input and returns the chronological runs.
// The input slice is not modified.
func (s Segmenter) Split(records []location.Record) [][]location.Record {
	if len(records) == 0 {
		return nil
	}

	maxGapMinutes := s.MaxGap.Minutes()

	var runs [][]location.Record
	var current []location.Record
	var last *location.Record

	for i := len(records) - 1; i >= 0; i-- {
		cur := records[i]

		if last != nil && s.discontinuous(*last, cur, maxGapMinutes) {
			runs = append(runs, current)
			current = nil
		}

		current = append(current, cur)
		last = &records[i]
	}

	return append(runs, current)
}

func (s Segmenter) discontinuous(prev, cur location.Record, maxGapMinutes float64) bool {
	timeDeltaMinutes := float64(cur.TimestampMs-prev.TimestampMs) / 1000 / 60
	distanceDeltaKm := geo.DistanceKm(cur.Latitude, cur.Longitude, prev.Latitude, prev.Longitude)

	return timeDeltaMinutes > maxGapMinutes || distanceDeltaKm > s.MaxDistanceKm
}
