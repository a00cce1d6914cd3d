package location

import (
	"errors"
	"time"

	"github.com/dpup/latconv/internal/lib/geo"
)

var (
	// ErrNoData is returned when the document has no usable data.items array
	ErrNoData = errors.New("no data found in json")

	// ErrInvalidRecord is returned when an item lacks a required field
	ErrInvalidRecord = errors.New("invalid location record")

	// ErrDecode is returned when the input is not valid JSON
	ErrDecode = errors.New("error decoding json")
)

// Record is one timestamped latitude/longitude sample from a location history export.
// Raw* fields hold the literal text of each value so encoders can pass numbers through
// exactly as they appeared in the input.
type Record struct {
	TimestampMs int64
	Latitude    float64
	Longitude   float64

	RawTimestamp string
	RawLatitude  string
	RawLongitude string
}

// Time returns the record timestamp floored to whole seconds, in UTC
func (r Record) Time() time.Time {
	return time.UnixMilli(r.TimestampMs).UTC().Truncate(time.Second)
}

// Point returns the record coordinates as a geo.Point
func (r Record) Point() geo.Point {
	return geo.Point{Latitude: r.Latitude, Longitude: r.Longitude}
}
