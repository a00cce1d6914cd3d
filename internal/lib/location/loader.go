package location

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
)

// itemsPath is the gjson path of the record array inside a location history export
const itemsPath = "data.items"

// Load parses a location history document and returns its records in document order.
// The document must be valid JSON with a non-empty data.items array.
func Load(data []byte) ([]Record, error) {
	if !gjson.ValidBytes(data) {
		return nil, ErrDecode
	}

	items := gjson.GetBytes(data, itemsPath)
	if !items.IsArray() {
		return nil, ErrNoData
	}

	elems := items.Array()
	if len(elems) == 0 {
		return nil, ErrNoData
	}

	records := make([]Record, 0, len(elems))
	for i, item := range elems {
		record, err := parseRecord(item)
		if err != nil {
			return nil, fmt.Errorf("item %d: %w", i, err)
		}
		records = append(records, record)
	}

	return records, nil
}

func parseRecord(item gjson.Result) (Record, error) {
	if !item.IsObject() {
		return Record{}, fmt.Errorf("%w: item is not an object", ErrInvalidRecord)
	}

	ts := item.Get("timestampMs")
	lat := item.Get("latitude")
	lng := item.Get("longitude")

	timestamp, err := parseTimestamp(ts)
	if err != nil {
		return Record{}, err
	}
	latitude, err := parseCoordinate("latitude", lat)
	if err != nil {
		return Record{}, err
	}
	longitude, err := parseCoordinate("longitude", lng)
	if err != nil {
		return Record{}, err
	}

	return Record{
		TimestampMs:  timestamp,
		Latitude:     latitude,
		Longitude:    longitude,
		RawTimestamp: literal(ts, strconv.FormatInt(timestamp, 10)),
		RawLatitude:  literal(lat, strconv.FormatFloat(latitude, 'f', -1, 64)),
		RawLongitude: literal(lng, strconv.FormatFloat(longitude, 'f', -1, 64)),
	}, nil
}

// parseTimestamp accepts numbers and strings holding an integer.
// Fractional numbers are truncated toward zero.
func parseTimestamp(v gjson.Result) (int64, error) {
	switch v.Type {
	case gjson.Number:
		if n, err := strconv.ParseInt(v.Raw, 10, 64); err == nil {
			return n, nil
		}
		if t := math.Trunc(v.Num); math.Abs(t) < math.MaxInt64 {
			return int64(t), nil
		}
	case gjson.String:
		if n, err := strconv.ParseInt(strings.TrimSpace(v.Str), 10, 64); err == nil {
			return n, nil
		}
	case gjson.Null:
		if !v.Exists() {
			return 0, fmt.Errorf("%w: missing timestampMs", ErrInvalidRecord)
		}
	}
	return 0, fmt.Errorf("%w: timestampMs %s is not an integer", ErrInvalidRecord, v.Raw)
}

func parseCoordinate(field string, v gjson.Result) (float64, error) {
	if !v.Exists() {
		return 0, fmt.Errorf("%w: missing %s", ErrInvalidRecord, field)
	}

	switch v.Type {
	case gjson.Number:
		if !math.IsInf(v.Num, 0) {
			return v.Num, nil
		}
	case gjson.String:
		s := strings.TrimSpace(v.Str)
		// ParseFloat also takes hex floats, NaN and Inf; none of them is a coordinate
		if strings.ContainsAny(s, "xX") {
			break
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
			return f, nil
		}
	}
	return 0, fmt.Errorf("%w: %s %s is not a number", ErrInvalidRecord, field, v.Raw)
}

// literal returns the number text as written in the input. Values given as JSON
// strings are replaced by their canonical form so "12" and 12 both render as 12.
func literal(v gjson.Result, canonical string) string {
	if v.Type == gjson.Number {
		return v.Raw
	}
	return canonical
}
