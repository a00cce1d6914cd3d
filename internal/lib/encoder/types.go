package encoder

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dpup/latconv/internal/lib/location"
	"github.com/dpup/latconv/internal/lib/track"
)

// Format identifies an output format
type Format string

const (
	KML  Format = "kml"
	JSON Format = "json"
	CSV  Format = "csv"
	JS   Format = "js"
	GPX  Format = "gpx"
)

// DefaultFormat is used when no format is given
const DefaultFormat = KML

// DefaultVariable is the global variable name assigned by js output
const DefaultVariable = "latitudeJsonData"

// Document name shared by the KML and GPX outputs
const documentName = "Location History"

var (
	// ErrUnknownFormat is returned for a format outside Formats()
	ErrUnknownFormat = errors.New("unknown output format")

	// ErrEmptyVariable is returned when js output has no variable name
	ErrEmptyVariable = errors.New("variable name is required for js output")
)

// Formats returns all supported formats in help order
func Formats() []Format {
	return []Format{KML, JSON, CSV, JS, GPX}
}

// FormatNames returns Formats() as plain strings
func FormatNames() []string {
	names := make([]string, 0, len(Formats()))
	for _, f := range Formats() {
		names = append(names, string(f))
	}
	return names
}

// ParseFormat maps a format name to a Format
func ParseFormat(name string) (Format, error) {
	for _, f := range Formats() {
		if string(f) == name {
			return f, nil
		}
	}
	return "", fmt.Errorf("%w %q (choose from %s)", ErrUnknownFormat, name, strings.Join(FormatNames(), ", "))
}

// Encoder writes an ordered sequence of records as one complete document
type Encoder interface {
	Encode(w io.Writer, records []location.Record) error
}

// Options configures the encoders that need more than the records
type Options struct {
	// Variable is the global name assigned by js output
	Variable string

	// Location is the time zone of CSV timestamps, time.Local when nil
	Location *time.Location

	// Segmenter splits GPX output into tracks, track.DefaultSegmenter() when zero
	Segmenter track.Segmenter
}

// New returns the encoder for the given format
func New(format Format, opts Options) (Encoder, error) {
	switch format {
	case KML:
		return &kmlEncoder{}, nil
	case JSON:
		return &jsonEncoder{}, nil
	case JS:
		if opts.Variable == "" {
			return nil, ErrEmptyVariable
		}
		return &jsonEncoder{variable: opts.Variable}, nil
	case CSV:
		loc := opts.Location
		if loc == nil {
			loc = time.Local
		}
		return &csvEncoder{location: loc}, nil
	case GPX:
		segmenter := opts.Segmenter
		if segmenter == (track.Segmenter{}) {
			segmenter = track.DefaultSegmenter()
		}
		return &gpxEncoder{segmenter: segmenter}, nil
	default:
		return nil, fmt.Errorf("%w %q", ErrUnknownFormat, format)
	}
}
