package encoder

import (
	"fmt"
	"io"
	"regexp"

	"github.com/tkrajina/gpxgo/gpx"

	"github.com/dpup/latconv/internal/lib/location"
	"github.com/dpup/latconv/internal/lib/track"
)

// GPXCreator is written to the creator attribute of GPX output
const GPXCreator = "Google Latitude JSON Converter"

const (
	xsiNamespace        = "http://www.w3.org/2001/XMLSchema-instance"
	gpx10SchemaLocation = "http://www.topografix.com/GPX/1/0 http://www.topografix.com/GPX/1/0/gpx.xsd"
)

// gpxgo writes an untagged Speed field on every 1.0 track point. The GPX 1.0
// schema has no such element.
var speedElement = regexp.MustCompile(`\s*<Speed>[^<]*</Speed>`)

// gpxEncoder writes a GPX 1.0 document with one track per continuous run of points.
// Only the first track is named.
type gpxEncoder struct {
	segmenter track.Segmenter
}

func (e *gpxEncoder) Encode(w io.Writer, records []location.Record) error {
	doc := &gpx.GPX{
		XmlNsXsi:     xsiNamespace,
		XmlSchemaLoc: gpx10SchemaLocation,
		Version:      "1.0",
		Creator:      GPXCreator,
	}

	for i, run := range e.segmenter.Split(records) {
		trk := gpx.GPXTrack{}
		if i == 0 {
			trk.Name = documentName
		}

		seg := gpx.GPXTrackSegment{Points: make([]gpx.GPXPoint, 0, len(run))}
		for _, r := range run {
			var pt gpx.GPXPoint
			pt.Latitude = r.Latitude
			pt.Longitude = r.Longitude
			pt.Timestamp = r.Time()
			seg.Points = append(seg.Points, pt)
		}

		trk.Segments = append(trk.Segments, seg)
		doc.Tracks = append(doc.Tracks, trk)
	}

	out, err := doc.ToXml(gpx.ToXmlParams{Version: "1.0", Indent: true})
	if err != nil {
		return fmt.Errorf("failed to marshal gpx: %w", err)
	}

	_, err = w.Write(speedElement.ReplaceAll(out, nil))
	return err
}
