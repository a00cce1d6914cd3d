package encoder

import (
	"io"

	"github.com/twpayne/go-kml"

	"github.com/dpup/latconv/internal/lib/location"
)

// kmlEncoder writes one Placemark per record, in input order
type kmlEncoder struct{}

func (e *kmlEncoder) Encode(w io.Writer, records []location.Record) error {
	children := make([]kml.Element, 0, len(records)+1)
	children = append(children, kml.Name(documentName))

	for _, r := range records {
		children = append(children, kml.Placemark(
			kml.Point(
				kml.Coordinates(kml.Coordinate{Lon: r.Longitude, Lat: r.Latitude}),
			),
			kml.TimeStamp(
				kml.When(r.Time()),
			),
		))
	}

	return kml.KML(kml.Document(children...)).WriteIndent(w, "", "  ")
}
