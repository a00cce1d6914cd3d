package encoder

import (
	"encoding/csv"
	"io"
	"time"

	"github.com/dpup/latconv/internal/lib/location"
)

const csvTimeLayout = "2006-01-02 15:04:05"

type csvEncoder struct {
	location *time.Location
}

func (e *csvEncoder) Encode(w io.Writer, records []location.Record) error {
	cw := csv.NewWriter(w)

	if err := cw.Write([]string{"Time", "Location"}); err != nil {
		return err
	}
	for _, r := range records {
		row := []string{
			r.Time().In(e.location).Format(csvTimeLayout),
			r.RawLatitude + " " + r.RawLongitude,
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}
