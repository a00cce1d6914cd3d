package encoder

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/dpup/latconv/internal/lib/location"
)

type jsonItem struct {
	TimestampMs json.RawMessage `json:"timestampMs"`
	Latitude    json.RawMessage `json:"latitude"`
	Longitude   json.RawMessage `json:"longitude"`
}

type jsonDocument struct {
	Data struct {
		Items []jsonItem `json:"items"`
	} `json:"data"`
}

// jsonEncoder writes the records back as a location history document.
// With a variable name set the document becomes a `window.<name> = ...;` statement.
type jsonEncoder struct {
	variable string
}

func (e *jsonEncoder) Encode(w io.Writer, records []location.Record) error {
	var doc jsonDocument
	doc.Data.Items = make([]jsonItem, 0, len(records))
	for _, r := range records {
		doc.Data.Items = append(doc.Data.Items, jsonItem{
			TimestampMs: json.RawMessage(r.RawTimestamp),
			Latitude:    json.RawMessage(r.RawLatitude),
			Longitude:   json.RawMessage(r.RawLongitude),
		})
	}

	body, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal json: %w", err)
	}

	if e.variable == "" {
		_, err = fmt.Fprintf(w, "%s\n", body)
		return err
	}
	_, err = fmt.Fprintf(w, "window.%s = %s;\n", e.variable, body)
	return err
}
