package main

import (
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/dpup/latconv/internal/lib/geo"
	"github.com/dpup/latconv/internal/lib/location"
	"github.com/dpup/latconv/internal/lib/track"
)

func main() {
	if err := newApp(os.Stdout).Run(os.Args); err != nil {
		log.Fatalf("Error: %v", err)
	}
}

func newApp(w io.Writer) *cli.App {
	return &cli.App{
		Name:        "latinspect",
		Usage:       "inspect a location history export before converting it",
		HideVersion: true,
		Writer:      w,
		Commands: []*cli.Command{
			{
				Name:  "distance",
				Usage: "great-circle distance between two points",
				Flags: []cli.Flag{
					&cli.Float64Flag{Name: "lat1", Required: true, Usage: "latitude of first point"},
					&cli.Float64Flag{Name: "lng1", Required: true, Usage: "longitude of first point"},
					&cli.Float64Flag{Name: "lat2", Required: true, Usage: "latitude of second point"},
					&cli.Float64Flag{Name: "lng2", Required: true, Usage: "longitude of second point"},
				},
				Action: func(c *cli.Context) error {
					d := geo.DistanceKm(c.Float64("lat1"), c.Float64("lng1"), c.Float64("lat2"), c.Float64("lng2"))
					fmt.Fprintf(w, "Distance: %.3f km\n", d)
					return nil
				},
			},
			{
				Name:      "segments",
				Usage:     "list the tracks gpx output would contain",
				ArgsUsage: "input",
				Flags:     segmenterFlags(),
				Action: func(c *cli.Context) error {
					runs, err := splitInput(c)
					if err != nil {
						return err
					}
					printSegments(w, runs)
					return nil
				},
			},
			{
				Name:      "polyline",
				Usage:     "print each track as a Google encoded polyline",
				ArgsUsage: "input",
				Flags:     segmenterFlags(),
				Action: func(c *cli.Context) error {
					runs, err := splitInput(c)
					if err != nil {
						return err
					}
					for _, run := range runs {
						points := make([]geo.Point, len(run))
						for i, r := range run {
							points[i] = r.Point()
						}
						fmt.Fprintln(w, geo.EncodePolyline(points))
					}
					return nil
				},
			},
		},
	}
}

func segmenterFlags() []cli.Flag {
	return []cli.Flag{
		&cli.DurationFlag{Name: "max-gap", Value: track.DefaultMaxGap, Usage: "longest pause inside a track"},
		&cli.Float64Flag{Name: "max-distance", Value: track.DefaultMaxDistanceKm, Usage: "longest jump inside a track, in km"},
	}
}

func splitInput(c *cli.Context) ([][]location.Record, error) {
	if c.NArg() != 1 {
		return nil, fmt.Errorf("expected one input file")
	}

	data, err := os.ReadFile(c.Args().First())
	if err != nil {
		return nil, fmt.Errorf("failed to read input: %w", err)
	}

	records, err := location.Load(data)
	if err != nil {
		return nil, err
	}

	s := track.Segmenter{MaxGap: c.Duration("max-gap"), MaxDistanceKm: c.Float64("max-distance")}
	return s.Split(records), nil
}

func printSegments(w io.Writer, runs [][]location.Record) {
	total := 0
	for _, run := range runs {
		total += len(run)
	}
	fmt.Fprintf(w, "Tracks: %d\n", len(runs))
	fmt.Fprintf(w, "Points: %d\n", total)

	for i, run := range runs {
		first, last := run[0], run[len(run)-1]

		lengthKm := 0.0
		for j := 1; j < len(run); j++ {
			lengthKm += geo.PointToPoint(run[j-1].Point(), run[j].Point())
		}

		fmt.Fprintf(w, "  %d: %d points, %s to %s, %.2f km\n",
			i+1, len(run),
			first.Time().Format(time.RFC3339), last.Time().Format(time.RFC3339),
			lengthKm)
	}
}
