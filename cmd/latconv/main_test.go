package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dpup/latconv/internal/lib/location"
	"github.com/dpup/latconv/internal/services"
)

const history = `{"data":{"items":[
	{"timestampMs":"700000","latitude":48.2082,"longitude":16.3738},
	{"timestampMs":"60000","latitude":48.2082,"longitude":16.3738},
	{"timestampMs":"0","latitude":48.2082,"longitude":16.3738}
]}}`

func runApp(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	err := execute(append([]string{"latconv"}, args...), &stdout, &stderr)
	return stdout.String(), err
}

func setup(t *testing.T, body string) (dir, input string) {
	t.Helper()
	dir = t.TempDir()
	input = filepath.Join(dir, "history.json")
	require.NoError(t, os.WriteFile(input, []byte(body), 0600))
	return dir, input
}

func TestRun_DefaultFormatIsKML(t *testing.T) {
	dir, input := setup(t, history)
	output := filepath.Join(dir, "out.kml")

	_, err := runApp(t, input, output)
	require.NoError(t, err)

	body, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.Equal(t, 3, strings.Count(string(body), "<Placemark>"))
}

func TestRun_GPXShortFlag(t *testing.T) {
	dir, input := setup(t, history)
	output := filepath.Join(dir, "out.gpx")

	_, err := runApp(t, "-f", "gpx", input, output)
	require.NoError(t, err)

	body, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(string(body), "<trkseg>"), "the 10.67 minute gap starts a second track")
}

func TestRun_FlagsAfterArguments(t *testing.T) {
	dir, input := setup(t, history)
	output := filepath.Join(dir, "out.gpx")

	_, err := runApp(t, input, output, "-f", "gpx")
	require.NoError(t, err)

	body, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(string(body), "<trkseg>"))

	jsOut := filepath.Join(dir, "out.js")
	_, err = runApp(t, input, "--format=js", jsOut, "--variable", "points")
	require.NoError(t, err)

	body, err = os.ReadFile(jsOut)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(body), "window.points = {"))
}

func TestFlagsFirst(t *testing.T) {
	flags := newApp(io.Discard, io.Discard).Flags

	tests := []struct {
		name string
		args []string
		want []string
	}{
		{"already ordered", []string{"latconv", "-f", "gpx", "in", "out"}, []string{"latconv", "-f", "gpx", "in", "out"}},
		{"trailing value flag", []string{"latconv", "in", "out", "-f", "gpx"}, []string{"latconv", "-f", "gpx", "in", "out"}},
		{"interleaved", []string{"latconv", "in", "-v", "x", "out", "--format=js"}, []string{"latconv", "-v", "x", "--format=js", "in", "out"}},
		{"bool flag takes no value", []string{"latconv", "in", "--progress", "out"}, []string{"latconv", "--progress", "in", "out"}},
		{"double dash ends flags", []string{"latconv", "in", "-f", "csv", "--", "-out"}, []string{"latconv", "-f", "csv", "--", "in", "-out"}},
		{"lone dash is positional", []string{"latconv", "-", "out"}, []string{"latconv", "-", "out"}},
		{"program only", []string{"latconv"}, []string{"latconv"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, flagsFirst(flags, tt.args))
		})
	}
}

func TestRun_JSVariable(t *testing.T) {
	dir, input := setup(t, history)
	output := filepath.Join(dir, "out.js")

	_, err := runApp(t, "--format", "js", "-v", "history", input, output)
	require.NoError(t, err)

	body, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(body), "window.history = {"))
	assert.True(t, strings.HasSuffix(string(body), "};\n"))
}

func TestRun_ConfigFile(t *testing.T) {
	dir, input := setup(t, history)
	cfgPath := filepath.Join(dir, "latconv.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("convert:\n  format: csv\n"), 0600))
	output := filepath.Join(dir, "out.csv")

	_, err := runApp(t, "--config", cfgPath, input, output)
	require.NoError(t, err)

	body, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(body), "Time,Location\n"))

	// An explicit flag beats the file
	output = filepath.Join(dir, "out.json")
	_, err = runApp(t, "--config", cfgPath, "-f", "json", input, output)
	require.NoError(t, err)
	body, err = os.ReadFile(output)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(body), "{"))
}

func TestRun_Failures(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		args    func(dir, input string) []string
		message string
	}{
		{
			name:    "same path",
			body:    history,
			args:    func(dir, input string) []string { return []string{input, input} },
			message: "Input and output have to be different files",
		},
		{
			name: "missing input",
			body: history,
			args: func(dir, input string) []string {
				return []string{filepath.Join(dir, "nope.json"), filepath.Join(dir, "out.kml")}
			},
			message: "Error opening input file",
		},
		{
			name:    "malformed json",
			body:    `{"data":`,
			args:    func(dir, input string) []string { return []string{input, filepath.Join(dir, "out.kml")} },
			message: "Error decoding json",
		},
		{
			name:    "no data",
			body:    `{"data":{"items":[]}}`,
			args:    func(dir, input string) []string { return []string{input, filepath.Join(dir, "out.kml")} },
			message: "No data found in json",
		},
		{
			name:    "unwritable output",
			body:    history,
			args:    func(dir, input string) []string { return []string{input, filepath.Join(dir, "missing", "out.kml")} },
			message: "Error creating output file for writing",
		},
		{
			name:    "unknown format",
			body:    history,
			args:    func(dir, input string) []string { return []string{"-f", "shp", input, filepath.Join(dir, "out.shp")} },
			message: "unknown output format",
		},
		{
			name:    "missing output argument",
			body:    history,
			args:    func(dir, input string) []string { return []string{input} },
			message: errUsage.Error(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir, input := setup(t, tt.body)

			out, err := runApp(t, tt.args(dir, input)...)
			assert.Error(t, err)
			assert.Contains(t, out, tt.message)
		})
	}
}

func TestUserMessage(t *testing.T) {
	tests := []struct {
		err      error
		expected string
	}{
		{services.ErrSamePath, "Input and output have to be different files"},
		{fmt.Errorf("%w: %w", services.ErrReadInput, os.ErrNotExist), "Error opening input file"},
		{services.ErrDecode, "Error decoding json"},
		{services.ErrNoData, "No data found in json"},
		{fmt.Errorf("%w: %w", services.ErrCreateOutput, os.ErrPermission), "Error creating output file for writing"},
		{errors.New("boom"), "Error: boom"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, userMessage(tt.err))
	}

	msg := userMessage(fmt.Errorf("item 3: %w: missing latitude", location.ErrInvalidRecord))
	assert.True(t, strings.HasPrefix(msg, "Invalid location record: item 3"))
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, "warn")
	assert.Equal(t, zerolog.WarnLevel, logger.GetLevel())

	logger = newLogger(&buf, "chatty")
	assert.Equal(t, zerolog.InfoLevel, logger.GetLevel())
	assert.Contains(t, buf.String(), "Unknown log level")
}
