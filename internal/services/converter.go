package services

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/schollz/progressbar/v3"

	"github.com/dpup/latconv/internal/lib/encoder"
	"github.com/dpup/latconv/internal/lib/location"
	"github.com/dpup/latconv/internal/lib/track"
)

var (
	// ErrSamePath is returned when input and output name the same file
	ErrSamePath = errors.New("input and output have to be different files")

	// ErrReadInput is returned when the input file cannot be read
	ErrReadInput = errors.New("error opening input file")

	// ErrCreateOutput is returned when the output file cannot be written
	ErrCreateOutput = errors.New("error creating output file for writing")

	// ErrDecode and ErrNoData come from the input loader
	ErrDecode = location.ErrDecode
	ErrNoData = location.ErrNoData
)

// Request describes one conversion
type Request struct {
	Input    string
	Output   string
	Format   encoder.Format
	Variable string
}

// ConverterService turns a location history export into one output document
type ConverterService struct {
	logger      zerolog.Logger
	progressOut io.Writer
}

// NewConverterService creates a converter. A non-nil progressOut receives a byte
// counter while the output is written.
func NewConverterService(logger zerolog.Logger, progressOut io.Writer) *ConverterService {
	return &ConverterService{
		logger:      logger,
		progressOut: progressOut,
	}
}

// Convert reads req.Input, encodes it as req.Format and replaces req.Output.
// Nothing is written unless the input holds at least one valid record.
func (s *ConverterService) Convert(ctx context.Context, req Request) error {
	start := time.Now()

	same, err := samePath(req.Input, req.Output)
	if err != nil {
		return err
	}
	if same {
		return ErrSamePath
	}

	enc, err := encoder.New(req.Format, encoder.Options{Variable: req.Variable})
	if err != nil {
		return err
	}

	data, err := os.ReadFile(req.Input)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrReadInput, err)
	}

	records, err := location.Load(data)
	if err != nil {
		return err
	}
	s.logger.Debug().Str("input", req.Input).Int("records", len(records)).Msg("Loaded location history")

	if err := ctx.Err(); err != nil {
		return err
	}

	if err := s.writeAtomic(req.Output, func(w io.Writer) error {
		return enc.Encode(w, records)
	}); err != nil {
		return err
	}

	event := s.logger.Info().
		Str("input", req.Input).
		Str("output", req.Output).
		Str("format", string(req.Format)).
		Int("records", len(records))
	if req.Format == encoder.GPX {
		event = event.Int("tracks", len(track.DefaultSegmenter().Split(records)))
	}
	event.Dur("elapsed", time.Since(start)).Msg("Conversion complete")

	return nil
}

// writeAtomic writes to a temporary file next to path and renames it into place
func (s *ConverterService) writeAtomic(path string, write func(w io.Writer) error) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("%w: %w", ErrCreateOutput, err)
	}
	tmpName := tmp.Name()

	committed := false
	defer func() {
		if !committed {
			tmp.Close()
			os.Remove(tmpName) // Clean up partial file
		}
	}()

	buf := bufio.NewWriter(tmp)
	var out io.Writer = buf

	var bar *progressbar.ProgressBar
	if s.progressOut != nil {
		bar = newProgressBar(s.progressOut, filepath.Base(path))
		out = io.MultiWriter(buf, bar)
	}

	if err := write(out); err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	if err := buf.Flush(); err != nil {
		return fmt.Errorf("%w: %w", ErrCreateOutput, err)
	}
	if bar != nil {
		_ = bar.Finish()
	}

	if err := tmp.Chmod(0644); err != nil {
		return fmt.Errorf("%w: %w", ErrCreateOutput, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("%w: %w", ErrCreateOutput, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		committed = true
		return fmt.Errorf("%w: %w", ErrCreateOutput, err)
	}

	committed = true
	return nil
}

func newProgressBar(w io.Writer, name string) *progressbar.ProgressBar {
	return progressbar.NewOptions64(-1,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetDescription("writing "+name),
		progressbar.OptionShowBytes(true),
		progressbar.OptionThrottle(100*time.Millisecond),
	)
}

// samePath reports whether both paths name the same file. It never opens either file.
func samePath(a, b string) (bool, error) {
	absA, err := filepath.Abs(a)
	if err != nil {
		return false, fmt.Errorf("%w: %w", ErrReadInput, err)
	}
	absB, err := filepath.Abs(b)
	if err != nil {
		return false, fmt.Errorf("%w: %w", ErrCreateOutput, err)
	}
	if absA == absB {
		return true, nil
	}

	infoA, errA := os.Stat(absA)
	infoB, errB := os.Stat(absB)
	if errA != nil || errB != nil {
		return false, nil
	}
	return os.SameFile(infoA, infoB), nil
}
