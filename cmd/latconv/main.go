package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/urfave/cli/v2"

	"github.com/dpup/latconv/internal/config"
	"github.com/dpup/latconv/internal/lib/encoder"
	"github.com/dpup/latconv/internal/lib/location"
	"github.com/dpup/latconv/internal/services"
)

var errUsage = errors.New("expected exactly two arguments: input and output")

func main() {
	if err := execute(os.Args, os.Stdout, os.Stderr); err != nil {
		os.Exit(1)
	}
}

func execute(args []string, stdout, stderr io.Writer) error {
	app := newApp(stdout, stderr)
	return app.Run(flagsFirst(app.Flags, args))
}

// flagsFirst moves flags given after the positional arguments in front of them,
// so "latconv in.json out.gpx -f gpx" works. Everything after "--" stays positional.
func flagsFirst(flags []cli.Flag, args []string) []string {
	if len(args) == 0 {
		return args
	}

	takesValue := make(map[string]bool)
	for _, f := range flags {
		_, isBool := f.(*cli.BoolFlag)
		for _, name := range f.Names() {
			takesValue[name] = !isBool
		}
	}

	var opts, positional []string
	terminated := false
	rest := args[1:]
	for i := 0; i < len(rest); i++ {
		arg := rest[i]
		if arg == "--" {
			terminated = true
			positional = append(positional, rest[i+1:]...)
			break
		}
		if len(arg) < 2 || arg[0] != '-' {
			positional = append(positional, arg)
			continue
		}

		opts = append(opts, arg)
		name := strings.TrimLeft(arg, "-")
		if strings.Contains(name, "=") {
			continue
		}
		if takesValue[name] && i+1 < len(rest) {
			i++
			opts = append(opts, rest[i])
		}
	}

	out := make([]string, 0, len(args))
	out = append(out, args[0])
	out = append(out, opts...)
	if terminated {
		out = append(out, "--")
	}
	return append(out, positional...)
}

// newApp builds the command line interface. User-facing messages go to stdout,
// logs and the progress bar go to stderr.
func newApp(stdout, stderr io.Writer) *cli.App {
	return &cli.App{
		Name:        "latconv",
		Usage:       "convert a location history JSON export to kml, json, csv, js or gpx",
		ArgsUsage:   "input output",
		HideVersion: true,
		Writer:      stdout,
		ErrWriter:   stderr,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Value:   string(encoder.DefaultFormat),
				Usage:   "format of the output (" + strings.Join(encoder.FormatNames(), ", ") + ")",
			},
			&cli.StringFlag{
				Name:    "variable",
				Aliases: []string{"v"},
				Value:   encoder.DefaultVariable,
				Usage:   "variable name to be used for js output",
			},
			&cli.StringFlag{
				Name:    "config",
				Usage:   "optional YAML config file",
				EnvVars: []string{config.EnvPrefix + "CONFIG"},
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "log level (trace, debug, info, warn, error)",
			},
			&cli.BoolFlag{
				Name:  "progress",
				Usage: "show bytes written on stderr",
			},
		},
		Action: func(c *cli.Context) error {
			return run(c, stdout, stderr)
		},
	}
}

func run(c *cli.Context, stdout, stderr io.Writer) error {
	if c.NArg() != 2 {
		fmt.Fprintf(stdout, "%s\n\n", errUsage)
		_ = cli.ShowAppHelp(c)
		return errUsage
	}

	cfg, err := config.Load(c.String("config"))
	if err != nil {
		fmt.Fprintf(stdout, "Error loading configuration: %v\n", err)
		return err
	}
	applyFlags(c, cfg)
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(stdout, "%v\n", err)
		return err
	}

	logger := newLogger(stderr, cfg.Log.Level)

	var progressOut io.Writer
	if cfg.Progress {
		progressOut = stderr
	}

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	svc := services.NewConverterService(logger, progressOut)
	err = svc.Convert(ctx, services.Request{
		Input:    c.Args().Get(0),
		Output:   c.Args().Get(1),
		Format:   encoder.Format(cfg.Convert.Format),
		Variable: cfg.Convert.Variable,
	})
	if err != nil {
		fmt.Fprintln(stdout, userMessage(err))
		logger.Debug().Err(err).Msg("Conversion failed")
		return err
	}
	return nil
}

// applyFlags lets explicitly set flags win over file and environment settings
func applyFlags(c *cli.Context, cfg *config.Config) {
	if c.IsSet("format") {
		cfg.Convert.Format = c.String("format")
	}
	if c.IsSet("variable") {
		cfg.Convert.Variable = c.String("variable")
	}
	if c.IsSet("log-level") {
		cfg.Log.Level = c.String("log-level")
	}
	if c.IsSet("progress") {
		cfg.Progress = c.Bool("progress")
	}
}

func newLogger(w io.Writer, level string) zerolog.Logger {
	logger := zerolog.New(zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen}).
		With().Timestamp().Logger()

	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		logger.Warn().Str("level", level).Msg("Unknown log level, using info")
		lvl = zerolog.InfoLevel
	}
	return logger.Level(lvl)
}

// userMessage maps conversion failures to the short messages printed on stdout
func userMessage(err error) string {
	switch {
	case errors.Is(err, services.ErrSamePath):
		return "Input and output have to be different files"
	case errors.Is(err, services.ErrReadInput):
		return "Error opening input file"
	case errors.Is(err, services.ErrDecode):
		return "Error decoding json"
	case errors.Is(err, services.ErrNoData):
		return "No data found in json"
	case errors.Is(err, location.ErrInvalidRecord):
		return "Invalid location record: " + err.Error()
	case errors.Is(err, services.ErrCreateOutput):
		return "Error creating output file for writing"
	default:
		return "Error: " + err.Error()
	}
}
