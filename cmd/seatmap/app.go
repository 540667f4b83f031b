package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/ironsheep/seatmap/internal/config"
	"github.com/ironsheep/seatmap/internal/imaging"
	"github.com/ironsheep/seatmap/internal/ocr"
	"github.com/ironsheep/seatmap/internal/pipeline"
	"github.com/ironsheep/seatmap/internal/registry"
	"github.com/ironsheep/seatmap/internal/server"
)

const (
	flagConfig     = "config"
	flagRegistry   = "registry"
	flagBackend    = "backend"
	flagDebug      = "debug"
	flagWorkers    = "workers"
	flagRoom       = "room"
	flagOverlayDir = "overlay-dir"
	flagCheckpoint = "checkpoint"
	flagGrid       = "overlay-grid"
	flagNoOCR      = "no-ocr"
)

func newApp() *cli.App {
	return &cli.App{
		Name:    "seatmap",
		Usage:   "extract seat positions from room floor plans",
		Version: Version,
		Flags: []cli.Flag{
			&cli.PathFlag{
				Name:    flagConfig,
				Aliases: []string{"c"},
				Usage:   "load configuration from `FILE`",
				EnvVars: []string{"SEATMAP_CONFIG"},
			},
			&cli.PathFlag{
				Name:  flagRegistry,
				Usage: "room registry `FILE` (overrides the config file)",
			},
			&cli.StringFlag{
				Name:  flagBackend,
				Usage: "registry backend: json or sqlite",
			},
			&cli.BoolFlag{
				Name:  flagDebug,
				Usage: "enable debug logging (or SEATMAP_LOG_LEVEL=debug)",
			},
		},
		Commands: []*cli.Command{
			{
				Name:      "extract",
				Usage:     "extract seats for every room, or the rooms given with --room",
				ArgsUsage: " ",
				Flags: []cli.Flag{
					&cli.StringSliceFlag{
						Name:  flagRoom,
						Usage: "only process room `ID` (repeatable)",
					},
					&cli.PathFlag{
						Name:  flagOverlayDir,
						Usage: "write a diagnostic PNG per room into `DIR`",
					},
					&cli.IntFlag{
						Name:  flagGrid,
						Usage: "draw a coordinate grid every `N` pixels on overlays",
					},
					&cli.IntFlag{
						Name:  flagWorkers,
						Usage: "rooms processed concurrently",
					},
					&cli.BoolFlag{
						Name:  flagCheckpoint,
						Usage: "save the registry after every room",
					},
					&cli.BoolFlag{
						Name:  flagNoOCR,
						Usage: "skip digit recognition",
					},
				},
				Action: extractAction,
			},
			{
				Name:   "rooms",
				Usage:  "list the rooms in the registry",
				Action: roomsAction,
			},
			{
				Name:   "serve",
				Usage:  "run the MCP server on stdin/stdout",
				Action: serveAction,
			},
			{
				Name:  "version",
				Usage: "print version information",
				Action: func(c *cli.Context) error {
					fmt.Fprintf(c.App.Writer, "seatmap %s\n", Version)
					fmt.Fprintf(c.App.Writer, "  Build time: %s\n", BuildTime)
					fmt.Fprintf(c.App.Writer, "  Git commit: %s\n", GitCommit)
					if v, err := ocr.Version(); err == nil {
						fmt.Fprintf(c.App.Writer, "  Tesseract: %s\n", v)
					}
					return nil
				},
			},
		},
	}
}

// newLogger writes to stderr; stdout belongs to command output and the MCP
// protocol.
func newLogger(debug bool) (*zap.Logger, error) {
	if debug || strings.EqualFold(os.Getenv("SEATMAP_LOG_LEVEL"), "debug") {
		cfg := zap.NewDevelopmentConfig()
		cfg.OutputPaths = []string{"stderr"}
		return cfg.Build()
	}
	cfg := zap.NewProductionConfig()
	cfg.OutputPaths = []string{"stderr"}
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	return cfg.Build()
}

// env is everything a command needs, built from flags and the config file.
type env struct {
	cfg    *config.Config
	store  registry.Store
	logger *zap.Logger
}

func (e *env) Close() error {
	// Sync fails on terminals and pipes; there is nothing buffered to lose.
	_ = e.logger.Sync()
	return e.store.Close()
}

func setup(c *cli.Context) (*env, error) {
	logger, err := newLogger(c.Bool(flagDebug))
	if err != nil {
		return nil, errors.Wrap(err, "failed to build logger")
	}

	cfg, err := config.Load(c.Path(flagConfig))
	if err != nil {
		return nil, err
	}
	if p := c.Path(flagRegistry); p != "" {
		cfg.Registry.Path = p
	}
	if b := c.String(flagBackend); b != "" {
		cfg.Registry.Backend = registry.Backend(b)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	store, err := registry.Open(cfg.Registry.Backend, cfg.Registry.Path)
	if err != nil {
		return nil, err
	}
	return &env{cfg: cfg, store: store, logger: logger}, nil
}

// newBatch wires the pipeline, OCR engine and registry together.
func (e *env) newBatch() *pipeline.Batch {
	params := e.cfg.Pipeline
	var extractor *ocr.Extractor
	if params.OCREnabled {
		if v, err := ocr.Version(); err != nil {
			e.logger.Warn("tesseract unavailable, continuing without ocr", zap.Error(err))
		} else {
			e.logger.Debug("ocr engine ready", zap.String("tesseract", v))
			rec := ocr.NewTesseract(params.OCR.Language, params.OCR.TessdataPrefix)
			extractor = ocr.NewExtractor(rec, params.OCR, e.logger.Named("ocr"))
		}
	}

	return &pipeline.Batch{
		Pipeline:    pipeline.New(params, extractor, e.logger.Named("pipeline")),
		Store:       e.store,
		Images:      imaging.NewImageCache(),
		ImagesDir:   e.cfg.ImagesRoot(),
		Workers:     e.cfg.Workers,
		Checkpoint:  e.cfg.Checkpoint,
		OverlayDir:  e.cfg.OverlayDir,
		OverlayGrid: e.cfg.OverlayGrid,
		Logger:      e.logger.Named("batch"),
	}
}

func extractAction(c *cli.Context) (err error) {
	e, err := setup(c)
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, e.Close()) }()

	if c.IsSet(flagWorkers) {
		e.cfg.Workers = c.Int(flagWorkers)
	}
	if c.IsSet(flagOverlayDir) {
		e.cfg.OverlayDir = c.Path(flagOverlayDir)
	}
	if c.IsSet(flagGrid) {
		e.cfg.OverlayGrid = c.Int(flagGrid)
	}
	if c.Bool(flagCheckpoint) {
		e.cfg.Checkpoint = true
	}
	if c.Bool(flagNoOCR) {
		e.cfg.Pipeline.OCREnabled = false
	}
	if err := e.cfg.Validate(); err != nil {
		return err
	}

	sum, err := e.newBatch().Run(c.Context, c.StringSlice(flagRoom)...)
	if sum != nil {
		printSummary(c, sum)
	}
	return err
}

func printSummary(c *cli.Context, sum *pipeline.Summary) {
	w := tabwriter.NewWriter(c.App.Writer, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ROOM\tSTATUS\tSEATS\tPROFILE\tREMOVED\tNOTE")
	for _, o := range sum.Outcomes {
		note := strings.Join(o.Warnings, "; ")
		if o.Err != nil {
			note = o.Err.Error()
		}
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%d\t%s\n", o.RoomID, o.Status, len(o.Seats), o.Profile, o.Removed, note)
	}
	w.Flush()
	fmt.Fprintf(c.App.Writer, "\n%d rooms: %d ok, %d degraded, %d skipped in %s\n",
		sum.Total, sum.Succeeded, sum.Degraded, sum.Skipped, sum.Elapsed.Round(time.Millisecond))
}

func roomsAction(c *cli.Context) (err error) {
	e, err := setup(c)
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, e.Close()) }()

	reg, err := e.store.Load(c.Context)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(c.App.Writer, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tCAPACITY\tSEATS\tIMAGE")
	for _, r := range reg.Rooms {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\n", r.ID, r.Name, r.CapacityString(), len(r.Seats), r.Image)
	}
	return w.Flush()
}

func serveAction(c *cli.Context) (err error) {
	e, err := setup(c)
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, e.Close()) }()

	e.logger.Info("mcp server starting",
		zap.String("version", Version),
		zap.String("build_time", BuildTime),
		zap.String("commit", GitCommit),
	)

	srv := server.New(server.Options{
		Store:      e.store,
		Batch:      e.newBatch(),
		Classifier: e.cfg.Pipeline.Classifier,
		ImagesDir:  e.cfg.ImagesRoot(),
		Version:    Version,
		Logger:     e.logger.Named("server"),
	})
	return srv.Run(c.Context)
}
