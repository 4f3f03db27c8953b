package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"math"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/dixieflatline76/Pano/config"
	"github.com/dixieflatline76/Pano/pkg/remap"
	"github.com/dixieflatline76/Pano/pkg/stereo"
	"github.com/dixieflatline76/Pano/util/log"
)

const defaultInput = "equirect_stream.png"

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// options are the resolved settings of one invocation.
type options struct {
	cfg    *config.Config
	inputs []string
}

func parseArgs(args []string) (*options, error) {
	fs := flag.NewFlagSet("stereoview", flag.ContinueOnError)
	configPath := fs.String("config", "", "config file (default ~/.pano/config.json)")
	dist := fs.Float64("dist", 0, "stereographic distance (zoom)")
	rot := fs.Float64("rot", math.NaN(), "rotation in degrees")
	interp := fs.String("interp", "", "interpolation: nearest, linear or cubic")
	border := fs.String("border", "", "border mode: constant, replicate or wrap")
	workers := fs.Int("workers", -1, "worker goroutines, 0 uses every CPU")
	outDir := fs.String("out", "", "output directory")
	format := fs.String("format", "", "output format: png, jpg, bmp or tif")
	fit := fs.String("fit", "", "fit the view to WxH, e.g. 1280x720")
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "%s [flags] [image or directory]...\n", filepath.Base(os.Args[0]))
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	var cfg *config.Config
	if *configPath != "" {
		c, err := config.LoadConfig(*configPath)
		if err != nil {
			return nil, fmt.Errorf("loading config: %w", err)
		}
		cfg = c
	} else {
		c := *config.GetConfig()
		cfg = &c
	}

	// Flags that were given win over the config file.
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "dist":
			cfg.Distance = *dist
		case "rot":
			cfg.RotationDeg = *rot
		case "interp":
			cfg.Interpolation = *interp
		case "border":
			cfg.Border = *border
		case "workers":
			cfg.Workers = *workers
		case "out":
			cfg.OutputDir = *outDir
		case "format":
			cfg.OutputFormat = *format
		}
	})
	if *fit != "" {
		w, h, err := parseSize(*fit)
		if err != nil {
			return nil, err
		}
		cfg.FitWidth, cfg.FitHeight = w, h
	}

	inputs := fs.Args()
	if len(inputs) == 0 {
		inputs = []string{defaultInput}
	}
	return &options{cfg: cfg, inputs: inputs}, nil
}

func parseSize(s string) (int, int, error) {
	var w, h int
	if _, err := fmt.Sscanf(strings.ToLower(s), "%dx%d", &w, &h); err != nil || w <= 0 || h <= 0 {
		return 0, 0, fmt.Errorf("invalid size %q, want WxH", s)
	}
	return w, h, nil
}

// expandInputs replaces directories with the images they contain.
func expandInputs(inputs []string) ([]string, error) {
	var paths []string
	for _, in := range inputs {
		info, err := os.Stat(in)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			paths = append(paths, in)
			continue
		}
		found, err := stereo.ListImages(in)
		if err != nil {
			return nil, err
		}
		paths = append(paths, found...)
	}
	if len(paths) == 0 {
		return nil, errors.New("no input images")
	}
	return paths, nil
}

func run(args []string) error {
	opts, err := parseArgs(args)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}
	cfg := opts.cfg

	interp, err := remap.ParseInterpolation(cfg.Interpolation)
	if err != nil {
		return err
	}
	border, err := remap.ParseBorder(cfg.Border)
	if err != nil {
		return err
	}
	paths, err := expandInputs(opts.inputs)
	if err != nil {
		return err
	}

	files := stereo.NewFileManager(cfg.OutputDir)
	if err := files.EnsureDirs(); err != nil {
		return err
	}

	proc := stereo.NewProcessor(stereo.Options{
		Distance:  cfg.Distance,
		Rotation:  cfg.RotationRadians(),
		Remap:     remap.Options{Interpolation: interp, Border: border, Workers: cfg.Workers},
		CacheSize: cfg.MapCacheSize,
		FitWidth:  cfg.FitWidth,
		FitHeight: cfg.FitHeight,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	log.Printf("Computing projection maps for %d image(s): dist=%.2f rot=%.1f° %s", len(paths), cfg.Distance, cfg.RotationDeg, interp)

	pipeline := stereo.NewPipeline(ctx, proc, files, cfg.OutputFormat)
	pipeline.Start(min(len(paths), 4))
	results := pipeline.ProcessAll(paths)

	for _, res := range results {
		if res.Err != nil {
			fmt.Printf("FAILED %s: %v\n", res.Job.SrcPath, res.Err)
			continue
		}
		fmt.Printf("%s -> %s (%s)\n", res.Job.SrcPath, res.OutPath, res.Duration.Round(1e6))
	}

	processed, failed := pipeline.Stats()
	hits, misses := proc.Cache().Stats()
	log.Printf("Done: %d written to %s, %d failed, map cache %d hits / %d misses", processed, files.OutputDir(), failed, hits, misses)
	if failed > 0 {
		return fmt.Errorf("%d of %d images failed", failed, len(paths))
	}
	return nil
}
