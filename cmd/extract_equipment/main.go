package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/a3tai/switchgear-extractor/internal/config"
	"github.com/a3tai/switchgear-extractor/internal/equipment"
	"github.com/a3tai/switchgear-extractor/internal/logging"
	"github.com/a3tai/switchgear-extractor/internal/metrics"
	"github.com/a3tai/switchgear-extractor/internal/pdf"
	"github.com/a3tai/switchgear-extractor/internal/pipeline"
	"github.com/a3tai/switchgear-extractor/internal/report"
	"go.uber.org/zap"
)

// ExtractionOutput is the JSON form of a run
type ExtractionOutput struct {
	InputPath  string            `json:"input_path"`
	OutputPath string            `json:"output_path"`
	MVSCount   int               `json:"mvs_count"`
	DSGCount   int               `json:"dsg_count"`
	Summary    *report.Summary   `json:"summary"`
	Equipment  []*equipment.Item `json:"equipment_list"`
}

type options struct {
	format       string
	verbose      bool
	help         bool
	rowThreshold float64
	outDir       string
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	defaults := config.DefaultConfig()

	var opts options
	fs := flag.NewFlagSet("extract_equipment", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.format, "format", "text", "Output format: text, json")
	fs.BoolVar(&opts.verbose, "verbose", false, "Log every page and item to stderr")
	fs.BoolVar(&opts.help, "help", false, "Show help message")
	fs.Float64Var(&opts.rowThreshold, "rowthreshold", defaults.RowThreshold, "Vertical distance in points that starts a new row")
	fs.StringVar(&opts.outDir, "outdir", ".", "Directory for the spreadsheet when no output path is given")

	if err := fs.Parse(args); err != nil {
		return 2
	}

	if opts.help {
		printHelp(stdout)
		return 0
	}

	if fs.NArg() == 0 || fs.NArg() > 2 {
		fmt.Fprintf(stderr, "Error: PDF file path required\n\n")
		printUsage(stderr)
		return 2
	}
	if opts.format != "text" && opts.format != "json" {
		fmt.Fprintf(stderr, "Error: unsupported output format: %s\n", opts.format)
		return 2
	}

	inputPath, err := filepath.Abs(fs.Arg(0))
	if err != nil {
		fmt.Fprintf(stderr, "Error: failed to get absolute path: %v\n", err)
		return 1
	}
	if err := pdf.NewValidator(defaults.MaxFileSize).ValidateFile(inputPath); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	outputPath := ""
	if fs.NArg() == 2 {
		outputPath = fs.Arg(1)
	}

	level := "warn"
	if opts.verbose {
		level = "debug"
	}
	logger, err := logging.New(logging.Config{Level: level, Format: config.FormatConsole, Output: logging.Stderr})
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	defer func() { _ = logger.Sync() }()

	cfg := defaults
	cfg.RowThreshold = opts.rowThreshold

	svc, err := pipeline.New(pipeline.Options{
		Rules:           cfg.Rules(),
		WordOptions:     cfg.WordOptions(),
		OutputDirectory: opts.outDir,
		Logger:          logger,
		Recorder:        metrics.NewRecorder("cli"),
	})
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	result, err := svc.ProcessFile(ctx, inputPath, outputPath)
	if err != nil {
		if errors.Is(err, equipment.ErrNoEquipment) {
			fmt.Fprintln(stderr, "No equipment found in PDF")
		} else {
			fmt.Fprintf(stderr, "Extraction failed. %v\n", err)
		}
		logger.Debug("run failed", zap.Error(err))
		return 1
	}

	if err := outputResults(stdout, opts.format, inputPath, result); err != nil {
		fmt.Fprintf(stderr, "Error outputting results: %v\n", err)
		return 1
	}
	return 0
}

func outputResults(w io.Writer, format, inputPath string, result *pipeline.Result) error {
	if format == "json" {
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(ExtractionOutput{
			InputPath:  inputPath,
			OutputPath: result.OutputPath,
			MVSCount:   result.ServiceCount,
			DSGCount:   result.DistributionCount,
			Summary:    result.Summary,
			Equipment:  result.Items,
		})
	}

	fmt.Fprintf(w, "Extracting equipment from: %s\n\n", inputPath)
	for _, it := range result.Items {
		fmt.Fprintf(w, "%-10s %s  page %d  %-10s", it.Name, it.Type, it.Page+1, it.ColorName)
		if it.PrimarySource != "" {
			fmt.Fprintf(w, "  primary %s", it.PrimarySource)
		}
		if it.AlternateSource != "" {
			fmt.Fprintf(w, "  alternate %s", it.AlternateSource)
		}
		fmt.Fprintln(w)
	}
	fmt.Fprintln(w)
	fmt.Fprint(w, result.Summary.String())
	fmt.Fprintf(w, "\nSpreadsheet written to: %s\n", result.OutputPath)
	return nil
}

func printHelp(w io.Writer) {
	fmt.Fprintln(w, "Extract Equipment - list switchgear from a single-line diagram PDF")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Finds every MVS (service) and DSG (distribution) switchgear label, colors each")
	fmt.Fprintln(w, "item by its row and column on the drawing, links distribution gear to the")
	fmt.Fprintln(w, "service gear that feeds it and writes a styled spreadsheet.")
	fmt.Fprintln(w)
	printUsage(w)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "OPTIONS:")
	fmt.Fprintln(w, "  -format        Output format: text (default), json")
	fmt.Fprintln(w, "  -outdir        Directory for a generated spreadsheet name (default: .)")
	fmt.Fprintln(w, "  -rowthreshold  Vertical distance that starts a new row (default: 50)")
	fmt.Fprintln(w, "  -verbose       Log every page and item to stderr")
	fmt.Fprintln(w, "  -help          Show this help message")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "EXAMPLES:")
	fmt.Fprintln(w, "  extract_equipment sld.pdf")
	fmt.Fprintln(w, "  extract_equipment sld.pdf equipment.xlsx")
	fmt.Fprintln(w, "  extract_equipment -format json -outdir outputs drawings/sld.pdf")
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "USAGE:")
	fmt.Fprintln(w, "  extract_equipment [OPTIONS] <input.pdf> [output.xlsx]")
}
