// Package pipeline runs one isolated extraction: PDF in, colored and connected
// equipment plus a spreadsheet out.
package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/a3tai/switchgear-extractor/internal/equipment"
	"github.com/a3tai/switchgear-extractor/internal/metrics"
	"github.com/a3tai/switchgear-extractor/internal/pdf"
	"github.com/a3tai/switchgear-extractor/internal/report"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// OutputPrefix starts every generated spreadsheet name
const OutputPrefix = "equipment_data_"

// Options configures a Service
type Options struct {
	Rules           equipment.Rules
	WordOptions     pdf.WordOptions
	OutputDirectory string
	Logger          *zap.Logger
	Recorder        *metrics.Recorder
}

// Result is the outcome of one run
type Result struct {
	Items             []*equipment.Item `json:"equipment_list"`
	Summary           *report.Summary   `json:"summary"`
	OutputName        string            `json:"output_name"`
	OutputPath        string            `json:"-"`
	ServiceCount      int               `json:"mvs_count"`
	DistributionCount int               `json:"dsg_count"`
}

// Service runs the extraction pipeline. It holds no per-run state, so one
// Service may serve concurrent runs.
type Service struct {
	extractor *equipment.Extractor
	emitter   *report.Emitter
	wordOpts  pdf.WordOptions
	outputDir string
	logger    *zap.Logger
	recorder  *metrics.Recorder
	now       func() time.Time
}

// New creates a pipeline service
func New(opts Options) (*Service, error) {
	if err := opts.Rules.Validate(); err != nil {
		return nil, fmt.Errorf("invalid extraction rules: %w", err)
	}
	if opts.OutputDirectory == "" {
		return nil, errors.New("output directory cannot be empty")
	}

	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	recorder := opts.Recorder
	if recorder == nil {
		recorder = metrics.NewRecorder("default")
	}

	return &Service{
		extractor: equipment.NewExtractor(opts.Rules, logger),
		emitter:   report.NewEmitter(logger),
		wordOpts:  opts.WordOptions,
		outputDir: opts.OutputDirectory,
		logger:    logger,
		recorder:  recorder,
		now:       time.Now,
	}, nil
}

// OutputDirectory returns where generated spreadsheets are written
func (s *Service) OutputDirectory() string {
	return s.outputDir
}

// OutputName returns a fresh spreadsheet name. The timestamp orders runs and
// the random suffix keeps concurrent runs apart.
func (s *Service) OutputName() string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return fmt.Sprintf("%s%d_%s.xlsx", OutputPrefix, s.now().Unix(), suffix)
}

// ProcessUpload runs the pipeline on an uploaded document held in memory and
// writes the spreadsheet under a fresh name in the output directory.
func (s *Service) ProcessUpload(ctx context.Context, data []byte) (*Result, error) {
	name := s.OutputName()
	r := bytes.NewReader(data)
	return s.run(ctx, r, int64(len(data)), filepath.Join(s.outputDir, name))
}

// ProcessFile runs the pipeline on the PDF at path. An empty outputPath writes
// under a fresh name in the output directory.
func (s *Service) ProcessFile(ctx context.Context, path, outputPath string) (*Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat %s: %w", path, err)
	}

	if outputPath == "" {
		outputPath = filepath.Join(s.outputDir, s.OutputName())
	}
	return s.run(ctx, f, info.Size(), outputPath)
}

type document interface {
	io.ReaderAt
	io.ReadSeeker
}

func (s *Service) run(ctx context.Context, r document, size int64, outputPath string) (*Result, error) {
	timer := metrics.NewTimer()
	logger := s.logger.With(zap.String("output", filepath.Base(outputPath)))

	items, pages, err := s.extract(ctx, r, size)
	if err != nil {
		status := metrics.StatusNoEquipment
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			status = metrics.StatusError
		}
		s.recorder.RecordRun(status, pages, timer.Duration())
		return nil, err
	}

	equipment.ResolveConnections(items)

	if err := s.write(items, outputPath); err != nil {
		logger.Error("failed to write spreadsheet", zap.Error(err))
		s.recorder.RecordRun(metrics.StatusError, pages, timer.Duration())
		return nil, err
	}

	summary := report.Summarize(items)
	summary.Pages = pages
	if _, err := r.Seek(0, io.SeekStart); err == nil {
		if info, err := pdf.Inspect(r); err == nil {
			summary.Pages = info.Pages
			summary.Title = info.Title
		} else {
			logger.Debug("document inspection skipped", zap.Error(err))
		}
	}

	counts := equipment.CountByType(items)
	result := &Result{
		Items:             items,
		Summary:           summary,
		OutputName:        filepath.Base(outputPath),
		OutputPath:        outputPath,
		ServiceCount:      counts[equipment.TypeService],
		DistributionCount: counts[equipment.TypeDistribution],
	}

	for typ, n := range counts {
		s.recorder.RecordItems(string(typ), n)
	}
	s.recorder.RecordRun(metrics.StatusSuccess, pages, timer.Duration())

	logger.Info("extraction complete",
		zap.Int("items", len(items)),
		zap.Int("mvs", result.ServiceCount),
		zap.Int("dsg", result.DistributionCount),
		zap.Int("pages", pages),
		zap.Duration("duration", timer.Duration()))

	return result, nil
}

// extract reads the document and returns its items. Every failure and the
// empty result are reported as equipment.ErrNoEquipment.
func (s *Service) extract(ctx context.Context, r io.ReaderAt, size int64) ([]*equipment.Item, int, error) {
	doc, err := pdf.NewDocument(r, size, s.wordOpts)
	if err != nil {
		s.logger.Error("failed to open PDF", zap.Error(err))
		return nil, 0, fmt.Errorf("%w: %v", equipment.ErrNoEquipment, err)
	}
	defer doc.Close()

	pages := doc.NumPages()
	items, err := s.extractor.Extract(ctx, doc)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, pages, ctxErr
		}
		return nil, pages, fmt.Errorf("%w: %v", equipment.ErrNoEquipment, err)
	}
	if len(items) == 0 {
		s.logger.Info("no equipment found", zap.Int("pages", pages))
		return nil, pages, equipment.ErrNoEquipment
	}
	return items, pages, nil
}

func (s *Service) write(items []*equipment.Item, outputPath string) error {
	if err := os.MkdirAll(filepath.Dir(outputPath), 0o750); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	sink, err := report.NewXLSXSink(outputPath)
	if err != nil {
		return err
	}
	if err := s.emitter.Emit(items, sink); err != nil {
		sink.Close()
		return err
	}
	return sink.Close()
}
