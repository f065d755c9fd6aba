package service

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/yurifrl/cardcsv/pkg/config"
	"github.com/yurifrl/cardcsv/pkg/csv"
	"github.com/yurifrl/cardcsv/pkg/models"
	"github.com/yurifrl/cardcsv/pkg/parser"
	"github.com/yurifrl/cardcsv/pkg/transform"
)

// Job is one conversion: which profile to render and how to sanitize.
type Job struct {
	Profile models.Profile
	Options transform.Options
	Filters []csv.FilterFunc[models.Record]
}

// Result summarizes a finished conversion.
type Result struct {
	Input   string
	Records int
	Rows    int
}

type Processor struct {
	config *config.Config
	logger *log.Logger
	parser *parser.Parser
}

func NewProcessor(cfg *config.Config, logger *log.Logger) *Processor {
	return &Processor{
		config: cfg,
		logger: logger,
		parser: parser.New(logger),
	}
}

// DefaultJob builds a job from the processor configuration.
func (p *Processor) DefaultJob() (Job, error) {
	profile, err := p.config.ResolveProfile()
	if err != nil {
		return Job{}, err
	}
	return Job{Profile: profile, Options: p.config.Options()}, nil
}

// Load reads and decodes every record of input.
func (p *Processor) Load(ctx context.Context, input string) ([]models.Record, error) {
	data, err := parser.ReadAll(ctx, input)
	if err != nil {
		return nil, err
	}
	name := input
	if name == "" {
		name = parser.Stdin
	}
	return p.parser.ProcessBytes(data, filepath.Base(name))
}

// Convert reads input fully, then writes the header and one line per
// record to w. Lines written before a failing record are kept.
func (p *Processor) Convert(ctx context.Context, input string, w io.Writer, job Job) (*Result, error) {
	records, err := p.Load(ctx, input)
	if err != nil {
		return nil, err
	}

	res, err := p.ConvertRecords(records, w, job)
	if res != nil {
		res.Input = input
	}
	return res, err
}

// ConvertRecords writes already decoded records.
func (p *Processor) ConvertRecords(records []models.Record, w io.Writer, job Job) (*Result, error) {
	kept := 0
	keep := func(r models.Record) bool {
		ok := csv.Match(r, job.Filters...)
		if ok {
			kept++
		}
		return ok
	}

	tr := transform.New(job.Profile, job.Options, p.logger)
	out := csv.NewWriter(w, job.Profile.Separator)
	res := &Result{Records: len(records)}

	if err := out.WriteHeader(job.Profile.Header()); err != nil {
		return res, err
	}
	err := tr.EachWhere(records, keep, out.WriteLine)
	res.Rows = out.Rows()
	if len(job.Filters) > 0 {
		p.logger.Debug("filtered records", "kept", kept, "total", len(records))
	}
	return res, err
}

// ProcessDirectory converts every supported file in dir into outDir, or
// next to the input when outDir is empty. Failing files are logged and
// skipped.
func (p *Processor) ProcessDirectory(ctx context.Context, dir, outDir string, job Job) ([]*Result, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("error reading directory: %w", err)
	}

	var results []*Result
	for _, entry := range entries {
		if entry.IsDir() || !IsSupported(entry.Name()) {
			continue
		}

		inputPath := filepath.Join(dir, entry.Name())
		outFile := p.determineOutputPath(inputPath, entry.Name(), outDir)

		res, err := p.processFile(ctx, inputPath, outFile, job)
		if err != nil {
			p.logger.Error("failed to process entry", "file", entry.Name(), "error", err)
			continue
		}
		p.logger.Info("processed file successfully", "input", inputPath, "output", outFile, "rows", res.Rows)
		results = append(results, res)
	}

	return results, nil
}

// IsSupported reports whether name looks like a card dump.
func IsSupported(name string) bool {
	ext := strings.ToLower(filepath.Ext(parser.StripCompression(name)))
	return ext == ".json" || ext == ".ndjson" || ext == ".jsonl"
}

func (p *Processor) determineOutputPath(inputPath, fileName, outDir string) string {
	base := parser.StripCompression(fileName)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	if outDir == "" {
		outDir = p.config.GetOutputPath()
	}
	if outDir != "" {
		return filepath.Join(outDir, base+".csv")
	}
	return filepath.Join(filepath.Dir(inputPath), base+".csv")
}

func (p *Processor) processFile(ctx context.Context, inputPath, outputPath string, job Job) (*Result, error) {
	output, err := os.Create(outputPath)
	if err != nil {
		return nil, fmt.Errorf("error creating output file: %w", err)
	}
	defer output.Close()

	return p.Convert(ctx, inputPath, output, job)
}
