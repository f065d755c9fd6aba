package executors

import (
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/dsnet/compress/bzip2"
	"github.com/ulikunitz/xz"

	"github.com/yurifrl/cardcsv/pkg/plan"
	"github.com/yurifrl/cardcsv/pkg/service"
)

// Apply converts every job of the plan. It stops at the first failing job;
// outputs of earlier jobs stay on disk.
func (e *Executor) Apply(ctx context.Context, p *plan.Plan) ([]*service.Result, error) {
	e.logger.Debug("applying plan", "jobs", len(p.Jobs))

	results := make([]*service.Result, 0, len(p.Jobs))
	for _, job := range p.Jobs {
		conv, err := e.job(p, job)
		if err != nil {
			return results, err
		}

		input := p.Resolve(job.Input)
		output := p.Resolve(job.Output)

		res, err := e.write(ctx, input, output, conv)
		if err != nil {
			return results, fmt.Errorf("job %s: %w", job.Input, err)
		}
		e.logger.Info("wrote output", "input", job.Input, "output", output, "rows", res.Rows)
		results = append(results, res)
	}
	return results, nil
}

func (e *Executor) write(ctx context.Context, input, output string, conv service.Job) (*service.Result, error) {
	if dir := filepath.Dir(output); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	file, err := os.Create(output)
	if err != nil {
		return nil, fmt.Errorf("failed to create output file: %w", err)
	}
	defer file.Close()

	writer, err := compressWriter(file, output)
	if err != nil {
		return nil, err
	}

	res, err := e.processor.Convert(ctx, input, writer, conv)
	if cerr := writer.Close(); cerr != nil && err == nil {
		err = cerr
	}
	return res, err
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }

// compressWriter wraps w according to the output suffix.
func compressWriter(w io.Writer, name string) (io.WriteCloser, error) {
	lower := strings.ToLower(name)
	switch {
	case strings.HasSuffix(lower, ".xz"):
		return xz.NewWriter(w)
	case strings.HasSuffix(lower, ".bz2"):
		return bzip2.NewWriter(w, nil)
	case strings.HasSuffix(lower, ".gz"):
		return gzip.NewWriter(w), nil
	}
	return nopWriteCloser{w}, nil
}
