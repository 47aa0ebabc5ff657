package pipeline

import (
	"bufio"
	"context"
	"log/slog"
	"os"
	"strings"
	"sync/atomic"
	"time"

	"github.com/ironsheep/top3colors/internal/imaging"
	"golang.org/x/sync/errgroup"
)

// Fetcher downloads and decodes one image. *imaging.Fetcher implements it.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*imaging.DecodedImage, error)
}

// maxLineBytes bounds a single input line (one URL).
const maxLineBytes = 1024 * 1024

// Pipeline turns a file of image URLs into a file of top-3 color records.
type Pipeline struct {
	// fetcher is shared by all workers.
	fetcher Fetcher

	// workers is the maximum number of items processed at once.
	workers int

	logger *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// WithWorkers sets the worker pool size. Values below 1 are ignored.
// The default is 1.
func WithWorkers(n int) Option {
	return func(p *Pipeline) {
		if n > 0 {
			p.workers = n
		}
	}
}

// New creates a Pipeline that fetches through f.
func New(f Fetcher, opts ...Option) *Pipeline {
	p := &Pipeline{
		fetcher: f,
		workers: 1,
	}

	for _, opt := range opts {
		opt(p)
	}

	if p.logger == nil {
		p.logger = slog.Default()
	}

	return p
}

// Workers returns the worker pool size.
func (p *Pipeline) Workers() int {
	return p.workers
}

// Result summarizes a successful run.
type Result struct {
	// Records is the number of lines written to the output file.
	Records int

	// Elapsed is the wall time of the run.
	Elapsed time.Duration
}

// Run processes every URL in inputPath and writes one record per URL to
// outputPath.
//
// The output file is recreated before the input is opened. Items are
// processed by at most Workers() goroutines, each running fetch, count and
// append in sequence; records are appended in completion order, not input
// order. The first failing item cancels the run: no further items are
// dispatched, in-flight items are abandoned through the context, and lines
// already written stay on disk. Run always waits for its workers before
// returning.
//
// Errors are *OutputError, *InputError, *FetchError or *InterruptedError.
func (p *Pipeline) Run(ctx context.Context, inputPath, outputPath string) (*Result, error) {
	start := time.Now()

	out, err := CreateRecordWriter(outputPath)
	if err != nil {
		return nil, err
	}

	records, err := p.process(ctx, inputPath, out)
	if closeErr := out.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return nil, err
	}

	elapsed := time.Since(start)
	p.logger.Info("processing complete",
		"input", inputPath,
		"records", records,
		"elapsed", elapsed,
	)

	return &Result{Records: records, Elapsed: elapsed}, nil
}

// process reads inputPath line by line and fans the URLs out to the worker
// group.
func (p *Pipeline) process(ctx context.Context, inputPath string, out *RecordWriter) (int, error) {
	in, err := os.Open(inputPath) //nolint:gosec // input path is user-provided
	if err != nil {
		return 0, &InputError{Path: inputPath, Err: err}
	}
	defer in.Close()

	p.logger.Info("starting processing",
		"input", inputPath,
		"workers", p.workers,
	)

	var written atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.workers)

	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	dispatched := 0
	for scanner.Scan() {
		url := strings.TrimSpace(scanner.Text())
		if url == "" {
			continue
		}

		// g.Go blocks while every worker is busy, so a failure is seen
		// here before the next item is handed out.
		if gctx.Err() != nil {
			break
		}

		dispatched++
		g.Go(func() error {
			if gctx.Err() != nil {
				return gctx.Err()
			}
			if err := p.processItem(gctx, inputPath, url, out); err != nil {
				return err
			}
			written.Add(1)
			return nil
		})
	}
	scanErr := scanner.Err()

	waitErr := g.Wait()

	// Cancellation from outside takes precedence over the per-item errors it
	// caused.
	if ctx.Err() != nil {
		p.logger.Debug("processing interrupted",
			"input", inputPath,
			"dispatched", dispatched,
			"written", written.Load(),
		)
		return 0, &InterruptedError{Input: inputPath, Err: ctx.Err()}
	}
	if waitErr != nil {
		p.logger.Debug("processing aborted",
			"input", inputPath,
			"dispatched", dispatched,
			"written", written.Load(),
			"error", waitErr,
		)
		return 0, waitErr
	}
	if scanErr != nil {
		return 0, &InputError{Path: inputPath, Err: scanErr}
	}

	return int(written.Load()), nil
}

// processItem fetches one URL, counts its colors and appends the record.
func (p *Pipeline) processItem(ctx context.Context, inputPath, url string, out *RecordWriter) error {
	img, err := p.fetcher.Fetch(ctx, url)
	if err != nil {
		return &FetchError{URL: url, Input: inputPath, Err: err}
	}

	colors := imaging.Top3(img)
	img.Release()

	if err := out.Append(FormatRecord(url, colors)); err != nil {
		return err
	}

	p.logger.Debug("item processed",
		"url", url,
		"colors", colors,
	)
	return nil
}
