package upload

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"ikit/internal/auth"
	"ikit/internal/logging"
	"ikit/internal/services"
	"ikit/internal/textutil"
)

// Signer issues authentication parameters for one upload.
type Signer interface {
	Sign() (auth.Params, error)
}

// Uploader is the subset of Client used by Batch.
type Uploader interface {
	Upload(ctx context.Context, req Request) (*Response, error)
}

// BatchOptions controls a batch of local file uploads.
type BatchOptions struct {
	PublicKey         string
	Folder            string
	Tags              []string
	UseUniqueFileName bool
	// Concurrency bounds in-flight uploads; values below 1 mean 1.
	Concurrency int
	// RequestsPerSecond caps how often uploads start; zero disables pacing.
	RequestsPerSecond float64
}

// Result is the outcome of uploading one local file.
type Result struct {
	Path     string
	FileName string
	Response *Response
	Err      error
	Started  time.Time
	Duration time.Duration
}

// Outcome returns the history label for the result.
func (r Result) Outcome() string {
	return services.Outcome(r.Err)
}

// Batch uploads local files concurrently.
type Batch struct {
	uploader Uploader
	signer   Signer
	opts     BatchOptions
	logger   *slog.Logger
	now      func() time.Time
}

// NewBatch constructs a batch runner. logger may be nil.
func NewBatch(uploader Uploader, signer Signer, opts BatchOptions, logger *slog.Logger) *Batch {
	if opts.Concurrency < 1 {
		opts.Concurrency = 1
	}
	return &Batch{
		uploader: uploader,
		signer:   signer,
		opts:     opts,
		logger:   logging.NewComponentLogger(logger, "upload"),
		now:      time.Now,
	}
}

// Run uploads every path and returns one Result per path in input order.
// Per-file failures are reported in the results; the returned error is
// non-nil only when ctx ends before all files were attempted. onResult, when
// set, is called once per finished file from the uploading goroutine.
func (b *Batch) Run(ctx context.Context, paths []string, onResult func(Result)) ([]Result, error) {
	results := make([]Result, len(paths))
	limit := rate.Inf
	burst := b.opts.Concurrency
	if b.opts.RequestsPerSecond > 0 {
		limit = rate.Limit(b.opts.RequestsPerSecond)
		burst = 1
	}
	limiter := rate.NewLimiter(limit, burst)

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(b.opts.Concurrency)

	for i, path := range paths {
		results[i] = Result{Path: path, FileName: textutil.SanitizeFileName(filepath.Base(path))}
		if groupCtx.Err() != nil {
			results[i].Err = fmt.Errorf("%w: %w", ErrAborted, context.Cause(groupCtx))
			continue
		}
		pending := results[i]
		group.Go(func() error {
			if err := limiter.Wait(groupCtx); err != nil {
				pending.Err = fmt.Errorf("%w: %w", ErrAborted, err)
				results[i] = pending
				return nil
			}
			result := b.uploadOne(groupCtx, pending)
			results[i] = result
			if onResult != nil {
				onResult(result)
			}
			return nil
		})
	}
	_ = group.Wait()

	if err := ctx.Err(); err != nil {
		return results, fmt.Errorf("%w: %w", ErrAborted, context.Cause(ctx))
	}
	return results, nil
}

func (b *Batch) uploadOne(ctx context.Context, pending Result) (result Result) {
	result = pending
	result.Started = b.now()
	ctx = services.WithFileName(ctx, result.FileName)
	logger := logging.WithContext(ctx, b.logger)

	defer func() {
		result.Duration = b.now().Sub(result.Started)
	}()

	if result.FileName == "" {
		result.Err = invalid(fmt.Sprintf("cannot derive a file name from %q", result.Path))
		return result
	}

	file, err := os.Open(result.Path)
	if err != nil {
		result.Err = services.Wrap(services.ErrNotFound, "upload", "open", result.Path, err)
		return result
	}
	defer file.Close()

	params, err := b.signer.Sign()
	if err != nil {
		result.Err = services.Wrap(services.ErrConfiguration, "upload", "sign", "", err)
		return result
	}

	sampler := logging.NewProgressSampler(25)
	req := Request{
		File:              file,
		FileName:          result.FileName,
		PublicKey:         b.opts.PublicKey,
		Token:             params.Token,
		Signature:         params.Signature,
		Expire:            params.Expire,
		UseUniqueFileName: Bool(b.opts.UseUniqueFileName),
		Tags:              b.opts.Tags,
		Folder:            b.opts.Folder,
		Progress: func(sent, total int64) {
			if sampler.ShouldLog(sent, total, result.FileName) {
				logger.Debug("upload progress",
					slog.Int64("sent_bytes", sent),
					slog.Int64("total_bytes", total),
					slog.Float64("percent", logging.Percent(sent, total)),
				)
			}
		},
	}

	resp, err := b.uploader.Upload(ctx, req)
	result.Response = resp
	result.Err = err
	switch {
	case err == nil:
		logger.Info("file uploaded",
			logging.FileID(resp.FileID),
			logging.URL(resp.URL),
			logging.Bytes(resp.Size),
			slog.String(logging.FieldCorrelationID, resp.Metadata.RequestID),
		)
	case errors.Is(err, ErrAborted):
		logger.Debug("upload aborted", logging.Error(err))
	default:
		logger.Warn("upload failed", logging.Error(err), slog.String("outcome", services.Outcome(err)))
	}
	return result
}
