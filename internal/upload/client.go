package upload

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"ikit/internal/logging"
	"ikit/internal/services"
)

const (
	// DefaultEndpoint is the public upload API.
	DefaultEndpoint = "https://upload.imagekit.io/api/v1/files/upload"

	defaultHTTPTimeout = 2 * time.Minute
	requestIDHeader    = "X-Ik-Requestid"
	maxResponseBytes   = 4 << 20
)

// HTTPDoer describes the HTTP client used by the upload client.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Config captures the runtime settings of the upload client.
type Config struct {
	Endpoint string
	Timeout  time.Duration
}

// Client posts files to the upload API. It is safe for concurrent use.
type Client struct {
	endpoint   string
	httpClient HTTPDoer
	logger     *slog.Logger
}

// Option customizes the client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client HTTPDoer) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithLogger sets the logger used for request diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewClient constructs an upload client using the supplied configuration.
func NewClient(cfg Config, opts ...Option) *Client {
	timeout := defaultHTTPTimeout
	if cfg.Timeout > 0 {
		timeout = cfg.Timeout
	}
	client := &Client{
		endpoint:   strings.TrimSpace(cfg.Endpoint),
		httpClient: &http.Client{Timeout: timeout},
		logger:     logging.NewNop(),
	}
	if client.endpoint == "" {
		client.endpoint = DefaultEndpoint
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

// Upload validates req, sends it and decodes the stored file description.
//
// Errors wrap ErrInvalidRequest, ErrNetwork or ErrAborted, or are a
// *ServerError carrying the response metadata.
func (c *Client) Upload(ctx context.Context, req Request) (*Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrAborted, context.Cause(ctx))
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	encoded, err := req.encode()
	if err != nil {
		return nil, err
	}
	var reader io.Reader = encoded.reader()
	if req.Progress != nil {
		reader = &countingReader{r: reader, total: encoded.size, progress: req.Progress}
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, reader)
	if err != nil {
		return nil, fmt.Errorf("upload: build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", encoded.contentType)
	httpReq.Header.Set("Accept", "application/json")
	httpReq.ContentLength = encoded.size

	logger := logging.WithContext(services.WithFileName(ctx, req.FileName), c.logger)
	logger.Debug("upload request sending", slog.String("endpoint", c.endpoint), slog.Int64("content_length", encoded.size))

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("%w: %w", ErrAborted, context.Cause(ctx))
		}
		return nil, fmt.Errorf("%w: request to upload endpoint failed: %w", ErrNetwork, err)
	}
	defer resp.Body.Close()

	meta := ResponseMetadata{
		StatusCode: resp.StatusCode,
		RequestID:  resp.Header.Get(requestIDHeader),
		Headers:    resp.Header.Clone(),
	}
	logger = logger.With(slog.String(logging.FieldCorrelationID, meta.RequestID))

	payload, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("%w: %w", ErrAborted, context.Cause(ctx))
		}
		return nil, fmt.Errorf("%w: read response: %w", ErrNetwork, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		serverErr := &ServerError{Message: serverMessage(payload), Body: payload, Metadata: meta}
		logger.Warn("upload rejected by server",
			slog.Int("status", resp.StatusCode),
			slog.String("reason", serverErr.Message),
		)
		return nil, serverErr
	}

	var result Response
	if err := json.Unmarshal(payload, &result); err != nil {
		return nil, &ServerError{Message: "Failed to parse upload response: " + err.Error(), Body: payload, Metadata: meta}
	}
	result.Metadata = meta
	logger.Debug("upload finished", logging.FileID(result.FileID), logging.Bytes(result.Size))
	return &result, nil
}

func serverMessage(payload []byte) string {
	var body struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(payload, &body); err == nil && strings.TrimSpace(body.Message) != "" {
		return strings.TrimSpace(body.Message)
	}
	return genericServerMessage
}

// IsAborted reports whether err came from a cancelled upload.
func IsAborted(err error) bool {
	return errors.Is(err, ErrAborted)
}
