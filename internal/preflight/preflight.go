package preflight

import (
	"context"
	"net/http"
	"path/filepath"
	"time"

	"ikit/internal/config"
)

const endpointCheckTimeout = 5 * time.Second

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string `json:"name"`
	Passed bool   `json:"passed"`
	Detail string `json:"detail"`
}

// RunAll executes all applicable preflight checks for the given config.
// client may be nil.
func RunAll(ctx context.Context, cfg *config.Config, client *http.Client) []Result {
	if cfg == nil {
		return nil
	}
	if client == nil {
		client = &http.Client{Timeout: endpointCheckTimeout}
	}

	results := CheckCredentials(cfg)

	if cfg.ImageKit.URLEndpoint != "" {
		results = append(results, CheckEndpoint(ctx, client, "Delivery endpoint", cfg.ImageKit.URLEndpoint))
	}
	results = append(results, CheckEndpoint(ctx, client, "Upload endpoint", cfg.Upload.Endpoint))

	if cfg.History.Enabled {
		results = append(results, CheckDirectoryAccess("History directory", filepath.Dir(cfg.History.Path)))
	}
	if cfg.Logging.File != "" {
		results = append(results, CheckDirectoryAccess("Log directory", filepath.Dir(cfg.Logging.File)))
	}
	return results
}

// Passed reports whether every result passed.
func Passed(results []Result) bool {
	for _, r := range results {
		if !r.Passed {
			return false
		}
	}
	return true
}
