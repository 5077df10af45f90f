package preflight

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"path/filepath"

	"golang.org/x/sys/unix"

	"ikit/internal/config"
)

// CheckCredentials reports whether the delivery endpoint and upload keys
// are configured. Only presence is checked; the keys are not validated
// against the API.
func CheckCredentials(cfg *config.Config) []Result {
	endpoint := Result{Name: "URL endpoint", Passed: true, Detail: cfg.ImageKit.URLEndpoint}
	if err := cfg.RequireURLEndpoint(); err != nil {
		endpoint = Result{Name: "URL endpoint", Detail: "not configured (relative sources cannot be built)"}
	}

	keys := Result{Name: "Upload keys", Passed: true, Detail: "public and private key set"}
	if err := cfg.RequireUploadKeys(); err != nil {
		keys = Result{Name: "Upload keys", Detail: err.Error()}
	}
	return []Result{endpoint, keys}
}

// CheckEndpoint verifies that rawURL answers HTTP requests. Any response
// below 500 counts as reachable because the check sends no credentials.
func CheckEndpoint(ctx context.Context, client *http.Client, name, rawURL string) Result {
	if rawURL == "" {
		return Result{Name: name, Detail: "missing url"}
	}

	checkCtx, cancel := context.WithTimeout(ctx, endpointCheckTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(checkCtx, http.MethodHead, rawURL, nil)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("invalid url (%v)", err)}
	}
	resp, err := client.Do(req)
	if err != nil {
		return Result{Name: name, Detail: summarizeRequestError(err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusInternalServerError {
		return Result{Name: name, Detail: fmt.Sprintf("server error (%d)", resp.StatusCode)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("reachable (%d)", resp.StatusCode)}
}

// CheckDirectoryAccess verifies that the directory is readable and writable.
// A missing directory passes when its nearest existing parent is writable,
// since it is created on first use.
func CheckDirectoryAccess(name, path string) Result {
	target := path
	for {
		info, err := os.Stat(target)
		if err == nil {
			if !info.IsDir() {
				return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", target)}
			}
			break
		}
		if !os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", target, err)}
		}
		parent := filepath.Dir(target)
		if parent == target {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: no existing parent)", path)}
		}
		target = parent
	}

	if err := unix.Access(target, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", target, err)}
	}
	if target != path {
		return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (will be created)", path)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

func summarizeRequestError(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return "timed out"
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return "timed out"
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return fmt.Sprintf("unknown host %s", dnsErr.Name)
	}
	return err.Error()
}
