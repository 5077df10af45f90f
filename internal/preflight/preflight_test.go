package preflight

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"ikit/internal/config"
)

func TestCheckDirectoryAccess_OK(t *testing.T) {
	dir := t.TempDir()
	result := CheckDirectoryAccess("test", dir)
	if !result.Passed {
		t.Fatalf("expected pass for temp dir, got: %s", result.Detail)
	}
}

func TestCheckDirectoryAccess_MissingButCreatable(t *testing.T) {
	result := CheckDirectoryAccess("test", filepath.Join(t.TempDir(), "a", "b"))
	if !result.Passed {
		t.Fatalf("expected pass for creatable dir, got: %s", result.Detail)
	}
	if result.Detail == "" {
		t.Fatal("expected non-empty detail")
	}
}

func TestCheckDirectoryAccess_NotDir(t *testing.T) {
	f := filepath.Join(t.TempDir(), "file.txt")
	if err := os.WriteFile(f, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	result := CheckDirectoryAccess("test", f)
	if result.Passed {
		t.Fatal("expected failure for file path")
	}
	if nested := CheckDirectoryAccess("test", filepath.Join(f, "below")); nested.Passed {
		t.Fatal("expected failure below a file")
	}
}

func TestCheckEndpoint(t *testing.T) {
	tests := []struct {
		name   string
		status int
		passed bool
	}{
		{"ok", http.StatusOK, true},
		{"not found still reachable", http.StatusNotFound, true},
		{"unauthorized still reachable", http.StatusUnauthorized, true},
		{"server error", http.StatusBadGateway, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.Method != http.MethodHead {
					t.Errorf("method = %s", r.Method)
				}
				w.WriteHeader(tt.status)
			}))
			defer srv.Close()

			result := CheckEndpoint(context.Background(), srv.Client(), "CDN", srv.URL)
			if result.Passed != tt.passed {
				t.Fatalf("passed = %v, detail %q", result.Passed, result.Detail)
			}
		})
	}
}

func TestCheckEndpoint_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close()

	result := CheckEndpoint(context.Background(), http.DefaultClient, "CDN", url)
	if result.Passed {
		t.Fatal("expected failure for closed server")
	}
	if missing := CheckEndpoint(context.Background(), http.DefaultClient, "CDN", ""); missing.Passed {
		t.Fatal("expected failure for missing url")
	}
}

func TestCheckCredentials(t *testing.T) {
	cfg := config.Default()
	results := CheckCredentials(&cfg)
	if len(results) != 2 || Passed(results) {
		t.Fatalf("expected two failing results, got %+v", results)
	}

	cfg.ImageKit.URLEndpoint = "https://ik.example.com/e"
	cfg.ImageKit.PublicKey = "pub"
	cfg.ImageKit.PrivateKey = "priv"
	if results := CheckCredentials(&cfg); !Passed(results) {
		t.Fatalf("expected passing results, got %+v", results)
	}
}

func TestRunAll_NilConfig(t *testing.T) {
	if results := RunAll(context.Background(), nil, nil); results != nil {
		t.Fatal("expected nil results for nil config")
	}
}

func TestRunAll_Configured(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	cfg := config.Default()
	cfg.ImageKit.URLEndpoint = srv.URL + "/e"
	cfg.ImageKit.PublicKey = "pub"
	cfg.ImageKit.PrivateKey = "priv"
	cfg.Upload.Endpoint = srv.URL + "/upload"
	cfg.History.Path = filepath.Join(t.TempDir(), "history.db")

	results := RunAll(context.Background(), &cfg, srv.Client())
	if len(results) != 5 {
		t.Fatalf("expected 5 results, got %d: %+v", len(results), results)
	}
	for _, r := range results {
		if !r.Passed {
			t.Errorf("check %q failed: %s", r.Name, r.Detail)
		}
	}
}

func TestRunAll_SkipsDisabledHistory(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {}))
	defer srv.Close()

	cfg := config.Default()
	cfg.Upload.Endpoint = srv.URL
	cfg.History.Enabled = false

	results := RunAll(context.Background(), &cfg, srv.Client())
	for _, r := range results {
		if r.Name == "History directory" || r.Name == "Delivery endpoint" {
			t.Fatalf("unexpected check %q", r.Name)
		}
	}
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
}
