package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

var imagekitEnv = []string{"IMAGEKIT_URL_ENDPOINT", "IMAGEKIT_PUBLIC_KEY", "IMAGEKIT_PRIVATE_KEY"}

type cliTestEnv struct {
	baseDir    string
	configPath string
	historyDB  string
}

// setupCLITestEnv isolates HOME, the working directory and IMAGEKIT_*
// variables, and writes a config whose [upload] endpoint is uploadEndpoint.
func setupCLITestEnv(t *testing.T, uploadEndpoint string) *cliTestEnv {
	t.Helper()

	base := t.TempDir()
	t.Setenv("HOME", filepath.Join(base, "home"))
	for _, key := range imagekitEnv {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
	t.Chdir(base)

	if uploadEndpoint == "" {
		uploadEndpoint = "https://upload.example.com/api/v1/files/upload"
	}
	env := &cliTestEnv{
		baseDir:    base,
		configPath: filepath.Join(base, "config.toml"),
		historyDB:  filepath.Join(base, "history.db"),
	}
	writeFile(t, env.configPath, `
[imagekit]
url_endpoint = "https://ik.example.com/e"
public_key = "public_key_test"
private_key = "private_key_test"

[upload]
endpoint = "`+uploadEndpoint+`"
requests_per_second = 0
tags = ["catalog"]

[history]
path = "`+env.historyDB+`"

[logging]
level = "error"

[presets]
thumb = "w-200,h-200,c-at_max"
`)
	return env
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func requireContains(t *testing.T, haystack, needle string) {
	t.Helper()
	if !strings.Contains(haystack, needle) {
		t.Fatalf("expected %q in output:\n%s", needle, haystack)
	}
}
