package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// ImageKit contains the delivery endpoint and account credentials.
type ImageKit struct {
	URLEndpoint            string `toml:"url_endpoint"`
	PublicKey              string `toml:"public_key"`
	PrivateKey             string `toml:"private_key"`
	TransformationPosition string `toml:"transformation_position"`
}

// Upload contains settings for the upload client and batch uploads.
type Upload struct {
	Endpoint          string   `toml:"endpoint"`
	TimeoutSeconds    int      `toml:"timeout_seconds"`
	Concurrency       int      `toml:"concurrency"`
	RequestsPerSecond float64  `toml:"requests_per_second"`
	Folder            string   `toml:"folder"`
	UseUniqueFileName bool     `toml:"use_unique_file_name"`
	TokenTTLSeconds   int      `toml:"token_ttl_seconds"`
	Tags              []string `toml:"tags"`
}

// History contains configuration for the local upload ledger.
type History struct {
	Enabled bool   `toml:"enabled"`
	Path    string `toml:"path"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
	File   string `toml:"file"`
}

// Config encapsulates all configuration values for ikit.
//
// Configuration sections:
//   - ImageKit: delivery endpoint, keys, default transformation position
//   - Upload: upload endpoint, timeouts and batch pacing
//   - History: SQLite ledger of uploaded files
//   - Logging: log format, level and optional file
//   - Presets: named raw transformation strings
type Config struct {
	ImageKit ImageKit          `toml:"imagekit"`
	Upload   Upload            `toml:"upload"`
	History  History           `toml:"history"`
	Logging  Logging           `toml:"logging"`
	Presets  map[string]string `toml:"presets"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. The returned
// config has environment fallbacks applied and paths expanded.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs(projectConfigName)
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// Encode renders the configuration as TOML. Secrets are masked unless
// showSecrets is set.
func (c *Config) Encode(showSecrets bool) ([]byte, error) {
	out := *c
	if !showSecrets {
		out.ImageKit.PrivateKey = maskSecret(out.ImageKit.PrivateKey)
	}
	data, err := toml.Marshal(out)
	if err != nil {
		return nil, fmt.Errorf("encode config: %w", err)
	}
	return data, nil
}

// UploadTimeout returns the per-request upload timeout.
func (c *Config) UploadTimeout() time.Duration {
	return time.Duration(c.Upload.TimeoutSeconds) * time.Second
}

// TokenTTL returns the lifetime of generated upload signatures.
func (c *Config) TokenTTL() time.Duration {
	return time.Duration(c.Upload.TokenTTLSeconds) * time.Second
}

// Preset returns the raw transformation string stored under name.
func (c *Config) Preset(name string) (string, bool) {
	value, ok := c.Presets[strings.TrimSpace(name)]
	return value, ok
}

// RequireURLEndpoint reports a configuration error when no delivery endpoint is set.
func (c *Config) RequireURLEndpoint() error {
	if c.ImageKit.URLEndpoint == "" {
		return fmt.Errorf("imagekit.url_endpoint is required. Set %s or edit %s (create with 'ikit config init')", envURLEndpoint, configHint())
	}
	return nil
}

// RequireUploadKeys reports a configuration error when upload credentials are missing.
func (c *Config) RequireUploadKeys() error {
	if c.ImageKit.PublicKey == "" {
		return fmt.Errorf("imagekit.public_key is required for uploads. Set %s or edit %s", envPublicKey, configHint())
	}
	if c.ImageKit.PrivateKey == "" {
		return fmt.Errorf("imagekit.private_key is required for uploads. Set %s or edit %s", envPrivateKey, configHint())
	}
	return nil
}

func configHint() string {
	path, err := DefaultConfigPath()
	if err != nil {
		return defaultConfigPath
	}
	return path
}

func maskSecret(value string) string {
	if value == "" {
		return ""
	}
	if len(value) <= 8 {
		return "********"
	}
	return value[:4] + strings.Repeat("*", len(value)-4)
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o600); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
