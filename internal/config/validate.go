package config

import (
	"errors"
	"fmt"
	"net/url"
)

// Validate ensures the configuration is usable. Credentials are not required
// here; commands that need them call RequireURLEndpoint or RequireUploadKeys.
func (c *Config) Validate() error {
	if err := c.validateImageKit(); err != nil {
		return err
	}
	if err := c.validateUpload(); err != nil {
		return err
	}
	if err := c.validateHistory(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return c.validatePresets()
}

func (c *Config) validateImageKit() error {
	if c.ImageKit.URLEndpoint != "" {
		if err := validateAbsoluteURL(c.ImageKit.URLEndpoint); err != nil {
			return fmt.Errorf("imagekit.url_endpoint: %w", err)
		}
	}
	switch c.ImageKit.TransformationPosition {
	case "query", "path":
	default:
		return fmt.Errorf("imagekit.transformation_position: unsupported value %q (want query or path)", c.ImageKit.TransformationPosition)
	}
	return nil
}

func (c *Config) validateUpload() error {
	if err := validateAbsoluteURL(c.Upload.Endpoint); err != nil {
		return fmt.Errorf("upload.endpoint: %w", err)
	}
	if c.Upload.TimeoutSeconds < 0 {
		return errors.New("upload.timeout_seconds must be positive")
	}
	if c.Upload.Concurrency < 1 || c.Upload.Concurrency > maxUploadConcurrency {
		return fmt.Errorf("upload.concurrency must be between 1 and %d", maxUploadConcurrency)
	}
	if c.Upload.RequestsPerSecond < 0 {
		return errors.New("upload.requests_per_second must be zero (unlimited) or positive")
	}
	if c.Upload.TokenTTLSeconds < 1 || c.Upload.TokenTTLSeconds >= maxTokenTTLSeconds {
		return fmt.Errorf("upload.token_ttl_seconds must be between 1 and %d", maxTokenTTLSeconds-1)
	}
	return nil
}

func (c *Config) validateHistory() error {
	if c.History.Enabled && c.History.Path == "" {
		return errors.New("history.path must be set when history is enabled")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	return nil
}

func (c *Config) validatePresets() error {
	for name, value := range c.Presets {
		if name == "" {
			return errors.New("presets: empty preset name")
		}
		if value == "" {
			return fmt.Errorf("presets.%s: empty transformation", name)
		}
	}
	return nil
}

func validateAbsoluteURL(value string) error {
	parsed, err := url.Parse(value)
	if err != nil {
		return err
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("%q must use http or https", value)
	}
	if parsed.Host == "" {
		return fmt.Errorf("%q is missing a host", value)
	}
	return nil
}
