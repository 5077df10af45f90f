package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	c.normalizeImageKit()
	c.normalizeUpload()
	if err := c.normalizeHistory(); err != nil {
		return err
	}
	if err := c.normalizeLogging(); err != nil {
		return err
	}
	c.normalizePresets()
	return nil
}

func (c *Config) normalizeImageKit() {
	c.ImageKit.URLEndpoint = envFallback(c.ImageKit.URLEndpoint, envURLEndpoint)
	c.ImageKit.PublicKey = envFallback(c.ImageKit.PublicKey, envPublicKey)
	c.ImageKit.PrivateKey = envFallback(c.ImageKit.PrivateKey, envPrivateKey)
	c.ImageKit.TransformationPosition = strings.ToLower(strings.TrimSpace(c.ImageKit.TransformationPosition))
	if c.ImageKit.TransformationPosition == "" {
		c.ImageKit.TransformationPosition = defaultTransformationPosition
	}
}

func (c *Config) normalizeUpload() {
	c.Upload.Endpoint = strings.TrimSpace(c.Upload.Endpoint)
	if c.Upload.Endpoint == "" {
		c.Upload.Endpoint = defaultUploadEndpoint
	}
	if c.Upload.TimeoutSeconds == 0 {
		c.Upload.TimeoutSeconds = defaultUploadTimeoutSeconds
	}
	if c.Upload.Concurrency == 0 {
		c.Upload.Concurrency = defaultUploadConcurrency
	}
	if c.Upload.TokenTTLSeconds == 0 {
		c.Upload.TokenTTLSeconds = defaultTokenTTLSeconds
	}
	c.Upload.Folder = strings.TrimSpace(c.Upload.Folder)
	tags := c.Upload.Tags[:0]
	for _, tag := range c.Upload.Tags {
		if tag = strings.TrimSpace(tag); tag != "" {
			tags = append(tags, tag)
		}
	}
	c.Upload.Tags = tags
}

func (c *Config) normalizeHistory() error {
	if strings.TrimSpace(c.History.Path) == "" {
		c.History.Path = defaultHistoryPath
	}
	var err error
	if c.History.Path, err = expandPath(strings.TrimSpace(c.History.Path)); err != nil {
		return fmt.Errorf("history.path: %w", err)
	}
	return nil
}

func (c *Config) normalizeLogging() error {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	if strings.TrimSpace(c.Logging.File) != "" {
		var err error
		if c.Logging.File, err = expandPath(strings.TrimSpace(c.Logging.File)); err != nil {
			return fmt.Errorf("logging.file: %w", err)
		}
	}
	return nil
}

func (c *Config) normalizePresets() {
	if c.Presets == nil {
		c.Presets = map[string]string{}
		return
	}
	normalized := make(map[string]string, len(c.Presets))
	for name, value := range c.Presets {
		normalized[strings.TrimSpace(name)] = strings.TrimSpace(value)
	}
	c.Presets = normalized
}

func envFallback(value, key string) string {
	value = strings.TrimSpace(value)
	if value != "" {
		return value
	}
	if env, ok := os.LookupEnv(key); ok {
		return strings.TrimSpace(env)
	}
	return ""
}
