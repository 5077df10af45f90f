package config

const (
	defaultConfigPath             = "~/.config/ikit/config.toml"
	projectConfigName             = "ikit.toml"
	defaultTransformationPosition = "query"
	defaultUploadEndpoint         = "https://upload.imagekit.io/api/v1/files/upload"
	defaultUploadTimeoutSeconds   = 120
	defaultUploadConcurrency      = 4
	defaultRequestsPerSecond      = 5
	defaultTokenTTLSeconds        = 1800
	defaultHistoryPath            = "~/.local/share/ikit/history.db"
	defaultLogFormat              = "console"
	defaultLogLevel               = "info"

	maxUploadConcurrency = 32
	// Signatures older than an hour are rejected by the upload API.
	maxTokenTTLSeconds = 3600

	envURLEndpoint = "IMAGEKIT_URL_ENDPOINT"
	envPublicKey   = "IMAGEKIT_PUBLIC_KEY"
	envPrivateKey  = "IMAGEKIT_PRIVATE_KEY"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		ImageKit: ImageKit{
			TransformationPosition: defaultTransformationPosition,
		},
		Upload: Upload{
			Endpoint:          defaultUploadEndpoint,
			TimeoutSeconds:    defaultUploadTimeoutSeconds,
			Concurrency:       defaultUploadConcurrency,
			RequestsPerSecond: defaultRequestsPerSecond,
			UseUniqueFileName: true,
			TokenTTLSeconds:   defaultTokenTTLSeconds,
		},
		History: History{
			Enabled: true,
			Path:    defaultHistoryPath,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
		Presets: map[string]string{},
	}
}
