package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/spf13/viper"

	apperrors "github.com/killallgit/r2get/pkg/errors"
)

// EnvPrefix is the prefix of environment variable overrides, e.g. R2GET_API_BASE_URL.
const EnvPrefix = "R2GET"

// DefaultBaseURL is the program catalog API used when none is configured.
const DefaultBaseURL = "https://services.err.ee/api/v2/r2get"

// DefaultConfigPath is read when no --config flag is given.
var DefaultConfigPath = filepath.Join("config", "settings.yaml")

var (
	once    sync.Once
	initErr error
)

// Init initializes the configuration system
// This should be called once at application startup
func Init(configPath string) error {
	once.Do(func() {
		initErr = Load(configPath)
	})
	return initErr
}

// Load reads defaults, the optional config file and the environment into viper.
// An explicitly given file must exist; the default file is optional.
func Load(configPath string) error {
	setDefaults()

	viper.SetEnvPrefix(EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	explicit := configPath != ""
	if !explicit {
		configPath = DefaultConfigPath
	}
	viper.SetConfigFile(filepath.Clean(configPath))

	if err := viper.ReadInConfig(); err != nil {
		var pathErr *os.PathError
		missing := errors.As(err, &pathErr) || os.IsNotExist(err)
		if explicit || !missing {
			return fmt.Errorf("error reading config file %s: %w", configPath, err)
		}
		// Config file doesn't exist, which is fine - we'll use defaults
	}

	if err := validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// Reset clears all configuration state (for testing)
func Reset() {
	viper.Reset()
	once = sync.Once{}
	initErr = nil
}

// GetConfig returns the current configuration as a struct
// Init() must be called before using this
func GetConfig() (*Config, error) {
	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	return &config, nil
}

// Set overrides a config value, used to apply command line flags
func Set(key string, value any) {
	viper.Set(key, value)
}

// validate checks the loaded values and writes corrections back into viper
func validate() error {
	cfg, err := GetConfig()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	viper.Set("api.rate_limit", cfg.API.RateLimit)
	return nil
}

// Validate rejects unusable values and auto-corrects an invalid rate limit
func (c *Config) Validate() error {
	if c.Download.Retries < 1 {
		return apperrors.ConfigError("download.retries", "must be at least 1")
	}
	if c.Download.QuickTestBytes <= 0 {
		return apperrors.ConfigError("download.quick_test_bytes", "must be positive")
	}
	if c.API.PreferredImageWidth <= 0 {
		return apperrors.ConfigError("api.preferred_image_width", "must be positive")
	}
	if _, err := time.LoadLocation(c.API.Timezone); err != nil {
		return apperrors.ConfigError("api.timezone", err.Error())
	}
	if strings.TrimSpace(c.API.BaseURL) == "" {
		return apperrors.ConfigError("api.base_url", "must not be empty")
	}
	if c.API.RateLimit <= 0 {
		c.API.RateLimit = 5
	}
	return nil
}

// Location returns the time zone broadcast dates are expressed in
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.API.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// setDefaults sets default configuration values
func setDefaults() {
	// Metadata API defaults
	viper.SetDefault("api.base_url", DefaultBaseURL)
	viper.SetDefault("api.channel", "raadio2")
	viper.SetDefault("api.timeout", 15*time.Second)
	viper.SetDefault("api.user_agent", "r2get/1.0")
	viper.SetDefault("api.rate_limit", 5)
	viper.SetDefault("api.timezone", "Europe/Tallinn")
	viper.SetDefault("api.preferred_image_width", 1000)

	// Download defaults
	viper.SetDefault("download.temp_dir", os.TempDir())
	viper.SetDefault("download.retries", 5)
	viper.SetDefault("download.timeout", 0) // streams can be long, rely on context cancellation
	viper.SetDefault("download.quick_test_bytes", 256*1024)
	viper.SetDefault("download.max_temp_age", 24*time.Hour)
	viper.SetDefault("download.user_agent", "r2get/1.0")

	// Processing defaults
	viper.SetDefault("processing.ffmpeg_path", "ffmpeg")
	viper.SetDefault("processing.ffprobe_path", "ffprobe")
	viper.SetDefault("processing.ffmpeg_timeout", 30*time.Minute)

	// Output defaults
	viper.SetDefault("output.mp4_dir", ".")
	viper.SetDefault("output.mp3_dir", "")
	viper.SetDefault("output.ogg_dir", "")

	// Station defaults
	viper.SetDefault("station.name", "R2")

	// Logging defaults
	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "text")
}
