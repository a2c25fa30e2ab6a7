package config

import "time"

// Config represents the complete application configuration
type Config struct {
	API        APIConfig        `mapstructure:"api"`
	Download   DownloadConfig   `mapstructure:"download"`
	Processing ProcessingConfig `mapstructure:"processing"`
	Output     OutputConfig     `mapstructure:"output"`
	Station    StationConfig    `mapstructure:"station"`
	Logging    LoggingConfig    `mapstructure:"logging"`
}

// APIConfig contains broadcaster metadata API settings
type APIConfig struct {
	BaseURL             string        `mapstructure:"base_url"`
	Channel             string        `mapstructure:"channel"`
	Timeout             time.Duration `mapstructure:"timeout"`
	UserAgent           string        `mapstructure:"user_agent"`
	RateLimit           float64       `mapstructure:"rate_limit"` // requests per second
	Timezone            string        `mapstructure:"timezone"`
	PreferredImageWidth int           `mapstructure:"preferred_image_width"`
}

// DownloadConfig contains stream retrieval settings
type DownloadConfig struct {
	TempDir        string        `mapstructure:"temp_dir"`
	Retries        int           `mapstructure:"retries"`
	Timeout        time.Duration `mapstructure:"timeout"`
	QuickTestBytes int64         `mapstructure:"quick_test_bytes"`
	MaxTempAge     time.Duration `mapstructure:"max_temp_age"`
	UserAgent      string        `mapstructure:"user_agent"`
}

// ProcessingConfig contains transcoder settings
type ProcessingConfig struct {
	FFmpegPath    string        `mapstructure:"ffmpeg_path"`
	FFprobePath   string        `mapstructure:"ffprobe_path"`
	FFmpegTimeout time.Duration `mapstructure:"ffmpeg_timeout"`
}

// OutputConfig contains the default output directory per format
type OutputConfig struct {
	MP4Dir string `mapstructure:"mp4_dir"`
	MP3Dir string `mapstructure:"mp3_dir"`
	OggDir string `mapstructure:"ogg_dir"`
}

// StationConfig contains the fixed tag values written into every file
type StationConfig struct {
	Name string `mapstructure:"name"`
}

// LoggingConfig contains logging settings
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}
