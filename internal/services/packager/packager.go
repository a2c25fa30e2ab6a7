package packager

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/killallgit/r2get/internal/models"
	apperrors "github.com/killallgit/r2get/pkg/errors"
	"github.com/killallgit/r2get/pkg/ffmpeg"
)

// DefaultStation is written as artist and album
const DefaultStation = "R2"

// Transcoder is the subset of pkg/ffmpeg the packager drives
type Transcoder interface {
	Transcode(ctx context.Context, input, output string, profile ffmpeg.Profile) error
	MetadataApplier
	Prober
}

// profiles maps each output format to its encoder settings
var profiles = map[models.FormatTag]ffmpeg.Profile{
	models.FormatMP4: ffmpeg.ProfileCopy,
	models.FormatMP3: ffmpeg.ProfileMP3,
	models.FormatOgg: ffmpeg.ProfileVorbis,
}

// Config configures a Packager
type Config struct {
	Station string // Default: R2
	TempDir string // scratch space for tag files, Default: os.TempDir()
	Logger  *slog.Logger
}

// Request describes one output file
type Request struct {
	FullName string
	Date     models.Date
	Track    int // 1-based
	Total    int
	Format   models.FormatTag
	Dir      string
	Cover    []byte
}

// Packager turns an audio dump into a tagged file of one format
type Packager struct {
	transcoder Transcoder
	writers    map[models.FormatTag]TagWriter
	station    string
	logger     *slog.Logger
}

// New creates a packager
func New(transcoder Transcoder, cfg Config) *Packager {
	if cfg.Station == "" {
		cfg.Station = DefaultStation
	}
	if cfg.TempDir == "" {
		cfg.TempDir = os.TempDir()
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Packager{
		transcoder: transcoder,
		writers:    defaultTagWriters(transcoder, cfg.TempDir),
		station:    cfg.Station,
		logger:     cfg.Logger.With("component", "packager"),
	}
}

// Package transcodes dump into req.Dir and tags the result. A failure
// concerns this format only; the caller decides whether to go on.
func (p *Packager) Package(ctx context.Context, dump *models.AudioDump, req Request) (*models.TaggedFile, error) {
	profile, ok := profiles[req.Format]
	if !ok {
		return nil, apperrors.InvalidInput("format", fmt.Sprintf("unsupported output format %q", req.Format))
	}
	writer := p.writers[req.Format]

	out := filepath.Join(req.Dir, FileName(req.FullName, req.Track, req.Format))
	logger := p.logger.With("format", string(req.Format), "track", req.Track, "path", out)

	logger.Debug("transcoding", "source", dump.Path(), "profile", profile.Name)
	if err := p.transcoder.Transcode(ctx, dump.Path(), out, profile); err != nil {
		return nil, apperrors.ExternalToolError("ffmpeg", err).
			WithDetail("format", string(req.Format)).
			WithDetail("path", out)
	}

	tags := Tags{
		Title:  Title(req.FullName, req.Date, req.Track, req.Total),
		Artist: p.station,
		Cover:  req.Cover,
	}
	if req.Format != models.FormatOgg {
		tags.Album = p.station
	}

	if err := writer.WriteTags(ctx, out, tags); err != nil {
		return nil, apperrors.ExternalToolError(string(req.Format)+" tag writer", err).
			WithDetail("format", string(req.Format)).
			WithDetail("path", out)
	}

	embedded, err := ReadEmbedded(ctx, out, req.Format, p.transcoder)
	if err != nil {
		return nil, apperrors.ExternalToolError("tag reader", err).
			WithDetail("format", string(req.Format)).
			WithDetail("path", out)
	}

	logger.Info("packaged", "title", embedded.Title, "duration", embedded.Duration, "cover_bytes", len(embedded.Cover))

	return &models.TaggedFile{
		Path:     out,
		Format:   req.Format,
		Track:    req.Track,
		Title:    embedded.Title,
		Artist:   embedded.Artist,
		Album:    embedded.Album,
		Cover:    embedded.Cover,
		Duration: embedded.Duration,
	}, nil
}
