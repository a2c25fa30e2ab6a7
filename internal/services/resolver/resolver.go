package resolver

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/killallgit/r2get/internal/models"
	apperrors "github.com/killallgit/r2get/pkg/errors"
)

// Config configures a Resolver
type Config struct {
	Location       *time.Location   // zone broadcast dates are expressed in, Default: UTC
	PreferredWidth int              // Default: 1000
	Now            func() time.Time // Default: time.Now
	Logger         *slog.Logger
}

// Resolver turns a show query into a fully resolved broadcast
type Resolver struct {
	source         MetadataSource
	loc            *time.Location
	preferredWidth int
	now            func() time.Time
	logger         *slog.Logger
}

// New creates a resolver reading from source
func New(source MetadataSource, cfg Config) *Resolver {
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if cfg.PreferredWidth <= 0 {
		cfg.PreferredWidth = DefaultPreferredWidth
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Resolver{
		source:         source,
		loc:            cfg.Location,
		preferredWidth: cfg.PreferredWidth,
		now:            cfg.Now,
		logger:         cfg.Logger.With("component", "resolver"),
	}
}

// Resolve runs catalog, schedule and detail lookups in sequence.
// Transport failures are returned as they are; only missing shows,
// missing episodes and unusable payloads become resolution errors.
func (r *Resolver) Resolve(ctx context.Context, query models.ShowQuery) (*models.ShowAttributes, error) {
	catalog, err := r.source.Catalog(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading series catalog: %w", err)
	}

	series, ok := MatchSeries(catalog, query.Name, query.PartialMatch)
	if !ok {
		return nil, apperrors.NotFound("series", query.Name).
			WithDetail("partial_match", query.PartialMatch).
			WithDetail("catalog_size", len(catalog))
	}
	r.logger.Debug("matched series", "query", query.Name, "series_id", series.ID, "name", series.DisplayName)

	episodes, err := r.source.Schedule(ctx, series.ID)
	if err != nil {
		return nil, fmt.Errorf("loading schedule of %q: %w", series.DisplayName, err)
	}

	var (
		episode models.EpisodeRecord
		found   bool
	)
	if query.Date == nil {
		episode, found = MostRecentEpisode(episodes, r.now())
	} else {
		episode, found = EpisodeOnDate(episodes, *query.Date, r.loc)
	}
	if !found {
		return nil, apperrors.NotFound("episode", fmt.Sprintf("%s (%s)", series.DisplayName, query.DateLabel())).
			WithDetail("series_id", series.ID).
			WithDetail("date", query.DateLabel()).
			WithDetail("episodes", len(episodes))
	}
	r.logger.Debug("selected episode", "episode_id", episode.ID, "start", episode.ScheduledStart.In(r.loc))

	detail, err := r.source.EpisodeDetail(ctx, episode.ID)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrCodeMalformedPayload) {
			return nil, apperrors.Wrap(err, apperrors.ErrCodeMalformedPayload,
				fmt.Sprintf("episode %s of %q (%s) is unusable", episode.ID, series.DisplayName, query.DateLabel()))
		}
		return nil, fmt.Errorf("loading episode %s: %w", episode.ID, err)
	}

	attrs := &models.ShowAttributes{
		FullName:   detail.Name,
		Date:       models.DateOf(detail.Start.In(r.loc)),
		StreamURLs: UniqueURLs(detail.MediaURLs),
		ImageURL:   BestImage(detail.Images, r.preferredWidth),
	}
	if len(attrs.StreamURLs) == 0 {
		return nil, apperrors.MalformedPayload("detail", "no media sources").WithDetail("episode_id", episode.ID)
	}

	r.logger.Info("resolved show",
		"name", attrs.FullName,
		"date", attrs.Date.String(),
		"streams", len(attrs.StreamURLs),
		"has_image", attrs.HasImage())

	return attrs, nil
}
