package resolver

import (
	"context"

	"github.com/killallgit/r2get/internal/models"
)

// MetadataSource is the broadcaster API as seen by the resolver
type MetadataSource interface {
	Catalog(ctx context.Context) ([]models.SeriesRecord, error)
	Schedule(ctx context.Context, seriesID string) ([]models.EpisodeRecord, error)
	EpisodeDetail(ctx context.Context, episodeID string) (*models.EpisodeDetail, error)
}
