package pipeline

import (
	"context"

	"github.com/killallgit/r2get/internal/models"
	"github.com/killallgit/r2get/internal/services/packager"
)

// Resolver turns a query into a resolved show
type Resolver interface {
	Resolve(ctx context.Context, query models.ShowQuery) (*models.ShowAttributes, error)
}

// Fetcher downloads stream URLs into owned dumps
type Fetcher interface {
	Fetch(ctx context.Context, urls []string, retries int, quickTest bool) ([]*models.AudioDump, error)
}

// CoverSource downloads cover art; errors are treated as warnings
type CoverSource interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// Packager produces one tagged file per call
type Packager interface {
	Package(ctx context.Context, dump *models.AudioDump, req packager.Request) (*models.TaggedFile, error)
}

// AudioValidator checks a caller supplied file before it is used
type AudioValidator interface {
	ValidateAudioFile(ctx context.Context, filePath string) error
}
