package streams

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/killallgit/r2get/internal/models"
	"github.com/killallgit/r2get/pkg/download"
	apperrors "github.com/killallgit/r2get/pkg/errors"
)

// DefaultQuickTestBytes is the prefix fetched in quick test mode.
const DefaultQuickTestBytes = 256 * 1024

// dumpExt is the extension of fetched stream dumps; the broadcaster serves AAC in MP4.
const dumpExt = ".m4a"

// Transferer is the transport primitive the fetcher drives
type Transferer interface {
	CreateTempFile(ext string) (*os.File, error)
	Transfer(ctx context.Context, url string, dst *os.File, offset, limit int64) (*download.TransferResult, error)
}

// Config configures a Fetcher
type Config struct {
	QuickTestBytes int64 // Default: 256 KiB
	Logger         *slog.Logger
}

// Fetcher downloads every stream of a show into owned temporary dumps
type Fetcher struct {
	transport      Transferer
	quickTestBytes int64
	logger         *slog.Logger
}

// New creates a fetcher on top of transport
func New(transport Transferer, cfg Config) *Fetcher {
	if cfg.QuickTestBytes <= 0 {
		cfg.QuickTestBytes = DefaultQuickTestBytes
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Fetcher{
		transport:      transport,
		quickTestBytes: cfg.QuickTestBytes,
		logger:         cfg.Logger.With("component", "streams"),
	}
}

// Fetch returns one dump per URL in input order.
//
// Each URL gets up to retries attempts. After the first partial transfer the
// fetcher resumes from the bytes already on disk; any other failure, or a
// partial failure on the last attempt, releases every dump created so far
// and aborts. In quick test mode only a short prefix is fetched, once, and
// failures are logged instead of returned.
func (f *Fetcher) Fetch(ctx context.Context, urls []string, retries int, quickTest bool) ([]*models.AudioDump, error) {
	if retries < 1 {
		return nil, apperrors.InvalidInput("retries", fmt.Sprintf("must be at least 1, got %d", retries))
	}

	dumps := make([]*models.AudioDump, 0, len(urls))
	for i, url := range urls {
		dump, err := f.fetchOne(ctx, url, retries, quickTest)
		if dump != nil {
			dumps = append(dumps, dump)
		}
		if err != nil {
			if releaseErr := models.ReleaseAll(dumps); releaseErr != nil {
				f.logger.Warn("failed to remove partial dumps", "error", releaseErr)
			}
			return nil, err
		}
		f.logger.Info("stream fetched",
			"track", i+1,
			"of", len(urls),
			"bytes", dump.Bytes,
			"resumes", dump.Resumes)
	}
	return dumps, nil
}

func (f *Fetcher) fetchOne(ctx context.Context, url string, retries int, quickTest bool) (*models.AudioDump, error) {
	file, err := f.transport.CreateTempFile(dumpExt)
	if err != nil {
		return nil, apperrors.TransferError(url, fmt.Errorf("creating dump file: %w", err))
	}
	defer file.Close()

	dump := models.NewOwnedDump(file.Name(), url)

	if quickTest {
		result, err := f.transport.Transfer(ctx, url, file, 0, f.quickTestBytes)
		if err != nil {
			f.logger.Warn("quick test transfer failed", "url", url, "error", err)
			return dump, nil
		}
		dump.Bytes = result.Size
		return dump, nil
	}

	var (
		offset  int64
		resumed bool
		lastErr error
	)
	for attempt := 1; attempt <= retries; attempt++ {
		if resumed {
			dump.Resumes++
			f.logger.Debug("resuming transfer", "url", url, "attempt", attempt, "offset", offset)
		}

		result, err := f.transport.Transfer(ctx, url, file, offset, 0)
		if err == nil {
			dump.Bytes = result.Size
			return dump, nil
		}
		lastErr = err

		if !download.IsPartial(err) {
			return dump, apperrors.TransferError(url, err).WithDetail("attempt", attempt)
		}
		var te *download.TransferError
		errors.As(err, &te)

		f.logger.Warn("transfer interrupted", "url", url, "attempt", attempt, "of", retries, "offset", te.Offset)
		offset = te.Offset
		resumed = true
	}

	return dump, apperrors.TransferError(url, fmt.Errorf("giving up after %d attempts: %w", retries, lastErr)).
		WithDetail("attempts", retries)
}
