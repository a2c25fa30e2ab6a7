package packager

import (
	"context"
	"fmt"
	"log/slog"
	"mime"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"

	apperrors "github.com/killallgit/r2get/pkg/errors"
)

const coverAsset = "cover art"

// CoverFetcher downloads the episode image once per run
type CoverFetcher struct {
	client *resty.Client
	logger *slog.Logger
}

// NewCoverFetcher creates a cover fetcher
func NewCoverFetcher(timeout time.Duration, userAgent string, logger *slog.Logger) *CoverFetcher {
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	client := resty.New().SetTimeout(timeout)
	if userAgent != "" {
		client.SetHeader("User-Agent", userAgent)
	}
	return &CoverFetcher{client: client, logger: logger}
}

// Fetch returns the JPEG bytes at url. Every problem is reported as an
// *errors.AssetWarning; callers carry on without art.
func (c *CoverFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	if url == "" {
		return nil, &apperrors.AssetWarning{Asset: coverAsset, Reason: "episode has no image"}
	}

	resp, err := c.client.R().
		SetContext(ctx).
		SetHeader("Accept", "image/jpeg").
		Get(url)
	if err != nil {
		return nil, &apperrors.AssetWarning{Asset: coverAsset, URL: url, Reason: err.Error()}
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, &apperrors.AssetWarning{Asset: coverAsset, URL: url, Reason: fmt.Sprintf("HTTP %d", resp.StatusCode())}
	}

	contentType := resp.Header().Get("Content-Type")
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil || mediaType != "image/jpeg" {
		return nil, &apperrors.AssetWarning{Asset: coverAsset, URL: url, Reason: fmt.Sprintf("content type %q", contentType)}
	}

	body := resp.Body()
	if len(body) == 0 {
		return nil, &apperrors.AssetWarning{Asset: coverAsset, URL: url, Reason: "empty body"}
	}

	c.logger.Debug("fetched cover art", "url", url, "bytes", len(body))
	return body, nil
}
