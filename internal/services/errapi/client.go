package errapi

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"golang.org/x/time/rate"

	"github.com/killallgit/r2get/internal/models"
	apperrors "github.com/killallgit/r2get/pkg/errors"
)

// Endpoint names used in errors and logs
const (
	EndpointCatalog  = "catalog"
	EndpointSchedule = "schedule"
	EndpointDetail   = "detail"
)

// APIError is returned when an endpoint answers with a non-200 status
type APIError struct {
	Endpoint   string
	StatusCode int
	URL        string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s endpoint returned HTTP %d (%s)", e.Endpoint, e.StatusCode, e.URL)
}

// Config holds configuration for the metadata client
type Config struct {
	BaseURL   string        // e.g. https://services.err.ee/api/v2/r2get
	Channel   string        // catalog filter, Default: raadio2
	Timeout   time.Duration // Default: 15s
	UserAgent string
	RateLimit float64 // requests per second, Default: 5
	Logger    *slog.Logger
}

// Client issues the three metadata lookups and translates the wire
// payloads into models. It never retries.
type Client struct {
	http        *resty.Client
	rateLimiter *rate.Limiter
	config      Config
	logger      *slog.Logger
}

// NewClient creates a new metadata API client
func NewClient(cfg Config) *Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = 15 * time.Second
	}
	if cfg.RateLimit <= 0 {
		cfg.RateLimit = 5
	}
	if cfg.Channel == "" {
		cfg.Channel = "raadio2"
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = "r2get/1.0"
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	client := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetTimeout(cfg.Timeout).
		SetHeader("User-Agent", cfg.UserAgent).
		SetHeader("Accept", "application/json")

	return &Client{
		http:        client,
		rateLimiter: rate.NewLimiter(rate.Limit(cfg.RateLimit), 1),
		config:      cfg,
		logger:      logger.With("component", "errapi"),
	}
}

// Catalog lists every series of the configured channel
func (c *Client) Catalog(ctx context.Context) ([]models.SeriesRecord, error) {
	var payload catalogResponse
	err := c.get(ctx, EndpointCatalog, "/series", nil, map[string]string{"channel": c.config.Channel}, &payload)
	if err != nil {
		return nil, err
	}

	records := make([]models.SeriesRecord, 0, len(payload.Data))
	for _, entry := range payload.Data {
		if entry.ID == "" || strings.TrimSpace(entry.Heading) == "" {
			c.logger.Debug("skipping incomplete catalog entry", "id", entry.ID)
			continue
		}
		records = append(records, models.SeriesRecord{
			ID:          string(entry.ID),
			DisplayName: strings.TrimSpace(entry.Heading),
		})
	}
	return records, nil
}

// Schedule lists the airings of one series in whatever order the API returns them
func (c *Client) Schedule(ctx context.Context, seriesID string) ([]models.EpisodeRecord, error) {
	var payload scheduleResponse
	err := c.get(ctx, EndpointSchedule, "/series/{id}/airtimes", map[string]string{"id": seriesID}, nil, &payload)
	if err != nil {
		return nil, err
	}

	records := make([]models.EpisodeRecord, 0, len(payload.Data))
	for _, entry := range payload.Data {
		if entry.ID == "" || entry.ScheduleStart <= 0 {
			c.logger.Debug("skipping incomplete airtime entry", "id", entry.ID)
			continue
		}
		records = append(records, models.EpisodeRecord{
			ID:             string(entry.ID),
			ScheduledStart: time.Unix(entry.ScheduleStart, 0).UTC(),
		})
	}
	return records, nil
}

// EpisodeDetail fetches the content payload of one airing.
// Missing name, start or media are reported as a malformed payload.
func (c *Client) EpisodeDetail(ctx context.Context, episodeID string) (*models.EpisodeDetail, error) {
	var payload contentResponse
	err := c.get(ctx, EndpointDetail, "/content/{id}", map[string]string{"id": episodeID}, nil, &payload)
	if err != nil {
		return nil, err
	}

	content := payload.Data.MainContent
	if content == nil {
		return nil, c.malformed(episodeID, "missing mainContent")
	}
	if strings.TrimSpace(content.Heading) == "" {
		return nil, c.malformed(episodeID, "missing heading")
	}
	if content.ScheduleStart <= 0 {
		return nil, c.malformed(episodeID, "missing scheduleStart")
	}

	detail := &models.EpisodeDetail{
		ID:    episodeID,
		Name:  strings.TrimSpace(content.Heading),
		Start: time.Unix(content.ScheduleStart, 0).UTC(),
	}
	for _, m := range content.Medias {
		if file := strings.TrimSpace(m.Src.File); file != "" {
			detail.MediaURLs = append(detail.MediaURLs, normalizeURL(file))
		}
	}
	if len(detail.MediaURLs) == 0 {
		return nil, c.malformed(episodeID, "no media sources")
	}
	for _, p := range content.Photos {
		for _, t := range p.Types {
			if t.URL == "" || t.W <= 0 {
				continue
			}
			detail.Images = append(detail.Images, models.ImageCandidate{Width: t.W, URL: normalizeURL(t.URL)})
		}
	}

	return detail, nil
}

// get performs one rate limited GET and decodes the JSON body into out
func (c *Client) get(ctx context.Context, endpoint, path string, pathParams, query map[string]string, out any) error {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return fmt.Errorf("%s request: %w", endpoint, err)
	}

	req := c.http.R().SetContext(ctx)
	if pathParams != nil {
		req.SetPathParams(pathParams)
	}
	if query != nil {
		req.SetQueryParams(query)
	}

	start := time.Now()
	resp, err := req.Get(path)
	if err != nil {
		return fmt.Errorf("%s request: %w", endpoint, err)
	}
	c.logger.Debug("metadata request",
		"endpoint", endpoint,
		"url", resp.Request.URL,
		"status", resp.StatusCode(),
		"elapsed", time.Since(start))

	if resp.StatusCode() != http.StatusOK {
		return &APIError{Endpoint: endpoint, StatusCode: resp.StatusCode(), URL: resp.Request.URL}
	}

	if err := json.Unmarshal(resp.Body(), out); err != nil {
		return apperrors.MalformedPayload(endpoint, err.Error()).WithCause(err)
	}
	return nil
}

func (c *Client) malformed(episodeID, reason string) error {
	return apperrors.MalformedPayload(EndpointDetail, reason).WithDetail("episode_id", episodeID)
}

// normalizeURL turns protocol-relative links into https ones
func normalizeURL(u string) string {
	if strings.HasPrefix(u, "//") {
		return "https:" + u
	}
	return u
}
