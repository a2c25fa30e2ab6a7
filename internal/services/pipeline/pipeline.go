package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/google/uuid"

	"github.com/killallgit/r2get/internal/models"
	"github.com/killallgit/r2get/internal/services/packager"
	apperrors "github.com/killallgit/r2get/pkg/errors"
)

// Request is one invocation of the downloader
type Request struct {
	Query     models.ShowQuery
	LocalFile string // when set, used instead of fetching the streams
	Outputs   models.OutputSpec
	Retries   int
	QuickTest bool
}

// FormatFailure records an output that could not be produced
type FormatFailure struct {
	Track  int
	Format models.FormatTag
	Err    error
}

func (f FormatFailure) Error() string {
	return fmt.Sprintf("track %d %s: %v", f.Track, f.Format, f.Err)
}

func (f FormatFailure) Unwrap() error {
	return f.Err
}

// Result summarises a run
type Result struct {
	RunID    string
	Show     *models.ShowAttributes
	Files    []*models.TaggedFile
	Failures []FormatFailure
	Warnings []error
}

// Deps are the components a pipeline composes
type Deps struct {
	Resolver  Resolver
	Fetcher   Fetcher
	Cover     CoverSource
	Packager  Packager
	Validator AudioValidator // optional
}

// Pipeline runs resolve, fetch and package strictly in sequence
type Pipeline struct {
	deps   Deps
	logger *slog.Logger
}

// New creates a pipeline
func New(deps Deps, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{deps: deps, logger: logger}
}

// Run executes one download. Resolution and transfer failures abort the run.
// Packaging failures are collected per output and returned together once
// every format of every track was attempted; files already written stay.
func (p *Pipeline) Run(ctx context.Context, req Request) (*Result, error) {
	result := &Result{RunID: uuid.NewString()}
	logger := p.logger.With("run_id", result.RunID)

	formats := req.Outputs.Formats()
	if len(formats) == 0 {
		return result, apperrors.InvalidInput("outputs", "no output format requested")
	}

	if req.LocalFile != "" {
		if err := p.checkLocalFile(ctx, req.LocalFile); err != nil {
			return result, err
		}
	}

	logger.Info("resolving show", "name", req.Query.Name, "date", req.Query.DateLabel(), "partial", req.Query.PartialMatch)
	show, err := p.deps.Resolver.Resolve(ctx, req.Query)
	if err != nil {
		return result, err
	}
	result.Show = show

	var dumps []*models.AudioDump
	if req.LocalFile != "" {
		logger.Info("using local file instead of streams", "path", req.LocalFile)
		dumps = []*models.AudioDump{models.NewExternalDump(req.LocalFile)}
	} else {
		logger.Info("fetching streams", "count", len(show.StreamURLs), "retries", req.Retries, "quick_test", req.QuickTest)
		dumps, err = p.deps.Fetcher.Fetch(ctx, show.StreamURLs, req.Retries, req.QuickTest)
		if err != nil {
			return result, err
		}
	}
	defer func() {
		// no-op for dumps already released after their last format
		if err := models.ReleaseAll(dumps); err != nil {
			logger.Warn("failed to remove temporary dumps", "error", err)
		}
	}()

	cover := p.fetchCover(ctx, show, result, logger)

	total := len(dumps)
	for i, dump := range dumps {
		track := i + 1
		for _, format := range formats {
			if err := ctx.Err(); err != nil {
				return result, err
			}

			file, err := p.deps.Packager.Package(ctx, dump, packager.Request{
				FullName: show.FullName,
				Date:     show.Date,
				Track:    track,
				Total:    total,
				Format:   format,
				Dir:      req.Outputs[format],
				Cover:    cover,
			})
			if err != nil {
				logger.Error("packaging failed", "track", track, "format", string(format), "error", err)
				result.Failures = append(result.Failures, FormatFailure{Track: track, Format: format, Err: err})
				continue
			}
			result.Files = append(result.Files, file)
		}

		if err := dump.Release(); err != nil {
			logger.Warn("failed to remove dump", "path", dump.Path(), "error", err)
		}
	}

	logger.Info("run finished", "files", len(result.Files), "failures", len(result.Failures))

	if len(result.Failures) > 0 {
		errs := make([]error, 0, len(result.Failures))
		for _, f := range result.Failures {
			errs = append(errs, f)
		}
		return result, fmt.Errorf("%d of %d outputs failed: %w",
			len(result.Failures), total*len(formats), errors.Join(errs...))
	}
	return result, nil
}

// fetchCover downloads the cover once; any problem only degrades the tags
func (p *Pipeline) fetchCover(ctx context.Context, show *models.ShowAttributes, result *Result, logger *slog.Logger) []byte {
	if p.deps.Cover == nil {
		return nil
	}
	cover, err := p.deps.Cover.Fetch(ctx, show.ImageURL)
	if err != nil {
		logger.Warn("continuing without cover art", "error", err)
		result.Warnings = append(result.Warnings, err)
		return nil
	}
	return cover
}

func (p *Pipeline) checkLocalFile(ctx context.Context, path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return apperrors.InvalidInput("local file", err.Error())
	}
	if info.IsDir() {
		return apperrors.InvalidInput("local file", path+" is a directory")
	}
	if p.deps.Validator != nil {
		if err := p.deps.Validator.ValidateAudioFile(ctx, path); err != nil {
			return apperrors.InvalidInput("local file", "not a usable audio file").WithCause(err)
		}
	}
	return nil
}
