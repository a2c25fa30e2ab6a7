package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/killallgit/r2get/internal/models"
	"github.com/killallgit/r2get/internal/services/errapi"
	"github.com/killallgit/r2get/internal/services/packager"
	"github.com/killallgit/r2get/internal/services/pipeline"
	"github.com/killallgit/r2get/internal/services/resolver"
	"github.com/killallgit/r2get/internal/services/streams"
	"github.com/killallgit/r2get/pkg/config"
	"github.com/killallgit/r2get/pkg/download"
	apperrors "github.com/killallgit/r2get/pkg/errors"
	"github.com/killallgit/r2get/pkg/ffmpeg"
)

func newGetCmd() *cobra.Command {
	getCmd := &cobra.Command{
		Use:   "get SHOW",
		Short: "Download a show and package it",
		Long: `Resolve SHOW in the R2 program catalog, download its streams and write
one tagged file per stream and requested format.

Without --date the most recent broadcast is fetched. Dates may be given as
YYYY-MM-DD, MM-DD or DD; missing parts are taken from today.`,
		Example: `  r2get get Huvitaja
  r2get get -d 2015-02-12 --mp3-dir ~/music Huvitaja
  r2get get -p -d 12 huvi`,
		Args: cobra.ExactArgs(1),
		RunE: runGet,
	}

	getCmd.Flags().StringP("date", "d", "", "desired show air date, e.g. \"15\", \"2015-02-12\"")
	getCmd.Flags().StringP("skip", "s", "", "skip download, use the given file as audio input")
	getCmd.Flags().BoolP("quick-test", "q", false, "quick sanity test of the pipeline, download the first bytes only")
	getCmd.Flags().BoolP("partial-name", "p", false, "allow partial match for the show name")
	getCmd.Flags().IntP("retry", "r", 0, "attempts per stream on incomplete transfers (default from config, 5)")
	getCmd.Flags().StringP("mp4-dir", "D", "", "m4a (unmodified stream) output directory (default \".\")")
	getCmd.Flags().String("mp3-dir", "", "mp3 output directory")
	getCmd.Flags().String("ogg-dir", "", "ogg output directory")
	return getCmd
}

func runGet(cmd *cobra.Command, args []string) error {
	if _, err := loadConfig(cmd); err != nil {
		return err
	}
	applyFlagOverrides(cmd)
	cfg, err := config.GetConfig()
	if err != nil {
		return err
	}

	logger, err := newLogger(cmd, cfg)
	if err != nil {
		return apperrors.InvalidInput("logging flags", err.Error())
	}

	req, err := buildRequest(cmd, args[0], cfg)
	if err != nil {
		return err
	}
	if err := validateOutputDirs(req.Outputs, logger); err != nil {
		return err
	}

	tool := ffmpeg.New(cfg.Processing.FFmpegPath, cfg.Processing.FFprobePath, cfg.Processing.FFmpegTimeout)
	if err := tool.ValidateBinaries(); err != nil {
		return apperrors.ExternalToolError("ffmpeg", err)
	}
	if err := download.SweepStale(cfg.Download.TempDir, cfg.Download.MaxTempAge, logger); err != nil {
		logger.Warn("could not sweep stale temporary files", "dir", cfg.Download.TempDir, "error", err)
	}

	ctx, cancel := signal.NotifyContext(commandContext(cmd), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	result, err := newPipeline(cfg, tool, logger).Run(ctx, req)
	if result != nil {
		for _, file := range result.Files {
			fmt.Fprintln(cmd.OutOrStdout(), file.Path)
		}
	}
	return err
}

// applyFlagOverrides copies explicitly set flags into the config
func applyFlagOverrides(cmd *cobra.Command) {
	overrides := map[string]string{
		"retry":   "download.retries",
		"mp4-dir": "output.mp4_dir",
		"mp3-dir": "output.mp3_dir",
		"ogg-dir": "output.ogg_dir",
	}
	for flag, key := range overrides {
		if !cmd.Flags().Changed(flag) {
			continue
		}
		if flag == "retry" {
			v, _ := cmd.Flags().GetInt(flag)
			config.Set(key, v)
			continue
		}
		v, _ := cmd.Flags().GetString(flag)
		config.Set(key, v)
	}
}

func buildRequest(cmd *cobra.Command, name string, cfg *config.Config) (pipeline.Request, error) {
	if cfg.Download.Retries < 1 {
		return pipeline.Request{}, apperrors.InvalidInput("retry", "must be at least 1")
	}

	var date *models.Date
	if value, _ := cmd.Flags().GetString("date"); value != "" {
		d, err := models.ParseDate(value, time.Now(), cfg.Location())
		if err != nil {
			return pipeline.Request{}, apperrors.InvalidInput("date", err.Error())
		}
		date = &d
	}

	partial, _ := cmd.Flags().GetBool("partial-name")
	query, err := models.NewShowQuery(name, date, partial)
	if err != nil {
		return pipeline.Request{}, apperrors.InvalidInput("show", err.Error())
	}

	skip, _ := cmd.Flags().GetString("skip")
	quick, _ := cmd.Flags().GetBool("quick-test")
	return pipeline.Request{
		Query:     query,
		LocalFile: skip,
		Outputs:   gatherOutputs(cfg.Output),
		Retries:   cfg.Download.Retries,
		QuickTest: quick,
	}, nil
}

// gatherOutputs maps every format with a non-empty directory
func gatherOutputs(out config.OutputConfig) models.OutputSpec {
	spec := models.OutputSpec{}
	dirs := map[models.FormatTag]string{
		models.FormatMP4: out.MP4Dir,
		models.FormatMP3: out.MP3Dir,
		models.FormatOgg: out.OggDir,
	}
	for format, dir := range dirs {
		if dir != "" {
			spec[format] = dir
		}
	}
	return spec
}

// validateOutputDirs checks every directory exists and accepts new files
func validateOutputDirs(outputs models.OutputSpec, logger *slog.Logger) error {
	if len(outputs) == 0 {
		return apperrors.InvalidInput("outputs", "no output directory given")
	}
	for _, format := range outputs.Formats() {
		dir := outputs[format]
		info, err := os.Stat(dir)
		if err != nil {
			return apperrors.InvalidInput(string(format)+" output directory", dir+" does not exist")
		}
		if !info.IsDir() {
			return apperrors.InvalidInput(string(format)+" output directory", dir+" is not a directory")
		}
		check, err := os.CreateTemp(dir, ".r2get-writable-*")
		if err != nil {
			return apperrors.InvalidInput(string(format)+" output directory", dir+" isn't writable")
		}
		if err := check.Close(); err != nil {
			logger.Warn("closing write check file", "path", check.Name(), "error", err)
		}
		if err := os.Remove(check.Name()); err != nil {
			logger.Warn("removing write check file", "path", check.Name(), "error", err)
		}
	}
	return nil
}

func newPipeline(cfg *config.Config, tool *ffmpeg.FFmpeg, logger *slog.Logger) *pipeline.Pipeline {
	client := errapi.NewClient(errapi.Config{
		BaseURL:   cfg.API.BaseURL,
		Channel:   cfg.API.Channel,
		Timeout:   cfg.API.Timeout,
		UserAgent: cfg.API.UserAgent,
		RateLimit: cfg.API.RateLimit,
		Logger:    logger,
	})
	transport := download.NewDownloader(download.DownloadOptions{
		TempDir:       cfg.Download.TempDir,
		Timeout:       cfg.Download.Timeout,
		UserAgent:     cfg.Download.UserAgent,
		ValidateAudio: true,
		ProgressFunc:  progressLogger(logger),
		Logger:        logger,
	})

	return pipeline.New(pipeline.Deps{
		Resolver: resolver.New(client, resolver.Config{
			Location:       cfg.Location(),
			PreferredWidth: cfg.API.PreferredImageWidth,
			Logger:         logger,
		}),
		Fetcher: streams.New(transport, streams.Config{
			QuickTestBytes: cfg.Download.QuickTestBytes,
			Logger:         logger,
		}),
		Cover: packager.NewCoverFetcher(cfg.API.Timeout, cfg.API.UserAgent, logger),
		Packager: packager.New(tool, packager.Config{
			Station: cfg.Station.Name,
			TempDir: cfg.Download.TempDir,
			Logger:  logger,
		}),
		Validator: tool,
	}, logger)
}

// progressLogger reports transfer progress at debug level every 10 MiB
func progressLogger(logger *slog.Logger) download.ProgressFunc {
	const step = 10 << 20
	var next int64 = step
	return func(downloaded, total int64) {
		if downloaded < next {
			if downloaded < next-step {
				next = step // a new transfer started
			}
			return
		}
		next = downloaded - downloaded%step + step
		logger.Debug("transfer progress", "bytes", downloaded, "total", total)
	}
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
