package ffmpeg

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"
)

// FFmpeg wraps ffmpeg and ffprobe functionality
type FFmpeg struct {
	ffmpegPath  string
	ffprobePath string
	timeout     time.Duration
}

// New creates a new FFmpeg instance
func New(ffmpegPath, ffprobePath string, timeout time.Duration) *FFmpeg {
	return &FFmpeg{
		ffmpegPath:  ffmpegPath,
		ffprobePath: ffprobePath,
		timeout:     timeout,
	}
}

// ValidateBinaries checks if ffmpeg and ffprobe are available
func (f *FFmpeg) ValidateBinaries() error {
	// Check ffmpeg
	if _, err := exec.LookPath(f.ffmpegPath); err != nil {
		return fmt.Errorf("%w: %s", ErrFFmpegNotFound, f.ffmpegPath)
	}

	// Check ffprobe
	if _, err := exec.LookPath(f.ffprobePath); err != nil {
		return fmt.Errorf("%w: %s", ErrFFprobeNotFound, f.ffprobePath)
	}

	return nil
}

// TranscodeArgs builds the ffmpeg command line for one conversion
func TranscodeArgs(input, output string, profile Profile) []string {
	args := []string{
		"-hide_banner",
		"-nostdin",
		"-y", // Overwrite output
		"-i", input,
		"-vn", // Drop any embedded artwork stream, tags add it back
		"-map_metadata", "-1",
	}
	args = append(args, profile.Args...)
	if profile.Muxer != "" {
		args = append(args, "-f", profile.Muxer)
	}
	return append(args, output)
}

// Transcode converts input into output using the given profile.
// A non-zero exit leaves no output file behind.
func (f *FFmpeg) Transcode(ctx context.Context, input, output string, profile Profile) error {
	if _, err := os.Stat(input); err != nil {
		return NewProcessingError("transcode", input, err, "")
	}

	if err := f.run(ctx, "transcode", input, TranscodeArgs(input, output, profile)); err != nil {
		_ = os.Remove(output)
		return err
	}
	return nil
}

// ApplyMetadata rewrites path with the global tags from an ffmetadata file.
// The audio stream is copied, so the operation is lossless.
func (f *FFmpeg) ApplyMetadata(ctx context.Context, path, metadataFile string) error {
	staging := filepath.Join(filepath.Dir(path), ".tagging-"+filepath.Base(path))
	args := []string{
		"-hide_banner",
		"-nostdin",
		"-y",
		"-i", path,
		"-f", "ffmetadata", "-i", metadataFile,
		"-map", "0:a",
		"-map_metadata", "1",
		"-map_metadata:s:a:0", "1:g", // ogg stores comments on the stream
		"-c", "copy",
		staging,
	}

	if err := f.run(ctx, "apply_metadata", path, args); err != nil {
		_ = os.Remove(staging)
		return err
	}
	if err := os.Rename(staging, path); err != nil {
		_ = os.Remove(staging)
		return NewProcessingError("apply_metadata", path, err, "")
	}
	return nil
}

// run executes ffmpeg with the instance timeout
func (f *FFmpeg) run(ctx context.Context, operation, file string, args []string) error {
	if f.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, f.ffmpegPath, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			err = fmt.Errorf("%w: %w", err, ctx.Err())
		}
		return NewProcessingError(operation, file, err, stderr.String())
	}
	return nil
}
