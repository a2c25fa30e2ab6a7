package packager

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/dhowden/tag"
	"github.com/tcolgate/mp3"

	"github.com/killallgit/r2get/internal/models"
	"github.com/killallgit/r2get/pkg/ffmpeg"
)

// Prober reports stream properties of files tag readers cannot time
type Prober interface {
	GetMetadata(ctx context.Context, filePath string) (*ffmpeg.AudioMetadata, error)
}

// Embedded is what a tag reader finds in a finished file
type Embedded struct {
	Title    string
	Artist   string
	Album    string
	Cover    []byte
	Duration time.Duration
}

// ReadEmbedded reads back the tags of path and measures its duration.
// MP3 frames are counted directly; other containers ask the prober.
func ReadEmbedded(ctx context.Context, path string, format models.FormatTag, prober Prober) (*Embedded, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	meta, err := tag.ReadFrom(f)
	if err != nil {
		return nil, fmt.Errorf("reading tags of %s: %w", path, err)
	}

	embedded := &Embedded{
		Title:  strings.TrimSpace(meta.Title()),
		Artist: strings.TrimSpace(meta.Artist()),
		Album:  strings.TrimSpace(meta.Album()),
	}
	if pic := meta.Picture(); pic != nil {
		embedded.Cover = pic.Data
	}

	switch {
	case format == models.FormatMP3:
		seconds, err := mp3Duration(path)
		if err != nil {
			return nil, fmt.Errorf("measuring %s: %w", path, err)
		}
		embedded.Duration = time.Duration(seconds * float64(time.Second))
	case prober != nil:
		info, err := prober.GetMetadata(ctx, path)
		if err != nil {
			return nil, err
		}
		embedded.Duration = time.Duration(info.Duration * float64(time.Second))
	}

	return embedded, nil
}

// mp3Duration sums the frame durations of an MP3 file
func mp3Duration(path string) (float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	decoder := mp3.NewDecoder(f)
	var frame mp3.Frame
	var skipped int
	var total float64

	for {
		err := decoder.Decode(&frame, &skipped)
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return 0, err
		}
		total += frame.Duration().Seconds()
	}

	return total, nil
}
