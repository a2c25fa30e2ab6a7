package packager

import (
	"context"

	"github.com/killallgit/r2get/internal/models"
)

// Tags is the metadata written into every output file
type Tags struct {
	Title  string
	Artist string
	Album  string // left out of Vorbis comments
	Cover  []byte // JPEG, nil when no art is available
}

// TagWriter embeds Tags using one container's native scheme
type TagWriter interface {
	WriteTags(ctx context.Context, path string, tags Tags) error
}

// TagWriterFunc adapts a function to TagWriter
type TagWriterFunc func(ctx context.Context, path string, tags Tags) error

func (f TagWriterFunc) WriteTags(ctx context.Context, path string, tags Tags) error {
	return f(ctx, path, tags)
}

// defaultTagWriters returns the writer for each supported format
func defaultTagWriters(meta MetadataApplier, tempDir string) map[models.FormatTag]TagWriter {
	return map[models.FormatTag]TagWriter{
		models.FormatMP4: TagWriterFunc(writeMP4Tags),
		models.FormatMP3: TagWriterFunc(writeID3Tags),
		models.FormatOgg: &vorbisWriter{meta: meta, tempDir: tempDir},
	}
}
