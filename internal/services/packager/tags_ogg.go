package packager

import (
	"context"
	"fmt"
	"os"
	"strings"
)

// MetadataApplier remuxes a file with the tags of an ffmetadata file
type MetadataApplier interface {
	ApplyMetadata(ctx context.Context, path, metadataFile string) error
}

// vorbisWriter stores tags as Vorbis comments by remuxing through ffmpeg
type vorbisWriter struct {
	meta    MetadataApplier
	tempDir string
}

func (w *vorbisWriter) WriteTags(ctx context.Context, path string, tags Tags) error {
	content := FFMetadata(tags)

	f, err := os.CreateTemp(w.tempDir, "r2get-tags-*.txt")
	if err != nil {
		return fmt.Errorf("creating metadata file: %w", err)
	}
	defer os.Remove(f.Name())

	if _, err := f.WriteString(content); err != nil {
		f.Close()
		return fmt.Errorf("writing metadata file: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("writing metadata file: %w", err)
	}

	return w.meta.ApplyMetadata(ctx, path, f.Name())
}

// FFMetadata renders Vorbis tags in ffmpeg's ffmetadata format. The album
// is not written; cover art goes into METADATA_BLOCK_PICTURE.
func FFMetadata(tags Tags) string {
	var b strings.Builder
	b.WriteString(";FFMETADATA1\n")
	writeEntry(&b, "ARTIST", tags.Artist)
	writeEntry(&b, "TITLE", tags.Title)

	if len(tags.Cover) > 0 {
		writeEntry(&b, "METADATA_BLOCK_PICTURE", EncodedPictureBlock(tags.Cover, "image/jpeg", "Cover"))
	}
	return b.String()
}

func writeEntry(b *strings.Builder, key, value string) {
	if value == "" {
		return
	}
	b.WriteString(key)
	b.WriteByte('=')
	b.WriteString(escapeFFMetadata(value))
	b.WriteByte('\n')
}

var ffmetadataEscaper = strings.NewReplacer(
	`\`, `\\`,
	`=`, `\=`,
	`;`, `\;`,
	`#`, `\#`,
	"\n", "\\\n",
)

// escapeFFMetadata backslash-escapes the characters ffmetadata treats specially
func escapeFFMetadata(s string) string {
	return ffmetadataEscaper.Replace(s)
}
