package models

import (
	"fmt"
	"strings"
	"time"
)

// FormatTag identifies an output container/codec.
type FormatTag string

const (
	// FormatMP4 is the unmodified stream in an MPEG-4 audio container.
	FormatMP4 FormatTag = "mp4"
	// FormatMP3 is an MPEG-1 Layer III re-encode.
	FormatMP3 FormatTag = "mp3"
	// FormatOgg is an Ogg Vorbis re-encode.
	FormatOgg FormatTag = "ogg"
)

// AllFormats lists the supported formats in processing order.
func AllFormats() []FormatTag {
	return []FormatTag{FormatMP4, FormatMP3, FormatOgg}
}

// ParseFormatTag validates a format name.
func ParseFormatTag(s string) (FormatTag, error) {
	f := FormatTag(strings.ToLower(strings.TrimSpace(s)))
	switch f {
	case FormatMP4, FormatMP3, FormatOgg:
		return f, nil
	}
	return "", fmt.Errorf("unsupported output format %q", s)
}

// Extension returns the file extension including the dot.
func (f FormatTag) Extension() string {
	switch f {
	case FormatMP4:
		return ".m4a"
	case FormatMP3:
		return ".mp3"
	case FormatOgg:
		return ".ogg"
	default:
		return ""
	}
}

// OutputSpec maps each requested format to its destination directory.
type OutputSpec map[FormatTag]string

// Formats returns the requested formats in processing order.
func (o OutputSpec) Formats() []FormatTag {
	var formats []FormatTag
	for _, f := range AllFormats() {
		if _, ok := o[f]; ok {
			formats = append(formats, f)
		}
	}
	return formats
}

// TaggedFile is a packaged output file with the metadata found in it.
type TaggedFile struct {
	Path     string
	Format   FormatTag
	Track    int
	Title    string
	Artist   string
	Album    string
	Cover    []byte
	Duration time.Duration
}
