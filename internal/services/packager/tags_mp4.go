package packager

import (
	"context"
	"fmt"

	"github.com/zhaarey/go-mp4tag"
)

// writeMP4Tags sets ©nam, ©ART, ©alb and a covr atom
func writeMP4Tags(_ context.Context, path string, tags Tags) error {
	t := &mp4tag.MP4Tags{
		Title:  tags.Title,
		Artist: tags.Artist,
		Album:  tags.Album,
	}
	if len(tags.Cover) > 0 {
		t.Pictures = []*mp4tag.MP4Picture{{
			Format: mp4tag.ImageTypeJPEG,
			Data:   tags.Cover,
		}}
	}

	mp4, err := mp4tag.Open(path)
	if err != nil {
		return fmt.Errorf("opening %s: %w", path, err)
	}
	defer mp4.Close()

	if err := mp4.Write(t, []string{}); err != nil {
		return fmt.Errorf("writing mp4 tags to %s: %w", path, err)
	}
	return nil
}
