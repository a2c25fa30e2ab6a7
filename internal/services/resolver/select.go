package resolver

import (
	"strings"
	"time"

	"golang.org/x/text/cases"

	"github.com/killallgit/r2get/internal/models"
)

// DefaultPreferredWidth is the cover width the image selection aims for.
const DefaultPreferredWidth = 1000

// fold returns the caseless form of s used for name comparison
func fold(s string) string {
	return cases.Fold().String(strings.TrimSpace(s))
}

// MatchSeries returns the first catalog entry whose name equals name ignoring
// case, or contains it when partial is set.
func MatchSeries(catalog []models.SeriesRecord, name string, partial bool) (models.SeriesRecord, bool) {
	want := fold(name)
	if want == "" {
		return models.SeriesRecord{}, false
	}
	for _, series := range catalog {
		have := fold(series.DisplayName)
		if have == want || partial && strings.Contains(have, want) {
			return series, true
		}
	}
	return models.SeriesRecord{}, false
}

// MostRecentEpisode returns the episode with the latest start strictly before
// now. The list is scanned in full; its order carries no meaning.
func MostRecentEpisode(episodes []models.EpisodeRecord, now time.Time) (models.EpisodeRecord, bool) {
	var best models.EpisodeRecord
	found := false
	for _, ep := range episodes {
		if !ep.ScheduledStart.Before(now) {
			continue
		}
		if !found || ep.ScheduledStart.After(best.ScheduledStart) {
			best, found = ep, true
		}
	}
	return best, found
}

// EpisodeOnDate returns the episode airing on date in loc. When a series airs
// more than once that day the earliest airing wins.
func EpisodeOnDate(episodes []models.EpisodeRecord, date models.Date, loc *time.Location) (models.EpisodeRecord, bool) {
	var best models.EpisodeRecord
	found := false
	for _, ep := range episodes {
		if !models.DateOf(ep.ScheduledStart.In(loc)).Equal(date) {
			continue
		}
		if !found || ep.ScheduledStart.Before(best.ScheduledStart) {
			best, found = ep, true
		}
	}
	return best, found
}

// BestImage picks the candidate whose width is closest to preferred; the
// first candidate wins a tie. It returns "" when there are no candidates.
func BestImage(candidates []models.ImageCandidate, preferred int) string {
	if preferred <= 0 {
		preferred = DefaultPreferredWidth
	}
	best := ""
	bestDelta := -1
	for _, c := range candidates {
		if c.URL == "" {
			continue
		}
		delta := c.Width - preferred
		if delta < 0 {
			delta = -delta
		}
		if bestDelta < 0 || delta < bestDelta {
			best, bestDelta = c.URL, delta
		}
	}
	return best
}

// UniqueURLs drops repeated URLs keeping the first occurrence of each.
func UniqueURLs(urls []string) []string {
	seen := make(map[string]struct{}, len(urls))
	out := make([]string, 0, len(urls))
	for _, u := range urls {
		if _, ok := seen[u]; ok {
			continue
		}
		seen[u] = struct{}{}
		out = append(out, u)
	}
	return out
}
