package models

import (
	"errors"
	"strings"
	"time"
)

// ErrEmptyShowName is returned when a query is built without a show name.
var ErrEmptyShowName = errors.New("show name cannot be empty")

// ShowQuery is the caller's request for a single broadcast.
type ShowQuery struct {
	Name         string
	Date         *Date // nil selects the most recent broadcast
	PartialMatch bool
}

// NewShowQuery builds a query from raw caller input.
func NewShowQuery(name string, date *Date, partial bool) (ShowQuery, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return ShowQuery{}, ErrEmptyShowName
	}
	q := ShowQuery{Name: name, PartialMatch: partial}
	if date != nil {
		d := *date
		q.Date = &d
	}
	return q, nil
}

// DateLabel describes the date part of the query for messages.
func (q ShowQuery) DateLabel() string {
	if q.Date == nil {
		return "most recent"
	}
	return q.Date.String()
}

// SeriesRecord is one entry of the program catalog.
type SeriesRecord struct {
	ID          string
	DisplayName string
}

// EpisodeRecord is one scheduled airing of a series.
type EpisodeRecord struct {
	ID             string
	ScheduledStart time.Time
}

// ImageCandidate is one rendition of an episode image.
type ImageCandidate struct {
	Width int
	URL   string
}

// EpisodeDetail is the endpoint-independent view of an episode payload.
type EpisodeDetail struct {
	ID        string
	Name      string
	Start     time.Time
	MediaURLs []string
	Images    []ImageCandidate
}

// ShowAttributes is a fully resolved broadcast.
type ShowAttributes struct {
	FullName   string
	Date       Date
	StreamURLs []string
	ImageURL   string // empty when the episode has no image
}

// HasImage reports whether a cover image URL was resolved.
func (a ShowAttributes) HasImage() bool {
	return a.ImageURL != ""
}
