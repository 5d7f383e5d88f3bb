package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	"github.com/desertthunder/catx/internal/formatter"
	"github.com/desertthunder/catx/internal/guard"
	"github.com/desertthunder/catx/internal/models"
)

var (
	_ list.Item = trackItem{}
	_ list.Item = artistItem{}
	_ list.Item = albumItem{}
)

// trackItem wraps [models.TrackSummary] to implement [list.Item].
type trackItem struct {
	track models.TrackSummary
}

func (i trackItem) FilterValue() string { return i.track.Title }
func (i trackItem) Title() string       { return "♪ " + i.track.Title }
func (i trackItem) Description() string {
	desc := fmt.Sprintf("%s • %s", i.track.ArtistName, formatter.FormatDuration(i.track.Seconds()))
	if i.track.AlbumTitle != "" {
		desc = fmt.Sprintf("%s • %s", desc, i.track.AlbumTitle)
	}
	return desc
}

// artistItem wraps [models.ArtistSummary] to implement [list.Item].
type artistItem struct {
	artist models.ArtistSummary
}

func (i artistItem) FilterValue() string { return i.artist.Name }
func (i artistItem) Title() string       { return "★ " + i.artist.Name }
func (i artistItem) Description() string {
	if i.artist.Country != "" {
		return "Artist • " + i.artist.Country
	}
	return "Artist"
}

// albumItem wraps [models.AlbumSummary] to implement [list.Item].
type albumItem struct {
	album models.AlbumSummary
}

func (i albumItem) FilterValue() string { return i.album.Title }
func (i albumItem) Title() string       { return "◉ " + i.album.Title }
func (i albumItem) Description() string {
	if i.album.ReleaseDate != "" {
		return fmt.Sprintf("%s • %s", i.album.ArtistName, i.album.ReleaseDate)
	}
	return i.album.ArtistName
}

// resultItems flattens results into list items, keeping only the entity kind the view shows.
func resultItems(v guard.View, results models.SearchResults) []list.Item {
	var items []list.Item
	if v == guard.Search || v == guard.Tracks {
		for _, track := range results.Tracks {
			items = append(items, trackItem{track: track})
		}
	}
	if v == guard.Search || v == guard.Artists {
		for _, artist := range results.Artists {
			items = append(items, artistItem{artist: artist})
		}
	}
	if v == guard.Search || v == guard.Albums {
		for _, album := range results.Albums {
			items = append(items, albumItem{album: album})
		}
	}
	return items
}
