// package formatter renders multi-entity search results as JSON, CSV, Markdown or plain text
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/desertthunder/catx/internal/models"
	"github.com/desertthunder/catx/internal/shared"
)

// Format is an output format.
type Format string

const (
	FormatJSON     Format = "json"
	FormatCSV      Format = "csv"
	FormatMarkdown Format = "markdown"
	FormatText     Format = "txt"
)

// ParseFormat accepts json, csv, markdown (or md) and txt (or text). Empty selects text.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "txt", "text":
		return FormatText, nil
	case "json":
		return FormatJSON, nil
	case "csv":
		return FormatCSV, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	default:
		return "", fmt.Errorf("%w: unknown format %q", shared.ErrInvalidArgument, s)
	}
}

// Extension returns the file extension for f, without the dot.
func (f Format) Extension() string {
	switch f {
	case FormatJSON:
		return "json"
	case FormatCSV:
		return "csv"
	case FormatMarkdown:
		return "md"
	default:
		return "txt"
	}
}

// FormatDuration renders seconds as m:ss.
func FormatDuration(seconds int) string {
	if seconds <= 0 {
		return "-:--"
	}
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}

// ResultsToCSV converts results to CSV with columns: Kind, ID, Name, Artist, Album, Duration
func ResultsToCSV(results *models.SearchResults) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write([]string{"Kind", "ID", "Name", "Artist", "Album", "Duration"}); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	var records [][]string
	for _, track := range results.Tracks {
		records = append(records, []string{
			"track", strconv.FormatInt(track.ID, 10), track.Title, track.ArtistName, track.AlbumTitle,
			strconv.Itoa(track.Seconds()),
		})
	}
	for _, artist := range results.Artists {
		records = append(records, []string{"artist", strconv.FormatInt(artist.ID, 10), artist.Name, "", "", ""})
	}
	for _, album := range results.Albums {
		records = append(records, []string{
			"album", strconv.FormatInt(album.ID, 10), album.Title, album.ArtistName, "", "",
		})
	}

	if err := writer.WriteAll(records); err != nil {
		return nil, fmt.Errorf("failed to write CSV record: %w", err)
	}
	return buf.Bytes(), nil
}

// ResultsToMarkdown renders results as a Markdown document titled with the query.
func ResultsToMarkdown(query string, results *models.SearchResults) []byte {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "# Search: %s\n\n", query)
	fmt.Fprintf(&buf, "**Results**: %d\n\n", results.Total())

	fmt.Fprintf(&buf, "## Tracks (%d)\n\n", len(results.Tracks))
	for i, track := range results.Tracks {
		album := ""
		if track.AlbumTitle != "" {
			album = fmt.Sprintf(" (%s)", track.AlbumTitle)
		}
		fmt.Fprintf(&buf, "%d. %s - %s%s [%s]\n", i+1, track.ArtistName, track.Title, album, FormatDuration(track.Seconds()))
	}

	fmt.Fprintf(&buf, "\n## Artists (%d)\n\n", len(results.Artists))
	for _, artist := range results.Artists {
		if artist.Country != "" {
			fmt.Fprintf(&buf, "- %s (%s)\n", artist.Name, artist.Country)
		} else {
			fmt.Fprintf(&buf, "- %s\n", artist.Name)
		}
	}

	fmt.Fprintf(&buf, "\n## Albums (%d)\n\n", len(results.Albums))
	for _, album := range results.Albums {
		fmt.Fprintf(&buf, "- %s - %s\n", album.ArtistName, album.Title)
	}

	return buf.Bytes()
}

// ResultsToText renders results as plain text.
func ResultsToText(query string, results *models.SearchResults) []byte {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "Search: %s\n", query)
	if results.Empty() {
		buf.WriteString("No results\n")
		return buf.Bytes()
	}

	if len(results.Tracks) > 0 {
		fmt.Fprintf(&buf, "\nTracks (%d)\n", len(results.Tracks))
		for i, track := range results.Tracks {
			fmt.Fprintf(&buf, "%d. %s - %s [%s]\n", i+1, track.ArtistName, track.Title, FormatDuration(track.Seconds()))
		}
	}
	if len(results.Artists) > 0 {
		fmt.Fprintf(&buf, "\nArtists (%d)\n", len(results.Artists))
		for i, artist := range results.Artists {
			fmt.Fprintf(&buf, "%d. %s\n", i+1, artist.Name)
		}
	}
	if len(results.Albums) > 0 {
		fmt.Fprintf(&buf, "\nAlbums (%d)\n", len(results.Albums))
		for i, album := range results.Albums {
			fmt.Fprintf(&buf, "%d. %s - %s\n", i+1, album.ArtistName, album.Title)
		}
	}

	return buf.Bytes()
}

// Render converts results to f.
func Render(f Format, query string, results *models.SearchResults) ([]byte, error) {
	switch f {
	case FormatJSON:
		return shared.MarshalJSON(results, true)
	case FormatCSV:
		return ResultsToCSV(results)
	case FormatMarkdown:
		return ResultsToMarkdown(query, results), nil
	default:
		return ResultsToText(query, results), nil
	}
}

// WriteResults renders results to w.
func WriteResults(w io.Writer, f Format, query string, results *models.SearchResults) error {
	data, err := Render(f, query, results)
	if err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("failed to write results: %w", err)
	}
	return nil
}

// WriteResultsFile writes results to {dir}/{name}.{ext} and returns the path.
func WriteResultsFile(dir, name string, f Format, query string, results *models.SearchResults) (string, error) {
	data, err := Render(f, query, results)
	if err != nil {
		return "", fmt.Errorf("failed to render %s: %w", f, err)
	}

	path := filepath.Join(dir, name+"."+f.Extension())
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write %s file: %w", f, err)
	}
	return path, nil
}

// WriteManifest writes v as indented JSON to path.
func WriteManifest(v any, path string) error {
	data, err := shared.MarshalJSON(v, true)
	if err != nil {
		return fmt.Errorf("failed to marshal manifest: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}
	return nil
}

var nonSlug = regexp.MustCompile(`[^a-z0-9]+`)

// Slug turns a query into a file name fragment.
func Slug(query string) string {
	s := strings.Trim(nonSlug.ReplaceAllString(strings.ToLower(query), "-"), "-")
	if len(s) > 48 {
		s = strings.TrimRight(s[:48], "-")
	}
	if s == "" {
		return "query"
	}
	return s
}
