package formatter

import (
	"bytes"
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/desertthunder/catx/internal/models"
	"github.com/desertthunder/catx/internal/shared"
	th "github.com/desertthunder/catx/internal/testing"
)

func sampleResults() *models.SearchResults {
	return &models.SearchResults{
		Tracks: []models.TrackSummary{
			{ID: 1, Title: "Blue Song", ArtistName: "Alice", AlbumTitle: "Blue", Duration: 185},
			{ID: 2, Title: "Bluer", ArtistName: "Bob", DurationMS: 61000},
		},
		Artists: []models.ArtistSummary{{ID: 7, Name: "Blue Band", Country: "NO"}},
		Albums:  []models.AlbumSummary{{ID: 9, Title: "Blue", ArtistName: "Alice"}},
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in   string
		want Format
	}{
		{"", FormatText},
		{"text", FormatText},
		{"JSON", FormatJSON},
		{"csv", FormatCSV},
		{"md", FormatMarkdown},
		{"markdown", FormatMarkdown},
	}

	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if err != nil || got != tt.want {
			t.Errorf("ParseFormat(%q) = %s, %v; want %s", tt.in, got, err, tt.want)
		}
	}

	if _, err := ParseFormat("xml"); !errors.Is(err, shared.ErrInvalidArgument) {
		t.Errorf("expected ErrInvalidArgument, got %v", err)
	}
}

func TestFormatDuration(t *testing.T) {
	tests := map[int]string{0: "-:--", 61: "1:01", 185: "3:05", 3600: "60:00"}
	for in, want := range tests {
		if got := FormatDuration(in); got != want {
			t.Errorf("FormatDuration(%d) = %s, want %s", in, got, want)
		}
	}
}

func TestRenderers(t *testing.T) {
	t.Run("ResultsToCSV", func(t *testing.T) {
		data, err := ResultsToCSV(sampleResults())
		if err != nil {
			t.Fatalf("ResultsToCSV failed: %v", err)
		}

		lines := strings.Split(strings.TrimSpace(string(data)), "\n")
		if lines[0] != "Kind,ID,Name,Artist,Album,Duration" {
			t.Errorf("unexpected header %q", lines[0])
		}
		if len(lines) != 5 {
			t.Errorf("expected 4 records, got %d", len(lines)-1)
		}
		if lines[2] != "track,2,Bluer,Bob,,61" {
			t.Errorf("expected duration from duration_ms, got %q", lines[2])
		}
		if lines[3] != "artist,7,Blue Band,,," {
			t.Errorf("unexpected artist row %q", lines[3])
		}
	})

	t.Run("ResultsToMarkdown", func(t *testing.T) {
		output := string(ResultsToMarkdown("blue", sampleResults()))

		for _, want := range []string{
			"# Search: blue",
			"**Results**: 4",
			"## Tracks (2)",
			"1. Alice - Blue Song (Blue) [3:05]",
			"- Blue Band (NO)",
			"## Albums (1)",
		} {
			if !strings.Contains(output, want) {
				t.Errorf("Markdown missing %q:\n%s", want, output)
			}
		}
	})

	t.Run("ResultsToText", func(t *testing.T) {
		output := string(ResultsToText("blue", sampleResults()))
		if !strings.Contains(output, "Tracks (2)") || !strings.Contains(output, "2. Bob - Bluer [1:01]") {
			t.Errorf("unexpected text output:\n%s", output)
		}

		empty := string(ResultsToText("nothing", &models.SearchResults{}))
		if !strings.Contains(empty, "No results") {
			t.Errorf("expected empty marker, got %q", empty)
		}
	})

	t.Run("Render JSON", func(t *testing.T) {
		data, err := Render(FormatJSON, "blue", sampleResults())
		if err != nil {
			t.Fatalf("Render failed: %v", err)
		}

		var decoded models.SearchResults
		if err := json.Unmarshal(data, &decoded); err != nil {
			t.Fatalf("invalid JSON: %v", err)
		}
		if decoded.Total() != 4 {
			t.Errorf("expected 4 results, got %d", decoded.Total())
		}
	})
}

func TestWriters(t *testing.T) {
	t.Run("WriteResults", func(t *testing.T) {
		var buf bytes.Buffer
		if err := WriteResults(&buf, FormatText, "blue", sampleResults()); err != nil {
			t.Fatalf("WriteResults failed: %v", err)
		}
		if !strings.HasPrefix(buf.String(), "Search: blue") {
			t.Errorf("unexpected output %q", buf.String())
		}

		if err := WriteResults(&th.FWriter{}, FormatText, "blue", sampleResults()); err == nil {
			t.Error("expected write error")
		}
	})

	t.Run("WriteResultsFile", func(t *testing.T) {
		dir := t.TempDir()

		path, err := WriteResultsFile(dir, "blue", FormatMarkdown, "blue", sampleResults())
		if err != nil {
			t.Fatalf("WriteResultsFile failed: %v", err)
		}
		if path != filepath.Join(dir, "blue.md") {
			t.Errorf("unexpected path %s", path)
		}
		if content := th.MustReadFile(t, path); !strings.Contains(content, "# Search: blue") {
			t.Errorf("unexpected content %q", content)
		}
	})

	t.Run("WriteResultsFile Missing Directory", func(t *testing.T) {
		_, err := WriteResultsFile(filepath.Join(t.TempDir(), "missing"), "x", FormatCSV, "x", sampleResults())
		if err == nil {
			t.Error("expected error for a missing directory")
		}
	})

	t.Run("WriteManifest", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "manifest.json")
		if err := WriteManifest(map[string]int{"total": 2}, path); err != nil {
			t.Fatalf("WriteManifest failed: %v", err)
		}
		th.AssertFileExists(t, path)
	})
}

func TestSlug(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Blue Song", "blue-song"},
		{"  AC/DC!! ", "ac-dc"},
		{"???", "query"},
		{strings.Repeat("a", 60), strings.Repeat("a", 48)},
	}
	for _, tt := range tests {
		if got := Slug(tt.in); got != tt.want {
			t.Errorf("Slug(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
