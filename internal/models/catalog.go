package models

// SearchQuery is one user-entered search intent.
//
// Sequence is assigned at submission time and is strictly increasing for the process lifetime.
type SearchQuery struct {
	Text     string
	Sequence int64
}

// TrackSummary is a track as returned by the multi-entity search.
type TrackSummary struct {
	ID           int64  `json:"id"`
	Title        string `json:"title"`
	ArtistName   string `json:"artist_name"`
	AlbumTitle   string `json:"album_title,omitempty"`
	GenreName    string `json:"genre_name,omitempty"`
	Duration     int    `json:"duration,omitempty"` // seconds
	DurationMS   int    `json:"duration_ms,omitempty"`
	Explicit     bool   `json:"explicit,omitempty"`
	CoverURL     string `json:"album_cover_url,omitempty"`
	ArtistImgURL string `json:"artist_image_url,omitempty"`
}

// Seconds returns the track length in seconds from whichever duration field is populated.
func (t TrackSummary) Seconds() int {
	if t.Duration > 0 {
		return t.Duration
	}
	return t.DurationMS / 1000
}

// ArtistSummary is an artist as returned by the multi-entity search.
type ArtistSummary struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Bio      string `json:"bio,omitempty"`
	Country  string `json:"country,omitempty"`
	ImageURL string `json:"image_url,omitempty"`
}

// AlbumSummary is an album as returned by the multi-entity search.
type AlbumSummary struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	ArtistID    int64  `json:"artist_id,omitempty"`
	ArtistName  string `json:"artist_name"`
	ReleaseDate string `json:"release_date,omitempty"`
	CoverURL    string `json:"cover_image_url,omitempty"`
}

// SearchResults is the payload of GET /search/multi.
type SearchResults struct {
	Tracks  []TrackSummary  `json:"tracks"`
	Artists []ArtistSummary `json:"artists"`
	Albums  []AlbumSummary  `json:"albums"`
}

// Normalize replaces missing collections with empty ones.
func (r *SearchResults) Normalize() {
	if r.Tracks == nil {
		r.Tracks = []TrackSummary{}
	}
	if r.Artists == nil {
		r.Artists = []ArtistSummary{}
	}
	if r.Albums == nil {
		r.Albums = []AlbumSummary{}
	}
}

// Empty reports whether no entity of any kind was found.
func (r SearchResults) Empty() bool {
	return len(r.Tracks) == 0 && len(r.Artists) == 0 && len(r.Albums) == 0
}

// Total returns the number of entities across all collections.
func (r SearchResults) Total() int {
	return len(r.Tracks) + len(r.Artists) + len(r.Albums)
}

// SearchResultSet is the last accepted search result.
type SearchResultSet struct {
	SearchResults
	ForSequence int64
}
