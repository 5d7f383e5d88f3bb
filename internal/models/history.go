package models

import "time"

// SearchRecord is one query issued by a batch search run.
type SearchRecord struct {
	ID        string
	RunID     string
	Query     string
	Tracks    int
	Artists   int
	Albums    int
	Error     string
	CreatedAt time.Time
}

// NewSearchRecord summarizes the outcome of a single query. Either results or err may be nil.
func NewSearchRecord(runID, query string, results *SearchResults, err error) *SearchRecord {
	record := &SearchRecord{RunID: runID, Query: query, CreatedAt: time.Now()}
	if results != nil {
		record.Tracks = len(results.Tracks)
		record.Artists = len(results.Artists)
		record.Albums = len(results.Albums)
	}
	if err != nil {
		record.Error = err.Error()
	}
	return record
}

// Failed reports whether the query returned an error.
func (r SearchRecord) Failed() bool {
	return r.Error != ""
}
