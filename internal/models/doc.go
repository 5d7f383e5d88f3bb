// Package models defines the domain entities shared by the catx client.
//
// The package contains two groups of types:
//
// 1. Session state
//   - [Role] : listener, artist or admin (or none while anonymous)
//   - [Identity] : the identity object returned by the catalog backend
//   - [Session] : the authenticated identity of the current client
//
// 2. Catalog search
//   - [SearchQuery] : one user-entered search intent tagged with a sequence number
//   - [SearchResults] : the multi-entity payload of a search response
//   - [SearchResultSet] : the last accepted result and the sequence it answers
//   - [TrackSummary], [ArtistSummary], [AlbumSummary] : entity summaries
//
// Types are plain values. Components hand out copies, never pointers into their own state.
package models
