// Package search coordinates debounced multi-entity search.
//
// A [Coordinator] turns a stream of text edits into at most one request per settled interval and keeps the
// newest result set. Every edit is tagged with a strictly increasing sequence number (clearing the text
// included). A response is accepted only if its sequence is higher than the sequence of the result set it
// would replace, so the order in which responses arrive never matters. Superseded requests are also
// cancelled through their context, but acceptance does not depend on that cancellation succeeding.
//
// States:
//   - [Idle] : no text; the result set is empty
//   - [Pending] : a timer is waiting to issue the newest query
//   - [InFlight] : the newest query has been sent
//   - [Settled] : the newest query has been answered (or failed, see [Snapshot.Err])
package search
