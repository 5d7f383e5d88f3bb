// Package ui implements an interactive terminal client using bubbletea's Elm architecture.
//
// Views are addressed by [guard.View] paths. Every navigation, and every session change, is resolved
// through [guard.Resolve] against a fresh session snapshot, so the model never renders a view the current
// role may not open:
//   - "/" : home menu
//   - "/search", "/tracks", "/artists", "/albums" : live search backed by the debounced coordinator
//   - "/login" : identifier and secret form
//   - "/dashboard/{role}" : role dashboards
//
// Search results and session changes reach the model through coalescing signal channels read by
// long-running commands (see [Model.waitForSearch] and [Model.waitForSession]), the same pattern used for
// progress updates elsewhere. A session that expires redirects to the login view exactly once.
package ui
