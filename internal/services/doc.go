// Package services implements the HTTP client for the catalog backend.
//
// # APIService
//
// [APIService] issues every request the client makes. It:
//   - attaches the current bearer credential from an [oauth2.TokenSource] (normally the session manager)
//   - tags each request with an X-Request-ID header
//   - reports failures uniformly (see Error Handling)
//   - notifies a single [UnauthorizedFunc] whenever a request that carried a credential is rejected
//
// Login requests are sent without a credential. Session probes carry the credential being validated
// instead of the current one.
//
// # Catalog Operations
//
//   - [APIService.Login] : POST /auth/login
//   - [APIService.Me] : GET /auth/me
//   - [APIService.SearchMulti] : GET /search/multi
//
// # Error Handling
//
// Errors wrap sentinels from the shared package:
//   - [shared.ErrNetworkFailure] : no response was received
//   - [shared.ErrAuthRejected] : 401 or 403, via [APIError]
//   - [shared.ErrAPIRequest] : any other non-2xx status or a malformed body, via [APIError]
package services
