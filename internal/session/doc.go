// Package session owns the authentication state of the client.
//
// A [Manager] moves between four states:
//
//	Anonymous -> Validating -> Authenticated
//	               |
//	               +-> Invalid -> Anonymous
//
// Invalid is transient: it is reported to the listener and immediately resolved to Anonymous after the
// persisted session is cleared.
//
// Every transition that replaces or discards the session advances an epoch. Results of network calls
// (the startup probe, a login) started under an older epoch are dropped, so a slow response can never
// resurrect a session that was logged out or replaced while it was in flight.
//
// The manager is also the credential source for the HTTP client ([Manager.Token]) and the target of its
// unauthorized callback ([Manager.OnUnauthorized]). A rejection only tears the session down if the
// rejected credential is still the current one, which makes concurrent rejections collapse into a single
// teardown and a single [EventSessionExpired].
package session
