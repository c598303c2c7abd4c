// Package session resolves and caches the identity used to scope backend
// queries.
//
// Exactly one form of identity is active at a time: an authenticated user
// (bearer token plus stable user id) or a locally generated anonymous temp
// id. Identity material is persisted in a small file-backed key-value store
// under the user config directory, one file per key, so it survives across
// invocations the way a mobile client's device storage would.
//
// Resolution is cheap and offline-first: a cached temp id or profile wins
// without any network call; only a cached token with no cached profile
// triggers a backend exchange (and even then the token's embedded user id
// is tried first). Failure to reach the backend is non-fatal - an empty
// identity is a valid state that renders an empty task list.
//
// The identity state machine:
//
//	Anonymous(none) -> Anonymous(tempId)        first anonymous task
//	Anonymous(*)    -> Authenticated(userId)    login
//	Authenticated   -> Anonymous(none)          logout
//
// Logout is an explicit reset: it never re-derives an anonymous id.
package session
