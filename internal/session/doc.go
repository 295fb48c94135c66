// Package session owns the local authentication state: the persisted bearer token and role, the
// signal broadcast when they change, and the logic that decides what an absent or expired token means.
//
// # Status
//
// Every consumer asks the same question through [Inspect]: is there a token, and if so is it still
// valid? The answer is a [Status] in one of three states:
//   - [Unauthenticated] : no token stored
//   - [Active] : token decodes and its exp lies in the future; TTL is the remaining lifetime
//   - [Expired] : token is past its exp, has no exp, or cannot be decoded
//
// The signature is never verified. That is the server's job; the client only reads the exp claim.
//
// # Guards
//
// [RequireAuth] and [RequireGuest] only look at token presence. An expired token still counts as present
// here and is dealt with by the [Monitor].
//
// # Monitor
//
// [Monitor] re-checks the token whenever the location changes or an auth [Event] is published. A valid
// token arms a one-shot timer for its remaining lifetime; an expired one is cleared immediately. Each check
// bumps a generation counter so that exactly one of the immediate path and a pending timer can log out.
//
// # Storage
//
// [SQLiteStore] keeps the token and role in the kv_store table of the local database.
// [MemoryStore] is used by tests and ephemeral runs.
package session
