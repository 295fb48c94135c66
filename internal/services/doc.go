// Package services implements the REST client for the library backend.
//
// # Raw requests
//
// [APIService] sends requests relative to the configured base URL and returns an [APIResponse] without treating
// non-2xx statuses as transport errors. Each request carries an X-Request-ID and is paced by an optional
// rate limiter. [APIResponse.Err] converts a failed status into an [*APIError], which matches
// shared.ErrAPIRequest and, for 401/403, shared.ErrNotAuthenticated.
//
// # Authentication
//
// [NewAuthClient] wraps a transport so the stored session token is attached as a bearer token through
// oauth2.Transport. Requests made before login go out without an Authorization header.
//
// # Typed operations
//
// [LibraryService] implements [Library]: auth, profile, books, wishlist, explore, uploads, analytics and user
// management. Explore results from the external catalog are normalized so every item has an id, title, author,
// https cover and genre.
package services
