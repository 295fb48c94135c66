// Package models defines the domain entities exchanged with the library backend.
//
// The package contains three groups of types:
//
// 1. Catalog entities: what a user owns
//   - [Book] : a book record as returned by the server
//   - [BookInput] : the writable subset sent on create and update
//   - [Volume] : an item from the external catalog (Google Books proxy)
//
// 2. Accounts
//   - [User] : the current profile with its wishlist
//   - [Role] : closed set of account roles with [Role.Can] and [Role.CanAssign]
//
// 3. Query results
//   - [FilterRequest] and [FilterResult] : paginated library queries with status counts
//   - [ExploreResult] : append-style pages for the explore view
//   - [Stats] : aggregate analytics
//
// None of these types are persisted locally. They are rebuilt from server responses on every fetch.
package models
