// Package ui implements the interactive terminal client using bubbletea's Elm architecture.
//
// The TUI mirrors the web client's routes. A location bar shows the current path and query, which can be copied
// and passed back through `shelf tui --url`. Screens:
//  1. landing, login and signup (guest only)
//  2. home, with library and wishlist counts
//  3. MyBooks, a paged library list bound to a listing.Synchronizer
//  4. explore, an append list over the external catalog and community books
//  5. wishlist, with a client-side text filter and bulk removal
//  6. book details, analytics, profile and the admin console
//
// Every path change is resolved through nav.Router, so protected screens redirect to landing without a session and
// guest screens redirect home with one. A session.Monitor runs in the background and forces a logout the moment the
// token expires, raising a notice.
//
// Background goroutines never touch the [Model] directly. History changes, monitor notices and session events are
// delivered as [Msg] values; screen fetch results are wrapped in a scope so replies to a replaced screen are dropped.
//
// Destructive actions ask for a y/n confirmation. Mutations report a success or failure notice; failed reads
// render inline and keep the previous data on screen.
package ui
