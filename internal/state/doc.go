// Package state holds the dashboard's page of books and its request flags.
//
// # Overview
//
// The store is the coordination point between the controller, which issues
// API calls on behalf of the user and the poller, and the UI, which renders
// whatever the store holds at the moment. Every mutation goes through a small
// closed set of actions so the page can only change in three ways.
//
// # Actions
//
//	SetPage{Items, TotalPage, CurrentPage}
//	  → page replaced wholesale by a server response
//
//	InsertOptimistic{Book, PageSize}
//	  → book appended
//	  → TotalPage = ceil((len(Items)+1) / PageSize)
//	  → CurrentPage unchanged
//
//	RevertOptimistic{ID}
//	  → every item whose ID matches removed
//	  → TotalPage and CurrentPage unchanged
//
// Reduce is pure; Store.Apply runs it under the write lock.
//
// # Refresh Ordering
//
// List refreshes may overlap (a poll tick racing a page change). Each refresh
// takes a sequence number from BeginRefresh and hands it back to
// CommitRefresh or FailRefresh. Only the newest refresh may write the page
// or set an error cause, so a slow response to an older request never
// overwrites a newer one. Refreshing stays true while any refresh is in
// flight.
//
// # Flags
//
//   - Refreshing: a list fetch is in flight
//   - Creating: a create request is in flight
//   - ErrorCause: which user action failed, empty when none
//
// The poller skips a tick whenever any flag is set.
//
// # Concurrency Model
//
// Store uses a sync.RWMutex and is ready to use as a zero value. Snapshot and
// Page return deep copies so the UI can hold them across renders without
// racing later updates.
package state
