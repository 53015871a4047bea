// Package dashboard drives the book list on behalf of the UI and the poller.
//
// # Overview
//
// Controller owns the view parameters (page size and search filter) and
// translates each user intent into a BookAPI call followed by a state.Store
// update. The store holds the page; the controller never caches items of its
// own.
//
// # Optimistic Create
//
//	CreateBook(req)
//	  ├─> req.Validate()              reject before any state change
//	  ├─> store.BeginCreate()
//	  ├─> InsertOptimistic{tempID}    row appears immediately
//	  ├─> api.CreateBook
//	  │     ├─ err: RevertOptimistic{tempID}, CauseCreatingBook
//	  │     └─ ok:  Refresh()          server copy replaces placeholder
//	  └─> store.EndCreate()
//
// Placeholders carry a uuid temp id; a revert removes only that row.
//
// # Polling
//
// ShouldPoll is the default predicate for app.StartPoller: no poll while a
// list refresh or create is in flight, or while an error is displayed.
// Polling refreshes never set an error cause; a failed poll is only logged.
package dashboard
