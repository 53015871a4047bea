package state

import (
	"fmt"
	"sync"
	"time"
)

// Cause names the user action whose failure is currently being reported.
type Cause string

const (
	CauseNone          Cause = ""
	CauseFetchingBooks Cause = "fetchingBooks"
	CauseCreatingBook  Cause = "creatingBook"
	CauseUpdatingBook  Cause = "updatingBook"
	CauseDeletingBook  Cause = "deletingBook"
)

// Message is the notification text shown for the cause.
func (c Cause) Message() string {
	switch c {
	case CauseFetchingBooks:
		return "Error occurred while fetching books"
	case CauseCreatingBook:
		return "Error occurred while creating book"
	case CauseUpdatingBook:
		return "Error occurred while updating book"
	case CauseDeletingBook:
		return "Error occurred while deleting book"
	default:
		return ""
	}
}

// Flags is the in-flight and error bookkeeping the poller consults.
type Flags struct {
	Refreshing bool
	Creating   bool
	ErrorCause Cause
	LastError  error
}

// Snapshot represents the latest data available to the UI.
type Snapshot struct {
	Page        Page
	Flags       Flags
	LastUpdated time.Time
}

// Store coordinates concurrent updates to the page and flags.
type Store struct {
	mu          sync.RWMutex
	page        Page
	flags       Flags
	lastUpdated time.Time

	refreshSeq uint64
	inFlight   int
	creating   int
}

// Apply runs a through Reduce under the store lock.
func (s *Store) Apply(a Action) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.page = Reduce(s.page, a)
	s.lastUpdated = time.Now()
}

// BeginRefresh registers a list refresh and returns its sequence number.
// Refreshing stays set until every begun refresh has finished.
func (s *Store) BeginRefresh() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refreshSeq++
	s.inFlight++
	s.flags.Refreshing = true
	return s.refreshSeq
}

// CommitRefresh finishes refresh seq with a server page. The page is applied
// only when seq is the latest refresh issued; the result reports whether it
// was.
func (s *Store) CommitRefresh(seq uint64, page SetPage) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.finishLocked()
	if seq != s.refreshSeq {
		return false
	}
	s.page = Reduce(s.page, page)
	s.lastUpdated = time.Now()
	return true
}

// FailRefresh finishes refresh seq without touching the page. A non-empty
// cause is recorded only when seq is still the latest refresh.
func (s *Store) FailRefresh(seq uint64, cause Cause, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.finishLocked()
	if seq != s.refreshSeq || cause == CauseNone {
		return
	}
	s.flags.ErrorCause = cause
	s.flags.LastError = err
}

func (s *Store) finishLocked() {
	if s.inFlight > 0 {
		s.inFlight--
	}
	s.flags.Refreshing = s.inFlight > 0
}

// BeginCreate registers a create call. Creating stays set until every begun
// create has ended.
func (s *Store) BeginCreate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.creating++
	s.flags.Creating = true
}

// EndCreate finishes a create started with BeginCreate.
func (s *Store) EndCreate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.creating > 0 {
		s.creating--
	}
	s.flags.Creating = s.creating > 0
}

// SetError records a failure for display.
func (s *Store) SetError(cause Cause, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.flags.ErrorCause = cause
	s.flags.LastError = err
}

// ClearError dismisses the current failure.
func (s *Store) ClearError() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.flags.ErrorCause = CauseNone
	s.flags.LastError = nil
}

// Flags returns the current flags.
func (s *Store) Flags() Flags {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.flags
}

// Page returns a copy of the current page.
func (s *Store) Page() Page {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return clonePage(s.page)
}

// Snapshot returns a copy of the current state.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := Snapshot{
		Page:        clonePage(s.page),
		Flags:       s.flags,
		LastUpdated: s.lastUpdated,
	}
	if s.flags.LastError != nil {
		snap.Flags.LastError = fmt.Errorf("%w", s.flags.LastError)
	}
	return snap
}

func clonePage(p Page) Page {
	p.Items = cloneBooks(p.Items)
	return p
}
