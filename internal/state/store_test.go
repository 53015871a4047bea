package state

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/five82/bookdash/internal/books"
)

func book(id string) books.Book {
	return books.Book{ID: id, Title: "Title " + id, Author: "Author", PublicationYear: "2001"}
}

func ids(p Page) []string {
	out := make([]string, 0, len(p.Items))
	for _, b := range p.Items {
		out = append(out, b.ID)
	}
	return out
}

func TestReduce_SetPageReplaces(t *testing.T) {
	prev := Page{Items: []books.Book{book("a")}, CurrentPage: 1, TotalPage: 1}
	next := Reduce(prev, SetPage{Items: []books.Book{book("b"), book("c")}, TotalPage: 4, CurrentPage: 2})

	if got := ids(next); !reflect.DeepEqual(got, []string{"b", "c"}) {
		t.Fatalf("items = %v, want [b c]", got)
	}
	if next.TotalPage != 4 || next.CurrentPage != 2 {
		t.Fatalf("pages = %d/%d, want 2/4", next.CurrentPage, next.TotalPage)
	}
	if got := ids(prev); !reflect.DeepEqual(got, []string{"a"}) {
		t.Fatalf("previous page mutated: %v", got)
	}
}

func TestReduce_InsertOptimisticRecomputesTotal(t *testing.T) {
	tests := []struct {
		name     string
		existing int
		pageSize int
		want     int
	}{
		{"fits on page", 3, 5, 1},
		{"fills page", 4, 5, 1},
		{"spills to next page", 5, 5, 2},
		{"empty page", 0, 10, 1},
		{"size fifteen", 15, 15, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prev := Page{CurrentPage: 3, TotalPage: 9}
			for i := 0; i < tt.existing; i++ {
				prev.Items = append(prev.Items, book(string(rune('a'+i))))
			}
			next := Reduce(prev, InsertOptimistic{Book: book("tmp"), PageSize: tt.pageSize})

			if len(next.Items) != tt.existing+1 {
				t.Fatalf("len(items) = %d, want %d", len(next.Items), tt.existing+1)
			}
			if next.Items[len(next.Items)-1].ID != "tmp" {
				t.Fatalf("last item = %q, want tmp", next.Items[len(next.Items)-1].ID)
			}
			if next.TotalPage != tt.want {
				t.Fatalf("TotalPage = %d, want %d", next.TotalPage, tt.want)
			}
			if next.CurrentPage != 3 {
				t.Fatalf("CurrentPage = %d, want 3", next.CurrentPage)
			}
		})
	}
}

func TestReduce_RevertRemovesOnlyMatchingID(t *testing.T) {
	prev := Page{Items: []books.Book{book("a"), book("tmp"), book("b")}, CurrentPage: 2, TotalPage: 2}
	next := Reduce(prev, RevertOptimistic{ID: "tmp"})

	if got := ids(next); !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Fatalf("items = %v, want [a b]", got)
	}
	if next.TotalPage != 2 || next.CurrentPage != 2 {
		t.Fatalf("pages = %d/%d, want 2/2", next.CurrentPage, next.TotalPage)
	}

	same := Reduce(next, RevertOptimistic{ID: "missing"})
	if got := ids(same); !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Fatalf("revert of unknown id changed items: %v", got)
	}
}

func TestReduce_InsertThenRevertRestoresItems(t *testing.T) {
	prev := Page{Items: []books.Book{book("a"), book("b")}, CurrentPage: 1, TotalPage: 1}
	next := Reduce(Reduce(prev, InsertOptimistic{Book: book("tmp"), PageSize: 5}), RevertOptimistic{ID: "tmp"})

	if !reflect.DeepEqual(ids(next), ids(prev)) {
		t.Fatalf("items = %v, want %v", ids(next), ids(prev))
	}
}

func TestStore_SnapshotClone(t *testing.T) {
	var s Store

	before := time.Now()
	s.Apply(SetPage{Items: []books.Book{book("a"), book("b")}, TotalPage: 1, CurrentPage: 1})

	snap := s.Snapshot()
	if len(snap.Page.Items) != 2 {
		t.Fatalf("snapshot items = %d, want 2", len(snap.Page.Items))
	}
	if snap.LastUpdated.Before(before) {
		t.Fatalf("LastUpdated = %v, want >= %v", snap.LastUpdated, before)
	}

	snap.Page.Items[0].ID = "mutated"
	if got := s.Page().Items[0].ID; got != "a" {
		t.Fatalf("Snapshot should clone items; got id %q want a", got)
	}
}

func TestStore_SnapshotClonesError(t *testing.T) {
	var s Store
	origErr := errors.New("boom")
	s.SetError(CauseCreatingBook, origErr)

	snap := s.Snapshot()
	if snap.Flags.ErrorCause != CauseCreatingBook {
		t.Fatalf("ErrorCause = %q, want %q", snap.Flags.ErrorCause, CauseCreatingBook)
	}
	if !errors.Is(snap.Flags.LastError, origErr) {
		t.Fatalf("LastError = %v, want wrapping boom", snap.Flags.LastError)
	}
	if reflect.ValueOf(snap.Flags.LastError).Pointer() == reflect.ValueOf(origErr).Pointer() {
		t.Fatalf("Snapshot should clone error instance")
	}

	s.ClearError()
	if f := s.Flags(); f.ErrorCause != CauseNone || f.LastError != nil {
		t.Fatalf("flags after ClearError = %+v, want cleared", f)
	}
}

func TestStore_StaleRefreshIsDiscarded(t *testing.T) {
	var s Store

	older := s.BeginRefresh()
	newer := s.BeginRefresh()
	if !s.Flags().Refreshing {
		t.Fatal("Refreshing = false, want true with two refreshes in flight")
	}

	if !s.CommitRefresh(newer, SetPage{Items: []books.Book{book("new")}, TotalPage: 1, CurrentPage: 2}) {
		t.Fatal("CommitRefresh(newer) = false, want true")
	}
	if !s.Flags().Refreshing {
		t.Fatal("Refreshing = false, want true while older refresh is in flight")
	}

	if s.CommitRefresh(older, SetPage{Items: []books.Book{book("old")}, TotalPage: 1, CurrentPage: 1}) {
		t.Fatal("CommitRefresh(older) = true, want false")
	}
	if got := ids(s.Page()); !reflect.DeepEqual(got, []string{"new"}) {
		t.Fatalf("items = %v, want [new]", got)
	}
	if s.Page().CurrentPage != 2 {
		t.Fatalf("CurrentPage = %d, want 2", s.Page().CurrentPage)
	}
	if s.Flags().Refreshing {
		t.Fatal("Refreshing = true, want false after all refreshes finished")
	}
}

func TestStore_FailRefresh(t *testing.T) {
	var s Store
	s.Apply(SetPage{Items: []books.Book{book("a")}, TotalPage: 1, CurrentPage: 1})

	stale := s.BeginRefresh()
	latest := s.BeginRefresh()
	s.FailRefresh(stale, CauseFetchingBooks, errors.New("stale"))
	if s.Flags().ErrorCause != CauseNone {
		t.Fatalf("ErrorCause = %q, want none for stale failure", s.Flags().ErrorCause)
	}

	s.FailRefresh(latest, CauseFetchingBooks, errors.New("down"))
	f := s.Flags()
	if f.ErrorCause != CauseFetchingBooks {
		t.Fatalf("ErrorCause = %q, want %q", f.ErrorCause, CauseFetchingBooks)
	}
	if f.Refreshing {
		t.Fatal("Refreshing = true, want false")
	}
	if got := ids(s.Page()); !reflect.DeepEqual(got, []string{"a"}) {
		t.Fatalf("failed refresh changed items: %v", got)
	}

	s.ClearError()
	quiet := s.BeginRefresh()
	s.FailRefresh(quiet, CauseNone, errors.New("poll failed"))
	if s.Flags().ErrorCause != CauseNone {
		t.Fatalf("ErrorCause = %q, want none for silent failure", s.Flags().ErrorCause)
	}
}

func TestStore_CreatingCountsOverlappingCalls(t *testing.T) {
	var s Store
	s.BeginCreate()
	s.BeginCreate()

	s.EndCreate()
	if !s.Flags().Creating {
		t.Fatal("Creating cleared while a create is still in flight")
	}
	s.EndCreate()
	if s.Flags().Creating {
		t.Fatal("Creating still set after every create ended")
	}

	s.EndCreate()
	s.BeginCreate()
	if !s.Flags().Creating {
		t.Fatal("extra EndCreate must not drive the count negative")
	}
}

func TestCause_Message(t *testing.T) {
	if got := CauseFetchingBooks.Message(); got != "Error occurred while fetching books" {
		t.Fatalf("Message() = %q", got)
	}
	if got := CauseCreatingBook.Message(); got != "Error occurred while creating book" {
		t.Fatalf("Message() = %q", got)
	}
	if got := CauseNone.Message(); got != "" {
		t.Fatalf("Message() = %q, want empty", got)
	}
}
