package state

import (
	"math"

	"github.com/five82/bookdash/internal/books"
)

// Page is the slice of the catalog currently shown in the dashboard.
type Page struct {
	Items       []books.Book
	CurrentPage int
	TotalPage   int
}

// Action is one of SetPage, InsertOptimistic or RevertOptimistic.
type Action interface {
	apply(Page) Page
}

// SetPage replaces the page wholesale with a server response.
type SetPage struct {
	Items       []books.Book
	TotalPage   int
	CurrentPage int
}

// InsertOptimistic appends a locally created book before the API confirms it.
type InsertOptimistic struct {
	Book     books.Book
	PageSize int
}

// RevertOptimistic removes the optimistic book with the given temporary id.
type RevertOptimistic struct {
	ID string
}

// Reduce applies a to p and returns the new page. p is not modified.
func Reduce(p Page, a Action) Page {
	if a == nil {
		return p
	}
	return a.apply(p)
}

func (a SetPage) apply(Page) Page {
	return Page{
		Items:       cloneBooks(a.Items),
		TotalPage:   a.TotalPage,
		CurrentPage: a.CurrentPage,
	}
}

func (a InsertOptimistic) apply(p Page) Page {
	items := make([]books.Book, 0, len(p.Items)+1)
	items = append(items, p.Items...)
	items = append(items, a.Book)

	size := a.PageSize
	if size <= 0 {
		size = 1
	}
	return Page{
		Items:       items,
		TotalPage:   int(math.Ceil(float64(len(p.Items)+1) / float64(size))),
		CurrentPage: p.CurrentPage,
	}
}

func (a RevertOptimistic) apply(p Page) Page {
	items := make([]books.Book, 0, len(p.Items))
	for _, b := range p.Items {
		if b.ID != a.ID {
			items = append(items, b)
		}
	}
	return Page{
		Items:       items,
		TotalPage:   p.TotalPage,
		CurrentPage: p.CurrentPage,
	}
}

func cloneBooks(items []books.Book) []books.Book {
	if len(items) == 0 {
		return nil
	}
	dup := make([]books.Book, len(items))
	copy(dup, items)
	return dup
}
