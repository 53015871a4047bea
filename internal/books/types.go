package books

import "time"

// Book mirrors the payload returned by /books and /book/{id}.
type Book struct {
	ID              string     `json:"id,omitempty"`
	CoverURL        string     `json:"coverUrl,omitempty"`
	ISBN            string     `json:"isbn,omitempty"`
	Title           string     `json:"title"`
	Author          string     `json:"author"`
	PublicationYear string     `json:"publicationYear"`
	CreatedAt       *time.Time `json:"createdAt,omitempty"`
	UpdatedAt       *time.Time `json:"updatedAt,omitempty"`
	DeletedAt       *time.Time `json:"deletedAt,omitempty"`
}

// IsZero reports whether b carries no data, as returned alongside an error.
func (b Book) IsZero() bool {
	return b.ID == "" && b.Title == "" && b.Author == "" && b.PublicationYear == "" &&
		b.CoverURL == "" && b.ISBN == "" && b.CreatedAt == nil
}

// CreateBookRequest is the POST /book body. It has no id or timestamp fields;
// those are assigned by the API.
type CreateBookRequest struct {
	CoverURL        string `json:"coverUrl" validate:"omitempty,url"`
	ISBN            string `json:"isbn" validate:"omitempty,isbn"`
	Title           string `json:"title" validate:"required,min=1"`
	Author          string `json:"author" validate:"required,min=1"`
	PublicationYear string `json:"publicationYear" validate:"required,min=1,max=4"`
}

// UpdateBookRequest is the PUT /book/{id} body.
type UpdateBookRequest struct {
	CreateBookRequest
	ID string `json:"id" validate:"required"`
}

// ListParams configures GET /books. Zero values are treated as unset.
type ListParams struct {
	Page     int
	PageSize int
	Search   string
}

// ListResponse mirrors GET /books.
type ListResponse struct {
	Books     []Book `json:"books"`
	TotalPage int    `json:"totalPage"`
}

type bookEnvelope struct {
	Book Book `json:"book"`
}

// RequestFromBook builds an update payload from a stored book, dropping
// server-managed fields.
func RequestFromBook(b Book) UpdateBookRequest {
	return UpdateBookRequest{
		ID: b.ID,
		CreateBookRequest: CreateBookRequest{
			CoverURL:        b.CoverURL,
			ISBN:            b.ISBN,
			Title:           b.Title,
			Author:          b.Author,
			PublicationYear: b.PublicationYear,
		},
	}
}
