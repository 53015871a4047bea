package books

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateBookRequest_Validate(t *testing.T) {
	require.NoError(t, exampleCreate.Validate())

	minimal := CreateBookRequest{Title: "Dune", Author: "Frank Herbert", PublicationYear: "1965"}
	assert.NoError(t, minimal.Validate(), "cover and isbn are optional")

	tests := []struct {
		name    string
		mutate  func(*CreateBookRequest)
		field   string
		message string
	}{
		{"missing title", func(r *CreateBookRequest) { r.Title = "" }, "Title", "Title is required"},
		{"missing author", func(r *CreateBookRequest) { r.Author = "" }, "Author", "Author is required"},
		{"missing year", func(r *CreateBookRequest) { r.PublicationYear = "" }, "PublicationYear", "Publication year is required"},
		{"year too long", func(r *CreateBookRequest) { r.PublicationYear = "20250" }, "PublicationYear", "Publication year must be at most 4 characters"},
		{"bad cover", func(r *CreateBookRequest) { r.CoverURL = "not a url" }, "CoverURL", "Invalid cover image URL"},
		{"bad isbn checksum", func(r *CreateBookRequest) { r.ISBN = "978-0-928061-84-1" }, "ISBN", "Invalid ISBN"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := exampleCreate
			tt.mutate(&req)

			err := req.Validate()
			var verr *ValidationError
			require.True(t, errors.As(err, &verr), "got %v", err)
			require.Len(t, verr.Fields, 1)
			assert.Equal(t, tt.field, verr.Fields[0].Field)
			assert.Equal(t, tt.message, verr.Fields[0].Message)
		})
	}
}

func TestUpdateBookRequest_ValidateRequiresID(t *testing.T) {
	req := UpdateBookRequest{CreateBookRequest: exampleCreate}
	err := req.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Book id is required")

	req.ID = exampleBook().ID
	assert.NoError(t, req.Validate())
}

func TestStatusCode(t *testing.T) {
	httpErr := &Error{Op: "GetBookByID", Kind: KindHTTP, StatusCode: 404, Err: errors.New("missing")}
	assert.Equal(t, 404, StatusCode(httpErr))
	assert.Equal(t, 404, StatusCode(fmt.Errorf("view: %w", httpErr)))
	assert.True(t, IsNotFound(httpErr))

	transportErr := &Error{Op: "GetBooks", Kind: KindTransport, Err: errors.New("refused")}
	assert.Zero(t, StatusCode(transportErr))
	assert.Zero(t, StatusCode(nil))
	assert.Equal(t, "transport_error", outcome(transportErr))
	assert.Equal(t, "ok", outcome(nil))
	assert.ErrorContains(t, transportErr, "refused")
}
