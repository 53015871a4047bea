package books

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func validatorInstance() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

// FieldError describes a single invalid form field.
type FieldError struct {
	Field   string
	Message string
}

// ValidationError collects every invalid field of a request.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Message)
	}
	return "invalid book: " + strings.Join(parts, "; ")
}

// Validate checks the payload the same way the create form does.
func (r CreateBookRequest) Validate() error {
	return toValidationError(validatorInstance().Struct(r))
}

// Validate checks the payload including the book id.
func (r UpdateBookRequest) Validate() error {
	return toValidationError(validatorInstance().Struct(r))
}

func toValidationError(err error) error {
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	out := &ValidationError{Fields: make([]FieldError, 0, len(verrs))}
	for _, fe := range verrs {
		out.Fields = append(out.Fields, FieldError{Field: fe.Field(), Message: fieldMessage(fe)})
	}
	return out
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Field() {
	case "Title":
		return "Title is required"
	case "Author":
		return "Author is required"
	case "PublicationYear":
		if fe.Tag() == "max" {
			return "Publication year must be at most 4 characters"
		}
		return "Publication year is required"
	case "CoverURL":
		return "Invalid cover image URL"
	case "ISBN":
		return "Invalid ISBN"
	case "ID":
		return "Book id is required"
	}
	return fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag())
}
