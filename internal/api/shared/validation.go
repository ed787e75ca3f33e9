package shared

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/libris-project/libris-api/internal/domain"
)

// DateLayout is the wire format for date fields (publishedDate, birthDate).
const DateLayout = "2006-01-02"

// isbnChars matches the characters allowed in an ISBN after the optional
// "ISBN:"/"ISBN-10:"/"ISBN-13:" prefix is removed.
var isbnPrefix = regexp.MustCompile(`^ISBN(?:-1[03])?:?\s*`)

// ValidISBN reports whether s is a structurally valid 10- or 13-digit ISBN.
// Hyphens, spaces, and the conventional ISBN prefix are tolerated; a
// 10-digit ISBN may end in X.
func ValidISBN(s string) bool {
	s = isbnPrefix.ReplaceAllString(strings.TrimSpace(s), "")
	cleaned := strings.Map(func(r rune) rune {
		if r == '-' || r == ' ' {
			return -1
		}
		return r
	}, s)

	switch len(cleaned) {
	case 10:
		for i, r := range cleaned {
			if r >= '0' && r <= '9' {
				continue
			}
			// Check digit of an ISBN-10 may be X.
			if i == 9 && (r == 'X' || r == 'x') {
				continue
			}
			return false
		}
		return true
	case 13:
		if !strings.HasPrefix(cleaned, "978") && !strings.HasPrefix(cleaned, "979") {
			return false
		}
		for _, r := range cleaned {
			if r < '0' || r > '9' {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// NewValidator builds the validator instance used by the request pipeline.
// It registers the catalog's custom rules and reports field names by their
// json tag so error envelopes match the wire format.
func NewValidator() *validator.Validate {
	v := validator.New()

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	// isbn: structurally valid 10/13-digit ISBN.
	_ = v.RegisterValidation("isbn", func(fl validator.FieldLevel) bool {
		return ValidISBN(fl.Field().String())
	})

	// pastdate: an ISO date that is not in the future.
	_ = v.RegisterValidation("pastdate", func(fl validator.FieldLevel) bool {
		t, err := time.Parse(DateLayout, fl.Field().String())
		if err != nil {
			return false
		}
		return !t.After(time.Now())
	})

	// genre: one of the fixed catalog genres.
	_ = v.RegisterValidation("genre", func(fl validator.FieldLevel) bool {
		return domain.IsValidGenre(fl.Field().String())
	})

	return v
}

// TranslateValidationErrors converts a validator error into field-level
// errors with human-readable reasons. Non-validator errors collapse into a
// single unnamed field error.
func TranslateValidationErrors(err error) []FieldError {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []FieldError{{Field: "", Message: "invalid request"}}
	}

	fieldErrors := make([]FieldError, 0, len(verrs))
	for _, fe := range verrs {
		fieldErrors = append(fieldErrors, FieldError{
			Field:   fe.Field(),
			Message: messageForTag(fe),
		})
	}
	return fieldErrors
}

func messageForTag(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must be at least %s characters", fe.Param())
		}
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("cannot exceed %s characters", fe.Param())
		}
		return fmt.Sprintf("cannot exceed %s", fe.Param())
	case "gte":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "lte":
		return fmt.Sprintf("cannot exceed %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of: %s", strings.ReplaceAll(fe.Param(), " ", ", "))
	case "isbn":
		return "must be a valid ISBN"
	case "pastdate":
		return "must be a valid date and cannot be in the future"
	case "genre":
		return "is not a valid genre"
	case "http_url":
		return "must be a valid URL"
	case "eqfield":
		return "must match " + fe.Param()
	default:
		return "is invalid"
	}
}
