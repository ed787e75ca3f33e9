// Package api provides HTTP handlers for the API.
package api

import (
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/libris-project/libris-api/internal/api/shared"
	"github.com/libris-project/libris-api/internal/domain"
)

// Request payloads. Each struct is the declarative ruleset for one resource
// and operation mode: create requests require their fields, update requests
// use pointers with omitnil so an absent field is left alone while a present
// one must still satisfy its constraints.

// parseDate parses a wire date already accepted by the pastdate rule.
func parseDate(s string) time.Time {
	t, _ := time.Parse(shared.DateLayout, s)
	return t
}

// CreateBookRequest defines the payload for creating a book.
type CreateBookRequest struct {
	Title         string   `json:"title"         validate:"required,max=200"`
	Author        string   `json:"author"        validate:"required,max=100"`
	ISBN          string   `json:"isbn"          validate:"required,isbn"`
	Genre         string   `json:"genre"         validate:"required,genre"`
	PublishedDate string   `json:"publishedDate" validate:"required,pastdate"`
	Pages         int      `json:"pages"         validate:"required,gte=1,lte=10000"`
	Description   string   `json:"description"   validate:"required,min=10,max=1000"`
	Publisher     string   `json:"publisher"     validate:"required,max=100"`
	Language      string   `json:"language"      validate:"required"`
	Price         *float64 `json:"price"         validate:"required,gte=0"`
	StockQuantity *int     `json:"stockQuantity" validate:"required,gte=0"`
	InStock       *bool    `json:"inStock"`      // accepted, always overridden
}

// Normalize implements shared.Normalizer.
func (r *CreateBookRequest) Normalize() {
	r.Title = strings.TrimSpace(r.Title)
	r.Author = strings.TrimSpace(r.Author)
	r.ISBN = strings.TrimSpace(r.ISBN)
	r.Description = strings.TrimSpace(r.Description)
	r.Publisher = strings.TrimSpace(r.Publisher)
	r.Language = strings.TrimSpace(r.Language)
	if r.Genre == "" {
		r.Genre = domain.DefaultGenre
	}
	if r.Language == "" {
		r.Language = domain.DefaultLanguage
	}
	if r.Price != nil {
		*r.Price = domain.RoundPrice(*r.Price)
	}
}

// ToBook builds the domain record. InStock is derived from the stock
// quantity regardless of any client-supplied value.
func (r *CreateBookRequest) ToBook() *domain.Book {
	now := time.Now().UTC()
	book := &domain.Book{
		ID:            uuid.New(),
		Title:         r.Title,
		Author:        r.Author,
		ISBN:          r.ISBN,
		Genre:         r.Genre,
		PublishedDate: parseDate(r.PublishedDate),
		Pages:         r.Pages,
		Description:   r.Description,
		Publisher:     r.Publisher,
		Language:      r.Language,
		Price:         *r.Price,
		StockQuantity: *r.StockQuantity,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	book.RecomputeStock()
	return book
}

// UpdateBookRequest defines the payload for a partial book update.
type UpdateBookRequest struct {
	Title         *string  `json:"title"         validate:"omitnil,min=1,max=200"`
	Author        *string  `json:"author"        validate:"omitnil,min=1,max=100"`
	ISBN          *string  `json:"isbn"          validate:"omitnil,isbn"`
	Genre         *string  `json:"genre"         validate:"omitnil,genre"`
	PublishedDate *string  `json:"publishedDate" validate:"omitnil,pastdate"`
	Pages         *int     `json:"pages"         validate:"omitnil,gte=1,lte=10000"`
	Description   *string  `json:"description"   validate:"omitnil,min=10,max=1000"`
	Publisher     *string  `json:"publisher"     validate:"omitnil,min=1,max=100"`
	Language      *string  `json:"language"      validate:"omitnil,min=1"`
	Price         *float64 `json:"price"         validate:"omitnil,gte=0"`
	StockQuantity *int     `json:"stockQuantity" validate:"omitnil,gte=0"`
	InStock       *bool    `json:"inStock"`      // accepted, always overridden
}

// Normalize implements shared.Normalizer.
func (r *UpdateBookRequest) Normalize() {
	trim := func(s *string) {
		if s != nil {
			*s = strings.TrimSpace(*s)
		}
	}
	trim(r.Title)
	trim(r.Author)
	trim(r.ISBN)
	trim(r.Description)
	trim(r.Publisher)
	trim(r.Language)
	if r.Price != nil {
		*r.Price = domain.RoundPrice(*r.Price)
	}
}

// Apply copies the present fields onto the book and re-derives its computed
// fields.
func (r *UpdateBookRequest) Apply(book *domain.Book) {
	if r.Title != nil {
		book.Title = *r.Title
	}
	if r.Author != nil {
		book.Author = *r.Author
	}
	if r.ISBN != nil {
		book.ISBN = *r.ISBN
	}
	if r.Genre != nil {
		book.Genre = *r.Genre
	}
	if r.PublishedDate != nil {
		book.PublishedDate = parseDate(*r.PublishedDate)
	}
	if r.Pages != nil {
		book.Pages = *r.Pages
	}
	if r.Description != nil {
		book.Description = *r.Description
	}
	if r.Publisher != nil {
		book.Publisher = *r.Publisher
	}
	if r.Language != nil {
		book.Language = *r.Language
	}
	if r.Price != nil {
		book.Price = *r.Price
	}
	if r.StockQuantity != nil {
		book.StockQuantity = *r.StockQuantity
	}
	book.RecomputeStock()
	book.UpdatedAt = time.Now().UTC()
}

// CreateAuthorRequest defines the payload for creating an author.
type CreateAuthorRequest struct {
	FirstName   string  `json:"firstName"   validate:"required,max=50"`
	LastName    string  `json:"lastName"    validate:"required,max=50"`
	Email       string  `json:"email"       validate:"required,email"`
	Biography   string  `json:"biography"   validate:"omitempty,max=2000"`
	BirthDate   *string `json:"birthDate"   validate:"omitnil,pastdate"`
	Nationality string  `json:"nationality" validate:"omitempty,max=50"`
	Website     string  `json:"website"     validate:"omitempty,http_url"`
	IsActive    *bool   `json:"isActive"`
}

// Normalize implements shared.Normalizer.
func (r *CreateAuthorRequest) Normalize() {
	r.FirstName = strings.TrimSpace(r.FirstName)
	r.LastName = strings.TrimSpace(r.LastName)
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	r.Biography = strings.TrimSpace(r.Biography)
	r.Nationality = strings.TrimSpace(r.Nationality)
	r.Website = strings.TrimSpace(r.Website)
}

// ToAuthor builds the domain record.
func (r *CreateAuthorRequest) ToAuthor() *domain.Author {
	now := time.Now().UTC()
	author := &domain.Author{
		ID:          uuid.New(),
		FirstName:   r.FirstName,
		LastName:    r.LastName,
		Email:       r.Email,
		Biography:   r.Biography,
		Nationality: r.Nationality,
		Website:     r.Website,
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if r.BirthDate != nil {
		t := parseDate(*r.BirthDate)
		author.BirthDate = &t
	}
	if r.IsActive != nil {
		author.IsActive = *r.IsActive
	}
	return author
}

// UpdateAuthorRequest defines the payload for a partial author update.
type UpdateAuthorRequest struct {
	FirstName   *string `json:"firstName"   validate:"omitnil,min=1,max=50"`
	LastName    *string `json:"lastName"    validate:"omitnil,min=1,max=50"`
	Email       *string `json:"email"       validate:"omitnil,email"`
	Biography   *string `json:"biography"   validate:"omitnil,max=2000"`
	BirthDate   *string `json:"birthDate"   validate:"omitnil,pastdate"`
	Nationality *string `json:"nationality" validate:"omitnil,max=50"`
	Website     *string `json:"website"     validate:"omitnil,http_url"`
	IsActive    *bool   `json:"isActive"`
}

// Normalize implements shared.Normalizer.
func (r *UpdateAuthorRequest) Normalize() {
	trim := func(s *string) {
		if s != nil {
			*s = strings.TrimSpace(*s)
		}
	}
	trim(r.FirstName)
	trim(r.LastName)
	trim(r.Biography)
	trim(r.Nationality)
	trim(r.Website)
	if r.Email != nil {
		*r.Email = strings.ToLower(strings.TrimSpace(*r.Email))
	}
}

// Apply copies the present fields onto the author.
func (r *UpdateAuthorRequest) Apply(author *domain.Author) {
	if r.FirstName != nil {
		author.FirstName = *r.FirstName
	}
	if r.LastName != nil {
		author.LastName = *r.LastName
	}
	if r.Email != nil {
		author.Email = *r.Email
	}
	if r.Biography != nil {
		author.Biography = *r.Biography
	}
	if r.BirthDate != nil {
		t := parseDate(*r.BirthDate)
		author.BirthDate = &t
	}
	if r.Nationality != nil {
		author.Nationality = *r.Nationality
	}
	if r.Website != nil {
		author.Website = *r.Website
	}
	if r.IsActive != nil {
		author.IsActive = *r.IsActive
	}
	author.UpdatedAt = time.Now().UTC()
}

// RegisterRequest defines the payload for the user registration endpoint.
// ConfirmPassword exists only at the transport boundary; it is never
// persisted.
type RegisterRequest struct {
	Name            string `json:"name"            validate:"required,min=2,max=50"`
	Email           string `json:"email"           validate:"required,email"`
	Password        string `json:"password"        validate:"required,min=6,max=72"`
	ConfirmPassword string `json:"confirmPassword" validate:"required,eqfield=Password"`
}

// Normalize implements shared.Normalizer.
func (r *RegisterRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
}

// LoginRequest defines the payload for the user login endpoint.
type LoginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Normalize implements shared.Normalizer.
func (r *LoginRequest) Normalize() {
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
}

// UpdateProfileRequest defines the payload for the profile update endpoint.
type UpdateProfileRequest struct {
	Name  *string `json:"name"  validate:"omitnil,min=2,max=50"`
	Email *string `json:"email" validate:"omitnil,email"`
}

// Normalize implements shared.Normalizer.
func (r *UpdateProfileRequest) Normalize() {
	if r.Name != nil {
		*r.Name = strings.TrimSpace(*r.Name)
	}
	if r.Email != nil {
		*r.Email = strings.ToLower(strings.TrimSpace(*r.Email))
	}
}

// ChangePasswordRequest defines the payload for the password change endpoint.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword"     validate:"required,min=6,max=72"`
}

// Query rulesets for list endpoints. ParseQuery applies defaults and rejects
// malformed numerics; the validator tags then bound the parsed values.

// PageQuery carries bare pagination for the fixed-filter listings
// (/books/genre/{genre}, /books/available, /authors/active, ...).
type PageQuery struct {
	Page  int `json:"page"  validate:"gte=1"`
	Limit int `json:"limit" validate:"gte=1,lte=100"`
}

// ParseQuery implements shared.QueryParser.
func (q *PageQuery) ParseQuery(values url.Values) error {
	var err error
	q.Page, err = intParam(values, "page", 1)
	if err != nil {
		return err
	}
	q.Limit, err = intParam(values, "limit", 10)
	return err
}

// ListBooksQuery is the query ruleset for GET /books.
type ListBooksQuery struct {
	Page   int    `json:"page"   validate:"gte=1"`
	Limit  int    `json:"limit"  validate:"gte=1,lte=100"`
	Genre  string `json:"genre"  validate:"omitempty,genre"`
	SortBy string `json:"sortBy" validate:"oneof=title author publishedDate price createdAt"`
	Order  string `json:"order"  validate:"oneof=asc desc"`
	Search string `json:"search"`
}

// ParseQuery implements shared.QueryParser.
func (q *ListBooksQuery) ParseQuery(values url.Values) error {
	var err error
	q.Page, err = intParam(values, "page", 1)
	if err != nil {
		return err
	}
	q.Limit, err = intParam(values, "limit", 10)
	if err != nil {
		return err
	}
	q.Genre = values.Get("genre")
	q.SortBy = stringParam(values, "sortBy", "createdAt")
	q.Order = stringParam(values, "order", "desc")
	q.Search = values.Get("search")
	return nil
}

// ListAuthorsQuery is the query ruleset for GET /authors.
type ListAuthorsQuery struct {
	Page        int    `json:"page"        validate:"gte=1"`
	Limit       int    `json:"limit"       validate:"gte=1,lte=100"`
	Nationality string `json:"nationality" validate:"omitempty,max=50"`
	IsActive    *bool  `json:"isActive"`
	SortBy      string `json:"sortBy"      validate:"oneof=firstName lastName birthDate nationality createdAt"`
	Order       string `json:"order"       validate:"oneof=asc desc"`
	Search      string `json:"search"`
}

// ParseQuery implements shared.QueryParser.
func (q *ListAuthorsQuery) ParseQuery(values url.Values) error {
	var err error
	q.Page, err = intParam(values, "page", 1)
	if err != nil {
		return err
	}
	q.Limit, err = intParam(values, "limit", 10)
	if err != nil {
		return err
	}
	q.Nationality = values.Get("nationality")
	q.SortBy = stringParam(values, "sortBy", "createdAt")
	q.Order = stringParam(values, "order", "desc")
	q.Search = values.Get("search")

	if raw := values.Get("isActive"); raw != "" {
		active, err := strconv.ParseBool(raw)
		if err != nil {
			return domain.NewValidationError("isActive", "must be a boolean value", nil)
		}
		q.IsActive = &active
	}
	return nil
}

func intParam(values url.Values, name string, def int) (int, error) {
	raw := values.Get(name)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, domain.NewValidationError(name, "must be an integer", nil)
	}
	return n, nil
}

func stringParam(values url.Values, name, def string) string {
	if raw := values.Get(name); raw != "" {
		return raw
	}
	return def
}
