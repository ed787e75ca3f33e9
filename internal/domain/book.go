package domain

import (
	"math"
	"time"

	"github.com/google/uuid"
)

// Genres is the fixed set of genres a book may belong to.
var Genres = []string{
	"Fiction",
	"Non-Fiction",
	"Mystery",
	"Romance",
	"Science Fiction",
	"Fantasy",
	"Biography",
	"History",
	"Self-Help",
	"Technology",
	"Other",
}

// DefaultGenre is used when a book is created without an explicit genre.
const DefaultGenre = "Other"

// DefaultLanguage is used when a book is created without an explicit language.
const DefaultLanguage = "English"

// IsValidGenre reports whether g is one of the fixed catalog genres.
func IsValidGenre(g string) bool {
	for _, genre := range Genres {
		if genre == g {
			return true
		}
	}
	return false
}

// Book represents a single title in the catalog.
//
// InStock is derived from StockQuantity and must never be taken from client
// input; RecomputeStock is called immediately before every persist.
type Book struct {
	ID            uuid.UUID `json:"id"`
	Title         string    `json:"title"`
	Author        string    `json:"author"`
	ISBN          string    `json:"isbn"`
	Genre         string    `json:"genre"`
	PublishedDate time.Time `json:"publishedDate"`
	Pages         int       `json:"pages"`
	Description   string    `json:"description"`
	Publisher     string    `json:"publisher"`
	Language      string    `json:"language"`
	Price         float64   `json:"price"`
	InStock       bool      `json:"inStock"`
	StockQuantity int       `json:"stockQuantity"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// RecomputeStock re-derives the InStock flag from the stock quantity.
// Called before every persist so a client-supplied value never survives.
func (b *Book) RecomputeStock() {
	b.InStock = b.StockQuantity > 0
}

// IsAvailable reports whether the book can currently be purchased.
func (b *Book) IsAvailable() bool {
	return b.InStock && b.StockQuantity > 0
}

// RoundPrice rounds a price to two decimal places, matching how prices
// are stored.
func RoundPrice(price float64) float64 {
	return math.Round(price*100) / 100
}
