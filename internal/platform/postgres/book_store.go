package postgres

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/libris-project/libris-api/internal/domain"
	"github.com/libris-project/libris-api/internal/store"
)

// bookSortColumns maps whitelisted sort keys to their column names.
// Sort keys are validated at the API boundary; the map keeps raw input
// out of ORDER BY regardless.
var bookSortColumns = map[string]string{
	"title":         "title",
	"author":        "author",
	"publishedDate": "published_date",
	"price":         "price",
	"createdAt":     "created_at",
}

// PostgresBookStore implements the store.BookStore interface
// using a PostgreSQL database as the storage backend.
type PostgresBookStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresBookStore creates a new PostgreSQL implementation of the
// BookStore interface. It accepts a database connection or transaction that
// should be initialized and managed by the caller.
func NewPostgresBookStore(db store.DBTX, logger *slog.Logger) *PostgresBookStore {
	if db == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresBookStore{
		db:     db,
		logger: logger.With(slog.String("component", "book_store")),
	}
}

// Ensure PostgresBookStore implements store.BookStore interface
var _ store.BookStore = (*PostgresBookStore)(nil)

const bookColumns = `id, title, author, isbn, genre, published_date, pages,
	description, publisher, language, price, in_stock, stock_quantity,
	created_at, updated_at`

// bookFilter renders the WHERE clause for the given params and returns it
// with its bind arguments.
func bookFilter(params store.ListBooksParams) (string, []any) {
	var conds []string
	var args []any

	if params.Genre != "" {
		args = append(args, params.Genre)
		conds = append(conds, fmt.Sprintf("genre = $%d", len(args)))
	}
	if params.AvailableOnly {
		conds = append(conds, "in_stock AND stock_quantity > 0")
	}
	if params.Search != "" {
		args = append(args, "%"+params.Search+"%")
		n := len(args)
		conds = append(conds, fmt.Sprintf(
			"(title ILIKE $%d OR author ILIKE $%d OR description ILIKE $%d)", n, n, n))
	}

	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// List implements store.BookStore.List
func (s *PostgresBookStore) List(
	ctx context.Context,
	params store.ListBooksParams,
) (*store.Page[domain.Book], error) {
	where, args := bookFilter(params)

	var total int
	countQuery := "SELECT COUNT(*) FROM books" + where
	if err := s.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, MapError(err)
	}

	column, ok := bookSortColumns[params.SortBy]
	if !ok {
		column = "created_at"
	}
	direction := "DESC"
	if params.Order == store.OrderAsc {
		direction = "ASC"
	}

	query := fmt.Sprintf(
		"SELECT %s FROM books%s ORDER BY %s %s LIMIT $%d OFFSET $%d",
		bookColumns, where, column, direction, len(args)+1, len(args)+2)
	args = append(args, params.Limit, params.Offset())

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, MapError(err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			s.logger.Warn("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	books := make([]domain.Book, 0, params.Limit)
	for rows.Next() {
		var book domain.Book
		if err := scanBook(rows, &book); err != nil {
			return nil, MapError(err)
		}
		books = append(books, book)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}

	return &store.Page[domain.Book]{Items: books, Total: total}, nil
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanBook(row rowScanner, book *domain.Book) error {
	return row.Scan(
		&book.ID,
		&book.Title,
		&book.Author,
		&book.ISBN,
		&book.Genre,
		&book.PublishedDate,
		&book.Pages,
		&book.Description,
		&book.Publisher,
		&book.Language,
		&book.Price,
		&book.InStock,
		&book.StockQuantity,
		&book.CreatedAt,
		&book.UpdatedAt,
	)
}

// GetByID implements store.BookStore.GetByID
func (s *PostgresBookStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Book, error) {
	query := fmt.Sprintf("SELECT %s FROM books WHERE id = $1", bookColumns)

	var book domain.Book
	if err := scanBook(s.db.QueryRowContext(ctx, query, id), &book); err != nil {
		if IsNotFoundError(MapError(err)) {
			return nil, store.ErrBookNotFound
		}
		return nil, MapError(err)
	}
	return &book, nil
}

// Create implements store.BookStore.Create
func (s *PostgresBookStore) Create(ctx context.Context, book *domain.Book) error {
	query := `INSERT INTO books (id, title, author, isbn, genre, published_date,
		pages, description, publisher, language, price, in_stock,
		stock_quantity, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`

	_, err := s.db.ExecContext(ctx, query,
		book.ID, book.Title, book.Author, book.ISBN, book.Genre,
		book.PublishedDate, book.Pages, book.Description, book.Publisher,
		book.Language, book.Price, book.InStock, book.StockQuantity,
		book.CreatedAt, book.UpdatedAt)
	if err != nil {
		if IsUniqueViolation(err) {
			return fmt.Errorf("%w: %v", store.ErrISBNExists, err)
		}
		return MapError(err)
	}

	s.logger.Debug("book created",
		slog.String("book_id", book.ID.String()),
		slog.String("isbn", book.ISBN))
	return nil
}

// Update implements store.BookStore.Update
func (s *PostgresBookStore) Update(ctx context.Context, book *domain.Book) error {
	query := `UPDATE books SET title = $2, author = $3, isbn = $4, genre = $5,
		published_date = $6, pages = $7, description = $8, publisher = $9,
		language = $10, price = $11, in_stock = $12, stock_quantity = $13,
		updated_at = $14
		WHERE id = $1`

	result, err := s.db.ExecContext(ctx, query,
		book.ID, book.Title, book.Author, book.ISBN, book.Genre,
		book.PublishedDate, book.Pages, book.Description, book.Publisher,
		book.Language, book.Price, book.InStock, book.StockQuantity,
		book.UpdatedAt)
	if err != nil {
		if IsUniqueViolation(err) {
			return fmt.Errorf("%w: %v", store.ErrISBNExists, err)
		}
		return MapError(err)
	}

	if err := CheckRowsAffected(result, "book"); err != nil {
		return store.ErrBookNotFound
	}
	return nil
}

// Delete implements store.BookStore.Delete
func (s *PostgresBookStore) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM books WHERE id = $1", id)
	if err != nil {
		return MapError(err)
	}
	if err := CheckRowsAffected(result, "book"); err != nil {
		return store.ErrBookNotFound
	}

	s.logger.Debug("book deleted", slog.String("book_id", id.String()))
	return nil
}
