package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/libris-project/libris-api/internal/domain"
	"github.com/libris-project/libris-api/internal/store"
)

// authorSortColumns maps whitelisted sort keys to their column names.
var authorSortColumns = map[string]string{
	"firstName":   "first_name",
	"lastName":    "last_name",
	"birthDate":   "birth_date",
	"nationality": "nationality",
	"createdAt":   "created_at",
}

// PostgresAuthorStore implements the store.AuthorStore interface
// using a PostgreSQL database as the storage backend.
type PostgresAuthorStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresAuthorStore creates a new PostgreSQL implementation of the
// AuthorStore interface.
func NewPostgresAuthorStore(db store.DBTX, logger *slog.Logger) *PostgresAuthorStore {
	if db == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresAuthorStore{
		db:     db,
		logger: logger.With(slog.String("component", "author_store")),
	}
}

// Ensure PostgresAuthorStore implements store.AuthorStore interface
var _ store.AuthorStore = (*PostgresAuthorStore)(nil)

const authorColumns = `id, first_name, last_name, email, biography, birth_date,
	nationality, website, is_active, created_at, updated_at`

func authorFilter(params store.ListAuthorsParams) (string, []any) {
	var conds []string
	var args []any

	if params.Nationality != "" {
		args = append(args, params.Nationality)
		conds = append(conds, fmt.Sprintf("nationality = $%d", len(args)))
	}
	if params.IsActive != nil {
		args = append(args, *params.IsActive)
		conds = append(conds, fmt.Sprintf("is_active = $%d", len(args)))
	}
	if params.Search != "" {
		args = append(args, "%"+params.Search+"%")
		n := len(args)
		conds = append(conds, fmt.Sprintf(
			"(first_name ILIKE $%d OR last_name ILIKE $%d OR biography ILIKE $%d)", n, n, n))
	}

	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// List implements store.AuthorStore.List
func (s *PostgresAuthorStore) List(
	ctx context.Context,
	params store.ListAuthorsParams,
) (*store.Page[domain.Author], error) {
	where, args := authorFilter(params)

	var total int
	countQuery := "SELECT COUNT(*) FROM authors" + where
	if err := s.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, MapError(err)
	}

	column, ok := authorSortColumns[params.SortBy]
	if !ok {
		column = "created_at"
	}
	direction := "DESC"
	if params.Order == store.OrderAsc {
		direction = "ASC"
	}

	query := fmt.Sprintf(
		"SELECT %s FROM authors%s ORDER BY %s %s LIMIT $%d OFFSET $%d",
		authorColumns, where, column, direction, len(args)+1, len(args)+2)
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

	authors := make([]domain.Author, 0, params.Limit)
	for rows.Next() {
		var author domain.Author
		if err := scanAuthor(rows, &author); err != nil {
			return nil, MapError(err)
		}
		authors = append(authors, author)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}

	return &store.Page[domain.Author]{Items: authors, Total: total}, nil
}

func scanAuthor(row rowScanner, author *domain.Author) error {
	var biography, nationality, website sql.NullString
	var birthDate sql.NullTime

	err := row.Scan(
		&author.ID,
		&author.FirstName,
		&author.LastName,
		&author.Email,
		&biography,
		&birthDate,
		&nationality,
		&website,
		&author.IsActive,
		&author.CreatedAt,
		&author.UpdatedAt,
	)
	if err != nil {
		return err
	}

	author.Biography = biography.String
	author.Nationality = nationality.String
	author.Website = website.String
	if birthDate.Valid {
		t := birthDate.Time
		author.BirthDate = &t
	}
	return nil
}

// nullString converts an empty string to SQL NULL.
func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// GetByID implements store.AuthorStore.GetByID
func (s *PostgresAuthorStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Author, error) {
	query := fmt.Sprintf("SELECT %s FROM authors WHERE id = $1", authorColumns)

	var author domain.Author
	if err := scanAuthor(s.db.QueryRowContext(ctx, query, id), &author); err != nil {
		if IsNotFoundError(MapError(err)) {
			return nil, store.ErrAuthorNotFound
		}
		return nil, MapError(err)
	}
	return &author, nil
}

// Create implements store.AuthorStore.Create
func (s *PostgresAuthorStore) Create(ctx context.Context, author *domain.Author) error {
	query := `INSERT INTO authors (id, first_name, last_name, email, biography,
		birth_date, nationality, website, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	_, err := s.db.ExecContext(ctx, query,
		author.ID, author.FirstName, author.LastName, author.Email,
		nullString(author.Biography), author.BirthDate,
		nullString(author.Nationality), nullString(author.Website),
		author.IsActive, author.CreatedAt, author.UpdatedAt)
	if err != nil {
		if IsUniqueViolation(err) {
			return fmt.Errorf("%w: %v", store.ErrEmailExists, err)
		}
		return MapError(err)
	}

	s.logger.Debug("author created",
		slog.String("author_id", author.ID.String()),
		slog.String("email", author.Email))
	return nil
}

// Update implements store.AuthorStore.Update
func (s *PostgresAuthorStore) Update(ctx context.Context, author *domain.Author) error {
	query := `UPDATE authors SET first_name = $2, last_name = $3, email = $4,
		biography = $5, birth_date = $6, nationality = $7, website = $8,
		is_active = $9, updated_at = $10
		WHERE id = $1`

	result, err := s.db.ExecContext(ctx, query,
		author.ID, author.FirstName, author.LastName, author.Email,
		nullString(author.Biography), author.BirthDate,
		nullString(author.Nationality), nullString(author.Website),
		author.IsActive, author.UpdatedAt)
	if err != nil {
		if IsUniqueViolation(err) {
			return fmt.Errorf("%w: %v", store.ErrEmailExists, err)
		}
		return MapError(err)
	}

	if err := CheckRowsAffected(result, "author"); err != nil {
		return store.ErrAuthorNotFound
	}
	return nil
}

// Delete implements store.AuthorStore.Delete
func (s *PostgresAuthorStore) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM authors WHERE id = $1", id)
	if err != nil {
		return MapError(err)
	}
	if err := CheckRowsAffected(result, "author"); err != nil {
		return store.ErrAuthorNotFound
	}

	s.logger.Debug("author deleted", slog.String("author_id", id.String()))
	return nil
}
