package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/libris-project/libris-api/internal/domain"
	"github.com/libris-project/libris-api/internal/store"
)

// PostgresUserStore implements the store.UserStore interface
// using a PostgreSQL database as the storage backend.
type PostgresUserStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresUserStore creates a new PostgreSQL implementation of the
// UserStore interface. It accepts a database connection or transaction that
// should be initialized and managed by the caller.
func NewPostgresUserStore(db store.DBTX, logger *slog.Logger) *PostgresUserStore {
	if db == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresUserStore{
		db:     db,
		logger: logger.With(slog.String("component", "user_store")),
	}
}

// Ensure PostgresUserStore implements store.UserStore interface
var _ store.UserStore = (*PostgresUserStore)(nil)

const userColumns = `id, email, name, hashed_password, google_id, avatar, role,
	is_active, created_at, updated_at`

func scanUser(row rowScanner, user *domain.User) error {
	var hashedPassword, googleID, avatar sql.NullString

	err := row.Scan(
		&user.ID,
		&user.Email,
		&user.Name,
		&hashedPassword,
		&googleID,
		&avatar,
		&user.Role,
		&user.IsActive,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return err
	}

	user.HashedPassword = hashedPassword.String
	user.GoogleID = googleID.String
	user.Avatar = avatar.String
	return nil
}

// Create implements store.UserStore.Create
func (s *PostgresUserStore) Create(ctx context.Context, user *domain.User) error {
	if err := user.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	query := `INSERT INTO users (id, email, name, hashed_password, google_id,
		avatar, role, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err := s.db.ExecContext(ctx, query,
		user.ID, user.Email, user.Name,
		nullString(user.HashedPassword), nullString(user.GoogleID),
		nullString(user.Avatar), user.Role, user.IsActive,
		user.CreatedAt, user.UpdatedAt)
	if err != nil {
		if IsUniqueViolation(err) {
			return fmt.Errorf("%w: %v", store.ErrEmailExists, err)
		}
		return MapError(err)
	}

	s.logger.Debug("user created", slog.String("user_id", user.ID.String()))
	return nil
}

// GetByID implements store.UserStore.GetByID
func (s *PostgresUserStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	query := fmt.Sprintf("SELECT %s FROM users WHERE id = $1", userColumns)

	var user domain.User
	if err := scanUser(s.db.QueryRowContext(ctx, query, id), &user); err != nil {
		if IsNotFoundError(MapError(err)) {
			return nil, store.ErrUserNotFound
		}
		return nil, MapError(err)
	}
	return &user, nil
}

// GetByEmail implements store.UserStore.GetByEmail
func (s *PostgresUserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := fmt.Sprintf("SELECT %s FROM users WHERE email = $1", userColumns)

	var user domain.User
	if err := scanUser(s.db.QueryRowContext(ctx, query, email), &user); err != nil {
		if IsNotFoundError(MapError(err)) {
			return nil, store.ErrUserNotFound
		}
		return nil, MapError(err)
	}
	return &user, nil
}

// GetByGoogleID implements store.UserStore.GetByGoogleID
func (s *PostgresUserStore) GetByGoogleID(
	ctx context.Context,
	googleID string,
) (*domain.User, error) {
	query := fmt.Sprintf("SELECT %s FROM users WHERE google_id = $1", userColumns)

	var user domain.User
	if err := scanUser(s.db.QueryRowContext(ctx, query, googleID), &user); err != nil {
		if IsNotFoundError(MapError(err)) {
			return nil, store.ErrUserNotFound
		}
		return nil, MapError(err)
	}
	return &user, nil
}

// Update implements store.UserStore.Update
func (s *PostgresUserStore) Update(ctx context.Context, user *domain.User) error {
	if err := user.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	query := `UPDATE users SET email = $2, name = $3, hashed_password = $4,
		google_id = $5, avatar = $6, role = $7, is_active = $8, updated_at = $9
		WHERE id = $1`

	result, err := s.db.ExecContext(ctx, query,
		user.ID, user.Email, user.Name,
		nullString(user.HashedPassword), nullString(user.GoogleID),
		nullString(user.Avatar), user.Role, user.IsActive, user.UpdatedAt)
	if err != nil {
		if IsUniqueViolation(err) {
			return fmt.Errorf("%w: %v", store.ErrEmailExists, err)
		}
		return MapError(err)
	}

	if err := CheckRowsAffected(result, "user"); err != nil {
		return store.ErrUserNotFound
	}
	return nil
}
