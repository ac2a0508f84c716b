package users

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"quickbite-backend/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// RepositoryInterface defines methods for interacting with user and address
// storage.
type RepositoryInterface interface {
	FindByID(ctx context.Context, userID string) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByPasswordResetToken(ctx context.Context, token string) (*models.User, error)

	Create(ctx context.Context, user *models.User, passwordHash string) (*models.User, error)
	CreateOAuthUser(ctx context.Context, user *models.User) (*models.User, error)
	Update(ctx context.Context, userID string, data models.UserUpdateData) (*models.User, error)

	SetPasswordResetToken(ctx context.Context, userID, token string, expiresAt time.Time) error
	UpdatePasswordAndClearResetToken(ctx context.Context, userID, passwordHash string) error

	ListAddresses(ctx context.Context, userID string) ([]models.Address, error)
	FindAddress(ctx context.Context, userID, addressID string) (*models.Address, error)
	CountAddresses(ctx context.Context, userID string) (int, error)
	AddAddress(ctx context.Context, userID string, req models.AddAddressRequest) (*models.Address, error)
	UpdateAddress(ctx context.Context, userID, addressID string, req models.UpdateAddressRequest) (*models.Address, error)
	SetDefaultAddress(ctx context.Context, userID, addressID string) error
	DeleteAddress(ctx context.Context, userID, addressID string) error
}

type Repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) RepositoryInterface {
	return &Repository{db: db}
}

// uniqueViolation is the PostgreSQL error code for a unique constraint hit.
const uniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

const userColumns = `id, name, email, password_hash, phone, role, avatar_url, auth_provider, created_at, updated_at`

func scanUser(row pgx.Row) (*models.User, error) {
	u := &models.User{}
	err := row.Scan(
		&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Phone, &u.Role, &u.AvatarURL, &u.AuthProvider, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan user: %w", err)
	}
	return u, nil
}

func (r *Repository) FindByID(ctx context.Context, userID string) (*models.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE id = $1`, userColumns)
	user, err := scanUser(r.db.QueryRow(ctx, query, userID))
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("repository.FindByID: %w", err)
	}
	return user, nil
}

func (r *Repository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE email = $1`, userColumns)
	user, err := scanUser(r.db.QueryRow(ctx, query, email))
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("repository.FindByEmail: %w", err)
	}
	return user, nil
}

func (r *Repository) FindByPasswordResetToken(ctx context.Context, token string) (*models.User, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM users
		WHERE password_reset_token = $1 AND password_reset_expires_at > now()`, userColumns)
	user, err := scanUser(r.db.QueryRow(ctx, query, token))
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrInvalidToken
		}
		return nil, fmt.Errorf("repository.FindByPasswordResetToken: %w", err)
	}
	return user, nil
}

// Create inserts a new email/password account. A duplicate email surfaces as
// ErrConflict.
func (r *Repository) Create(ctx context.Context, user *models.User, passwordHash string) (*models.User, error) {
	user.ID = uuid.New().String()
	query := `
		INSERT INTO users (id, name, email, password_hash, phone, role, auth_provider)
		VALUES ($1, $2, $3, $4, $5, $6, 'email')
		RETURNING created_at, updated_at`
	err := r.db.QueryRow(ctx, query,
		user.ID, user.Name, user.Email, passwordHash, user.Phone, user.Role,
	).Scan(&user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, models.ErrConflict
		}
		return nil, fmt.Errorf("repository.Create: %w", err)
	}
	user.AuthProvider = "email"
	return user, nil
}

// CreateOAuthUser inserts an account created through Google sign-in.
func (r *Repository) CreateOAuthUser(ctx context.Context, user *models.User) (*models.User, error) {
	user.ID = uuid.New().String()
	query := `
		INSERT INTO users (id, name, email, role, avatar_url, auth_provider)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at`
	err := r.db.QueryRow(ctx, query,
		user.ID, user.Name, user.Email, user.Role, user.AvatarURL, user.AuthProvider,
	).Scan(&user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, models.ErrConflict
		}
		return nil, fmt.Errorf("repository.CreateOAuthUser: %w", err)
	}
	return user, nil
}

func (r *Repository) Update(ctx context.Context, userID string, data models.UserUpdateData) (*models.User, error) {
	var setClauses []string
	var args []interface{}
	argIdx := 1

	if data.Name != nil {
		setClauses = append(setClauses, fmt.Sprintf("name = $%d", argIdx))
		args = append(args, *data.Name)
		argIdx++
	}
	if data.Phone != nil {
		setClauses = append(setClauses, fmt.Sprintf("phone = $%d", argIdx))
		args = append(args, *data.Phone)
		argIdx++
	}
	if data.AvatarURL != nil {
		setClauses = append(setClauses, fmt.Sprintf("avatar_url = $%d", argIdx))
		args = append(args, *data.AvatarURL)
		argIdx++
	}

	if len(setClauses) == 0 {
		return r.FindByID(ctx, userID)
	}

	setClauses = append(setClauses, fmt.Sprintf("updated_at = $%d", argIdx))
	args = append(args, time.Now())
	argIdx++

	args = append(args, userID)

	query := fmt.Sprintf(`UPDATE users SET %s WHERE id = $%d RETURNING %s`,
		strings.Join(setClauses, ", "), argIdx, userColumns)

	user, err := scanUser(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("repository.Update: %w", err)
	}
	return user, nil
}

func (r *Repository) SetPasswordResetToken(ctx context.Context, userID, token string, expiresAt time.Time) error {
	query := `
		UPDATE users
		SET password_reset_token = $1, password_reset_expires_at = $2, updated_at = now()
		WHERE id = $3`
	cmdTag, err := r.db.Exec(ctx, query, token, expiresAt, userID)
	if err != nil {
		return fmt.Errorf("repository.SetPasswordResetToken: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

func (r *Repository) UpdatePasswordAndClearResetToken(ctx context.Context, userID, passwordHash string) error {
	query := `
		UPDATE users
		SET password_hash = $1, password_reset_token = NULL, password_reset_expires_at = NULL, updated_at = now()
		WHERE id = $2`
	cmdTag, err := r.db.Exec(ctx, query, passwordHash, userID)
	if err != nil {
		return fmt.Errorf("repository.UpdatePasswordAndClearResetToken: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

// --- Addresses ---

const addressColumns = `id, user_id, label, street_address, is_default, created_at, updated_at`

func scanAddress(row pgx.Row) (*models.Address, error) {
	a := &models.Address{}
	err := row.Scan(&a.ID, &a.UserID, &a.Label, &a.StreetAddress, &a.IsDefault, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan address: %w", err)
	}
	return a, nil
}

func (r *Repository) ListAddresses(ctx context.Context, userID string) ([]models.Address, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM user_addresses
		WHERE user_id = $1
		ORDER BY is_default DESC, created_at`, addressColumns)

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("repository.ListAddresses: %w", err)
	}
	defer rows.Close()

	var addresses []models.Address
	for rows.Next() {
		a, err := scanAddress(rows)
		if err != nil {
			return nil, fmt.Errorf("repository.ListAddresses.Scan: %w", err)
		}
		addresses = append(addresses, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repository.ListAddresses.Rows: %w", err)
	}
	return addresses, nil
}

func (r *Repository) FindAddress(ctx context.Context, userID, addressID string) (*models.Address, error) {
	query := fmt.Sprintf(`SELECT %s FROM user_addresses WHERE id = $1 AND user_id = $2`, addressColumns)
	a, err := scanAddress(r.db.QueryRow(ctx, query, addressID, userID))
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("repository.FindAddress: %w", err)
	}
	return a, nil
}

func (r *Repository) CountAddresses(ctx context.Context, userID string) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM user_addresses WHERE user_id = $1`, userID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("repository.CountAddresses: %w", err)
	}
	return count, nil
}

// AddAddress inserts a new address. A user's first address always becomes the
// default; when the caller asked for the default flag on a later address the
// switch happens inside the same transaction as the insert.
func (r *Repository) AddAddress(ctx context.Context, userID string, req models.AddAddressRequest) (*models.Address, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("repository.AddAddress.Begin: %w", err)
	}
	defer tx.Rollback(ctx)

	var existing int
	if err := tx.QueryRow(ctx, `SELECT COUNT(*) FROM user_addresses WHERE user_id = $1`, userID).Scan(&existing); err != nil {
		return nil, fmt.Errorf("repository.AddAddress.Count: %w", err)
	}
	makeDefault := req.IsDefault || existing == 0

	addr := &models.Address{
		ID:            uuid.New().String(),
		UserID:        userID,
		Label:         req.Label,
		StreetAddress: req.StreetAddress,
		IsDefault:     makeDefault,
	}
	err = tx.QueryRow(ctx, `
		INSERT INTO user_addresses (id, user_id, label, street_address, is_default)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at, updated_at`,
		addr.ID, addr.UserID, addr.Label, addr.StreetAddress, addr.IsDefault,
	).Scan(&addr.CreatedAt, &addr.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("repository.AddAddress.Insert: %w", err)
	}

	if makeDefault && existing > 0 {
		if _, err := tx.Exec(ctx, `
			UPDATE user_addresses SET is_default = (id = $2), updated_at = now()
			WHERE user_id = $1`, userID, addr.ID); err != nil {
			return nil, fmt.Errorf("repository.AddAddress.SetDefault: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("repository.AddAddress.Commit: %w", err)
	}
	return addr, nil
}

func (r *Repository) UpdateAddress(ctx context.Context, userID, addressID string, req models.UpdateAddressRequest) (*models.Address, error) {
	var setClauses []string
	var args []interface{}
	argIdx := 1

	if req.Label != "" {
		setClauses = append(setClauses, fmt.Sprintf("label = $%d", argIdx))
		args = append(args, req.Label)
		argIdx++
	}
	if req.StreetAddress != "" {
		setClauses = append(setClauses, fmt.Sprintf("street_address = $%d", argIdx))
		args = append(args, req.StreetAddress)
		argIdx++
	}

	if len(setClauses) == 0 {
		return r.FindAddress(ctx, userID, addressID)
	}

	setClauses = append(setClauses, "updated_at = now()")
	args = append(args, addressID, userID)

	query := fmt.Sprintf(`
		UPDATE user_addresses SET %s
		WHERE id = $%d AND user_id = $%d
		RETURNING %s`,
		strings.Join(setClauses, ", "), argIdx, argIdx+1, addressColumns)

	a, err := scanAddress(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("repository.UpdateAddress: %w", err)
	}
	return a, nil
}

// SetDefaultAddress flips the default flag to the target address in one
// statement: every row of the user gets is_default = (id = target). There is
// no window where the user has zero defaults, and a failure leaves the old
// default in place.
func (r *Repository) SetDefaultAddress(ctx context.Context, userID, addressID string) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("repository.SetDefaultAddress.Begin: %w", err)
	}
	defer tx.Rollback(ctx)

	// Verify the target exists and belongs to the user before touching the
	// rest of their rows.
	var exists bool
	err = tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM user_addresses WHERE id = $1 AND user_id = $2)`,
		addressID, userID).Scan(&exists)
	if err != nil {
		return fmt.Errorf("repository.SetDefaultAddress.Check: %w", err)
	}
	if !exists {
		return models.ErrNotFound
	}

	_, err = tx.Exec(ctx, `
		UPDATE user_addresses SET is_default = (id = $2), updated_at = now()
		WHERE user_id = $1`, userID, addressID)
	if err != nil {
		return fmt.Errorf("repository.SetDefaultAddress.Update: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("repository.SetDefaultAddress.Commit: %w", err)
	}
	return nil
}

func (r *Repository) DeleteAddress(ctx context.Context, userID, addressID string) error {
	cmdTag, err := r.db.Exec(ctx, `DELETE FROM user_addresses WHERE id = $1 AND user_id = $2`, addressID, userID)
	if err != nil {
		return fmt.Errorf("repository.DeleteAddress: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}
