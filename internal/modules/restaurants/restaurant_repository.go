package restaurants

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"quickbite-backend/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// RepositoryInterface defines the contract for the restaurant repository.
type RepositoryInterface interface {
	List(ctx context.Context, filter models.RestaurantFilter, page, limit int) ([]*models.Restaurant, int, error)
	FindByID(ctx context.Context, restaurantID string) (*models.Restaurant, error)
	FindByOwner(ctx context.Context, ownerID string) (*models.Restaurant, error)
	Update(ctx context.Context, restaurantID, ownerID string, req models.UpdateRestaurantRequest) (*models.Restaurant, error)
	ListCategories(ctx context.Context) ([]models.Category, error)

	ListMenuItems(ctx context.Context, restaurantID string) ([]models.MenuItem, error)
	CreateMenuItem(ctx context.Context, restaurantID string, req models.CreateMenuItemRequest) (*models.MenuItem, error)
	UpdateMenuItem(ctx context.Context, restaurantID, itemID string, req models.UpdateMenuItemRequest) (*models.MenuItem, error)
	DeleteMenuItem(ctx context.Context, restaurantID, itemID string) error

	CreateReview(ctx context.Context, review *models.Review) (*models.Review, error)
	ListReviews(ctx context.Context, restaurantID string, page, limit int) ([]models.Review, int, error)
	RefreshRating(ctx context.Context, restaurantID string) error
}

// Repository implements RepositoryInterface on top of PostgreSQL.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new restaurant repository.
func NewRepository(db *pgxpool.Pool) RepositoryInterface {
	return &Repository{db: db}
}

const restaurantColumns = `id, owner_id, category_id, name, description, address, phone, image_url,
	rating, rating_count, is_open, created_at, updated_at`

func scanRestaurant(row pgx.Row) (*models.Restaurant, error) {
	var r models.Restaurant
	err := row.Scan(
		&r.ID, &r.OwnerID, &r.CategoryID, &r.Name, &r.Description, &r.Address, &r.Phone, &r.ImageURL,
		&r.Rating, &r.RatingCount, &r.IsOpen, &r.CreatedAt, &r.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan restaurant: %w", err)
	}
	return &r, nil
}

// List retrieves restaurants matching the filter, paginated. The text query
// matches name and description case-insensitively.
func (r *Repository) List(ctx context.Context, filter models.RestaurantFilter, page, limit int) ([]*models.Restaurant, int, error) {
	var conditions []string
	var args []interface{}
	argIdx := 1

	if filter.Query != "" {
		conditions = append(conditions, fmt.Sprintf("(name ILIKE $%d OR description ILIKE $%d)", argIdx, argIdx))
		args = append(args, "%"+filter.Query+"%")
		argIdx++
	}
	if filter.CategoryID != "" {
		conditions = append(conditions, fmt.Sprintf("category_id = $%d", argIdx))
		args = append(args, filter.CategoryID)
		argIdx++
	}
	if filter.OpenOnly {
		conditions = append(conditions, "is_open = TRUE")
	}

	where := ""
	if len(conditions) > 0 {
		where = "WHERE " + strings.Join(conditions, " AND ")
	}

	offset := (page - 1) * limit
	query := fmt.Sprintf(`
		SELECT %s FROM restaurants %s
		ORDER BY rating DESC, name
		LIMIT $%d OFFSET $%d`, restaurantColumns, where, argIdx, argIdx+1)

	rows, err := r.db.Query(ctx, query, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("repository.ListRestaurants.Query: %w", err)
	}
	defer rows.Close()

	var restaurants []*models.Restaurant
	for rows.Next() {
		rest, err := scanRestaurant(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("repository.ListRestaurants.Scan: %w", err)
		}
		restaurants = append(restaurants, rest)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("repository.ListRestaurants.Rows: %w", err)
	}

	var total int
	if err := r.db.QueryRow(ctx, "SELECT COUNT(*) FROM restaurants "+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("repository.ListRestaurants.Count: %w", err)
	}
	return restaurants, total, nil
}

func (r *Repository) FindByID(ctx context.Context, restaurantID string) (*models.Restaurant, error) {
	query := fmt.Sprintf(`SELECT %s FROM restaurants WHERE id = $1`, restaurantColumns)
	rest, err := scanRestaurant(r.db.QueryRow(ctx, query, restaurantID))
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("repository.FindByID: %w", err)
	}
	return rest, nil
}

func (r *Repository) FindByOwner(ctx context.Context, ownerID string) (*models.Restaurant, error) {
	query := fmt.Sprintf(`SELECT %s FROM restaurants WHERE owner_id = $1`, restaurantColumns)
	rest, err := scanRestaurant(r.db.QueryRow(ctx, query, ownerID))
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("repository.FindByOwner: %w", err)
	}
	return rest, nil
}

func (r *Repository) Update(ctx context.Context, restaurantID, ownerID string, req models.UpdateRestaurantRequest) (*models.Restaurant, error) {
	var setClauses []string
	var args []interface{}
	argIdx := 1

	appendClause := func(column string, value interface{}) {
		setClauses = append(setClauses, fmt.Sprintf("%s = $%d", column, argIdx))
		args = append(args, value)
		argIdx++
	}

	if req.Name != nil {
		appendClause("name", *req.Name)
	}
	if req.Description != nil {
		appendClause("description", *req.Description)
	}
	if req.Address != nil {
		appendClause("address", *req.Address)
	}
	if req.Phone != nil {
		appendClause("phone", *req.Phone)
	}
	if req.ImageURL != nil {
		appendClause("image_url", *req.ImageURL)
	}
	if req.CategoryID != nil {
		appendClause("category_id", *req.CategoryID)
	}
	if req.IsOpen != nil {
		appendClause("is_open", *req.IsOpen)
	}

	if len(setClauses) == 0 {
		return r.FindByID(ctx, restaurantID)
	}

	setClauses = append(setClauses, "updated_at = now()")
	args = append(args, restaurantID, ownerID)

	query := fmt.Sprintf(`
		UPDATE restaurants SET %s
		WHERE id = $%d AND owner_id = $%d
		RETURNING %s`,
		strings.Join(setClauses, ", "), argIdx, argIdx+1, restaurantColumns)

	rest, err := scanRestaurant(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("repository.UpdateRestaurant: %w", err)
	}
	return rest, nil
}

func (r *Repository) ListCategories(ctx context.Context) ([]models.Category, error) {
	rows, err := r.db.Query(ctx, `SELECT id, name, image_url FROM categories ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("repository.ListCategories: %w", err)
	}
	defer rows.Close()

	var categories []models.Category
	for rows.Next() {
		var cat models.Category
		if err := rows.Scan(&cat.ID, &cat.Name, &cat.ImageURL); err != nil {
			return nil, fmt.Errorf("repository.ListCategories.Scan: %w", err)
		}
		categories = append(categories, cat)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repository.ListCategories.Rows: %w", err)
	}
	return categories, nil
}

const menuItemColumns = `id, restaurant_id, name, description, price, image_url, is_available, created_at, updated_at`

func scanMenuItem(row pgx.Row) (*models.MenuItem, error) {
	var m models.MenuItem
	err := row.Scan(&m.ID, &m.RestaurantID, &m.Name, &m.Description, &m.Price, &m.ImageURL, &m.IsAvailable, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan menu item: %w", err)
	}
	return &m, nil
}

func (r *Repository) ListMenuItems(ctx context.Context, restaurantID string) ([]models.MenuItem, error) {
	query := fmt.Sprintf(`SELECT %s FROM menu_items WHERE restaurant_id = $1 ORDER BY name`, menuItemColumns)
	rows, err := r.db.Query(ctx, query, restaurantID)
	if err != nil {
		return nil, fmt.Errorf("repository.ListMenuItems: %w", err)
	}
	defer rows.Close()

	var items []models.MenuItem
	for rows.Next() {
		m, err := scanMenuItem(rows)
		if err != nil {
			return nil, fmt.Errorf("repository.ListMenuItems.Scan: %w", err)
		}
		items = append(items, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repository.ListMenuItems.Rows: %w", err)
	}
	return items, nil
}

func (r *Repository) CreateMenuItem(ctx context.Context, restaurantID string, req models.CreateMenuItemRequest) (*models.MenuItem, error) {
	item := &models.MenuItem{
		ID:           uuid.New().String(),
		RestaurantID: restaurantID,
		Name:         req.Name,
		Description:  req.Description,
		Price:        req.Price,
		ImageURL:     req.ImageURL,
		IsAvailable:  req.IsAvailable,
	}
	query := `
		INSERT INTO menu_items (id, restaurant_id, name, description, price, image_url, is_available)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at`
	err := r.db.QueryRow(ctx, query,
		item.ID, item.RestaurantID, item.Name, item.Description, item.Price, item.ImageURL, item.IsAvailable,
	).Scan(&item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("repository.CreateMenuItem: %w", err)
	}
	return item, nil
}

func (r *Repository) UpdateMenuItem(ctx context.Context, restaurantID, itemID string, req models.UpdateMenuItemRequest) (*models.MenuItem, error) {
	var setClauses []string
	var args []interface{}
	argIdx := 1

	appendClause := func(column string, value interface{}) {
		setClauses = append(setClauses, fmt.Sprintf("%s = $%d", column, argIdx))
		args = append(args, value)
		argIdx++
	}

	if req.Name != nil {
		appendClause("name", *req.Name)
	}
	if req.Description != nil {
		appendClause("description", *req.Description)
	}
	if req.Price != nil {
		appendClause("price", *req.Price)
	}
	if req.ImageURL != nil {
		appendClause("image_url", *req.ImageURL)
	}
	if req.IsAvailable != nil {
		appendClause("is_available", *req.IsAvailable)
	}

	if len(setClauses) == 0 {
		item, err := scanMenuItem(r.db.QueryRow(ctx,
			fmt.Sprintf(`SELECT %s FROM menu_items WHERE id = $1 AND restaurant_id = $2`, menuItemColumns),
			itemID, restaurantID))
		if err != nil {
			return nil, err
		}
		return item, nil
	}

	setClauses = append(setClauses, "updated_at = now()")
	args = append(args, itemID, restaurantID)

	query := fmt.Sprintf(`
		UPDATE menu_items SET %s
		WHERE id = $%d AND restaurant_id = $%d
		RETURNING %s`,
		strings.Join(setClauses, ", "), argIdx, argIdx+1, menuItemColumns)

	item, err := scanMenuItem(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("repository.UpdateMenuItem: %w", err)
	}
	return item, nil
}

func (r *Repository) DeleteMenuItem(ctx context.Context, restaurantID, itemID string) error {
	cmdTag, err := r.db.Exec(ctx, `DELETE FROM menu_items WHERE id = $1 AND restaurant_id = $2`, itemID, restaurantID)
	if err != nil {
		return fmt.Errorf("repository.DeleteMenuItem: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

// CreateReview inserts a review. The unique (restaurant_id, user_id) index
// reports a second review from the same customer as ErrConflict.
func (r *Repository) CreateReview(ctx context.Context, review *models.Review) (*models.Review, error) {
	review.ID = uuid.New().String()
	query := `
		INSERT INTO reviews (id, restaurant_id, user_id, order_id, rating, comment)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at`
	err := r.db.QueryRow(ctx, query,
		review.ID, review.RestaurantID, review.UserID, review.OrderID, review.Rating, review.Comment,
	).Scan(&review.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, models.ErrConflict
		}
		return nil, fmt.Errorf("repository.CreateReview: %w", err)
	}
	return review, nil
}

func (r *Repository) ListReviews(ctx context.Context, restaurantID string, page, limit int) ([]models.Review, int, error) {
	offset := (page - 1) * limit
	rows, err := r.db.Query(ctx, `
		SELECT id, restaurant_id, user_id, order_id, rating, comment, created_at
		FROM reviews
		WHERE restaurant_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`, restaurantID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("repository.ListReviews: %w", err)
	}
	defer rows.Close()

	var reviews []models.Review
	for rows.Next() {
		var rev models.Review
		if err := rows.Scan(&rev.ID, &rev.RestaurantID, &rev.UserID, &rev.OrderID, &rev.Rating, &rev.Comment, &rev.CreatedAt); err != nil {
			return nil, 0, fmt.Errorf("repository.ListReviews.Scan: %w", err)
		}
		reviews = append(reviews, rev)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("repository.ListReviews.Rows: %w", err)
	}

	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM reviews WHERE restaurant_id = $1`, restaurantID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("repository.ListReviews.Count: %w", err)
	}
	return reviews, total, nil
}

// RefreshRating recomputes the denormalized rating columns from the reviews
// table.
func (r *Repository) RefreshRating(ctx context.Context, restaurantID string) error {
	query := `
		UPDATE restaurants SET
			rating = COALESCE((SELECT ROUND(AVG(rating)::numeric, 2) FROM reviews WHERE restaurant_id = $1), 0),
			rating_count = (SELECT COUNT(*) FROM reviews WHERE restaurant_id = $1),
			updated_at = now()
		WHERE id = $1`
	if _, err := r.db.Exec(ctx, query, restaurantID); err != nil {
		return fmt.Errorf("repository.RefreshRating: %w", err)
	}
	return nil
}
