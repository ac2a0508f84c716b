package deliveries

import (
	"context"
	"errors"
	"fmt"

	"quickbite-backend/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// RepositoryInterface defines the contract for the delivery repository.
type RepositoryInterface interface {
	FindByID(ctx context.Context, deliveryID string) (*models.Delivery, error)
	FindByOrderID(ctx context.Context, orderID string) (*models.Delivery, error)
	ListAvailable(ctx context.Context, page, limit int) ([]*models.Delivery, int, error)
	ListByDriver(ctx context.Context, driverID string, page, limit int) ([]*models.Delivery, int, error)
	Claim(ctx context.Context, deliveryID, driverID string) error
	UpdateStatus(ctx context.Context, deliveryID string, status models.DeliveryStatus) (orderID string, err error)

	UpsertDriverProfile(ctx context.Context, profile *models.DriverProfile) (*models.DriverProfile, error)
	FindDriverProfile(ctx context.Context, userID string) (*models.DriverProfile, error)
}

// Repository implements RepositoryInterface on top of PostgreSQL.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new delivery repository.
func NewRepository(db *pgxpool.Pool) RepositoryInterface {
	return &Repository{db: db}
}

const deliveryColumns = `id, order_id, driver_id, pickup_address, delivery_address, distance_km,
	estimated_minutes, fee, status, assigned_at, picked_up_at, delivered_at, cancelled_at, created_at`

func scanDelivery(row pgx.Row) (*models.Delivery, error) {
	var d models.Delivery
	err := row.Scan(
		&d.ID,
		&d.OrderID,
		&d.DriverID,
		&d.PickupAddress,
		&d.DeliveryAddress,
		&d.DistanceKm,
		&d.EstimatedMinutes,
		&d.Fee,
		&d.Status,
		&d.AssignedAt,
		&d.PickedUpAt,
		&d.DeliveredAt,
		&d.CancelledAt,
		&d.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan delivery: %w", err)
	}
	return &d, nil
}

func (r *Repository) FindByID(ctx context.Context, deliveryID string) (*models.Delivery, error) {
	query := fmt.Sprintf(`SELECT %s FROM deliveries WHERE id = $1`, deliveryColumns)
	d, err := scanDelivery(r.db.QueryRow(ctx, query, deliveryID))
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("repository.FindByID: %w", err)
	}
	return d, nil
}

func (r *Repository) FindByOrderID(ctx context.Context, orderID string) (*models.Delivery, error) {
	query := fmt.Sprintf(`SELECT %s FROM deliveries WHERE order_id = $1`, deliveryColumns)
	d, err := scanDelivery(r.db.QueryRow(ctx, query, orderID))
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("repository.FindByOrderID: %w", err)
	}
	return d, nil
}

func (r *Repository) list(ctx context.Context, where string, args []interface{}, page, limit int) ([]*models.Delivery, int, error) {
	offset := (page - 1) * limit
	query := fmt.Sprintf(`
		SELECT %s FROM deliveries %s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d`, deliveryColumns, where, len(args)+1, len(args)+2)

	rows, err := r.db.Query(ctx, query, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("repository.ListDeliveries.Query: %w", err)
	}
	defer rows.Close()

	var deliveries []*models.Delivery
	for rows.Next() {
		d, err := scanDelivery(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("repository.ListDeliveries.Scan: %w", err)
		}
		deliveries = append(deliveries, d)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("repository.ListDeliveries.Rows: %w", err)
	}

	var total int
	if err := r.db.QueryRow(ctx, "SELECT COUNT(*) FROM deliveries "+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("repository.ListDeliveries.Count: %w", err)
	}
	return deliveries, total, nil
}

// ListAvailable returns the unclaimed deliveries drivers can pick from.
func (r *Repository) ListAvailable(ctx context.Context, page, limit int) ([]*models.Delivery, int, error) {
	return r.list(ctx, `WHERE status = 'pending' AND driver_id IS NULL`, nil, page, limit)
}

// ListByDriver returns the deliveries claimed by a driver, newest first.
func (r *Repository) ListByDriver(ctx context.Context, driverID string, page, limit int) ([]*models.Delivery, int, error) {
	return r.list(ctx, `WHERE driver_id = $1`, []interface{}{driverID}, page, limit)
}

// Claim assigns a delivery to a driver with a single conditional update. The
// status predicate makes the row-matching semantics of UPDATE act as a
// compare-and-swap: when two drivers race, the second update matches zero
// rows. Zero rows is reported as ErrNotFound; the service re-reads the row to
// tell a lost race apart from a missing delivery.
func (r *Repository) Claim(ctx context.Context, deliveryID, driverID string) error {
	query := `
		UPDATE deliveries
		SET driver_id = $2, status = $3, assigned_at = now()
		WHERE id = $1 AND status = $4 AND driver_id IS NULL`

	cmdTag, err := r.db.Exec(ctx, query, deliveryID, driverID, models.DeliveryStatusAssigned, models.DeliveryStatusPending)
	if err != nil {
		return fmt.Errorf("repository.Claim: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

// UpdateStatus applies a driver progress update to a delivery and returns the
// parent order ID for propagation. picked_up_at is first-write-wins: the
// on_the_way update reuses an existing pickup timestamp instead of
// overwriting it, and stamps one only if the driver skipped the picked_up
// step. The current status is not checked; only claiming is guarded.
func (r *Repository) UpdateStatus(ctx context.Context, deliveryID string, status models.DeliveryStatus) (string, error) {
	var query string
	switch status {
	case models.DeliveryStatusPickedUp, models.DeliveryStatusOnTheWay:
		query = `UPDATE deliveries SET status = $1, picked_up_at = COALESCE(picked_up_at, now()) WHERE id = $2 RETURNING order_id`
	case models.DeliveryStatusDelivered:
		query = `UPDATE deliveries SET status = $1, delivered_at = now() WHERE id = $2 RETURNING order_id`
	case models.DeliveryStatusCancelled:
		query = `UPDATE deliveries SET status = $1, cancelled_at = now() WHERE id = $2 RETURNING order_id`
	default:
		query = `UPDATE deliveries SET status = $1 WHERE id = $2 RETURNING order_id`
	}

	var orderID string
	err := r.db.QueryRow(ctx, query, status, deliveryID).Scan(&orderID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", models.ErrNotFound
		}
		return "", fmt.Errorf("repository.UpdateStatus: %w", err)
	}
	return orderID, nil
}

// UpsertDriverProfile creates or replaces the calling driver's profile row.
func (r *Repository) UpsertDriverProfile(ctx context.Context, profile *models.DriverProfile) (*models.DriverProfile, error) {
	query := `
		INSERT INTO delivery_drivers (user_id, vehicle_type, license_plate, is_available, current_location, updated_at)
		VALUES ($1, $2, $3, $4, $5, now())
		ON CONFLICT (user_id) DO UPDATE
		SET vehicle_type = EXCLUDED.vehicle_type,
		    license_plate = EXCLUDED.license_plate,
		    is_available = EXCLUDED.is_available,
		    current_location = EXCLUDED.current_location,
		    updated_at = now()
		RETURNING user_id, vehicle_type, license_plate, is_available, current_location, updated_at`

	out := &models.DriverProfile{}
	err := r.db.QueryRow(ctx, query,
		profile.UserID, profile.VehicleType, profile.LicensePlate, profile.IsAvailable, profile.CurrentLocation,
	).Scan(&out.UserID, &out.VehicleType, &out.LicensePlate, &out.IsAvailable, &out.CurrentLocation, &out.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("repository.UpsertDriverProfile: %w", err)
	}
	return out, nil
}

func (r *Repository) FindDriverProfile(ctx context.Context, userID string) (*models.DriverProfile, error) {
	query := `
		SELECT user_id, vehicle_type, license_plate, is_available, current_location, updated_at
		FROM delivery_drivers
		WHERE user_id = $1`

	p := &models.DriverProfile{}
	err := r.db.QueryRow(ctx, query, userID).Scan(
		&p.UserID, &p.VehicleType, &p.LicensePlate, &p.IsAvailable, &p.CurrentLocation, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("repository.FindDriverProfile: %w", err)
	}
	return p, nil
}
