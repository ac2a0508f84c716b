package orders

import (
	"context"
	"errors"
	"fmt"
	"math"

	"quickbite-backend/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// RepositoryInterface defines the contract for the order repository.
type RepositoryInterface interface {
	Create(ctx context.Context, customerID string, req models.CreateOrderRequest) (*models.Order, error)
	FindByID(ctx context.Context, orderID string) (*models.Order, error)
	ListByCustomer(ctx context.Context, customerID string, page, limit int) ([]*models.Order, int, error)
	ListByRestaurantOwner(ctx context.Context, ownerID string, page, limit int) ([]*models.Order, int, error)
	FindByIDForOwner(ctx context.Context, orderID, ownerID string) (*models.Order, error)
	UpdateStatus(ctx context.Context, orderID string, status models.OrderStatus, reason *string) error
}

// Repository implements RepositoryInterface on top of PostgreSQL.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new order repository.
func NewRepository(db *pgxpool.Pool) RepositoryInterface {
	return &Repository{db: db}
}

const orderColumns = `id, customer_id, restaurant_id, total_amount, delivery_address, status,
	cancel_reason, confirmed_at, prepared_at, picked_up_at, delivered_at, cancelled_at, created_at`

func scanOrder(row pgx.Row) (*models.Order, error) {
	var o models.Order
	err := row.Scan(
		&o.ID,
		&o.CustomerID,
		&o.RestaurantID,
		&o.TotalAmount,
		&o.DeliveryAddress,
		&o.Status,
		&o.CancelReason,
		&o.ConfirmedAt,
		&o.PreparedAt,
		&o.PickedUpAt,
		&o.DeliveredAt,
		&o.CancelledAt,
		&o.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan order: %w", err)
	}
	return &o, nil
}

// Create places a new order in a single transaction: it snapshots menu-item
// prices into line items, verifies the supplied total against the line-item
// sum, and creates the pending delivery row. Everything rolls back together,
// so a half-created order can never be observed.
func (r *Repository) Create(ctx context.Context, customerID string, req models.CreateOrderRequest) (*models.Order, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("repository.CreateOrder.Begin: %w", err)
	}
	defer tx.Rollback(ctx)

	var pickupAddress string
	err = tx.QueryRow(ctx, `SELECT address FROM restaurants WHERE id = $1`, req.RestaurantID).Scan(&pickupAddress)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("repository.CreateOrder.Restaurant: %w", err)
	}

	itemIDs := make([]string, 0, len(req.Items))
	for _, it := range req.Items {
		itemIDs = append(itemIDs, it.MenuItemID)
	}

	rows, err := tx.Query(ctx, `
		SELECT id, name, price
		FROM menu_items
		WHERE id = ANY($1) AND restaurant_id = $2 AND is_available = TRUE`,
		itemIDs, req.RestaurantID)
	if err != nil {
		return nil, fmt.Errorf("repository.CreateOrder.MenuItems: %w", err)
	}
	type menuSnapshot struct {
		name  string
		price float64
	}
	menu := make(map[string]menuSnapshot)
	for rows.Next() {
		var id string
		var snap menuSnapshot
		if err := rows.Scan(&id, &snap.name, &snap.price); err != nil {
			rows.Close()
			return nil, fmt.Errorf("repository.CreateOrder.MenuItems scan: %w", err)
		}
		menu[id] = snap
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repository.CreateOrder.MenuItems rows: %w", err)
	}

	var total float64
	items := make([]models.OrderItem, 0, len(req.Items))
	for _, it := range req.Items {
		snap, ok := menu[it.MenuItemID]
		if !ok {
			// Unknown, unavailable, or belonging to another restaurant.
			return nil, models.ErrNotFound
		}
		total += snap.price * float64(it.Quantity)
		items = append(items, models.OrderItem{
			ID:         uuid.New().String(),
			MenuItemID: it.MenuItemID,
			Name:       snap.name,
			UnitPrice:  snap.price,
			Quantity:   it.Quantity,
		})
	}
	if math.Abs(total-req.TotalAmount) >= 0.005 {
		return nil, models.ErrOrderTotalMismatch
	}

	order := &models.Order{
		ID:              uuid.New().String(),
		CustomerID:      customerID,
		RestaurantID:    req.RestaurantID,
		TotalAmount:     total,
		DeliveryAddress: req.DeliveryAddress,
		Status:          models.OrderStatusPreparing,
	}
	err = tx.QueryRow(ctx, `
		INSERT INTO orders (id, customer_id, restaurant_id, total_amount, delivery_address, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at`,
		order.ID, order.CustomerID, order.RestaurantID, order.TotalAmount, order.DeliveryAddress, order.Status,
	).Scan(&order.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("repository.CreateOrder.Insert: %w", err)
	}

	for i := range items {
		items[i].OrderID = order.ID
		_, err = tx.Exec(ctx, `
			INSERT INTO order_items (id, order_id, menu_item_id, name, unit_price, quantity)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			items[i].ID, items[i].OrderID, items[i].MenuItemID, items[i].Name, items[i].UnitPrice, items[i].Quantity)
		if err != nil {
			return nil, fmt.Errorf("repository.CreateOrder.InsertItem: %w", err)
		}
	}
	order.Items = items

	_, err = tx.Exec(ctx, `
		INSERT INTO deliveries (id, order_id, pickup_address, delivery_address, distance_km, estimated_minutes, fee, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		uuid.New().String(), order.ID, pickupAddress, order.DeliveryAddress,
		req.DistanceKm, req.EstimatedMinutes, req.DeliveryFee, models.DeliveryStatusPending)
	if err != nil {
		return nil, fmt.Errorf("repository.CreateOrder.InsertDelivery: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("repository.CreateOrder.Commit: %w", err)
	}
	return order, nil
}

// FindByID retrieves a single order together with its line items.
func (r *Repository) FindByID(ctx context.Context, orderID string) (*models.Order, error) {
	query := fmt.Sprintf(`SELECT %s FROM orders WHERE id = $1`, orderColumns)
	order, err := scanOrder(r.db.QueryRow(ctx, query, orderID))
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("repository.FindByID: %w", err)
	}

	rows, err := r.db.Query(ctx, `
		SELECT id, order_id, menu_item_id, name, unit_price, quantity
		FROM order_items
		WHERE order_id = $1
		ORDER BY name`, orderID)
	if err != nil {
		return nil, fmt.Errorf("repository.FindByID.Items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var it models.OrderItem
		if err := rows.Scan(&it.ID, &it.OrderID, &it.MenuItemID, &it.Name, &it.UnitPrice, &it.Quantity); err != nil {
			return nil, fmt.Errorf("repository.FindByID.Items scan: %w", err)
		}
		order.Items = append(order.Items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repository.FindByID.Items rows: %w", err)
	}
	return order, nil
}

func (r *Repository) listWhere(ctx context.Context, where, countWhere string, arg interface{}, page, limit int) ([]*models.Order, int, error) {
	offset := (page - 1) * limit
	query := fmt.Sprintf(`
		SELECT %s FROM orders o %s
		ORDER BY o.created_at DESC
		LIMIT $2 OFFSET $3`, qualifiedOrderColumns, where)

	rows, err := r.db.Query(ctx, query, arg, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("repository.ListOrders.Query: %w", err)
	}
	defer rows.Close()

	var orders []*models.Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("repository.ListOrders.Scan: %w", err)
		}
		orders = append(orders, order)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("repository.ListOrders.Rows: %w", err)
	}

	var total int
	if err := r.db.QueryRow(ctx, "SELECT COUNT(*) FROM orders o "+countWhere, arg).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("repository.ListOrders.Count: %w", err)
	}
	return orders, total, nil
}

const qualifiedOrderColumns = `o.id, o.customer_id, o.restaurant_id, o.total_amount, o.delivery_address, o.status,
	o.cancel_reason, o.confirmed_at, o.prepared_at, o.picked_up_at, o.delivered_at, o.cancelled_at, o.created_at`

// ListByCustomer retrieves a customer's orders, newest first, with pagination.
func (r *Repository) ListByCustomer(ctx context.Context, customerID string, page, limit int) ([]*models.Order, int, error) {
	return r.listWhere(ctx, `WHERE o.customer_id = $1`, `WHERE o.customer_id = $1`, customerID, page, limit)
}

// FindByIDForOwner retrieves an order only if it belongs to a restaurant
// owned by the given merchant account. A mismatched owner sees not-found.
func (r *Repository) FindByIDForOwner(ctx context.Context, orderID, ownerID string) (*models.Order, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM orders o
		JOIN restaurants r ON r.id = o.restaurant_id
		WHERE o.id = $1 AND r.owner_id = $2`, qualifiedOrderColumns)
	order, err := scanOrder(r.db.QueryRow(ctx, query, orderID, ownerID))
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("repository.FindByIDForOwner: %w", err)
	}
	return order, nil
}

// ListByRestaurantOwner retrieves the orders placed against restaurants owned
// by the given merchant account.
func (r *Repository) ListByRestaurantOwner(ctx context.Context, ownerID string, page, limit int) ([]*models.Order, int, error) {
	where := `JOIN restaurants r ON r.id = o.restaurant_id WHERE r.owner_id = $1`
	return r.listWhere(ctx, where, where, ownerID, page, limit)
}

// UpdateStatus applies a target status to an order together with the
// timestamp that status implies, as one row update:
//
//	confirmed  -> confirmed_at
//	preparing  -> confirmed_at, only if not already set
//	ready      -> prepared_at
//	picked_up  -> picked_up_at
//	delivered  -> delivered_at
//	cancelled  -> cancelled_at, plus the cancellation reason when supplied
//
// pending and on_the_way carry no timestamp of their own. The current status
// is deliberately not consulted: any status may be set from any other, which
// keeps administrative corrections possible.
func (r *Repository) UpdateStatus(ctx context.Context, orderID string, status models.OrderStatus, reason *string) error {
	var query string
	args := []interface{}{status, orderID}

	switch status {
	case models.OrderStatusConfirmed:
		query = `UPDATE orders SET status = $1, confirmed_at = now() WHERE id = $2`
	case models.OrderStatusPreparing:
		query = `UPDATE orders SET status = $1, confirmed_at = COALESCE(confirmed_at, now()) WHERE id = $2`
	case models.OrderStatusReady:
		query = `UPDATE orders SET status = $1, prepared_at = now() WHERE id = $2`
	case models.OrderStatusPickedUp:
		query = `UPDATE orders SET status = $1, picked_up_at = now() WHERE id = $2`
	case models.OrderStatusDelivered:
		query = `UPDATE orders SET status = $1, delivered_at = now() WHERE id = $2`
	case models.OrderStatusCancelled:
		query = `UPDATE orders SET status = $1, cancelled_at = now(), cancel_reason = COALESCE($3, cancel_reason) WHERE id = $2`
		args = append(args, reason)
	default:
		query = `UPDATE orders SET status = $1 WHERE id = $2`
	}

	cmdTag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("repository.UpdateStatus: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}
