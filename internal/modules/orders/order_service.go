package orders

import (
	"context"
	"fmt"

	"quickbite-backend/internal/models"
)

// ServiceInterface defines the contract for the order service.
type ServiceInterface interface {
	CreateOrder(ctx context.Context, customerID string, req models.CreateOrderRequest) (*models.Order, error)
	GetOrderDetails(ctx context.Context, orderID, userID, role string) (*models.Order, error)
	ListMyOrders(ctx context.Context, customerID string, page, limit int) ([]*models.Order, int, error)
	ListRestaurantOrders(ctx context.Context, ownerID string, page, limit int) ([]*models.Order, int, error)
	UpdateOrderStatus(ctx context.Context, orderID string, status models.OrderStatus, reason *string) error
	UpdateRestaurantOrderStatus(ctx context.Context, orderID, ownerID string, status models.OrderStatus) error
	CancelOrder(ctx context.Context, orderID, customerID, reason string) error
}

// Service implements the order business logic.
type Service struct {
	repo RepositoryInterface
}

// NewService creates a new order service.
func NewService(repo RepositoryInterface) *Service {
	return &Service{repo: repo}
}

// CreateOrder places a new order. All validation beyond struct tags happens
// in the repository transaction so the price snapshot and the total check see
// the same menu rows.
func (s *Service) CreateOrder(ctx context.Context, customerID string, req models.CreateOrderRequest) (*models.Order, error) {
	order, err := s.repo.Create(ctx, customerID, req)
	if err != nil {
		return nil, fmt.Errorf("service.CreateOrder: %w", err)
	}
	return order, nil
}

// GetOrderDetails returns an order with its line items. Customers may only
// read their own orders; drivers and restaurant accounts see any order they
// are routed to by their own endpoints.
func (s *Service) GetOrderDetails(ctx context.Context, orderID, userID, role string) (*models.Order, error) {
	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("service.GetOrderDetails: %w", err)
	}
	if role == models.RoleCustomer && order.CustomerID != userID {
		return nil, models.ErrForbidden
	}
	return order, nil
}

func (s *Service) ListMyOrders(ctx context.Context, customerID string, page, limit int) ([]*models.Order, int, error) {
	return s.repo.ListByCustomer(ctx, customerID, page, limit)
}

func (s *Service) ListRestaurantOrders(ctx context.Context, ownerID string, page, limit int) ([]*models.Order, int, error) {
	return s.repo.ListByRestaurantOwner(ctx, ownerID, page, limit)
}

// UpdateOrderStatus applies a status transition to an order. Beyond checking
// that the value belongs to the enumeration it imposes no reachability rules;
// the delivery module calls this to mirror driver progress onto the order.
func (s *Service) UpdateOrderStatus(ctx context.Context, orderID string, status models.OrderStatus, reason *string) error {
	if !status.Valid() {
		return models.ErrInvalidStatus
	}
	if err := s.repo.UpdateStatus(ctx, orderID, status, reason); err != nil {
		return fmt.Errorf("service.UpdateOrderStatus: %w", err)
	}
	return nil
}

// UpdateRestaurantOrderStatus is the merchant-facing transition. The order
// must belong to a restaurant the caller owns; an order another restaurant's
// account names looks like it does not exist. Delivered and cancelled orders
// are closed to the kitchen.
func (s *Service) UpdateRestaurantOrderStatus(ctx context.Context, orderID, ownerID string, status models.OrderStatus) error {
	if !status.Valid() {
		return models.ErrInvalidStatus
	}

	order, err := s.repo.FindByIDForOwner(ctx, orderID, ownerID)
	if err != nil {
		return fmt.Errorf("service.UpdateRestaurantOrderStatus: %w", err)
	}
	if order.Status.Terminal() {
		return models.ErrOrderClosed
	}

	if err := s.repo.UpdateStatus(ctx, orderID, status, nil); err != nil {
		return fmt.Errorf("service.UpdateRestaurantOrderStatus.Update: %w", err)
	}
	return nil
}

// CancelOrder is the customer-facing cancellation. Unlike UpdateOrderStatus
// it does guard the current state: once the restaurant is past confirmation
// the kitchen has started and the order can no longer be recalled.
func (s *Service) CancelOrder(ctx context.Context, orderID, customerID, reason string) error {
	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		return fmt.Errorf("service.CancelOrder: %w", err)
	}
	if order.CustomerID != customerID {
		return models.ErrForbidden
	}
	switch order.Status {
	case models.OrderStatusPending, models.OrderStatusConfirmed, models.OrderStatusPreparing:
	default:
		return models.ErrOrderCannotBeCancelled
	}
	if err := s.repo.UpdateStatus(ctx, orderID, models.OrderStatusCancelled, &reason); err != nil {
		return fmt.Errorf("service.CancelOrder.Update: %w", err)
	}
	return nil
}
