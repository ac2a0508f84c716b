package deliveries

import (
	"context"
	"errors"
	"fmt"
	"log"

	"quickbite-backend/internal/models"
)

// OrderStatusUpdater is the slice of the order service this module needs to
// mirror driver progress onto the parent order.
type OrderStatusUpdater interface {
	UpdateOrderStatus(ctx context.Context, orderID string, status models.OrderStatus, reason *string) error
}

// ServiceInterface defines the contract for the delivery service.
type ServiceInterface interface {
	ListAvailable(ctx context.Context, page, limit int) ([]*models.Delivery, int, error)
	ListMyDeliveries(ctx context.Context, driverID string, page, limit int) ([]*models.Delivery, int, error)
	GetDelivery(ctx context.Context, deliveryID string) (*models.Delivery, error)
	Claim(ctx context.Context, deliveryID, driverID string) (*models.Delivery, error)
	UpdateStatus(ctx context.Context, deliveryID, driverID string, status models.DeliveryStatus) (*models.Delivery, error)

	UpsertDriverProfile(ctx context.Context, userID string, req models.UpsertDriverProfileRequest) (*models.DriverProfile, error)
	GetDriverProfile(ctx context.Context, userID string) (*models.DriverProfile, error)
}

// Service implements the delivery business logic.
type Service struct {
	repo   RepositoryInterface
	orders OrderStatusUpdater
}

// NewService creates a new delivery service.
func NewService(repo RepositoryInterface, orders OrderStatusUpdater) *Service {
	return &Service{repo: repo, orders: orders}
}

func (s *Service) ListAvailable(ctx context.Context, page, limit int) ([]*models.Delivery, int, error) {
	return s.repo.ListAvailable(ctx, page, limit)
}

func (s *Service) ListMyDeliveries(ctx context.Context, driverID string, page, limit int) ([]*models.Delivery, int, error) {
	return s.repo.ListByDriver(ctx, driverID, page, limit)
}

func (s *Service) GetDelivery(ctx context.Context, deliveryID string) (*models.Delivery, error) {
	return s.repo.FindByID(ctx, deliveryID)
}

// Claim assigns the delivery to the calling driver. The repository's
// conditional update guarantees at most one driver wins a race; when the
// update matches no rows the delivery is re-read so the caller learns whether
// it never existed or was claimed first.
func (s *Service) Claim(ctx context.Context, deliveryID, driverID string) (*models.Delivery, error) {
	err := s.repo.Claim(ctx, deliveryID, driverID)
	if err == nil {
		return s.repo.FindByID(ctx, deliveryID)
	}
	if !errors.Is(err, models.ErrNotFound) {
		return nil, fmt.Errorf("service.Claim: %w", err)
	}

	if _, findErr := s.repo.FindByID(ctx, deliveryID); findErr != nil {
		return nil, models.ErrNotFound
	}
	return nil, models.ErrDeliveryTaken
}

// UpdateStatus applies a driver progress update and propagates it onto the
// parent order. Propagation is one-directional and not transactional: a
// failed order update is logged and the delivery update stands.
func (s *Service) UpdateStatus(ctx context.Context, deliveryID, driverID string, status models.DeliveryStatus) (*models.Delivery, error) {
	if !status.Valid() {
		return nil, models.ErrInvalidStatus
	}

	delivery, err := s.repo.FindByID(ctx, deliveryID)
	if err != nil {
		return nil, fmt.Errorf("service.UpdateStatus: %w", err)
	}
	if delivery.DriverID == nil || *delivery.DriverID != driverID {
		return nil, models.ErrForbidden
	}

	orderID, err := s.repo.UpdateStatus(ctx, deliveryID, status)
	if err != nil {
		return nil, fmt.Errorf("service.UpdateStatus.Apply: %w", err)
	}

	if orderStatus, ok := status.OrderEquivalent(); ok {
		if err := s.orders.UpdateOrderStatus(ctx, orderID, orderStatus, nil); err != nil {
			log.Printf("deliveries: failed to propagate status %q to order %s: %v", status, orderID, err)
		}
	}

	return s.repo.FindByID(ctx, deliveryID)
}

// UpsertDriverProfile stores the driver's vehicle details and availability.
// CurrentLocation is persisted untouched; the server never interprets it.
func (s *Service) UpsertDriverProfile(ctx context.Context, userID string, req models.UpsertDriverProfileRequest) (*models.DriverProfile, error) {
	profile := &models.DriverProfile{
		UserID:          userID,
		VehicleType:     req.VehicleType,
		LicensePlate:    req.LicensePlate,
		IsAvailable:     req.IsAvailable,
		CurrentLocation: req.CurrentLocation,
	}
	out, err := s.repo.UpsertDriverProfile(ctx, profile)
	if err != nil {
		return nil, fmt.Errorf("service.UpsertDriverProfile: %w", err)
	}
	return out, nil
}

func (s *Service) GetDriverProfile(ctx context.Context, userID string) (*models.DriverProfile, error) {
	return s.repo.FindDriverProfile(ctx, userID)
}
