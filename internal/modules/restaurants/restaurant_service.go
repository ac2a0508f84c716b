package restaurants

import (
	"context"
	"fmt"
	"log"

	"quickbite-backend/internal/models"
)

// ServiceInterface defines the contract for the restaurant service.
type ServiceInterface interface {
	ListRestaurants(ctx context.Context, filter models.RestaurantFilter, page, limit int) ([]*models.Restaurant, int, error)
	GetRestaurant(ctx context.Context, restaurantID string) (*models.Restaurant, []models.MenuItem, error)
	GetMyRestaurant(ctx context.Context, ownerID string) (*models.Restaurant, error)
	UpdateRestaurant(ctx context.Context, ownerID string, req models.UpdateRestaurantRequest) (*models.Restaurant, error)
	ListCategories(ctx context.Context) ([]models.Category, error)

	CreateMenuItem(ctx context.Context, ownerID string, req models.CreateMenuItemRequest) (*models.MenuItem, error)
	UpdateMenuItem(ctx context.Context, ownerID, itemID string, req models.UpdateMenuItemRequest) (*models.MenuItem, error)
	DeleteMenuItem(ctx context.Context, ownerID, itemID string) error

	CreateReview(ctx context.Context, userID, restaurantID string, req models.CreateReviewRequest) (*models.Review, error)
	ListReviews(ctx context.Context, restaurantID string, page, limit int) ([]models.Review, int, error)
}

// Service implements the restaurant business logic.
type Service struct {
	repo RepositoryInterface
}

// NewService creates a new restaurant service.
func NewService(repo RepositoryInterface) *Service {
	return &Service{repo: repo}
}

func (s *Service) ListRestaurants(ctx context.Context, filter models.RestaurantFilter, page, limit int) ([]*models.Restaurant, int, error) {
	return s.repo.List(ctx, filter, page, limit)
}

// GetRestaurant returns the storefront together with its menu.
func (s *Service) GetRestaurant(ctx context.Context, restaurantID string) (*models.Restaurant, []models.MenuItem, error) {
	restaurant, err := s.repo.FindByID(ctx, restaurantID)
	if err != nil {
		return nil, nil, fmt.Errorf("service.GetRestaurant: %w", err)
	}
	menu, err := s.repo.ListMenuItems(ctx, restaurantID)
	if err != nil {
		return nil, nil, fmt.Errorf("service.GetRestaurant.Menu: %w", err)
	}
	return restaurant, menu, nil
}

func (s *Service) GetMyRestaurant(ctx context.Context, ownerID string) (*models.Restaurant, error) {
	return s.repo.FindByOwner(ctx, ownerID)
}

// UpdateRestaurant edits the caller's own storefront. Ownership is enforced
// by the repository's WHERE clause, so a mismatched account sees not-found.
func (s *Service) UpdateRestaurant(ctx context.Context, ownerID string, req models.UpdateRestaurantRequest) (*models.Restaurant, error) {
	restaurant, err := s.repo.FindByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("service.UpdateRestaurant: %w", err)
	}
	return s.repo.Update(ctx, restaurant.ID, ownerID, req)
}

func (s *Service) ListCategories(ctx context.Context) ([]models.Category, error) {
	return s.repo.ListCategories(ctx)
}

func (s *Service) CreateMenuItem(ctx context.Context, ownerID string, req models.CreateMenuItemRequest) (*models.MenuItem, error) {
	restaurant, err := s.repo.FindByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("service.CreateMenuItem: %w", err)
	}
	return s.repo.CreateMenuItem(ctx, restaurant.ID, req)
}

func (s *Service) UpdateMenuItem(ctx context.Context, ownerID, itemID string, req models.UpdateMenuItemRequest) (*models.MenuItem, error) {
	restaurant, err := s.repo.FindByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("service.UpdateMenuItem: %w", err)
	}
	return s.repo.UpdateMenuItem(ctx, restaurant.ID, itemID, req)
}

func (s *Service) DeleteMenuItem(ctx context.Context, ownerID, itemID string) error {
	restaurant, err := s.repo.FindByOwner(ctx, ownerID)
	if err != nil {
		return fmt.Errorf("service.DeleteMenuItem: %w", err)
	}
	return s.repo.DeleteMenuItem(ctx, restaurant.ID, itemID)
}

// CreateReview stores a customer review and refreshes the restaurant's
// denormalized rating. A stale rating is tolerable, so a refresh failure is
// logged rather than failing the request.
func (s *Service) CreateReview(ctx context.Context, userID, restaurantID string, req models.CreateReviewRequest) (*models.Review, error) {
	if _, err := s.repo.FindByID(ctx, restaurantID); err != nil {
		return nil, fmt.Errorf("service.CreateReview: %w", err)
	}

	review := &models.Review{
		RestaurantID: restaurantID,
		UserID:       userID,
		OrderID:      req.OrderID,
		Rating:       req.Rating,
		Comment:      req.Comment,
	}
	created, err := s.repo.CreateReview(ctx, review)
	if err != nil {
		return nil, fmt.Errorf("service.CreateReview.Insert: %w", err)
	}

	if err := s.repo.RefreshRating(ctx, restaurantID); err != nil {
		log.Printf("restaurants: failed to refresh rating for %s: %v", restaurantID, err)
	}

	return created, nil
}

func (s *Service) ListReviews(ctx context.Context, restaurantID string, page, limit int) ([]models.Review, int, error) {
	return s.repo.ListReviews(ctx, restaurantID, page, limit)
}
