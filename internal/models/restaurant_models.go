package models

import "time"

// Restaurant is a merchant account's storefront.
type Restaurant struct {
	ID          string    `json:"id" db:"id"`
	OwnerID     string    `json:"owner_id" db:"owner_id"`
	CategoryID  *string   `json:"category_id,omitempty" db:"category_id"`
	Name        string    `json:"name" db:"name"`
	Description string    `json:"description,omitempty" db:"description"`
	Address     string    `json:"address" db:"address"`
	Phone       string    `json:"phone,omitempty" db:"phone"`
	ImageURL    string    `json:"image_url,omitempty" db:"image_url"`
	Rating      float64   `json:"rating" db:"rating"`
	RatingCount int       `json:"rating_count" db:"rating_count"`
	IsOpen      bool      `json:"is_open" db:"is_open"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// Category groups restaurants for browsing (e.g. "Pizza", "Sushi").
type Category struct {
	ID       string `json:"id" db:"id"`
	Name     string `json:"name" db:"name"`
	ImageURL string `json:"image_url,omitempty" db:"image_url"`
}

// MenuItem is a dish offered by a restaurant.
type MenuItem struct {
	ID           string    `json:"id" db:"id"`
	RestaurantID string    `json:"restaurant_id" db:"restaurant_id"`
	Name         string    `json:"name" db:"name"`
	Description  string    `json:"description,omitempty" db:"description"`
	Price        float64   `json:"price" db:"price"`
	ImageURL     string    `json:"image_url,omitempty" db:"image_url"`
	IsAvailable  bool      `json:"is_available" db:"is_available"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// Review is a customer rating of a restaurant. One review per customer per
// restaurant, enforced by a unique constraint.
type Review struct {
	ID           string    `json:"id" db:"id"`
	RestaurantID string    `json:"restaurant_id" db:"restaurant_id"`
	UserID       string    `json:"user_id" db:"user_id"`
	OrderID      *string   `json:"order_id,omitempty" db:"order_id"`
	Rating       int       `json:"rating" db:"rating"`
	Comment      string    `json:"comment,omitempty" db:"comment"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// RestaurantFilter carries the optional search parameters for listing
// restaurants.
type RestaurantFilter struct {
	Query      string
	CategoryID string
	OpenOnly   bool
}

// UpdateRestaurantRequest is the body for a merchant updating their storefront.
type UpdateRestaurantRequest struct {
	Name        *string `json:"name,omitempty" validate:"omitempty,min=2,max=100"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=2000"`
	Address     *string `json:"address,omitempty" validate:"omitempty,min=10"`
	Phone       *string `json:"phone,omitempty" validate:"omitempty,max=20"`
	ImageURL    *string `json:"image_url,omitempty" validate:"omitempty,url"`
	CategoryID  *string `json:"category_id,omitempty" validate:"omitempty,uuid4"`
	IsOpen      *bool   `json:"is_open,omitempty"`
}

// CreateMenuItemRequest is the body for adding a dish to a menu.
type CreateMenuItemRequest struct {
	Name        string  `json:"name" validate:"required,min=2,max=100"`
	Description string  `json:"description,omitempty" validate:"omitempty,max=1000"`
	Price       float64 `json:"price" validate:"required,gt=0"`
	ImageURL    string  `json:"image_url,omitempty" validate:"omitempty,url"`
	IsAvailable bool    `json:"is_available"`
}

// UpdateMenuItemRequest is the body for editing a dish.
type UpdateMenuItemRequest struct {
	Name        *string  `json:"name,omitempty" validate:"omitempty,min=2,max=100"`
	Description *string  `json:"description,omitempty" validate:"omitempty,max=1000"`
	Price       *float64 `json:"price,omitempty" validate:"omitempty,gt=0"`
	ImageURL    *string  `json:"image_url,omitempty" validate:"omitempty,url"`
	IsAvailable *bool    `json:"is_available,omitempty"`
}

// CreateReviewRequest is the body for submitting a restaurant review.
type CreateReviewRequest struct {
	Rating  int     `json:"rating" validate:"required,min=1,max=5"`
	Comment string  `json:"comment,omitempty" validate:"omitempty,max=1000"`
	OrderID *string `json:"order_id,omitempty" validate:"omitempty,uuid4"`
}
