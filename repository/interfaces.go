package repository

import (
	"context"
	"errors"
	"time"

	"food-ordering-api/models"
)

// ErrDuplicate is returned when a write violates a unique index
var ErrDuplicate = errors.New("duplicate key")

// Lookups return (nil, nil) when the record does not exist.

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, id string) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	// FindByResetToken only matches tokens that expire after now
	FindByResetToken(ctx context.Context, token string, now time.Time) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, id string) error
}

// SearchQuery drives the storefront search
type SearchQuery struct {
	Term     string
	Cuisines []string
	Limit    int
}

type RestaurantRepository interface {
	Create(ctx context.Context, r *models.Restaurant) error
	// FindByID loads menus newest first
	FindByID(ctx context.Context, id string) (*models.Restaurant, error)
	// FindByOwner loads menus in the order they were added when withMenus is set
	FindByOwner(ctx context.Context, ownerID string, withMenus bool) (*models.Restaurant, error)
	Update(ctx context.Context, r *models.Restaurant) error
	AppendMenu(ctx context.Context, restaurantID, menuID string) error
	HasMenu(ctx context.Context, restaurantID, menuID string) (bool, error)
	Search(ctx context.Context, q SearchQuery) ([]models.Restaurant, error)
	ListNewest(ctx context.Context, limit int) ([]models.Restaurant, error)
}

type MenuRepository interface {
	Create(ctx context.Context, m *models.Menu) error
	FindByID(ctx context.Context, id string) (*models.Menu, error)
	Update(ctx context.Context, m *models.Menu) error
	Delete(ctx context.Context, id string) error
}

type OrderRepository interface {
	Create(ctx context.Context, o *models.Order) error
	FindByID(ctx context.Context, id string) (*models.Order, error)
	ListByUser(ctx context.Context, userID string) ([]models.Order, error)
	ListByRestaurant(ctx context.Context, restaurantID string) ([]models.Order, error)
	// UpdateStatus writes the new status and its audit row together
	UpdateStatus(ctx context.Context, change *models.OrderStatusChange) error
	History(ctx context.Context, orderID string) ([]models.OrderStatusChange, error)
}

type CheckoutRepository interface {
	Create(ctx context.Context, c *models.Checkout) error
	FindByProviderSession(ctx context.Context, sessionID string) (*models.Checkout, error)
	// Complete creates the order and marks the checkout done in one transaction
	Complete(ctx context.Context, c *models.Checkout, order *models.Order, at time.Time) error
}
