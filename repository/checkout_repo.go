package repository

import (
	"context"
	"errors"
	"time"

	"food-ordering-api/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrAlreadyCompleted means another delivery of the same payment event won
var ErrAlreadyCompleted = errors.New("checkout already completed")

type checkoutRepository struct {
	db *gorm.DB
}

func NewCheckoutRepository(db *gorm.DB) CheckoutRepository {
	return &checkoutRepository{db: db}
}

func (r *checkoutRepository) Create(ctx context.Context, c *models.Checkout) error {
	return translate(r.db.WithContext(ctx).Create(c).Error)
}

func (r *checkoutRepository) FindByProviderSession(ctx context.Context, sessionID string) (*models.Checkout, error) {
	var c models.Checkout
	err := r.db.WithContext(ctx).Where("provider_session_id = ?", sessionID).First(&c).Error
	if notFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// Complete claims the checkout and inserts its order atomically; a second
// caller for the same checkout gets ErrAlreadyCompleted and nothing is written.
func (r *checkoutRepository) Complete(ctx context.Context, c *models.Checkout, order *models.Order, at time.Time) error {
	if order.ID == "" {
		order.ID = models.NewID()
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Checkout{}).
			Where("id = ? AND completed_at IS NULL", c.ID).
			Updates(map[string]any{"order_id": order.ID, "completed_at": at})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrAlreadyCompleted
		}
		if err := tx.Omit(clause.Associations).Create(order).Error; err != nil {
			return err
		}
		c.OrderID = &order.ID
		c.CompletedAt = &at
		return nil
	})
}
