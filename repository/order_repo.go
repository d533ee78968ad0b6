package repository

import (
	"context"

	"food-ordering-api/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type orderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepository{db: db}
}

func (r *orderRepository) Create(ctx context.Context, o *models.Order) error {
	return translate(r.db.WithContext(ctx).Omit(clause.Associations).Create(o).Error)
}

func (r *orderRepository) FindByID(ctx context.Context, id string) (*models.Order, error) {
	var o models.Order
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&o).Error
	if notFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// ListByUser returns the customer's orders with their restaurant attached
func (r *orderRepository) ListByUser(ctx context.Context, userID string) ([]models.Order, error) {
	var out []models.Order
	err := r.db.WithContext(ctx).
		Preload("Restaurant").
		Where("user_id = ?", userID).
		Order(newestFirst).
		Find(&out).Error
	return out, err
}

// ListByRestaurant returns the restaurant's orders with the customer attached
func (r *orderRepository) ListByRestaurant(ctx context.Context, restaurantID string) ([]models.Order, error) {
	var out []models.Order
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("restaurant_id = ?", restaurantID).
		Order(newestFirst).
		Find(&out).Error
	return out, err
}

func (r *orderRepository) UpdateStatus(ctx context.Context, change *models.OrderStatusChange) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Order{}).
			Where("id = ?", change.OrderID).
			Update("status", change.ToStatus)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return tx.Create(change).Error
	})
}

func (r *orderRepository) History(ctx context.Context, orderID string) ([]models.OrderStatusChange, error) {
	var out []models.OrderStatusChange
	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("created_at ASC, id ASC").
		Find(&out).Error
	return out, err
}
