package repository

import (
	"context"
	"encoding/json"
	"strings"

	"food-ordering-api/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// MaxSearchResults caps every storefront search
const MaxSearchResults = 50

// restaurantMenu is a row of the many2many join table behind Restaurant.Menus
type restaurantMenu struct {
	RestaurantID string
	MenuID       string
}

func (restaurantMenu) TableName() string { return "restaurant_menus" }

type restaurantRepository struct {
	db *gorm.DB
}

func NewRestaurantRepository(db *gorm.DB) RestaurantRepository {
	return &restaurantRepository{db: db}
}

func (r *restaurantRepository) Create(ctx context.Context, rest *models.Restaurant) error {
	return translate(r.db.WithContext(ctx).Omit(clause.Associations).Create(rest).Error)
}

func (r *restaurantRepository) FindByID(ctx context.Context, id string) (*models.Restaurant, error) {
	q := r.db.WithContext(ctx).Preload("Menus", func(tx *gorm.DB) *gorm.DB {
		return tx.Order("menus.created_at DESC, menus.id DESC")
	})
	return first(q.Where("id = ?", id))
}

func (r *restaurantRepository) FindByOwner(ctx context.Context, ownerID string, withMenus bool) (*models.Restaurant, error) {
	q := r.db.WithContext(ctx)
	if withMenus {
		q = q.Preload("Menus", func(tx *gorm.DB) *gorm.DB {
			return tx.Order("menus.created_at ASC, menus.id ASC")
		})
	}
	return first(q.Where("owner_id = ?", ownerID))
}

func (r *restaurantRepository) Update(ctx context.Context, rest *models.Restaurant) error {
	return translate(r.db.WithContext(ctx).Omit(clause.Associations).Save(rest).Error)
}

func (r *restaurantRepository) AppendMenu(ctx context.Context, restaurantID, menuID string) error {
	row := restaurantMenu{RestaurantID: restaurantID, MenuID: menuID}
	return translate(r.db.WithContext(ctx).Create(&row).Error)
}

func (r *restaurantRepository) HasMenu(ctx context.Context, restaurantID, menuID string) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&restaurantMenu{}).
		Where("restaurant_id = ? AND menu_id = ?", restaurantID, menuID).
		Count(&n).Error
	return n > 0, err
}

// Search matches the term as a case-insensitive substring of name, city,
// country or any cuisine, then keeps restaurants offering at least one of
// the selected cuisines. The term is matched against the stored
// SearchText, never the JSON-encoded cuisine column.
func (r *restaurantRepository) Search(ctx context.Context, sq SearchQuery) ([]models.Restaurant, error) {
	q := r.db.WithContext(ctx).Model(&models.Restaurant{})

	if term := strings.TrimSpace(sq.Term); term != "" {
		q = q.Where("search_text LIKE ? ESCAPE '!'", containsPattern(strings.ToLower(term)))
	}

	if len(sq.Cuisines) > 0 {
		conds := make([]string, 0, len(sq.Cuisines))
		args := make([]any, 0, len(sq.Cuisines))
		for _, c := range sq.Cuisines {
			// cuisines are stored as a JSON array, so an exact element
			// match is a substring match on the quoted value
			quoted, err := json.Marshal(c)
			if err != nil {
				return nil, err
			}
			conds = append(conds, "cuisines LIKE ? ESCAPE '!'")
			args = append(args, containsPattern(string(quoted)))
		}
		q = q.Where("("+strings.Join(conds, " OR ")+")", args...)
	}

	limit := sq.Limit
	if limit <= 0 || limit > MaxSearchResults {
		limit = MaxSearchResults
	}

	var out []models.Restaurant
	err := q.Order(newestFirst).Limit(limit).Find(&out).Error
	return out, err
}

func (r *restaurantRepository) ListNewest(ctx context.Context, limit int) ([]models.Restaurant, error) {
	var out []models.Restaurant
	err := r.db.WithContext(ctx).Order(newestFirst).Limit(limit).Find(&out).Error
	return out, err
}

func first(q *gorm.DB) (*models.Restaurant, error) {
	var rest models.Restaurant
	err := q.First(&rest).Error
	if notFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rest, nil
}
