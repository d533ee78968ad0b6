package models

import (
	"strings"

	"gorm.io/gorm"
)

// Restaurant is owned by exactly one user; the unique index on OwnerID
// is what stops two concurrent creates from both succeeding.
type Restaurant struct {
	Base
	OwnerID        string   `json:"user" gorm:"uniqueIndex;not null;size:24"`
	RestaurantName string   `json:"restaurantName" gorm:"not null;size:100"`
	City           string   `json:"city" gorm:"not null;index"`
	Country        string   `json:"country" gorm:"not null;index"`
	DeliveryTime   int      `json:"deliveryTime" gorm:"not null"`
	Cuisines       []string `json:"cuisines" gorm:"serializer:json;not null"`
	ImageURL       string   `json:"imageUrl" gorm:"not null"`
	Menus          []Menu   `json:"menus" gorm:"many2many:restaurant_menus;"`

	// SearchText is the lower-cased text that storefront search matches
	// against, one field per line so a term never spans two fields.
	SearchText string `json:"-" gorm:"not null;default:''"`
}

// BeforeSave keeps SearchText in step with the searchable fields
func (r *Restaurant) BeforeSave(tx *gorm.DB) error {
	r.SearchText = r.searchText()
	return nil
}

// searchText folds in Go because SQLite's LOWER only maps ASCII
func (r *Restaurant) searchText() string {
	parts := append([]string{r.RestaurantName, r.City, r.Country}, r.Cuisines...)
	return strings.ToLower(strings.Join(parts, "\n"))
}

// Menu exists on its own and is reachable only through the restaurant
// whose menu list references it.
type Menu struct {
	Base
	Name        string  `json:"name" gorm:"not null;size:100"`
	Description string  `json:"description" gorm:"not null;size:500"`
	Price       float64 `json:"price" gorm:"not null"`
	Image       string  `json:"image" gorm:"not null"`
}
