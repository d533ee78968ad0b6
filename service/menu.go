package service

import (
	"context"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	"food-ordering-api/apperr"
	"food-ordering-api/models"
	"food-ordering-api/repository"

	"github.com/sirupsen/logrus"
)

const (
	maxMenuName        = 100
	maxMenuDescription = 500
)

type MenuService struct {
	menus       repository.MenuRepository
	restaurants repository.RestaurantRepository
	images      ImageUploader
	cache       Cache
}

func NewMenuService(menus repository.MenuRepository, restaurants repository.RestaurantRepository, images ImageUploader, cache Cache) *MenuService {
	return &MenuService{menus: menus, restaurants: restaurants, images: images, cache: cache}
}

// MenuInput is the raw multipart form; Price is parsed here
type MenuInput struct {
	Name        string  `form:"name"`
	Description string  `form:"description"`
	Price       string  `form:"price"`
	Image       *Upload `form:"-"`
}

// AddMenu creates a menu item and appends it to the caller's restaurant.
// The item is removed again when the caller owns no restaurant.
func (s *MenuService) AddMenu(ctx context.Context, sess Session, in MenuInput) (*models.Menu, error) {
	name := strings.TrimSpace(in.Name)
	description := strings.TrimSpace(in.Description)
	rawPrice := strings.TrimSpace(in.Price)

	if name == "" || description == "" || rawPrice == "" {
		return nil, apperr.Validation("All fields are required")
	}
	if !sess.Authenticated() {
		return nil, apperr.Auth("User not authenticated")
	}
	if in.Image == nil {
		return nil, apperr.Validation("Image is required")
	}
	price, err := parsePrice(rawPrice)
	if err != nil {
		return nil, err
	}
	if err := checkMenuText(name, description); err != nil {
		return nil, err
	}

	url, err := uploadImage(ctx, s.images, folderMenus, in.Image)
	if err != nil {
		return nil, apperr.Dependency("Failed to upload image", err)
	}

	menu := &models.Menu{Name: name, Description: description, Price: price, Image: url}
	if err := s.menus.Create(ctx, menu); err != nil {
		return nil, apperr.Internal("failed to create menu", err)
	}

	r, err := s.restaurants.FindByOwner(ctx, sess.UserID, false)
	if err != nil || r == nil {
		s.discard(ctx, menu.ID)
		if err != nil {
			return nil, apperr.Internal("failed to load restaurant", err)
		}
		return nil, apperr.NotFound("Restaurant not found")
	}
	if err := s.restaurants.AppendMenu(ctx, r.ID, menu.ID); err != nil {
		s.discard(ctx, menu.ID)
		return nil, apperr.Internal("failed to attach menu", err)
	}

	invalidate(ctx, s.cache, restaurantCacheKey(r.ID))
	return menu, nil
}

// EditMenu applies the supplied fields to a menu item of the caller's
// restaurant. Ownership is checked before any field is looked at.
func (s *MenuService) EditMenu(ctx context.Context, sess Session, menuID string, in MenuInput) (*models.Menu, error) {
	if !sess.Authenticated() {
		return nil, apperr.Auth("User not authenticated")
	}
	if !models.IsObjectID(menuID) {
		return nil, apperr.Validation("Invalid menu ID")
	}

	menu, err := s.menus.FindByID(ctx, menuID)
	if err != nil {
		return nil, apperr.Internal("failed to load menu", err)
	}
	if menu == nil {
		return nil, apperr.NotFound("Menu not found")
	}

	r, err := s.restaurants.FindByOwner(ctx, sess.UserID, false)
	if err != nil {
		return nil, apperr.Internal("failed to load restaurant", err)
	}
	if r == nil {
		return nil, apperr.Forbidden("Not allowed")
	}
	owned, err := s.restaurants.HasMenu(ctx, r.ID, menu.ID)
	if err != nil {
		return nil, apperr.Internal("failed to check menu ownership", err)
	}
	if !owned {
		return nil, apperr.Forbidden("Not allowed")
	}

	if v := strings.TrimSpace(in.Name); v != "" {
		menu.Name = v
	}
	if v := strings.TrimSpace(in.Description); v != "" {
		menu.Description = v
	}
	if v := strings.TrimSpace(in.Price); v != "" {
		price, err := parsePrice(v)
		if err != nil {
			return nil, err
		}
		menu.Price = price
	}
	if err := checkMenuText(menu.Name, menu.Description); err != nil {
		return nil, err
	}
	if in.Image != nil {
		url, err := uploadImage(ctx, s.images, folderMenus, in.Image)
		if err != nil {
			return nil, apperr.Dependency("Failed to upload image", err)
		}
		menu.Image = url
	}

	if err := s.menus.Update(ctx, menu); err != nil {
		return nil, apperr.Internal("failed to update menu", err)
	}

	invalidate(ctx, s.cache, restaurantCacheKey(r.ID))
	return menu, nil
}

func (s *MenuService) discard(ctx context.Context, menuID string) {
	if err := s.menus.Delete(ctx, menuID); err != nil {
		logrus.WithError(err).WithField("menu_id", menuID).Error("failed to remove orphaned menu")
	}
}

func parsePrice(raw string) (float64, error) {
	price, err := strconv.ParseFloat(raw, 64)
	if err != nil || price < 0 || math.IsNaN(price) || math.IsInf(price, 0) {
		return 0, apperr.Validation("Invalid price")
	}
	return price, nil
}

func checkMenuText(name, description string) error {
	if utf8.RuneCountInString(name) > maxMenuName {
		return apperr.Validation("Menu name must be at most 100 characters")
	}
	if utf8.RuneCountInString(description) > maxMenuDescription {
		return apperr.Validation("Menu description must be at most 500 characters")
	}
	return nil
}
