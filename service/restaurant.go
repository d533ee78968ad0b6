package service

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"food-ordering-api/apperr"
	"food-ordering-api/models"
	"food-ordering-api/repository"
)

const (
	maxRestaurantName   = 100
	allRestaurantsLimit = 20
)

type RestaurantService struct {
	restaurants repository.RestaurantRepository
	images      ImageUploader
	cache       Cache
	cacheTTL    time.Duration
}

func NewRestaurantService(restaurants repository.RestaurantRepository, images ImageUploader, cache Cache, cacheTTL time.Duration) *RestaurantService {
	return &RestaurantService{
		restaurants: restaurants,
		images:      images,
		cache:       cache,
		cacheTTL:    cacheTTL,
	}
}

// RestaurantInput is the raw multipart form. DeliveryTime is in minutes
// and Cuisines is a JSON-encoded array of strings.
type RestaurantInput struct {
	RestaurantName string  `form:"restaurantName"`
	City           string  `form:"city"`
	Country        string  `form:"country"`
	DeliveryTime   string  `form:"deliveryTime"`
	Cuisines       string  `form:"cuisines"`
	Image          *Upload `form:"-"`
}

func (in *RestaurantInput) trim() {
	in.RestaurantName = strings.TrimSpace(in.RestaurantName)
	in.City = strings.TrimSpace(in.City)
	in.Country = strings.TrimSpace(in.Country)
	in.DeliveryTime = strings.TrimSpace(in.DeliveryTime)
	in.Cuisines = strings.TrimSpace(in.Cuisines)
}

func (s *RestaurantService) Create(ctx context.Context, sess Session, in RestaurantInput) (*models.Restaurant, error) {
	if !sess.Authenticated() {
		return nil, apperr.Auth("User not authenticated")
	}
	in.trim()
	if in.RestaurantName == "" || in.City == "" || in.Country == "" || in.DeliveryTime == "" || in.Cuisines == "" {
		return nil, apperr.Validation("All fields are required: restaurantName, city, country, deliveryTime, cuisines")
	}

	existing, err := s.restaurants.FindByOwner(ctx, sess.UserID, false)
	if err != nil {
		return nil, apperr.Internal("failed to look up restaurant", err)
	}
	if existing != nil {
		return nil, apperr.Conflict("Restaurant already exist for this user")
	}
	if in.Image == nil {
		return nil, apperr.Validation("Image is required")
	}

	cuisines, err := parseCuisines(in.Cuisines)
	if err != nil {
		return nil, err
	}
	if len(cuisines) == 0 {
		return nil, apperr.Validation("At least one cuisine is required")
	}
	delivery, err := parseDeliveryTime(in.DeliveryTime)
	if err != nil {
		return nil, err
	}
	if utf8.RuneCountInString(in.RestaurantName) > maxRestaurantName {
		return nil, apperr.Validation("Restaurant name must be at most 100 characters")
	}

	url, err := uploadImage(ctx, s.images, folderRestaurants, in.Image)
	if err != nil {
		return nil, apperr.Dependency("Failed to upload image", err)
	}

	r := &models.Restaurant{
		OwnerID:        sess.UserID,
		RestaurantName: in.RestaurantName,
		City:           in.City,
		Country:        in.Country,
		DeliveryTime:   delivery,
		Cuisines:       cuisines,
		ImageURL:       url,
		Menus:          []models.Menu{},
	}
	if err := s.restaurants.Create(ctx, r); err != nil {
		// two concurrent creates both pass the lookup; the index decides
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperr.Conflict("Restaurant already exist for this user")
		}
		return nil, apperr.Internal("failed to create restaurant", err)
	}

	invalidate(ctx, s.cache, cacheKeyAllRestaurants)
	return r, nil
}

// Get returns the caller's restaurant with its menus, or nil when the
// caller has none.
func (s *RestaurantService) Get(ctx context.Context, sess Session) (*models.Restaurant, error) {
	if !sess.Authenticated() {
		return nil, apperr.Auth("User not authenticated")
	}
	r, err := s.restaurants.FindByOwner(ctx, sess.UserID, true)
	if err != nil {
		return nil, apperr.Internal("failed to load restaurant", err)
	}
	return r, nil
}

// Owned returns the caller's restaurant without its menus
func (s *RestaurantService) Owned(ctx context.Context, sess Session) (*models.Restaurant, error) {
	if !sess.Authenticated() {
		return nil, apperr.Auth("User not authenticated")
	}
	r, err := s.restaurants.FindByOwner(ctx, sess.UserID, false)
	if err != nil {
		return nil, apperr.Internal("failed to load restaurant", err)
	}
	if r == nil {
		return nil, apperr.NotFound("Restaurant not found")
	}
	return r, nil
}

func (s *RestaurantService) Update(ctx context.Context, sess Session, in RestaurantInput) (*models.Restaurant, error) {
	if !sess.Authenticated() {
		return nil, apperr.Auth("User not authenticated")
	}
	in.trim()

	r, err := s.restaurants.FindByOwner(ctx, sess.UserID, false)
	if err != nil {
		return nil, apperr.Internal("failed to load restaurant", err)
	}
	if r == nil {
		return nil, apperr.NotFound("Restaurant not found")
	}

	if in.RestaurantName != "" {
		if utf8.RuneCountInString(in.RestaurantName) > maxRestaurantName {
			return nil, apperr.Validation("Restaurant name must be at most 100 characters")
		}
		r.RestaurantName = in.RestaurantName
	}
	if in.City != "" {
		r.City = in.City
	}
	if in.Country != "" {
		r.Country = in.Country
	}
	if in.DeliveryTime != "" {
		delivery, err := parseDeliveryTime(in.DeliveryTime)
		if err != nil {
			return nil, err
		}
		r.DeliveryTime = delivery
	}
	if in.Cuisines != "" {
		cuisines, err := parseCuisines(in.Cuisines)
		if err != nil {
			return nil, err
		}
		// an empty list keeps the current cuisines
		if len(cuisines) > 0 {
			r.Cuisines = cuisines
		}
	}
	if in.Image != nil {
		url, err := uploadImage(ctx, s.images, folderRestaurants, in.Image)
		if err != nil {
			return nil, apperr.Dependency("Failed to upload image", err)
		}
		r.ImageURL = url
	}

	if err := s.restaurants.Update(ctx, r); err != nil {
		return nil, apperr.Internal("failed to update restaurant", err)
	}

	invalidate(ctx, s.cache, restaurantCacheKey(r.ID), cacheKeyAllRestaurants)
	return r, nil
}

// Search matches term against name, city, country and cuisines, then
// keeps restaurants offering any of the selected cuisines.
func (s *RestaurantService) Search(ctx context.Context, term string, cuisines []string) ([]models.Restaurant, error) {
	selected := make([]string, 0, len(cuisines))
	for _, c := range cuisines {
		if c = strings.TrimSpace(c); c != "" {
			selected = append(selected, c)
		}
	}

	out, err := s.restaurants.Search(ctx, repository.SearchQuery{
		Term:     term,
		Cuisines: selected,
		Limit:    repository.MaxSearchResults,
	})
	if err != nil {
		return nil, apperr.Internal("failed to search restaurants", err)
	}
	return out, nil
}

// All returns the newest restaurants
func (s *RestaurantService) All(ctx context.Context) ([]models.Restaurant, error) {
	var out []models.Restaurant
	err := readThrough(ctx, s.cache, s.cacheTTL, cacheKeyAllRestaurants, &out, func() (bool, error) {
		list, err := s.restaurants.ListNewest(ctx, allRestaurantsLimit)
		if err != nil {
			return false, err
		}
		out = list
		return true, nil
	})
	if err != nil {
		return nil, apperr.Internal("failed to list restaurants", err)
	}
	if out == nil {
		out = []models.Restaurant{}
	}
	return out, nil
}

// Single returns a restaurant with its menus newest first
func (s *RestaurantService) Single(ctx context.Context, id string) (*models.Restaurant, error) {
	if !models.IsObjectID(id) {
		return nil, apperr.Validation("Invalid restaurant ID")
	}

	var r models.Restaurant
	err := readThrough(ctx, s.cache, s.cacheTTL, restaurantCacheKey(id), &r, func() (bool, error) {
		loaded, err := s.restaurants.FindByID(ctx, id)
		if err != nil || loaded == nil {
			return false, err
		}
		r = *loaded
		return true, nil
	})
	if err != nil {
		return nil, apperr.Internal("failed to load restaurant", err)
	}
	if r.ID == "" {
		return nil, apperr.NotFound("Restaurant not found")
	}
	return &r, nil
}

func parseCuisines(raw string) ([]string, error) {
	var list []string
	if err := json.Unmarshal([]byte(raw), &list); err != nil {
		return nil, apperr.Validation("Invalid cuisines format")
	}
	out := make([]string, 0, len(list))
	for _, c := range list {
		if c = strings.TrimSpace(c); c != "" {
			out = append(out, c)
		}
	}
	return out, nil
}

func parseDeliveryTime(raw string) (int, error) {
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, apperr.Validation("Delivery time must be a non-negative number of minutes")
	}
	return n, nil
}
