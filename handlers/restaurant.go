package handlers

import (
	"net/http"
	"strings"

	"food-ordering-api/apperr"
	"food-ordering-api/middleware"
	"food-ordering-api/service"

	"github.com/gin-gonic/gin"
)

type RestaurantHandler struct {
	restaurants *service.RestaurantService
}

func NewRestaurantHandler(restaurants *service.RestaurantService) *RestaurantHandler {
	return &RestaurantHandler{restaurants: restaurants}
}

// bindRestaurant reads the restaurant form and its optional image
func bindRestaurant(c *gin.Context) (service.RestaurantInput, error) {
	var in service.RestaurantInput
	if err := c.ShouldBind(&in); err != nil {
		return in, err
	}
	up, err := imageFile(c, ImageField)
	if err != nil {
		return in, err
	}
	in.Image = up
	return in, nil
}

func (h *RestaurantHandler) Create(c *gin.Context) {
	in, err := bindRestaurant(c)
	if err != nil {
		c.Error(err)
		return
	}
	defer closeUpload(in.Image)

	r, err := h.restaurants.Create(c.Request.Context(), middleware.SessionFrom(c), in)
	if err != nil {
		c.Error(err)
		return
	}
	apperr.Success(c, http.StatusCreated, gin.H{"message": "Restaurant Added", "restaurant": r})
}

// Get answers 404 with a null restaurant when the caller has none yet;
// the dashboard uses that to offer the create form.
func (h *RestaurantHandler) Get(c *gin.Context) {
	r, err := h.restaurants.Get(c.Request.Context(), middleware.SessionFrom(c))
	if err != nil {
		c.Error(err)
		return
	}
	if r == nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success":    false,
			"restaurant": nil,
			"message":    "Restaurant not found",
		})
		return
	}
	apperr.OK(c, gin.H{"restaurant": r})
}

func (h *RestaurantHandler) Update(c *gin.Context) {
	in, err := bindRestaurant(c)
	if err != nil {
		c.Error(err)
		return
	}
	defer closeUpload(in.Image)

	r, err := h.restaurants.Update(c.Request.Context(), middleware.SessionFrom(c), in)
	if err != nil {
		c.Error(err)
		return
	}
	apperr.OK(c, gin.H{"message": "Restaurant updated", "restaurant": r})
}

// Search takes the term from the path or the searchQuery parameter and a
// comma-separated selectedCuisines filter.
func (h *RestaurantHandler) Search(c *gin.Context) {
	term := c.Param("searchText")
	if term == "" {
		term = c.Query("searchQuery")
	}
	var cuisines []string
	if raw := c.Query("selectedCuisines"); raw != "" {
		cuisines = strings.Split(raw, ",")
	}

	list, err := h.restaurants.Search(c.Request.Context(), term, cuisines)
	if err != nil {
		c.Error(err)
		return
	}
	apperr.OK(c, gin.H{"data": list, "count": len(list)})
}

func (h *RestaurantHandler) All(c *gin.Context) {
	list, err := h.restaurants.All(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}
	apperr.OK(c, gin.H{"data": list})
}

func (h *RestaurantHandler) Single(c *gin.Context) {
	r, err := h.restaurants.Single(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}
	apperr.OK(c, gin.H{"restaurant": r})
}
