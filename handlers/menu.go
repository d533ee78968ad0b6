package handlers

import (
	"net/http"

	"food-ordering-api/apperr"
	"food-ordering-api/middleware"
	"food-ordering-api/service"

	"github.com/gin-gonic/gin"
)

type MenuHandler struct {
	menus *service.MenuService
}

func NewMenuHandler(menus *service.MenuService) *MenuHandler {
	return &MenuHandler{menus: menus}
}

func bindMenu(c *gin.Context) (service.MenuInput, error) {
	var in service.MenuInput
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

func (h *MenuHandler) Add(c *gin.Context) {
	in, err := bindMenu(c)
	if err != nil {
		c.Error(err)
		return
	}
	defer closeUpload(in.Image)

	menu, err := h.menus.AddMenu(c.Request.Context(), middleware.SessionFrom(c), in)
	if err != nil {
		c.Error(err)
		return
	}
	apperr.Success(c, http.StatusCreated, gin.H{"message": "Menu added successfully", "menu": menu})
}

func (h *MenuHandler) Edit(c *gin.Context) {
	in, err := bindMenu(c)
	if err != nil {
		c.Error(err)
		return
	}
	defer closeUpload(in.Image)

	menu, err := h.menus.EditMenu(c.Request.Context(), middleware.SessionFrom(c), c.Param("id"), in)
	if err != nil {
		c.Error(err)
		return
	}
	apperr.OK(c, gin.H{"message": "Menu updated", "menu": menu})
}
