package handlers

import (
	"fmt"
	"strings"
	"time"

	"food-ordering-api/apperr"
	"food-ordering-api/middleware"
	"food-ordering-api/models"
	"food-ordering-api/realtime"
	"food-ordering-api/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/tealeg/xlsx"
)

const exportTimeLayout = "2006-01-02 15:04:05"

// RestaurantOrderHandler serves the order side of the restaurant dashboard
type RestaurantOrderHandler struct {
	orders      *service.OrderService
	restaurants *service.RestaurantService
	hub         *realtime.Hub
}

func NewRestaurantOrderHandler(orders *service.OrderService, restaurants *service.RestaurantService, hub *realtime.Hub) *RestaurantOrderHandler {
	return &RestaurantOrderHandler{orders: orders, restaurants: restaurants, hub: hub}
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

func (h *RestaurantOrderHandler) List(c *gin.Context) {
	orders, err := h.orders.GetRestaurantOrders(c.Request.Context(), middleware.SessionFrom(c))
	if err != nil {
		c.Error(err)
		return
	}
	apperr.OK(c, gin.H{"orders": orders})
}

func (h *RestaurantOrderHandler) UpdateStatus(c *gin.Context) {
	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(err)
		return
	}
	order, err := h.orders.UpdateOrderStatus(c.Request.Context(), middleware.SessionFrom(c), c.Param("orderId"), req.Status)
	if err != nil {
		c.Error(err)
		return
	}
	apperr.OK(c, gin.H{"status": order.Status, "message": "Status updated"})
}

func (h *RestaurantOrderHandler) History(c *gin.Context) {
	history, err := h.orders.GetOrderHistory(c.Request.Context(), middleware.SessionFrom(c), c.Param("orderId"))
	if err != nil {
		c.Error(err)
		return
	}
	apperr.OK(c, gin.H{"history": history})
}

// Export downloads the restaurant's orders as a spreadsheet
func (h *RestaurantOrderHandler) Export(c *gin.Context) {
	orders, err := h.orders.GetRestaurantOrders(c.Request.Context(), middleware.SessionFrom(c))
	if err != nil {
		c.Error(err)
		return
	}

	file, err := ordersWorkbook(orders)
	if err != nil {
		c.Error(apperr.Internal("failed to build order export", err))
		return
	}

	c.Header("Content-Disposition", "attachment; filename=orders.xlsx")
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Transfer-Encoding", "binary")
	c.Header("Expires", "0")
	if err := file.Write(c.Writer); err != nil {
		// headers are out; all that is left is to log
		logrus.WithError(err).Error("failed to write order export")
	}
}

func ordersWorkbook(orders []models.Order) (*xlsx.File, error) {
	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Orders")
	if err != nil {
		return nil, err
	}

	header := sheet.AddRow()
	for _, h := range []string{"Order ID", "Status", "Customer", "Email", "Address", "City", "Items", "Total", "Placed At"} {
		header.AddCell().SetValue(h)
	}

	for _, o := range orders {
		items := make([]string, 0, len(o.CartItems))
		for _, it := range o.CartItems {
			items = append(items, fmt.Sprintf("%s x%d", it.Name, it.Quantity))
		}

		row := sheet.AddRow()
		row.AddCell().SetValue(o.ID)
		row.AddCell().SetValue(string(o.Status))
		row.AddCell().SetValue(o.DeliveryDetails.Name)
		row.AddCell().SetValue(o.DeliveryDetails.Email)
		row.AddCell().SetValue(o.DeliveryDetails.Address)
		row.AddCell().SetValue(o.DeliveryDetails.City)
		row.AddCell().SetValue(strings.Join(items, ", "))
		row.AddCell().SetFloat(o.TotalAmount)
		row.AddCell().SetValue(o.CreatedAt.UTC().Format(exportTimeLayout))
	}
	return file, nil
}

// Live streams order events for the caller's restaurant over a websocket
func (h *RestaurantOrderHandler) Live(c *gin.Context) {
	r, err := h.restaurants.Owned(c.Request.Context(), middleware.SessionFrom(c))
	if err != nil {
		c.Error(err)
		return
	}

	start := time.Now()
	if err := h.hub.Serve(c.Writer, c.Request, r.ID); err != nil {
		// the upgrader has already answered the request
		logrus.WithError(err).WithField("restaurant_id", r.ID).Warn("live order upgrade failed")
		return
	}
	logrus.WithFields(logrus.Fields{
		"restaurant_id": r.ID,
		"duration":      time.Since(start).String(),
	}).Debug("live order connection closed")
}
