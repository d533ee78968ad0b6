package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"food-ordering-api/apperr"
	"food-ordering-api/models"
	"food-ordering-api/payment"
	"food-ordering-api/repository"
	"food-ordering-api/statemachine"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

const msgNoOrderPermission = "You don't have permission to update this order"

var hundred = decimal.NewFromInt(100)

type OrderConfig struct {
	// FrontendURL is where the payment page sends the customer back to
	FrontendURL string
}

type OrderService struct {
	orders      repository.OrderRepository
	checkouts   repository.CheckoutRepository
	restaurants repository.RestaurantRepository
	gateway     PaymentGateway
	publisher   OrderPublisher
	cfg         OrderConfig
	now         func() time.Time
}

func NewOrderService(
	orders repository.OrderRepository,
	checkouts repository.CheckoutRepository,
	restaurants repository.RestaurantRepository,
	gateway PaymentGateway,
	publisher OrderPublisher,
	cfg OrderConfig,
) *OrderService {
	return &OrderService{
		orders:      orders,
		checkouts:   checkouts,
		restaurants: restaurants,
		gateway:     gateway,
		publisher:   publisher,
		cfg:         cfg,
		now:         time.Now,
	}
}

// GetOrders returns the caller's orders, newest first
func (s *OrderService) GetOrders(ctx context.Context, sess Session) ([]models.Order, error) {
	if !sess.Authenticated() {
		return nil, apperr.Auth("User not authenticated")
	}
	orders, err := s.orders.ListByUser(ctx, sess.UserID)
	if err != nil {
		return nil, apperr.Internal("failed to list orders", err)
	}
	return orders, nil
}

type CheckoutLine struct {
	MenuID   string `json:"menuId" validate:"required,objectid"`
	Quantity int    `json:"quantity" validate:"required,min=1,max=100"`
}

// CheckoutInput is what the cart page submits. Only menu ids and
// quantities are trusted; names, images and prices come from the store.
type CheckoutInput struct {
	RestaurantID    string                 `json:"restaurantId" validate:"required,objectid"`
	DeliveryDetails models.DeliveryDetails `json:"deliveryDetails"`
	CartItems       []CheckoutLine         `json:"cartItems" validate:"required,min=1,dive"`
}

// CreateCheckoutSession prices the cart from the restaurant's own menu,
// opens a hosted payment page and records the snapshot the order will be
// created from once payment is confirmed.
func (s *OrderService) CreateCheckoutSession(ctx context.Context, sess Session, in CheckoutInput) (*payment.Session, error) {
	if !sess.Authenticated() {
		return nil, apperr.Auth("User not authenticated")
	}
	in.DeliveryDetails.Email = normalizeEmail(in.DeliveryDetails.Email)
	if err := check("Invalid checkout request", in); err != nil {
		return nil, err
	}

	r, err := s.restaurants.FindByID(ctx, in.RestaurantID)
	if err != nil {
		return nil, apperr.Internal("failed to load restaurant", err)
	}
	if r == nil {
		return nil, apperr.NotFound("Restaurant not found")
	}

	menus := make(map[string]models.Menu, len(r.Menus))
	for _, m := range r.Menus {
		menus[m.ID] = m
	}

	total := decimal.Zero
	items := make([]models.CartItem, 0, len(in.CartItems))
	lines := make([]payment.LineItem, 0, len(in.CartItems))
	for _, line := range in.CartItems {
		m, ok := menus[line.MenuID]
		if !ok {
			return nil, apperr.Validation("Cart contains an item that is not on this restaurant's menu", line.MenuID)
		}
		price := decimal.NewFromFloat(m.Price)
		total = total.Add(price.Mul(decimal.NewFromInt(int64(line.Quantity))))

		items = append(items, models.CartItem{
			MenuID:   m.ID,
			Name:     m.Name,
			Image:    m.Image,
			Price:    m.Price,
			Quantity: line.Quantity,
		})
		lines = append(lines, payment.LineItem{
			Name:       m.Name,
			Image:      m.Image,
			UnitAmount: minorUnits(price),
			Quantity:   int64(line.Quantity),
		})
	}

	checkoutID := models.NewID()
	base := strings.TrimRight(s.cfg.FrontendURL, "/")
	ps, err := s.gateway.CreateCheckoutSession(ctx, payment.CheckoutRequest{
		CheckoutID:    checkoutID,
		CustomerEmail: in.DeliveryDetails.Email,
		Items:         lines,
		SuccessURL:    base + "/order/status",
		CancelURL:     base + "/cart",
	})
	if err != nil {
		return nil, apperr.Dependency("Failed to create checkout session", err)
	}

	c := &models.Checkout{
		Base:              models.Base{ID: checkoutID},
		ProviderSessionID: ps.ID,
		UserID:            sess.UserID,
		RestaurantID:      r.ID,
		DeliveryDetails:   in.DeliveryDetails,
		CartItems:         items,
		TotalAmount:       total.Round(2).InexactFloat64(),
	}
	if err := s.checkouts.Create(ctx, c); err != nil {
		return nil, apperr.Internal("failed to record checkout", err)
	}
	return ps, nil
}

// HandleWebhook turns a confirmed payment into a pending order. A checkout
// completed with a delayed payment method waits for the provider to report
// the payment as succeeded. Redelivered events for an already completed
// checkout are acknowledged without effect.
func (s *OrderService) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	ev, err := s.gateway.ParseWebhook(payload, signature)
	if err != nil {
		return apperr.Validation("Invalid webhook signature")
	}
	if ev.Type != payment.EventCheckoutCompleted && ev.Type != payment.EventAsyncPaymentSucceeded {
		return nil
	}
	if !ev.Settled() {
		logrus.WithFields(logrus.Fields{
			"session_id":     ev.SessionID,
			"payment_status": ev.PaymentStatus,
		}).Info("checkout completed, awaiting payment")
		return nil
	}

	c, err := s.checkouts.FindByProviderSession(ctx, ev.SessionID)
	if err != nil {
		return apperr.Internal("failed to load checkout", err)
	}
	if c == nil {
		return apperr.NotFound("Checkout not found")
	}
	if c.CompletedAt != nil {
		return nil
	}

	log := logrus.WithFields(logrus.Fields{"checkout_id": c.ID, "session_id": ev.SessionID})
	if want := minorUnits(decimal.NewFromFloat(c.TotalAmount)); ev.AmountTotal != 0 && ev.AmountTotal != want {
		log.WithFields(logrus.Fields{"paid": ev.AmountTotal, "expected": want}).Warn("paid amount differs from cart total")
	}

	order := &models.Order{
		UserID:          c.UserID,
		RestaurantID:    c.RestaurantID,
		DeliveryDetails: c.DeliveryDetails,
		CartItems:       c.CartItems,
		TotalAmount:     c.TotalAmount,
		Status:          models.StatusPending,
	}
	if err := s.checkouts.Complete(ctx, c, order, s.now()); err != nil {
		if errors.Is(err, repository.ErrAlreadyCompleted) {
			return nil
		}
		return apperr.Internal("failed to create order", err)
	}

	log.WithField("order_id", order.ID).Info("order created")
	s.publisher.Publish(order.RestaurantID, models.OrderEvent{Type: models.EventOrderCreated, Order: order})
	return nil
}

// GetRestaurantOrders returns every order placed with the caller's
// restaurant, newest first, with customer and restaurant attached.
func (s *OrderService) GetRestaurantOrders(ctx context.Context, sess Session) ([]models.Order, error) {
	r, err := s.ownedRestaurant(ctx, sess)
	if err != nil {
		return nil, err
	}
	if r == nil {
		return nil, apperr.NotFound("Restaurant not found")
	}

	orders, err := s.orders.ListByRestaurant(ctx, r.ID)
	if err != nil {
		return nil, apperr.Internal("failed to list orders", err)
	}
	for i := range orders {
		orders[i].Restaurant = r
	}
	return orders, nil
}

// UpdateOrderStatus sets any recognised status on an order of the caller's
// restaurant. Transitions are not restricted.
func (s *OrderService) UpdateOrderStatus(ctx context.Context, sess Session, orderID, rawStatus string) (*models.Order, error) {
	if !sess.Authenticated() {
		return nil, apperr.Auth("User not authenticated")
	}
	rawStatus = strings.TrimSpace(rawStatus)
	if rawStatus == "" {
		return nil, apperr.Validation("Status is required")
	}
	status, err := statemachine.Parse(rawStatus)
	if err != nil {
		return nil, apperr.Validation(err.Error())
	}

	order, err := s.ownedOrder(ctx, sess, orderID)
	if err != nil {
		return nil, err
	}

	change := &models.OrderStatusChange{
		OrderID:    order.ID,
		FromStatus: order.Status,
		ToStatus:   status,
		ChangedBy:  sess.UserID,
	}
	if err := s.orders.UpdateStatus(ctx, change); err != nil {
		return nil, apperr.Internal("failed to update order status", err)
	}
	order.Status = status

	s.publisher.Publish(order.RestaurantID, models.OrderEvent{Type: models.EventOrderStatus, Order: order})
	return order, nil
}

// GetOrderHistory returns the status changes of an order of the caller's
// restaurant, oldest first.
func (s *OrderService) GetOrderHistory(ctx context.Context, sess Session, orderID string) ([]models.OrderStatusChange, error) {
	if !sess.Authenticated() {
		return nil, apperr.Auth("User not authenticated")
	}
	order, err := s.ownedOrder(ctx, sess, orderID)
	if err != nil {
		return nil, err
	}
	history, err := s.orders.History(ctx, order.ID)
	if err != nil {
		return nil, apperr.Internal("failed to load order history", err)
	}
	return history, nil
}

func (s *OrderService) ownedRestaurant(ctx context.Context, sess Session) (*models.Restaurant, error) {
	if !sess.Authenticated() {
		return nil, apperr.Auth("User not authenticated")
	}
	r, err := s.restaurants.FindByOwner(ctx, sess.UserID, false)
	if err != nil {
		return nil, apperr.Internal("failed to load restaurant", err)
	}
	return r, nil
}

// ownedOrder loads an order and checks it was placed with the caller's
// restaurant.
func (s *OrderService) ownedOrder(ctx context.Context, sess Session, orderID string) (*models.Order, error) {
	if !models.IsObjectID(orderID) {
		return nil, apperr.NotFound("Order not found")
	}
	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, apperr.Internal("failed to load order", err)
	}
	if order == nil {
		return nil, apperr.NotFound("Order not found")
	}

	r, err := s.ownedRestaurant(ctx, sess)
	if err != nil {
		return nil, err
	}
	if r == nil || r.ID != order.RestaurantID {
		return nil, apperr.Forbidden(msgNoOrderPermission)
	}
	return order, nil
}

func minorUnits(amount decimal.Decimal) int64 {
	return amount.Mul(hundred).Round(0).IntPart()
}
