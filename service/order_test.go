package service_test

import (
	"context"
	"errors"
	"testing"

	"food-ordering-api/apperr"
	"food-ordering-api/mocks"
	"food-ordering-api/models"
	"food-ordering-api/payment"
	"food-ordering-api/repository/repotest"
	"food-ordering-api/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type orderFixture struct {
	stores
	svc        *service.OrderService
	gateway    *mocks.MockPaymentGateway
	publisher  *mocks.MockOrderPublisher
	owner      service.Session
	customer   service.Session
	shop       *models.Restaurant
	pizza      *models.Menu
	salad      *models.Menu
}

func newOrderFixture(t *testing.T) *orderFixture {
	ctrl := gomock.NewController(t)
	f := &orderFixture{
		stores:    newStores(repotest.Open(t)),
		gateway:   mocks.NewMockPaymentGateway(ctrl),
		publisher: mocks.NewMockOrderPublisher(ctrl),
	}
	f.svc = service.NewOrderService(f.orders, f.checkouts, f.restaurants, f.gateway, f.publisher, service.OrderConfig{
		FrontendURL: "http://front.test",
	})
	f.owner = f.user(t, "owner@x.com")
	f.customer = f.user(t, "customer@x.com")
	f.pizza = &models.Menu{Name: "Pizza", Description: "cheese", Price: 100.5, Image: "p.png"}
	f.salad = &models.Menu{Name: "Salad", Description: "green", Price: 50, Image: "s.png"}
	f.shop = f.restaurant(t, f.owner, "Milano Pizza", f.pizza, f.salad)
	return f
}

func (f *orderFixture) cart() service.CheckoutInput {
	return service.CheckoutInput{
		RestaurantID: f.shop.ID,
		DeliveryDetails: models.DeliveryDetails{
			Email:   "Customer@x.com",
			Name:    "Cus Tomer",
			Address: "1 Main St",
			City:    "Chicago",
		},
		CartItems: []service.CheckoutLine{
			{MenuID: f.pizza.ID, Quantity: 2},
			{MenuID: f.salad.ID, Quantity: 1},
		},
	}
}

// placeOrder stores a pending order for the customer directly
func (f *orderFixture) placeOrder(t *testing.T) *models.Order {
	t.Helper()
	o := &models.Order{
		UserID:          f.customer.UserID,
		RestaurantID:    f.shop.ID,
		DeliveryDetails: f.cart().DeliveryDetails,
		CartItems:       []models.CartItem{{MenuID: f.pizza.ID, Name: "Pizza", Price: 100.5, Quantity: 1}},
		TotalAmount:     100.5,
		Status:          models.StatusPending,
	}
	require.NoError(t, f.orders.Create(context.Background(), o))
	return o
}

func TestCheckoutPricesFromMenu(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()

	var sent payment.CheckoutRequest
	f.gateway.EXPECT().CreateCheckoutSession(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, req payment.CheckoutRequest) (*payment.Session, error) {
			sent = req
			return &payment.Session{ID: "cs_1", URL: "https://pay.test/cs_1"}, nil
		})

	sess, err := f.svc.CreateCheckoutSession(ctx, f.customer, f.cart())
	require.NoError(t, err)
	assert.Equal(t, "https://pay.test/cs_1", sess.URL)

	require.Len(t, sent.Items, 2)
	assert.Equal(t, int64(10050), sent.Items[0].UnitAmount)
	assert.Equal(t, int64(2), sent.Items[0].Quantity)
	assert.Equal(t, int64(5000), sent.Items[1].UnitAmount)
	assert.Equal(t, "customer@x.com", sent.CustomerEmail)
	assert.Equal(t, "http://front.test/order/status", sent.SuccessURL)
	assert.Equal(t, "http://front.test/cart", sent.CancelURL)

	c, err := f.checkouts.FindByProviderSession(ctx, "cs_1")
	require.NoError(t, err)
	require.NotNil(t, c)
	assert.Equal(t, sent.CheckoutID, c.ID)
	assert.Equal(t, 251.0, c.TotalAmount)
	assert.Equal(t, f.customer.UserID, c.UserID)
	require.Len(t, c.CartItems, 2)
	assert.Equal(t, "Pizza", c.CartItems[0].Name)
	assert.Nil(t, c.CompletedAt)
}

func TestCheckoutRejectsBadCarts(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()
	foreign := &models.Menu{Name: "Sushi", Description: "raw", Price: 20, Image: "x.png"}
	f.restaurant(t, f.user(t, "other@x.com"), "Tokyo", foreign)

	cases := map[string]func(*service.CheckoutInput){
		"foreign menu":   func(in *service.CheckoutInput) { in.CartItems[0].MenuID = foreign.ID },
		"empty cart":     func(in *service.CheckoutInput) { in.CartItems = nil },
		"zero quantity":  func(in *service.CheckoutInput) { in.CartItems[0].Quantity = 0 },
		"bad email":      func(in *service.CheckoutInput) { in.DeliveryDetails.Email = "nope" },
		"missing city":   func(in *service.CheckoutInput) { in.DeliveryDetails.City = "" },
		"malformed menu": func(in *service.CheckoutInput) { in.CartItems[0].MenuID = "123" },
	}
	for name, mutate := range cases {
		in := f.cart()
		mutate(&in)
		_, err := f.svc.CreateCheckoutSession(ctx, f.customer, in)
		assert.True(t, apperr.Is(err, apperr.KindValidation), name)
	}

	in := f.cart()
	in.RestaurantID = models.NewID()
	_, err := f.svc.CreateCheckoutSession(ctx, f.customer, in)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))

	_, err = f.svc.CreateCheckoutSession(ctx, service.Session{}, f.cart())
	assert.True(t, apperr.Is(err, apperr.KindAuth))
}

func TestCheckoutGatewayFailure(t *testing.T) {
	f := newOrderFixture(t)
	f.gateway.EXPECT().CreateCheckoutSession(gomock.Any(), gomock.Any()).Return(nil, errors.New("stripe down"))

	_, err := f.svc.CreateCheckoutSession(context.Background(), f.customer, f.cart())
	assert.True(t, apperr.Is(err, apperr.KindDependency))
}

func TestWebhookCreatesOrderOnce(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()

	f.gateway.EXPECT().CreateCheckoutSession(gomock.Any(), gomock.Any()).
		Return(&payment.Session{ID: "cs_1", URL: "https://pay.test/cs_1"}, nil)
	_, err := f.svc.CreateCheckoutSession(ctx, f.customer, f.cart())
	require.NoError(t, err)

	f.gateway.EXPECT().ParseWebhook([]byte("payload"), "sig").
		Return(&payment.Event{
			Type:          payment.EventCheckoutCompleted,
			SessionID:     "cs_1",
			AmountTotal:   25100,
			PaymentStatus: payment.PaymentStatusPaid,
		}, nil).
		Times(2)
	f.publisher.EXPECT().Publish(f.shop.ID, gomock.Any()).
		Do(func(_ string, ev models.OrderEvent) {
			assert.Equal(t, models.EventOrderCreated, ev.Type)
			assert.Equal(t, models.StatusPending, ev.Order.Status)
		}).
		Times(1)

	require.NoError(t, f.svc.HandleWebhook(ctx, []byte("payload"), "sig"))
	require.NoError(t, f.svc.HandleWebhook(ctx, []byte("payload"), "sig"), "redelivery is acknowledged")

	orders, err := f.svc.GetOrders(ctx, f.customer)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, models.StatusPending, orders[0].Status)
	assert.Equal(t, 251.0, orders[0].TotalAmount)
	assert.Len(t, orders[0].CartItems, 2)
	require.NotNil(t, orders[0].Restaurant)
	assert.Equal(t, "Milano Pizza", orders[0].Restaurant.RestaurantName)
}

func TestWebhookWaitsForDelayedPayment(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()

	f.gateway.EXPECT().CreateCheckoutSession(gomock.Any(), gomock.Any()).
		Return(&payment.Session{ID: "cs_async", URL: "https://pay.test/cs_async"}, nil)
	_, err := f.svc.CreateCheckoutSession(ctx, f.customer, f.cart())
	require.NoError(t, err)

	gomock.InOrder(
		f.gateway.EXPECT().ParseWebhook([]byte("completed"), "sig").Return(&payment.Event{
			Type:          payment.EventCheckoutCompleted,
			SessionID:     "cs_async",
			PaymentStatus: payment.PaymentStatusUnpaid,
		}, nil),
		f.gateway.EXPECT().ParseWebhook([]byte("succeeded"), "sig").Return(&payment.Event{
			Type:          payment.EventAsyncPaymentSucceeded,
			SessionID:     "cs_async",
			PaymentStatus: payment.PaymentStatusPaid,
		}, nil),
	)

	require.NoError(t, f.svc.HandleWebhook(ctx, []byte("completed"), "sig"))
	orders, err := f.svc.GetOrders(ctx, f.customer)
	require.NoError(t, err)
	assert.Empty(t, orders, "no order before the money arrives")

	f.publisher.EXPECT().Publish(f.shop.ID, gomock.Any()).Times(1)
	require.NoError(t, f.svc.HandleWebhook(ctx, []byte("succeeded"), "sig"))
	orders, err = f.svc.GetOrders(ctx, f.customer)
	require.NoError(t, err)
	assert.Len(t, orders, 1)
}

func TestWebhookRejectsBadSignature(t *testing.T) {
	f := newOrderFixture(t)
	f.gateway.EXPECT().ParseWebhook(gomock.Any(), gomock.Any()).Return(nil, errors.New("bad signature"))

	err := f.svc.HandleWebhook(context.Background(), []byte("{}"), "forged")
	assert.True(t, apperr.Is(err, apperr.KindValidation))
}

func TestWebhookIgnoresOtherEvents(t *testing.T) {
	f := newOrderFixture(t)
	f.gateway.EXPECT().ParseWebhook(gomock.Any(), gomock.Any()).Return(&payment.Event{Type: "charge.refunded"}, nil)

	assert.NoError(t, f.svc.HandleWebhook(context.Background(), []byte("{}"), "sig"))
}

func TestWebhookUnknownSession(t *testing.T) {
	f := newOrderFixture(t)
	f.gateway.EXPECT().ParseWebhook(gomock.Any(), gomock.Any()).
		Return(&payment.Event{Type: payment.EventCheckoutCompleted, SessionID: "cs_missing", PaymentStatus: payment.PaymentStatusPaid}, nil)

	err := f.svc.HandleWebhook(context.Background(), []byte("{}"), "sig")
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestUpdateOrderStatus(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()
	o := f.placeOrder(t)

	f.publisher.EXPECT().Publish(f.shop.ID, gomock.Any()).Times(2)

	updated, err := f.svc.UpdateOrderStatus(ctx, f.owner, o.ID, "delivered")
	require.NoError(t, err)
	assert.Equal(t, models.StatusDelivered, updated.Status)

	// delivered is not locked
	updated, err = f.svc.UpdateOrderStatus(ctx, f.owner, o.ID, "confirmed")
	require.NoError(t, err)
	assert.Equal(t, models.StatusConfirmed, updated.Status)

	history, err := f.svc.GetOrderHistory(ctx, f.owner, o.ID)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, models.StatusPending, history[0].FromStatus)
	assert.Equal(t, models.StatusDelivered, history[0].ToStatus)
	assert.Equal(t, f.owner.UserID, history[1].ChangedBy)
}

func TestUpdateOrderStatusFailuresLeaveStatus(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()
	o := f.placeOrder(t)
	rival := f.user(t, "rival@x.com")
	f.restaurant(t, rival, "Rome Bistro")

	for _, status := range []string{"cooking", "Pending", "cancelled"} {
		_, err := f.svc.UpdateOrderStatus(ctx, f.owner, o.ID, status)
		assert.True(t, apperr.Is(err, apperr.KindValidation), status)
	}
	_, err := f.svc.UpdateOrderStatus(ctx, f.owner, o.ID, "")
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	_, err = f.svc.UpdateOrderStatus(ctx, f.owner, models.NewID(), "confirmed")
	assert.True(t, apperr.Is(err, apperr.KindNotFound))

	for _, sess := range []service.Session{rival, f.customer} {
		_, err = f.svc.UpdateOrderStatus(ctx, sess, o.ID, "confirmed")
		assert.True(t, apperr.Is(err, apperr.KindForbidden))
	}

	stored, err := f.orders.FindByID(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, stored.Status)

	history, err := f.orders.History(ctx, o.ID)
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestGetRestaurantOrders(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()

	_, err := f.svc.GetRestaurantOrders(ctx, f.customer)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))

	first := f.placeOrder(t)
	second := f.placeOrder(t)

	orders, err := f.svc.GetRestaurantOrders(ctx, f.owner)
	require.NoError(t, err)
	require.Len(t, orders, 2)
	assert.Equal(t, second.ID, orders[0].ID)
	assert.Equal(t, first.ID, orders[1].ID)
	require.NotNil(t, orders[0].User)
	assert.Equal(t, "customer@x.com", orders[0].User.Email)
	require.NotNil(t, orders[0].Restaurant)
	assert.Equal(t, f.shop.ID, orders[0].Restaurant.ID)
}

func TestGetOrdersRequiresSession(t *testing.T) {
	f := newOrderFixture(t)
	_, err := f.svc.GetOrders(context.Background(), service.Session{})
	assert.True(t, apperr.Is(err, apperr.KindAuth))
}
