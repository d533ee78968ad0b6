package service_test

import (
	"context"
	"strings"
	"testing"

	"food-ordering-api/models"
	"food-ordering-api/repository"
	"food-ordering-api/service"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// stores bundles the gorm repositories over one test database
type stores struct {
	db          *gorm.DB
	users       repository.UserRepository
	restaurants repository.RestaurantRepository
	menus       repository.MenuRepository
	orders      repository.OrderRepository
	checkouts   repository.CheckoutRepository
}

func newStores(db *gorm.DB) stores {
	return stores{
		db:          db,
		users:       repository.NewUserRepository(db),
		restaurants: repository.NewRestaurantRepository(db),
		menus:       repository.NewMenuRepository(db),
		orders:      repository.NewOrderRepository(db),
		checkouts:   repository.NewCheckoutRepository(db),
	}
}

func (s stores) user(t *testing.T, email string) service.Session {
	t.Helper()
	u := &models.User{Fullname: "User " + email, Email: email, PasswordHash: "x", Contact: "9990001111"}
	require.NoError(t, s.users.Create(context.Background(), u))
	return service.Session{UserID: u.ID}
}

// restaurant stores a restaurant for owner with the given menus attached
func (s stores) restaurant(t *testing.T, owner service.Session, name string, menus ...*models.Menu) *models.Restaurant {
	t.Helper()
	ctx := context.Background()
	r := &models.Restaurant{
		OwnerID:        owner.UserID,
		RestaurantName: name,
		City:           "Chicago",
		Country:        "USA",
		DeliveryTime:   30,
		Cuisines:       []string{"Italian"},
		ImageURL:       "http://img.test/r.png",
	}
	require.NoError(t, s.restaurants.Create(ctx, r))
	for _, m := range menus {
		require.NoError(t, s.menus.Create(ctx, m))
		require.NoError(t, s.restaurants.AppendMenu(ctx, r.ID, m.ID))
	}
	return r
}

func image(name string) *service.Upload {
	return &service.Upload{Name: name, ContentType: "image/png", Body: strings.NewReader("png")}
}
