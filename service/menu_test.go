package service_test

import (
	"context"
	"testing"

	"food-ordering-api/apperr"
	"food-ordering-api/mocks"
	"food-ordering-api/models"
	"food-ordering-api/repository/repotest"
	"food-ordering-api/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type menuFixture struct {
	stores
	svc    *service.MenuService
	images *mocks.MockImageUploader
	cache  *mocks.MockCache
}

func newMenuFixture(t *testing.T) *menuFixture {
	ctrl := gomock.NewController(t)
	f := &menuFixture{
		stores: newStores(repotest.Open(t)),
		images: mocks.NewMockImageUploader(ctrl),
		cache:  mocks.NewMockCache(ctrl),
	}
	f.svc = service.NewMenuService(f.menus, f.restaurants, f.images, f.cache)
	return f
}

func menuForm() service.MenuInput {
	return service.MenuInput{Name: "Margherita", Description: "tomato and basil", Price: "9.50", Image: image("m.png")}
}

func (f *menuFixture) menuCount(t *testing.T) int64 {
	t.Helper()
	var n int64
	require.NoError(t, f.db.Model(&models.Menu{}).Count(&n).Error)
	return n
}

func TestAddMenu(t *testing.T) {
	f := newMenuFixture(t)
	ctx := context.Background()
	owner := f.user(t, "owner@x.com")
	r := f.restaurant(t, owner, "Milano Pizza")

	f.images.EXPECT().Upload(gomock.Any(), "menus/m.png", "image/png", gomock.Any()).Return("http://img.test/m.png", nil)
	f.cache.EXPECT().Delete(gomock.Any(), "restaurant:"+r.ID).Return(nil)

	m, err := f.svc.AddMenu(ctx, owner, menuForm())
	require.NoError(t, err)
	assert.Equal(t, 9.5, m.Price)
	assert.Equal(t, "http://img.test/m.png", m.Image)

	owned, err := f.restaurants.HasMenu(ctx, r.ID, m.ID)
	require.NoError(t, err)
	assert.True(t, owned)
}

func TestAddMenuValidation(t *testing.T) {
	f := newMenuFixture(t)
	ctx := context.Background()
	owner := f.user(t, "owner@x.com")
	f.restaurant(t, owner, "Milano Pizza")

	for _, price := range []string{"-1", "abc", "NaN"} {
		in := menuForm()
		in.Price = price
		_, err := f.svc.AddMenu(ctx, owner, in)
		assert.True(t, apperr.Is(err, apperr.KindValidation), price)
	}

	in := menuForm()
	in.Image = nil
	_, err := f.svc.AddMenu(ctx, owner, in)
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	in = menuForm()
	in.Name = ""
	_, err = f.svc.AddMenu(ctx, owner, in)
	assert.True(t, apperr.Is(err, apperr.KindValidation))
	assert.Zero(t, f.menuCount(t))
}

func TestAddMenuWithoutRestaurantLeavesNoOrphan(t *testing.T) {
	f := newMenuFixture(t)
	ctx := context.Background()
	owner := f.user(t, "owner@x.com")

	f.images.EXPECT().Upload(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return("http://img.test/m.png", nil)
	_, err := f.svc.AddMenu(ctx, owner, menuForm())
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
	assert.Zero(t, f.menuCount(t))
}

func TestEditMenu(t *testing.T) {
	f := newMenuFixture(t)
	ctx := context.Background()
	owner := f.user(t, "owner@x.com")
	menu := &models.Menu{Name: "Margherita", Description: "classic", Price: 9, Image: "m.png"}
	r := f.restaurant(t, owner, "Milano Pizza", menu)

	f.cache.EXPECT().Delete(gomock.Any(), "restaurant:"+r.ID).Return(nil)
	m, err := f.svc.EditMenu(ctx, owner, menu.ID, service.MenuInput{Price: "12"})
	require.NoError(t, err)
	assert.Equal(t, 12.0, m.Price)
	assert.Equal(t, "Margherita", m.Name)

	_, err = f.svc.EditMenu(ctx, owner, models.NewID(), service.MenuInput{Name: "x"})
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestEditForeignMenuIsForbidden(t *testing.T) {
	f := newMenuFixture(t)
	ctx := context.Background()
	menu := &models.Menu{Name: "Margherita", Description: "classic", Price: 9, Image: "m.png"}
	f.restaurant(t, f.user(t, "a@x.com"), "Milano Pizza", menu)
	other := f.user(t, "b@x.com")
	f.restaurant(t, other, "Rome Bistro")
	noRestaurant := f.user(t, "c@x.com")

	inputs := []service.MenuInput{
		{Name: "Stolen"},
		{Price: "-5"},
		{Name: "Stolen", Image: image("x.png")},
	}
	for _, in := range inputs {
		_, err := f.svc.EditMenu(ctx, other, menu.ID, in)
		assert.True(t, apperr.Is(err, apperr.KindForbidden))
	}
	_, err := f.svc.EditMenu(ctx, noRestaurant, menu.ID, service.MenuInput{Name: "Stolen"})
	assert.True(t, apperr.Is(err, apperr.KindForbidden))

	stored, err := f.menus.FindByID(ctx, menu.ID)
	require.NoError(t, err)
	assert.Equal(t, "Margherita", stored.Name)
}
