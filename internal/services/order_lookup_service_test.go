package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"returns-service/internal/clients"
	"returns-service/internal/models"
	"returns-service/internal/repository"
)

func TestMatchOrder(t *testing.T) {
	candidates := []models.PlatformOrder{
		{Number: "12345", Customer: models.OrderCustomer{Email: "other@example.com"}},
		{Number: "1234", Customer: models.OrderCustomer{Email: "other@example.com"}},
		{Number: "1234", Customer: models.OrderCustomer{Email: "Maria@Example.com"}},
	}

	t.Run("number and email case-insensitively", func(t *testing.T) {
		order := MatchOrder(candidates, "1234", " maria@example.COM ")
		require.NotNil(t, order)
		assert.Equal(t, "Maria@Example.com", order.Customer.Email)
	})

	t.Run("prefix matches are not enough", func(t *testing.T) {
		assert.Nil(t, MatchOrder(candidates, "123", "other@example.com"))
	})

	t.Run("email mismatch", func(t *testing.T) {
		assert.Nil(t, MatchOrder(candidates, "12345", "maria@example.com"))
	})

	t.Run("no candidates", func(t *testing.T) {
		assert.Nil(t, MatchOrder(nil, "1234", "maria@example.com"))
	})
}

func TestOrderLookupService_LookupOrder(t *testing.T) {
	now := time.Date(2024, 3, 20, 12, 0, 0, 0, time.UTC)
	eligibility := NewEligibilityEvaluator(ClockFunc(func() time.Time { return now }))

	store := testStore("owner-1")
	store.Settings = models.DefaultStoreSettings(store.ID)
	store.Settings.ReturnWindowDays = 3

	order := models.PlatformOrder{
		ID:        9001,
		Number:    "1234",
		Customer:  models.OrderCustomer{Name: "Maria", Email: "maria@example.com"},
		CreatedAt: now.AddDate(0, 0, -10),
	}

	t.Run("found but expired", func(t *testing.T) {
		stores := new(MockStoreRepository)
		platform := new(MockNuvemshopClient)
		stores.On("GetBySlug", mock.Anything, "loja-teste").Return(store, nil)
		platform.On("SearchOrders", mock.Anything, store.APIURL, store.APIKey, "1234").Return([]models.PlatformOrder{order}, nil)

		service := NewOrderLookupService(stores, platform, eligibility, testLogger())
		result, err := service.LookupOrder(context.Background(), "loja-teste", " #1234 ", "MARIA@example.com")
		require.NoError(t, err)

		assert.Equal(t, "1234", result.Order.Number)
		assert.False(t, result.Eligibility.IsEligible)
		assert.Equal(t, 10, result.Eligibility.DaysSinceOrder)
		assert.Equal(t, 3, result.Settings.ReturnWindowDays)
		assert.Equal(t, store.ID, result.StoreID)
		assert.Equal(t, "Loja Teste", result.StoreName)
	})

	t.Run("unknown store", func(t *testing.T) {
		stores := new(MockStoreRepository)
		stores.On("GetBySlug", mock.Anything, "nope").Return(nil, repository.ErrNotFound)

		service := NewOrderLookupService(stores, new(MockNuvemshopClient), eligibility, testLogger())
		_, err := service.LookupOrder(context.Background(), "nope", "1234", "maria@example.com")
		assert.ErrorIs(t, err, ErrStoreNotFound)
	})

	t.Run("email does not match", func(t *testing.T) {
		stores := new(MockStoreRepository)
		platform := new(MockNuvemshopClient)
		stores.On("GetBySlug", mock.Anything, "loja-teste").Return(store, nil)
		platform.On("SearchOrders", mock.Anything, store.APIURL, store.APIKey, "1234").Return([]models.PlatformOrder{order}, nil)

		service := NewOrderLookupService(stores, platform, eligibility, testLogger())
		_, err := service.LookupOrder(context.Background(), "loja-teste", "1234", "joao@example.com")
		assert.ErrorIs(t, err, ErrOrderNotFound)
	})

	t.Run("platform rejects the token", func(t *testing.T) {
		stores := new(MockStoreRepository)
		platform := new(MockNuvemshopClient)
		stores.On("GetBySlug", mock.Anything, "loja-teste").Return(store, nil)
		platform.On("SearchOrders", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil, clients.NewStatusError("Nuvemshop", 401, []byte("unauthorized")))

		service := NewOrderLookupService(stores, platform, eligibility, testLogger())
		_, err := service.LookupOrder(context.Background(), "loja-teste", "1234", "maria@example.com")
		assert.ErrorIs(t, err, clients.ErrUpstreamAuth)
	})
}
