package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"returns-service/internal/models"
)

func TestRound2(t *testing.T) {
	assert.Equal(t, 10.13, Round2(10.125))
	assert.Equal(t, -10.13, Round2(-10.125))
	assert.Equal(t, 0.0, Round2(0.004))
	assert.Equal(t, 99.99, Round2(99.99))
}

func TestReturnTotal(t *testing.T) {
	items := []models.ReturnItem{
		{Name: "Camiseta", Price: 59.9, Quantity: 2},
		{Name: "Meia", Price: 19.95, Quantity: 1},
	}
	assert.Equal(t, 139.75, ReturnTotal(items))
	assert.Equal(t, 0.0, ReturnTotal(nil))
}

func TestCreditValue(t *testing.T) {
	t.Run("refund carries no credit", func(t *testing.T) {
		assert.Nil(t, CreditValue(models.ResolutionRefund, 200, 5))
	})

	t.Run("store credit applies the bonus", func(t *testing.T) {
		credit := CreditValue(models.ResolutionStoreCredit, 200, 5)
		require.NotNil(t, credit)
		assert.Equal(t, 210.0, *credit)
	})

	t.Run("zero bonus keeps the total", func(t *testing.T) {
		credit := CreditValue(models.ResolutionStoreCredit, 139.75, 0)
		require.NotNil(t, credit)
		assert.Equal(t, 139.75, *credit)
	})

	t.Run("credit is rounded to cents", func(t *testing.T) {
		credit := CreditValue(models.ResolutionStoreCredit, 33.33, 10)
		require.NotNil(t, credit)
		assert.Equal(t, 36.66, *credit)
	})
}
