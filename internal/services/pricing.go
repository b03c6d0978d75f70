package services

import (
	"math"

	"returns-service/internal/models"
)

// Round2 rounds half away from zero to cents
func Round2(value float64) float64 {
	return math.Round(value*100) / 100
}

// ReturnTotal sums price*quantity over the selected items
func ReturnTotal(items []models.ReturnItem) float64 {
	total := 0.0
	for _, item := range items {
		total += item.Price * float64(item.Quantity)
	}
	return Round2(total)
}

// CreditValue applies the store credit bonus to a total; refunds carry no credit
func CreditValue(resolution models.ResolutionType, total, bonusPercent float64) *float64 {
	if resolution != models.ResolutionStoreCredit {
		return nil
	}
	credit := Round2(total * (1 + bonusPercent/100))
	return &credit
}
