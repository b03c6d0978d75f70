package services

import (
	"fmt"
	"math"
	"time"

	"returns-service/internal/models"
)

// Clock abstracts the current time
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// ClockFunc adapts a function to Clock
type ClockFunc func() time.Time

func (f ClockFunc) Now() time.Time { return f() }

const eligibleMessage = "Pedido elegível para troca/devolução"

// EligibilityEvaluator decides whether an order is inside the return window
type EligibilityEvaluator struct {
	clock Clock
}

// NewEligibilityEvaluator creates an evaluator; nil clock means wall clock
func NewEligibilityEvaluator(clock Clock) *EligibilityEvaluator {
	if clock == nil {
		clock = SystemClock{}
	}
	return &EligibilityEvaluator{clock: clock}
}

// Evaluate computes whole days since the order and compares them to the window.
// Orders dated in the future produce negative days and are eligible.
func (e *EligibilityEvaluator) Evaluate(orderCreatedAt time.Time, windowDays int) models.EligibilityResult {
	elapsed := e.clock.Now().Sub(orderCreatedAt)
	days := int(math.Floor(elapsed.Hours() / 24))

	result := models.EligibilityResult{
		IsEligible:       days <= windowDays,
		DaysSinceOrder:   days,
		ReturnWindowDays: windowDays,
	}
	if result.IsEligible {
		result.Message = eligibleMessage
	} else {
		result.Message = fmt.Sprintf("Prazo de %d dias expirado (%d dias desde a compra)", windowDays, days)
	}
	return result
}
