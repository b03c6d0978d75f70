package models

// ErrorResponse represents an error response
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// SuccessResponse represents a success response
type SuccessResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data"`
	Message *string     `json:"message,omitempty"`
}

// DashboardMetrics aggregates a merchant's return requests
type DashboardMetrics struct {
	TotalRequests         int     `json:"totalRequests"`
	StoreCreditConversion int     `json:"storeCreditConversion"`
	TotalRefundedValue    float64 `json:"totalRefundedValue"`
	RetainedRevenue       float64 `json:"retainedRevenue"`
	BonusCost             float64 `json:"bonusCost"`
	PendingRequests       int     `json:"pendingRequests"`
}
