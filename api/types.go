package api

import (
	"github.com/shopspring/decimal"
)

type ReportPeriod string

const (
	PeriodWeekly  ReportPeriod = "weekly"
	PeriodMonthly ReportPeriod = "monthly"
	PeriodYearly  ReportPeriod = "yearly"
)

// DashboardStats backs the admin dashboard. Revenue aggregates can carry
// fractional averages so they use decimal instead of whole rupees.
type DashboardStats struct {
	TotalOrders       int             `json:"totalOrders"`
	PendingOrders     int             `json:"pendingOrders"`
	TotalProducts     int             `json:"totalProducts"`
	TotalCategories   int             `json:"totalCategories"`
	TotalRevenue      decimal.Decimal `json:"totalRevenue"`
	AverageOrderValue decimal.Decimal `json:"averageOrderValue"`
}

type ReportPoint struct {
	Label   string          `json:"label"`
	Orders  int             `json:"orders"`
	Revenue decimal.Decimal `json:"revenue"`
}

type SalesReport struct {
	Period ReportPeriod  `json:"period"`
	Points []ReportPoint `json:"points"`
}

type CategoryStats struct {
	ProductCount int             `json:"productCount"`
	OrderCount   int             `json:"orderCount"`
	Revenue      decimal.Decimal `json:"revenue"`
}

type Admin struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

type Login struct {
	AccessToken string `json:"accessToken"`
	Admin       Admin  `json:"admin"`
}
