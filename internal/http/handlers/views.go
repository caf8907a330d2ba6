package handlers

import (
	"studentbus/internal/services"
	"studentbus/internal/utils"
	"studentbus/internal/views"
)

type dashboardView struct {
	Stats          dashboardStatsView `json:"stats"`
	RecentBookings []views.Booking    `json:"recentBookings"`
	RecentPayments []views.Payment    `json:"recentPayments"`
}

type dashboardStatsView struct {
	TotalUsers      int    `json:"totalUsers"`
	TotalTrips      int    `json:"totalTrips"`
	TotalBookings   int    `json:"totalBookings"`
	PendingPayments int    `json:"pendingPayments"`
	TotalRecharges  string `json:"totalRecharges"`
	TotalRevenue    string `json:"totalRevenue"`
}

func toDashboardView(s services.DashboardSummary) dashboardView {
	out := dashboardView{
		Stats: dashboardStatsView{
			TotalUsers:      s.Stats.TotalUsers,
			TotalTrips:      s.Stats.TotalTrips,
			TotalBookings:   s.Stats.TotalBookings,
			PendingPayments: s.Stats.PendingPayments,
			TotalRecharges:  utils.FormatMoney(s.Stats.TotalRecharges),
			TotalRevenue:    utils.FormatMoney(s.Stats.TotalRevenue),
		},
		RecentBookings: make([]views.Booking, 0, len(s.RecentBookings)),
		RecentPayments: make([]views.Payment, 0, len(s.RecentPayments)),
	}
	for _, b := range s.RecentBookings {
		out.RecentBookings = append(out.RecentBookings, views.BookingDetail(b))
	}
	for _, p := range s.RecentPayments {
		out.RecentPayments = append(out.RecentPayments, views.PaymentDetail(p))
	}
	return out
}
