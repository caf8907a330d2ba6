package services

import (
	"context"

	"studentbus/internal/domain"
	"studentbus/internal/domain/models"
	"studentbus/internal/repositories"

	"github.com/shopspring/decimal"
)

const recentLimit = 5

type DashboardStats struct {
	TotalUsers      int             `json:"totalUsers"`
	TotalTrips      int             `json:"totalTrips"`
	TotalBookings   int             `json:"totalBookings"`
	PendingPayments int             `json:"pendingPayments"`
	TotalRecharges  decimal.Decimal `json:"totalRecharges"`
	TotalRevenue    decimal.Decimal `json:"totalRevenue"`
}

type DashboardSummary struct {
	Stats          DashboardStats         `json:"stats"`
	RecentBookings []models.BookingDetail `json:"recentBookings"`
	RecentPayments []models.PaymentDetail `json:"recentPayments"`
}

type DashboardService struct {
	Ledger repositories.Ledger
}

func (s DashboardService) Summary(ctx context.Context) (DashboardSummary, error) {
	users, err := s.Ledger.ListUsers(ctx)
	if err != nil {
		return DashboardSummary{}, ledgerErr(err, "users")
	}
	trips, err := s.Ledger.ListTrips(ctx)
	if err != nil {
		return DashboardSummary{}, ledgerErr(err, "trips")
	}
	bookings, err := s.Ledger.ListBookings(ctx)
	if err != nil {
		return DashboardSummary{}, ledgerErr(err, "bookings")
	}
	payments, err := s.Ledger.ListPayments(ctx)
	if err != nil {
		return DashboardSummary{}, ledgerErr(err, "payments")
	}

	userIdx := usersByID(users)
	tripIdx := tripsByID(trips)

	stats := DashboardStats{
		TotalTrips:     len(trips),
		TotalBookings:  len(bookings),
		TotalRecharges: decimal.Zero,
		TotalRevenue:   decimal.Zero,
	}
	for _, u := range users {
		if u.Role == string(domain.RoleStudent) {
			stats.TotalUsers++
		}
	}
	pending := make([]models.Payment, 0)
	for _, p := range payments {
		switch {
		case p.Status == models.PaymentPending:
			stats.PendingPayments++
			pending = append(pending, p)
		case p.Status == models.PaymentApproved && p.Type == models.PaymentTypeRecharge:
			stats.TotalRecharges = stats.TotalRecharges.Add(p.Amount)
		}
	}
	for _, b := range bookings {
		if b.Status == models.BookingConfirmed {
			stats.TotalRevenue = stats.TotalRevenue.Add(b.TotalAmount)
		}
	}

	newestBookingsFirst(bookings)
	recentBookings := make([]models.BookingDetail, 0, recentLimit)
	for _, b := range bookings {
		if len(recentBookings) == recentLimit {
			break
		}
		row := models.BookingDetail{Booking: b, User: publicUser(userIdx, b.UserID)}
		if t, ok := tripIdx[b.TripID]; ok {
			row.Trip = &t
		}
		recentBookings = append(recentBookings, row)
	}

	newestPaymentsFirst(pending)
	recentPayments := make([]models.PaymentDetail, 0, recentLimit)
	for _, p := range pending {
		if len(recentPayments) == recentLimit {
			break
		}
		recentPayments = append(recentPayments, models.PaymentDetail{Payment: p, User: publicUser(userIdx, p.UserID)})
	}

	return DashboardSummary{Stats: stats, RecentBookings: recentBookings, RecentPayments: recentPayments}, nil
}
