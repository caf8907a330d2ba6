package services

import (
	"errors"
	"sort"
	"time"

	"studentbus/internal/domain"
	"studentbus/internal/domain/models"
	"studentbus/internal/repositories"

	"go.uber.org/zap"
)

// ledgerErr converts repository failures into domain errors for one resource.
func ledgerErr(err error, resource string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repositories.ErrNotFound):
		return domain.NotFoundError{Resource: resource, Err: err}
	default:
		return domain.InternalError{Msg: resource + " lookup failed", Err: err}
	}
}

// passThrough keeps domain errors raised inside a transaction callback and
// wraps anything else as internal.
func passThrough(err error) error {
	if err == nil {
		return nil
	}
	if domain.IsNotFound(err) || domain.IsValidation(err) || domain.IsInvalidState(err) ||
		domain.IsInsufficientCapacity(err) || domain.IsInsufficientFunds(err) ||
		domain.IsAlreadyResolved(err) || domain.IsIntegrity(err) || domain.IsConflict(err) ||
		domain.IsInternal(err) {
		return err
	}
	return domain.InternalError{Msg: "ledger transaction failed", Err: err}
}

func nowOr(fn func() time.Time) time.Time {
	if fn != nil {
		return fn()
	}
	return time.Now().UTC()
}

func loggerOr(l *zap.Logger) *zap.Logger {
	if l != nil {
		return l
	}
	return zap.L()
}

// publicUser resolves a user for embedding; missing users embed as nil.
func publicUser(users map[string]models.User, id string) *models.PublicUser {
	u, ok := users[id]
	if !ok {
		return nil
	}
	p := u.ToPublic()
	return &p
}

func usersByID(list []models.User) map[string]models.User {
	out := make(map[string]models.User, len(list))
	for _, u := range list {
		out[u.ID] = u
	}
	return out
}

func tripsByID(list []models.Trip) map[string]models.Trip {
	out := make(map[string]models.Trip, len(list))
	for _, t := range list {
		out[t.ID] = t
	}
	return out
}

func newestBookingsFirst(list []models.Booking) {
	sort.SliceStable(list, func(i, j int) bool { return list[i].CreatedAt.After(list[j].CreatedAt) })
}

func newestPaymentsFirst(list []models.Payment) {
	sort.SliceStable(list, func(i, j int) bool { return list[i].CreatedAt.After(list[j].CreatedAt) })
}
