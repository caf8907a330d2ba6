package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"studentbus/internal/domain"
	"studentbus/internal/domain/models"
	"studentbus/internal/notify"
	"studentbus/internal/repositories"
	"studentbus/internal/utils"
	"studentbus/internal/views"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// PaymentService handles wallet recharge claims and their admin review.
type PaymentService struct {
	Ledger    repositories.Ledger
	Notifier  notify.Notifier
	Logger    *zap.Logger
	Now       func() time.Time
	RequestID string
}

type RechargeInput struct {
	Amount         decimal.Decimal
	TransactionRef string
	SenderPhone    string
	Screenshot     string
}

// SubmitRecharge records a pending recharge claim; the balance is untouched
// until an admin approves it.
func (s PaymentService) SubmitRecharge(ctx context.Context, userID string, in RechargeInput) (models.Payment, error) {
	if !in.Amount.IsPositive() {
		return models.Payment{}, domain.ValidationError{Field: "amount", Msg: "must be positive"}
	}
	if !in.Amount.Equal(in.Amount.Truncate(2)) {
		return models.Payment{}, domain.ValidationError{Field: "amount", Msg: "at most two decimal places"}
	}
	if strings.TrimSpace(in.Screenshot) == "" {
		return models.Payment{}, domain.ValidationError{Field: "screenshot", Msg: "receipt image is required"}
	}
	if _, err := s.Ledger.GetUser(ctx, userID); err != nil {
		return models.Payment{}, ledgerErr(err, "user")
	}

	p := models.Payment{
		ID:             repositories.NewID(),
		UserID:         userID,
		Amount:         in.Amount,
		Type:           models.PaymentTypeRecharge,
		Method:         models.MethodVodafoneCash,
		TransactionRef: strings.TrimSpace(in.TransactionRef),
		SenderPhone:    strings.TrimSpace(in.SenderPhone),
		Screenshot:     in.Screenshot,
		Status:         models.PaymentPending,
		CreatedAt:      nowOr(s.Now),
	}
	if err := s.Ledger.CreatePayment(ctx, p); err != nil {
		return models.Payment{}, domain.InternalError{Msg: "could not save payment", Err: err}
	}

	utils.LogEvent(s.Logger, s.RequestID, "payment", "submit", "recharge submitted",
		zap.String("payment_id", p.ID), zap.String("amount", utils.FormatMoney(p.Amount)))
	if s.Notifier != nil {
		s.Notifier.NotifyRole(string(domain.RoleAdmin), notify.Event{Type: notify.EventPaymentSubmitted, Data: views.NewPayment(p)})
	}
	return p, nil
}

// ResolvePayment moves a pending payment to approved or rejected exactly
// once. Approval credits the owner in the same transaction; an owner that no
// longer exists aborts the whole review with an IntegrityError.
func (s PaymentService) ResolvePayment(ctx context.Context, paymentID, reviewerID string, decision models.PaymentStatus, note string) (models.PaymentDetail, error) {
	var resolved models.Payment

	err := s.Ledger.InTx(ctx, func(tx repositories.LedgerTx) error {
		p, err := tx.LockPayment(ctx, paymentID)
		if err != nil {
			return ledgerErr(err, "payment")
		}
		if p.Status != models.PaymentPending {
			return domain.AlreadyResolvedError{Resource: "payment", Status: string(p.Status)}
		}
		if !decision.IsDecision() {
			return domain.ValidationError{Field: "status", Msg: "must be approved or rejected"}
		}

		at := nowOr(s.Now)
		p.Status = decision
		p.AdminNote = strings.TrimSpace(note)
		p.ReviewedBy = reviewerID
		p.ReviewedAt = &at
		if err := tx.SaveReview(ctx, p); err != nil {
			return err
		}

		if decision == models.PaymentApproved {
			owner, err := tx.LockUser(ctx, p.UserID)
			if errors.Is(err, repositories.ErrNotFound) {
				return domain.IntegrityError{Msg: "payment " + p.ID + " references missing user " + p.UserID, Err: err}
			}
			if err != nil {
				return err
			}
			if err := tx.SetUserBalance(ctx, owner.ID, owner.Balance.Add(p.Amount)); err != nil {
				return err
			}
		}

		resolved = p
		return nil
	})
	if err != nil {
		if domain.IsIntegrity(err) {
			loggerOr(s.Logger).Error("payment review aborted", zap.String("payment_id", paymentID), zap.Error(err))
		}
		return models.PaymentDetail{}, passThrough(err)
	}

	utils.LogEvent(s.Logger, s.RequestID, "payment", "resolve", "payment "+string(decision),
		zap.String("payment_id", resolved.ID), zap.String("reviewer_id", reviewerID))

	detail := s.detail(ctx, resolved)
	if s.Notifier != nil {
		s.Notifier.NotifyUser(resolved.UserID, notify.Event{Type: notify.EventPaymentResolved, Data: views.PaymentDetail(detail)})
	}
	return detail, nil
}

// History returns the caller's payments newest first.
func (s PaymentService) History(ctx context.Context, userID string) ([]models.Payment, error) {
	list, err := s.Ledger.ListPaymentsByUser(ctx, userID)
	if err != nil {
		return nil, ledgerErr(err, "payments")
	}
	newestPaymentsFirst(list)
	return list, nil
}

// Pending lists payments awaiting review, newest first, with their owner.
func (s PaymentService) Pending(ctx context.Context) ([]models.PaymentDetail, error) {
	list, err := s.Ledger.ListPaymentsByStatus(ctx, models.PaymentPending)
	if err != nil {
		return nil, ledgerErr(err, "payments")
	}
	users, err := s.Ledger.ListUsers(ctx)
	if err != nil {
		return nil, ledgerErr(err, "users")
	}
	byID := usersByID(users)

	newestPaymentsFirst(list)
	out := make([]models.PaymentDetail, 0, len(list))
	for _, p := range list {
		out = append(out, models.PaymentDetail{Payment: p, User: publicUser(byID, p.UserID)})
	}
	return out, nil
}

func (s PaymentService) Get(ctx context.Context, paymentID string) (models.PaymentDetail, error) {
	p, err := s.Ledger.GetPayment(ctx, paymentID)
	if err != nil {
		return models.PaymentDetail{}, ledgerErr(err, "payment")
	}
	return s.detail(ctx, p), nil
}

func (s PaymentService) detail(ctx context.Context, p models.Payment) models.PaymentDetail {
	out := models.PaymentDetail{Payment: p}
	if u, err := s.Ledger.GetUser(ctx, p.UserID); err == nil {
		pub := u.ToPublic()
		out.User = &pub
	}
	if p.ReviewedBy != "" {
		if u, err := s.Ledger.GetUser(ctx, p.ReviewedBy); err == nil {
			pub := u.ToPublic()
			out.Reviewer = &pub
		}
	}
	return out
}
