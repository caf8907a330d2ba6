package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "pending"
	PaymentApproved PaymentStatus = "approved"
	PaymentRejected PaymentStatus = "rejected"
)

// IsDecision reports whether s is a terminal review outcome.
func (s PaymentStatus) IsDecision() bool {
	return s == PaymentApproved || s == PaymentRejected
}

const (
	PaymentTypeRecharge = "recharge"
	MethodVodafoneCash  = "vodafone_cash"
)

// Payment is a wallet recharge claim. It leaves PaymentPending exactly once.
type Payment struct {
	ID             string          `json:"id"`
	UserID         string          `json:"userId"`
	Amount         decimal.Decimal `json:"amount"`
	Type           string          `json:"type"`
	Method         string          `json:"method"`
	TransactionRef string          `json:"transactionId"`
	SenderPhone    string          `json:"senderPhone"`
	Screenshot     string          `json:"screenshot"`
	Status         PaymentStatus   `json:"status"`
	AdminNote      string          `json:"adminNote"`
	ReviewedBy     string          `json:"reviewedBy,omitempty"`
	ReviewedAt     *time.Time      `json:"reviewedAt,omitempty"`
	CreatedAt      time.Time       `json:"createdAt"`
}

type PaymentDetail struct {
	Payment
	User     *PublicUser `json:"user,omitempty"`
	Reviewer *PublicUser `json:"reviewer,omitempty"`
}
