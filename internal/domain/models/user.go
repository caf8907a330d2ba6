package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type User struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	Email        string          `json:"email"`
	Phone        string          `json:"phone"`
	StudentID    string          `json:"studentId"`
	University   string          `json:"university"`
	PasswordHash string          `json:"-"`
	Role         string          `json:"role"`
	Balance      decimal.Decimal `json:"balance"`
	IsVerified   bool            `json:"isVerified"`
	CreatedAt    time.Time       `json:"createdAt"`
}

// PublicUser is the user without credentials, as embedded in other records.
type PublicUser struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	Email      string          `json:"email"`
	Phone      string          `json:"phone"`
	StudentID  string          `json:"studentId"`
	University string          `json:"university"`
	Role       string          `json:"role"`
	Balance    decimal.Decimal `json:"balance"`
	IsVerified bool            `json:"isVerified"`
	CreatedAt  time.Time       `json:"createdAt"`
}

func (u *User) ToPublic() PublicUser {
	return PublicUser{
		ID:         u.ID,
		Name:       u.Name,
		Email:      u.Email,
		Phone:      u.Phone,
		StudentID:  u.StudentID,
		University: u.University,
		Role:       u.Role,
		Balance:    u.Balance,
		IsVerified: u.IsVerified,
		CreatedAt:  u.CreatedAt,
	}
}
