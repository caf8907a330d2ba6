package services

import (
	"context"
	"errors"
	"net/mail"
	"strings"
	"time"

	"studentbus/internal/auth"
	"studentbus/internal/domain"
	"studentbus/internal/domain/models"
	"studentbus/internal/repositories"
	"studentbus/internal/utils"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const minPasswordLen = 6

type AuthService struct {
	Ledger            repositories.Ledger
	Hasher            auth.Hasher
	Tokens            *auth.TokenService
	DefaultUniversity string
	Logger            *zap.Logger
	Now               func() time.Time
	RequestID         string
}

type RegisterInput struct {
	Name      string
	Email     string
	Password  string
	Phone     string
	StudentID string
}

type AuthResult struct {
	Token string            `json:"token"`
	User  models.PublicUser `json:"user"`
}

type AdminSeed struct {
	Email    string
	Password string
	Name     string
	Phone    string
}

func (s AuthService) Register(ctx context.Context, in RegisterInput) (AuthResult, error) {
	name := utils.NormalizeSpace(in.Name)
	email := utils.NormalizeEmail(in.Email)
	studentID := strings.TrimSpace(in.StudentID)

	switch {
	case name == "":
		return AuthResult{}, domain.ValidationError{Field: "name", Msg: "is required"}
	case !validEmail(email):
		return AuthResult{}, domain.ValidationError{Field: "email", Msg: "is not a valid address"}
	case len(in.Password) < minPasswordLen:
		return AuthResult{}, domain.ValidationError{Field: "password", Msg: "must be at least 6 characters"}
	case studentID == "":
		return AuthResult{}, domain.ValidationError{Field: "studentId", Msg: "is required"}
	}

	hash, err := s.Hasher.Hash(in.Password)
	if err != nil {
		return AuthResult{}, domain.InternalError{Msg: "could not hash password", Err: err}
	}
	u := models.User{
		ID:           repositories.NewID(),
		Name:         name,
		Email:        email,
		Phone:        strings.TrimSpace(in.Phone),
		StudentID:    studentID,
		University:   s.DefaultUniversity,
		PasswordHash: hash,
		Role:         string(domain.RoleStudent),
		Balance:      decimal.Zero,
		CreatedAt:    nowOr(s.Now),
	}
	if err := s.Ledger.CreateUser(ctx, u); err != nil {
		switch {
		case errors.Is(err, repositories.ErrDuplicateEmail):
			return AuthResult{}, domain.ConflictError{Resource: "user", Msg: "email already registered", Err: err}
		case errors.Is(err, repositories.ErrDuplicateStudentID):
			return AuthResult{}, domain.ConflictError{Resource: "user", Msg: "student id already registered", Err: err}
		default:
			return AuthResult{}, domain.InternalError{Msg: "could not save user", Err: err}
		}
	}

	utils.LogEvent(s.Logger, s.RequestID, "auth", "register", "student registered", zap.String("user_id", u.ID))
	return s.issue(u)
}

func (s AuthService) Login(ctx context.Context, email, password string) (AuthResult, error) {
	u, err := s.Ledger.GetUserByEmail(ctx, utils.NormalizeEmail(email))
	if errors.Is(err, repositories.ErrNotFound) {
		return AuthResult{}, domain.UnauthorizedError{Msg: "invalid email or password"}
	}
	if err != nil {
		return AuthResult{}, ledgerErr(err, "user")
	}
	if err := s.Hasher.Compare(u.PasswordHash, password); err != nil {
		return AuthResult{}, domain.UnauthorizedError{Msg: "invalid email or password"}
	}
	utils.LogEvent(s.Logger, s.RequestID, "auth", "login", "user logged in", zap.String("user_id", u.ID))
	return s.issue(u)
}

func (s AuthService) Me(ctx context.Context, userID string) (models.PublicUser, error) {
	u, err := s.Ledger.GetUser(ctx, userID)
	if err != nil {
		return models.PublicUser{}, ledgerErr(err, "user")
	}
	return u.ToPublic(), nil
}

// Authenticate resolves a bearer token to a caller. The role comes from the
// stored user, so a demoted account loses access without waiting for expiry.
func (s AuthService) Authenticate(ctx context.Context, token string) (domain.RequestContext, error) {
	claims, err := s.Tokens.ValidateToken(token)
	if err != nil {
		return domain.RequestContext{}, domain.UnauthorizedError{Msg: "invalid token"}
	}
	u, err := s.Ledger.GetUser(ctx, claims.UserID)
	if errors.Is(err, repositories.ErrNotFound) {
		return domain.RequestContext{}, domain.UnauthorizedError{Msg: "user no longer exists"}
	}
	if err != nil {
		return domain.RequestContext{}, ledgerErr(err, "user")
	}
	return domain.RequestContext{UserID: u.ID, Role: domain.Role(u.Role)}, nil
}

// EnsureAdmin creates the configured admin account unless its email is
// already registered. It reports whether a user was created.
func (s AuthService) EnsureAdmin(ctx context.Context, seed AdminSeed) (bool, error) {
	email := utils.NormalizeEmail(seed.Email)
	if email == "" || seed.Password == "" {
		return false, nil
	}
	if _, err := s.Ledger.GetUserByEmail(ctx, email); err == nil {
		return false, nil
	} else if !errors.Is(err, repositories.ErrNotFound) {
		return false, err
	}

	hash, err := s.Hasher.Hash(seed.Password)
	if err != nil {
		return false, err
	}
	u := models.User{
		ID:           repositories.NewID(),
		Name:         utils.NormalizeSpace(seed.Name),
		Email:        email,
		Phone:        strings.TrimSpace(seed.Phone),
		PasswordHash: hash,
		Role:         string(domain.RoleAdmin),
		Balance:      decimal.Zero,
		IsVerified:   true,
		CreatedAt:    nowOr(s.Now),
	}
	if err := s.Ledger.CreateUser(ctx, u); err != nil {
		if errors.Is(err, repositories.ErrDuplicateEmail) {
			return false, nil
		}
		return false, err
	}
	loggerOr(s.Logger).Info("admin account seeded", zap.String("email", email))
	return true, nil
}

func (s AuthService) issue(u models.User) (AuthResult, error) {
	token, err := s.Tokens.GenerateToken(u.ID, u.Role)
	if err != nil {
		return AuthResult{}, domain.InternalError{Msg: "could not issue token", Err: err}
	}
	return AuthResult{Token: token, User: u.ToPublic()}, nil
}

func validEmail(email string) bool {
	if email == "" {
		return false
	}
	addr, err := mail.ParseAddress(email)
	return err == nil && addr.Address == email
}
