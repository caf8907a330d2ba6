package handlers

import (
	"net/http"

	"studentbus/internal/http/middleware"
	"studentbus/internal/services"
	"studentbus/internal/views"

	"github.com/gin-gonic/gin"
)

type registerRequest struct {
	Name      string `json:"name"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	Phone     string `json:"phone"`
	StudentID string `json:"studentId"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	Token string     `json:"token"`
	User  views.User `json:"user"`
}

func (h Handler) Register(c *gin.Context) {
	var req registerRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	svc := h.Auth
	svc.RequestID = middleware.GetRequestID(c)

	res, err := svc.Register(c.Request.Context(), services.RegisterInput{
		Name:      req.Name,
		Email:     req.Email,
		Password:  req.Password,
		Phone:     req.Phone,
		StudentID: req.StudentID,
	})
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, authResponse{Token: res.Token, User: views.NewUser(res.User)})
}

func (h Handler) Login(c *gin.Context) {
	var req loginRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	svc := h.Auth
	svc.RequestID = middleware.GetRequestID(c)

	res, err := svc.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, authResponse{Token: res.Token, User: views.NewUser(res.User)})
}

func (h Handler) Me(c *gin.Context) {
	u, err := h.Auth.Me(c.Request.Context(), middleware.Caller(c).UserID)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, views.NewUser(u))
}
