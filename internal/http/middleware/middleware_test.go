package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"studentbus/internal/domain"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

type fakeAuth map[string]domain.RequestContext

func (f fakeAuth) Authenticate(_ context.Context, token string) (domain.RequestContext, error) {
	rc, ok := f[token]
	if !ok {
		return domain.RequestContext{}, domain.UnauthorizedError{Msg: "invalid token"}
	}
	return rc, nil
}

func newTestEngine() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestID())
	authed := r.Group("/", Auth(fakeAuth{
		"student-token": {UserID: "u1", Role: domain.RoleStudent},
		"admin-token":   {UserID: "a1", Role: domain.RoleAdmin},
	}))
	authed.GET("/me", func(c *gin.Context) {
		rc := Caller(c)
		c.JSON(http.StatusOK, gin.H{"id": rc.UserID, "role": rc.Role})
	})
	authed.GET("/admin", RequireRoles("admin"), func(c *gin.Context) { c.Status(http.StatusNoContent) })
	return r
}

func do(r http.Handler, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthMiddleware(t *testing.T) {
	r := newTestEngine()

	w := do(r, "/me", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	w = do(r, "/me", "bogus")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = do(r, "/me", "student-token")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"id":"u1","role":"student"}`, w.Body.String())

	// query tokens are only honoured on websocket handshakes
	w = do(r, "/me?token=student-token", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireRoles(t *testing.T) {
	r := newTestEngine()

	assert.Equal(t, http.StatusForbidden, do(r, "/admin", "student-token").Code)
	assert.Equal(t, http.StatusNoContent, do(r, "/admin", "admin-token").Code)
}

func TestRequestIDKeepsClientValue(t *testing.T) {
	r := newTestEngine()
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Header().Get("X-Request-ID"))
}
