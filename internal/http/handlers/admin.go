package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (h Handler) AdminDashboard(c *gin.Context) {
	summary, err := h.Dashboard.Summary(c.Request.Context())
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, toDashboardView(summary))
}
