package handlers

import (
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"studentbus/internal/domain"
	"studentbus/internal/domain/models"
	"studentbus/internal/http/middleware"
	"studentbus/internal/services"
	"studentbus/internal/utils"
	"studentbus/internal/views"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	uploadURLPrefix = "/uploads/"
	multipartSlack  = 1 << 20
)

type resolvePaymentRequest struct {
	Status    string `json:"status"`
	AdminNote string `json:"adminNote"`
}

// SubmitRecharge accepts a multipart recharge claim with its receipt image.
func (h Handler) SubmitRecharge(c *gin.Context) {
	maxBytes := h.UploadMaxBytes
	if maxBytes <= 0 {
		maxBytes = 5 << 20
	}
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes+multipartSlack)

	file, err := c.FormFile("screenshot")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			RespondDomainError(c, domain.ValidationError{Field: "screenshot", Msg: "file is too large"})
			return
		}
		RespondDomainError(c, domain.ValidationError{Field: "screenshot", Msg: "receipt image is required"})
		return
	}
	if file.Size > maxBytes {
		RespondDomainError(c, domain.ValidationError{Field: "screenshot", Msg: fmt.Sprintf("file exceeds %d bytes", maxBytes)})
		return
	}
	if !isImage(file) {
		RespondDomainError(c, domain.ValidationError{Field: "screenshot", Msg: "only image files are accepted"})
		return
	}

	amount, err := utils.ParseAmount(c.PostForm("amount"))
	if err != nil {
		RespondDomainError(c, domain.ValidationError{Field: "amount", Msg: err.Error(), Err: err})
		return
	}

	if err := os.MkdirAll(h.UploadDir, 0o755); err != nil {
		RespondDomainError(c, domain.InternalError{Msg: "could not store receipt", Err: err})
		return
	}
	name := uuid.NewString() + imageExt(file.Filename)
	dst := filepath.Join(h.UploadDir, name)
	if err := c.SaveUploadedFile(file, dst); err != nil {
		RespondDomainError(c, domain.InternalError{Msg: "could not store receipt", Err: err})
		return
	}

	svc := h.Payments
	svc.RequestID = middleware.GetRequestID(c)
	p, err := svc.SubmitRecharge(c.Request.Context(), middleware.Caller(c).UserID, services.RechargeInput{
		Amount:         amount,
		TransactionRef: c.PostForm("transactionId"),
		SenderPhone:    c.PostForm("senderPhone"),
		Screenshot:     uploadURLPrefix + name,
	})
	if err != nil {
		_ = os.Remove(dst)
		RespondDomainError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "recharge request submitted and awaiting review",
		"payment": views.NewPayment(p),
	})
}

func (h Handler) PaymentHistory(c *gin.Context) {
	list, err := h.Payments.History(c.Request.Context(), middleware.Caller(c).UserID)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	out := make([]views.Payment, 0, len(list))
	for _, p := range list {
		out = append(out, views.NewPayment(p))
	}
	c.JSON(http.StatusOK, out)
}

func (h Handler) PendingPayments(c *gin.Context) {
	list, err := h.Payments.Pending(c.Request.Context())
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	out := make([]views.Payment, 0, len(list))
	for _, p := range list {
		out = append(out, views.PaymentDetail(p))
	}
	c.JSON(http.StatusOK, out)
}

func (h Handler) GetPayment(c *gin.Context) {
	p, err := h.Payments.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, views.PaymentDetail(p))
}

// ResolvePayment approves or rejects a pending recharge.
func (h Handler) ResolvePayment(c *gin.Context) {
	var req resolvePaymentRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	svc := h.Payments
	svc.RequestID = middleware.GetRequestID(c)

	p, err := svc.ResolvePayment(c.Request.Context(), c.Param("id"), middleware.Caller(c).UserID,
		models.PaymentStatus(strings.ToLower(strings.TrimSpace(req.Status))), req.AdminNote)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, views.PaymentDetail(p))
}

// isImage sniffs the upload instead of trusting the client supplied type.
func isImage(fh *multipart.FileHeader) bool {
	f, err := fh.Open()
	if err != nil {
		return false
	}
	defer f.Close()

	head := make([]byte, 512)
	n, _ := f.Read(head)
	return strings.HasPrefix(http.DetectContentType(head[:n]), "image/")
}

func imageExt(filename string) string {
	switch ext := strings.ToLower(filepath.Ext(filename)); ext {
	case ".png", ".jpg", ".jpeg", ".gif", ".webp", ".bmp":
		return ext
	default:
		return ""
	}
}
