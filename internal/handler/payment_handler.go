package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/wtppaul/course-marketplace/internal/service"
)

// SignatureHeader carries the gateway's hex HMAC of the raw webhook body.
const SignatureHeader = "X-Razorpay-Signature"

type PaymentHandler struct {
	payments service.PaymentService
	users    UserStore
}

func NewPaymentHandler(payments service.PaymentService, users UserStore) *PaymentHandler {
	return &PaymentHandler{payments: payments, users: users}
}

// CreatePayment (POST /internal/courses/:id/payments)
func (h *PaymentHandler) CreatePayment(c *gin.Context) {
	courseID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	buyer, ok := currentUser(c, h.users)
	if !ok {
		return
	}
	checkout, err := h.payments.CreatePayment(c.Request.Context(), courseID, buyer.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, checkout)
}

// PaymentWebhook (POST /webhooks/payments)
// The body is read raw: the signature covers the exact bytes sent.
func (h *PaymentHandler) PaymentWebhook(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		badRequest(c, err)
		return
	}
	settlement, err := h.payments.VerifyPayment(c.Request.Context(), body, c.GetHeader(SignatureHeader))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "paymentStatus": settlement.Payment.Status})
}

// ListMyPayments (GET /internal/me/payments)
func (h *PaymentHandler) ListMyPayments(c *gin.Context) {
	user, ok := currentUser(c, h.users)
	if !ok {
		return
	}
	list, err := h.payments.ListPayments(c.Request.Context(), user.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// SetPayoutAccount (PUT /internal/me/payout-account)
func (h *PaymentHandler) SetPayoutAccount(c *gin.Context) {
	user, ok := currentUser(c, h.users)
	if !ok {
		return
	}
	var input struct {
		AccountID string `json:"accountId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, err)
		return
	}
	account := strings.TrimSpace(input.AccountID)
	if err := h.users.SetPayoutAccount(c.Request.Context(), user.ID, account); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"payoutAccountId": account})
}
