package controllers

import (
	"net/http"

	"checkout-service/models"
	"checkout-service/services"

	"github.com/gin-gonic/gin"
)

type CheckoutController struct {
	Service services.CheckoutService
}

func NewCheckoutController(svc services.CheckoutService) *CheckoutController {
	return &CheckoutController{Service: svc}
}

// CreateCheckoutSession builds a priced checkout from the submitted
// cart and returns the Stripe-hosted payment page URL.
func (cc *CheckoutController) CreateCheckoutSession(c *gin.Context) {
	var req models.CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	url, svcErr := cc.Service.CreateCheckoutSession(c.Request.Context(), &req)
	if svcErr != nil {
		c.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}

	c.JSON(http.StatusOK, gin.H{"url": url})
}

// ConfirmPayment is the pull-mode confirmation: the client supplies the
// session ID it was redirected back with.
func (cc *CheckoutController) ConfirmPayment(c *gin.Context) {
	var req models.ConfirmPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	confirmed, svcErr := cc.Service.ConfirmPayment(c.Request.Context(), req.SessionID)
	if svcErr != nil {
		c.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": confirmed})
}

// GetOrder returns a recorded order by its checkout session ID.
func (cc *CheckoutController) GetOrder(c *gin.Context) {
	order, svcErr := cc.Service.GetOrder(c.Request.Context(), c.Param("sessionId"))
	if svcErr != nil {
		c.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}
	c.JSON(http.StatusOK, order)
}

// Health is the liveness endpoint.
func (cc *CheckoutController) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "service": "checkout-service"})
}
