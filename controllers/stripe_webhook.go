package controllers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Stripe recommends rejecting webhook bodies beyond a sane bound.
const maxWebhookBody = 1 << 16

// StripeWebhook receives pushed payment notifications. The body is
// passed to signature verification as raw bytes: any JSON re-encoding
// before verification would invalidate the signature. Error responses
// are plain text because Stripe's retry logic inspects the status code,
// not a body shape.
func (cc *CheckoutController) StripeWebhook(c *gin.Context) {
	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody))
	if err != nil {
		c.String(http.StatusBadRequest, "failed to read request body")
		return
	}

	sigHeader := c.GetHeader("Stripe-Signature")
	if svcErr := cc.Service.HandleWebhookEvent(c.Request.Context(), payload, sigHeader); svcErr != nil {
		c.String(svcErr.StatusCode, svcErr.Message)
		return
	}

	c.JSON(http.StatusOK, gin.H{"received": true})
}
