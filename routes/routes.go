package routes

import (
	"checkout-service/controllers"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.Engine, cc *controllers.CheckoutController) {
	r.GET("/", cc.Health)
	r.POST("/create-checkout-session", cc.CreateCheckoutSession)
	r.POST("/confirm-payment", cc.ConfirmPayment)
	r.GET("/orders/:sessionId", cc.GetOrder)

	// Stripe signs the raw body; no body-touching middleware here.
	r.POST("/webhook", cc.StripeWebhook)
}
