package api

import (
	"premium-api/internal/middleware"

	"github.com/gin-gonic/gin"
)

// SetupRoutes sets up all routes
func SetupRoutes(r *gin.Engine) {
	// API route group
	api := r.Group("/api")
	{
		// Payment provider webhook routes (no authentication beyond the
		// per-provider signature checks; providers call these)
		webhooks := api.Group("/webhooks")
		{
			webhooks.POST("/paystack", PaystackWebhookHandler)
			webhooks.POST("/stripe", StripeWebhookHandler)
		}

		// Premium gate read routes (client API, read-only)
		premium := api.Group("/premium")
		{
			premium.GET("/status", GetPremiumStatus)
			premium.GET("/entitlements", GetEntitlements)
		}

		// Operator routes (require the admin API key)
		admin := api.Group("/admin")
		admin.Use(middleware.AdminAuthMiddleware())
		{
			admin.POST("/subscribers", CreateSubscriber)
			admin.GET("/events/unresolved", ListUnresolvedEvents)
			admin.POST("/events/:id/resolve", ResolveEvent)
			admin.POST("/projection/recompute", RecomputeProjection)
		}
	}

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"service": "premium-api",
		})
	})
}
