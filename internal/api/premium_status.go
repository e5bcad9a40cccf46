package api

import (
	"net/http"
	"time"

	"premium-api/internal/database"
	"premium-api/internal/models"
	"premium-api/pkg/logging"

	"github.com/gin-gonic/gin"
)

// PremiumStatusResponse represents the premium status read
type PremiumStatusResponse struct {
	Success   bool   `json:"success"`
	Message   string `json:"message,omitempty"`
	UserID    string `json:"user_id,omitempty"`
	Tier      string `json:"tier,omitempty"`
	IsPremium bool   `json:"is_premium"`
	ExpiresAt string `json:"expires_at,omitempty"`
	Plan      string `json:"plan,omitempty"`
	Provider  string `json:"provider,omitempty"`
	GrantID   uint   `json:"grant_id,omitempty"`
}

// GetPremiumStatus reads the projected premium status
// GET /api/premium/status?user_id=xxx (or ?email=xxx)
func GetPremiumStatus(c *gin.Context) {
	subscriber, ok := lookupSubscriber(c)
	if !ok {
		return
	}

	resp := PremiumStatusResponse{
		Success:   true,
		UserID:    subscriber.UserID,
		Tier:      subscriber.Tier,
		IsPremium: subscriber.IsPremium(time.Now()),
	}

	if resp.IsPremium {
		resp.ExpiresAt = subscriber.PremiumExpiresAt.Format(time.RFC3339)
		resp.GrantID = subscriber.PremiumGrantID

		// Plan and provider come from the grant behind the projection.
		if grant, err := database.GetCurrentGrant(subscriber.ID); err == nil {
			resp.Plan = grant.Plan
			resp.Provider = grant.Provider
		} else {
			logging.Warnf("Projection claims premium but no current grant found - user_id: %s", subscriber.UserID)
		}
	} else {
		resp.Tier = models.TierFree
	}

	c.JSON(http.StatusOK, resp)
}

// lookupSubscriber finds the subscriber named by user_id or email query
// parameters, writing the error response itself on failure
func lookupSubscriber(c *gin.Context) (*models.Subscriber, bool) {
	userID := c.Query("user_id")
	email := c.Query("email")

	if userID == "" && email == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": "user_id or email is required",
		})
		return nil, false
	}

	var subscriber *models.Subscriber
	var err error
	if userID != "" {
		subscriber, err = database.GetSubscriberByUserID(userID)
	} else {
		subscriber, err = database.GetSubscriberByEmail(email)
	}
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"message": "Subscriber not found",
		})
		return nil, false
	}
	return subscriber, true
}
