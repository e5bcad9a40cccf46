package api

import (
	"errors"
	"net/http"
	"strconv"

	"premium-api/internal/database"
	"premium-api/internal/models"
	"premium-api/internal/services"
	"premium-api/pkg/logging"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// CreateSubscriberRequest represents an account-directory registration
type CreateSubscriberRequest struct {
	UserID      string `json:"user_id" binding:"required"`
	Email       string `json:"email" binding:"required,email"`
	DisplayName string `json:"display_name"`
}

// CreateSubscriber registers an account-directory entry
// POST /api/admin/subscribers
func CreateSubscriber(c *gin.Context) {
	var req CreateSubscriberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": "Invalid request format: " + err.Error(),
		})
		return
	}

	subscriber := &models.Subscriber{
		UserID:      req.UserID,
		Email:       req.Email,
		DisplayName: req.DisplayName,
		Tier:        models.TierFree,
	}

	if err := database.CreateSubscriber(subscriber); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"message": "Subscriber with this user_id or email already exists",
			})
			return
		}
		logging.Errorf("Failed to create subscriber: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"message": "Failed to create subscriber",
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "Subscriber created successfully",
		"data":    subscriber,
	})
}

// ListUnresolvedEvents lists dropped webhook events pending review
// GET /api/admin/events/unresolved?limit=50
func ListUnresolvedEvents(c *gin.Context) {
	limit := 50
	if v := c.Query("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 500 {
			limit = n
		}
	}

	entries, err := database.GetUnresolvedEvents(limit)
	if err != nil {
		logging.Errorf("Failed to list unresolved events: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"message": "Failed to list unresolved events",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    entries,
	})
}

// ResolveEvent marks a dropped event as handled
// POST /api/admin/events/:id/resolve
func ResolveEvent(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": "Invalid event id",
		})
		return
	}

	if err := database.MarkEventResolved(uint(id)); err != nil {
		logging.Errorf("Failed to resolve event %d: %v", id, err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"message": "Failed to resolve event",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Event marked resolved",
	})
}

// RecomputeProjectionRequest selects the repair scope; an empty user_id
// sweeps every subscriber
type RecomputeProjectionRequest struct {
	UserID string `json:"user_id"`
}

// RecomputeProjection replays the ledger into the premium projection
// POST /api/admin/projection/recompute
//
// Idempotent verify/repair operation: safe to run at any time, from an
// operator or a scheduled integrity sweep.
func RecomputeProjection(c *gin.Context) {
	var req RecomputeProjectionRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"message": "Invalid request format: " + err.Error(),
			})
			return
		}
	}

	projections := services.NewProjectionService()

	if req.UserID != "" {
		subscriber, err := projections.RecomputeByUserID(req.UserID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{
					"success": false,
					"message": "Subscriber not found",
				})
				return
			}
			logging.Errorf("Failed to recompute projection for %s: %v", req.UserID, err)
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"message": "Failed to recompute projection",
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"data": gin.H{
				"user_id":            subscriber.UserID,
				"tier":               subscriber.Tier,
				"premium_expires_at": subscriber.PremiumExpiresAt,
			},
		})
		return
	}

	checked, repaired, err := projections.RecomputeAll()
	if err != nil {
		logging.Errorf("Projection sweep failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"message": "Failed to recompute projections",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"checked":  checked,
			"repaired": repaired,
		},
	})
}
