package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Entitlements is the action policy the client-side premium gate
// enforces. -1 means unlimited.
type Entitlements struct {
	Tier             string `json:"tier"`
	MaxPosts         int    `json:"max_posts"`    // lifetime cap
	MaxLikes         int    `json:"max_likes"`    // lifetime cap
	MaxComments      int    `json:"max_comments"` // lifetime cap
	CanMessage       bool   `json:"can_message"`
	FeedVisibleLimit int    `json:"feed_visible_limit"` // feed items beyond this are locked
}

// Free-tier policy: one lifetime post, one like, one comment, no
// messaging, feed locked past position 5.
var freeEntitlements = Entitlements{
	Tier:             "free",
	MaxPosts:         1,
	MaxLikes:         1,
	MaxComments:      1,
	CanMessage:       false,
	FeedVisibleLimit: 5,
}

var premiumEntitlements = Entitlements{
	Tier:             "premium",
	MaxPosts:         -1,
	MaxLikes:         -1,
	MaxComments:      -1,
	CanMessage:       true,
	FeedVisibleLimit: -1,
}

// GetEntitlements resolves the caller's action caps from the projection
// GET /api/premium/entitlements?user_id=xxx (or ?email=xxx)
func GetEntitlements(c *gin.Context) {
	subscriber, ok := lookupSubscriber(c)
	if !ok {
		return
	}

	entitlements := freeEntitlements
	if subscriber.IsPremium(time.Now()) {
		entitlements = premiumEntitlements
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"user_id": subscriber.UserID,
		"data":    entitlements,
	})
}
