// file: internal/server/token_handlers.go
// version: 1.0.0
// guid: 6c1d5465-7687-98a9-bacb-dcedfe0f1021

package server

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	ulid "github.com/oklog/ulid/v2"

	"github.com/jdfalk/tokenbridge/internal/metrics"
	"github.com/jdfalk/tokenbridge/internal/server/middleware"
)

type tokenRequest struct {
	UserID string `json:"user_id" binding:"required"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
	Cached      bool   `json:"cached"`
}

// issueToken returns the user's downstream token, exchanging the upstream
// bearer token on a cache miss. The exchange happens with no cache lock
// held; failure leaves the cache untouched so the next request retries.
func (s *Server) issueToken(c *gin.Context) {
	var req tokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_id is required"})
		return
	}

	if token, remaining, ok := s.cache.GetWithTTL(req.UserID); ok {
		metrics.IncCacheHit()
		c.JSON(http.StatusOK, tokenResponse{
			AccessToken: token,
			TokenType:   "Bearer",
			ExpiresIn:   int(remaining.Seconds()),
			Cached:      true,
		})
		return
	}
	metrics.IncCacheMiss()

	subjectToken, ok := middleware.SubjectToken(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "bearer token required"})
		return
	}

	requestID := ulid.Make().String()
	log.Printf("[DEBUG] cache miss for user %s, exchanging token (request %s)", req.UserID, requestID)

	metrics.IncExchangeStarted()
	start := time.Now()
	token, err := s.exchanger.Exchange(c.Request.Context(), subjectToken)
	metrics.ObserveExchangeDuration(time.Since(start))
	if err != nil {
		metrics.IncExchangeFailed()
		log.Printf("[ERROR] token exchange failed for user %s (request %s): %v", req.UserID, requestID, err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "exchange unavailable"})
		return
	}
	metrics.IncExchangeCompleted()

	s.cache.Set(req.UserID, token)
	metrics.SetCachedTokens(s.cache.Len())

	c.JSON(http.StatusOK, tokenResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   int(s.tokenTTL.Seconds()),
		Cached:      false,
	})
}

// invalidateToken drops the cached token for a user. Deleting an absent
// user succeeds; the operation is idempotent.
func (s *Server) invalidateToken(c *gin.Context) {
	userID := c.Param("user_id")
	if userID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_id is required"})
		return
	}

	s.cache.Invalidate(userID)
	metrics.IncCacheInvalidation()
	metrics.SetCachedTokens(s.cache.Len())

	c.Status(http.StatusNoContent)
}

func (s *Server) clearCache(c *gin.Context) {
	before := s.cache.Len()
	s.cache.Clear()
	metrics.SetCachedTokens(0)
	log.Printf("[DEBUG] cache cleared by admin, %d entries dropped", before)

	c.JSON(http.StatusOK, gin.H{"cleared": before})
}

func (s *Server) cacheStats(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"cached_tokens": s.cache.Len(),
		"token_ttl_s":   int(s.tokenTTL.Seconds()),
	})
}
