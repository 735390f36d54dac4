package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jrodas4044/signature-register/internal/http/common"
	"github.com/jrodas4044/signature-register/internal/infra/ratelimit"
)

// rateLimitMiddleware throttles write endpoints per principal and route.
// Limiter failures fail open: a broken Redis must not block data entry.
func (s *Server) rateLimitMiddleware(routeID string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if s.limiter == nil || s.cfg.WriteRateLimit <= 0 {
			c.Next()
			return
		}
		principal, ok := common.PrincipalFromContext(c)
		if !ok {
			return
		}
		key := "principal:" + principal.Subject + ":route:" + routeID
		decision, err := s.limiter.Allow(c.Request.Context(), key, s.cfg.WriteRateLimit, s.cfg.WriteRateWindow)
		if err != nil {
			c.Next()
			return
		}
		writeRateLimitHeaders(c, decision)
		if !decision.Allowed {
			if s.metrics != nil {
				s.metrics.rateLimited.Inc()
			}
			common.WriteErrorCode(c, http.StatusTooManyRequests, "RATE_LIMITED", "rate limit exceeded")
			return
		}
		c.Next()
	}
}

func writeRateLimitHeaders(c *gin.Context, decision ratelimit.Decision) {
	if decision.Limit > 0 {
		c.Header("RateLimit-Limit", strconv.Itoa(decision.Limit))
	}
	if decision.Remaining >= 0 {
		c.Header("RateLimit-Remaining", strconv.Itoa(decision.Remaining))
	}
	if !decision.ResetAt.IsZero() {
		c.Header("RateLimit-Reset", strconv.FormatInt(decision.ResetAt.Unix(), 10))
		if !decision.Allowed {
			retryAfter := int64(time.Until(decision.ResetAt).Seconds())
			if retryAfter < 0 {
				retryAfter = 0
			}
			c.Header("Retry-After", strconv.FormatInt(retryAfter, 10))
		}
	}
}
