package analytics

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/jrodas4044/signature-register/internal/http/common"
	"github.com/jrodas4044/signature-register/internal/usecase"
)

type Handler struct {
	Analytics *usecase.AnalyticsService

	// DefaultThreshold applies when the request carries no threshold
	// query; zero falls through to the service default.
	DefaultThreshold float64
}

func NewHandler(analytics *usecase.AnalyticsService, defaultThreshold float64) *Handler {
	return &Handler{Analytics: analytics, DefaultThreshold: defaultThreshold}
}

func (h *Handler) HandleTopPerformers(c *gin.Context) {
	principal, ok := common.PrincipalFromContext(c)
	if !ok {
		return
	}
	page, pageSize := common.Pagination(c)
	result := h.Analytics.TopPerformers(c.Request.Context(), principal, page, pageSize)
	c.JSON(http.StatusOK, result)
}

func (h *Handler) HandleLeaderKPIs(c *gin.Context) {
	principal, ok := common.PrincipalFromContext(c)
	if !ok {
		return
	}
	leaderID, ok := common.ParseUUIDParam(c, "id")
	if !ok {
		return
	}
	result := h.Analytics.KPIs(c.Request.Context(), principal, leaderID)
	c.JSON(http.StatusOK, result)
}

func (h *Handler) HandleFraudAlerts(c *gin.Context) {
	principal, ok := common.PrincipalFromContext(c)
	if !ok {
		return
	}
	threshold := h.DefaultThreshold
	if raw := strings.TrimSpace(c.Query("threshold")); raw != "" {
		parsed, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			common.WriteErrorCode(c, http.StatusBadRequest, "INVALID_ARGUMENT", "threshold must be a number")
			return
		}
		threshold = parsed
	}
	page, pageSize := common.Pagination(c)
	result := h.Analytics.FraudAlerts(c.Request.Context(), principal, threshold, page, pageSize)
	c.JSON(http.StatusOK, result)
}

func (h *Handler) HandleDashboard(c *gin.Context) {
	principal, ok := common.PrincipalFromContext(c)
	if !ok {
		return
	}
	result := h.Analytics.Dashboard(c.Request.Context(), principal)
	c.JSON(http.StatusOK, result)
}
