package leaders

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/jrodas4044/signature-register/internal/domain/petition"
	"github.com/jrodas4044/signature-register/internal/http/common"
	"github.com/jrodas4044/signature-register/internal/usecase"
)

type Handler struct {
	Leaders *usecase.LeaderService
}

func NewHandler(leaders *usecase.LeaderService) *Handler {
	return &Handler{Leaders: leaders}
}

func (h *Handler) HandleCreate(c *gin.Context) {
	principal, ok := common.PrincipalFromContext(c)
	if !ok {
		return
	}
	var req struct {
		Name string `json:"name"`
		Zone string `json:"zone"`
		DPI  string `json:"dpi"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		common.WriteErrorCode(c, http.StatusBadRequest, "INVALID_JSON", "invalid request body")
		return
	}
	result := h.Leaders.Create(c.Request.Context(), principal, usecase.CreateLeaderInput{
		Name: req.Name,
		Zone: req.Zone,
		DPI:  req.DPI,
	})
	c.JSON(http.StatusOK, result)
}

func (h *Handler) HandleUpdate(c *gin.Context) {
	principal, ok := common.PrincipalFromContext(c)
	if !ok {
		return
	}
	leaderID, ok := common.ParseUUIDParam(c, "id")
	if !ok {
		return
	}
	var req struct {
		Name  string `json:"name"`
		Zone  string `json:"zone"`
		DPI   string `json:"dpi"`
		State string `json:"state"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		common.WriteErrorCode(c, http.StatusBadRequest, "INVALID_JSON", "invalid request body")
		return
	}
	result := h.Leaders.Update(c.Request.Context(), principal, leaderID, usecase.UpdateLeaderInput{
		Name:  req.Name,
		Zone:  req.Zone,
		DPI:   req.DPI,
		State: petition.LeaderState(strings.TrimSpace(req.State)),
	})
	c.JSON(http.StatusOK, result)
}

func (h *Handler) HandleDelete(c *gin.Context) {
	principal, ok := common.PrincipalFromContext(c)
	if !ok {
		return
	}
	leaderID, ok := common.ParseUUIDParam(c, "id")
	if !ok {
		return
	}
	result := h.Leaders.Delete(c.Request.Context(), principal, leaderID)
	c.JSON(http.StatusOK, result)
}

func (h *Handler) HandleList(c *gin.Context) {
	principal, ok := common.PrincipalFromContext(c)
	if !ok {
		return
	}
	page, pageSize := common.Pagination(c)
	result := h.Leaders.List(c.Request.Context(), principal, page, pageSize)
	payload := gin.H{
		"data":     common.ToLeaderResponses(result.Data),
		"total":    result.Total,
		"page":     result.Page,
		"pageSize": result.PageSize,
	}
	if result.Error != "" {
		payload["error"] = result.Error
	}
	c.JSON(http.StatusOK, payload)
}

func (h *Handler) HandleListAll(c *gin.Context) {
	principal, ok := common.PrincipalFromContext(c)
	if !ok {
		return
	}
	result := h.Leaders.ListAll(c.Request.Context(), principal)
	payload := gin.H{"data": common.ToLeaderResponses(result.Data)}
	if result.Error != "" {
		payload["error"] = result.Error
	}
	c.JSON(http.StatusOK, payload)
}

func (h *Handler) HandleGet(c *gin.Context) {
	principal, ok := common.PrincipalFromContext(c)
	if !ok {
		return
	}
	leaderID, ok := common.ParseUUIDParam(c, "id")
	if !ok {
		return
	}
	result := h.Leaders.Get(c.Request.Context(), principal, leaderID)
	payload := gin.H{}
	if result.Data != nil {
		payload["data"] = common.ToLeaderResponse(*result.Data)
	}
	if result.Error != "" {
		payload["error"] = result.Error
	}
	c.JSON(http.StatusOK, payload)
}
