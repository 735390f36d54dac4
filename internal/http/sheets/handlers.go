package sheets

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/jrodas4044/signature-register/internal/domain/petition"
	"github.com/jrodas4044/signature-register/internal/http/common"
	"github.com/jrodas4044/signature-register/internal/usecase"
)

type Handler struct {
	Allocator *usecase.AllocatorService
	Custody   *usecase.CustodyService
}

func NewHandler(allocator *usecase.AllocatorService, custody *usecase.CustodyService) *Handler {
	return &Handler{Allocator: allocator, Custody: custody}
}

func (h *Handler) HandleAssignBulk(c *gin.Context) {
	principal, ok := common.PrincipalFromContext(c)
	if !ok {
		return
	}
	var req struct {
		LeaderID string `json:"leaderId"`
		From     int    `json:"from"`
		To       int    `json:"to"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		common.WriteErrorCode(c, http.StatusBadRequest, "INVALID_JSON", "invalid request body")
		return
	}
	result := h.Allocator.AssignBulk(c.Request.Context(), principal, req.LeaderID, req.From, req.To)
	c.JSON(http.StatusOK, result)
}

func (h *Handler) HandleReceive(c *gin.Context) {
	principal, ok := common.PrincipalFromContext(c)
	if !ok {
		return
	}
	number, ok := common.ParseIntParam(c, "number")
	if !ok {
		return
	}
	result := h.Custody.Receive(c.Request.Context(), principal, number)
	c.JSON(http.StatusOK, result)
}

func (h *Handler) HandleOverride(c *gin.Context) {
	principal, ok := common.PrincipalFromContext(c)
	if !ok {
		return
	}
	var req struct {
		SheetID  string `json:"sheetId"`
		State    string `json:"state"`
		LeaderID string `json:"leaderId,omitempty"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		common.WriteErrorCode(c, http.StatusBadRequest, "INVALID_JSON", "invalid request body")
		return
	}
	result := h.Custody.Override(c.Request.Context(), principal, usecase.OverrideInput{
		SheetID:  strings.TrimSpace(req.SheetID),
		State:    petition.SheetState(req.State),
		LeaderID: strings.TrimSpace(req.LeaderID),
	})
	c.JSON(http.StatusOK, result)
}

func (h *Handler) HandleList(c *gin.Context) {
	principal, ok := common.PrincipalFromContext(c)
	if !ok {
		return
	}
	page, pageSize := common.Pagination(c)
	state := petition.SheetState(strings.TrimSpace(c.Query("state")))
	result := h.Custody.ListSheets(c.Request.Context(), principal, state, page, pageSize)
	data := make([]common.SheetListingResponse, len(result.Data))
	for i, row := range result.Data {
		data[i] = common.SheetListingResponse{
			SheetResponse: common.ToSheetResponse(row.Sheet),
			LeaderName:    row.LeaderName,
		}
	}
	payload := gin.H{
		"data":     data,
		"total":    result.Total,
		"page":     result.Page,
		"pageSize": result.PageSize,
	}
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
	number, ok := common.ParseIntParam(c, "number")
	if !ok {
		return
	}
	result := h.Custody.GetSheet(c.Request.Context(), principal, number)
	payload := gin.H{}
	if result.Data != nil {
		payload["data"] = common.ToSheetResponse(*result.Data)
	}
	if result.Error != "" {
		payload["error"] = result.Error
	}
	c.JSON(http.StatusOK, payload)
}
