package adhesions

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/jrodas4044/signature-register/internal/domain/petition"
	"github.com/jrodas4044/signature-register/internal/http/common"
	"github.com/jrodas4044/signature-register/internal/usecase"
)

type Handler struct {
	Recorder *usecase.RecorderService
}

func NewHandler(recorder *usecase.RecorderService) *Handler {
	return &Handler{Recorder: recorder}
}

func (h *Handler) HandleSaveLines(c *gin.Context) {
	principal, ok := common.PrincipalFromContext(c)
	if !ok {
		return
	}
	number, ok := common.ParseIntParam(c, "number")
	if !ok {
		return
	}
	var req struct {
		Lines []struct {
			Line        int    `json:"line"`
			CitizenDPI  string `json:"citizenDpi"`
			CitizenName string `json:"citizenName"`
			State       string `json:"state"`
			Cause       string `json:"cause,omitempty"`
		} `json:"lines"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		common.WriteErrorCode(c, http.StatusBadRequest, "INVALID_JSON", "invalid request body")
		return
	}
	lines := make([]usecase.LineInput, 0, len(req.Lines))
	for _, line := range req.Lines {
		lines = append(lines, usecase.LineInput{
			Line:        line.Line,
			CitizenDPI:  strings.TrimSpace(line.CitizenDPI),
			CitizenName: strings.TrimSpace(line.CitizenName),
			State:       petition.AdhesionState(line.State),
			Cause:       petition.RejectionCause(line.Cause),
		})
	}
	result := h.Recorder.SaveLines(c.Request.Context(), principal, number, lines)
	c.JSON(http.StatusOK, result)
}

func (h *Handler) HandleGetSheetLines(c *gin.Context) {
	principal, ok := common.PrincipalFromContext(c)
	if !ok {
		return
	}
	number, ok := common.ParseIntParam(c, "number")
	if !ok {
		return
	}
	result := h.Recorder.GetSheetLines(c.Request.Context(), principal, number)
	writeLines(c, result)
}

func (h *Handler) HandleListLines(c *gin.Context) {
	principal, ok := common.PrincipalFromContext(c)
	if !ok {
		return
	}
	sheetID := strings.TrimSpace(c.Query("sheetId"))
	if sheetID == "" {
		common.WriteErrorCode(c, http.StatusBadRequest, "INVALID_ARGUMENT", "sheetId is required")
		return
	}
	result := h.Recorder.ListLinesBySheetID(c.Request.Context(), principal, sheetID)
	writeLines(c, result)
}

func writeLines(c *gin.Context, result usecase.SheetLinesResult) {
	payload := gin.H{"lines": common.ToLineResponses(result.Lines)}
	if result.SheetID != "" {
		payload["sheetId"] = result.SheetID
	}
	if result.Error != "" {
		payload["error"] = result.Error
	}
	c.JSON(http.StatusOK, payload)
}
