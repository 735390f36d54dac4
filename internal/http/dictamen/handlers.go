package dictamen

import (
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/jrodas4044/signature-register/internal/http/common"
	"github.com/jrodas4044/signature-register/internal/usecase"
)

// Imports are bounded so a misdirected upload cannot exhaust memory. The
// TSE dictamen for a full petition fits well under this.
const maxImportBytes = 10 << 20

type Handler struct {
	Reconciler *usecase.ReconcilerService
}

func NewHandler(reconciler *usecase.ReconcilerService) *Handler {
	return &Handler{Reconciler: reconciler}
}

// HandleImport accepts the dictamen either as a multipart upload under
// the "file" field or as the raw request body.
func (h *Handler) HandleImport(c *gin.Context) {
	principal, ok := common.PrincipalFromContext(c)
	if !ok {
		return
	}
	content, ok := readContent(c)
	if !ok {
		return
	}
	result := h.Reconciler.ImportDictamen(c.Request.Context(), principal, content)
	c.JSON(http.StatusOK, result)
}

func readContent(c *gin.Context) (string, bool) {
	contentType := c.GetHeader("Content-Type")
	if strings.HasPrefix(contentType, "multipart/form-data") {
		file, err := c.FormFile("file")
		if err != nil {
			common.WriteErrorCode(c, http.StatusBadRequest, "INVALID_ARGUMENT", "multipart field 'file' is required")
			return "", false
		}
		reader, err := file.Open()
		if err != nil {
			common.WriteErrorCode(c, http.StatusBadRequest, "INVALID_ARGUMENT", "unable to read uploaded file")
			return "", false
		}
		defer reader.Close()
		data, err := io.ReadAll(io.LimitReader(reader, maxImportBytes))
		if err != nil {
			common.WriteErrorCode(c, http.StatusBadRequest, "INVALID_ARGUMENT", "unable to read uploaded file")
			return "", false
		}
		return string(data), true
	}
	data, err := io.ReadAll(io.LimitReader(c.Request.Body, maxImportBytes))
	if err != nil {
		common.WriteErrorCode(c, http.StatusBadRequest, "INVALID_ARGUMENT", "unable to read request body")
		return "", false
	}
	return string(data), true
}
