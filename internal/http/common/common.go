package common

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/jrodas4044/signature-register/internal/domain/petition"
)

const principalKey = "principal"

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// LeaderResponse is the wire form of a leader.
type LeaderResponse struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Zone      *string `json:"zone"`
	DPI       string  `json:"dpi"`
	State     string  `json:"state"`
	DeletedAt *string `json:"deletedAt,omitempty"`
	CreatedAt string  `json:"createdAt"`
	UpdatedAt string  `json:"updatedAt"`
}

type SheetResponse struct {
	ID         string  `json:"id"`
	Number     int     `json:"number"`
	LeaderID   string  `json:"leaderId"`
	State      string  `json:"state"`
	AssignedAt string  `json:"assignedAt"`
	ReceivedAt *string `json:"receivedAt,omitempty"`
}

// SheetListingResponse joins the sheet row with its owner's name.
type SheetListingResponse struct {
	SheetResponse
	LeaderName string `json:"leaderName,omitempty"`
}

type LineResponse struct {
	ID          string  `json:"id"`
	SheetID     string  `json:"sheetId"`
	Line        int     `json:"line"`
	CitizenDPI  *string `json:"citizenDpi"`
	CitizenName *string `json:"citizenName"`
	State       string  `json:"state"`
	Cause       *string `json:"cause,omitempty"`
}

type Authenticator interface {
	Authenticate(*gin.Context) (petition.Principal, error)
}

// PrincipalMiddleware resolves the caller identity and stashes it on the
// request context. Role checks happen inside each operation, not here;
// the middleware only rejects requests that carry no identity at all.
func PrincipalMiddleware(authenticator Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		if authenticator == nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, ErrorResponse{Code: "INTERNAL", Message: "auth misconfigured"})
			return
		}
		principal, err := authenticator.Authenticate(c)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Code: "UNAUTHORIZED", Message: "authentication failed"})
			return
		}
		if principal.Subject == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Code: "UNAUTHORIZED", Message: "principal headers required"})
			return
		}
		c.Set(principalKey, principal)
		c.Next()
	}
}

func PrincipalFromContext(c *gin.Context) (petition.Principal, bool) {
	value, ok := c.Get(principalKey)
	if !ok {
		WriteErrorCode(c, http.StatusInternalServerError, "INTERNAL", "principal missing")
		return petition.Principal{}, false
	}
	principal, ok := value.(petition.Principal)
	if !ok {
		WriteErrorCode(c, http.StatusInternalServerError, "INTERNAL", "principal invalid")
		return petition.Principal{}, false
	}
	return principal, true
}

func ParseUUIDParam(c *gin.Context, name string) (string, bool) {
	value := strings.TrimSpace(c.Param(name))
	if value == "" {
		WriteErrorCode(c, http.StatusBadRequest, "INVALID_ARGUMENT", name+" is required")
		return "", false
	}
	if _, err := uuid.Parse(value); err != nil {
		WriteErrorCode(c, http.StatusBadRequest, "INVALID_ARGUMENT", name+" must be a UUID")
		return "", false
	}
	return value, true
}

func ParseIntParam(c *gin.Context, name string) (int, bool) {
	value, err := strconv.Atoi(strings.TrimSpace(c.Param(name)))
	if err != nil {
		WriteErrorCode(c, http.StatusBadRequest, "INVALID_ARGUMENT", name+" must be an integer")
		return 0, false
	}
	return value, true
}

// Pagination reads page and pageSize query parameters. Missing or
// malformed values fall through to the service defaults.
func Pagination(c *gin.Context) (page, pageSize int) {
	if raw := strings.TrimSpace(c.Query("page")); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil {
			page = v
		}
	}
	if raw := strings.TrimSpace(c.Query("pageSize")); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil {
			pageSize = v
		}
	}
	return page, pageSize
}

func ToLeaderResponse(leader petition.Leader) LeaderResponse {
	resp := LeaderResponse{
		ID:        leader.ID,
		Name:      leader.Name,
		Zone:      leader.Zone,
		DPI:       leader.DPI,
		State:     string(leader.State),
		CreatedAt: leader.CreatedAt.UTC().Format(time.RFC3339Nano),
		UpdatedAt: leader.UpdatedAt.UTC().Format(time.RFC3339Nano),
	}
	if leader.DeletedAt != nil {
		formatted := leader.DeletedAt.UTC().Format(time.RFC3339Nano)
		resp.DeletedAt = &formatted
	}
	return resp
}

func ToLeaderResponses(leaders []petition.Leader) []LeaderResponse {
	out := make([]LeaderResponse, 0, len(leaders))
	for _, leader := range leaders {
		out = append(out, ToLeaderResponse(leader))
	}
	return out
}

func ToSheetResponse(sheet petition.Sheet) SheetResponse {
	resp := SheetResponse{
		ID:         sheet.ID,
		Number:     sheet.Number,
		LeaderID:   sheet.LeaderID,
		State:      string(sheet.State),
		AssignedAt: sheet.AssignedAt.UTC().Format(time.RFC3339Nano),
	}
	if sheet.ReceivedAt != nil {
		formatted := sheet.ReceivedAt.UTC().Format(time.RFC3339Nano)
		resp.ReceivedAt = &formatted
	}
	return resp
}

func ToLineResponse(line petition.AdhesionLine) LineResponse {
	resp := LineResponse{
		ID:          line.ID,
		SheetID:     line.SheetID,
		Line:        line.Line,
		CitizenDPI:  line.CitizenDPI,
		CitizenName: line.CitizenName,
		State:       string(line.State),
	}
	if line.Cause != nil {
		cause := string(*line.Cause)
		resp.Cause = &cause
	}
	return resp
}

func ToLineResponses(lines []petition.AdhesionLine) []LineResponse {
	out := make([]LineResponse, 0, len(lines))
	for _, line := range lines {
		out = append(out, ToLineResponse(line))
	}
	return out
}

func WriteErrorCode(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, ErrorResponse{Code: code, Message: message})
}
