// Package auth resolves the request principal. The service sits behind a
// gateway that authenticates users and forwards their identity as headers.
package auth

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/jrodas4044/signature-register/internal/domain/petition"
)

type HeaderAuthenticator struct{}

func NewHeaderAuthenticator() *HeaderAuthenticator {
	return &HeaderAuthenticator{}
}

func (h *HeaderAuthenticator) Authenticate(c *gin.Context) (petition.Principal, error) {
	return petition.Principal{
		Subject: strings.TrimSpace(c.GetHeader("X-Principal-Subject")),
		Role:    petition.Role(strings.TrimSpace(c.GetHeader("X-Principal-Role"))),
	}, nil
}
