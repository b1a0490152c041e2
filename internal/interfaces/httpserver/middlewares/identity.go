package middlewares

import (
	"encoding/base64"
	"encoding/json"
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

const (
	principalHeader     = "x-ms-client-principal"
	principalContextKey = "client-principal"
)

// Principal is the platform-injected identity of the calling user. The
// hosting platform authenticates the browser session and forwards the
// identity as a base64 JSON header; the service itself never sees
// credentials.
type Principal struct {
	UserID           string   `json:"userId"`
	UserDetails      string   `json:"userDetails"`
	IdentityProvider string   `json:"identityProvider"`
	Roles            []string `json:"userRoles"`
}

// Anonymous reports whether no authenticated identity was forwarded.
func (p *Principal) Anonymous() bool {
	return p == nil || p.UserID == ""
}

// HasRole reports whether the platform granted the given role.
func (p *Principal) HasRole(role string) bool {
	if p == nil {
		return false
	}
	for _, r := range p.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// ClientPrincipal decodes the platform identity header into the gin
// context. A missing or malformed header degrades to an anonymous
// principal rather than failing the request; route guards decide whether
// anonymous access is acceptable.
func ClientPrincipal(log zerolog.Logger) gin.HandlerFunc {
	logger := log.With().Str("component", "client-principal").Logger()
	return func(c *gin.Context) {
		principal, err := decodePrincipal(c.GetHeader(principalHeader))
		if err != nil {
			logger.Warn().Err(err).
				Str("path", c.Request.URL.Path).
				Msg("failed to decode client principal header; treating request as anonymous")
		} else if !principal.Anonymous() {
			logger.Debug().
				Str("user", principal.UserDetails).
				Str("provider", principal.IdentityProvider).
				Msg("resolved client principal")
		}
		c.Set(principalContextKey, principal)
		c.Next()
	}
}

// PrincipalFromContext returns the decoded principal, nil when the
// middleware did not run.
func PrincipalFromContext(c *gin.Context) *Principal {
	if val, ok := c.Get(principalContextKey); ok {
		if principal, ok := val.(*Principal); ok {
			return principal
		}
	}
	return nil
}

func decodePrincipal(header string) (*Principal, error) {
	if header == "" {
		return &Principal{}, nil
	}
	decoded, err := base64.StdEncoding.DecodeString(header)
	if err != nil {
		return &Principal{}, fmt.Errorf("decode identity header: %w", err)
	}
	var principal Principal
	if err := json.Unmarshal(decoded, &principal); err != nil {
		return &Principal{}, fmt.Errorf("parse identity header: %w", err)
	}
	return &principal, nil
}
