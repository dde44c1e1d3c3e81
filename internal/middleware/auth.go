package middleware

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/hospital-api/pkg/auth"
	apperrors "github.com/jwalitptl/hospital-api/pkg/errors"
	"github.com/jwalitptl/hospital-api/pkg/httputil"
	"github.com/jwalitptl/hospital-api/pkg/security"
)

const ContextPrincipal = "principal"

var (
	errMissingCredentials = errors.New("missing authorization header")
	errBadScheme          = errors.New("invalid authorization format")
	errBadCredentials     = errors.New("invalid username or password")
)

// AuthMiddleware accepts a bearer token issued by the token command or HTTP
// basic credentials of a configured user.
type AuthMiddleware struct {
	tokens *auth.TokenService
	users  map[string]string
	hasher security.PasswordHasher
}

func NewAuthMiddleware(tokens *auth.TokenService, users map[string]string, hasher security.PasswordHasher) *AuthMiddleware {
	return &AuthMiddleware{
		tokens: tokens,
		users:  users,
		hasher: hasher,
	}
}

// Authenticate resolves the principal and stores it on the request context.
func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, err := m.principal(c)
		if err != nil {
			c.Header("WWW-Authenticate", `Bearer realm="hospital", Basic realm="hospital"`)
			httputil.RespondWithError(c, apperrors.Unauthorized(err))
			c.Abort()
			return
		}

		c.Set(ContextPrincipal, principal)
		c.Request = c.Request.WithContext(auth.WithPrincipal(c.Request.Context(), principal))
		c.Next()
	}
}

func (m *AuthMiddleware) principal(c *gin.Context) (string, error) {
	header := c.GetHeader("Authorization")
	if header == "" {
		return "", errMissingCredentials
	}

	scheme, credentials, ok := strings.Cut(header, " ")
	if !ok || credentials == "" {
		return "", errBadScheme
	}

	switch strings.ToLower(scheme) {
	case "bearer":
		claims, err := m.tokens.Validate(credentials)
		if err != nil {
			return "", err
		}
		return claims.Subject, nil
	case "basic":
		user, password, ok := c.Request.BasicAuth()
		if !ok {
			return "", errBadScheme
		}
		hash, known := m.users[user]
		if !known {
			return "", errBadCredentials
		}
		if err := m.hasher.Compare(hash, password); err != nil {
			return "", errBadCredentials
		}
		return user, nil
	default:
		return "", errBadScheme
	}
}
