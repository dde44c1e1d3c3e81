package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	apperrors "github.com/jwalitptl/hospital-api/pkg/errors"
	"github.com/jwalitptl/hospital-api/pkg/httputil"
)

// ErrorLogger records the errors handlers attached to the context. The
// response has already been written by then; server errors are logged where
// they are rendered, so only client-side kinds are reported here.
func ErrorLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		for _, e := range c.Errors {
			appErr, ok := apperrors.As(e.Err)
			if !ok {
				continue
			}
			switch appErr.Kind {
			case apperrors.KindInternal, apperrors.KindPersistenceFailure, apperrors.KindNoContent:
				continue
			}
			log.Warn().
				Err(e.Err).
				Str("kind", string(appErr.Kind)).
				Str("request_id", c.GetString(ContextRequestID)).
				Str("path", c.Request.URL.Path).
				Str("method", c.Request.Method).
				Msg("Request error")
		}
	}
}

// abortWith ends the chain with the standard error envelope for statuses that
// have no application error kind.
func abortWith(c *gin.Context, status int, kind, message string) {
	c.AbortWithStatusJSON(status, httputil.Response{
		Success: false,
		Error: &httputil.Error{
			Code:     status,
			Kind:     kind,
			Message:  message,
			Severity: string(apperrors.SeverityWarning),
		},
	})
}
