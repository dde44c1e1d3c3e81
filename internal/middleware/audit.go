package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/hospital-api/internal/model"
	"github.com/jwalitptl/hospital-api/internal/service/audit"
)

type Auditor interface {
	Log(ctx context.Context, action, entityType, entityID string, opts *audit.LogOptions) error
}

// AuditMiddleware records read access to clinical data. Writes are audited by
// the services themselves.
type AuditMiddleware struct {
	auditor Auditor
}

func NewAuditMiddleware(auditor Auditor) *AuditMiddleware {
	return &AuditMiddleware{auditor: auditor}
}

func (m *AuditMiddleware) AccessLog(entityType string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		status := c.Writer.Status()
		if c.Request.Method != http.MethodGet || status >= http.StatusBadRequest {
			return
		}

		params := make([]string, 0, len(c.Params))
		for _, p := range c.Params {
			params = append(params, p.Key+"="+p.Value)
		}

		err := m.auditor.Log(c.Request.Context(), model.AuditActionRead, entityType, strings.Join(params, ","), &audit.LogOptions{
			Metadata: map[string]interface{}{
				"route":  c.FullPath(),
				"query":  c.Request.URL.RawQuery,
				"status": status,
				"reason": c.GetHeader("X-Access-Reason"),
			},
			IPAddress: c.ClientIP(),
			UserAgent: c.Request.UserAgent(),
		})
		if err != nil {
			log.Error().
				Err(err).
				Str("request_id", c.GetString(ContextRequestID)).
				Str("entity_type", entityType).
				Msg("failed to record access audit")
		}
	}
}
