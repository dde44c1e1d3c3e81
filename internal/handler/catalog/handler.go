package catalog

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/hospital-api/pkg/httputil"
	"github.com/jwalitptl/hospital-api/pkg/messaging"
)

type Invalidator interface {
	Invalidate()
}

// Handler drops the cached reference catalogs on demand and tells every
// other instance to do the same through the broker.
type Handler struct {
	provider Invalidator
	broker   messaging.Broker
	channel  string
}

// NewHandler accepts a nil broker, in which case only the local cache is
// dropped.
func NewHandler(provider Invalidator, broker messaging.Broker, channel string) *Handler {
	return &Handler{provider: provider, broker: broker, channel: channel}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/catalogs/invalidate", h.Invalidate)
}

func (h *Handler) Invalidate(c *gin.Context) {
	h.provider.Invalidate()

	broadcast := false
	if h.broker != nil {
		if err := h.broker.Publish(c.Request.Context(), h.channel, "invalidate"); err != nil {
			log.Warn().Err(err).Str("channel", h.channel).Msg("failed to broadcast catalog invalidation")
		} else {
			broadcast = true
		}
	}

	httputil.RespondWithSuccess(c, gin.H{"invalidated": true, "broadcast": broadcast})
}
