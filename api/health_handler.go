package api

import (
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
)

type healthHandler struct {
	responder   Responder
	startupTime time.Time
	now         func() time.Time
}

func newHealthHandler(startupTime time.Time) healthHandler {
	logger := log.With().Str("handlerName", "healthHandler").Logger()
	return healthHandler{
		responder:   NewResponder(logger),
		startupTime: startupTime,
		now:         time.Now,
	}
}

// getHealth reports liveness
// @Summary Health check
// @Tags Health
// @Produce json
// @Success 200 {object} HealthResponse
// @Router /api/health [get]
func (h healthHandler) getHealth() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uptime := h.now().Sub(h.startupTime).Truncate(time.Second)
		h.responder.WriteJSON(w, HealthResponse{
			Status: "ok",
			Uptime: uptime.String(),
		})
	}
}
