package handlers

import (
	"net/http"

	"miniapp-auth/internal/common/logging"
)

// HealthResponse reports the service status and each dependency
type HealthResponse struct {
	Status     string            `json:"status"`
	Components map[string]string `json:"components,omitempty"`
}

// Health answers 200 when every registered component is healthy and 503 otherwise
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{Status: "ok"}
	status := http.StatusOK

	if len(h.components) > 0 {
		resp.Components = make(map[string]string, len(h.components))
		for _, name := range sortedNames(h.components) {
			if err := h.components[name].Health(); err != nil {
				h.logger.WithContext(r.Context()).Warn("Component unhealthy",
					logging.String("component", name),
					logging.Err(err),
				)
				resp.Components[name] = "unhealthy"
				resp.Status = "degraded"
				status = http.StatusServiceUnavailable
				continue
			}
			resp.Components[name] = "healthy"
		}
	}

	h.sendJSONStatus(w, status, resp)
}
