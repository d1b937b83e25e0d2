package handlers

import (
	"net/http"

	"github.com/pocketbase/pocketbase/core"
)

const serviceName = "ValetDesk API"

// HealthCheck reports liveness. It does not probe the store.
func HealthCheck(e *core.RequestEvent) error {
	return e.JSON(http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": serviceName,
	})
}
