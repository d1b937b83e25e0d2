package monitoring

import (
	"net/http"
	"strings"
	"time"

	"github.com/pocketbase/pocketbase/core"
	"github.com/pocketbase/pocketbase/tools/router"
)

// RequestMetrics is a router middleware. Bind it ahead of the security
// middlewares so rejected requests are counted too.
func (m *Monitor) RequestMetrics(e *core.RequestEvent) error {
	start := time.Now()

	err := e.Next()

	m.TrackRequest(routeLabel(e.Request), e.Request.Method, responseStatus(e, err), time.Since(start))
	return err
}

// routeLabel uses the matched mux pattern, not the raw path, so ids never
// become label values.
func routeLabel(r *http.Request) string {
	if _, path, ok := strings.Cut(r.Pattern, " "); ok {
		return path
	}
	if r.Pattern != "" {
		return r.Pattern
	}
	return "unmatched"
}

// responseStatus falls back to the returned error when nothing was written
// yet, mapped the same way the router's error handler maps it.
func responseStatus(e *core.RequestEvent, err error) int {
	if code := e.Status(); code != 0 {
		return code
	}
	if err == nil {
		return http.StatusOK
	}
	return router.ToApiError(err).Status
}
