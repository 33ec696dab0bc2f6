package httptransport

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	cardHandler "campuscard/internal/card/handler"
	"campuscard/internal/platform/health"
	"campuscard/pkg/platform/middleware/request"
	"campuscard/pkg/platform/validation"
)

// Dependencies are the pieces the router mounts. Metrics and RequestMetrics
// are optional.
type Dependencies struct {
	Card           *cardHandler.Handler
	Health         *health.Handler
	Metrics        http.Handler
	RequestMetrics *request.Metrics
	Timeout        time.Duration
	Logger         *slog.Logger
}

// NewRouter wires the local bridge endpoints with middleware.
func NewRouter(deps Dependencies) http.Handler {
	timeout := deps.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	r := chi.NewRouter()
	r.Use(request.Recovery(deps.Logger))
	r.Use(request.RequestID)
	r.Use(request.Access(deps.Logger, deps.RequestMetrics, routePattern))
	r.Use(request.BodyLimit(validation.MaxBodySize))

	deps.Health.Register(r)
	if deps.Metrics != nil {
		r.Handle("/metrics", deps.Metrics)
	}

	r.Group(func(r chi.Router) {
		r.Use(request.Timeout(timeout))
		r.Use(request.ContentTypeJSON)
		deps.Card.Register(r)
	})
	return r
}

func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		return rctx.RoutePattern()
	}
	return ""
}
