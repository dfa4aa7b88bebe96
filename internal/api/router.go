package api

import (
	"context"
	"net/http"

	"github.com/julienschmidt/httprouter"

	apiContext "linkr/internal/api/context"
	"linkr/internal/api/handlers"
	"linkr/internal/api/middleware"
)

type Dependencies struct {
	LinkHandler      *handlers.LinkHandler
	AnalyticsHandler *handlers.AnalyticsHandler
	RedirectHandler  *handlers.RedirectHandler
	HealthHandler    *handlers.HealthHandler
	RedirectLimiter  *middleware.RateLimiter
}

func NewRouter(deps *Dependencies) *httprouter.Router {
	router := httprouter.New()

	// Link management
	router.POST("/api/v1/links", wrap(deps.LinkHandler.Create))
	router.GET("/api/v1/links", wrap(deps.LinkHandler.List))
	router.GET("/api/v1/links/:code", wrap(deps.LinkHandler.Get))
	router.PATCH("/api/v1/links/:code", wrap(deps.LinkHandler.Update))

	// Analytics
	router.GET("/api/v1/links/:code/stats", wrap(deps.AnalyticsHandler.Stats))

	router.GET("/api/v1/health", wrap(deps.HealthHandler.Check))

	// Public redirect. httprouter cannot hold a root-level wildcard next to
	// the /api prefix, so single-segment paths fall through to NotFound and
	// resolve there.
	redirectHandle := chain(deps.RedirectHandler.Handle, deps.RedirectLimiter.Handle)
	router.NotFound = redirectHandle

	return router
}

// Helper function to chain middlewares
func chain(handler http.HandlerFunc, middlewares ...func(http.HandlerFunc) http.HandlerFunc) http.HandlerFunc {
	for i := len(middlewares) - 1; i >= 0; i-- {
		handler = middlewares[i](handler)
	}
	return handler
}

// Convert http.HandlerFunc to httprouter.Handle
func wrap(handler http.HandlerFunc) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		// Inject params into context
		ctx := context.WithValue(r.Context(), apiContext.Params, ps)
		handler(w, r.WithContext(ctx))
	}
}
