package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/5th-Semester-Projects/Nexusmart-Ecommerce-Website-FWD-MERN-Stack-Project-sub002/internal/platform/httpx"
)

// RouteRegistrar registers a set of routes against the provided router.
type RouteRegistrar func(r chi.Router)

// API route groups mounted under the versioned prefix.
const (
	GroupShipping = "shipping"
	GroupPricing  = "pricing"
	GroupCheckout = "checkout"
	GroupOrders   = "orders"
)

const (
	apiPrefix      = "/api/v1"
	requestTimeout = 30 * time.Second
)

var groupOrder = []string{GroupShipping, GroupPricing, GroupCheckout, GroupOrders}

type routeGroup struct {
	registrar   RouteRegistrar
	middlewares []func(http.Handler) http.Handler
}

type routerConfig struct {
	middlewares []func(http.Handler) http.Handler
	health      *HealthHandlers
	metrics     http.Handler
	groups      map[string]*routeGroup
}

func (c *routerConfig) group(name string) *routeGroup {
	g, ok := c.groups[name]
	if !ok {
		g = &routeGroup{}
		c.groups[name] = g
	}
	return g
}

// Option customises the router configuration before construction.
type Option func(*routerConfig)

// NewRouter builds the chi router: probes and /metrics at the root, the API groups under
// /api/v1. A group without a registrar answers 501 so clients can tell a disabled feature from a
// typo in the path.
func NewRouter(opts ...Option) chi.Router {
	cfg := &routerConfig{
		middlewares: []func(http.Handler) http.Handler{
			middleware.RequestID,
			middleware.RealIP,
			middleware.CleanPath,
			middleware.Timeout(requestTimeout),
		},
		metrics: promhttp.Handler(),
		groups:  make(map[string]*routeGroup, len(groupOrder)),
	}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.health == nil {
		cfg.health = NewHealthHandlers()
	}

	r := chi.NewRouter()
	for _, mw := range cfg.middlewares {
		if mw != nil {
			r.Use(mw)
		}
	}
	r.NotFound(errorHandler("route_not_found", "no route for this path", http.StatusNotFound))
	r.MethodNotAllowed(errorHandler("method_not_allowed", "method not allowed on this path", http.StatusMethodNotAllowed))

	r.Get("/healthz", cfg.health.Healthz)
	r.Get("/readyz", cfg.health.Readyz)
	if cfg.metrics != nil {
		r.Method(http.MethodGet, "/metrics", cfg.metrics)
	}

	r.Route(apiPrefix, func(api chi.Router) {
		for _, name := range groupOrder {
			g := cfg.group(name)
			api.Route("/"+name, func(sub chi.Router) {
				for _, mw := range g.middlewares {
					if mw != nil {
						sub.Use(mw)
					}
				}
				if g.registrar == nil {
					unavailable := errorHandler("not_implemented", name+" routes are not enabled", http.StatusNotImplemented)
					sub.HandleFunc("/", unavailable)
					sub.HandleFunc("/*", unavailable)
					return
				}
				g.registrar(sub)
			})
		}
	})
	return r
}

func errorHandler(code, message string, status int) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		httpx.WriteError(req.Context(), w, httpx.NewError(code, message, status).
			WithDetails(map[string]any{"path": req.URL.Path}))
	}
}

// WithMiddlewares appends additional global middleware to the router.
func WithMiddlewares(mw ...func(http.Handler) http.Handler) Option {
	return func(cfg *routerConfig) {
		cfg.middlewares = append(cfg.middlewares, mw...)
	}
}

// WithHealthHandlers overrides the handlers used for /healthz and /readyz.
func WithHealthHandlers(h *HealthHandlers) Option {
	return func(cfg *routerConfig) {
		cfg.health = h
	}
}

// WithMetricsHandler replaces the Prometheus handler served on /metrics. nil disables it.
func WithMetricsHandler(h http.Handler) Option {
	return func(cfg *routerConfig) {
		cfg.metrics = h
	}
}

// WithGroupMiddlewares adds middleware that runs only for the named API group.
func WithGroupMiddlewares(group string, mw ...func(http.Handler) http.Handler) Option {
	return func(cfg *routerConfig) {
		g := cfg.group(group)
		g.middlewares = append(g.middlewares, mw...)
	}
}

func withGroup(name string, reg RouteRegistrar) Option {
	return func(cfg *routerConfig) {
		cfg.group(name).registrar = reg
	}
}

// WithShippingRoutes mounts zone lookup and quote endpoints.
func WithShippingRoutes(reg RouteRegistrar) Option { return withGroup(GroupShipping, reg) }

// WithPricingRoutes mounts price previews.
func WithPricingRoutes(reg RouteRegistrar) Option { return withGroup(GroupPricing, reg) }

// WithCheckoutRoutes mounts checkout draft endpoints.
func WithCheckoutRoutes(reg RouteRegistrar) Option { return withGroup(GroupCheckout, reg) }

// WithOrderRoutes mounts order reads and status changes.
func WithOrderRoutes(reg RouteRegistrar) Option { return withGroup(GroupOrders, reg) }
