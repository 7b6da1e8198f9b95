package router

import (
	"net/http"

	"warehouse-receiving/internal/config"
	"warehouse-receiving/internal/handler"
	"warehouse-receiving/internal/middleware"

	"github.com/rs/zerolog"
)

// New creates a new HTTP router with all routes and middleware configured.
func New(
	transactionHandler *handler.WarehouseHandler,
	procedureHandler *handler.WarehouseHandler,
	healthHandler *handler.HealthHandler,
	rateLimit config.RateLimitConfig,
	logger zerolog.Logger,
) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", healthHandler.Check)

	// Register warehouse routes (both with and without trailing slash)
	mux.HandleFunc("/api/warehouse/products", transactionHandler.AddProduct)
	mux.HandleFunc("/api/warehouse/products/", func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/warehouse/products/":
			transactionHandler.AddProduct(w, r)
		case "/api/warehouse/products/procedure", "/api/warehouse/products/procedure/":
			procedureHandler.AddProduct(w, r)
		default:
			http.NotFound(w, r)
		}
	})

	// Apply middleware in order: Recovery -> RequestID -> Logging -> CORS -> RateLimit
	var h http.Handler = mux
	h = middleware.RateLimit(rateLimit.RPS, rateLimit.Burst, logger)(h)
	h = middleware.CORS(h)
	h = middleware.Logging(logger)(h)
	h = middleware.RequestID(h)
	h = middleware.Recovery(logger)(h)

	return h
}
