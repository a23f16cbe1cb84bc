package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/madererasanjose/storefront-backend/api/controllers"
	"github.com/madererasanjose/storefront-backend/api/middleware"
	"github.com/madererasanjose/storefront-backend/internal/cart"
	checkoutsvc "github.com/madererasanjose/storefront-backend/internal/checkout"
	"github.com/madererasanjose/storefront-backend/internal/stock"
	"github.com/madererasanjose/storefront-backend/pkg/config"
	"github.com/madererasanjose/storefront-backend/pkg/logger"
	"github.com/madererasanjose/storefront-backend/pkg/redis"
)

// NewRouter wires the HTTP surface: health probes plus the versioned
// storefront API.
func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbPinger controllers.Pinger,
	redisClient *redis.Client,
	cartService cart.Service,
	stockService stock.Service,
	checkoutService checkoutsvc.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.CORS.Origins()),
	)

	readiness := []controllers.Pinger{dbPinger}
	if redisClient != nil {
		readiness = append(readiness, redisClient)
	}
	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive())
		r.Get("/ready", controllers.HealthReady(logg, readiness...))
	})

	r.Route("/api/v1", func(r chi.Router) {
		var store redis.IdempotencyStore
		if redisClient != nil {
			store = redisClient
		}
		r.Use(middleware.Idempotency(store, logg))

		r.Route("/carts", func(r chi.Router) {
			r.Post("/", controllers.CartCreate(cartService, logg))
			r.Route("/{cartId}", func(r chi.Router) {
				r.Get("/", controllers.CartGet(cartService, logg))
				r.Post("/items", controllers.CartItemAdd(cartService, logg))
				r.Patch("/items/{itemId}", controllers.CartItemUpdate(cartService, logg))
				r.Delete("/items/{itemId}", controllers.CartItemRemove(cartService, logg))
				r.Delete("/clear", controllers.CartClear(cartService, logg))
				r.Patch("/close", controllers.CartClose(cartService, logg))
			})
		})

		r.Route("/stock", func(r chi.Router) {
			r.Get("/", controllers.StockAvailability(stockService, logg))
			r.Post("/reservar", controllers.StockReserve(stockService, logg))
			r.Post("/liberar", controllers.StockRelease(stockService, logg))
		})

		r.Post("/checkout", controllers.Checkout(checkoutService, logg))
	})

	return r
}
