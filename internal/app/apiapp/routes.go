package apiapp

import (
	"context"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	authsvc "github.com/ivankudzin/pawmatch/internal/services/auth"
	swipesvc "github.com/ivankudzin/pawmatch/internal/services/swipes"
	"github.com/ivankudzin/pawmatch/internal/transport/http/handlers"
)

type Dependencies struct {
	SwipeService *swipesvc.Service
	JWT          *authsvc.JWTManager
	StoragePing  func(context.Context) error
	RedisPing    func(context.Context) error
	Logger       *zap.Logger
}

func RegisterRoutes(r chi.Router, deps Dependencies) {
	healthHandler := handlers.NewHealthHandler(deps.StoragePing, deps.RedisPing)
	swipeHandler := handlers.NewSwipeHandler(deps.SwipeService, deps.Logger)
	matchesHandler := handlers.NewMatchesHandler(deps.SwipeService, deps.Logger)

	r.Get("/healthz", healthHandler.Handle)

	r.Route("/v1", func(r chi.Router) {
		r.Use(AuthMiddleware(deps.JWT, deps.Logger))

		r.Post("/swipes", swipeHandler.Handle)
		r.Get("/swipes/throttle", swipeHandler.Throttle)
		r.Get("/matches", matchesHandler.List)
		r.Get("/matches/{counterpartID}", matchesHandler.Get)
	})
}
