package apiapp

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/ivankudzin/pawmatch/internal/config"
	redrepo "github.com/ivankudzin/pawmatch/internal/repo/redis"
	authsvc "github.com/ivankudzin/pawmatch/internal/services/auth"
	ratesvc "github.com/ivankudzin/pawmatch/internal/services/rate"
	swipesvc "github.com/ivankudzin/pawmatch/internal/services/swipes"
)

type App struct {
	cfg        config.Config
	logger     *zap.Logger
	server     *http.Server
	storage    *storage
	redis      *goredis.Client
	httpRouter http.Handler
}

func New(ctx context.Context, cfg config.Config, log *zap.Logger) (*App, error) {
	if log == nil {
		return nil, fmt.Errorf("logger is nil")
	}

	store, err := openStorage(ctx, cfg, log)
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}

	redisClient := redrepo.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if redisClient != nil {
		if err := redrepo.Ping(ctx, redisClient); err != nil {
			log.Warn("redis unreachable, swipe rate limiting will fail open", zap.Error(err))
		}
	}

	var rateLimiter swipesvc.RateLimiter
	if limiter := ratesvc.NewLimiter(rateStore(redisClient), cfg.Swipes.PerMinute, cfg.Swipes.Per10Sec); limiter.Enabled() {
		rateLimiter = limiter
	} else {
		log.Info("swipe rate limiting disabled")
	}

	swipeService := swipesvc.NewService(swipesvc.Dependencies{
		Tx:          store.tx,
		Ledger:      store.ledger,
		Matches:     store.matches,
		Locker:      store.locker,
		RateLimiter: rateLimiter,
		Logger:      log.Named("swipes"),
	}, swipesvc.Config{
		ConflictRetries: cfg.Swipes.ConflictRetries,
	})

	r := chi.NewRouter()
	ApplyMiddlewares(r, log)
	RegisterRoutes(r, Dependencies{
		SwipeService: swipeService,
		JWT:          authsvc.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.JWTAccessTTL),
		StoragePing:  store.ping,
		RedisPing:    redisPing(redisClient),
		Logger:       log,
	})

	server := &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      r,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	return &App{
		cfg:        cfg,
		logger:     log,
		server:     server,
		storage:    store,
		redis:      redisClient,
		httpRouter: r,
	}, nil
}

func (a *App) Run() error {
	a.logger.Info("api server started",
		zap.String("addr", a.cfg.HTTP.Addr),
		zap.String("storage", a.cfg.StorageDriver()),
	)
	err := a.server.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (a *App) Shutdown(ctx context.Context) error {
	var shutdownErr error

	if err := a.server.Shutdown(ctx); err != nil {
		shutdownErr = err
	}
	if a.storage != nil && a.storage.close != nil {
		a.storage.close()
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil && shutdownErr == nil {
			shutdownErr = err
		}
	}

	return shutdownErr
}

func (a *App) Handler() http.Handler {
	return a.httpRouter
}

// rateStore keeps a nil client from turning into a non-nil interface.
func rateStore(client *goredis.Client) ratesvc.WindowStore {
	if client == nil {
		return nil
	}
	return redrepo.NewRateRepo(client)
}

func redisPing(client *goredis.Client) func(context.Context) error {
	if client == nil {
		return nil
	}
	return func(ctx context.Context) error {
		return redrepo.Ping(ctx, client)
	}
}
