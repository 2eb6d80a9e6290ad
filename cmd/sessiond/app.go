package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dmitrymomot/sessionkit/core/handler"
	"github.com/dmitrymomot/sessionkit/core/health"
	"github.com/dmitrymomot/sessionkit/core/logger"
	"github.com/dmitrymomot/sessionkit/core/response"
	"github.com/dmitrymomot/sessionkit/core/router"
	"github.com/dmitrymomot/sessionkit/core/session"
	"github.com/dmitrymomot/sessionkit/integration/database/pg"
	"github.com/dmitrymomot/sessionkit/integration/database/redis"
	"github.com/dmitrymomot/sessionkit/integration/sessionstore/pgstore"
	"github.com/dmitrymomot/sessionkit/integration/sessionstore/redisstore"
	"github.com/dmitrymomot/sessionkit/middleware"
)

// userSession is the value kept for a logged-in user.
type userSession struct {
	session.Expiry
	UserID uuid.UUID `json:"uid"`
	Name   string    `json:"name"`
	CSRF   string    `json:"csrf"`
}

func (s userSession) CSRFToken() string { return s.CSRF }

func (s userSession) Renew(exp time.Time) userSession {
	s.Expiry = session.NewExpiry(exp)
	return s
}

type profile struct {
	UserID    uuid.UUID `json:"userId"`
	Name      string    `json:"name"`
	CSRFToken string    `json:"csrfToken,omitempty"`
}

// C is the request context used by every route.
type C = *router.Context

type app struct {
	cfg      Config
	log      *slog.Logger
	now      func() time.Time
	store    session.Store[userSession]
	registry *prometheus.Registry
	metrics  *middleware.SessionMetrics
	checks   []health.Check
	closers  []func() error
}

// newApp builds the session store for the configured strategy and backend.
// Close releases the connections it opened.
func newApp(ctx context.Context, cfg Config, log *slog.Logger) (*app, error) {
	a := &app{
		cfg:      cfg,
		log:      log,
		now:      time.Now,
		registry: prometheus.NewRegistry(),
	}
	a.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	a.metrics = middleware.NewSessionMetrics(middleware.WithRegistry(a.registry))

	opts := append(cfg.Session.Options(), session.WithLogger(log))
	var err error
	switch cfg.Strategy {
	case strategyOpaque:
		var backend session.Backend[userSession]
		if backend, err = a.newBackend(ctx); err != nil {
			break
		}
		a.store = session.NewIDStoreFromConfig(cfg.Session, backend, opts...)
	case strategyToken:
		a.store, err = session.NewTokenStoreFromConfig[userSession](cfg.Session, opts...)
	case strategySWT:
		a.store, err = session.NewSWTStoreFromConfig[userSession](cfg.Session, opts...)
	default:
		err = ErrUnknownStrategy
	}
	if err != nil {
		return nil, errors.Join(err, a.Close())
	}

	log.Info("session store ready",
		logger.Strategy(cfg.Strategy),
		logger.Backend(a.backendName()),
		logger.CookieName(cfg.Session.CookieName),
	)
	return a, nil
}

func (a *app) newBackend(ctx context.Context) (session.Backend[userSession], error) {
	ttl := a.cfg.Session.Duration
	switch a.cfg.Backend {
	case backendMemory:
		b := session.NewMemoryBackend[userSession](
			session.WithTTL(ttl),
			session.WithCleanupInterval(a.cfg.CleanupInterval),
		)
		a.closers = append(a.closers, b.Close)
		return b, nil

	case backendRedis:
		client, err := redis.Connect(ctx, a.cfg.Redis)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, client.Close)
		a.checks = append(a.checks, health.Check{Name: backendRedis, Fn: redis.Healthcheck(client)})
		return redisstore.New[userSession](client, redisstore.WithTTL(ttl)), nil

	case backendPostgres:
		pool, err := pg.Connect(ctx, a.cfg.Postgres)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, func() error { pool.Close(); return nil })
		a.checks = append(a.checks, health.Check{Name: backendPostgres, Fn: pg.Healthcheck(pool)})

		b := pgstore.New[userSession](pool, pgstore.WithTTL(ttl))
		if err := pg.InTx(ctx, pool, b.Migrate); err != nil {
			return nil, err
		}
		if a.cfg.CleanupInterval > 0 {
			stop := make(chan struct{})
			go a.purgeExpired(b, stop)
			a.closers = append(a.closers, func() error { close(stop); return nil })
		}
		return b, nil
	}
	return nil, ErrUnknownBackend
}

// purgeExpired deletes expired postgres rows every CleanupInterval until stop is closed.
func (a *app) purgeExpired(b *pgstore.Backend[userSession], stop <-chan struct{}) {
	ticker := time.NewTicker(a.cfg.CleanupInterval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), a.cfg.CleanupInterval)
			n, err := b.DeleteExpired(ctx)
			cancel()
			if err != nil {
				a.log.Error("purge expired sessions", logger.Backend(backendPostgres), logger.Error(err))
				continue
			}
			if n > 0 {
				a.log.Debug("purged expired sessions", logger.Backend(backendPostgres), logger.Key("count", n))
			}
		}
	}
}

func (a *app) backendName() string {
	if a.cfg.Strategy == strategyOpaque {
		return a.cfg.Backend
	}
	return "cookie"
}

// Close releases backend resources in reverse order of acquisition.
func (a *app) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i]())
	}
	a.closers = nil
	return errors.Join(errs...)
}

func (a *app) routes() http.Handler {
	r := router.New[C](
		router.WithErrorHandler[C](response.JSONErrorHandler[C]),
		router.WithMiddleware[C](
			middleware.RequestID[C](),
			middleware.LoggingWithLogger[C](a.log),
			middleware.SecurityHeaders[C](),
		),
	)

	opts := []middleware.SessionOption{
		middleware.WithSessionLogger(a.log),
		middleware.WithSessionMetrics(a.metrics),
		middleware.WithStrategy(a.cfg.Strategy),
	}
	store := a.store

	r.Get("/healthz", health.Liveness[C])
	r.Get("/readyz", health.Readiness[C](a.log, a.checks...))
	r.Get("/metrics", fromHTTP(promhttp.HandlerFor(a.registry, promhttp.HandlerOpts{})))

	r.Post("/login", a.login)
	r.Get("/status", middleware.WithSession(store,
		middleware.NotLoggedIn[C](),
		middleware.LoggedIn[C, userSession](),
		opts...,
	))
	r.Get("/csrf", middleware.RequireLogin(store, middleware.CSRFToken[C, userSession](), opts...))
	r.Get("/me", middleware.RequireLogin[C, userSession](store, a.me, opts...))
	r.Post("/profile", middleware.WithSession(store,
		middleware.AccessDenied[C]("Login required"),
		middleware.RequireCSRFToken[C, userSession](a.updateProfile, opts...),
		opts...,
	))
	r.Post("/logout", middleware.RequireLogin(store,
		middleware.RequireCSRFToken[C, userSession](middleware.Logout[C](store, opts...), opts...),
		opts...,
	))

	return r
}

// login starts a fresh session for the posted name. Any previous session is
// dropped first so a known cookie cannot be carried over.
func (a *app) login(ctx C) handler.Response {
	name := ctx.Request().FormValue("name")
	if name == "" {
		return response.Error(response.ErrBadRequest.WithMessage("name is required"))
	}

	sess := userSession{
		Expiry: session.NewExpiry(a.now().Add(a.cfg.Session.Duration)),
		UserID: uuid.New(),
		Name:   name,
		CSRF:   session.NewCSRFToken(),
	}
	if err := a.replace(ctx, sess); err != nil {
		return response.Error(middleware.SessionError(err))
	}

	a.log.InfoContext(ctx, "user logged in", logger.Event("login"), logger.ID("user_id", sess.UserID))
	return response.JSON(profile{UserID: sess.UserID, Name: sess.Name, CSRFToken: sess.CSRF})
}

func (a *app) me(_ C, sess userSession) handler.Response {
	return response.JSON(profile{UserID: sess.UserID, Name: sess.Name})
}

func (a *app) updateProfile(ctx C, sess userSession) handler.Response {
	name := ctx.Request().FormValue("name")
	if name == "" {
		return response.Error(response.ErrBadRequest.WithMessage("name is required"))
	}
	sess.Name = name
	if err := a.replace(ctx, sess); err != nil {
		return response.Error(middleware.SessionError(err))
	}
	return response.JSON(profile{UserID: sess.UserID, Name: sess.Name})
}

func (a *app) replace(ctx C, sess userSession) error {
	if err := a.store.Delete(ctx); err != nil {
		return err
	}
	if err := a.store.Set(ctx, sess); err != nil {
		a.log.ErrorContext(ctx, "session store failed", logger.Component("sessiond"), logger.Error(err))
		return err
	}
	return nil
}

func fromHTTP(h http.Handler) handler.HandlerFunc[C] {
	return func(C) handler.Response {
		return func(w http.ResponseWriter, r *http.Request) error {
			h.ServeHTTP(w, r)
			return nil
		}
	}
}
