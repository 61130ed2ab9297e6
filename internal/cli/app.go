package cli

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/lachlan2k/labour-console/internal/auth"
	"github.com/lachlan2k/labour-console/internal/backend"
	"github.com/lachlan2k/labour-console/internal/config"
	"github.com/lachlan2k/labour-console/internal/geocode"
	"github.com/lachlan2k/labour-console/internal/metrics"
	"github.com/lachlan2k/labour-console/internal/session"
	"github.com/lachlan2k/labour-console/internal/storage"
)

// app is everything a command needs, built from the loaded config.
type app struct {
	kv       storage.KV
	backend  *backend.Client
	metrics  *metrics.Metrics
	sessions *session.Manager
	auth     *auth.Service
}

func openStore(ctx context.Context, conf *config.Config) (storage.KV, error) {
	switch conf.Session.Store.Type {
	case config.StoreMemory:
		return storage.NewMemoryKV(), nil
	case config.StoreRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     conf.Session.Store.Redis.Addr,
			Password: conf.Session.Store.Redis.Password,
			DB:       conf.Session.Store.Redis.DB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			return nil, fmt.Errorf("connect to redis at %s: %w", conf.Session.Store.Redis.Addr, err)
		}
		return storage.NewRedisKV(client, conf.Session.Store.Redis.Prefix), nil
	default:
		return storage.NewFileKV(conf.Session.Store.Path)
	}
}

func newApp(ctx context.Context, conf *config.Config, logger *zap.Logger) (*app, error) {
	kv, err := openStore(ctx, conf)
	if err != nil {
		return nil, err
	}

	a := &app{
		kv:      kv,
		backend: backend.New(conf.Backend.BaseURL, conf.BackendTimeout(), logger.Named("backend")),
	}

	opts := []session.Option{
		session.WithWatchdogInterval(conf.WatchdogInterval()),
		session.WithCookie(conf.Session.Cookie.Name, conf.CookieLifetime()),
	}
	if conf.Metrics.Enabled {
		a.metrics = metrics.New()
		opts = append(opts, session.WithObserver(a.metrics))
	}
	a.sessions = session.NewManager(kv, a.backend, logger.Named("session"), opts...)

	var geocoder auth.Geocoder
	if conf.Geocoding.APIKey != "" {
		geocoder = geocode.New(conf.Geocoding.APIKey, conf.Geocoding.BaseURL)
	}
	a.auth = auth.NewService(a.backend, a.sessions, kv, geocoder, logger.Named("auth"))

	return a, nil
}

// Close waits for pending backend logout calls before releasing the store.
func (a *app) Close() error {
	a.sessions.Wait()
	return a.kv.Close()
}
