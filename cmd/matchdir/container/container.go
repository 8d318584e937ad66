package container

import (
	"fmt"

	"github.com/lyzr/matchdir/cmd/matchdir/repository"
	"github.com/lyzr/matchdir/cmd/matchdir/service"
	"github.com/lyzr/matchdir/common/bootstrap"
	"github.com/lyzr/matchdir/common/config"
)

// Container holds all initialized services and repositories (singleton pattern)
type Container struct {
	Components *bootstrap.Components

	// Repositories
	MatchStore repository.Store

	// Services
	MatchService *service.MatchService
}

// NewContainer initializes the store for the configured backend and the services on top of it
func NewContainer(components *bootstrap.Components) (*Container, error) {
	store, err := newStore(components)
	if err != nil {
		return nil, err
	}

	if components.Cache != nil {
		components.Logger.Info("read-through cache enabled", "ttl", components.Config.Cache.DefaultTTL)
		store = repository.NewCachedStore(store, components.Cache, components.Config.Cache.DefaultTTL, components.Logger)
	}

	matchService := service.NewMatchService(store, components.Logger)

	return &Container{
		Components:   components,
		MatchStore:   store,
		MatchService: matchService,
	}, nil
}

func newStore(components *bootstrap.Components) (repository.Store, error) {
	backend := components.Config.Store.Backend

	switch backend {
	case config.BackendMemory:
		return repository.NewMemoryStore(), nil

	case config.BackendPostgres:
		if components.DB == nil {
			return nil, fmt.Errorf("store backend %q requires a database connection", backend)
		}
		return repository.NewPostgresStore(components.DB), nil

	case config.BackendRedis:
		if components.Redis == nil {
			return nil, fmt.Errorf("store backend %q requires a redis connection", backend)
		}
		return repository.NewRedisStore(components.Redis, components.Config.Redis.KeyPrefix), nil

	default:
		return nil, fmt.Errorf("unknown store backend: %q", backend)
	}
}
