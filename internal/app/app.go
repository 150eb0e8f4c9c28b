package app

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/markdave123-py/Moleqa/internal/config"
	"github.com/markdave123-py/Moleqa/internal/core"
	db "github.com/markdave123-py/Moleqa/internal/core/database"
	objectclient "github.com/markdave123-py/Moleqa/internal/core/object-client"
	"github.com/markdave123-py/Moleqa/internal/core/prediction"
	"github.com/markdave123-py/Moleqa/internal/services"
)

type App struct {
	DBClient     core.DbClient
	ObjectClient core.ObjectClient
	Registry     *prometheus.Registry
	Server       *Server
}

func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	appCtx, cancel := context.WithTimeout(ctx, 5*time.Minute)
	defer cancel()

	dbClient, err := newDbClient(appCtx, cfg)
	if err != nil {
		return nil, err
	}
	log.Printf("Database (%s) initialized and ready.", cfg.DBDriver)

	objClient, err := newObjectClient(appCtx, cfg)
	if err != nil {
		_ = dbClient.Close()
		return nil, err
	}
	log.Printf("Object client (%s) initialized and ready.", cfg.ObjectStore)

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	svc := NewServices(dbClient, objClient, services.NewMetrics(reg))
	server := NewServer(cfg, NewRouter(cfg, svc, reg))

	return &App{DBClient: dbClient, ObjectClient: objClient, Registry: reg, Server: server}, nil
}

// NewServices wires the services against the mock prediction seams.
func NewServices(dbClient core.DbClient, objClient core.ObjectClient, metrics *services.Metrics) Services {
	return Services{
		Molecules: services.NewMoleculeService(dbClient, objClient, prediction.PlaceholderExtractor{}, metrics),
		Analyses:  services.NewAnalysisService(dbClient, prediction.NewMockPredictor(), metrics),
		Users:     services.NewUserService(dbClient, metrics),
	}
}

func newDbClient(ctx context.Context, cfg *config.Config) (core.DbClient, error) {
	switch cfg.DBDriver {
	case config.DriverPostgres:
		client, err := db.NewDatabaseClient(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return client, nil
	case config.DriverMemory:
		return db.NewMemoryClient(), nil
	default:
		return nil, fmt.Errorf("unknown DB_DRIVER %q", cfg.DBDriver)
	}
}

func newObjectClient(ctx context.Context, cfg *config.Config) (core.ObjectClient, error) {
	switch cfg.ObjectStore {
	case config.DriverS3:
		client, err := objectclient.NewS3Client(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return client, nil
	case config.DriverMemory:
		return objectclient.NewMemoryClient(), nil
	default:
		return nil, fmt.Errorf("unknown OBJECT_STORE %q", cfg.ObjectStore)
	}
}

func (a *App) Close() {
	if a.DBClient != nil {
		_ = a.DBClient.Close()
	}
}
