package app

import (
	"context"
	"net/http"

	"gorm.io/gorm"
	"sweets-app-go/internal/config"
	"sweets-app-go/internal/db"
	"sweets-app-go/internal/domain/catalog"
	"sweets-app-go/internal/domain/events"
	pgdocstore "sweets-app-go/internal/repository/postgres/docstore"
	"sweets-app-go/internal/sync"
	"sweets-app-go/internal/transport/httpserver"
	"sweets-app-go/internal/transport/httpserver/handler"
	"sweets-app-go/pkg/logger"
)

type App struct {
	cfg        config.Config
	httpServer *http.Server
	syncer     *sync.Syncer
	db         *gorm.DB
	log        logger.Logger
}

func New(log logger.Logger) (*App, error) {
	log.Info("app: loading config")
	cfg := config.Load(log)

	log.Info("app: initializing database")
	dbConn, err := db.NewPostgres(cfg.DB, log)
	if err != nil {
		return nil, err
	}
	if err := db.Migrate(dbConn); err != nil {
		return nil, err
	}

	remote := pgdocstore.NewPostgres(dbConn, cfg.Sync.PollInterval)

	catalogSvc := catalog.NewService(remote)
	eventsSvc := events.NewService(remote, productSource{catalog: catalogSvc})
	catalogSvc.BindEvents(eventsSvc)

	syncer := sync.New(remote, catalogSvc, eventsSvc, log)

	log.Info("app: initializing router")
	handlers := handler.New(catalogSvc, eventsSvc, log)
	router := httpserver.NewRouter(handlers, cfg.AllowedOrigins)

	log.Info("app: initializing http server")
	srv := httpserver.New(cfg, router)

	return &App{
		cfg:        cfg,
		httpServer: srv,
		syncer:     syncer,
		db:         dbConn,
		log:        log,
	}, nil
}

func (a *App) HTTPServer() *http.Server {
	return a.httpServer
}

// StartSync runs the one-time legacy import, seeds the draft from the
// legacy export if present, and keeps the snapshot subscriptions alive
// until ctx is done.
func (a *App) StartSync(ctx context.Context) error {
	if err := a.syncer.MigrateLegacy(ctx, a.cfg.Legacy.Dir); err != nil {
		return err
	}
	a.syncer.RestoreLegacyDraft(a.cfg.Legacy.Dir)

	go a.syncer.Run(ctx)
	return nil
}

func (a *App) Close() error {
	if a.db == nil {
		return nil
	}
	sqlDB, err := a.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// productSource exposes the catalog to the event store without the two
// packages importing each other.
type productSource struct {
	catalog *catalog.Service
}

func (p productSource) Product(id string) (events.ProductInfo, bool) {
	product, ok := p.catalog.ProductByID(id)
	if !ok {
		return events.ProductInfo{}, false
	}
	return events.ProductInfo{
		ID:        product.ID,
		Name:      product.Name,
		CostPrice: product.CostPrice,
		SellPrice: product.SellPrice,
	}, true
}
