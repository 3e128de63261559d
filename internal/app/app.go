// Package app wires storage, services and transports into a runnable page
// builder.
package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"pagebuilder/internal/catalog"
	"pagebuilder/internal/config"
	"pagebuilder/internal/curation"
	"pagebuilder/internal/generate"
	mcpserver "pagebuilder/internal/mcp"
	"pagebuilder/internal/render"
	"pagebuilder/internal/secret"
	"pagebuilder/internal/service"
	"pagebuilder/internal/storage"
)

// App owns the database and every service built on it.
type App struct {
	cfg    *config.Config
	logger *zap.Logger
	db     *storage.DB

	Pages      *service.PageService
	Layouts    *service.LayoutService
	Library    *service.LibraryService
	Categories *service.CategoryService
	Grounding  *service.GroundingService // nil without configured connections
	Catalog    *service.CatalogService
	Generator  *generate.Adapter // nil without an API key
	Renderer   *render.Renderer
}

// New opens the database under cfg.DataDir and builds the services.
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	db, err := storage.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	a := &App{cfg: cfg, logger: logger, db: db}
	if err := a.wire(ctx); err != nil {
		db.Close()
		return nil, err
	}
	logger.Info("app ready",
		zap.String("db", cfg.DBPath),
		zap.Bool("generation", a.Generator != nil),
		zap.Int("connections", len(cfg.Connections)),
		zap.Int("jobs", len(cfg.Jobs)),
	)
	return a, nil
}

func (a *App) wire(ctx context.Context) error {
	pageStore := storage.NewPageStore(a.db)
	layoutStore := storage.NewLayoutStore(a.db)
	products := storage.NewProductStore(a.db)
	emitter := service.LogEmitter{Logger: a.logger.Named("events")}

	if a.cfg.GenAI.APIKey != "" {
		provider, err := generate.NewGenAIProvider(ctx, generate.GenAIConfig{
			APIKey: a.cfg.GenAI.APIKey,
			Model:  a.cfg.GenAI.Model,
		})
		if err != nil {
			return err
		}
		a.Generator = generate.NewAdapter(provider, a.logger.Named("generate"))
	}

	a.Pages = service.NewPageService(pageStore, layoutStore, a.Generator, emitter, a.logger)
	a.Layouts = service.NewLayoutService(layoutStore, pageStore, emitter, a.logger)
	a.Library = service.NewLibraryService(storage.NewSavedBlockStore(a.db), a.Pages)
	a.Categories = service.NewCategoryService(storage.NewCategoryStore(a.db), products, a.logger)
	a.Categories.SetMessages(curationMessages(a.cfg.Messages))
	a.Renderer = render.New(products,
		render.WithMessages(renderMessages(a.cfg.Messages)),
		render.WithLogger(a.logger.Named("render")),
	)

	var rows catalog.RowsProvider
	if len(a.cfg.Connections) > 0 {
		secrets, err := secretStore(a.cfg)
		if err != nil {
			return err
		}
		a.Grounding = service.NewGroundingService(a.cfg.Connections, secrets, a.logger)
		rows = a.Grounding
	}

	engine := &catalog.Engine{Sources: catalog.NewRegistry(rows), Products: products}
	catalogSvc, err := service.NewCatalogService(engine, storage.NewImportRunStore(a.db), a.cfg.Jobs, emitter, a.logger.Named("catalog"))
	if err != nil {
		return err
	}
	a.Catalog = catalogSvc
	return nil
}

// MCP builds the tool server over the app's services.
func (a *App) MCP(version string) *mcpserver.Server {
	return mcpserver.New(mcpserver.Deps{
		Logger:     a.logger.Named("mcp"),
		Pages:      a.Pages,
		Layouts:    a.Layouts,
		Library:    a.Library,
		Categories: a.Categories,
		Grounding:  a.Grounding,
		Catalog:    a.Catalog,
		Renderer:   a.Renderer,
	}, version)
}

// Close stops background work and releases connections.
func (a *App) Close() error {
	a.Catalog.Stop()
	if a.Grounding != nil {
		a.Grounding.Close()
	}
	return a.db.Close()
}

func secretStore(cfg *config.Config) (secret.SecretStore, error) {
	switch cfg.SecretBackend {
	case config.SecretsKeychain:
		return secret.NewKeychainStore(), nil
	case config.SecretsEnv:
		return secret.NewEnvStore(cfg.SecretPrefix), nil
	case config.SecretsMemory:
		return secret.NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown secret backend %q", cfg.SecretBackend)
	}
}

func renderMessages(m config.Messages) render.Messages {
	out := render.DefaultMessages
	if m.NoProducts != "" {
		out.NoProducts = m.NoProducts
	}
	if m.ProductsUnavailable != "" {
		out.ProductsUnavailable = m.ProductsUnavailable
	}
	if m.FlashSale != "" {
		out.FlashSale = m.FlashSale
	}
	return out
}

func curationMessages(m config.Messages) curation.Messages {
	out := curation.DefaultMessages
	if m.EmptyCategoryTitle != "" {
		out.EmptyTitle = m.EmptyCategoryTitle
	}
	if m.EmptyCategoryBody != "" {
		out.EmptyBody = m.EmptyCategoryBody
	}
	return out
}
