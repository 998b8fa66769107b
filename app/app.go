package app

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strings"

	"ad-aid-platform/app/controller"
	"ad-aid-platform/app/router"
	"ad-aid-platform/config"
	"ad-aid-platform/db"
	"ad-aid-platform/repository"
	"ad-aid-platform/service"
	"ad-aid-platform/storage"
)

// Options tweak Initialize beyond the loaded configuration
type Options struct {
	// Seed inserts the initial template catalogue when the template store is empty
	Seed bool
}

// App is the wired application
type App struct {
	Handler http.Handler

	conn *sql.DB
}

// Close releases the database connection, if any
func (a *App) Close() error {
	if a.conn == nil {
		return nil
	}
	return a.conn.Close()
}

// Initialize initializes the application
func Initialize(ctx context.Context, cfg *config.Config, opts Options) (*App, error) {
	app := &App{}

	// Initialize record stores
	templateRepo, workflowRepo, err := app.openRecordStores(ctx, cfg)
	if err != nil {
		return nil, err
	}

	if opts.Seed {
		if _, err := repository.SeedTemplates(ctx, templateRepo); err != nil {
			app.Close()
			return nil, fmt.Errorf("failed to seed templates: %w", err)
		}
	}

	// Initialize byte store
	store, err := openByteStore(ctx, cfg)
	if err != nil {
		app.Close()
		return nil, err
	}

	// Initialize services
	templateService := service.NewTemplateService(templateRepo)
	workflowService := service.NewWorkflowService(workflowRepo)
	binder := service.NewAssetBinder(templateRepo, store)

	previews := service.NewPreviewService(templateRepo, store, cfg.Cache.Dir)
	if err := previews.EnsureCacheDir(); err != nil {
		log.Printf("⚠️  Warning: Failed to create cache directory: %v", err)
	}

	focalWindow := service.NewFocalWindowService(store, service.NewChromeRasterizer(cfg.ChromePath))

	// Create controllers
	controllers := &router.Controllers{
		Template: controller.NewTemplateController(templateService, binder, previews),
		Workflow: controller.NewWorkflowController(workflowService),
		Utils:    controller.NewUtilsController(focalWindow),
		Static:   controller.NewStaticController(store),
	}

	app.Handler = router.SetupRoutes(controllers, servedPrefix(cfg.Storage.PublicPrefix))
	return app, nil
}

func (a *App) openRecordStores(ctx context.Context, cfg *config.Config) (repository.TemplateRepositoryInterface, repository.WorkflowRepositoryInterface, error) {
	switch cfg.Store.Driver {
	case "memory":
		log.Printf("💾 Using in-memory record store")
		return repository.NewMemoryTemplateRepository(), repository.NewMemoryWorkflowRepository(), nil
	case "postgres":
		conn, err := db.Open(ctx, cfg.DBSettings())
		if err != nil {
			return nil, nil, fmt.Errorf("failed to initialize database: %w", err)
		}
		if err := db.EnsureSchema(ctx, conn); err != nil {
			conn.Close()
			return nil, nil, err
		}
		a.conn = conn
		return repository.NewTemplateRepository(conn), repository.NewWorkflowRepository(conn), nil
	default:
		return nil, nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}

func openByteStore(ctx context.Context, cfg *config.Config) (storage.ByteStore, error) {
	switch cfg.Storage.Driver {
	case "memory":
		log.Printf("💾 Using in-memory byte store")
		return storage.NewMemoryStore(cfg.Storage.PublicPrefix), nil
	case "local":
		store, err := storage.NewLocalStore(cfg.Storage.Root, cfg.Storage.PublicPrefix)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize local storage: %w", err)
		}
		return store, nil
	case "drive":
		store, err := storage.NewDriveStore(ctx, cfg.Storage.DriveFolderID, cfg.Storage.PublicPrefix,
			cfg.GoogleApplicationCredentials, cfg.GoogleApplicationCredentialsJSON)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize Drive storage: %w", err)
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
}

// servedPrefix returns the route the static controller is mounted on, or ""
// when public URLs point at another host.
func servedPrefix(publicPrefix string) string {
	if strings.HasPrefix(publicPrefix, "/") {
		return strings.TrimSuffix(publicPrefix, "/")
	}
	if u, err := url.Parse(publicPrefix); err == nil && u.Host == "" {
		return strings.TrimSuffix(u.Path, "/")
	}
	return ""
}
