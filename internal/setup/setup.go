package setup

import (
	"context"
	"fmt"
	"html/template"
	"os"
	"path"
	"path/filepath"
	"sync"
	"time"

	"github.com/stegportal/portal/internal/apiclient"
	"github.com/stegportal/portal/internal/config"
	"github.com/stegportal/portal/internal/handler"
	"github.com/stegportal/portal/internal/logger"
	"github.com/stegportal/portal/internal/markdown"
	"github.com/stegportal/portal/internal/middleware/ratelimiter"
	"github.com/stegportal/portal/internal/registration"
	"github.com/stegportal/portal/internal/session"
	"github.com/stegportal/portal/internal/storage/pg"
	"github.com/stegportal/portal/internal/validation"
)

const (
	baseTemplate           = "base.html"
	partialsTemplate       = "partials.html"
	templateReloadInterval = 5 * time.Second
	janitorInterval        = time.Minute
)

type Dependencies struct {
	Handler     *handler.Handler
	Public      config.Public
	Forms       *registration.Registry
	FormLimiter *ratelimiter.KeyedLimiter
	Storage     *pg.Storage // nil unless session.driver is postgres
	CancelFunc  context.CancelFunc

	background sync.WaitGroup
}

func SetupDependencies(cfg *config.Config) (*Dependencies, error) {
	ctx, cancel := context.WithCancel(context.Background())

	sessions, store, err := newSessionStore(ctx, cfg)
	if err != nil {
		cancel()
		return nil, err
	}

	templates, err := loadTemplates(cfg.Public.TemplatesPath)
	if err != nil {
		cancel()
		cleanupStorage(store)
		return nil, err
	}

	textProcessor := markdown.New()
	pages, err := textProcessor.LoadPages(cfg.Public.ContentPath)
	if err != nil {
		cancel()
		cleanupStorage(store)
		return nil, fmt.Errorf("loading pages: %w", err)
	}

	apiClient := apiclient.New(cfg.Public.APIBaseURL, cfg.Public.SignupTimeout)
	validator := validation.New()
	forms := registration.NewRegistry(func(visitorID string) *registration.Controller {
		return registration.NewController(apiClient, session.Scoped(sessions, visitorID), validator)
	}, cfg.Public.FormIdleTTL)

	h := handler.New(templates, cfg.Public, textProcessor, forms, sessions, pages)

	deps := &Dependencies{
		Handler:     h,
		Public:      cfg.Public,
		Forms:       forms,
		FormLimiter: ratelimiter.FormSubmissions(),
		Storage:     store,
		CancelFunc:  cancel,
	}

	janitorDone := forms.StartJanitor(ctx, janitorInterval)
	deps.background.Add(1)
	go func() {
		defer deps.background.Done()
		<-janitorDone
	}()
	deps.startLimiterPruner(ctx)
	deps.startTemplateReloader(ctx, cfg.Public.TemplatesPath)

	return deps, nil
}

// Close stops background work and releases storage.
func (d *Dependencies) Close() {
	d.CancelFunc()
	d.background.Wait()
	cleanupStorage(d.Storage)
}

func newSessionStore(ctx context.Context, cfg *config.Config) (session.Store, *pg.Storage, error) {
	var (
		sessions session.Store
		store    *pg.Storage
	)
	switch cfg.SessionDriver() {
	case config.SessionDriverPostgres:
		var err error
		store, err = pg.New(ctx, cfg.Private.Pg)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to initialize storage: %w", err)
		}
		sessions = store
	default:
		sessions = session.NewMemory()
	}

	if cfg.Private.SessionKey == "" {
		return sessions, store, nil
	}
	sealed, err := session.NewSealed(sessions, cfg.Private.SessionKey)
	if err != nil {
		cleanupStorage(store)
		return nil, nil, fmt.Errorf("session key: %w", err)
	}
	return sealed, store, nil
}

func cleanupStorage(store *pg.Storage) {
	if store == nil {
		return
	}
	if err := store.Cleanup(); err != nil {
		logger.Log.Error("closing storage", "error", err)
	}
}

func (d *Dependencies) startLimiterPruner(ctx context.Context) {
	d.background.Add(1)
	go func() {
		defer d.background.Done()
		ticker := time.NewTicker(janitorInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				d.FormLimiter.Prune()
			}
		}
	}()
}

func (d *Dependencies) startTemplateReloader(ctx context.Context, tmplPath string) {
	if os.Getenv("ENV") != "development" {
		return
	}
	d.background.Add(1)
	go func() {
		defer d.background.Done()
		ticker := time.NewTicker(templateReloadInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				templates, err := loadTemplates(tmplPath)
				if err != nil {
					logger.Log.Error("reloading templates", "error", err)
					continue
				}
				d.Handler.SetTemplates(templates)
			}
		}
	}()
}

// loadTemplates parses every page template together with the base layout and
// the partials. Templates are keyed by file name.
func loadTemplates(tmplPath string) (map[string]*template.Template, error) {
	files, err := os.ReadDir(tmplPath)
	if err != nil {
		return nil, fmt.Errorf("reading templates: %w", err)
	}

	templates := make(map[string]*template.Template)
	for _, f := range files {
		if filepath.Ext(f.Name()) != ".html" || f.Name() == baseTemplate || f.Name() == partialsTemplate {
			continue
		}
		tmpl, err := template.New(baseTemplate).ParseFiles(
			path.Join(tmplPath, baseTemplate),
			path.Join(tmplPath, f.Name()),
			path.Join(tmplPath, partialsTemplate),
		)
		if err != nil {
			return nil, fmt.Errorf("parsing %s: %w", f.Name(), err)
		}
		templates[f.Name()] = tmpl
	}
	return templates, nil
}
