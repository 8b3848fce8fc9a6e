package app

import (
	"context"
	"io"

	"github.com/doeshing/widgera/internal/application/attachment"
	"github.com/doeshing/widgera/internal/application/auth"
	"github.com/doeshing/widgera/internal/application/doctor"
	"github.com/doeshing/widgera/internal/application/history"
	"github.com/doeshing/widgera/internal/application/schema"
	"github.com/doeshing/widgera/internal/application/submission"
	"github.com/doeshing/widgera/internal/domain"
	"github.com/doeshing/widgera/internal/infrastructure/api"
	"github.com/doeshing/widgera/internal/infrastructure/config"
	"github.com/doeshing/widgera/internal/infrastructure/journal"
	"github.com/doeshing/widgera/internal/infrastructure/session"
	"github.com/doeshing/widgera/internal/pkg/logger"
	"github.com/doeshing/widgera/internal/ports"
)

// Container wires up application services with infrastructure adapters.
type Container struct {
	Config         domain.Config
	ConfigProvider ports.ConfigProvider
	ConfigLoader   *config.FileLoader
	Logger         ports.Logger
	Sessions       *session.FileStore
	Client         *api.Client
	AuthService    *auth.Service
	HistoryStore   *history.Store
	Journal        ports.Journal
	DoctorService  *doctor.Service
}

// BuildContainer constructs the dependency graph.
func BuildContainer(ctx context.Context, verbose bool) (*Container, error) {
	cfgLoader := config.NewFileLoader("")
	cfg, err := cfgLoader.Load(ctx)
	if err != nil {
		return nil, err
	}

	log := logger.NewStd(verbose)

	sessions, err := session.Open(cfg.Session.Path)
	if err != nil {
		return nil, err
	}

	client := api.NewClient(cfg.API.BaseURL, cfg.Timeout(), sessions, log)

	historyStore, err := history.NewStore(client, log,
		history.WithLimit(cfg.HistoryLimit()),
		history.WithCacheSize(cfg.History.CacheSize),
	)
	if err != nil {
		return nil, err
	}

	var journalStore ports.Journal
	if cfg.Journal.Enabled {
		store := journal.NewSQLiteStore(cfg.Journal.Path, cfg.Journal.RetentionDays)
		if store.Degraded() {
			log.Warn("journal database unavailable, using jsonl fallback", map[string]interface{}{"path": store.Path()})
		}
		journalStore = store
	}

	return &Container{
		Config:         cfg,
		ConfigProvider: cfgLoader,
		ConfigLoader:   cfgLoader,
		Logger:         log,
		Sessions:       sessions,
		Client:         client,
		AuthService:    auth.NewService(client, sessions, log),
		HistoryStore:   historyStore,
		Journal:        journalStore,
		DoctorService: &doctor.Service{
			ConfigProvider: cfgLoader,
			Sessions:       sessions,
			Journal:        journalStore,
			API:            client,
		},
	}, nil
}

// NewSubmission returns a fresh submission form: an editor seeded with
// fields (or the default schema), an empty attachment and a controller
// recording to the journal when one is enabled.
func (c *Container) NewSubmission(fields ...domain.FieldDefinition) *submission.Controller {
	var opts []submission.Option
	if c.Journal != nil {
		opts = append(opts, submission.WithJournal(c.Journal))
	}
	return submission.NewController(
		c.Client,
		schema.NewEditor(fields...),
		attachment.New(c.Client, c.Logger, attachment.WithCatalog(c.Client)),
		c.Logger,
		opts...,
	)
}

// Close releases resources held by adapters.
func (c *Container) Close() error {
	if closer, ok := c.Journal.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}
