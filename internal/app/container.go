// Package app assembles the dependency graph: configuration, adapters and
// application services.
package app

import (
	"context"

	"shopmate/internal/domain"
	"shopmate/internal/infrastructure/ai"
	"shopmate/internal/infrastructure/config"
	"shopmate/internal/infrastructure/connectivity"
	"shopmate/internal/infrastructure/conversation"
	"shopmate/internal/infrastructure/extract"
	"shopmate/internal/infrastructure/fetch"
	"shopmate/internal/infrastructure/httpserver"
	"shopmate/internal/pkg/logger"
	"shopmate/internal/pkg/retry"
	"shopmate/internal/ports"
	"shopmate/internal/services"
)

// Container wires up application services with infrastructure adapters.
type Container struct {
	Config       domain.Config
	ConfigLoader *config.FileLoader
	Logger       *logger.ZapLogger
	Store        *services.ConversationStore
	Chat         *services.ChatService
	Server       *httpserver.Server
}

// BuildContainer constructs the dependency graph.
func BuildContainer(ctx context.Context) (*Container, error) {
	cfgLoader := config.NewFileLoader("")
	cfg, err := cfgLoader.Load(ctx)
	if err != nil {
		return nil, err
	}

	log := logger.New(cfg.Logging.Level, cfg.Logging.Pretty)

	repo := conversationRepo(cfg.Conversation)
	store := services.NewConversationStore(repo, cfg.Conversation.Session, log, nil)

	extractor := extract.New(nil)
	allowlist := fetch.NewAllowlist(cfg.Allowlist)
	fetcher := fetch.NewFetcher(cfg.Fetch, allowlist, extractor, log)
	products := fetch.NewAmazonClient(fetcher, log, "", nil)

	policy := retry.Config{
		MaxAttempts: cfg.Fetch.MaxAttempts,
		BaseDelay:   cfg.Fetch.BaseDelay(),
	}
	providers := ai.NewFactory(cfg.Provider, policy, retry.SleepWithContext, log)

	chat := &services.ChatService{
		Store:        store,
		Fetcher:      fetcher,
		Products:     products,
		Providers:    providers,
		Connectivity: connectivity.NewDialChecker("", 0),
		Provider:     cfg.Provider,
		Search:       cfg.Search,
		Logger:       log,
	}

	server := httpserver.New(cfg.Server.Addr, chat, store, log)

	return &Container{
		Config:       cfg,
		ConfigLoader: cfgLoader,
		Logger:       log,
		Store:        store,
		Chat:         chat,
		Server:       server,
	}, nil
}

func conversationRepo(cfg domain.ConversationSettings) ports.ConversationRepository {
	if cfg.Backend == "sqlite" {
		return conversation.NewSQLiteStore("")
	}
	return conversation.NewFileStore("")
}
