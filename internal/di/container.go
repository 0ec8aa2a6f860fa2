package di

import (
	"go.uber.org/dig"

	"github.com/mikey/llm-priority-scorer/internal/config"
	"github.com/mikey/llm-priority-scorer/internal/core"
	"github.com/mikey/llm-priority-scorer/internal/factory"
	"github.com/mikey/llm-priority-scorer/internal/logging"
	"github.com/mikey/llm-priority-scorer/internal/ports"
	"github.com/mikey/llm-priority-scorer/internal/utils"
)

// BuildContainer creates and configures a dependency injection container
func BuildContainer() (*dig.Container, error) {
	container := dig.New()

	// Register configuration
	if err := container.Provide(config.New); err != nil {
		return nil, err
	}

	// Register logger
	if err := container.Provide(logging.InitLogger); err != nil {
		return nil, err
	}

	// Register factories
	if err := container.Provide(factory.NewLLMFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(factory.NewStoreFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(factory.NewIngestFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(factory.NewTextProcessorFactory); err != nil {
		return nil, err
	}

	// Register text processor
	if err := container.Provide(func(f *factory.TextProcessorFactory) *utils.TextProcessor {
		return f.CreateTextProcessor()
	}); err != nil {
		return nil, err
	}

	// Register language service (nil when provider is "none")
	if err := container.Provide(func(f *factory.LLMFactory) (core.LanguageService, error) {
		return f.CreateLanguageService()
	}); err != nil {
		return nil, err
	}

	// Register priority store
	if err := container.Provide(func(f *factory.StoreFactory) (ports.PriorityStore, error) {
		return f.CreatePriorityStore()
	}); err != nil {
		return nil, err
	}

	// Register the store's individual concerns
	if err := container.Provide(func(s ports.PriorityStore) core.ContactDirectory {
		return s
	}); err != nil {
		return nil, err
	}
	if err := container.Provide(func(s ports.PriorityStore) core.ResponseHistoryStore {
		return s
	}); err != nil {
		return nil, err
	}
	if err := container.Provide(func(s ports.PriorityStore, f *factory.StoreFactory) core.EmailArchive {
		if !f.IsArchiveEnabled() {
			return nil
		}
		return s
	}); err != nil {
		return nil, err
	}

	// Register signal extractors
	if err := container.Provide(core.NewAuthorityScorer); err != nil {
		return nil, err
	}
	if err := container.Provide(core.NewDeadlineScorer); err != nil {
		return nil, err
	}
	if err := container.Provide(core.NewToneScorer); err != nil {
		return nil, err
	}
	if err := container.Provide(core.NewHistoryScorer); err != nil {
		return nil, err
	}
	if err := container.Provide(core.NewCalendarScorer); err != nil {
		return nil, err
	}

	// Register scoring service
	if err := container.Provide(core.NewScoringService); err != nil {
		return nil, err
	}

	// Register email ingest
	if err := container.Provide(func(f *factory.IngestFactory) (ports.EmailIngest, error) {
		return f.CreateEmailIngest()
	}); err != nil {
		return nil, err
	}

	return container, nil
}
