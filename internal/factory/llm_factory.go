package factory

import (
	"fmt"

	"github.com/mikey/llm-priority-scorer/internal/adapters/bedrock"
	"github.com/mikey/llm-priority-scorer/internal/adapters/gemini"
	"github.com/mikey/llm-priority-scorer/internal/adapters/openai"
	"github.com/mikey/llm-priority-scorer/internal/config"
	"github.com/mikey/llm-priority-scorer/internal/core"
	"github.com/mikey/llm-priority-scorer/internal/utils"
	"go.uber.org/zap"
)

// LLMFactory creates language service clients
type LLMFactory struct {
	cfg           *config.Config
	logger        *zap.Logger
	textProcessor *utils.TextProcessor
}

// NewLLMFactory creates a new LLM factory
func NewLLMFactory(cfg *config.Config, logger *zap.Logger, textProcessor *utils.TextProcessor) *LLMFactory {
	return &LLMFactory{
		cfg:           cfg,
		logger:        logger,
		textProcessor: textProcessor,
	}
}

// CreateLanguageService creates a language service client based on the
// configuration. Provider "none" returns nil: the scorers fall back to
// their keyword heuristics.
func (f *LLMFactory) CreateLanguageService() (core.LanguageService, error) {
	llmConfig := f.cfg.GetLLM()

	switch llmConfig.Provider {
	case "none", "":
		f.logger.Info("No language service configured, using keyword heuristics only")
		return nil, nil
	case "bedrock":
		factory := bedrock.NewFactory(f.cfg, f.logger, f.textProcessor)
		return factory.CreateClient()
	case "gemini":
		factory := gemini.NewFactory(f.cfg, f.logger, f.textProcessor)
		return factory.CreateClient()
	case "openai":
		factory := openai.NewFactory(f.cfg, f.logger, f.textProcessor)
		return factory.CreateClient()
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", llmConfig.Provider)
	}
}
