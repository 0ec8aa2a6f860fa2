package factory

import (
	"fmt"

	"github.com/mikey/llm-priority-scorer/internal/adapters/ingest"
	"github.com/mikey/llm-priority-scorer/internal/config"
	"github.com/mikey/llm-priority-scorer/internal/core"
	"github.com/mikey/llm-priority-scorer/internal/ports"
	"go.uber.org/zap"
)

// IngestFactory creates email ingestion front-ends based on configuration
type IngestFactory struct {
	cfg     *config.Config
	logger  *zap.Logger
	service *core.ScoringService
}

// NewIngestFactory creates a new ingest factory
func NewIngestFactory(cfg *config.Config, logger *zap.Logger, service *core.ScoringService) *IngestFactory {
	return &IngestFactory{
		cfg:     cfg,
		logger:  logger,
		service: service,
	}
}

// CreateEmailIngest creates an email ingestion front-end based on the configuration
func (f *IngestFactory) CreateEmailIngest() (ports.EmailIngest, error) {
	ingestType := f.cfg.GetString("server.ingest_type")

	switch ingestType {
	case "smtp":
		serverCfg := f.cfg.GetServer()
		return ingest.NewSMTPIngest(
			f.service,
			f.logger,
			serverCfg.ListenAddress,
			serverCfg.ScoreHeader,
			serverCfg.LevelHeader,
			serverCfg.ReasonHeader,
			serverCfg.RelayAddress,
			serverCfg.RelayPort,
			serverCfg.RelayEnabled,
			serverCfg.CriticalSubjectPrefix,
			serverCfg.TagCriticalSubject,
		), nil
	case "cli":
		return ingest.NewCliIngest(
			f.service,
			f.logger,
			f.cfg.GetBool("cli.verbose"),
		)
	default:
		return nil, fmt.Errorf("unsupported ingest type: %s", ingestType)
	}
}
