package executors

import (
	"github.com/charmbracelet/log"

	"github.com/yurifrl/cardcsv/pkg/config"
	"github.com/yurifrl/cardcsv/pkg/plan"
	"github.com/yurifrl/cardcsv/pkg/service"
)

// Executor runs the jobs of a plan file.
type Executor struct {
	logger    *log.Logger
	config    *config.Config
	processor *service.Processor
}

func New(logger *log.Logger, config *config.Config) *Executor {
	return &Executor{
		logger:    logger,
		config:    config,
		processor: service.NewProcessor(config, logger),
	}
}

func (e *Executor) job(p *plan.Plan, job plan.Job) (service.Job, error) {
	profile, err := p.Profile(job, e.config.Profile)
	if err != nil {
		return service.Job{}, err
	}
	return service.Job{
		Profile: profile,
		Options: p.Options(job, e.config.Options()),
	}, nil
}
