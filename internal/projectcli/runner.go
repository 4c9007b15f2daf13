package projectcli

import (
	"context"
	"fmt"
	"io"

	service "github.com/okian/outbreak/internal/app"
	"github.com/okian/outbreak/pkg/logger"
)

// Simulator runs one projection.
type Simulator interface {
	Simulate(ctx context.Context, req service.Request) (service.Calculation, error)
}

// Run executes the projection described by cfg and writes it to out.
func Run(ctx context.Context, cfg *Config, out io.Writer) error {
	log := logger.Named("project")

	var sim Simulator
	if cfg.Remote() {
		log.Debug(ctx, "projecting remotely", logger.String("baseURL", cfg.BaseURL), logger.Duration("timeout", cfg.Timeout))
		sim = NewHTTPClient(cfg.BaseURL, cfg.Timeout)
	} else {
		svc := service.New(service.WithLogger(log), service.WithCacheSize(1))
		if err := svc.Start(ctx); err != nil {
			return fmt.Errorf("start projection service: %w", err)
		}
		defer svc.Stop()
		sim = svc
	}

	calc, err := sim.Simulate(ctx, cfg.Request)
	if err != nil {
		return fmt.Errorf("projection failed: %w", err)
	}
	log.Debug(ctx, "projection done",
		logger.String("calculationID", calc.Metadata.ID),
		logger.Int("weeks", calc.Params.TotalWeeks),
		logger.Float64("reductionPercent", calc.Result.ReductionPercent),
	)
	return Render(out, cfg.Format, cfg.Language, calc)
}
