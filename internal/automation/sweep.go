package automation

import (
	"context"
	"fmt"
	"runtime"

	"github.com/san-kum/dotglobe/internal/config"
	"github.com/san-kum/dotglobe/internal/globe"
	"github.com/san-kum/dotglobe/internal/probe"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/spatial/r3"
)

// SweepParams lists the parameters a sweep can vary.
var SweepParams = []string{"radius", "strength", "decay"}

// ParameterSweep holds a fixed cursor over the globe for Hover steps, lifts
// it, and counts how long the field takes to settle, once per parameter
// value.
type ParameterSweep struct {
	Base      *config.Config
	ParamName string
	ParamMin  float64
	ParamMax  float64
	NumSteps  int
	Hover     int
	Settle    int
	Threshold float64

	// Concurrency bounds parallel runs; zero means one per CPU.
	Concurrency int
}

// SweepResult holds results from a parameter sweep
type SweepResult struct {
	ParamValue  float64
	Peak        float64
	Engaged     int
	SettleSteps int
	Settled     bool
}

// RunSweep executes a parameter sweep. Each value runs on its own globe,
// up to Concurrency at a time; results keep the order of the values.
func RunSweep(ctx context.Context, sweep *ParameterSweep, opts ...globe.Option) ([]SweepResult, error) {
	if sweep.NumSteps < 1 {
		return nil, fmt.Errorf("sweep needs at least one value")
	}
	if sweep.Hover < 1 || sweep.Settle < 1 {
		return nil, fmt.Errorf("hover and settle steps must be positive")
	}
	base := sweep.Base
	if base == nil {
		base = config.DefaultConfig()
	}

	paramStep := 0.0
	if sweep.NumSteps > 1 {
		paramStep = (sweep.ParamMax - sweep.ParamMin) / float64(sweep.NumSteps-1)
	}

	// build every globe up front so bad values fail before any work starts
	globes := make([]*globe.Globe, sweep.NumSteps)
	for i := range globes {
		paramVal := sweep.ParamMin + float64(i)*paramStep
		cfg := *base
		if err := setParam(&cfg, sweep.ParamName, paramVal); err != nil {
			return nil, err
		}
		g, err := globe.New(&cfg, opts...)
		if err != nil {
			return nil, fmt.Errorf("%s=%g: %w", sweep.ParamName, paramVal, err)
		}
		globes[i] = g
	}

	limit := sweep.Concurrency
	if limit < 1 {
		limit = runtime.NumCPU()
	}
	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(limit)

	results := make([]SweepResult, sweep.NumSteps)
	for i, g := range globes {
		eg.Go(func() error {
			res, err := measure(egCtx, g, sweep)
			if err != nil {
				return err
			}
			res.ParamValue = sweep.ParamMin + float64(i)*paramStep
			results[i] = res
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	return results, nil
}

// measure holds the cursor, lifts it, and waits for rest.
func measure(ctx context.Context, g *globe.Globe, sweep *ParameterSweep) (SweepResult, error) {
	var res SweepResult

	hovered, err := g.Run(ctx, sweep.Hover, probe.Fixed{Point: r3.Vec{X: 1}})
	if err != nil {
		return res, err
	}
	for _, f := range hovered.Frames {
		res.Peak = max(res.Peak, f.Max)
		res.Engaged = max(res.Engaged, f.Engaged)
	}

	settled, err := g.Run(ctx, sweep.Settle, probe.None{})
	if err != nil {
		return res, err
	}
	res.SettleSteps = len(settled.Frames)
	for j, f := range settled.Frames {
		if f.Max < sweep.Threshold {
			res.SettleSteps, res.Settled = j+1, true
			break
		}
	}
	return res, nil
}

func setParam(cfg *config.Config, name string, v float64) error {
	switch name {
	case "radius":
		cfg.Scatter.Radius = v
	case "strength":
		cfg.Scatter.Strength = v
	case "decay":
		cfg.Decay = v
	default:
		return fmt.Errorf("unknown sweep parameter: %s (available: %v)", name, SweepParams)
	}
	return nil
}
