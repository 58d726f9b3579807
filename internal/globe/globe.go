package globe

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/san-kum/dotglobe/internal/config"
	"github.com/san-kum/dotglobe/internal/field"
	"github.com/san-kum/dotglobe/internal/metrics"
	"github.com/san-kum/dotglobe/internal/probe"
	"github.com/san-kum/dotglobe/internal/scatter"
	"github.com/san-kum/dotglobe/internal/sphere"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/spatial/r3"
)

// Observer is notified after every step.
type Observer interface {
	OnStep(s metrics.Sample)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(s metrics.Sample)

func (f ObserverFunc) OnStep(s metrics.Sample) { f(s) }

type Option func(*Globe)

func WithLogger(l *zap.Logger) Option {
	return func(g *Globe) {
		if l != nil {
			g.log = l
		}
	}
}

// WithEngine replaces the engine built from the configured worker count.
func WithEngine(e *scatter.Engine) Option {
	return func(g *Globe) { g.engine = e; g.fixedEngine = true }
}

// ErrInvalidSteps is returned by Run for a negative step count.
var ErrInvalidSteps = errors.New("step count must not be negative")

type Globe struct {
	cfg         config.Config
	field       *field.Field
	engine      *scatter.Engine
	fixedEngine bool
	metrics     []metrics.Metric
	observers   []Observer
	log         *zap.Logger
	steps       int
}

// New validates cfg and builds a session at rest.
func New(cfg *config.Config, opts ...Option) (*Globe, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	g := &Globe{
		cfg:       *cfg,
		log:       zap.NewNop(),
		metrics:   make([]metrics.Metric, 0),
		observers: make([]Observer, 0),
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.engine == nil {
		g.engine = engineFor(cfg.Workers)
	}

	g.field = field.New(sphere.Generate(cfg.Count))
	g.log.Debug("built particle set", zap.Int("count", cfg.Count))
	return g, nil
}

func engineFor(workers int) *scatter.Engine {
	if workers > 1 {
		return scatter.NewParallelEngine(workers)
	}
	return scatter.NewEngine()
}

func (g *Globe) AddMetric(m metrics.Metric) { g.metrics = append(g.metrics, m) }
func (g *Globe) AddObserver(o Observer)     { g.observers = append(g.observers, o) }

// Config returns a copy of the configuration in effect.
func (g *Globe) Config() config.Config { return g.cfg }

// Rebuild regenerates rest positions for the configured count and zeroes
// every displacement.
func (g *Globe) Rebuild() { g.rebuild() }

func (g *Globe) rebuild() {
	start := time.Now()
	g.field.Rebuild(sphere.Generate(g.cfg.Count))
	g.log.Debug("rebuilt particle set",
		zap.Int("count", g.cfg.Count),
		zap.Uint64("generation", g.field.Generation()),
		zap.Duration("elapsed", time.Since(start)))
}

// Clear zeroes every displacement without touching rest positions.
func (g *Globe) Clear() {
	g.field.Clear()
	g.log.Debug("cleared scatter", zap.Int("count", g.field.Len()))
}

// Apply validates next and routes it to a rebuild or a live update.
func (g *Globe) Apply(next *config.Config) (config.Change, error) {
	if err := next.Validate(); err != nil {
		g.reject(err)
		return config.NoChange, err
	}

	change := config.Diff(&g.cfg, next)
	workersChanged := g.cfg.Workers != next.Workers
	g.cfg = *next
	if workersChanged && !g.fixedEngine {
		g.engine = engineFor(next.Workers)
	}
	if change == config.Rebuild {
		g.rebuild()
	}
	return change, nil
}

func (g *Globe) reject(err error) {
	g.log.Warn("rejected configuration", zap.Error(err))
}

// SetCount changes the particle count, rebuilding when it differs.
func (g *Globe) SetCount(n int) error {
	next := g.cfg
	next.Count = n
	_, err := g.Apply(&next)
	return err
}

// Step advances the simulation one tick. hover is ignored while scatter
// is disabled; relaxation always runs. It returns the number of particles
// inside the interaction radius.
func (g *Globe) Step(hover *r3.Vec) int {
	if !g.cfg.Scatter.Enabled {
		hover = nil
	}
	engaged := g.engine.Step(g.field, hover, g.params())

	s := metrics.Sample{
		Step:         g.steps,
		Displacement: g.field.Displacement(),
		Engaged:      engaged,
		Hovering:     hover != nil,
	}
	g.steps++
	for _, m := range g.metrics {
		m.Observe(s)
	}
	for _, o := range g.observers {
		o.OnStep(s)
	}
	return engaged
}

func (g *Globe) params() scatter.Params {
	p := scatter.Params{
		Radius:   g.cfg.Scatter.Radius,
		Strength: g.cfg.Scatter.Strength,
		Decay:    g.cfg.Decay,
	}
	if !g.cfg.Scatter.Enabled {
		p.Strength = 0
	}
	return p
}

// Steps is the number of steps taken since the session started.
func (g *Globe) Steps() int { return g.steps }

func (g *Globe) Len() int                { return g.field.Len() }
func (g *Globe) Generation() uint64      { return g.field.Generation() }
func (g *Globe) Positions() []r3.Vec     { return g.field.Positions() }
func (g *Globe) BasePositions() []r3.Vec { return g.field.Base() }
func (g *Globe) Displacements() []r3.Vec { return g.field.Displacement() }
func (g *Globe) Buffers() *field.Buffers { return g.field.Buffers() }

// Displace nudges one particle directly, bypassing the engine.
func (g *Globe) Displace(i int, d r3.Vec) { g.field.Displace(i, d) }

// Snapshot copies current positions into dst.
func (g *Globe) Snapshot(dst []r3.Vec) []r3.Vec { return g.field.Snapshot(dst) }

// Run steps the session headlessly, drawing interaction points from src.
// It stops early, returning ctx.Err(), if ctx is cancelled between steps.
func (g *Globe) Run(ctx context.Context, steps int, src probe.Source) (*Result, error) {
	if steps < 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidSteps, steps)
	}
	if src == nil {
		src = probe.None{}
	}

	for _, m := range g.metrics {
		m.Reset()
	}

	result := &Result{
		Frames:  make([]Frame, 0, steps),
		Metrics: make(map[string]float64),
	}
	var scratch []float64
	start := time.Now()

	for i := 0; i < steps; i++ {
		select {
		case <-ctx.Done():
			result.Elapsed = time.Since(start)
			g.collect(result)
			return result, ctx.Err()
		default:
		}

		var hover *r3.Vec
		if p, ok := src.Next(i); ok {
			hover = &p
		}
		engaged := g.Step(hover)

		var sum metrics.Summary
		sum, scratch = metrics.Summarize(g.field.Displacement(), scratch)
		result.Frames = append(result.Frames, newFrame(g.steps-1, sum, engaged, hover))
	}

	result.Elapsed = time.Since(start)
	g.collect(result)
	g.log.Info("run finished",
		zap.Int("steps", steps),
		zap.Int("count", g.cfg.Count),
		zap.Duration("elapsed", result.Elapsed))
	return result, nil
}

func (g *Globe) collect(r *Result) {
	for _, m := range g.metrics {
		r.Metrics[m.Name()] = m.Value()
	}
}
