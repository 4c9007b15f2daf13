// Package service provides the core business service that implements
// the dependencies required by the HTTP API and the CLI.
package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/okian/outbreak/internal/domain/bounds"
	"github.com/okian/outbreak/internal/domain/memo"
	"github.com/okian/outbreak/internal/domain/projection"
	"github.com/okian/outbreak/internal/domain/summary"
	"github.com/okian/outbreak/pkg/logger"
	"github.com/okian/outbreak/pkg/metrics"
)

// Service errors.
var (
	ErrNotStarted = errors.New("service not started")
	// ErrOverflow reports a projection whose numbers exceeded float64.
	ErrOverflow = errors.New("projection overflowed")
)

// Simulation models.
const (
	ModelStrategies = "strategies"
	ModelLockdown   = "lockdown"
)

// Metadata describes one calculation.
type Metadata struct {
	ID          string `json:"calculation_id"`
	Model       string `json:"model"`
	StartedAt   string `json:"started_at"`
	CompletedAt string `json:"completed_at"`
	DurationMs  int64  `json:"duration_ms"`
	Cached      bool   `json:"cached"`
}

// Calculation is the answer to a simulation request.
type Calculation struct {
	Metadata Metadata          `json:"metadata"`
	Params   projection.Params `json:"params"`
	Result   projection.Result `json:"result"`
	Summary  []summary.Panel   `json:"summary"`
}

// Service runs projections for the API and the CLI.
type Service struct {
	mu sync.RWMutex

	// Core components
	cache memo.Cache

	// Configuration
	cacheSize int
	bounds    bounds.Bounds
	catalog   []projection.Strategy
	defaults  Defaults

	// State
	started     bool
	simulations atomic.Int64
	cacheHits   atomic.Int64
	cacheMisses atomic.Int64

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithCacheSize bounds the result cache. Zero or less means unbounded.
func WithCacheSize(size int) Option {
	return func(s *Service) {
		s.cacheSize = size
	}
}

// WithBounds sets the accepted input ranges.
func WithBounds(b bounds.Bounds) Option {
	return func(s *Service) {
		s.bounds = b
	}
}

// WithCatalog replaces the built-in strategy catalog. Nil keeps the built-in one.
func WithCatalog(catalog []projection.Strategy) Option {
	return func(s *Service) {
		if catalog != nil {
			s.catalog = append([]projection.Strategy(nil), catalog...)
		}
	}
}

// WithDefaults sets the values used for omitted request fields.
func WithDefaults(d Defaults) Option {
	return func(s *Service) {
		d.StrategyIDs = append([]string{}, d.StrategyIDs...)
		s.defaults = d
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		cacheSize: 1024,
		bounds:    bounds.Default(),
		defaults:  StandardDefaults(),
		logger:    nil, // Will be replaced when service starts
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start initializes the service components.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	if s.logger == nil {
		s.logger = logger.Get()
	}

	s.cache = memo.NewInMemoryCache(memo.WithMaxSize(s.cacheSize))
	s.started = true

	metrics.UpdateCatalogSize(len(s.strategies()))
	metrics.UpdateCacheSize(0)

	s.logger.Info(ctx, "projection service started",
		logger.Int("cacheSize", s.cacheSize),
		logger.Int("strategies", len(s.strategies())),
		logger.Int("maxWeeks", s.bounds.MaxWeeks),
	)
	return nil
}

// Stop releases the cache. Stopping twice is a no-op.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	s.cache = nil
	s.started = false
	s.logger.Info(context.Background(), "projection service stopped")
}

// Simulate runs a multi-strategy projection.
func (s *Service) Simulate(ctx context.Context, req Request) (Calculation, error) {
	cache, err := s.ready(ctx)
	if err != nil {
		return Calculation{}, err
	}
	p, err := s.resolve(req)
	if err != nil {
		metrics.RecordSimulationError(resolveReason(err))
		return Calculation{}, fmt.Errorf("simulate: %w", err)
	}
	return s.run(ctx, cache, ModelStrategies, p)
}

func resolveReason(err error) string {
	if errors.Is(err, projection.ErrInvalidCatalog) {
		return "invalid_catalog"
	}
	return "unknown_preset"
}

// SimulateLockdown runs a single-factor lockdown projection.
func (s *Service) SimulateLockdown(ctx context.Context, req LockdownRequest) (Calculation, error) {
	cache, err := s.ready(ctx)
	if err != nil {
		return Calculation{}, err
	}
	return s.run(ctx, cache, ModelLockdown, s.resolveLockdown(req))
}

// Strategies lists the active catalog.
func (s *Service) Strategies(_ context.Context) []projection.Strategy {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.strategies()
}

// Presets lists the built-in presets.
func (s *Service) Presets(_ context.Context) []projection.Preset {
	return projection.Presets()
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]interface{}{
		"started":     s.started,
		"cacheLimit":  s.cacheSize,
		"strategies":  len(s.strategies()),
		"simulations": s.simulations.Load(),
		"cacheHits":   s.cacheHits.Load(),
		"cacheMisses": s.cacheMisses.Load(),
	}
	if s.started {
		size := s.cache.Size()
		stats["cacheEntries"] = size
		metrics.UpdateCacheSize(size)
	}
	return stats
}

// strategies must be called with s.mu held.
func (s *Service) strategies() []projection.Strategy {
	if s.catalog == nil {
		return projection.DefaultCatalog()
	}
	return append([]projection.Strategy(nil), s.catalog...)
}

// ready returns the cache of a started service.
func (s *Service) ready(ctx context.Context) (memo.Cache, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return nil, ErrNotStarted
	}
	return s.cache, nil
}

// resolve fills omitted fields from the defaults. A preset replaces the
// strategy selection. A request catalog must pass ValidateCatalog.
func (s *Service) resolve(req Request) (projection.Params, error) {
	if err := projection.ValidateCatalog(req.Catalog); err != nil {
		return projection.Params{}, err
	}
	d := s.defaults
	p := projection.Params{
		InitialCases: orFloat(req.InitialCases, d.Cases),
		TotalWeeks:   orInt(req.TotalWeeks, d.Weeks),
		InitialRate:  orFloat(req.InitialRate, d.Rate),
		Catalog:      s.catalog,
	}
	if req.Catalog != nil {
		p.Catalog = req.Catalog
	}

	m := projection.MitigationConfig{
		Enabled:         d.MitigationEnabled,
		StartWeek:       d.StartWeek,
		TransitionWeeks: d.TransitionWeeks,
		StrategyIDs:     d.StrategyIDs,
	}
	if mr := req.Mitigation; mr != nil {
		m.Enabled = orBool(mr.Enabled, m.Enabled)
		m.StartWeek = orInt(mr.StartWeek, m.StartWeek)
		m.TransitionWeeks = orInt(mr.TransitionWeeks, m.TransitionWeeks)
		if mr.StrategyIDs != nil {
			m.StrategyIDs = mr.StrategyIDs
		}
	}
	if req.Preset != "" {
		preset, err := projection.PresetByID(req.Preset)
		if err != nil {
			return projection.Params{}, err
		}
		m.StrategyIDs = preset.StrategyIDs
	}
	p.Mitigation = &m
	return p, nil
}

// resolveLockdown fills omitted fields and keeps the final rate between the
// minimum rate and the initial rate.
func (s *Service) resolveLockdown(req LockdownRequest) projection.Params {
	d := s.defaults
	cases := orFloat(req.InitialCases, d.Cases)
	weeks := bounds.ClampInt(orInt(req.TotalWeeks, d.Weeks), s.bounds.MinWeeks, s.bounds.MaxWeeks)
	rate := bounds.Clamp(orFloat(req.InitialRate, d.Rate), s.bounds.MinRate, s.bounds.MaxRate)

	l := projection.LockdownConfig{
		Enabled:         d.MitigationEnabled,
		StartWeek:       d.StartWeek,
		FinalRate:       d.LockdownFinalRate,
		TransitionWeeks: d.TransitionWeeks,
	}
	if lr := req.Lockdown; lr != nil {
		l.Enabled = orBool(lr.Enabled, l.Enabled)
		l.StartWeek = orInt(lr.StartWeek, l.StartWeek)
		l.FinalRate = orFloat(lr.FinalRate, l.FinalRate)
		l.TransitionWeeks = orInt(lr.TransitionWeeks, l.TransitionWeeks)
	}
	l.FinalRate = bounds.Clamp(l.FinalRate, s.bounds.MinRate, rate)
	return projection.LockdownParams(cases, weeks, rate, l)
}

// run answers p from the cache or the engine. Non-finite results are neither
// cached nor returned.
func (s *Service) run(ctx context.Context, cache memo.Cache, model string, p projection.Params) (Calculation, error) {
	started := time.Now()
	p = s.bounds.Apply(p)
	key := model + "#" + memo.Key(p)

	res, cached := cache.Get(ctx, key)
	if cached {
		s.cacheHits.Add(1)
		metrics.RecordCacheHit()
	} else {
		s.cacheMisses.Add(1)
		metrics.RecordCacheMiss()
		res = projection.Simulate(p)
		if !res.Finite() {
			metrics.RecordSimulationError("overflow")
			s.logger.Warn(ctx, "projection overflowed",
				logger.String("model", model),
				logger.Float64("initialCases", p.InitialCases),
				logger.Int("weeks", p.TotalWeeks),
				logger.Float64("rate", p.InitialRate),
			)
			return Calculation{}, fmt.Errorf("simulate %s: %w", model, ErrOverflow)
		}
		cache.Put(ctx, key, res)
		metrics.UpdateCacheSize(cache.Size())
	}
	s.simulations.Add(1)
	completed := time.Now()
	elapsed := completed.Sub(started)

	s.recordOutcome(model, p, res, elapsed)

	calc := Calculation{
		Metadata: Metadata{
			ID:          uuid.NewString(),
			Model:       model,
			StartedAt:   started.UTC().Format(time.RFC3339),
			CompletedAt: completed.UTC().Format(time.RFC3339),
			DurationMs:  elapsed.Milliseconds(),
			Cached:      cached,
		},
		Params:  p,
		Result:  res,
		Summary: summary.Build(res),
	}

	s.logger.Debug(ctx, "simulation completed",
		logger.String("calculationID", calc.Metadata.ID),
		logger.String("model", model),
		logger.Int("weeks", p.TotalWeeks),
		logger.Float64("reductionPercent", res.ReductionPercent),
		logger.Bool("cached", cached),
		logger.Duration("elapsed", elapsed),
	)
	return calc, nil
}

func (s *Service) recordOutcome(model string, p projection.Params, res projection.Result, elapsed time.Duration) {
	metrics.RecordSimulation(model, p.TotalWeeks, float64(elapsed.Microseconds())/1000)

	m := p.Mitigation
	if m == nil || !m.Enabled || len(m.StrategyIDs) == 0 {
		metrics.RecordUnmitigated()
		return
	}
	metrics.RecordReduction(res.ReductionPercent)
	if model != ModelStrategies {
		return
	}
	// Only ids of the service catalog become label values.
	seen := make(map[string]struct{}, len(m.StrategyIDs))
	for _, id := range m.StrategyIDs {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		_, known := projection.Find(s.catalog, id)
		metrics.RecordStrategySelected(id, known)
	}
}
