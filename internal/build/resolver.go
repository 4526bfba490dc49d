// Package build resolves every declared kernel for the target of a build.
package build

import (
	"context"
	"time"

	"github.com/fxnlabs/launchbox/internal/metrics"
	"github.com/fxnlabs/launchbox/pkg/launch"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Resolution is the outcome of resolving one kernel.
type Resolution struct {
	Kernel string        `json:"kernel"`
	Source string        `json:"source,omitempty"`
	Active launch.Target `json:"active"`
	Record launch.Record `json:"record"`
}

// Fallback reports whether the kernel had no record for the active target
// and resolved to its fallback record.
func (r Resolution) Fallback() bool {
	return r.Record.IsFallback() && r.Active != launch.Fallback
}

// Resolver resolves boxes concurrently. Boxes share nothing, so the only
// coordination is collecting results in declaration order.
type Resolver struct {
	log     *zap.Logger
	metrics *metrics.Metrics
	workers int
}

// NewResolver returns a Resolver running at most workers resolutions at a
// time. m may be nil.
func NewResolver(log *zap.Logger, m *metrics.Metrics, workers int) *Resolver {
	if log == nil {
		log = zap.NewNop()
	}
	if workers < 1 {
		workers = 1
	}
	return &Resolver{
		log:     log.Named("build"),
		metrics: m,
		workers: workers,
	}
}

// ResolveAll resolves every box for active. Results keep the order of
// boxes. When any kernel cannot be resolved no results are returned and the
// error combines every *launch.ResolutionError found.
func (r *Resolver) ResolveAll(ctx context.Context, boxes []*launch.Box, active launch.Target) ([]Resolution, error) {
	start := time.Now()
	if !active.Known() {
		r.log.Warn("resolving for an unnamed architecture", zap.Stringer("target", active))
	}

	results := make([]Resolution, len(boxes))
	errs := make([]error, len(boxes))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)
	for i, box := range boxes {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			record, err := box.Resolve(active)
			if err != nil {
				errs[i] = err
				r.observe(active, metrics.OutcomeFailed)
				return nil
			}

			res := Resolution{Kernel: box.Kernel(), Source: box.Source(), Active: active, Record: record}
			results[i] = res
			if res.Fallback() {
				r.observe(active, metrics.OutcomeFallback)
				r.log.Debug("kernel resolved to fallback", zap.String("kernel", res.Kernel), zap.Stringer("params", record.Params))
			} else {
				r.observe(active, metrics.OutcomeExact)
				r.log.Debug("kernel resolved", zap.String("kernel", res.Kernel), zap.Stringer("params", record.Params))
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if r.metrics != nil {
		r.metrics.Kernels.Set(float64(len(boxes)))
		r.metrics.ResolveDuration.Observe(time.Since(start).Seconds())
	}

	if err := multierr.Combine(errs...); err != nil {
		r.log.Debug("resolution failed", zap.Int("failures", len(multierr.Errors(err))), zap.Int("kernels", len(boxes)))
		return nil, err
	}

	r.log.Info("resolved kernels", zap.Stringer("target", active), zap.Int("kernels", len(results)))
	return results, nil
}

func (r *Resolver) observe(active launch.Target, outcome string) {
	if r.metrics == nil {
		return
	}
	r.metrics.Resolutions.WithLabelValues(active.String(), outcome).Inc()
}
