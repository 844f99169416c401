package hostenv

import (
	"context"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/3leaps/assetrank/pkg/resolve"
)

// Phase tells whether a Provider has resolved its runtime context yet.
type Phase int

const (
	PhasePending Phase = iota
	PhaseResolved
)

func (p Phase) String() string {
	if p == PhaseResolved {
		return "resolved"
	}
	return "pending"
}

// Provider resolves the runtime context once and caches it for the lifetime
// of the process. Re-resolving only happens through Refresh.
//
// A failed or unrecognized host query resolves to resolve.UnknownContext and
// is cached. When the caller's context ends first, that call gets
// resolve.UnknownContext and the provider keeps its previous state.
type Provider struct {
	query  Query
	logger *zap.Logger
	group  singleflight.Group

	mu       sync.RWMutex
	current  resolve.RuntimeContext
	resolved bool
}

// NewProvider returns a provider backed by q. A nil logger disables logging.
func NewProvider(q Query, logger *zap.Logger) *Provider {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Provider{query: q, logger: logger, current: resolve.UnknownContext}
}

// Current returns the cached context and whether it has been resolved. While
// pending the context is resolve.UnknownContext and must not be taken as the
// host's answer.
func (p *Provider) Current() (resolve.RuntimeContext, Phase) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if !p.resolved {
		return resolve.UnknownContext, PhasePending
	}
	return p.current, PhaseResolved
}

// Resolve returns the cached context, querying the host on first use.
// Concurrent first callers share a single query, run with the first caller's
// context.
func (p *Provider) Resolve(ctx context.Context) resolve.RuntimeContext {
	if rc, phase := p.Current(); phase == PhaseResolved {
		return rc
	}
	return p.do(ctx, "resolve", false)
}

// Refresh queries the host again and replaces the cached context.
func (p *Provider) Refresh(ctx context.Context) resolve.RuntimeContext {
	return p.do(ctx, "refresh", true)
}

// Start resolves in the background. The returned channel receives the context
// once and is then closed.
func (p *Provider) Start(ctx context.Context) <-chan resolve.RuntimeContext {
	out := make(chan resolve.RuntimeContext, 1)
	go func() {
		defer close(out)
		out <- p.Resolve(ctx)
	}()
	return out
}

func (p *Provider) do(ctx context.Context, key string, force bool) resolve.RuntimeContext {
	v, _, _ := p.group.Do(key, func() (any, error) {
		if !force {
			if rc, phase := p.Current(); phase == PhaseResolved {
				return rc, nil
			}
		}
		rc, final := p.run(ctx)
		if !final {
			return rc, nil
		}
		p.mu.Lock()
		p.current = rc
		p.resolved = true
		p.mu.Unlock()
		return rc, nil
	})
	return v.(resolve.RuntimeContext)
}

type queryResult struct {
	report Report
	err    error
}

// run queries the host. final is false when the caller's context ended first;
// that answer is returned but not cached.
func (p *Provider) run(ctx context.Context) (rc resolve.RuntimeContext, final bool) {
	if p.query == nil {
		p.logger.Warn("no host query configured; runtime context unknown")
		return resolve.UnknownContext, true
	}

	done := make(chan queryResult, 1)
	go func() {
		r, err := p.query.Query(ctx)
		done <- queryResult{report: r, err: err}
	}()

	var res queryResult
	select {
	case res = <-done:
	case <-ctx.Done():
		res.err = ctx.Err()
	}

	if res.err != nil {
		if ctx.Err() != nil {
			p.logger.Warn("host query abandoned; runtime context unknown for this call", zap.Error(res.err))
			return resolve.UnknownContext, false
		}
		p.logger.Warn("host query failed; runtime context unknown", zap.Error(res.err))
		return resolve.UnknownContext, true
	}

	rc, ok := Normalize(res.report)
	if !ok {
		p.logger.Warn("host reported an unrecognized platform",
			zap.String("os", res.report.OS),
			zap.String("arch", res.report.Arch),
		)
		return resolve.UnknownContext, true
	}
	p.logger.Debug("runtime context resolved",
		zap.String("os", res.report.OS),
		zap.String("arch", res.report.Arch),
		zap.String("platform", string(rc.Platform)),
		zap.String("arch_tag", string(rc.Arch)),
	)
	return rc, true
}
