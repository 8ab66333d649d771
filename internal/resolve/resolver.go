package resolve

import (
	"context"
	"strings"
	"time"

	"github.com/systmms/cckmops/internal/logging"
	"github.com/systmms/cckmops/internal/metrics"
	"github.com/systmms/cckmops/pkg/exec"
	"github.com/systmms/cckmops/pkg/provider"
)

// DefaultTimeout bounds each list call made while resolving a name.
const DefaultTimeout = 30 * time.Second

// Lister runs list operations on behalf of the resolver. The dispatcher
// implements it without recursing into resolution.
type Lister interface {
	List(ctx context.Context, action string, params provider.Params) (exec.Result, error)
}

// ListerFunc adapts a function to the Lister interface.
type ListerFunc func(ctx context.Context, action string, params provider.Params) (exec.Result, error)

// List implements Lister.
func (f ListerFunc) List(ctx context.Context, action string, params provider.Params) (exec.Result, error) {
	return f(ctx, action, params)
}

// Config configures a Resolver.
type Config struct {
	Lister  Lister
	Scopes  *ScopeCache
	Logger  *logging.Logger
	Timeout time.Duration
}

// Resolver maps human-readable names to CCKM resource ids.
//
// Resolution never fails: when no strategy finds a match the original input
// is returned and the executor reports whatever CCKM says about it.
type Resolver struct {
	lister  Lister
	scopes  *ScopeCache
	logger  *logging.Logger
	timeout time.Duration
}

// New creates a new resolver instance
func New(cfg Config) *Resolver {
	r := &Resolver{
		lister:  cfg.Lister,
		scopes:  cfg.Scopes,
		logger:  cfg.Logger,
		timeout: cfg.Timeout,
	}
	if r.scopes == nil {
		r.scopes = NewScopeCache()
	}
	if r.logger == nil {
		r.logger = logging.Nop()
	}
	if r.timeout <= 0 {
		r.timeout = DefaultTimeout
	}
	return r
}

// Scopes returns the resolver's scope cache.
func (r *Resolver) Scopes() *ScopeCache {
	return r.scopes
}

// Resolve returns the identifier to use for the "id" parameter of action.
// params are the flattened request parameters.
func (r *Resolver) Resolve(ctx context.Context, action provider.Action, params provider.Params) (resolved string) {
	id, _ := params.String("id")
	if id == "" {
		return id
	}

	outcome := metrics.OutcomeUnresolved
	defer func() {
		if p := recover(); p != nil {
			r.logger.Debug("Resolution of %q for %s aborted: %v", id, action, p)
			resolved, outcome = id, metrics.OutcomeUnresolved
		}
		metrics.RecordResolution(string(action.Provider), outcome)
	}()

	outcome, resolved = r.resolve(ctx, action, params, id)
	return resolved
}

func (r *Resolver) resolve(ctx context.Context, action provider.Action, params provider.Params, id string) (string, string) {
	if !ConsumesIdentifier(action.Verb()) {
		return metrics.OutcomePassthrough, id
	}
	kind, ok := KindFor(action.Provider, action.Group)
	if !ok {
		return metrics.OutcomePassthrough, id
	}
	if IsUUID(id) {
		return metrics.OutcomeUUID, id
	}
	if IsNative(action.Provider, id) {
		return metrics.OutcomeNative, id
	}

	listAction := string(action.Provider) + "_" + kind.ListOperation
	candidates := r.candidates(kind, params, id)

	for _, s := range r.strategies(kind, params, candidates) {
		records, err := r.list(ctx, listAction, s.params)
		if err != nil {
			r.logger.Debug("Resolution strategy %s for %q failed: %v", s.name, id, err)
			continue
		}
		found, ok := match(records, kind.NameFields, candidates, false)
		if !ok && kind.ScopeParam != "" {
			found, ok = match(records, kind.NameFields, []string{id}, true)
		}
		if !ok {
			continue
		}
		if found == "" {
			r.logger.Debug("First match for %q via %s has no id, using it as is", id, s.name)
			return metrics.OutcomeUnresolved, id
		}
		r.logger.Debug("Resolved %q to %s via %s", id, found, s.name)
		return metrics.OutcomeResolved, found
	}

	r.logger.Debug("Could not resolve %q for %s, using it as is", id, action)
	return metrics.OutcomeUnresolved, id
}

// candidates returns the names a record may carry for id, most literal first.
func (r *Resolver) candidates(kind Kind, params provider.Params, id string) []string {
	candidates := []string{id}

	if kind.AliasPrefix != "" {
		if strings.HasPrefix(id, kind.AliasPrefix) {
			candidates = append(candidates, strings.TrimPrefix(id, kind.AliasPrefix))
		} else {
			candidates = append(candidates, kind.AliasPrefix+id)
		}
	}

	if kind.ScopeParam != "" && !strings.Contains(id, scopeSeparator) {
		if scope := r.scope(kind, params); scope != "" {
			candidates = append(candidates, id+scopeSeparator+scope)
		}
	}
	return candidates
}

func (r *Resolver) scope(kind Kind, params provider.Params) string {
	if scope, ok := params.String(kind.ScopeParam); ok {
		return scope
	}
	if scope, _, ok := r.scopes.Last(); ok {
		return scope
	}
	return ""
}

type strategy struct {
	name   string
	params provider.Params
}

// strategies returns the list calls to try, in order: exact-name filter,
// unfiltered list, then scope-qualified lists.
func (r *Resolver) strategies(kind Kind, params provider.Params, candidates []string) []strategy {
	base := func() provider.Params {
		p := provider.Params{}
		for _, key := range []string{"domain", "auth_domain"} {
			if v, ok := params[key]; ok {
				p[key] = v
			}
		}
		return p
	}

	var out []strategy
	for _, candidate := range candidates {
		p := base()
		p[kind.Filter] = candidate
		out = append(out, strategy{name: "filter " + kind.Filter + "=" + candidate, params: p})
	}
	out = append(out, strategy{name: "unfiltered", params: base()})

	if kind.ScopeParam == "" {
		return out
	}

	explicit, _ := params.String(kind.ScopeParam)
	if explicit != "" {
		p := base()
		p[kind.ScopeParam] = explicit
		if conn, ok := params.String("connection"); ok {
			p["connection"] = conn
		} else if conn, ok := r.scopes.Connection(explicit); ok {
			p["connection"] = conn
		}
		out = append(out, strategy{name: "scope " + explicit, params: p})
	}
	if last, conn, ok := r.scopes.Last(); ok && last != explicit {
		p := base()
		p[kind.ScopeParam] = last
		if conn != "" {
			p["connection"] = conn
		}
		out = append(out, strategy{name: "cached scope " + last, params: p})
	}
	return out
}

// list runs one strategy's list call. Resolution latency is bounded by the
// strategy count, so the call is never retried.
func (r *Resolver) list(ctx context.Context, action string, params provider.Params) ([]Record, error) {
	ctx, cancel := withResolutionTimeout(exec.WithoutRetries(ctx), r.timeout)
	defer cancel()

	result, err := r.lister.List(ctx, action, params)
	if err != nil {
		return nil, err
	}
	return Records(result), nil
}

// withResolutionTimeout creates a context with timeout for one list call
func withResolutionTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, timeout)
}
