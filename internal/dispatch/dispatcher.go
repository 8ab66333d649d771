package dispatch

import (
	"context"
	"fmt"
	"time"

	"github.com/systmms/cckmops/internal/builder"
	dserrors "github.com/systmms/cckmops/internal/errors"
	"github.com/systmms/cckmops/internal/logging"
	"github.com/systmms/cckmops/internal/metrics"
	"github.com/systmms/cckmops/internal/policy"
	"github.com/systmms/cckmops/internal/providers"
	"github.com/systmms/cckmops/internal/resolve"
	"github.com/systmms/cckmops/internal/validation"
	"github.com/systmms/cckmops/pkg/exec"
	"github.com/systmms/cckmops/pkg/provider"
)

// Request is one action invocation.
type Request struct {
	Action     string          `json:"action" yaml:"action"`
	Params     provider.Params `json:"params,omitempty" yaml:"params,omitempty"`
	Domain     string          `json:"domain,omitempty" yaml:"domain,omitempty"`
	AuthDomain string          `json:"auth_domain,omitempty" yaml:"auth_domain,omitempty"`
}

// Response is the outcome of one action. Failures are reported in Error and
// Kind rather than as Go errors.
type Response struct {
	Action  string        `json:"action" yaml:"action"`
	Command []string      `json:"command,omitempty" yaml:"command,omitempty"`
	Data    any           `json:"data,omitempty" yaml:"data,omitempty"`
	Error   string        `json:"error,omitempty" yaml:"error,omitempty"`
	Kind    dserrors.Kind `json:"kind,omitempty" yaml:"kind,omitempty"`
}

// OK reports whether the action succeeded.
func (r Response) OK() bool {
	return r.Error == ""
}

// Options configures a Dispatcher.
type Options struct {
	// Domain and AuthDomain are used when a request carries none.
	Domain     string
	AuthDomain string
	// DisableResolution passes identifiers through unchanged.
	DisableResolution bool
	// ResolutionTimeout bounds each list call made by the resolver.
	ResolutionTimeout time.Duration
	// Scopes is shared between dispatchers when set.
	Scopes *resolve.ScopeCache
	// Policy rejects actions before anything is listed or executed.
	Policy *policy.PolicyEnforcer
}

// Dispatcher routes actions through validation, resolution, command building
// and execution. It is safe for concurrent use; the scope cache is the only
// shared mutable state.
type Dispatcher struct {
	registry  *providers.Registry
	validator *validation.Validator
	builders  *builder.Set
	resolver  *resolve.Resolver
	executor  exec.Executor
	scopes    *resolve.ScopeCache
	logger    *logging.Logger
	options   Options
}

// New creates a dispatcher around executor.
func New(executor exec.Executor, options Options, logger *logging.Logger) *Dispatcher {
	if logger == nil {
		logger = logging.Nop()
	}
	scopes := options.Scopes
	if scopes == nil {
		scopes = resolve.NewScopeCache()
	}

	registry := providers.NewRegistry()
	d := &Dispatcher{
		registry:  registry,
		validator: validation.NewValidator(registry, logger),
		builders:  builder.NewSet(),
		executor:  executor,
		scopes:    scopes,
		logger:    logger,
		options:   options,
	}
	d.resolver = resolve.New(resolve.Config{
		Lister:  d,
		Scopes:  scopes,
		Logger:  logger,
		Timeout: options.ResolutionTimeout,
	})
	return d
}

// Registry returns the action registry.
func (d *Dispatcher) Registry() *providers.Registry {
	return d.registry
}

// Scopes returns the scope cache.
func (d *Dispatcher) Scopes() *resolve.ScopeCache {
	return d.scopes
}

// Dispatch runs one action and never returns a Go error: failures, including
// panics, are reported in the response.
func (d *Dispatcher) Dispatch(ctx context.Context, req Request) (resp Response) {
	providerLabel := "unknown"
	defer func() {
		if p := recover(); p != nil {
			d.logger.Error("Action %s panicked: %v", req.Action, p)
			resp = failure(req.Action, &dserrors.ActionError{
				Kind:   dserrors.KindExecutionFailure,
				Action: req.Action,
				Err:    fmt.Errorf("panic: %v", p),
			})
		}
		outcome := metrics.OutcomeSuccess
		if !resp.OK() {
			outcome = metrics.OutcomeError
		}
		metrics.RecordDispatch(providerLabel, outcome)
	}()

	a, err := d.registry.Parse(req.Action)
	if err != nil {
		return failure(req.Action, err)
	}
	providerLabel = string(a.Provider)

	params := req.Params
	if params == nil {
		params = provider.Params{}
	}
	if err := d.validator.Validate(req.Action, params); err != nil {
		d.logger.Debug("Rejected %s: %v", req.Action, err)
		return failure(req.Action, err)
	}

	flat := params.Flatten(a.GroupKeys()...)
	domain, authDomain := d.domains(req, flat)
	if d.options.Policy != nil {
		if err := d.options.Policy.ValidateAction(a, domain); err != nil {
			d.logger.Warn("Policy rejected %s: %v", req.Action, err)
			return failure(req.Action, err)
		}
	}

	if !d.options.DisableResolution && flat.Has("id") {
		original, _ := flat.String("id")
		if resolved := d.resolver.Resolve(ctx, a, withDomains(flat, domain, authDomain)); resolved != original {
			d.logger.Debug("Resolved %s id %q to %s", req.Action, original, resolved)
			flat["id"] = resolved
		}
	}

	cmd, err := d.build(a, flat)
	if err != nil {
		return failure(req.Action, err)
	}

	result, err := d.execute(ctx, a, cmd, domain, authDomain)
	if err != nil {
		resp = failure(req.Action, &dserrors.ActionError{Kind: dserrors.KindExecutionFailure, Action: req.Action, Err: err})
		resp.Command = cmd
		return resp
	}

	d.rememberScope(a, flat)

	return Response{
		Action:  req.Action,
		Command: cmd,
		Data:    result.Payload(),
	}
}

// Build validates params and renders the command for action without
// resolving names or executing anything.
func (d *Dispatcher) Build(action string, params provider.Params) (provider.CommandSpec, error) {
	a, err := d.registry.Parse(action)
	if err != nil {
		return nil, err
	}
	if params == nil {
		params = provider.Params{}
	}
	if err := d.validator.Validate(action, params); err != nil {
		return nil, err
	}
	return d.build(a, params.Flatten(a.GroupKeys()...))
}

// List runs a list operation for the resolver. Identifiers are never
// resolved here, so resolution cannot recurse.
func (d *Dispatcher) List(ctx context.Context, action string, params provider.Params) (result exec.Result, err error) {
	defer func() {
		if p := recover(); p != nil {
			result, err = nil, fmt.Errorf("list %s panicked: %v", action, p)
		}
	}()

	a, err := d.registry.Parse(action)
	if err != nil {
		return nil, err
	}
	missing, err := d.validator.Missing(action, params)
	if err != nil {
		return nil, err
	}
	if len(missing) > 0 {
		return nil, dserrors.MissingParameters(action, missing)
	}

	flat := params.Flatten(a.GroupKeys()...)
	cmd, err := d.build(a, flat)
	if err != nil {
		return nil, err
	}
	domain, authDomain := d.domains(Request{}, flat)
	return d.execute(ctx, a, cmd, domain, authDomain)
}

func (d *Dispatcher) build(a provider.Action, flat provider.Params) (provider.CommandSpec, error) {
	bd, ok := d.builders.For(a.Provider)
	if !ok {
		return nil, dserrors.UnsupportedOperation(a.String())
	}
	return bd.Build(a.Operation, flat)
}

func (d *Dispatcher) execute(ctx context.Context, a provider.Action, cmd provider.CommandSpec, domain, authDomain string) (exec.Result, error) {
	start := time.Now()
	result, err := d.executor.Execute(ctx, cmd, domain, authDomain)
	metrics.ObserveExecute(string(a.Provider), time.Since(start).Seconds())
	if err != nil {
		return nil, err
	}
	if result == nil {
		result = exec.Result{}
	}
	return result, nil
}

// domains picks the request's scope, then the parameters', then the defaults.
func (d *Dispatcher) domains(req Request, flat provider.Params) (string, string) {
	domain := req.Domain
	if domain == "" {
		domain, _ = flat.String("domain")
	}
	if domain == "" {
		domain = d.options.Domain
	}

	authDomain := req.AuthDomain
	if authDomain == "" {
		authDomain, _ = flat.String("auth_domain")
	}
	if authDomain == "" {
		authDomain = d.options.AuthDomain
	}
	return domain, authDomain
}

// withDomains returns a copy of flat carrying the effective domains, so list
// calls made while resolving target the same tenant as the action.
func withDomains(flat provider.Params, domain, authDomain string) provider.Params {
	out := make(provider.Params, len(flat)+2)
	for k, v := range flat {
		out[k] = v
	}
	if domain != "" {
		out["domain"] = domain
	}
	if authDomain != "" {
		out["auth_domain"] = authDomain
	}
	return out
}

// rememberScope records the subscription and connection of a successful
// Azure vault create or update.
func (d *Dispatcher) rememberScope(a provider.Action, flat provider.Params) {
	if a.Provider != provider.Azure || a.Group != "vaults" {
		return
	}
	if verb := a.Verb(); verb != "create" && verb != "update" {
		return
	}
	subscription, ok := flat.String("subscription_id")
	if !ok {
		return
	}
	connection, ok := flat.String("connection")
	if !ok {
		return
	}
	d.scopes.Remember(subscription, connection)
	d.logger.Debug("Remembered connection %s for subscription %s", connection, subscription)
}

func failure(action string, err error) Response {
	kind := dserrors.KindOf(err)
	if kind == "" {
		kind = dserrors.KindExecutionFailure
	}
	return Response{
		Action: action,
		Error:  err.Error(),
		Kind:   kind,
	}
}
