package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/systmms/cckmops/internal/config"
	"github.com/systmms/cckmops/internal/dispatch"
	dserrors "github.com/systmms/cckmops/internal/errors"
	"github.com/systmms/cckmops/internal/logging"
	"github.com/systmms/cckmops/internal/providers"
	"github.com/systmms/cckmops/pkg/exec"
	"github.com/systmms/cckmops/pkg/provider"
)

// paramOptions collects request parameters from flags.
//
// Sources merge in order: --params-file, --params, then each --param, later
// values winning.
type paramOptions struct {
	inline string
	file   string
	pairs  []string
}

func (o *paramOptions) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&o.inline, "params", "", "Parameters as a JSON object")
	cmd.Flags().StringVar(&o.file, "params-file", "", "Read parameters from a JSON or YAML file")
	cmd.Flags().StringArrayVarP(&o.pairs, "param", "p", nil, "Parameter as key=value (repeatable; group.key=value for nested groups)")
}

func (o *paramOptions) params(registry *providers.Registry, action string) (provider.Params, error) {
	params := provider.Params{}

	if o.file != "" {
		data, err := os.ReadFile(o.file)
		if err != nil {
			return nil, dserrors.UserError{
				Message:    "Failed to read parameters file",
				Details:    err.Error(),
				Suggestion: "Check the --params-file path",
				Err:        err,
			}
		}
		var fromFile map[string]any
		if err := yaml.Unmarshal(data, &fromFile); err != nil {
			return nil, dserrors.UserError{
				Message:    "Parameters file is not valid JSON or YAML",
				Details:    err.Error(),
				Suggestion: "The file must contain a single object of parameters",
				Err:        err,
			}
		}
		for k, v := range fromFile {
			params[k] = v
		}
	}

	if o.inline != "" {
		var inline map[string]any
		if err := json.Unmarshal([]byte(o.inline), &inline); err != nil {
			return nil, dserrors.UserError{
				Message:    "--params is not a valid JSON object",
				Details:    err.Error(),
				Suggestion: `Quote the object, e.g. --params '{"id":"my-key"}'`,
				Err:        err,
			}
		}
		for k, v := range inline {
			params[k] = v
		}
	}

	var p provider.Name
	if a, err := registry.Parse(action); err == nil {
		p = a.Provider
	}
	for _, pair := range o.pairs {
		key, raw, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			return nil, dserrors.UserError{
				Message:    fmt.Sprintf("Invalid parameter %q", pair),
				Suggestion: "Use --param key=value",
			}
		}
		group, name, nested := strings.Cut(key, ".")
		if !nested {
			params[key] = coerce(registry, p, key, raw)
			continue
		}
		inner := params.Group(group)
		if inner == nil {
			inner = provider.Params{}
		}
		inner[name] = coerce(registry, p, name, raw)
		params[group] = map[string]any(inner)
	}
	return params, nil
}

// coerce converts a command-line string to the type the parameter documents.
// Values that do not parse stay strings so validation reports them.
func coerce(registry *providers.Registry, p provider.Name, name, raw string) any {
	d, ok := registry.Descriptor(p, name)
	if !ok {
		return raw
	}
	switch d.Type {
	case provider.TypeInteger:
		if n, err := strconv.Atoi(raw); err == nil {
			return n
		}
	case provider.TypeBoolean:
		if b, err := strconv.ParseBool(raw); err == nil {
			return b
		}
	case provider.TypeArray:
		var items []any
		for _, item := range strings.Split(raw, ",") {
			if item = strings.TrimSpace(item); item != "" {
				items = append(items, item)
			}
		}
		return items
	}
	return raw
}

// dispatchFlags are the per-invocation overrides shared by run and batch.
type dispatchFlags struct {
	domain     string
	authDomain string
	noResolve  bool
}

func (f *dispatchFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.domain, "domain", "", "CipherTrust domain (overrides config)")
	cmd.Flags().StringVar(&f.authDomain, "auth-domain", "", "CipherTrust authentication domain (overrides config)")
	cmd.Flags().BoolVar(&f.noResolve, "no-resolve", false, "Pass identifiers through without name resolution")
}

// loadDefinition loads the configuration once, falling back to defaults.
func loadDefinition(cfg *config.Config) (*config.Definition, error) {
	if cfg.Definition != nil {
		return cfg.Definition, nil
	}
	if err := cfg.LoadOrDefault(); err != nil {
		return nil, err
	}
	return cfg.Definition, nil
}

func loggerFor(cfg *config.Config) *logging.Logger {
	if cfg.Logger == nil {
		return logging.Nop()
	}
	return cfg.Logger
}

// newDispatcher wires a dispatcher from configuration. A nil executor runs
// ksctl.
func newDispatcher(cfg *config.Config, def *config.Definition, executor exec.Executor, flags dispatchFlags) *dispatch.Dispatcher {
	logger := loggerFor(cfg)
	if executor == nil {
		executor = exec.NewKsctlExecutor(def.ExecutorConfig(), logger)
	}

	options := dispatch.Options{
		Domain:            def.Domain,
		AuthDomain:        def.AuthDomain,
		DisableResolution: !def.Resolution.Enabled || flags.noResolve,
		ResolutionTimeout: def.ResolutionTimeout(),
		Policy:            def.PolicyEnforcer(),
	}
	if flags.domain != "" {
		options.Domain = flags.domain
	}
	if flags.authDomain != "" {
		options.AuthDomain = flags.authDomain
	}
	return dispatch.New(executor, options, logger)
}

// writeOutput renders v as indented JSON or YAML.
func writeOutput(w io.Writer, format string, v any) error {
	switch format {
	case "", "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	}
	return dserrors.UserError{
		Message:    fmt.Sprintf("Unsupported output format %q", format),
		Suggestion: "Use --format json or --format yaml",
	}
}

// responseError turns a failed response into the command's exit error.
func responseError(resp dispatch.Response) error {
	if resp.OK() {
		return nil
	}
	err := fmt.Errorf("%s: %s", resp.Kind, resp.Error)
	if resp.Kind != dserrors.KindExecutionFailure {
		return err
	}
	action, perr := providers.NewRegistry().Parse(resp.Action)
	if perr != nil {
		return err
	}
	return dserrors.ProviderError(string(action.Provider), action.Operation, err)
}

// completeActions offers action names for the first argument.
func completeActions(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	var matches []string
	for _, action := range providers.NewRegistry().Actions() {
		if strings.HasPrefix(action, toComplete) {
			matches = append(matches, action)
		}
	}
	return matches, cobra.ShellCompDirectiveNoFileComp
}
