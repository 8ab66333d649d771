package validation

import (
	"fmt"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"

	dserrors "github.com/systmms/cckmops/internal/errors"
	"github.com/systmms/cckmops/internal/logging"
	"github.com/systmms/cckmops/internal/providers"
	"github.com/systmms/cckmops/pkg/provider"
)

// Validator checks request parameters against the action registry
type Validator struct {
	registry *providers.Registry
	logger   *logging.Logger

	mu      sync.Mutex
	schemas map[string]*gojsonschema.Schema
}

// NewValidator creates a new parameter validator
func NewValidator(registry *providers.Registry, logger *logging.Logger) *Validator {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Validator{
		registry: registry,
		logger:   logger,
		schemas:  make(map[string]*gojsonschema.Schema),
	}
}

// Missing returns every required parameter of action that is absent from
// params, in requirement order. A parameter is present at the top level or in
// one of the action's nested group objects.
func (v *Validator) Missing(action string, params provider.Params) ([]string, error) {
	a, err := v.registry.Parse(action)
	if err != nil {
		return nil, err
	}
	req, err := v.registry.Requirement(action)
	if err != nil {
		return nil, err
	}

	groups := a.GroupKeys()
	var missing []string
	for _, name := range req.Required {
		if _, ok := params.Lookup(name, groups...); !ok {
			missing = append(missing, name)
		}
	}
	return missing, nil
}

// Valid reports whether every required parameter of action is present.
// Unknown actions are never valid.
func (v *Validator) Valid(action string, params provider.Params) bool {
	missing, err := v.Missing(action, params)
	return err == nil && len(missing) == 0
}

// CheckTypes validates the flattened parameters of action against the
// action's JSON schema and reports every violation at once.
func (v *Validator) CheckTypes(action string, params provider.Params) error {
	a, err := v.registry.Parse(action)
	if err != nil {
		return err
	}
	schema, err := v.schema(action)
	if err != nil {
		return err
	}

	flat := params.Flatten(a.GroupKeys()...)
	result, err := schema.Validate(gojsonschema.NewGoLoader(map[string]any(flat)))
	if err != nil {
		return &dserrors.ActionError{Kind: dserrors.KindInvalidParameters, Action: action, Err: err}
	}
	if result.Valid() {
		return nil
	}

	var messages []string
	for _, desc := range result.Errors() {
		messages = append(messages, desc.String())
	}
	v.logger.Debug("Parameter validation failed for %s: %d error(s)", action, len(messages))
	return &dserrors.ActionError{
		Kind:   dserrors.KindInvalidParameters,
		Action: action,
		Err:    fmt.Errorf("schema validation failed:\n  - %s", strings.Join(messages, "\n  - ")),
	}
}

// Validate runs the presence check and then the type check.
func (v *Validator) Validate(action string, params provider.Params) error {
	missing, err := v.Missing(action, params)
	if err != nil {
		return err
	}
	if len(missing) > 0 {
		return dserrors.MissingParameters(action, missing)
	}
	return v.CheckTypes(action, params)
}

func (v *Validator) schema(action string) (*gojsonschema.Schema, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if s, ok := v.schemas[action]; ok {
		return s, nil
	}
	doc, err := v.registry.ActionSchema(action)
	if err != nil {
		return nil, err
	}
	s, err := gojsonschema.NewSchema(gojsonschema.NewGoLoader(doc))
	if err != nil {
		return nil, fmt.Errorf("failed to compile schema for %s: %w", action, err)
	}
	v.schemas[action] = s
	return s, nil
}
