// Package provider defines the shared vocabulary of cckmops.
//
// cckmops translates a single logical action name and a bag of parameters
// into a `ksctl cckm ...` command for one of several cloud key-management
// backends. This package holds the types every layer agrees on: provider
// names, parsed actions, parameter bags, parameter descriptors, operation
// requirements and command specs.
//
// # Architecture Overview
//
//	┌─────────────────────────────────────────────────────────────┐
//	│                    CLI Commands                             │
//	│              (cmd/cckmops/commands/)                        │
//	└─────────────────────────┬───────────────────────────────────┘
//	                          │
//	┌─────────────────────────▼───────────────────────────────────┐
//	│                     Dispatcher                              │
//	│                 (internal/dispatch/)                        │
//	└──────┬──────────────┬──────────────┬──────────────┬─────────┘
//	       │              │              │              │
//	┌──────▼─────┐ ┌──────▼─────┐ ┌──────▼─────┐ ┌──────▼─────┐
//	│  Registry  │ │ Validation │ │  Resolver  │ │  Builders  │
//	│ (providers)│ │            │ │  (resolve) │ │ (builder)  │
//	└────────────┘ └────────────┘ └────────────┘ └────────────┘
//	                          │
//	┌─────────────────────────▼───────────────────────────────────┐
//	│                Executor (pkg/exec)                          │
//	└─────────────────────────────────────────────────────────────┘
//
// # Actions
//
// An action is "{provider}_{operation}" and an operation is
// "{group}_{verb}":
//
//	azure_keys_get          -> provider azure, group keys, verb get
//	aws_bulk_jobs_cancel    -> provider aws, group bulk_jobs, verb cancel
//
// # Parameters
//
// Parameters may be given at the top level of the bag or nested under a
// group object. For azure_keys_get the lookup order is:
//
//	params["azure_keys_params"]["id"]
//	params["azure_params"]["id"]
//	params["id"]
//
// Params.Flatten produces the merged view the builders consume.
package provider
