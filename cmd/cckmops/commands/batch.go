package commands

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/systmms/cckmops/internal/config"
	"github.com/systmms/cckmops/internal/dispatch"
	dserrors "github.com/systmms/cckmops/internal/errors"
	"github.com/systmms/cckmops/internal/metrics"
	"github.com/systmms/cckmops/pkg/exec"
)

// batchFile is the document read by the batch command. A bare list of
// requests is accepted as well.
type batchFile struct {
	Requests []dispatch.Request `yaml:"requests"`
}

func NewBatchCommand(cfg *config.Config) *cobra.Command {
	return NewBatchCommandWithExecutor(cfg, nil)
}

// NewBatchCommandWithExecutor creates the batch command with a custom
// executor. This is primarily for testing; nil runs ksctl.
func NewBatchCommandWithExecutor(cfg *config.Config, executor exec.Executor) *cobra.Command {
	var (
		flags       dispatchFlags
		format      string
		concurrency int
	)

	cmd := &cobra.Command{
		Use:   "batch <file>",
		Short: "Run many actions from a JSON or YAML file",
		Long: `Run every request in a file concurrently and print the responses in
file order.

The file holds either a list of requests or an object with a "requests"
list. Each request has an action and optional params, domain and
auth_domain. Requests share one resolution cache, so a vault created early
in the file can be found by name later on.

Example file:
  requests:
    - action: azure_vaults_create
      params: {azure_vaults_jsonfile: vaults.json}
    - action: azure_keys_list
      params: {vault_name: payments}`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			requests, err := readBatch(args[0])
			if err != nil {
				return err
			}

			def, err := loadDefinition(cfg)
			if err != nil {
				return err
			}
			logger := loggerFor(cfg)

			if def.Metrics.Enabled {
				srv := metrics.NewServer(def.MetricsServerConfig(), logger)
				if err := srv.Start(); err != nil {
					return err
				}
				defer func() {
					ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
					defer cancel()
					_ = srv.Stop(ctx)
				}()
			}

			limit := def.Batch.Concurrency
			if concurrency > 0 {
				limit = concurrency
			}

			d := newDispatcher(cfg, def, executor, flags)
			responses := runBatch(cmd.Context(), d, requests, limit)

			if err := writeOutput(cmd.OutOrStdout(), format, responses); err != nil {
				return err
			}

			failed := 0
			for _, resp := range responses {
				if !resp.OK() {
					failed++
				}
			}
			logger.Info("Batch finished: %d succeeded, %d failed", len(responses)-failed, failed)
			if failed > 0 {
				return fmt.Errorf("%d of %d actions failed", failed, len(responses))
			}
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVar(&format, "format", "json", "Output format (json|yaml)")
	cmd.Flags().IntVar(&concurrency, "concurrency", 0, "Maximum concurrent actions (default from config)")

	return cmd
}

// runBatch dispatches requests with at most limit in flight and returns the
// responses in request order. Dispatch never fails, so the group never
// cancels early.
func runBatch(ctx context.Context, d *dispatch.Dispatcher, requests []dispatch.Request, limit int) []dispatch.Response {
	responses := make([]dispatch.Response, len(requests))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, req := range requests {
		i, req := i, req
		g.Go(func() error {
			responses[i] = d.Dispatch(ctx, req)
			return nil
		})
	}
	_ = g.Wait()

	return responses
}

func readBatch(path string) ([]dispatch.Request, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, dserrors.UserError{
			Message:    "Failed to read batch file",
			Details:    err.Error(),
			Suggestion: "Check the file path and permissions",
			Err:        err,
		}
	}

	var doc batchFile
	if err := yaml.Unmarshal(data, &doc); err != nil || doc.Requests == nil {
		var list []dispatch.Request
		if listErr := yaml.Unmarshal(data, &list); listErr != nil {
			return nil, dserrors.UserError{
				Message:    "Batch file is not valid JSON or YAML",
				Details:    listErr.Error(),
				Suggestion: `Provide a list of requests or an object with a "requests" list`,
				Err:        listErr,
			}
		}
		doc.Requests = list
	}

	for i, req := range doc.Requests {
		if req.Action == "" {
			return nil, dserrors.UserError{
				Message:    fmt.Sprintf("Request %d has no action", i+1),
				Suggestion: "Every request needs an action such as azure_keys_list",
			}
		}
	}
	return doc.Requests, nil
}
