package testutil

import (
	"context"
	"strings"
	"sync"

	"github.com/systmms/cckmops/pkg/exec"
)

// ExecutorCall records one call to FakeExecutor.
type ExecutorCall struct {
	Command    []string
	Domain     string
	AuthDomain string
}

// FakeResult is a scripted executor outcome.
type FakeResult struct {
	Result exec.Result
	Err    error
	Panic  any
}

// FakeExecutor is a scripted exec.Executor.
//
// Results are keyed by a space-joined command prefix such as
// "cckm azure keys list"; the longest matching prefix wins.
type FakeExecutor struct {
	mu      sync.Mutex
	results map[string]FakeResult
	calls   []ExecutorCall

	// Default is returned when no prefix matches.
	Default FakeResult
}

// NewFakeExecutor creates a FakeExecutor that returns empty results.
func NewFakeExecutor() *FakeExecutor {
	return &FakeExecutor{
		results: make(map[string]FakeResult),
		Default: FakeResult{Result: exec.Result{"stdout": ""}},
	}
}

// On scripts the result for commands starting with prefix.
func (f *FakeExecutor) On(prefix string, result exec.Result) *FakeExecutor {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.results[prefix] = FakeResult{Result: result}
	return f
}

// OnError scripts a failure for commands starting with prefix.
func (f *FakeExecutor) OnError(prefix string, err error) *FakeExecutor {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.results[prefix] = FakeResult{Err: err}
	return f
}

// OnPanic scripts a panic for commands starting with prefix.
func (f *FakeExecutor) OnPanic(prefix string, value any) *FakeExecutor {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.results[prefix] = FakeResult{Panic: value}
	return f
}

// Execute implements exec.Executor.
func (f *FakeExecutor) Execute(_ context.Context, command []string, domain, authDomain string) (exec.Result, error) {
	f.mu.Lock()
	f.calls = append(f.calls, ExecutorCall{
		Command:    append([]string{}, command...),
		Domain:     domain,
		AuthDomain: authDomain,
	})

	key := strings.Join(command, " ")
	outcome := f.Default
	best := -1
	for prefix, r := range f.results {
		if strings.HasPrefix(key, prefix) && len(prefix) > best {
			outcome, best = r, len(prefix)
		}
	}
	f.mu.Unlock()

	if outcome.Panic != nil {
		panic(outcome.Panic)
	}
	return outcome.Result, outcome.Err
}

// Calls returns every recorded call.
func (f *FakeExecutor) Calls() []ExecutorCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]ExecutorCall{}, f.calls...)
}

// Commands returns the recorded commands whose tokens start with prefix.
func (f *FakeExecutor) Commands(prefix ...string) [][]string {
	var out [][]string
	for _, call := range f.Calls() {
		if hasPrefix(call.Command, prefix) {
			out = append(out, call.Command)
		}
	}
	return out
}

func hasPrefix(tokens, prefix []string) bool {
	if len(prefix) > len(tokens) {
		return false
	}
	for i := range prefix {
		if tokens[i] != prefix[i] {
			return false
		}
	}
	return true
}
