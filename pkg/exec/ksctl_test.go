package exec_test

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	dserrors "github.com/systmms/cckmops/internal/errors"
	"github.com/systmms/cckmops/pkg/exec"
	"github.com/systmms/cckmops/tests/testutil"
)

func TestKsctlExecutorDecodesJSON(t *testing.T) {
	t.Parallel()

	mock := testutil.NewMockCommandExecutor()
	mock.AddJSONResponse("ksctl cckm azure keys list", `{"skip":0,"limit":10,"total":1,"resources":[{"id":"k1","name":"my-key"}]}`)

	k := exec.NewKsctlExecutorWithRunner(exec.KsctlConfig{}, mock, nil)
	res, err := k.Execute(context.Background(), []string{"cckm", "azure", "keys", "list"}, "", "")
	require.NoError(t, err)

	data, ok := res.Data()
	require.True(t, ok)
	resources := data.(map[string]any)["resources"].([]any)
	require.Len(t, resources, 1)
	assert.Equal(t, "my-key", resources[0].(map[string]any)["name"])
	assert.Contains(t, res.Stdout(), `"total":1`)
}

func TestKsctlExecutorPassesScopeAndConfig(t *testing.T) {
	t.Parallel()

	mock := testutil.NewMockCommandExecutor()
	k := exec.NewKsctlExecutorWithRunner(exec.KsctlConfig{
		Binary:     "/opt/ksctl",
		ConfigFile: "/etc/ksctl.yaml",
		Timeout:    time.Second,
	}, mock, nil)

	_, err := k.Execute(context.Background(), []string{"cckm", "aws", "keys", "get", "--id", "abc"}, "tenant", "root")
	require.NoError(t, err)

	calls := mock.GetCalls("/opt/ksctl")
	require.Len(t, calls, 1)
	assert.Equal(t, []string{
		"cckm", "aws", "keys", "get", "--id", "abc",
		"--domain", "tenant", "--auth-domain", "root",
		"--configfile", "/etc/ksctl.yaml",
	}, calls[0].Args)
	_, hasDeadline := calls[0].Context.Deadline()
	assert.True(t, hasDeadline)
}

func TestKsctlExecutorPlainOutput(t *testing.T) {
	t.Parallel()

	mock := testutil.NewMockCommandExecutor()
	mock.AddResponse("ksctl cckm gcp keys rotate", testutil.MockResponse{Stdout: []byte("rotation scheduled\n")})

	k := exec.NewKsctlExecutorWithRunner(exec.KsctlConfig{}, mock, nil)
	res, err := k.Execute(context.Background(), []string{"cckm", "gcp", "keys", "rotate", "--id", "x"}, "", "")
	require.NoError(t, err)

	_, ok := res.Data()
	assert.False(t, ok)
	assert.Equal(t, "rotation scheduled\n", res.Payload())
}

func TestKsctlExecutorFailure(t *testing.T) {
	t.Parallel()

	mock := testutil.NewMockCommandExecutor()
	mock.AddErrorResponse("ksctl cckm azure secrets create", "Resource not found", 1)

	k := exec.NewKsctlExecutorWithRunner(exec.KsctlConfig{}, mock, nil)
	_, err := k.Execute(context.Background(),
		[]string{"cckm", "azure", "secrets", "create", "--secret-name", "db", "--value", "hunter2-hunter2"}, "", "")
	require.Error(t, err)

	var cmdErr dserrors.CommandError
	require.ErrorAs(t, err, &cmdErr)
	assert.Equal(t, "Resource not found", cmdErr.Message)
	assert.Contains(t, err.Error(), "--value [REDACTED]")
	assert.NotContains(t, err.Error(), "hunter2-hunter2")
}

func TestKsctlExecutorTimeout(t *testing.T) {
	t.Parallel()

	runner := runnerFunc(func(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
		<-ctx.Done()
		return nil, nil, ctx.Err()
	})

	k := exec.NewKsctlExecutorWithRunner(exec.KsctlConfig{Timeout: 10 * time.Millisecond}, runner, nil)
	_, err := k.Execute(context.Background(), []string{"cckm", "oci", "keys", "list"}, "", "")
	require.Error(t, err)

	var userErr dserrors.UserError
	require.ErrorAs(t, err, &userErr)
	assert.Equal(t, "ksctl command timed out", userErr.Message)
	assert.True(t, stderrors.Is(err, context.DeadlineExceeded))
}

func TestKsctlExecutorRetries(t *testing.T) {
	t.Parallel()

	flaky := func(failures int, calls *int) runnerFunc {
		return func(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
			*calls++
			if *calls <= failures {
				return nil, []byte("read tcp: connection reset by peer"), stderrors.New("exit status 1")
			}
			return []byte(`{"resources":[]}`), nil, nil
		}
	}

	tests := []struct {
		name      string
		command   []string
		retries   int
		failures  int
		wantErr   bool
		wantCalls int
	}{
		{"read retried until success", []string{"cckm", "aws", "keys", "list"}, 2, 2, false, 3},
		{"read gives up after retries", []string{"cckm", "aws", "keys", "get", "--id", "k1"}, 1, 5, true, 2},
		{"write never retried", []string{"cckm", "aws", "keys", "create", "--region", "us-east-1"}, 3, 1, true, 1},
		{"retries disabled", []string{"cckm", "aws", "keys", "list"}, 0, 1, true, 1},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			calls := 0
			k := exec.NewKsctlExecutorWithRunner(exec.KsctlConfig{
				Retries:    tt.retries,
				RetryDelay: time.Millisecond,
			}, flaky(tt.failures, &calls), nil)

			_, err := k.Execute(context.Background(), tt.command, "", "")
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.wantCalls, calls)
		})
	}
}

func TestKsctlExecutorWithoutRetries(t *testing.T) {
	t.Parallel()

	mock := testutil.NewMockCommandExecutor()
	mock.AddErrorResponse("ksctl cckm aws keys list", "connection reset by peer", 1)

	k := exec.NewKsctlExecutorWithRunner(exec.KsctlConfig{Retries: 3, RetryDelay: time.Millisecond}, mock, nil)
	_, err := k.Execute(exec.WithoutRetries(context.Background()), []string{"cckm", "aws", "keys", "list"}, "", "")
	require.Error(t, err)
	mock.AssertCallCount(t, "ksctl", 1)
}

func TestKsctlExecutorDoesNotRetryPermanentFailures(t *testing.T) {
	t.Parallel()

	calls := 0
	runner := runnerFunc(func(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
		calls++
		return nil, []byte("Resource not found"), stderrors.New("exit status 1")
	})

	k := exec.NewKsctlExecutorWithRunner(exec.KsctlConfig{Retries: 3, RetryDelay: time.Millisecond}, runner, nil)
	_, err := k.Execute(context.Background(), []string{"cckm", "gcp", "keys", "get", "--id", "k1"}, "", "")
	require.Error(t, err)
	assert.Equal(t, 1, calls)
	assert.Contains(t, err.Error(), "Resource not found")
}

func TestKsctlExecutorRedactsSecretsInLogs(t *testing.T) {
	t.Parallel()

	logs := testutil.NewTestLogger(t)
	mock := testutil.NewMockCommandExecutor()
	mock.AddJSONResponse("ksctl cckm azure secrets create", `{"id":"s1"}`)

	k := exec.NewKsctlExecutorWithRunner(exec.KsctlConfig{}, mock, logs.Logger())
	_, err := k.Execute(context.Background(),
		[]string{"cckm", "azure", "secrets", "create", "--secret-name", "db", "--value", "hunter2"}, "tenant-a", "")
	require.NoError(t, err)

	logs.AssertRedacted(t, "hunter2")
	logs.AssertContains(t, "--secret-name db")
	logs.AssertNotContains(t, "--auth-domain")
	logs.AssertLogCount(t, "debug", 1)
	mock.AssertCallCount(t, "ksctl", 1)
	mock.AssertNotCalled(t, "/usr/local/bin/ksctl")
}

func TestKsctlExecutorRetryLogsEachAttempt(t *testing.T) {
	t.Parallel()

	logs := testutil.NewTestLogger(t)
	mock := testutil.NewMockCommandExecutor()
	mock.AddErrorResponse("ksctl cckm oci keys list", "429 Too Many Requests", 1)

	k := exec.NewKsctlExecutorWithRunner(exec.KsctlConfig{Retries: 2, RetryDelay: time.Millisecond}, mock, logs.Logger())
	_, err := k.Execute(context.Background(), []string{"cckm", "oci", "keys", "list"}, "", "")
	require.Error(t, err)

	mock.AssertCallCount(t, "ksctl", 3)
	// Three runs and two retry notices.
	logs.AssertLogCount(t, "debug", 5)
}

type runnerFunc func(ctx context.Context, name string, args ...string) ([]byte, []byte, error)

func (f runnerFunc) Execute(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
	return f(ctx, name, args...)
}
