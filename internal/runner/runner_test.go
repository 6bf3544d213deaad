package runner

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun_Success(t *testing.T) {
	dir := t.TempDir()
	outcome := Run(context.Background(), Job{
		Dir:     dir,
		Command: []string{"sh", "-c", "echo report; echo netlist > syn.v"},
		Timeout: 10 * time.Second,
		Outputs: []string{"syn.v"},
	})

	require.NoError(t, outcome.Err)
	assert.Equal(t, Success, outcome.Status)
	assert.Equal(t, "report\n", string(outcome.Stdout))
	require.Len(t, outcome.Artifacts, 1)
	assert.Equal(t, filepath.Join(dir, "syn.v"), outcome.Artifacts[0])
}

func TestRun_Timeout(t *testing.T) {
	dir := t.TempDir()
	start := time.Now()
	outcome := Run(context.Background(), Job{
		Dir:     dir,
		Command: []string{"sh", "-c", "echo partial > syn.v; sleep 30"},
		Timeout: 500 * time.Millisecond,
		Outputs: []string{"syn.v"},
	})

	assert.Equal(t, Timeout, outcome.Status)
	assert.Less(t, time.Since(start), 10*time.Second)

	// Partial output from the killed process must not survive.
	_, err := os.Stat(filepath.Join(dir, "syn.v"))
	assert.True(t, os.IsNotExist(err))
}

func TestRun_NonZeroExit(t *testing.T) {
	dir := t.TempDir()
	outcome := Run(context.Background(), Job{
		Dir:     dir,
		Command: []string{"sh", "-c", "echo partial > syn.v; echo boom >&2; exit 3"},
		Timeout: 10 * time.Second,
		Outputs: []string{"syn.v"},
	})

	assert.Equal(t, Failure, outcome.Status)
	require.Error(t, outcome.Err)
	assert.Contains(t, outcome.Err.Error(), "boom")

	_, err := os.Stat(filepath.Join(dir, "syn.v"))
	assert.True(t, os.IsNotExist(err))
}

func TestRun_MissingExpectedOutput(t *testing.T) {
	// A clean exit without the declared output is still a failure.
	outcome := Run(context.Background(), Job{
		Dir:     t.TempDir(),
		Command: []string{"sh", "-c", "true"},
		Timeout: 10 * time.Second,
		Outputs: []string{"syn.v"},
	})

	assert.Equal(t, Failure, outcome.Status)
	require.Error(t, outcome.Err)
	assert.Contains(t, outcome.Err.Error(), "syn.v")
}

func TestRun_Stdin(t *testing.T) {
	outcome := Run(context.Background(), Job{
		Dir:     t.TempDir(),
		Command: []string{"sh", "-c", "cat"},
		Timeout: 10 * time.Second,
		Input:   []byte("piped"),
	})

	require.NoError(t, outcome.Err)
	assert.Equal(t, Success, outcome.Status)
	assert.Equal(t, "piped", string(outcome.Stdout))
}

func TestRun_CanceledContext(t *testing.T) {
	// Operator shutdown is a failure, not a timeout: the design did not hang,
	// so it must not land in the timeout partition for targeted retries.
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(200 * time.Millisecond)
		cancel()
	}()
	outcome := Run(ctx, Job{
		Dir:     t.TempDir(),
		Command: []string{"sh", "-c", "sleep 30"},
		Timeout: time.Minute,
	})
	assert.Equal(t, Failure, outcome.Status)
	assert.ErrorIs(t, outcome.Err, context.Canceled)
}

func TestRun_EmptyCommand(t *testing.T) {
	outcome := Run(context.Background(), Job{Dir: t.TempDir()})
	assert.Equal(t, Failure, outcome.Status)
	assert.Error(t, outcome.Err)
}
