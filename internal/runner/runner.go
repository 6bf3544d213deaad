// Package runner executes one external tool invocation per design inside an
// isolated working directory, enforcing a hard wall-clock timeout and
// classifying the outcome. A killed or failed process never leaves partial
// output behind for later stages to trip over.
package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"syscall"
	"time"
)

// Status classifies one job invocation. Timeout is a failure subtype tracked
// separately so operators can tell "tool hung" from "tool rejected input".
type Status int

const (
	Success Status = iota
	Timeout
	Failure
)

func (s Status) String() string {
	switch s {
	case Success:
		return "success"
	case Timeout:
		return "timeout"
	case Failure:
		return "failure"
	default:
		return "unknown"
	}
}

// Job describes one external tool invocation.
type Job struct {
	Index   int
	Dir     string // working directory, created if absent; never shared between jobs
	Command []string
	Env     []string // appended to the inherited environment
	Timeout time.Duration
	// Outputs are files (relative to Dir) the tool must produce on success.
	// Missing outputs downgrade a zero exit to Failure; on Timeout/Failure
	// they are deleted so no partial artifact survives.
	Outputs []string
	Input   []byte // optional stdin
}

// Outcome is the classified result of a Run.
type Outcome struct {
	Status    Status
	Artifacts []string // absolute paths of produced outputs, Success only
	Stdout    []byte
	Err       error
}

// Run spawns the job and blocks until it exits or the timeout fires. The
// child is started in its own process group and the whole group is killed on
// timeout, so no grandchild survives the call.
func Run(ctx context.Context, job Job) Outcome {
	if len(job.Command) == 0 {
		return Outcome{Status: Failure, Err: errors.New("empty command")}
	}
	if err := os.MkdirAll(job.Dir, 0755); err != nil {
		return Outcome{Status: Failure, Err: fmt.Errorf("create working dir: %w", err)}
	}

	jobCtx := ctx
	var cancel context.CancelFunc
	if job.Timeout > 0 {
		jobCtx, cancel = context.WithTimeout(ctx, job.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(jobCtx, job.Command[0], job.Command[1:]...)
	cmd.Dir = job.Dir
	cmd.Env = append(os.Environ(), job.Env...)
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Cancel = func() error {
		// Negative pid signals the whole process group.
		return syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
	}
	cmd.WaitDelay = 5 * time.Second
	if len(job.Input) > 0 {
		cmd.Stdin = bytes.NewReader(job.Input)
	}
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if err != nil {
		removeOutputs(job)
		if jobCtx.Err() == context.DeadlineExceeded {
			return Outcome{Status: Timeout, Err: jobCtx.Err()}
		}
		// Parent cancellation (operator shutdown) is not a per-job timeout;
		// classing it as one would taint targeted timeout retries.
		if ctx.Err() != nil {
			return Outcome{Status: Failure, Err: ctx.Err()}
		}
		return Outcome{
			Status: Failure,
			Stdout: stdout.Bytes(),
			Err:    fmt.Errorf("%w, stderr: %s", err, truncate(stderr.Bytes(), 2048)),
		}
	}

	artifacts := make([]string, 0, len(job.Outputs))
	for _, out := range job.Outputs {
		path := filepath.Join(job.Dir, out)
		if _, statErr := os.Stat(path); statErr != nil {
			removeOutputs(job)
			return Outcome{
				Status: Failure,
				Stdout: stdout.Bytes(),
				Err:    fmt.Errorf("expected output %s missing: %w", out, statErr),
			}
		}
		artifacts = append(artifacts, path)
	}

	return Outcome{Status: Success, Artifacts: artifacts, Stdout: stdout.Bytes()}
}

// removeOutputs deletes whatever partial outputs a failed or killed process
// managed to write.
func removeOutputs(job Job) {
	for _, out := range job.Outputs {
		os.Remove(filepath.Join(job.Dir, out))
	}
}

func truncate(b []byte, n int) []byte {
	if len(b) <= n {
		return b
	}
	return b[:n]
}
