package sim

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"go.uber.org/zap"
)

// waitDelay bounds how long Wait lingers on output pipes after a kill.
const waitDelay = 2 * time.Second

// Invoker launches the external simulator against a case directory. It is
// safe for concurrent use; each call owns its own child process.
type Invoker struct {
	cfg Config
	log *zap.Logger
}

func New(cfg Config, log *zap.Logger) *Invoker {
	if cfg.Binary == "" {
		cfg.Binary = DefaultBinary
	}
	if cfg.Args == nil {
		cfg.Args = DefaultArgs()
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Invoker{cfg: cfg, log: log}
}

// Invoke runs the simulator with caseDir as its working directory and
// blocks until it exits or the timeout elapses. Cancelling ctx does not
// interrupt a running simulator; only the timeout does.
func (inv *Invoker) Invoke(ctx context.Context, caseDir string) Outcome {
	ctx = context.WithoutCancel(ctx)
	if inv.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, inv.cfg.Timeout)
		defer cancel()
	}

	start := time.Now()
	outcome := func(status Status, code int, err error) Outcome {
		return Outcome{Status: status, ExitCode: code, Duration: time.Since(start), Err: err}
	}

	cmd := exec.Command(inv.cfg.Binary, inv.cfg.Args...)
	cmd.Dir = caseDir
	cmd.Env = append(os.Environ(), inv.cfg.Env...)
	cmd.WaitDelay = waitDelay
	setProcessGroup(cmd)

	var out io.Writer
	if inv.cfg.LogName != "" {
		f, err := os.Create(filepath.Join(caseDir, inv.cfg.LogName))
		if err != nil {
			return outcome(StatusLaunchFailed, -1, fmt.Errorf("%w: open log: %v", ErrProcessLaunch, err))
		}
		defer f.Close()
		out = f
	}
	cmd.Stdout = out
	cmd.Stderr = out

	if err := cmd.Start(); err != nil {
		return outcome(StatusLaunchFailed, -1, fmt.Errorf("%w: %v", ErrProcessLaunch, err))
	}
	inv.log.Debug("simulator started", zap.String("dir", caseDir), zap.Int("pid", cmd.Process.Pid))

	done := make(chan error, 1)
	go func() {
		done <- cmd.Wait()
	}()

	var err error
	select {
	case <-ctx.Done():
		if kerr := killProcessGroup(cmd); kerr != nil {
			inv.log.Warn("kill simulator", zap.Int("pid", cmd.Process.Pid), zap.Error(kerr))
		}
		<-done
		return outcome(StatusTimeout, -1, fmt.Errorf("%w after %s", ErrProcessTimeout, inv.cfg.Timeout))
	case err = <-done:
	}

	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return outcome(StatusFailed, exitErr.ExitCode(), fmt.Errorf("%w: exit code %d", ErrProcessExit, exitErr.ExitCode()))
		}
		return outcome(StatusFailed, -1, fmt.Errorf("%w: %v", ErrProcessExit, err))
	}
	return outcome(StatusOK, 0, nil)
}
