package sim

import "time"

type Status string

const (
	StatusOK           Status = "OK"
	StatusFailed       Status = "FAILED"
	StatusLaunchFailed Status = "LAUNCH_FAILED"
	StatusTimeout      Status = "TIMEOUT"
)

// Outcome describes one simulator invocation. Err is nil only for StatusOK.
type Outcome struct {
	Status   Status
	ExitCode int
	Duration time.Duration
	Err      error
}

func (o Outcome) OK() bool { return o.Status == StatusOK }

type Config struct {
	// Binary is resolved through PATH when it has no separator.
	Binary string
	// Args are passed verbatim; relative paths resolve against the case
	// directory.
	Args []string
	// Timeout bounds a single invocation. Zero waits indefinitely.
	Timeout time.Duration
	// LogName, when set, receives the simulator's stdout and stderr inside
	// the case directory.
	LogName string
	Env     []string
}

const (
	DefaultBinary  = "JSBSim"
	DefaultTimeout = 10 * time.Minute
	DefaultLogName = "simulator.log"
)

func DefaultArgs() []string {
	return []string{"--logdirectivefile=output.xml", "--script=run.xml"}
}

func DefaultConfig() Config {
	return Config{
		Binary:  DefaultBinary,
		Args:    DefaultArgs(),
		Timeout: DefaultTimeout,
		LogName: DefaultLogName,
	}
}
