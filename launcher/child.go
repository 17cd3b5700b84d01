package launcher

import (
	"errors"
	"fmt"
	"io"
	"os/exec"
	"sync"
	"syscall"
)

const chunkSize = 32 * 1024

var (
	ErrAlreadyStarted    = errors.New("child process already started")
	ErrHandlerRegistered = errors.New("exit handler already registered")
)

type State int

const (
	NotStarted State = iota
	Running
	Exited
	Failed
)

func (s State) String() string {
	switch s {
	case NotStarted:
		return "not-started"
	case Running:
		return "running"
	case Exited:
		return "exited"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// SpawnError is returned when the executable cannot be found or started.
type SpawnError struct {
	Path string
	Err  error
}

func (e *SpawnError) Error() string {
	return fmt.Sprintf("failed to spawn %s: %v", e.Path, e.Err)
}

func (e *SpawnError) Unwrap() error {
	return e.Err
}

// ExitStatus describes how the child terminated. Code is -1 when the child
// was killed by a signal.
type ExitStatus struct {
	Code     int
	Signaled bool
	Signal   string
}

// Sink receives raw output chunks. Chunks do not follow line boundaries and
// the slice is only valid for the duration of the call.
type Sink func(chunk []byte)

// Child is a single supervised process. It is never restarted.
type Child struct {
	path    string
	environ []string

	mu     sync.Mutex
	state  State
	stdout Sink
	stderr Sink
	onExit func(ExitStatus)
	status ExitStatus
	pid    int

	done chan struct{}
}

// NewChild prepares path to run with exactly environ and no arguments.
func NewChild(path string, environ []string) *Child {
	return &Child{
		path:    path,
		environ: environ,
		state:   NotStarted,
		done:    make(chan struct{}),
	}
}

// Relay attaches one sink per output stream. A nil sink discards that stream.
func (c *Child) Relay(stdout, stderr Sink) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != NotStarted {
		return ErrAlreadyStarted
	}
	c.stdout = stdout
	c.stderr = stderr
	return nil
}

// OnExit registers the handler invoked once when the child terminates.
func (c *Child) OnExit(handler func(ExitStatus)) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != NotStarted {
		return ErrAlreadyStarted
	}
	if c.onExit != nil {
		return ErrHandlerRegistered
	}
	c.onExit = handler
	return nil
}

// Start spawns the process and returns without waiting for it. Output is
// drained concurrently with the wait so a full pipe never blocks the child.
func (c *Child) Start() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != NotStarted {
		return ErrAlreadyStarted
	}

	cmd := exec.Command(c.path)
	cmd.Env = c.environ

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return c.fail(err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return c.fail(err)
	}

	if err := cmd.Start(); err != nil {
		return c.fail(err)
	}

	c.state = Running
	c.pid = cmd.Process.Pid

	var wg sync.WaitGroup
	wg.Add(2)
	go drain(&wg, stdout, c.stdout)
	go drain(&wg, stderr, c.stderr)

	go c.wait(cmd, &wg)

	return nil
}

func (c *Child) fail(err error) error {
	c.state = Failed
	close(c.done)
	return &SpawnError{Path: c.path, Err: err}
}

// wait reaps the child once both streams reach EOF; exec.Cmd.Wait closes the
// pipes, so reading must finish first.
func (c *Child) wait(cmd *exec.Cmd, wg *sync.WaitGroup) {
	wg.Wait()
	_ = cmd.Wait()

	status := exitStatus(cmd)

	c.mu.Lock()
	c.state = Exited
	c.status = status
	handler := c.onExit
	c.mu.Unlock()

	if handler != nil {
		handler(status)
	}
	close(c.done)
}

func exitStatus(cmd *exec.Cmd) ExitStatus {
	state := cmd.ProcessState
	if state == nil {
		return ExitStatus{Code: -1}
	}

	status := ExitStatus{Code: state.ExitCode()}
	if ws, ok := state.Sys().(syscall.WaitStatus); ok && ws.Signaled() {
		status.Code = -1
		status.Signaled = true
		status.Signal = ws.Signal().String()
	}
	return status
}

func drain(wg *sync.WaitGroup, r io.Reader, sink Sink) {
	defer wg.Done()

	buf := make([]byte, chunkSize)
	for {
		n, err := r.Read(buf)
		if n > 0 && sink != nil {
			sink(buf[:n])
		}
		if err != nil {
			return
		}
	}
}

// Done is closed after the exit handler returns, or immediately on a failed spawn.
func (c *Child) Done() <-chan struct{} {
	return c.done
}

func (c *Child) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Status is meaningful once Done is closed and the state is Exited.
func (c *Child) Status() ExitStatus {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

func (c *Child) Pid() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pid
}

func (c *Child) Path() string {
	return c.path
}
