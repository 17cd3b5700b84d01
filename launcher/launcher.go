package launcher

import (
	"go.uber.org/zap"

	"fiber-launcher/config"
	"fiber-launcher/metrics"
)

const (
	StdoutPrefix = "stdout: "
	StderrPrefix = "stderr: "
)

// Launcher spawns a child and wires its streams and exit into logs and metrics.
type Launcher struct {
	logger   *zap.Logger
	stdout   *zap.Logger
	stderr   *zap.Logger
	counters *metrics.Metrics
}

// New returns a Launcher. stdout and stderr receive the relayed chunks; logger
// receives lifecycle events. counters may be nil.
func New(logger, stdout, stderr *zap.Logger, counters *metrics.Metrics) *Launcher {
	return &Launcher{
		logger:   logger,
		stdout:   stdout,
		stderr:   stderr,
		counters: counters,
	}
}

// Launch starts path with the parent environment overlaid by cfg. A spawn
// failure is logged and returned; the caller decides whether to keep running.
func (l *Launcher) Launch(path string, cfg config.Config, parent map[string]string) (*Child, error) {
	child := NewChild(path, MergeEnviron(parent, cfg.Environ()))

	if err := child.Relay(l.relay(l.stdout, StdoutPrefix, "stdout"), l.relay(l.stderr, StderrPrefix, "stderr")); err != nil {
		return child, err
	}
	if err := child.OnExit(l.exited); err != nil {
		return child, err
	}

	if err := child.Start(); err != nil {
		l.logger.Error("failed to spawn child process", zap.String("path", path), zap.Error(err))
		if l.counters != nil {
			l.counters.Spawns.WithLabelValues(metrics.ResultFailed).Inc()
		}
		return child, err
	}

	l.logger.Info("child process started",
		zap.String("path", path),
		zap.Int("pid", child.Pid()),
		zap.String("mode", cfg.Mode.String()),
		zap.String("port", cfg.Port))

	if l.counters != nil {
		l.counters.Spawns.WithLabelValues(metrics.ResultStarted).Inc()
		l.counters.Running.Set(1)
	}

	return child, nil
}

func (l *Launcher) relay(out *zap.Logger, prefix, stream string) Sink {
	return func(chunk []byte) {
		if l.counters != nil {
			l.counters.OutputBytes.WithLabelValues(stream).Add(float64(len(chunk)))
		}
		if stream == "stderr" {
			out.Error(prefix + string(chunk))
			return
		}
		out.Info(prefix + string(chunk))
	}
}

func (l *Launcher) exited(status ExitStatus) {
	if l.counters != nil {
		l.counters.Running.Set(0)
		l.counters.Exits.WithLabelValues(metrics.ExitCodeLabel(status.Code, status.Signaled)).Inc()
	}

	switch {
	case status.Signaled:
		l.logger.Warn("child process exited", zap.Reflect("code", nil), zap.String("signal", status.Signal))
	case status.Code != 0:
		l.logger.Warn("child process exited", zap.Int("code", status.Code))
	default:
		l.logger.Info("child process exited", zap.Int("code", status.Code))
	}
}
