package launcher

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"fiber-launcher/config"
	"fiber-launcher/metrics"
)

type observed struct {
	lifecycle *observer.ObservedLogs
	stdout    *observer.ObservedLogs
	stderr    *observer.ObservedLogs
	counters  *metrics.Metrics
}

func newTestLauncher() (*Launcher, *observed) {
	lifecycleCore, lifecycle := observer.New(zapcore.DebugLevel)
	stdoutCore, stdout := observer.New(zapcore.DebugLevel)
	stderrCore, stderr := observer.New(zapcore.DebugLevel)
	counters := metrics.InitializeMetrics(prometheus.NewRegistry(), nil)

	l := New(zap.New(lifecycleCore), zap.New(stdoutCore), zap.New(stderrCore), counters)
	return l, &observed{lifecycle: lifecycle, stdout: stdout, stderr: stderr, counters: counters}
}

func messages(logs *observer.ObservedLogs) string {
	var b strings.Builder
	for _, entry := range logs.All() {
		b.WriteString(entry.Message)
	}
	return b.String()
}

func TestLaunch_RelaysStdoutAndLogsExitCode(t *testing.T) {
	path := writeScript(t, `echo hello; exit 0`)
	l, obs := newTestLauncher()

	child, err := l.Launch(path, config.DefaultConfig(config.Production), config.EnvironMap(os.Environ()))
	if err != nil {
		t.Fatalf("Launch failed: %v", err)
	}
	waitDone(t, child)

	if got := messages(obs.stdout); !strings.Contains(got, "stdout: hello") {
		t.Errorf("expected relayed 'stdout: hello', got %q", got)
	}

	exits := obs.lifecycle.FilterMessage("child process exited").All()
	if len(exits) != 1 {
		t.Fatalf("expected one exit log line, got %d", len(exits))
	}
	if code, ok := exits[0].ContextMap()["code"]; !ok || code != int64(0) {
		t.Errorf("expected exit code 0, got %v", exits[0].ContextMap()["code"])
	}

	if got := testutil.ToFloat64(obs.counters.Spawns.WithLabelValues(metrics.ResultStarted)); got != 1 {
		t.Errorf("expected one started spawn, got %v", got)
	}
	if got := testutil.ToFloat64(obs.counters.Exits.WithLabelValues("0")); got != 1 {
		t.Errorf("expected one exit with code 0, got %v", got)
	}
	if got := testutil.ToFloat64(obs.counters.Running); got != 0 {
		t.Errorf("expected running gauge 0 after exit, got %v", got)
	}
}

func TestLaunch_RelaysStderrWithPrefix(t *testing.T) {
	path := writeScript(t, `echo broken >&2; exit 2`)
	l, obs := newTestLauncher()

	child, err := l.Launch(path, config.DefaultConfig(config.Production), config.EnvironMap(os.Environ()))
	if err != nil {
		t.Fatalf("Launch failed: %v", err)
	}
	waitDone(t, child)

	if got := messages(obs.stderr); !strings.Contains(got, "stderr: broken") {
		t.Errorf("expected relayed 'stderr: broken', got %q", got)
	}
	if obs.stdout.Len() != 0 {
		t.Errorf("expected nothing on stdout, got %q", messages(obs.stdout))
	}

	exits := obs.lifecycle.FilterMessage("child process exited").All()
	if len(exits) != 1 || exits[0].Level != zapcore.WarnLevel {
		t.Fatalf("expected one warn-level exit line, got %+v", exits)
	}
	if code := exits[0].ContextMap()["code"]; code != int64(2) {
		t.Errorf("expected exit code 2, got %v", code)
	}
}

func TestLaunch_SpawnFailureIsLoggedNotFatal(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing-app")
	l, obs := newTestLauncher()

	child, err := l.Launch(path, config.DefaultConfig(config.Production), config.EnvironMap(os.Environ()))

	var spawnErr *SpawnError
	if !errors.As(err, &spawnErr) {
		t.Fatalf("expected SpawnError, got %v", err)
	}
	if child.State() != Failed {
		t.Errorf("expected state failed, got %s", child.State())
	}

	failures := obs.lifecycle.FilterMessage("failed to spawn child process").All()
	if len(failures) != 1 {
		t.Fatalf("expected one spawn failure log line, got %d", len(failures))
	}
	if failures[0].ContextMap()["path"] != path {
		t.Errorf("expected path field %q, got %v", path, failures[0].ContextMap()["path"])
	}
	if got := testutil.ToFloat64(obs.counters.Spawns.WithLabelValues(metrics.ResultFailed)); got != 1 {
		t.Errorf("expected one failed spawn, got %v", got)
	}
	if obs.lifecycle.FilterMessage("child process exited").Len() != 0 {
		t.Errorf("did not expect an exit line after a failed spawn")
	}
}

func TestLaunch_ConfigOverridesParentEnvironment(t *testing.T) {
	path := writeScript(t, `echo "$PORT|$ALLOWED_ORIGINS|$ONLY_PARENT"`)
	l, obs := newTestLauncher()

	parent := map[string]string{"PORT": "1", "ALLOWED_ORIGINS": "https://parent.example", "ONLY_PARENT": "kept"}
	cfg := config.LoadConfig(map[string]string{"PORT": "8080"}, config.Development)

	child, err := l.Launch(path, cfg, parent)
	if err != nil {
		t.Fatalf("Launch failed: %v", err)
	}
	waitDone(t, child)

	if got := messages(obs.stdout); !strings.Contains(got, "stdout: 8080|*|kept") {
		t.Errorf("expected config values to win, got %q", got)
	}
}
