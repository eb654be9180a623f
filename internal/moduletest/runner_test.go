package moduletest

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestArgsAppendsTestsDir(t *testing.T) {
	base := t.TempDir()
	r := &Runner{Command: []string{"vendor/bin/phpunit", "--colors=never"}, WorkDir: base}
	args, err := r.Args(filepath.Join(base, "Modules", "Blog"))
	if err != nil {
		t.Fatalf("args error: %v", err)
	}
	want := []string{"vendor/bin/phpunit", "--colors=never", "Modules/Blog/tests"}
	if diff := cmp.Diff(want, args); diff != "" {
		t.Fatalf("args mismatch (-want +got):\n%s", diff)
	}
}

func TestArgsRequiresCommand(t *testing.T) {
	if _, err := (&Runner{Command: []string{" "}}).Args("/tmp/Blog"); err == nil {
		t.Fatalf("blank command should be rejected")
	}
}

func TestRunWithoutTestsIsNoop(t *testing.T) {
	r := &Runner{Command: []string{"false"}}
	ran, err := r.Run(context.Background(), t.TempDir())
	if err != nil || ran {
		t.Fatalf("module without tests should be skipped, ran=%v err=%v", ran, err)
	}
}

func TestRunInvokesCommand(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("requires a POSIX shell")
	}
	base := t.TempDir()
	module := filepath.Join(base, "Blog")
	if err := os.MkdirAll(filepath.Join(module, Dir), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	var stdout bytes.Buffer
	var captured []string
	r := &Runner{
		Command: []string{"vendor/bin/phpunit"},
		WorkDir: base,
		Stdout:  &stdout,
		commandContext: func(ctx context.Context, name string, args ...string) *exec.Cmd {
			captured = append([]string{name}, args...)
			return exec.CommandContext(ctx, "sh", "-c", "echo OK")
		},
	}
	ran, err := r.Run(context.Background(), module)
	if err != nil || !ran {
		t.Fatalf("run should succeed, ran=%v err=%v", ran, err)
	}
	if !strings.Contains(stdout.String(), "OK") {
		t.Fatalf("command output not forwarded: %q", stdout.String())
	}
	if diff := cmp.Diff([]string{"vendor/bin/phpunit", "Blog/tests"}, captured); diff != "" {
		t.Fatalf("argv mismatch (-want +got):\n%s", diff)
	}
}

func TestRunReportsFailure(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("requires a POSIX shell")
	}
	module := t.TempDir()
	if err := os.MkdirAll(filepath.Join(module, Dir), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	r := &Runner{
		Command: []string{"vendor/bin/phpunit"},
		commandContext: func(ctx context.Context, _ string, _ ...string) *exec.Cmd {
			return exec.CommandContext(ctx, "sh", "-c", "exit 1")
		},
	}
	ran, err := r.Run(context.Background(), module)
	if !ran || err == nil {
		t.Fatalf("failing suite should report ran=true with an error, got ran=%v err=%v", ran, err)
	}
}
