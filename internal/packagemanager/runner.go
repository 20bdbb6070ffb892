package packagemanager

import (
	"context"
	"os"
	"os/exec"

	"github.com/pkg/errors"
)

// CommandRunner executes a package manager invocation in dir and returns
// its combined output. Tests substitute a fake.
type CommandRunner func(ctx context.Context, dir string, name string, args ...string) ([]byte, error)

// RunCommand is the default CommandRunner. Stderr is passed through so
// the underlying tool's progress output stays visible.
func RunCommand(ctx context.Context, dir string, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	cmd.Stderr = os.Stderr
	out, err := cmd.Output()
	if err != nil {
		return out, errors.Wrapf(err, "command failed: %v", name)
	}
	return out, nil
}
