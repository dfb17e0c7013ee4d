package gsettings

import (
	"context"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/pkg/errors"
)

const commandTimeout = 5 * time.Second

// runFunc invokes the gsettings binary. Swapped out in tests.
type runFunc func(env []string, args ...string) (string, error)

func runGsettings(env []string, args ...string) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()
	cmd := exec.CommandContext(ctx, "gsettings", args...)
	if len(env) > 0 {
		cmd.Env = append(os.Environ(), env...)
	}
	out, err := cmd.Output()
	if err != nil {
		return "", errors.Wrapf(err, "gsettings %s", strings.Join(args, " "))
	}
	return strings.TrimRight(string(out), "\n"), nil
}

// memoryEnv makes gsettings read from the built-in memory backend, which
// has no user overrides: every key reports its schema default.
var memoryEnv = []string{"GSETTINGS_BACKEND=memory"}
