package supervise

import (
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/kballard/go-shellquote"
)

// ErrEmptyCommand reports a run string with no executable in it.
var ErrEmptyCommand = errors.New("empty command")

// Command is one tokenized executable invocation.
type Command struct {
	Path string
	Args []string
}

// ParseCommand splits a run string shell-words style, honoring quotes and
// escapes. The string is tokenized once at configuration time; no shell is
// involved when the command is spawned.
func ParseCommand(raw string) (Command, error) {
	words, err := shellquote.Split(raw)
	if err != nil {
		return Command{}, fmt.Errorf("parse command %q: %w", raw, err)
	}
	if len(words) == 0 {
		return Command{}, ErrEmptyCommand
	}
	return Command{Path: words[0], Args: words[1:]}, nil
}

// Resolve checks that the executable can be found on PATH (or as a direct
// path). Used by pre-flight validation before any watching starts.
func (c Command) Resolve() error {
	if _, err := exec.LookPath(c.Path); err != nil {
		return fmt.Errorf("command %q not found: %w", c.Path, err)
	}
	return nil
}

// String renders the command the way the user wrote it, for display.
func (c Command) String() string {
	if len(c.Args) == 0 {
		return c.Path
	}
	return c.Path + " " + strings.Join(c.Args, " ")
}
