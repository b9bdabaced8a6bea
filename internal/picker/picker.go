// Package picker prompts the user to choose a task when no name was given
// and the store declares no default.
package picker

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/huh"
	"golang.org/x/term"
)

// ErrNoTasks reports an empty task store.
var ErrNoTasks = errors.New("no saved tasks")

// PickTask presents a select prompt over the task names. When stdin is not
// a terminal the prompt cannot run, so the caller gets an error that lists
// the available names instead.
func PickTask(names []string) (string, error) {
	if len(names) == 0 {
		return "", ErrNoTasks
	}
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return "", fmt.Errorf("no task selected; available tasks: %s", strings.Join(names, ", "))
	}

	var selected string
	form := huh.NewForm(huh.NewGroup(
		huh.NewSelect[string]().
			Title("Which task do you want to run?").
			Options(huh.NewOptions(names...)...).
			Value(&selected),
	))
	if err := form.Run(); err != nil {
		return "", fmt.Errorf("task selection cancelled: %w", err)
	}
	return selected, nil
}
