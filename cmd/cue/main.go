package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/cue-cli/cue/internal/config"
)

// Version is set at build time.
var Version = "dev"

func main() {
	if err := run(context.Background(), os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	cmd := newRootCommand()
	cmd.SetArgs(args)
	return cmd.ExecuteContext(ctx)
}

func newRootCommand() *cobra.Command {
	flags := &watchFlags{}
	root := &cobra.Command{
		Use:           "cue",
		Short:         "Automate your workflow: watch files, run commands, stay in flow",
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       Version,
		RunE: func(cmd *cobra.Command, _ []string) error {
			flags.noteChanged(cmd.Flags())
			return runRoot(cmd.Context(), flags)
		},
	}

	root.SetVersionTemplate("{{printf \"%s\\n\" .Version}}")
	flags.register(root.Flags())
	root.AddCommand(
		newRunCommand(),
		newTaskCommand(),
		newInitCommand(),
	)
	return root
}

// runRoot handles bare `cue`: an ad-hoc watch session when -w/-e/-r are
// given, otherwise the task flow backed by cue.toml.
func runRoot(ctx context.Context, flags *watchFlags) error {
	if len(flags.watch) == 0 && len(flags.ext) == 0 && flags.run == "" {
		if !flags.global {
			if _, err := os.Stat(config.LocalFile); err != nil {
				return fmt.Errorf("%w: provide paths with -w and a command with -r, or use -g for global tasks", config.ErrNoConfig)
			}
		}
		return runTask(ctx, "", flags)
	}

	if len(flags.watch) == 0 && len(flags.ext) == 0 {
		return errors.New("please provide paths with -w (or extensions with -e)")
	}
	if flags.run == "" {
		return errors.New("please provide a command with -r")
	}

	spec, err := flags.sessionSpec(config.Task{})
	if err != nil {
		return err
	}
	return startSession(ctx, spec)
}
