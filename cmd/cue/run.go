package main

import (
	"github.com/spf13/cobra"
)

func newRunCommand() *cobra.Command {
	flags := &watchFlags{}
	cmd := &cobra.Command{
		Use:   "run [name]",
		Short: "Run a saved task, with optional flag overrides",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			flags.noteChanged(cmd.Flags())
			name := ""
			if len(args) == 1 {
				name = args[0]
			}
			return runTask(cmd.Context(), name, flags)
		},
	}
	flags.register(cmd.Flags())
	return cmd
}
