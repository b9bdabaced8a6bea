package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/cue-cli/cue/internal/config"
)

const starterConfig = `default = "taskname"

[tasks.taskname]
watch = ["filename.txt"]
run = "cmd arg -f"
`

func newInitCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create a starter cue.toml in the working directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			if _, err := os.Stat(config.LocalFile); err == nil {
				fmt.Fprintln(out, "cue.toml already exists")
				return nil
			}
			if err := os.WriteFile(config.LocalFile, []byte(starterConfig), 0o644); err != nil {
				return fmt.Errorf("write %s: %w", config.LocalFile, err)
			}
			fmt.Fprintln(out, "cue.toml created, edit it then run cue")
			return nil
		},
	}
}
