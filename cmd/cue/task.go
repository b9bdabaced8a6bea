package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cue-cli/cue/internal/config"
)

func newTaskCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "task",
		Short: "Manage the global task store",
	}
	cmd.AddCommand(
		newTaskAddCommand(),
		newTaskRemoveCommand(),
		newTaskListCommand(),
		newTaskEditCommand(),
		newTaskRenameCommand(),
	)
	return cmd
}

// mutateGlobal loads the global store, applies one mutation, and persists
// the result.
func mutateGlobal(mutate func(*config.Config) error) error {
	cfg, err := config.LoadGlobal()
	if err != nil {
		return err
	}
	if err := mutate(cfg); err != nil {
		return err
	}
	return config.SaveGlobal(cfg)
}

func newTaskAddCommand() *cobra.Command {
	var watchPaths []string
	var ext []string
	var run string
	cmd := &cobra.Command{
		Use:   "add NAME",
		Short: "Save a new task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]
			if err := mutateGlobal(func(cfg *config.Config) error {
				return cfg.AddTask(name, config.Task{Watch: watchPaths, Run: run, Ext: ext})
			}); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "task %q saved\n", name)
			return nil
		},
	}
	cmd.Flags().StringSliceVarP(&watchPaths, "watch", "w", nil, "paths to watch")
	cmd.Flags().StringSliceVarP(&ext, "ext", "e", nil, "file extensions to watch")
	cmd.Flags().StringVarP(&run, "run", "r", "", "command to run on changes")
	_ = cmd.MarkFlagRequired("run")
	cmd.MarkFlagsOneRequired("watch", "ext")
	cmd.MarkFlagsMutuallyExclusive("watch", "ext")
	return cmd
}

func newTaskRemoveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "remove NAME",
		Short: "Delete a saved task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]
			if err := mutateGlobal(func(cfg *config.Config) error {
				return cfg.RemoveTask(name)
			}); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "task %q removed\n", name)
			return nil
		},
	}
}

func newTaskListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List saved tasks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.LoadGlobal()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(cfg.Tasks) == 0 {
				fmt.Fprintln(out, "no saved tasks")
				return nil
			}
			fmt.Fprintln(out, "saved tasks:")
			for _, name := range cfg.TaskNames() {
				task := cfg.Tasks[name]
				scope := strings.Join(task.Watch, ", ")
				if len(task.Ext) > 0 {
					scope = "*." + strings.Join(task.Ext, ", *.")
				}
				marker := ""
				if cfg.Default == name {
					marker = " (default)"
				}
				fmt.Fprintf(out, "  %s%s | watch: %s | run: %q\n", name, marker, scope, task.Run)
			}
			return nil
		},
	}
}

func newTaskEditCommand() *cobra.Command {
	var watchPaths []string
	var ext []string
	var run string
	cmd := &cobra.Command{
		Use:   "edit NAME",
		Short: "Update a saved task's watch paths or command",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]
			if err := mutateGlobal(func(cfg *config.Config) error {
				return cfg.EditTask(name, watchPaths, run, ext)
			}); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "task %q updated\n", name)
			return nil
		},
	}
	cmd.Flags().StringSliceVarP(&watchPaths, "watch", "w", nil, "replacement watch paths")
	cmd.Flags().StringSliceVarP(&ext, "ext", "e", nil, "replacement extensions")
	cmd.Flags().StringVarP(&run, "run", "r", "", "replacement command")
	cmd.MarkFlagsOneRequired("watch", "run", "ext")
	cmd.MarkFlagsMutuallyExclusive("watch", "ext")
	return cmd
}

func newTaskRenameCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "rename OLD NEW",
		Short: "Rename a saved task",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			oldName, newName := args[0], args[1]
			if err := mutateGlobal(func(cfg *config.Config) error {
				return cfg.RenameTask(oldName, newName)
			}); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "task %q renamed to %q\n", oldName, newName)
			return nil
		},
	}
}
