package main

import (
	"errors"
	"strings"
	"testing"

	"github.com/cue-cli/cue/internal/config"
)

func TestTaskAddAndList(t *testing.T) {
	isolateGlobalStore(t)

	output, err := executeCommand(t, "task", "add", "build", "-w", "src", "-r", "cargo build")
	if err != nil {
		t.Fatalf("task add: %v", err)
	}
	if !strings.Contains(output, `task "build" saved`) {
		t.Fatalf("add output = %q, want saved confirmation", output)
	}

	output, err = executeCommand(t, "task", "list")
	if err != nil {
		t.Fatalf("task list: %v", err)
	}
	if !strings.Contains(output, "build") || !strings.Contains(output, "cargo build") {
		t.Fatalf("list output = %q, want saved task line", output)
	}
}

func TestTaskAddRequiresRunAndScope(t *testing.T) {
	isolateGlobalStore(t)

	if _, err := executeCommand(t, "task", "add", "build", "-w", "src"); err == nil {
		t.Fatal("expected error when --run is missing")
	}
	if _, err := executeCommand(t, "task", "add", "build", "-r", "make"); err == nil {
		t.Fatal("expected error when neither --watch nor --ext is given")
	}
}

func TestTaskAddRejectsPathsAndExtensionsTogether(t *testing.T) {
	isolateGlobalStore(t)

	if _, err := executeCommand(t, "task", "add", "build", "-w", "src", "-e", "go", "-r", "make"); err == nil {
		t.Fatal("expected error for --watch and --ext together")
	}
}

func TestTaskEditRejectsPathsAndExtensionsTogether(t *testing.T) {
	isolateGlobalStore(t)

	if _, err := executeCommand(t, "task", "add", "build", "-w", "src", "-r", "make"); err != nil {
		t.Fatalf("task add: %v", err)
	}
	if _, err := executeCommand(t, "task", "edit", "build", "-w", "lib", "-e", "go"); err == nil {
		t.Fatal("expected error for --watch and --ext together")
	}
}

func TestTaskEditSwitchingModesClearsTheOther(t *testing.T) {
	isolateGlobalStore(t)

	if _, err := executeCommand(t, "task", "add", "build", "-w", "src", "-r", "make"); err != nil {
		t.Fatalf("task add: %v", err)
	}
	if _, err := executeCommand(t, "task", "edit", "build", "-e", "go"); err != nil {
		t.Fatalf("task edit: %v", err)
	}

	cfg, err := config.LoadGlobal()
	if err != nil {
		t.Fatalf("load global: %v", err)
	}
	task, err := cfg.Lookup("build")
	if err != nil {
		t.Fatalf("lookup build: %v", err)
	}
	if len(task.Watch) != 0 {
		t.Fatalf("watch = %v, want cleared after switching to extensions", task.Watch)
	}
	if len(task.Ext) != 1 || task.Ext[0] != "go" {
		t.Fatalf("ext = %v, want [go]", task.Ext)
	}
}

func TestTaskAddRejectsDuplicate(t *testing.T) {
	isolateGlobalStore(t)

	if _, err := executeCommand(t, "task", "add", "build", "-w", "src", "-r", "make"); err != nil {
		t.Fatalf("task add: %v", err)
	}
	_, err := executeCommand(t, "task", "add", "build", "-w", "src", "-r", "make")
	if !errors.Is(err, config.ErrTaskExists) {
		t.Fatalf("duplicate add error = %v, want ErrTaskExists", err)
	}
}

func TestTaskRemove(t *testing.T) {
	isolateGlobalStore(t)

	if _, err := executeCommand(t, "task", "add", "build", "-e", "go", "-r", "go build ./..."); err != nil {
		t.Fatalf("task add: %v", err)
	}
	output, err := executeCommand(t, "task", "remove", "build")
	if err != nil {
		t.Fatalf("task remove: %v", err)
	}
	if !strings.Contains(output, `task "build" removed`) {
		t.Fatalf("remove output = %q, want removed confirmation", output)
	}

	output, err = executeCommand(t, "task", "list")
	if err != nil {
		t.Fatalf("task list: %v", err)
	}
	if !strings.Contains(output, "no saved tasks") {
		t.Fatalf("list output = %q, want empty store message", output)
	}

	_, err = executeCommand(t, "task", "remove", "build")
	if !errors.Is(err, config.ErrTaskNotFound) {
		t.Fatalf("missing remove error = %v, want ErrTaskNotFound", err)
	}
}

func TestTaskEditUpdatesCommand(t *testing.T) {
	isolateGlobalStore(t)

	if _, err := executeCommand(t, "task", "add", "build", "-w", "src", "-r", "make"); err != nil {
		t.Fatalf("task add: %v", err)
	}
	output, err := executeCommand(t, "task", "edit", "build", "-r", "make -j4")
	if err != nil {
		t.Fatalf("task edit: %v", err)
	}
	if !strings.Contains(output, `task "build" updated`) {
		t.Fatalf("edit output = %q, want updated confirmation", output)
	}

	cfg, err := config.LoadGlobal()
	if err != nil {
		t.Fatalf("load global: %v", err)
	}
	task, err := cfg.Lookup("build")
	if err != nil {
		t.Fatalf("lookup build: %v", err)
	}
	if task.Run != "make -j4" {
		t.Fatalf("run = %q, want %q", task.Run, "make -j4")
	}
	if len(task.Watch) != 1 || task.Watch[0] != "src" {
		t.Fatalf("watch = %v, want unchanged [src]", task.Watch)
	}
}

func TestTaskRename(t *testing.T) {
	isolateGlobalStore(t)

	if _, err := executeCommand(t, "task", "add", "build", "-w", "src", "-r", "make"); err != nil {
		t.Fatalf("task add: %v", err)
	}
	output, err := executeCommand(t, "task", "rename", "build", "compile")
	if err != nil {
		t.Fatalf("task rename: %v", err)
	}
	if !strings.Contains(output, `task "build" renamed to "compile"`) {
		t.Fatalf("rename output = %q, want renamed confirmation", output)
	}

	cfg, err := config.LoadGlobal()
	if err != nil {
		t.Fatalf("load global: %v", err)
	}
	if _, err := cfg.Lookup("compile"); err != nil {
		t.Fatalf("lookup compile: %v", err)
	}
	if _, err := cfg.Lookup("build"); !errors.Is(err, config.ErrTaskNotFound) {
		t.Fatalf("lookup old name error = %v, want ErrTaskNotFound", err)
	}
}
