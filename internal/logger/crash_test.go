package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestCrashHandler_SetContext(t *testing.T) {
	globalContext = &CrashContext{}

	SetBasePath("/tmp/test-aie")
	SetVersion("1.0.0-test")
	SetCommand("graph build")

	globalContext.mu.RLock()
	defer globalContext.mu.RUnlock()

	if globalContext.basePath != "/tmp/test-aie" {
		t.Errorf("Expected basePath '/tmp/test-aie', got '%s'", globalContext.basePath)
	}
	if globalContext.version != "1.0.0-test" {
		t.Errorf("Expected version '1.0.0-test', got '%s'", globalContext.version)
	}
	if globalContext.command != "graph build" {
		t.Errorf("Expected command 'graph build', got '%s'", globalContext.command)
	}
}

func TestCrashHandler_CreateCrashLog(t *testing.T) {
	globalContext = &CrashContext{
		version: "1.0.0",
		command: "evidence build",
	}

	log := createCrashLog("test panic")

	if log.PanicValue != "test panic" {
		t.Errorf("Expected PanicValue 'test panic', got '%s'", log.PanicValue)
	}
	if log.Version != "1.0.0" {
		t.Errorf("Expected Version '1.0.0', got '%s'", log.Version)
	}
	if log.Command != "evidence build" {
		t.Errorf("Expected Command 'evidence build', got '%s'", log.Command)
	}
	if log.StackTrace == "" {
		t.Error("Expected non-empty stack trace")
	}
}

func TestCrashHandler_FormatCrashLog(t *testing.T) {
	log := CrashLog{
		Timestamp:  time.Date(2026, 8, 24, 10, 0, 0, 0, time.UTC),
		Version:    "1.0.0",
		Command:    "graph publish",
		PanicValue: "boom",
		StackTrace: "goroutine 1 [running]:",
		GoVersion:  "go1.24",
		OS:         "linux",
		Arch:       "amd64",
	}

	out := formatCrashLog(log)
	for _, want := range []string{"CRASH LOG", "boom", "graph publish", "goroutine 1"} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected formatted log to contain %q", want)
		}
	}
}

func TestCrashHandler_CleanOldCrashLogs(t *testing.T) {
	dir := t.TempDir()

	for i := 0; i < MaxCrashLogs+3; i++ {
		name := filepath.Join(dir, fmt.Sprintf("crash_20260101_%06d.log", i))
		if err := os.WriteFile(name, []byte("x"), 0644); err != nil {
			t.Fatal(err)
		}
	}

	if err := cleanOldCrashLogs(dir); err != nil {
		t.Fatalf("cleanOldCrashLogs: %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != MaxCrashLogs {
		t.Errorf("Expected %d crash logs after cleanup, got %d", MaxCrashLogs, len(entries))
	}
}
