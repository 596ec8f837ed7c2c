// Package testutil provides a standardized harness for end-to-end
// simulator tests: it writes a machine definition and driver script to a
// temp directory and runs the full app against them.
package testutil

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vk/fsmrig/internal/app"
)

// SafeBuffer is a thread-safe buffer for capturing log output in tests.
type SafeBuffer struct {
	b  bytes.Buffer
	mu sync.Mutex
}

// Write implements the io.Writer interface for SafeBuffer.
func (b *SafeBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.Write(p)
}

// String implements the fmt.Stringer interface for SafeBuffer.
func (b *SafeBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.String()
}

// SimCase describes one end-to-end simulation run.
type SimCase struct {
	Filename   string // definition filename, picks the loader by extension
	Definition string
	Script     string
	Halt       bool // halt-on-action-error
}

// HarnessResult holds the outcomes of a simulation test run.
type HarnessResult struct {
	Output    string // driver output (drained log lines, state prints)
	LogOutput string // structured log mirror
	Err       error
}

// RunSimulation writes the case's files to a temp directory and runs the
// app end to end with debug logging.
func RunSimulation(t *testing.T, tc SimCase) *HarnessResult {
	t.Helper()

	tmpDir := t.TempDir()

	machinePath := filepath.Join(tmpDir, tc.Filename)
	require.NoError(t, os.WriteFile(machinePath, []byte(tc.Definition), 0o644))

	scriptPath := filepath.Join(tmpDir, "driver.txt")
	require.NoError(t, os.WriteFile(scriptPath, []byte(tc.Script), 0o644))

	cfg, err := app.NewConfig(app.Config{
		MachinePath:       machinePath,
		ScriptPath:        scriptPath,
		Format:            "auto",
		LogFormat:         "text",
		LogLevel:          "debug",
		HaltOnActionError: tc.Halt,
	})
	require.NoError(t, err)

	outBuf := &bytes.Buffer{}
	logBuf := &SafeBuffer{}

	testApp, err := app.NewApp(outBuf, logBuf, cfg)
	if err != nil {
		return &HarnessResult{LogOutput: logBuf.String(), Err: err}
	}

	runErr := testApp.Run(context.Background())
	return &HarnessResult{
		Output:    outBuf.String(),
		LogOutput: logBuf.String(),
		Err:       runErr,
	}
}
