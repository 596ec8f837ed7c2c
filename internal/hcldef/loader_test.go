package hcldef

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeDefinition(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "machine.hcl")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadFullDefinition(t *testing.T) {
	path := writeDefinition(t, `
machine "job_processor" {
  state "Idle" {
    initial = true
    entry   = "Processing_sub_completed = false"
  }

  state "Processing" {
    machine {
      state "SubIdle" {
        initial = true
      }
      state "SubDone" {
        final = true
      }
      transition {
        from = "SubIdle"
        to   = "SubDone"
        on   = "finish"
      }
    }
  }

  state "Done" {
    final = true
  }

  transition {
    from = "Idle"
    to   = "Processing"
    on   = "start"
  }
  transition {
    from   = "Processing"
    to     = "Done"
    on     = "auto_finish"
    guard  = "Processing_sub_completed"
    action = "runs = 1"
  }
}
`)

	model, err := NewLoader().Load(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "job_processor", model.Name)

	require.Len(t, model.Machine.States, 3)
	idle := model.Machine.States[0]
	assert.Equal(t, "Idle", idle.Name)
	assert.True(t, idle.Initial)
	assert.Equal(t, "Processing_sub_completed = false", idle.Entry)

	processing := model.Machine.States[1]
	require.NotNil(t, processing.Sub)
	require.Len(t, processing.Sub.States, 2)
	assert.Equal(t, "SubIdle", processing.Sub.States[0].Name)
	assert.True(t, processing.Sub.States[1].Final)
	require.Len(t, processing.Sub.Transitions, 1)
	assert.Equal(t, "finish", processing.Sub.Transitions[0].Event)

	require.Len(t, model.Machine.Transitions, 2)
	finish := model.Machine.Transitions[1]
	assert.Equal(t, "Processing", finish.Source)
	assert.Equal(t, "Done", finish.Target)
	assert.Equal(t, "auto_finish", finish.Event)
	assert.Equal(t, "Processing_sub_completed", finish.Guard)
	assert.Equal(t, "runs = 1", finish.Action)
}

func TestLoadEventlessTransition(t *testing.T) {
	path := writeDefinition(t, `
machine "m" {
  state "A" {}
  state "B" {}
  transition {
    from = "A"
    to   = "B"
  }
}
`)
	model, err := NewLoader().Load(context.Background(), path)
	require.NoError(t, err)
	require.Len(t, model.Machine.Transitions, 1)
	assert.Empty(t, model.Machine.Transitions[0].Event)
}

func TestLoadMissingMachineBlock(t *testing.T) {
	path := writeDefinition(t, `# nothing here`)
	_, err := NewLoader().Load(context.Background(), path)
	require.ErrorContains(t, err, "no machine block found")
}

func TestLoadSyntaxError(t *testing.T) {
	path := writeDefinition(t, `machine "m" {`)
	_, err := NewLoader().Load(context.Background(), path)
	require.ErrorContains(t, err, "failed to parse")
}

func TestLoadMissingFile(t *testing.T) {
	_, err := NewLoader().Load(context.Background(), filepath.Join(t.TempDir(), "absent.hcl"))
	require.Error(t, err)
}
